package engine

import "github.com/talgya/boomsim/internal/economy"

// View is the read-only state a stop expression can see.
type View struct {
	Food    float64 `expr:"food"`
	Wood    float64 `expr:"wood"`
	Stone   float64 `expr:"stone"`
	Metal   float64 `expr:"metal"`
	Pop     int     `expr:"pop"`
	MaxPop  int     `expr:"maxPop"`
	Time    int     `expr:"time"`
	Workers int     `expr:"workers"`
	Idle    int     `expr:"idle"`

	sim *Simulation
}

// View snapshots the current state for stop expressions.
func (s *Simulation) View() View {
	v := View{
		Food:    s.Ledger.Stock[economy.Food],
		Wood:    s.Ledger.Stock[economy.Wood],
		Stone:   s.Ledger.Stock[economy.Stone],
		Metal:   s.Ledger.Stock[economy.Metal],
		Pop:     s.Ledger.Pop,
		MaxPop:  s.Ledger.MaxPop,
		Time:    s.Time,
		Workers: len(s.Workers),
		sim:     s,
	}
	for _, w := range s.Workers {
		if w.Idle() {
			v.Idle++
		}
	}
	return v
}

// Buildings returns the number of completed buildings of kind.
func (v View) Buildings(kind string) int {
	if v.sim == nil {
		return 0
	}
	return len(v.sim.buildings[kind])
}

// Foundations returns the number of live foundations of kind.
func (v View) Foundations(kind string) int {
	if v.sim == nil {
		return 0
	}
	return len(v.sim.foundations[kind])
}

// Units returns the number of units of kind.
func (v View) Units(kind string) int {
	if v.sim == nil {
		return 0
	}
	n := 0
	for _, w := range v.sim.Workers {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// HasUpgrade reports whether tech has been researched.
func (v View) HasUpgrade(tech string) bool {
	return v.sim != nil && v.sim.Upgrades.Has(tech)
}
