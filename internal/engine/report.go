package engine

import (
	"fmt"
	"strings"

	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/economy"
)

// Summary is a snapshot of the economy printed every summary period.
type Summary struct {
	Tick          int               `json:"tick" db:"tick"`
	Stock         economy.Resources `json:"stock"`
	IncomePerMin  economy.Resources `json:"income_per_min"`
	Pop           int               `json:"pop" db:"pop"`
	MaxPop        int               `json:"max_pop" db:"max_pop"`
	Women         int               `json:"women" db:"women"`
	Idle          int               `json:"idle" db:"idle"`
	Farming       int               `json:"farming" db:"farming"`
	Chopping      int               `json:"chopping" db:"chopping"`
	Building      int               `json:"building" db:"building"`
	Barracks      int               `json:"barracks" db:"barracks"`
	IdleBuildings int               `json:"idle_buildings" db:"idle_buildings"` // Idle barracks and home base
}

// Summarize takes a Summary of the current tick.
func (s *Simulation) Summarize() Summary {
	sum := Summary{
		Tick:         s.Time,
		Stock:        s.Ledger.Stock,
		IncomePerMin: s.Ledger.Income.Scaled(60),
		Pop:          s.Ledger.Pop,
		MaxPop:       s.Ledger.MaxPop,
		Barracks:     len(s.buildings[agents.KindBarracks]),
	}
	for _, w := range s.Workers {
		if w.Kind == agents.KindFemale {
			sum.Women++
		}
		name := w.ActionName()
		switch {
		case w.Idle():
			sum.Idle++
		case strings.HasPrefix(name, "build"):
			sum.Building++
		case strings.HasPrefix(name, OpFarm):
			sum.Farming++
		case strings.HasPrefix(name, OpChop):
			sum.Chopping++
		}
	}
	if s.home.Idle() {
		sum.IdleBuildings++
	}
	for _, b := range s.buildings[agents.KindBarracks] {
		if b.Idle() {
			sum.IdleBuildings++
		}
	}
	return sum
}

// String formats the summary as one report line.
func (sum Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", SimTime(sum.Tick))
	for r := economy.Food; r <= economy.Metal; r++ {
		fmt.Fprintf(&b, " %.0f%c+%.0f", sum.Stock[r], r.String()[0], sum.IncomePerMin[r])
	}
	fmt.Fprintf(&b, " %d/%dpop %dwomen %didle %dfarm %dchop %dbuild %dbarracks %didlebarracks/cc",
		sum.Pop, sum.MaxPop, sum.Women, sum.Idle, sum.Farming, sum.Chopping, sum.Building, sum.Barracks, sum.IdleBuildings)
	return b.String()
}
