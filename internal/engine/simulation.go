// Simulation ties together the ledger, actors, foundations, and resource
// nodes, and is passed explicitly into every operation and action.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/tuning"
	"github.com/talgya/boomsim/internal/world"
)

var (
	// ErrPrecondition marks a script error: the command or action cannot be
	// carried out in the current state. Runs abort on it.
	ErrPrecondition = errors.New("precondition violated")

	// ErrRunFinished is returned at the end of a run when debugend is set.
	ErrRunFinished = errors.New("run finished")
)

// Simulation holds the complete economic state of one build order.
type Simulation struct {
	Ledger   *economy.Ledger
	Recipes  economy.RecipeTable
	Nodes    *world.Registry
	Workers  []*Actor  // Units in roster order
	Upgrades *Upgrades // Researched technologies
	Time     int       // Seconds since start; one tick per second
	Events   []Event   // Notable occurrences, oldest first

	HousePop int // Population cap added by each finished house

	// Buildings grouped by kind; kinds in order of first creation.
	buildingKinds []string
	buildings     map[string][]*Actor
	foundations   map[string][]*Foundation

	// Farming drop-sites: allocation counters and planned remote sites.
	farms     map[world.Position]*dropSite
	farmSites []world.Position

	home      *Actor
	spawner   *agents.Spawner
	previous  []*Actor
	overflown bool
}

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        int    `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "build", "train", "research", "waypoint", ...
}

// NewSimulation creates a Simulation with the starting roster and a home
// base at the origin.
func NewSimulation(t tuning.Tuning, recipes economy.RecipeTable) *Simulation {
	start := economy.Resources{t.StartFood, t.StartWood, t.StartStone, t.StartMetal}
	s := &Simulation{
		Ledger:      economy.NewLedger(start, len(t.Roster), t.MaxPop),
		Recipes:     recipes,
		Nodes:       world.NewRegistry(),
		Upgrades:    NewUpgrades(),
		HousePop:    t.HousePop,
		buildings:   make(map[string][]*Actor),
		foundations: make(map[string][]*Foundation),
		farms:       make(map[world.Position]*dropSite),
		spawner:     agents.NewSpawner(),
	}
	for _, kind := range t.Roster {
		s.Workers = append(s.Workers, s.newActor(kind, world.Origin, false))
	}
	s.home = s.addBuilding(agents.KindCC, world.Origin)
	return s
}

// HomeBase returns the starting civic centre.
func (s *Simulation) HomeBase() *Actor {
	return s.home
}

// Buildings returns the completed buildings of kind in creation order.
func (s *Simulation) Buildings(kind string) []*Actor {
	return s.buildings[kind]
}

// BuildingKinds returns the building kinds in order of first creation.
func (s *Simulation) BuildingKinds() []string {
	return s.buildingKinds
}

// BuildingsAt returns the completed buildings of kind at pos.
func (s *Simulation) BuildingsAt(kind string, pos world.Position) []*Actor {
	var out []*Actor
	for _, b := range s.buildings[kind] {
		if b.Position == pos {
			out = append(out, b)
		}
	}
	return out
}

func (s *Simulation) newActor(kind string, pos world.Position, building bool) *Actor {
	a := &Actor{
		ID:       s.spawner.Next(),
		Kind:     kind,
		Position: pos,
		Building: building,
	}
	if building {
		a.Waypoint = Waypoint{Position: pos}
	}
	return a
}

func (s *Simulation) addBuilding(kind string, pos world.Position) *Actor {
	b := s.newActor(kind, pos, true)
	if _, ok := s.buildings[kind]; !ok {
		s.buildingKinds = append(s.buildingKinds, kind)
	}
	s.buildings[kind] = append(s.buildings[kind], b)
	return b
}

func (s *Simulation) spawnUnit(kind string, pos world.Position) *Actor {
	u := s.newActor(kind, pos, false)
	s.Workers = append(s.Workers, u)
	return u
}

// record appends an event and logs it.
func (s *Simulation) record(category, desc string, attrs ...any) {
	s.Events = append(s.Events, Event{Tick: s.Time, Description: desc, Category: category})
	slog.Debug(desc, append([]any{"time", SimTime(s.Time)}, attrs...)...)
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Upgrades is the ordered set of researched technologies.
type Upgrades struct {
	order []string
	set   map[string]bool
}

// NewUpgrades creates an empty upgrade set.
func NewUpgrades() *Upgrades {
	return &Upgrades{set: make(map[string]bool)}
}

// Has reports whether tech has been researched.
func (u *Upgrades) Has(tech string) bool {
	return u.set[tech]
}

// Add marks tech as researched. Researching twice has no further effect.
func (u *Upgrades) Add(tech string) {
	if u.set[tech] {
		return
	}
	u.set[tech] = true
	u.order = append(u.order, tech)
}

// List returns the researched technologies in completion order.
func (u *Upgrades) List() []string {
	return u.order
}
