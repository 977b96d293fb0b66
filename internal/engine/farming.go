// Farming — drop-site allocation and field construction. Each field feeds
// five farmers; farmers claim a rank when they arrive and build fields until
// their rank is covered.
package engine

import (
	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/world"
)

const (
	farmersPerField     = 5
	homeFieldCap        = 6
	farmsteadFieldCap   = 4
	farmsteadRowSpacing = 2
)

// dropSite tracks farmers sent to a farming drop-site.
type dropSite struct {
	assigned int // Ordered to farm here
	ranks    int // Arrived and claimed a rank
}

// FarmAllocation reports the counters of the drop-site at pos.
func (s *Simulation) FarmAllocation(pos world.Position) (assigned, ranks int) {
	if d := s.farms[pos]; d != nil {
		return d.assigned, d.ranks
	}
	return 0, 0
}

func (s *Simulation) dropSite(pos world.Position) *dropSite {
	d := s.farms[pos]
	if d == nil {
		d = &dropSite{}
		s.farms[pos] = d
	}
	return d
}

func (s *Simulation) isHome(pos world.Position) bool {
	return pos == s.home.Position
}

func (s *Simulation) fieldCap(pos world.Position) int {
	if s.isHome(pos) {
		return homeFieldCap
	}
	return farmsteadFieldCap
}

// farmHeadroom reports whether one more farmer fits at pos.
func (s *Simulation) farmHeadroom(pos world.Position) bool {
	assigned, _ := s.FarmAllocation(pos)
	return assigned+1 <= s.fieldCap(pos)*farmersPerField
}

// remoteFarmSites lists farmstead drop-sites: built, founded, then planned.
func (s *Simulation) remoteFarmSites() []world.Position {
	var out []world.Position
	seen := make(map[world.Position]bool)
	add := func(p world.Position) {
		if !seen[p] && !s.isHome(p) {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, b := range s.buildings[agents.KindFarmstead] {
		add(b.Position)
	}
	for _, f := range s.foundations[agents.KindFarmstead] {
		add(f.Position)
	}
	for _, p := range s.farmSites {
		add(p)
	}
	return out
}

// chooseDropSite picks where a farmer without an explicit position goes:
// the home base while it has room, else the first farmstead with room,
// else a new site one row past the furthest farmstead.
func (s *Simulation) chooseDropSite() world.Position {
	if s.farmHeadroom(s.home.Position) {
		return s.home.Position
	}
	highest := 0.0
	for _, p := range s.remoteFarmSites() {
		if p.Y > highest {
			highest = p.Y
		}
		if s.farmHeadroom(p) {
			return p
		}
	}
	return world.Pos(0, highest+farmsteadRowSpacing)
}

// assignFarmer reserves a farming slot at pos, or at the default drop-site
// when pos is nil.
func (s *Simulation) assignFarmer(pos *world.Position) (world.Position, error) {
	var site world.Position
	if pos == nil {
		site = s.chooseDropSite()
	} else {
		site = *pos
		if !s.farmHeadroom(site) {
			return site, preconditionf("drop-site %v already has %d farmers", site, s.fieldCap(site)*farmersPerField)
		}
	}
	s.dropSite(site).assigned++
	if !s.isHome(site) {
		known := false
		for _, p := range s.farmSites {
			if p == site {
				known = true
				break
			}
		}
		if !known {
			s.farmSites = append(s.farmSites, site)
		}
	}
	return site, nil
}

// releaseFarmer frees a slot when a farmer is pulled off the fields.
func (s *Simulation) releaseFarmer(pos world.Position) {
	if d := s.farms[pos]; d != nil && d.assigned > 0 {
		d.assigned--
	}
}

// farmSlot is one farmer's reservation at a drop-site. Every action of the
// farming plan holds the same slot, and it is released at most once.
type farmSlot struct {
	site     world.Position
	released bool
}

func (f *farmSlot) release(s *Simulation) {
	if f == nil || f.released {
		return
	}
	f.released = true
	s.releaseFarmer(f.site)
}

// slotHolder is an action that belongs to a farming plan.
type slotHolder interface {
	farmSlot() *farmSlot
}

func newFarm(slot *farmSlot) *Gather {
	return &Gather{Type: agents.GatherFarm, Target: slot.site, Resource: economy.Food, slot: slot}
}

// BuildFields runs ahead of a farmer's Farm action. It claims a rank at the
// drop-site, builds the farmstead if the site is remote and has none, then
// builds fields until there is one field per five ranks.
type BuildFields struct {
	Target world.Position

	rank int
	slot *farmSlot
}

func (f *BuildFields) Name() string { return "build fields" }

// Rank returns the arrival rank claimed at the drop-site, or 0.
func (f *BuildFields) Rank() int { return f.rank }

func (f *BuildFields) act(s *Simulation, a *Actor) error {
	if a.Position != f.Target {
		return preconditionf("%s %d must stand at %v to build fields, is at %v", a.Kind, a.ID, f.Target, a.Position)
	}
	if f.rank == 0 {
		d := s.dropSite(f.Target)
		d.ranks++
		f.rank = d.ranks
	}
	if !s.isHome(f.Target) && len(s.BuildingsAt(agents.KindFarmstead, f.Target)) == 0 {
		a.push(&Build{Kind: agents.KindFarmstead, Target: f.Target, slot: f.slot})
		return nil
	}

	fields := len(s.BuildingsAt(agents.KindField, f.Target))
	if fields*farmersPerField >= f.rank {
		a.pop()
		return nil
	}
	a.push(&Build{Kind: agents.KindField, Target: f.Target, slot: f.slot})
	return nil
}

func (f *BuildFields) cancel(s *Simulation, a *Actor) {}

func (f *BuildFields) farmSlot() *farmSlot { return f.slot }
