// Commands — the operations a build-order script can issue. Each one
// replaces (or, when queued, extends) the plans of the actors it is given.
package engine

import (
	"fmt"
	"strings"

	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/world"
)

// BuildOptions modifies a Build command.
type BuildOptions struct {
	Repeating bool // Keep laying new foundations at the same spot
	Queued    bool // Append to the current plan instead of replacing it
}

// TrainOptions modifies a Train command.
type TrainOptions struct {
	Repeating   bool
	Queued      bool
	MaxBatching bool     // Shrink each batch to what stock and headroom allow
	Waypoint    Waypoint // Overrides the building's waypoints when set
}

// assign gives a the actions in execution order. Unqueued, the current plan
// is cancelled and the actions pushed last-first so the first one runs
// next; queued, they go underneath everything already planned.
func (s *Simulation) assign(a *Actor, queued bool, actions ...Action) {
	if queued {
		for _, x := range actions {
			a.enqueue(x)
		}
		return
	}
	a.clear(s)
	for i := len(actions) - 1; i >= 0; i-- {
		a.push(actions[i])
	}
}

// SelectWorkers returns the units, in roster order, whose kind is one of the
// space-separated kinds, whose active action is named action ("idle" for an
// empty stack), and who stand at pos. Empty filters and a nil pos match
// everything; limit <= 0 means no limit. The result is remembered for
// PreviousSelection.
func (s *Simulation) SelectWorkers(kinds, action string, limit int, pos *world.Position) []*Actor {
	wanted := strings.Fields(kinds)
	matchKind := func(k string) bool {
		if len(wanted) == 0 {
			return true
		}
		for _, w := range wanted {
			if w == k {
				return true
			}
		}
		return false
	}

	var out []*Actor
	for _, w := range s.Workers {
		if limit > 0 && len(out) == limit {
			break
		}
		if !matchKind(w.Kind) {
			continue
		}
		if pos != nil && w.Position != *pos {
			continue
		}
		if action != "" && w.ActionName() != action {
			continue
		}
		out = append(out, w)
	}
	s.previous = out
	return out
}

// PreviousSelection returns the result of the last SelectWorkers call.
func (s *Simulation) PreviousSelection() []*Actor {
	return s.previous
}

// SelectBuilding returns a completed building of kind. With index >= 1 it is
// the index-th such building in creation order. Otherwise the first idle
// building at pos (any position when nil) wins, then the first busy one.
func (s *Simulation) SelectBuilding(kind string, pos *world.Position, index int) (*Actor, error) {
	list := s.buildings[kind]
	if index > 0 {
		if index > len(list) {
			return nil, preconditionf("no %s number %d, only %d built", kind, index, len(list))
		}
		return list[index-1], nil
	}

	var busy *Actor
	for _, b := range list {
		if pos != nil && b.Position != *pos {
			continue
		}
		if b.Idle() {
			return b, nil
		}
		if busy == nil {
			busy = b
		}
	}
	if busy == nil {
		where := ""
		if pos != nil {
			where = " at " + pos.String()
		}
		return nil, preconditionf("no %s%s", kind, where)
	}
	return busy, nil
}

// Build sends workers to pos to construct kind. Without a position the
// first worker's position is used.
func (s *Simulation) Build(workers []*Actor, kind string, pos *world.Position, opts BuildOptions) error {
	if len(workers) == 0 {
		return nil
	}
	r, err := s.Recipes.Lookup(kind)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if r.IsTech() {
		return preconditionf("%s is a technology, not a structure", kind)
	}
	target := workers[0].Position
	if pos != nil {
		target = *pos
	}
	for _, w := range workers {
		if w.Building {
			return preconditionf("%s %d cannot build", w.Kind, w.ID)
		}
		s.assign(w, opts.Queued,
			&Walk{Target: target},
			&Build{Kind: kind, Target: target, Repeating: opts.Repeating})
	}
	return nil
}

// Walk sends workers to pos.
func (s *Simulation) Walk(workers []*Actor, pos world.Position, queued bool) error {
	for _, w := range workers {
		if w.Building {
			return preconditionf("%s %d cannot walk", w.Kind, w.ID)
		}
		s.assign(w, queued, &Walk{Target: pos})
	}
	return nil
}

// Chop sends workers to cut wood at the forest at pos, or at the first
// forest with wood left.
func (s *Simulation) Chop(workers []*Actor, pos *world.Position, queued bool) error {
	return s.gatherAt(agents.GatherChop, workers, pos, queued)
}

// Berries sends workers to forage at the berry bush at pos, or at the first
// bush with food left.
func (s *Simulation) Berries(workers []*Actor, pos *world.Position, queued bool) error {
	return s.gatherAt(agents.GatherBerries, workers, pos, queued)
}

// Chicken sends workers to hunt at the chicken coop at pos, or at the first
// one with food left.
func (s *Simulation) Chicken(workers []*Actor, pos *world.Position, queued bool) error {
	return s.gatherAt(agents.GatherChicken, workers, pos, queued)
}

func (s *Simulation) gatherAt(g agents.GatherType, workers []*Actor, pos *world.Position, queued bool) error {
	if len(workers) == 0 {
		return nil
	}
	var target world.Position
	if pos != nil {
		target = *pos
	} else {
		kind, _ := nodeKindFor(g)
		n := s.Nodes.FirstAvailable(kind)
		if n == nil {
			return preconditionf("no %s left to %s", kind, g)
		}
		target = n.Position
	}
	for _, w := range workers {
		if w.Building {
			return preconditionf("%s %d cannot %s", w.Kind, w.ID, g)
		}
		gather, err := s.newNodeGather(g, target)
		if err != nil {
			return err
		}
		s.assign(w, queued, &Walk{Target: target}, gather)
	}
	return nil
}

// Farm sends each worker to a farming drop-site: pos if given, else the
// site chosen by the allocator. On arrival the worker builds the fields it
// needs, then farms.
func (s *Simulation) Farm(workers []*Actor, pos *world.Position, queued bool) error {
	for _, w := range workers {
		if w.Building {
			return preconditionf("%s %d cannot farm", w.Kind, w.ID)
		}
		site, err := s.assignFarmer(pos)
		if err != nil {
			return err
		}
		if !queued {
			w.clear(s)
		}
		slot := &farmSlot{site: site}
		s.assign(w, true,
			&Walk{Target: site, slot: slot},
			&BuildFields{Target: site, slot: slot},
			newFarm(slot))
	}
	return nil
}

// Train has building b produce count units of kind.
func (s *Simulation) Train(b *Actor, kind string, count int, opts TrainOptions) error {
	if b == nil || !b.Building {
		return preconditionf("train %s: not a building", kind)
	}
	if count < 1 {
		return preconditionf("train %s: count %d must be positive", kind, count)
	}
	r, err := s.Recipes.Lookup(kind)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if r.IsTech() {
		return preconditionf("%s is a technology; research it instead", kind)
	}
	if opts.Waypoint.IsSet() && !ValidOp(opts.Waypoint.Op) {
		return preconditionf("unknown waypoint operation %q", opts.Waypoint.Op)
	}
	s.assign(b, opts.Queued, &Train{
		Unit:        kind,
		Requested:   count,
		Waypoint:    opts.Waypoint,
		Repeating:   opts.Repeating,
		MaxBatching: opts.MaxBatching,
		recipe:      r,
	})
	return nil
}

// Research has building b research tech. The building must be of the kind
// the technology requires.
func (s *Simulation) Research(b *Actor, tech string, queued bool) error {
	if b == nil || !b.Building {
		return preconditionf("research %s: not a building", tech)
	}
	r, err := s.Recipes.Lookup(tech)
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}
	if !r.IsTech() {
		return preconditionf("%s is not a technology", tech)
	}
	if r.Requires != b.Kind {
		return preconditionf("%s is researched at a %s, not a %s", tech, r.Requires, b.Kind)
	}
	s.assign(b, queued, &Research{Tech: tech, recipe: r})
	return nil
}

// SetWaypoint sends units trained at b to pos to perform op. It replaces any
// waypoint schedule.
func (s *Simulation) SetWaypoint(b *Actor, pos world.Position, op string) error {
	if b == nil || !b.Building {
		return preconditionf("set waypoint: not a building")
	}
	if op == "" {
		op = OpWalk
	}
	if !ValidOp(op) {
		return preconditionf("unknown waypoint operation %q", op)
	}
	b.Schedule = nil
	b.Waypoint = Waypoint{Position: pos, Op: op}
	return nil
}

// SetWaypointSchedule makes b pick waypoints by worker count. It clears the
// static waypoint; a nil or empty schedule leaves b without any.
func (s *Simulation) SetWaypointSchedule(b *Actor, entries []ScheduleEntry) error {
	if b == nil || !b.Building {
		return preconditionf("set waypoint schedule: not a building")
	}
	for _, e := range entries {
		if e.Pop < 0 {
			return preconditionf("waypoint schedule threshold %d is negative", e.Pop)
		}
		if e.IsSet() && !ValidOp(e.Op) {
			return preconditionf("unknown waypoint operation %q", e.Op)
		}
	}
	b.Waypoint = Waypoint{Position: b.Position}
	if len(entries) == 0 {
		b.Schedule = nil
		return nil
	}
	b.Schedule = NewWaypointSchedule(entries)
	return nil
}
