package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/boomsim/internal/world"
)

// Waypoint operations understood by the dispatcher.
const (
	OpWalk    = "walk"
	OpChop    = "chop"
	OpFarm    = "farm"
	OpBerries = "berries"
	OpChicken = "chicken"
)

// Waypoint is a follow-up order for freshly trained units. The zero Op means
// no automatic order.
type Waypoint struct {
	Position world.Position `json:"position"`
	Op       string         `json:"op,omitempty"`
}

// IsSet reports whether the waypoint carries an order.
func (w Waypoint) IsSet() bool {
	return w.Op != ""
}

// ValidOp reports whether op is a waypoint operation.
func ValidOp(op string) bool {
	switch op {
	case OpWalk, OpChop, OpFarm, OpBerries, OpChicken:
		return true
	}
	return false
}

// ScheduleEntry applies Waypoint once the worker count reaches Pop.
type ScheduleEntry struct {
	Pop int
	Waypoint
}

// WaypointSchedule picks a waypoint by worker count.
type WaypointSchedule struct {
	entries []ScheduleEntry
}

// NewWaypointSchedule sorts entries by threshold. Entries with equal
// thresholds keep their given order.
func NewWaypointSchedule(entries []ScheduleEntry) *WaypointSchedule {
	sorted := make([]ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pop < sorted[j].Pop
	})
	return &WaypointSchedule{entries: sorted}
}

// Entries returns the schedule in ascending threshold order.
func (ws *WaypointSchedule) Entries() []ScheduleEntry {
	return ws.entries
}

// Lookup returns the waypoint of the greatest threshold not above pop, or
// the zero Waypoint if pop is below every threshold.
func (ws *WaypointSchedule) Lookup(pop int) Waypoint {
	var found Waypoint
	for _, e := range ws.entries {
		if e.Pop > pop {
			break
		}
		found = e.Waypoint
	}
	return found
}

// waypointFor resolves the follow-up order for a unit trained at b.
func (s *Simulation) waypointFor(b *Actor, explicit Waypoint) Waypoint {
	if explicit.IsSet() {
		return explicit
	}
	if b.Schedule != nil {
		if wp := b.Schedule.Lookup(len(s.Workers)); wp.IsSet() {
			return wp
		}
	}
	return b.Waypoint
}

// dispatch gives a newly trained unit its follow-up order.
func (s *Simulation) dispatch(b, u *Actor, explicit Waypoint) error {
	wp := s.waypointFor(b, explicit)
	if !wp.IsSet() {
		return nil
	}
	if err := s.issue(u, wp); err != nil {
		return err
	}
	s.record("waypoint", fmt.Sprintf("%s %d sent to %s at %v", u.Kind, u.ID, wp.Op, wp.Position), "op", wp.Op)
	return nil
}

func (s *Simulation) issue(u *Actor, wp Waypoint) error {
	units := []*Actor{u}
	pos := wp.Position
	switch wp.Op {
	case OpWalk:
		return s.Walk(units, pos, false)
	case OpChop:
		return s.Chop(units, &pos, false)
	case OpFarm:
		return s.Farm(units, &pos, false)
	case OpBerries:
		return s.Berries(units, &pos, false)
	case OpChicken:
		return s.Chicken(units, &pos, false)
	}
	return preconditionf("unknown waypoint operation %q", wp.Op)
}
