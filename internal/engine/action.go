package engine

import (
	"github.com/talgya/boomsim/internal/world"
)

// Action is one entry on an actor's action stack. The set of actions is
// closed: Walk, Build, Train, Research, Gather, and BuildFields.
//
// act runs once per tick while the action is on top of the stack; an action
// that has finished pops itself. cancel runs when a new command pre-empts
// the action and must refund anything it has committed but not delivered.
type Action interface {
	Name() string
	act(s *Simulation, a *Actor) error
	cancel(s *Simulation, a *Actor)
}

var (
	_ Action = (*Walk)(nil)
	_ Action = (*Build)(nil)
	_ Action = (*Train)(nil)
	_ Action = (*Research)(nil)
	_ Action = (*Gather)(nil)
	_ Action = (*BuildFields)(nil)
)

// Walk moves an actor to Target. Travel takes one tick per unit of
// straight-line distance, measured from where the actor stands when the
// walk starts.
type Walk struct {
	Target world.Position

	started  bool
	distance float64
	elapsed  int
	slot     *farmSlot // set on the way to a farm
}

func (w *Walk) Name() string { return "walk" }

func (w *Walk) act(s *Simulation, a *Actor) error {
	if !w.started {
		w.distance = world.Distance(a.Position, w.Target)
		w.started = true
	}
	w.elapsed++
	if float64(w.elapsed) >= w.distance {
		a.Position = w.Target
		a.pop()
	}
	return nil
}

func (w *Walk) cancel(s *Simulation, a *Actor) {}

func (w *Walk) farmSlot() *farmSlot { return w.slot }
