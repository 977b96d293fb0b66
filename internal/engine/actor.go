package engine

import (
	"github.com/talgya/boomsim/internal/agents"
	"github.com/talgya/boomsim/internal/world"
)

// IdleAction is the action name reported for an actor with an empty stack.
const IdleAction = "idle"

// Actor is a unit or a building. The top of its action stack is the active
// action; an empty stack means idle.
type Actor struct {
	ID       agents.ActorID
	Kind     string
	Position world.Position
	Building bool

	// Building only: where newly trained units go.
	Waypoint Waypoint
	Schedule *WaypointSchedule

	stack []Action // Bottom first; top is the last element
}

// Active returns the action that runs this tick, or nil when idle.
func (a *Actor) Active() Action {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// Idle returns true if the actor has nothing to do.
func (a *Actor) Idle() bool {
	return len(a.stack) == 0
}

// ActionName returns the active action's name, or "idle".
func (a *Actor) ActionName() string {
	if act := a.Active(); act != nil {
		return act.Name()
	}
	return IdleAction
}

// Pending returns the number of actions on the stack.
func (a *Actor) Pending() int {
	return len(a.stack)
}

// push places x on top of the stack so it runs next.
func (a *Actor) push(x Action) {
	a.stack = append(a.stack, x)
}

// enqueue places x at the bottom of the stack so it runs after everything
// already planned.
func (a *Actor) enqueue(x Action) {
	a.stack = append(a.stack, nil)
	copy(a.stack[1:], a.stack)
	a.stack[0] = x
}

// pop removes the active action.
func (a *Actor) pop() {
	if len(a.stack) == 0 {
		return
	}
	a.stack[len(a.stack)-1] = nil
	a.stack = a.stack[:len(a.stack)-1]
}

// clear cancels the active action and discards the rest of the plan.
// Only the active action gets a chance to refund what it committed; a
// discarded farming plan gives back its drop-site slot.
func (a *Actor) clear(s *Simulation) {
	if act := a.Active(); act != nil {
		act.cancel(s, a)
	}
	for _, act := range a.stack {
		if h, ok := act.(slotHolder); ok {
			h.farmSlot().release(s)
		}
	}
	a.stack = nil
}
