package engine

import (
	"fmt"

	"github.com/talgya/boomsim/internal/economy"
)

// Outcome describes how a run ended.
type Outcome uint8

const (
	OutcomeRunning   Outcome = iota
	OutcomeCompleted         // Reached the end of the script
	OutcomeUnderflow         // A resource went below zero
	OutcomeStopped           // The stop condition held
	OutcomeFailed            // A command or action failed
)

// String returns the outcome name stored in run history.
func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeCompleted:
		return "completed"
	case OutcomeUnderflow:
		return "underflow"
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SurplusWatch finds the first tick since which every stock has stayed at
// or above Level.
type SurplusWatch struct {
	Level economy.Resources

	since   int
	holding bool
}

// NewSurplusWatch watches for a sustained surplus of level.
func NewSurplusWatch(level economy.Resources) *SurplusWatch {
	return &SurplusWatch{Level: level}
}

// Observe samples the stock at tick.
func (w *SurplusWatch) Observe(tick int, stock economy.Resources) {
	above := stock.AtLeast(w.Level)
	switch {
	case above && !w.holding:
		w.since = tick
		w.holding = true
	case !above:
		w.holding = false
	}
}

// Since returns the tick the current surplus began, if one is holding.
func (w *SurplusWatch) Since() (int, bool) {
	return w.since, w.holding
}

// Report describes the surplus for the end-of-run output.
func (w *SurplusWatch) Report() string {
	if !w.holding {
		return fmt.Sprintf("No sustained surplus of %s", w.Level)
	}
	return fmt.Sprintf("Surplus of %s occurred first at %s and continued until the end.", w.Level, SimTime(w.since))
}
