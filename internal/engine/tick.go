// Package engine provides the tick-based build-order simulation: actors and
// their action stacks, construction, production, gathering, farming, and
// the per-tick loop that drives them.
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/talgya/boomsim/internal/world"
)

// Command is one scripted operation applied at the start of a tick.
type Command func(s *Simulation) error

// StopFunc reports whether the run should end, given the state after a tick.
type StopFunc func(v View) (bool, error)

// Engine drives a Simulation forward one tick at a time.
type Engine struct {
	Sim           *Simulation
	SummaryPeriod int  // Ticks between summaries; 0 disables them
	DebugEnd      bool // Every ending returns ErrRunFinished
	Stop          StopFunc
	Surplus       *SurplusWatch
	Out           io.Writer // Summary and report lines; nil discards them

	Summaries []Summary
	Outcome   Outcome
	Overflows int // Times the population went over the cap
}

// NewEngine creates an engine for s.
func NewEngine(s *Simulation, summaryPeriod int) *Engine {
	return &Engine{
		Sim:           s,
		SummaryPeriod: summaryPeriod,
		Out:           io.Discard,
	}
}

// Step advances the simulation by one tick, applying cmds first. It returns
// false once the run has ended; the error is non-nil for a failed command or
// action, or ErrRunFinished when DebugEnd is set.
func (e *Engine) Step(cmds []Command) (bool, error) {
	if e.Outcome != OutcomeRunning {
		return false, nil
	}
	s := e.Sim

	if e.SummaryPeriod > 0 && s.Time%e.SummaryPeriod == 0 {
		e.summarize()
	}
	if e.Surplus != nil {
		e.Surplus.Observe(s.Time, s.Ledger.Stock)
	}
	s.Ledger.ResetIncome()

	for i, cmd := range cmds {
		if err := cmd(s); err != nil {
			e.Outcome = OutcomeFailed
			return false, fmt.Errorf("command %d at %s: %w", i+1, SimTime(s.Time), err)
		}
	}
	if err := s.actAll(); err != nil {
		e.Outcome = OutcomeFailed
		return false, fmt.Errorf("at %s: %w", SimTime(s.Time), err)
	}
	s.Time++

	return e.check()
}

// actAll runs every actor's active action: units in roster order, then
// buildings grouped by kind in order of first creation.
func (s *Simulation) actAll() error {
	for _, w := range s.Workers {
		if err := s.act(w); err != nil {
			return err
		}
	}
	for _, kind := range s.buildingKinds {
		for _, b := range s.buildings[kind] {
			if err := s.act(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Simulation) act(a *Actor) error {
	x := a.Active()
	if x == nil {
		return nil
	}
	if err := x.act(s, a); err != nil {
		return fmt.Errorf("%s %d %s: %w", a.Kind, a.ID, x.Name(), err)
	}
	return nil
}

// check runs the end-of-tick checks.
func (e *Engine) check() (bool, error) {
	s := e.Sim
	if s.Ledger.Stock.Negative() {
		slog.Warn("resources went below zero", "stock", s.Ledger.Stock.String(), "time", SimTime(s.Time))
		e.printf("Resources went below 0: %s\n", s.Ledger.Stock)
		e.Outcome = OutcomeUnderflow
		return false, e.end(true)
	}

	over := s.Ledger.Overpopulated()
	if over && !s.overflown {
		e.Overflows++
		slog.Warn("not enough houses", "pop", s.Ledger.Pop, "max_pop", s.Ledger.MaxPop, "time", SimTime(s.Time))
	}
	s.overflown = over

	if e.Stop != nil {
		stop, err := e.Stop(s.View())
		if err != nil {
			e.Outcome = OutcomeFailed
			return false, fmt.Errorf("stop condition at %s: %w", SimTime(s.Time), err)
		}
		if stop {
			slog.Info("hit stop condition", "time", SimTime(s.Time))
			e.printf("Hit stop condition at %s\n", SimTime(s.Time))
			e.Outcome = OutcomeStopped
			return false, e.end(true)
		}
	}
	return true, nil
}

// Finish ends a run that reached the end of its script.
func (e *Engine) Finish() error {
	if e.Outcome != OutcomeRunning {
		return nil
	}
	e.Outcome = OutcomeCompleted
	return e.end(false)
}

func (e *Engine) end(early bool) error {
	if early {
		e.summarize()
	}
	if e.Surplus != nil {
		e.printf("%s\n", e.Surplus.Report())
	}
	slog.Info("run finished", "outcome", e.Outcome.String(), "time", SimTime(e.Sim.Time), "stock", e.Sim.Ledger.Stock.String(),
		"forests", e.Sim.Nodes.Count(world.NodeForest), "wood_left", e.Sim.Nodes.Remaining(world.NodeForest))
	if e.DebugEnd {
		return ErrRunFinished
	}
	return nil
}

func (e *Engine) summarize() {
	sum := e.Sim.Summarize()
	e.Summaries = append(e.Summaries, sum)
	e.printf("%s\n", sum)
}

func (e *Engine) printf(format string, args ...any) {
	if e.Out == nil {
		return
	}
	fmt.Fprintf(e.Out, format, args...)
}

// SimTime formats a tick as minutes and seconds, "MMM:SS".
func SimTime(tick int) string {
	return fmt.Sprintf("%03d:%02d", tick/60, tick%60)
}
