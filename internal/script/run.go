package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/boomsim/internal/engine"
	"github.com/talgya/boomsim/internal/world"
)

// step is a directive with its compiled form.
type step struct {
	Directive
	command engine.Command
	stop    *Stop
}

// compile checks every command and stop condition in sc before the run
// starts, so a typo on the last line fails before the first tick.
func compile(sc *Script, in *Interpreter) ([]step, error) {
	out := make([]step, 0, len(sc.Directives))
	for _, d := range sc.Directives {
		st := step{Directive: d}
		switch d.Kind {
		case KindCommand:
			prog, err := in.Compile(d.Expr)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", d.Line, err)
			}
			st.command = in.Command(prog)
		case KindStopWhen:
			stop, err := CompileStop(d.Expr)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", d.Line, err)
			}
			st.stop = stop
		}
		out = append(out, st)
	}
	return out, nil
}

// Run plays sc on eng. Commands are batched and applied together on the
// tick a time directive is reached; the clock then advances to that time.
// Commands left at the end (or a script without any time directive) are
// applied and the run continues to minEnd. Run returns nil when the run
// ends on its own, whether it finished the script or was cut short by an
// underflow or the stop condition.
func Run(ctx context.Context, sc *Script, eng *engine.Engine, minEnd int) error {
	in := NewInterpreter(eng.Sim)
	steps, err := compile(sc, in)
	if err != nil {
		return err
	}

	r := &runner{ctx: ctx, eng: eng}
	var pending []engine.Command
	stepped := false
	for _, st := range steps {
		switch st.Kind {
		case KindTime:
			stepped = true
			if ok, err := r.until(pending, st.Tick); !ok {
				return err
			}
			pending = nil
		case KindSkipBy:
			eng.SummaryPeriod = st.Period
		case KindNode:
			eng.Sim.Nodes.Add(st.Node, st.Position, st.Quantity)
		case KindStopWhen:
			eng.Stop = st.stop.Func()
		case KindDebugEnd:
			eng.DebugEnd = true
		case KindReportSurplus:
			eng.Surplus = engine.NewSurplusWatch(st.Level)
		case KindGenerate:
			cfg := world.DefaultGenConfig()
			cfg.Seed = st.Seed
			if st.Radius > 0 {
				cfg.Radius = st.Radius
			}
			n := world.Generate(cfg, eng.Sim.Nodes)
			slog.Info("generated resource nodes", "seed", st.Seed, "radius", cfg.Radius, "nodes", n)
		case KindCommand:
			pending = append(pending, st.command)
		}
	}

	if len(pending) > 0 || !stepped {
		if ok, err := r.until(pending, minEnd); !ok {
			return err
		}
	}
	return eng.Finish()
}

type runner struct {
	ctx context.Context
	eng *engine.Engine
}

// until applies cmds in one tick, then steps until the clock reaches tick.
// It returns false when the run has ended.
func (r *runner) until(cmds []engine.Command, tick int) (bool, error) {
	ok, err := r.step(cmds)
	for ok && r.eng.Sim.Time < tick {
		ok, err = r.step(nil)
	}
	return ok, err
}

func (r *runner) step(cmds []engine.Command) (bool, error) {
	if err := r.ctx.Err(); err != nil {
		return false, fmt.Errorf("run interrupted at %s: %w", engine.SimTime(r.eng.Sim.Time), err)
	}
	return r.eng.Step(cmds)
}
