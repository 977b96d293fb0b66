package script

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/boomsim/internal/engine"
	"github.com/talgya/boomsim/internal/world"
)

// Interpreter compiles command lines into engine commands. A command can
// call only the simulation operations registered here and read the home
// base as cc.
type Interpreter struct {
	sim     *engine.Simulation
	env     map[string]any
	options []expr.Option
}

// NewInterpreter creates an interpreter bound to sim.
func NewInterpreter(sim *engine.Simulation) *Interpreter {
	in := &Interpreter{
		sim: sim,
		env: map[string]any{"cc": sim.HomeBase()},
	}
	in.options = []expr.Option{expr.Env(in.env)}
	for _, fn := range in.functions() {
		in.options = append(in.options, expr.Function(fn.sig.name, in.wrap(fn)))
	}
	return in
}

// Compile checks a command line and prepares it for execution.
func (in *Interpreter) Compile(src string) (*vm.Program, error) {
	prog, err := expr.Compile(src, in.options...)
	if err != nil {
		return nil, fmt.Errorf("compile command %q: %w", src, err)
	}
	return prog, nil
}

// Command wraps a compiled program for engine.Engine.Step.
func (in *Interpreter) Command(prog *vm.Program) engine.Command {
	return func(*engine.Simulation) error {
		_, err := vm.Run(prog, in.env)
		return err
	}
}

// Exec compiles and runs src immediately.
func (in *Interpreter) Exec(src string) (any, error) {
	prog, err := in.Compile(src)
	if err != nil {
		return nil, err
	}
	return vm.Run(prog, in.env)
}

type function struct {
	sig  signature
	call func(args map[string]any) (any, error)
}

func (in *Interpreter) wrap(fn function) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		args, err := fn.sig.bind(params)
		if err != nil {
			return nil, err
		}
		out, err := fn.call(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.sig.name, err)
		}
		return out, nil
	}
}

// argReader converts bound arguments, keeping the first failure.
type argReader struct {
	args map[string]any
	err  error
}

func (r *argReader) fail(name string, err error) {
	if r.err == nil && err != nil {
		r.err = fmt.Errorf("argument %q: %w", name, err)
	}
}

func (r *argReader) str(name string) string {
	v, err := toString(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) integer(name string) int {
	v, err := toInt(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) flag(name string) bool {
	v, err := toBool(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) pos(name string) *world.Position {
	v, err := toPosition(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) workers(name string) []*engine.Actor {
	v, err := toWorkers(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) building(name string) *engine.Actor {
	v, err := toBuilding(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) waypoint(name string) engine.Waypoint {
	v, err := toWaypoint(r.args[name])
	r.fail(name, err)
	return v
}

func (r *argReader) schedule(name string) []engine.ScheduleEntry {
	v, err := toSchedule(r.args[name])
	r.fail(name, err)
	return v
}

func (in *Interpreter) functions() []function {
	s := in.sim
	return []function{
		{
			sig: signature{"selectWorkers", []string{"kinds", "action", "num", "pos"}, 1},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				kinds, action, num, pos := r.str("kinds"), r.str("action"), r.integer("num"), r.pos("pos")
				if r.err != nil {
					return nil, r.err
				}
				return s.SelectWorkers(kinds, action, num, pos), nil
			},
		},
		{
			sig: signature{"previousWorkerSelection", nil, 0},
			call: func(map[string]any) (any, error) {
				return s.PreviousSelection(), nil
			},
		},
		{
			sig: signature{"selectBuilding", []string{"kind", "pos", "num"}, 1},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				kind, pos, num := r.str("kind"), r.pos("pos"), r.integer("num")
				if r.err != nil {
					return nil, r.err
				}
				return s.SelectBuilding(kind, pos, num)
			},
		},
		{
			sig: signature{"build", []string{"workers", "kind", "pos", "repeating", "queued"}, 2},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				workers, kind, pos := r.workers("workers"), r.str("kind"), r.pos("pos")
				opts := engine.BuildOptions{Repeating: r.flag("repeating"), Queued: r.flag("queued")}
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.Build(workers, kind, pos, opts)
			},
		},
		{
			sig: signature{"walk", []string{"workers", "pos", "queued"}, 2},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				workers, pos, queued := r.workers("workers"), r.pos("pos"), r.flag("queued")
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.Walk(workers, *pos, queued)
			},
		},
		in.gather("chop", s.Chop),
		in.gather("berries", s.Berries),
		in.gather("chicken", s.Chicken),
		in.gather("farm", s.Farm),
		{
			sig: signature{"train", []string{"building", "unitKind", "numUnits", "repeating", "queued", "waypoint", "maxBatching"}, 3},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				b, kind, count := r.building("building"), r.str("unitKind"), r.integer("numUnits")
				opts := engine.TrainOptions{
					Repeating:   r.flag("repeating"),
					Queued:      r.flag("queued"),
					Waypoint:    r.waypoint("waypoint"),
					MaxBatching: r.flag("maxBatching"),
				}
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.Train(b, kind, count, opts)
			},
		},
		{
			sig: signature{"research", []string{"building", "techName", "queued"}, 2},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				b, tech, queued := r.building("building"), r.str("techName"), r.flag("queued")
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.Research(b, tech, queued)
			},
		},
		{
			sig: signature{"setWaypoint", []string{"building", "pos", "command"}, 2},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				b, pos, op := r.building("building"), r.pos("pos"), r.str("command")
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.SetWaypoint(b, *pos, op)
			},
		},
		{
			sig: signature{"setWaypointSchedule", []string{"building", "schedule"}, 1},
			call: func(args map[string]any) (any, error) {
				r := &argReader{args: args}
				b, sched := r.building("building"), r.schedule("schedule")
				if r.err != nil {
					return nil, r.err
				}
				return nil, s.SetWaypointSchedule(b, sched)
			},
		},
	}
}

type gatherFunc func(workers []*engine.Actor, pos *world.Position, queued bool) error

func (in *Interpreter) gather(name string, op gatherFunc) function {
	return function{
		sig: signature{name, []string{"workers", "pos", "queued"}, 1},
		call: func(args map[string]any) (any, error) {
			r := &argReader{args: args}
			workers, pos, queued := r.workers("workers"), r.pos("pos"), r.flag("queued")
			if r.err != nil {
				return nil, r.err
			}
			return nil, op(workers, pos, queued)
		},
	}
}
