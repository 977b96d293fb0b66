package script

import (
	"fmt"
	"math"

	"github.com/talgya/boomsim/internal/engine"
	"github.com/talgya/boomsim/internal/world"
)

// signature names a script function's parameters; the first required of
// them must be given.
type signature struct {
	name     string
	params   []string
	required int
}

// bind matches call arguments to parameter names. Arguments may be
// positional, and a trailing map supplies the rest by name.
func (sig signature) bind(args []any) (map[string]any, error) {
	out := make(map[string]any, len(sig.params))
	var named map[string]any
	if n := len(args); n > 0 {
		if m, ok := args[n-1].(map[string]any); ok {
			named = m
			args = args[:n-1]
		}
	}
	if len(args) > len(sig.params) {
		return nil, fmt.Errorf("%s: takes at most %d arguments, got %d", sig.name, len(sig.params), len(args))
	}
	for i, a := range args {
		out[sig.params[i]] = a
	}
	for k, v := range named {
		known := false
		for _, p := range sig.params {
			if p == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%s: unknown argument %q", sig.name, k)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%s: argument %q given twice", sig.name, k)
		}
		out[k] = v
	}
	for _, p := range sig.params[:sig.required] {
		if out[p] == nil {
			return nil, fmt.Errorf("%s: missing argument %q", sig.name, p)
		}
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	return 0, fmt.Errorf("want a number, got %T", v)
}

func toInt(v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("want a whole number, got %v", f)
	}
	return int(f), nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	}
	return false, fmt.Errorf("want true or false, got %T", v)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", fmt.Errorf("want a string, got %T", v)
}

// toPosition accepts [x, y] or a world.Position; nil means no position.
func toPosition(v any) (*world.Position, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case world.Position:
		return &p, nil
	case *world.Position:
		return p, nil
	case []any:
		if len(p) != 2 {
			return nil, fmt.Errorf("position wants [x, y], got %d values", len(p))
		}
		x, err := toFloat(p[0])
		if err != nil {
			return nil, fmt.Errorf("position x: %w", err)
		}
		y, err := toFloat(p[1])
		if err != nil {
			return nil, fmt.Errorf("position y: %w", err)
		}
		pos := world.Pos(x, y)
		return &pos, nil
	}
	return nil, fmt.Errorf("want a position [x, y], got %T", v)
}

// toWorkers accepts a selection, a single actor, or a list of actors.
func toWorkers(v any) ([]*engine.Actor, error) {
	switch w := v.(type) {
	case []*engine.Actor:
		return w, nil
	case *engine.Actor:
		return []*engine.Actor{w}, nil
	case []any:
		out := make([]*engine.Actor, 0, len(w))
		for i, x := range w {
			a, ok := x.(*engine.Actor)
			if !ok {
				return nil, fmt.Errorf("worker %d: want a unit, got %T", i, x)
			}
			out = append(out, a)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want units, got %T", v)
}

func toBuilding(v any) (*engine.Actor, error) {
	b, ok := v.(*engine.Actor)
	if !ok || b == nil {
		return nil, fmt.Errorf("want a building, got %T", v)
	}
	return b, nil
}

// toWaypoint accepts [position, op]; nil means no waypoint.
func toWaypoint(v any) (engine.Waypoint, error) {
	switch w := v.(type) {
	case nil:
		return engine.Waypoint{}, nil
	case engine.Waypoint:
		return w, nil
	case []any:
		if len(w) != 2 {
			return engine.Waypoint{}, fmt.Errorf("waypoint wants [position, op], got %d values", len(w))
		}
		pos, err := toPosition(w[0])
		if err != nil {
			return engine.Waypoint{}, fmt.Errorf("waypoint: %w", err)
		}
		op, err := toString(w[1])
		if err != nil {
			return engine.Waypoint{}, fmt.Errorf("waypoint op: %w", err)
		}
		if pos == nil {
			return engine.Waypoint{Op: op}, nil
		}
		return engine.Waypoint{Position: *pos, Op: op}, nil
	}
	return engine.Waypoint{}, fmt.Errorf("want a waypoint [position, op], got %T", v)
}

// toSchedule accepts [[pop, [position, op]], ...]; nil clears the schedule.
func toSchedule(v any) ([]engine.ScheduleEntry, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("want a schedule [[pop, waypoint], ...], got %T", v)
	}
	out := make([]engine.ScheduleEntry, 0, len(list))
	for i, x := range list {
		pair, ok := x.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("schedule entry %d: want [pop, waypoint]", i)
		}
		pop, err := toInt(pair[0])
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d pop: %w", i, err)
		}
		wp, err := toWaypoint(pair[1])
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
		out = append(out, engine.ScheduleEntry{Pop: pop, Waypoint: wp})
	}
	return out, nil
}
