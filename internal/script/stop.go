package script

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/boomsim/internal/engine"
)

// Stop is a compiled stop condition. It can read engine.View and nothing
// else.
type Stop struct {
	Source  string
	program *vm.Program
}

// CompileStop compiles a boolean expression over engine.View.
func CompileStop(src string) (*Stop, error) {
	prog, err := expr.Compile(src, expr.Env(engine.View{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile stop condition %q: %w", src, err)
	}
	return &Stop{Source: src, program: prog}, nil
}

// Eval reports whether the condition holds for v.
func (st *Stop) Eval(v engine.View) (bool, error) {
	out, err := vm.Run(st.program, v)
	if err != nil {
		return false, fmt.Errorf("stop condition %q: %w", st.Source, err)
	}
	return out.(bool), nil
}

// Func adapts the condition for engine.Engine.Stop.
func (st *Stop) Func() engine.StopFunc {
	return st.Eval
}
