package machine

import "fmt"

// EvalError is an error raised while the CSE machine is running. Line is the
// 1-based source line the error is associated with, or 0 when no line is
// available (such as for arithmetic errors).
type EvalError struct {
	Message string
	Line    int
}

func (ee *EvalError) Error() string {
	return ee.Message
}

func evalErrorf(format string, a ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, a...)}
}

// Environment is one frame in the tree of environment frames. Frames are
// never mutated after construction and never freed until the interpretation
// ends; closures refer to them by number through the machine's catalogue.
type Environment struct {
	number   int
	parent   *Environment
	bindings map[string]Value
}

// NewEnvironment creates a frame with the given number, parent, and
// bindings. The root frame has a nil parent; every other frame points upward
// to an already-existing one. A nil bindings map is treated as empty.
func NewEnvironment(number int, parent *Environment, bindings map[string]Value) *Environment {
	if bindings == nil {
		bindings = map[string]Value{}
	}
	return &Environment{number: number, parent: parent, bindings: bindings}
}

// Number returns the frame's unique number.
func (e *Environment) Number() int {
	return e.number
}

// Lookup resolves a name by walking the parent chain starting at this frame.
// line is the source line of the reference and is used in the error when the
// name is unbound.
func (e *Environment) Lookup(name string, line int) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, nil
		}
	}
	return Value{}, &EvalError{
		Message: fmt.Sprintf("undeclared identifier %q in line %d", name, line),
		Line:    line,
	}
}

// NewPrimitiveEnv builds frame 0, holding the names visible to every RPAL
// program. It is created fresh for each interpretation.
func NewPrimitiveEnv() *Environment {
	return NewEnvironment(0, nil, map[string]Value{
		"Print":        Builtin("print"),
		"print":        Builtin("print"),
		"Conc":         Builtin("conc"),
		"Stem":         Builtin("stem"),
		"Stern":        Builtin("stern"),
		"Isinteger":    Builtin("isInteger"),
		"Isstring":     Builtin("isString"),
		"Istruthvalue": Builtin("isTruthValue"),
		"Isfunction":   Builtin("isFunction"),
		"Istuple":      Builtin("isTuple"),
		"Isdummy":      Builtin("isDummy"),
		"Order":        Builtin("order"),
		"Null":         Builtin("null"),
		"Y":            YCombinator(),
		"nil":          Nil(),
	})
}
