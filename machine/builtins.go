package machine

import (
	"fmt"
	"strings"
)

// file builtins.go implements rule 3, the application of built-in operators,
// and the print builtin.
//
// All built-ins are unary except conc, which is curried over two gammas in
// the source. Applying conc therefore consumes the pending second gamma from
// the control stack so that both string operands are taken in one step; this
// mirrors the discipline described in the machine's design notes.

// rule3 applies a built-in operator other than print.
func (m *Machine) rule3() error {
	m.popControl() // gamma

	op, err := m.pop()
	if err != nil {
		return err
	}

	switch op.Str() {
	case "conc":
		return m.applyConc()
	case "stem":
		return m.applyStringOp("Stem", func(s string) string {
			if len(s) == 0 {
				return ""
			}
			return s[:1]
		})
	case "stern":
		return m.applyStringOp("Stern", func(s string) string {
			if len(s) <= 1 {
				return ""
			}
			return s[1:]
		})
	case "isInteger":
		return m.applyTypeCheck(func(v Value) bool { return v.Type() == IntType })
	case "isString":
		return m.applyTypeCheck(func(v Value) bool { return v.Type() == StringType })
	case "isTruthValue":
		return m.applyTypeCheck(func(v Value) bool { return v.Type() == BoolType })
	case "isFunction":
		return m.applyTypeCheck(func(v Value) bool {
			return v.Type() == ClosureType || v.Type() == EtaType
		})
	case "isTuple":
		return m.applyTypeCheck(func(v Value) bool {
			return v.Type() == TupleType && len(v.Tuple()) > 0
		})
	case "isDummy":
		return m.applyTypeCheck(func(v Value) bool { return v.Type() == DummyType })
	case "order":
		return m.applyOrder()
	case "null":
		return m.applyNull()
	}

	return evalErrorf("unknown built-in operator %q", op.Str())
}

// applyConc pops the pending second gamma and both string operands, strips
// their quotes, and pushes the concatenation.
func (m *Machine) applyConc() error {
	if len(m.control) == 0 || m.control[len(m.control)-1].Kind != NameItem || m.control[len(m.control)-1].Name != "gamma" {
		return evalErrorf("Conc must be applied to two arguments")
	}
	m.popControl() // the second gamma

	first, err := m.pop()
	if err != nil {
		return err
	}
	second, err := m.pop()
	if err != nil {
		return err
	}
	if first.Type() != StringType || second.Type() != StringType {
		return evalErrorf("both operands of Conc must be strings")
	}

	m.push(StringOf(strings.Trim(first.Str(), "'") + strings.Trim(second.Str(), "'")))
	return nil
}

func (m *Machine) applyStringOp(name string, f func(string) string) error {
	operand, err := m.pop()
	if err != nil {
		return err
	}
	if operand.Type() != StringType {
		return evalErrorf("operand of %s must be a string", name)
	}

	m.push(StringOf(f(strings.Trim(operand.Str(), "'"))))
	return nil
}

func (m *Machine) applyTypeCheck(check func(Value) bool) error {
	operand, err := m.pop()
	if err != nil {
		return err
	}
	m.push(BoolOf(check(operand)))
	return nil
}

func (m *Machine) applyOrder() error {
	operand, err := m.pop()
	if err != nil {
		return err
	}
	if operand.Type() != TupleType {
		return evalErrorf("operand of Order must be a tuple")
	}
	m.push(IntOf(len(operand.Tuple())))
	return nil
}

// applyNull pushes true for nil and for an empty tuple, false for a
// non-empty tuple, and errors on anything else.
func (m *Machine) applyNull() error {
	operand, err := m.pop()
	if err != nil {
		return err
	}

	switch operand.Type() {
	case NilType:
		m.push(BoolOf(true))
	case TupleType:
		m.push(BoolOf(len(operand.Tuple()) == 0))
	default:
		return evalErrorf("operand of Null must be nil or a tuple")
	}
	return nil
}

// rulePrint applies the print builtin: the value is formatted for human
// output, written to the machine's output stream without a trailing newline,
// and the formatted string is pushed back as the result.
func (m *Machine) rulePrint() error {
	m.popControl() // gamma

	if _, err := m.pop(); err != nil { // the builtin itself
		return err
	}

	operand, err := m.pop()
	if err != nil {
		return err
	}

	formatted := operand.Format()
	if _, err := fmt.Fprint(m.out, formatted); err != nil {
		return evalErrorf("write output: %v", err)
	}

	m.push(StringOf(formatted))
	return nil
}
