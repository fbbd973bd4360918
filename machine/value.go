// Package machine contains the back end of the RPAL interpreter: the
// control-structure generator that flattens a standardized tree into
// numbered delta blocks, and the CSE machine that evaluates those blocks
// against a tree of environment frames.
package machine

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the type of a runtime value.
type ValueType int

const (
	IntType ValueType = iota
	StringType
	BoolType
	NilType
	DummyType
	TupleType
	ClosureType
	EtaType
	BuiltinType
	YType
	EnvMarkerType
)

// Value is a single value produced during evaluation. Only the field
// selected by its type is valid. String values keep the single quotes of
// their source literal; they are stripped where the machine's rules call for
// it (conc, stem, stern, tuple formation, and printing).
type Value struct {
	t   ValueType
	i   int
	s   string // StringType lexeme, or BuiltinType operator name
	b   bool
	tup []Value
	lam *Lambda
	eta *Eta
	env *Environment
}

// IntOf returns an integer value.
func IntOf(n int) Value {
	return Value{t: IntType, i: n}
}

// StringOf returns a string value holding exactly s.
func StringOf(s string) Value {
	return Value{t: StringType, s: s}
}

// BoolOf returns a truthvalue.
func BoolOf(b bool) Value {
	return Value{t: BoolType, b: b}
}

// Nil returns the nil sentinel. It is not a tuple; an empty tuple has order
// 0 but nil does not.
func Nil() Value {
	return Value{t: NilType}
}

// Dummy returns the dummy sentinel.
func Dummy() Value {
	return Value{t: DummyType}
}

// TupleOf returns a tuple holding the given elements.
func TupleOf(elems []Value) Value {
	return Value{t: TupleType, tup: elems}
}

// Builtin returns a value naming one of the built-in operators, such as
// "conc" or "print".
func Builtin(name string) Value {
	return Value{t: BuiltinType, s: name}
}

// YCombinator returns the Y value that triggers the fixed-point rule when
// applied.
func YCombinator() Value {
	return Value{t: YType}
}

func closureOf(lam *Lambda) Value {
	return Value{t: ClosureType, lam: lam}
}

func etaOf(eta *Eta) Value {
	return Value{t: EtaType, eta: eta}
}

func envMarker(env *Environment) Value {
	return Value{t: EnvMarkerType, env: env}
}

// Type returns the type of the Value.
func (v Value) Type() ValueType {
	return v.t
}

// Int returns the integer held by an IntType value. It panics on any other
// type.
func (v Value) Int() int {
	if v.t != IntType {
		panic(fmt.Sprintf("Int() called on value of type %d", v.t))
	}
	return v.i
}

// Str returns the string held by a StringType value (quotes included when
// the value came from a literal), or the operator name of a BuiltinType
// value. It panics on any other type.
func (v Value) Str() string {
	if v.t != StringType && v.t != BuiltinType {
		panic(fmt.Sprintf("Str() called on value of type %d", v.t))
	}
	return v.s
}

// Bool returns the truthvalue held by a BoolType value. It panics on any
// other type.
func (v Value) Bool() bool {
	if v.t != BoolType {
		panic(fmt.Sprintf("Bool() called on value of type %d", v.t))
	}
	return v.b
}

// Tuple returns the elements of a TupleType value. It panics on any other
// type.
func (v Value) Tuple() []Value {
	if v.t != TupleType {
		panic(fmt.Sprintf("Tuple() called on value of type %d", v.t))
	}
	return v.tup
}

// Closure returns the Lambda held by a ClosureType value. It panics on any
// other type.
func (v Value) Closure() *Lambda {
	if v.t != ClosureType {
		panic(fmt.Sprintf("Closure() called on value of type %d", v.t))
	}
	return v.lam
}

// Format renders the value the way Print does: quotes are stripped from
// strings, tuples become "(e1, e2, ...)", and closures become
// "[lambda closure: v: k]".
func (v Value) Format() string {
	switch v.t {
	case IntType:
		return strconv.Itoa(v.i)
	case StringType:
		return strings.Trim(v.s, "'")
	case BoolType:
		if v.b {
			return "true"
		}
		return "false"
	case NilType:
		return "nil"
	case DummyType:
		return "dummy"
	case TupleType:
		elems := make([]string, len(v.tup))
		for i := range v.tup {
			elems[i] = v.tup[i].Format()
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case ClosureType:
		return formatClosure("lambda", v.lam.Variables, v.lam.K)
	case EtaType:
		return formatClosure("eta", v.eta.Variables, v.eta.K)
	case BuiltinType:
		return v.s
	case YType:
		return "Y"
	case EnvMarkerType:
		return fmt.Sprintf("e%d", v.env.number)
	default:
		panic("unrecognized value type")
	}
}

func formatClosure(kind string, variables []string, k int) string {
	if len(variables) == 1 {
		return fmt.Sprintf("[%s closure: %s: %d]", kind, variables[0], k)
	}
	return fmt.Sprintf("[%s closure: [%s]: %d]", kind, strings.Join(variables, ", "), k)
}

// Equal returns whether v is structurally identical to another Value. o may
// be a Value or a *Value. Closures, etas, and environment markers compare by
// identity of the record they point at.
func (v Value) Equal(o any) bool {
	other, ok := o.(Value)
	if !ok {
		otherPtr, ok := o.(*Value)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if v.t != other.t {
		return false
	}

	switch v.t {
	case IntType:
		return v.i == other.i
	case StringType, BuiltinType:
		return v.s == other.s
	case BoolType:
		return v.b == other.b
	case NilType, DummyType, YType:
		return true
	case TupleType:
		if len(v.tup) != len(other.tup) {
			return false
		}
		for i := range v.tup {
			if !v.tup[i].Equal(other.tup[i]) {
				return false
			}
		}
		return true
	case ClosureType:
		return v.lam == other.lam
	case EtaType:
		return v.eta == other.eta
	case EnvMarkerType:
		return v.env == other.env
	default:
		return false
	}
}
