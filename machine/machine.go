package machine

import (
	"fmt"
	"io"

	"github.com/Pratheep-Srikones/rpal-online/syntax"
)

// Operator sets used by the dispatch loop. The gamma-driven rules are
// selected by the value on top of the value stack instead.
var (
	binaryOperators = map[string]bool{
		"+": true, "-": true, "*": true, "/": true, "**": true,
		"eq": true, "ne": true, "gr": true, "ge": true, "ls": true, "le": true,
		"or": true, "&": true, "aug": true,
	}
	unaryOperators = map[string]bool{"not": true, "neg": true}

	// literalNames are the reserved names that evaluate to themselves when
	// found on the control stack.
	literalNames = map[string]bool{
		"true": true, "false": true, "nil": true, "dummy": true, "Y": true,
	}
)

// builtinOperators are the names rule 3 can apply; print is dispatched
// separately.
var builtinOperators = map[string]bool{
	"conc": true, "stem": true, "stern": true,
	"isInteger": true, "isString": true, "isTruthValue": true,
	"isFunction": true, "isTuple": true, "isDummy": true,
	"order": true, "null": true,
}

// DefaultMaxSteps is the step budget applied to a Machine whose MaxSteps is
// left at zero.
const DefaultMaxSteps = 1000000

// Machine is the CSE machine: a control stack, a value stack, and a growing
// catalogue of environment frames. It executes the delta table produced by
// Generate until the control stack empties.
//
// A Machine runs one program once; create a new one for each interpretation.
type Machine struct {
	// MaxSteps bounds the number of rule applications before evaluation is
	// aborted with an error. Zero means DefaultMaxSteps; a negative value
	// disables the bound.
	MaxSteps int

	deltas  []*ControlStructure
	control []Item
	stack   []Value
	env     *Environment
	envs    []*Environment
	out     io.Writer
	steps   int
}

// New builds a machine over the given delta table, rooted at the given
// primitive environment. Output produced by Print is written to out, which
// may be nil to discard it.
func New(deltas []*ControlStructure, root *Environment, out io.Writer) (*Machine, error) {
	if len(deltas) == 0 || deltas[0] == nil {
		return nil, fmt.Errorf("machine: delta 0 not found")
	}
	if len(deltas[0].Items) == 0 {
		return nil, fmt.Errorf("machine: delta 0 has no items")
	}
	if root == nil {
		return nil, fmt.Errorf("machine: nil root environment")
	}
	if out == nil {
		out = io.Discard
	}

	m := &Machine{
		deltas: deltas,
		env:    root,
		envs:   []*Environment{root},
		out:    out,
	}

	m.control = append(m.control, Item{Kind: EnvItem, Env: root})
	m.splice(deltas[0])
	m.stack = append(m.stack, envMarker(root))

	return m, nil
}

// Run executes the machine until the control stack empties and returns the
// value on top of the value stack, or the zero Value if the stack is empty.
func (m *Machine) Run() (Value, error) {
	maxSteps := m.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	for len(m.control) > 0 {
		m.steps++
		if maxSteps > 0 && m.steps > maxSteps {
			return Value{}, evalErrorf("evaluation exceeded the budget of %d steps", maxSteps)
		}

		if err := m.step(); err != nil {
			return Value{}, err
		}
	}

	if len(m.stack) == 0 {
		return Value{}, nil
	}
	return m.stack[len(m.stack)-1], nil
}

// Steps returns the number of rule applications performed so far.
func (m *Machine) Steps() int {
	return m.steps
}

// step inspects the top of the control stack (and sometimes the top of the
// value stack) and fires exactly one rule.
func (m *Machine) step() error {
	top := m.control[len(m.control)-1]

	switch top.Kind {
	case TokenItem:
		return m.rule1(top)
	case LambdaItem:
		return m.rule2()
	case EnvItem:
		return m.rule5()
	case TauItem:
		return m.rule9(top.Tau)
	case DeltaItem:
		// a bare delta reference is only ever consumed by rule 8
		return evalErrorf("illegal function application")
	}

	switch {
	case literalNames[top.Name]:
		return m.rule1(top)
	case top.Name == "beta":
		return m.rule8()
	case binaryOperators[top.Name]:
		return m.rule6(top.Name)
	case unaryOperators[top.Name]:
		return m.rule7(top.Name)
	case top.Name == "gamma":
		return m.applyGamma()
	}

	return evalErrorf("illegal function application")
}

// applyGamma selects among the gamma-driven rules based on the value on top
// of the value stack.
func (m *Machine) applyGamma() error {
	if len(m.stack) == 0 {
		return evalErrorf("illegal function application")
	}
	rator := m.stack[len(m.stack)-1]

	switch rator.Type() {
	case BuiltinType:
		if rator.Str() == "print" {
			return m.rulePrint()
		}
		if builtinOperators[rator.Str()] {
			return m.rule3()
		}
	case ClosureType:
		if len(rator.Closure().Variables) == 1 {
			return m.rule4()
		}
		return m.rule11()
	case TupleType:
		if len(rator.Tuple()) > 0 {
			return m.rule10()
		}
	case YType:
		return m.rule12()
	case EtaType:
		return m.rule13()
	}

	return evalErrorf("illegal function application: %s cannot be applied", rator.Format())
}

func (m *Machine) popControl() Item {
	it := m.control[len(m.control)-1]
	m.control = m.control[:len(m.control)-1]
	return it
}

func (m *Machine) pop() (Value, error) {
	if len(m.stack) == 0 {
		return Value{}, evalErrorf("value stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) push(v Value) {
	m.stack = append(m.stack, v)
}

// splice copies a delta block's items onto the control stack in order, so
// the block's first item ends up deepest and its last item on top.
func (m *Machine) splice(cs *ControlStructure) {
	m.control = append(m.control, cs.Items...)
}

func (m *Machine) findDelta(k int) (*ControlStructure, error) {
	if k < 0 || k >= len(m.deltas) || m.deltas[k] == nil {
		return nil, evalErrorf("control structure %d not found", k)
	}
	return m.deltas[k], nil
}

func (m *Machine) findEnv(number int) (*Environment, error) {
	if number < 0 || number >= len(m.envs) {
		return nil, evalErrorf("environment %d not found", number)
	}
	return m.envs[number], nil
}

// rule1 pops a name and pushes its value: INT and STRING tokens evaluate to
// their intrinsic value, reserved names to their sentinel, and identifiers
// to whatever the current environment chain binds them to.
func (m *Machine) rule1(top Item) error {
	m.popControl()

	if top.Kind == TokenItem {
		tok := top.Tok
		switch tok.Kind {
		case syntax.IntLiteral:
			m.push(IntOf(tok.Int()))
		case syntax.StrLiteral:
			m.push(StringOf(tok.Lexeme))
		default:
			if m.env == nil {
				return evalErrorf("undeclared identifier %q in line %d", tok.Lexeme, tok.Line)
			}
			v, err := m.env.Lookup(tok.Lexeme, tok.Line)
			if err != nil {
				return err
			}
			m.push(v)
		}
		return nil
	}

	switch top.Name {
	case "true":
		m.push(BoolOf(true))
	case "false":
		m.push(BoolOf(false))
	case "nil":
		m.push(Nil())
	case "dummy":
		m.push(Dummy())
	case "Y":
		m.push(YCombinator())
	}
	return nil
}

// rule2 lifts a lambda onto the value stack, capturing the current
// environment's number. The lambda inside the delta block is left untouched;
// the closure gets its own copy.
func (m *Machine) rule2() error {
	it := m.popControl()

	lam := *it.Lambda
	lam.C = m.env.number
	m.push(closureOf(&lam))
	return nil
}

// rule4 applies a single-parameter closure: a new environment frame binds
// the parameter to the argument, an environment marker goes onto both
// stacks, and the body's delta is spliced onto the control stack.
func (m *Machine) rule4() error {
	m.popControl() // gamma

	rator, err := m.pop()
	if err != nil {
		return err
	}
	lam := rator.Closure()

	arg, err := m.pop()
	if err != nil {
		return err
	}

	return m.enter(lam, map[string]Value{lam.Variables[0]: arg})
}

// enter creates and activates a new environment frame for a closure
// application with the given bindings.
func (m *Machine) enter(lam *Lambda, bindings map[string]Value) error {
	body, err := m.findDelta(lam.K)
	if err != nil {
		return err
	}
	parent, err := m.findEnv(lam.C)
	if err != nil {
		return err
	}

	env := NewEnvironment(len(m.envs), parent, bindings)
	m.envs = append(m.envs, env)
	m.env = env

	m.control = append(m.control, Item{Kind: EnvItem, Env: env})
	m.splice(body)
	m.push(envMarker(env))
	return nil
}

// rule5 pops an environment marker off the control stack, removes the
// topmost marker from the value stack, and reactivates the environment of
// the topmost marker still on the control stack.
func (m *Machine) rule5() error {
	m.popControl()

	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].Type() == EnvMarkerType {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			break
		}
	}

	m.env = nil
	for i := len(m.control) - 1; i >= 0; i-- {
		if m.control[i].Kind == EnvItem {
			m.env = m.control[i].Env
			break
		}
	}
	return nil
}

// rule6 applies a binary operator. The first value popped is the left
// operand.
func (m *Machine) rule6(op string) error {
	m.popControl()

	left, err := m.pop()
	if err != nil {
		return err
	}
	right, err := m.pop()
	if err != nil {
		return err
	}

	result, err := applyBinary(op, left, right)
	if err != nil {
		return err
	}
	m.push(result)
	return nil
}

func applyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/", "**":
		if left.Type() != IntType || right.Type() != IntType {
			return Value{}, evalErrorf("both operands of %q must be integers", op)
		}
		return applyArithmetic(op, left.Int(), right.Int())

	case "eq":
		return BoolOf(valuesEqual(left, right)), nil
	case "ne":
		return BoolOf(!valuesEqual(left, right)), nil

	case "gr", "ge", "ls", "le":
		return applyOrdering(op, left, right)

	case "or":
		if left.Type() != BoolType || right.Type() != BoolType {
			return Value{}, evalErrorf("both operands of 'or' must be truthvalues")
		}
		return BoolOf(left.Bool() || right.Bool()), nil
	case "&":
		if left.Type() != BoolType || right.Type() != BoolType {
			return Value{}, evalErrorf("both operands of '&' must be truthvalues")
		}
		return BoolOf(left.Bool() && right.Bool()), nil

	case "aug":
		switch left.Type() {
		case NilType:
			return TupleOf([]Value{right}), nil
		case TupleType:
			elems := left.Tuple()
			augmented := make([]Value, len(elems)+1)
			copy(augmented, elems)
			augmented[len(elems)] = right
			return TupleOf(augmented), nil
		default:
			return Value{}, evalErrorf("left operand of 'aug' must be nil or a tuple")
		}
	}

	// should never happen; the dispatch loop only sends known operators
	return Value{}, evalErrorf("unknown binary operator %q", op)
}

func applyArithmetic(op string, l, r int) (Value, error) {
	switch op {
	case "+":
		return IntOf(l + r), nil
	case "-":
		return IntOf(l - r), nil
	case "*":
		return IntOf(l * r), nil
	case "/":
		if r == 0 {
			return Value{}, evalErrorf("division by zero")
		}
		// Go's integer division already truncates toward zero
		return IntOf(l / r), nil
	case "**":
		if r < 0 {
			return Value{}, evalErrorf("negative exponent in '**'")
		}
		result := 1
		for i := 0; i < r; i++ {
			result *= l
		}
		return IntOf(result), nil
	}
	return Value{}, evalErrorf("unknown arithmetic operator %q", op)
}

// valuesEqual implements eq: values of different types are simply unequal.
func valuesEqual(left, right Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch left.Type() {
	case IntType:
		return left.Int() == right.Int()
	case StringType:
		return left.Str() == right.Str()
	case BoolType:
		return left.Bool() == right.Bool()
	case NilType, DummyType:
		return true
	default:
		return false
	}
}

func applyOrdering(op string, left, right Value) (Value, error) {
	var cmp int
	switch {
	case left.Type() == IntType && right.Type() == IntType:
		cmp = left.Int() - right.Int()
	case left.Type() == StringType && right.Type() == StringType:
		l, r := left.Str(), right.Str()
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	default:
		return Value{}, evalErrorf("operands of %q must be two integers or two strings", op)
	}

	switch op {
	case "gr":
		return BoolOf(cmp > 0), nil
	case "ge":
		return BoolOf(cmp >= 0), nil
	case "ls":
		return BoolOf(cmp < 0), nil
	case "le":
		return BoolOf(cmp <= 0), nil
	}
	return Value{}, evalErrorf("unknown ordering operator %q", op)
}

// rule7 applies a unary operator.
func (m *Machine) rule7(op string) error {
	m.popControl()

	operand, err := m.pop()
	if err != nil {
		return err
	}

	switch op {
	case "not":
		if operand.Type() != BoolType {
			return evalErrorf("operand of 'not' must be a truthvalue")
		}
		m.push(BoolOf(!operand.Bool()))
	case "neg":
		if operand.Type() != IntType {
			return evalErrorf("operand of 'neg' must be an integer")
		}
		m.push(IntOf(-operand.Int()))
	}
	return nil
}

// rule8 selects a conditional branch. Beneath the beta marker sit the else
// delta (on top) and the then delta.
func (m *Machine) rule8() error {
	m.popControl() // beta

	cond, err := m.pop()
	if err != nil {
		return err
	}
	if cond.Type() != BoolType {
		return evalErrorf("condition of '->' must be a truthvalue")
	}

	elseIt := m.popControl()
	thenIt := m.popControl()
	if elseIt.Kind != DeltaItem || thenIt.Kind != DeltaItem {
		return evalErrorf("malformed conditional: branch deltas not found under beta")
	}

	if cond.Bool() {
		m.splice(thenIt.Delta)
	} else {
		m.splice(elseIt.Delta)
	}
	return nil
}

// rule9 gathers tuple elements. If the top of the value stack is nil the tau
// is discarded without building anything. An environment marker encountered
// mid-pop is a stop signal: it stays put and the tuple closes early.
func (m *Machine) rule9(tau Tau) error {
	m.popControl()

	if len(m.stack) > 0 && m.stack[len(m.stack)-1].Type() == NilType {
		return nil
	}

	elems := make([]Value, 0, tau.N)
	for i := 0; i < tau.N; i++ {
		if len(m.stack) == 0 || m.stack[len(m.stack)-1].Type() == EnvMarkerType {
			break
		}
		elem, err := m.pop()
		if err != nil {
			return err
		}
		if elem.Type() == StringType {
			elem = StringOf(elem.Format())
		}
		elems = append(elems, elem)
	}

	m.push(TupleOf(elems))
	return nil
}

// rule10 selects a tuple element by 1-based index.
func (m *Machine) rule10() error {
	m.popControl() // gamma

	tup, err := m.pop()
	if err != nil {
		return err
	}
	idx, err := m.pop()
	if err != nil {
		return err
	}
	if idx.Type() != IntType {
		return evalErrorf("tuple index must be an integer")
	}

	elems := tup.Tuple()
	i := idx.Int()
	if i < 1 || i > len(elems) {
		return evalErrorf("tuple index %d out of range for tuple of order %d", i, len(elems))
	}
	m.push(elems[i-1])
	return nil
}

// rule11 applies a closure with a simultaneously-bound tuple parameter. The
// argument must be a tuple of matching length; each variable binds to the
// corresponding element.
func (m *Machine) rule11() error {
	m.popControl() // gamma

	rator, err := m.pop()
	if err != nil {
		return err
	}
	lam := rator.Closure()

	arg, err := m.pop()
	if err != nil {
		return err
	}
	if arg.Type() != TupleType {
		return evalErrorf("lambda binding %d names requires a tuple argument", len(lam.Variables))
	}
	elems := arg.Tuple()
	if len(elems) != len(lam.Variables) {
		return evalErrorf("lambda expects %d arguments, but tuple has order %d", len(lam.Variables), len(elems))
	}

	bindings := make(map[string]Value, len(lam.Variables))
	for i, name := range lam.Variables {
		bindings[name] = elems[i]
	}
	return m.enter(lam, bindings)
}

// rule12 turns an application of Y to a closure into an Eta with the same
// body, variables, and captured environment.
func (m *Machine) rule12() error {
	m.popControl() // gamma

	if _, err := m.pop(); err != nil { // the Y value itself
		return err
	}

	rator, err := m.pop()
	if err != nil {
		return err
	}
	if rator.Type() != ClosureType {
		return evalErrorf("Y must be applied to a lambda")
	}
	lam := rator.Closure()

	m.push(etaOf(&Eta{K: lam.K, Variables: lam.Variables, C: lam.C}))
	return nil
}

// rule13 applies an Eta: the Eta stays on the value stack, a lambda copy of
// it is pushed above, and a fresh gamma goes onto the control stack. The
// next step applies the lambda with the Eta itself as the recursive value.
func (m *Machine) rule13() error {
	eta := m.stack[len(m.stack)-1].eta

	m.push(closureOf(&Lambda{K: eta.K, Variables: eta.Variables, C: eta.C}))
	m.control = append(m.control, nameItem("gamma"))
	return nil
}
