package machine

import (
	"fmt"
	"strings"

	"github.com/Pratheep-Srikones/rpal-online/syntax"
)

// Lambda is a function waiting to be applied. K is the number of the delta
// block holding its body; Variables is the bound-variable list, of length 1
// for a single parameter or longer for a simultaneously-bound tuple
// parameter. C is the number of the environment captured when the lambda was
// lifted onto the value stack; it is -1 inside a delta body and is never
// changed once set.
type Lambda struct {
	K         int
	Variables []string
	C         int
}

// Tau marks that the next N values on the value stack form a tuple.
type Tau struct {
	N int
}

// Eta is the fixed-point twin of Lambda. Applying it re-applies the
// underlying lambda while leaving the Eta in place to supply the recursive
// value on the next cycle.
type Eta struct {
	K         int
	Variables []string
	C         int
}

// ItemKind discriminates the kinds of entries a control structure (and the
// machine's control stack) can hold.
type ItemKind int

const (
	// NameItem is a literal tag: "gamma", "beta", an operator name, or one
	// of the reserved names nil, Y, true, false, dummy.
	NameItem ItemKind = iota

	// TokenItem is an identifier or literal token from the source.
	TokenItem

	LambdaItem
	TauItem

	// DeltaItem references another control structure, used for the branches
	// of a conditional.
	DeltaItem

	// EnvItem is an environment marker. It never appears inside a delta
	// block, only on the running machine's control stack.
	EnvItem
)

// Item is one entry of a control structure. Only the field selected by Kind
// is valid.
type Item struct {
	Kind   ItemKind
	Name   string
	Tok    syntax.Token
	Lambda *Lambda
	Tau    Tau
	Delta  *ControlStructure
	Env    *Environment
}

func nameItem(name string) Item {
	return Item{Kind: NameItem, Name: name}
}

func (it Item) String() string {
	switch it.Kind {
	case NameItem:
		return "<" + it.Name + ">"
	case TokenItem:
		return fmt.Sprintf("<%s>", it.Tok.Lexeme)
	case LambdaItem:
		return fmt.Sprintf("<lambda %d, [%s]>", it.Lambda.K, strings.Join(it.Lambda.Variables, ", "))
	case TauItem:
		return fmt.Sprintf("<tau(%d)>", it.Tau.N)
	case DeltaItem:
		return fmt.Sprintf("<delta %d>", it.Delta.Number)
	case EnvItem:
		return fmt.Sprintf("<e%d>", it.Env.number)
	default:
		return "<?>"
	}
}

// ControlStructure is one numbered delta block: a flat sequence of items the
// machine splices onto its control stack.
type ControlStructure struct {
	Number int
	Items  []Item
}

func (cs *ControlStructure) String() string {
	parts := make([]string, len(cs.Items))
	for i := range cs.Items {
		parts[i] = cs.Items[i].String()
	}
	return fmt.Sprintf("delta %d: %s", cs.Number, strings.Join(parts, " "))
}

// Generator flattens a standardized tree into delta blocks.
type Generator struct {
	deltas []*ControlStructure
}

// Generate flattens the standardized tree rooted at node into the full
// table of delta blocks, with the root expression in delta 0. Deltas are
// numbered in order of creation, so a delta's number is also its index in
// the returned slice.
func Generate(node *syntax.Node) ([]*ControlStructure, error) {
	if node == nil {
		return nil, fmt.Errorf("generate control structures: nil tree")
	}

	g := &Generator{}
	if _, err := g.delta(node); err != nil {
		return nil, err
	}
	return g.deltas, nil
}

// delta allocates the next delta number and fills the new block with the
// flattened form of node.
func (g *Generator) delta(node *syntax.Node) (*ControlStructure, error) {
	cs := &ControlStructure{Number: len(g.deltas)}
	g.deltas = append(g.deltas, cs)
	if err := g.emit(cs, node); err != nil {
		return nil, err
	}
	return cs, nil
}

func (g *Generator) emit(cs *ControlStructure, node *syntax.Node) error {
	if node.Tok != nil {
		cs.Items = append(cs.Items, Item{Kind: TokenItem, Tok: *node.Tok})
		return nil
	}

	switch node.Label {
	case "lambda":
		return g.emitLambda(cs, node)

	case "->":
		if len(node.Children) != 3 {
			return fmt.Errorf("generate control structures: '->' node has %d children, want 3", len(node.Children))
		}
		deltaThen, err := g.delta(node.Children[1])
		if err != nil {
			return err
		}
		deltaElse, err := g.delta(node.Children[2])
		if err != nil {
			return err
		}
		cs.Items = append(cs.Items,
			Item{Kind: DeltaItem, Delta: deltaThen},
			Item{Kind: DeltaItem, Delta: deltaElse},
			nameItem("beta"),
		)
		return g.emit(cs, node.Children[0])

	case "tau":
		if len(node.Children) < 2 {
			return fmt.Errorf("generate control structures: 'tau' node has %d children, want at least 2", len(node.Children))
		}
		cs.Items = append(cs.Items, Item{Kind: TauItem, Tau: Tau{N: len(node.Children)}})
		for _, c := range node.Children {
			if err := g.emit(cs, c); err != nil {
				return err
			}
		}
		return nil

	default:
		cs.Items = append(cs.Items, nameItem(node.Label))
		if len(node.Children) > 0 {
			if err := g.emit(cs, node.Children[0]); err != nil {
				return err
			}
		}
		if len(node.Children) > 1 {
			if err := g.emit(cs, node.Children[1]); err != nil {
				return err
			}
		}
		return nil
	}
}

func (g *Generator) emitLambda(cs *ControlStructure, node *syntax.Node) error {
	if len(node.Children) != 2 {
		return fmt.Errorf("generate control structures: 'lambda' node has %d children, want 2", len(node.Children))
	}

	binding, bodyNode := node.Children[0], node.Children[1]

	var variables []string
	if binding.Tok == nil && binding.Label == "," {
		if len(binding.Children) == 0 {
			return fmt.Errorf("generate control structures: empty ',' binding under lambda")
		}
		for _, c := range binding.Children {
			name, err := bindingName(c)
			if err != nil {
				return err
			}
			variables = append(variables, name)
		}
	} else {
		name, err := bindingName(binding)
		if err != nil {
			return err
		}
		variables = []string{name}
	}

	body, err := g.delta(bodyNode)
	if err != nil {
		return err
	}

	cs.Items = append(cs.Items, Item{
		Kind:   LambdaItem,
		Lambda: &Lambda{K: body.Number, Variables: variables, C: -1},
	})
	return nil
}

// bindingName extracts the bound name from a lambda parameter node: an
// identifier leaf, or the empty binding "()".
func bindingName(n *syntax.Node) (string, error) {
	if n.Tok != nil {
		return n.Tok.Lexeme, nil
	}
	if n.Label == "()" {
		return "()", nil
	}
	return "", fmt.Errorf("generate control structures: %q cannot be bound as a variable", n.Display())
}
