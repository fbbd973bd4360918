package syntax

import (
	"encoding/json"
	"strings"
)

// Node is a node in the syntax tree. Interior nodes carry a construct or
// operator name in Label; identifier and literal leaves carry their Token in
// Tok and leave Label empty. A node exclusively owns its children.
//
// The same type is used for both the tree the parser emits and the
// standardized tree; Standardize rewrites a parse tree in place.
type Node struct {
	Label    string
	Tok      *Token
	Children []*Node
}

// NewNode creates an interior node with the given label and children.
func NewNode(label string, children ...*Node) *Node {
	n := &Node{Label: label}
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// NewLeaf creates a leaf node holding the given token.
func NewLeaf(tok Token) *Node {
	return &Node{Tok: &tok}
}

// IsLeaf returns whether the node is an identifier or literal leaf.
func (n *Node) IsLeaf() bool {
	return n.Tok != nil
}

// Display returns the one-line form of this node used in tree dumps: the
// label for interior nodes, "<KIND:lexeme>" for leaves.
func (n *Node) Display() string {
	if n.Tok != nil {
		return n.Tok.String()
	}
	return n.Label
}

// Copy returns a deep copy of the tree rooted at n.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}

	cp := &Node{Label: n.Label}
	if n.Tok != nil {
		tok := *n.Tok
		cp.Tok = &tok
	}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i := range n.Children {
			cp.Children[i] = n.Children[i].Copy()
		}
	}
	return cp
}

// Dump returns a multi-line rendering of the tree with one node per line,
// indented with one "." per level of depth.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(".", depth))
	sb.WriteString(n.Display())
	for _, c := range n.Children {
		c.dump(sb, depth+1)
	}
}

// MarshalJSON serializes the tree as nested {"label": ..., "children": [...]}
// objects, which is the structure the HTTP API returns for tree dumps.
func (n *Node) MarshalJSON() ([]byte, error) {
	type jsonNode struct {
		Label    string  `json:"label"`
		Children []*Node `json:"children"`
	}

	children := n.Children
	if children == nil {
		children = []*Node{}
	}

	return json.Marshal(jsonNode{Label: n.Display(), Children: children})
}

// Equal returns whether this node heads a tree identical to the one headed by
// o. o may be a *Node or a Node.
func (n *Node) Equal(o any) bool {
	other, ok := o.(*Node)
	if !ok {
		otherVal, ok := o.(Node)
		if !ok {
			return false
		}
		other = &otherVal
	}
	if other == nil {
		return n == nil
	}
	if n == nil {
		return false
	}

	if n.Label != other.Label {
		return false
	}
	if (n.Tok == nil) != (other.Tok == nil) {
		return false
	}
	if n.Tok != nil && !n.Tok.Equal(other.Tok) {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}

	return true
}
