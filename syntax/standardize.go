package syntax

import "fmt"

// file standardize.go rewrites a parse tree into the standardized tree. The
// standardized form contains only gamma, lambda, ->, tau, aug, Y, =, ",",
// operator nodes, and leaves; every surface construct (let, where, fcn_form,
// and, within, rec, @) is expressed in terms of those.

// Standardize rewrites the tree rooted at n, in place, into its standardized
// form. Children are standardized before their parent. A malformed tree
// shape means the parser produced something it never should have, so any
// error from Standardize indicates an internal bug rather than bad input.
func Standardize(n *Node) error {
	if n == nil {
		return fmt.Errorf("standardize: nil node")
	}
	if n.Tok != nil {
		return nil
	}

	for _, c := range n.Children {
		if err := Standardize(c); err != nil {
			return err
		}
	}

	switch n.Label {
	case "let":
		return standardizeLet(n)
	case "where":
		return standardizeWhere(n)
	case "fcn_form":
		return standardizeFcnForm(n)
	case "and":
		return standardizeAnd(n)
	case "within":
		return standardizeWithin(n)
	case "@":
		return standardizeInfix(n)
	case "rec":
		return standardizeRec(n)
	case "lambda":
		if len(n.Children) > 2 {
			return standardizeLambda(n)
		}
	}

	return nil
}

// checkNode verifies that the node carries the given label and child count.
// With atLeast set, the count is a minimum instead of exact.
func checkNode(n *Node, label string, count int, atLeast bool) error {
	if n.Tok != nil || n.Label != label {
		return fmt.Errorf("standardize: expected %q node, got %q", label, n.Display())
	}
	if atLeast {
		if len(n.Children) < count {
			return fmt.Errorf("standardize: %q node has %d children, want at least %d", label, len(n.Children), count)
		}
	} else if len(n.Children) != count {
		return fmt.Errorf("standardize: %q node has %d children, want %d", label, len(n.Children), count)
	}
	return nil
}

// let X=E in P  =>  gamma(lambda(X, P), E)
func standardizeLet(n *Node) error {
	if err := checkNode(n, "let", 2, false); err != nil {
		return err
	}
	eq, body := n.Children[0], n.Children[1]
	if err := checkNode(eq, "=", 2, false); err != nil {
		return err
	}
	x, e := eq.Children[0], eq.Children[1]

	eq.Label = "lambda"
	eq.Children = []*Node{x, body}
	n.Label = "gamma"
	n.Children = []*Node{eq, e}
	return nil
}

// P where X=E  =>  gamma(lambda(X, P), E)
func standardizeWhere(n *Node) error {
	if err := checkNode(n, "where", 2, false); err != nil {
		return err
	}
	body, eq := n.Children[0], n.Children[1]
	if err := checkNode(eq, "=", 2, false); err != nil {
		return err
	}
	x, e := eq.Children[0], eq.Children[1]

	eq.Label = "lambda"
	eq.Children = []*Node{x, body}
	n.Label = "gamma"
	n.Children = []*Node{eq, e}
	return nil
}

// f v1 .. vn = E  =>  =(f, lambda(v1, lambda(v2, ... lambda(vn, E))))
func standardizeFcnForm(n *Node) error {
	if err := checkNode(n, "fcn_form", 3, true); err != nil {
		return err
	}
	name := n.Children[0]
	vars := n.Children[1 : len(n.Children)-1]
	e := n.Children[len(n.Children)-1]

	body := e
	for i := len(vars) - 1; i >= 0; i-- {
		body = NewNode("lambda", vars[i], body)
	}

	n.Label = "="
	n.Children = []*Node{name, body}
	return nil
}

// and(=(x1,e1), ..., =(xn,en))  =>  =( ,(x1..xn), tau(e1..en) )
func standardizeAnd(n *Node) error {
	if err := checkNode(n, "and", 2, true); err != nil {
		return err
	}

	comma := NewNode(",")
	tau := NewNode("tau")
	for _, eq := range n.Children {
		if err := checkNode(eq, "=", 2, false); err != nil {
			return err
		}
		comma.Children = append(comma.Children, eq.Children[0])
		tau.Children = append(tau.Children, eq.Children[1])
	}

	n.Label = "="
	n.Children = []*Node{comma, tau}
	return nil
}

// within(=(x1,e1), =(x2,e2))  =>  =( x2, gamma(lambda(x1, e2), e1) )
func standardizeWithin(n *Node) error {
	if err := checkNode(n, "within", 2, false); err != nil {
		return err
	}
	left, right := n.Children[0], n.Children[1]
	if err := checkNode(left, "=", 2, false); err != nil {
		return err
	}
	if err := checkNode(right, "=", 2, false); err != nil {
		return err
	}
	x1, e1 := left.Children[0], left.Children[1]
	x2, e2 := right.Children[0], right.Children[1]

	n.Label = "="
	n.Children = []*Node{x2, NewNode("gamma", NewNode("lambda", x1, e2), e1)}
	return nil
}

// e1 @ N e2  =>  gamma(gamma(N, e1), e2)
func standardizeInfix(n *Node) error {
	if err := checkNode(n, "@", 3, false); err != nil {
		return err
	}
	e1, fn, e2 := n.Children[0], n.Children[1], n.Children[2]

	n.Label = "gamma"
	n.Children = []*Node{NewNode("gamma", fn, e1), e2}
	return nil
}

// rec =(x, e)  =>  =( x, gamma(Y, lambda(x, e)) )
func standardizeRec(n *Node) error {
	if err := checkNode(n, "rec", 1, false); err != nil {
		return err
	}
	eq := n.Children[0]
	if err := checkNode(eq, "=", 2, false); err != nil {
		return err
	}
	x, e := eq.Children[0], eq.Children[1]

	n.Label = "="
	n.Children = []*Node{x, NewNode("gamma", NewNode("Y"), NewNode("lambda", x.Copy(), e))}
	return nil
}

// lambda(v1, ..., vn, E) with n > 1  =>  lambda(v1, lambda(v2, ... E))
func standardizeLambda(n *Node) error {
	if err := checkNode(n, "lambda", 3, true); err != nil {
		return err
	}
	vars := n.Children[:len(n.Children)-1]
	e := n.Children[len(n.Children)-1]

	body := e
	for i := len(vars) - 1; i >= 1; i-- {
		body = NewNode("lambda", vars[i], body)
	}

	n.Children = []*Node{vars[0], body}
	return nil
}
