package syntax

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Node_Equal(t *testing.T) {
	leaf := func(kind TokenKind, lexeme string) *Node {
		return NewLeaf(Token{Kind: kind, Lexeme: lexeme, Line: 1})
	}

	testCases := []struct {
		name   string
		left   *Node
		right  any
		expect bool
	}{
		{
			name:   "identical leaves",
			left:   leaf(Identifier, "x"),
			right:  leaf(Identifier, "x"),
			expect: true,
		},
		{
			name:   "different lexemes",
			left:   leaf(Identifier, "x"),
			right:  leaf(Identifier, "y"),
			expect: false,
		},
		{
			name:   "leaf vs interior",
			left:   leaf(Identifier, "x"),
			right:  NewNode("x"),
			expect: false,
		},
		{
			name:   "identical trees",
			left:   NewNode("gamma", leaf(Identifier, "f"), leaf(IntLiteral, "1")),
			right:  NewNode("gamma", leaf(Identifier, "f"), leaf(IntLiteral, "1")),
			expect: true,
		},
		{
			name:   "different child count",
			left:   NewNode("gamma", leaf(Identifier, "f")),
			right:  NewNode("gamma", leaf(Identifier, "f"), leaf(IntLiteral, "1")),
			expect: false,
		},
		{
			name:   "not a node at all",
			left:   NewNode("gamma"),
			right:  "gamma",
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.left.Equal(tc.right))
		})
	}
}

func Test_Node_Copy(t *testing.T) {
	assert := assert.New(t)

	orig, err := parseSource(t, "let x = 42 in Print x")
	if !assert.NoError(err) {
		return
	}

	cp := orig.Copy()
	assert.True(orig.Equal(cp))

	// mutating the copy must not touch the original
	cp.Children[0].Label = "mutated"
	assert.False(orig.Equal(cp))
	assert.Equal("=", orig.Children[0].Label)
}

func Test_Node_MarshalJSON(t *testing.T) {
	assert := assert.New(t)

	n := NewNode("gamma",
		NewLeaf(Token{Kind: Identifier, Lexeme: "Print", Line: 1}),
		NewLeaf(Token{Kind: IntLiteral, Lexeme: "42", Line: 1}),
	)

	data, err := json.Marshal(n)
	if !assert.NoError(err) {
		return
	}

	expect := `{"label":"gamma","children":[` +
		`{"label":"<ID:Print>","children":[]},` +
		`{"label":"<INT:42>","children":[]}]}`
	assert.JSONEq(expect, string(data))
}

func Test_Node_Dump(t *testing.T) {
	assert := assert.New(t)

	n := NewNode("->",
		NewNode("gr",
			NewLeaf(Token{Kind: Identifier, Lexeme: "x"}),
			NewLeaf(Token{Kind: IntLiteral, Lexeme: "1"}),
		),
		NewNode("true"),
		NewNode("false"),
	)

	assert.Equal("->\n.gr\n..<ID:x>\n..<INT:1>\n.true\n.false", n.Dump())
}
