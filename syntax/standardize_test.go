package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Standardize_rewrites(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:  "let becomes gamma over lambda",
			input: "let x = 42 in Print x",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:x>",
				"..gamma",
				"...<ID:Print>",
				"...<ID:x>",
				".<INT:42>",
			},
		},
		{
			name:  "where becomes gamma over lambda",
			input: "x where x = 3",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:x>",
				"..<ID:x>",
				".<INT:3>",
			},
		},
		{
			name:  "function form becomes nested lambdas",
			input: "let f x y = x in f",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:f>",
				"..<ID:f>",
				".lambda",
				"..<ID:x>",
				"..lambda",
				"...<ID:y>",
				"...<ID:x>",
			},
		},
		{
			name:  "and becomes comma and tau",
			input: "let x = 1 and y = 2 in x",
			expect: []string{
				"gamma",
				".lambda",
				"..,",
				"...<ID:x>",
				"...<ID:y>",
				"..<ID:x>",
				".tau",
				"..<INT:1>",
				"..<INT:2>",
			},
		},
		{
			name:  "within nests the inner definition",
			input: "let x = 1 within y = x in y",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:y>",
				"..<ID:y>",
				".gamma",
				"..lambda",
				"...<ID:x>",
				"...<ID:x>",
				"..<INT:1>",
			},
		},
		{
			name:  "infix at becomes nested gammas",
			input: "1 @ add 2",
			expect: []string{
				"gamma",
				".gamma",
				"..<ID:add>",
				"..<INT:1>",
				".<INT:2>",
			},
		},
		{
			name:  "rec introduces the Y combinator",
			input: "let rec f n = f n in f",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:f>",
				"..<ID:f>",
				".gamma",
				"..Y",
				"..lambda",
				"...<ID:f>",
				"...lambda",
				"....<ID:n>",
				"....gamma",
				".....<ID:f>",
				".....<ID:n>",
			},
		},
		{
			name:  "multi parameter lambda is curried",
			input: "fn x y z. x",
			expect: []string{
				"lambda",
				".<ID:x>",
				".lambda",
				"..<ID:y>",
				"..lambda",
				"...<ID:z>",
				"...<ID:x>",
			},
		},
		{
			name:  "tuple parameter lambda stays simultaneous",
			input: "let swap (x,y) = (y,x) in swap",
			expect: []string{
				"gamma",
				".lambda",
				"..<ID:swap>",
				"..<ID:swap>",
				".lambda",
				"..,",
				"...<ID:x>",
				"...<ID:y>",
				"..tau",
				"...<ID:y>",
				"...<ID:x>",
			},
		},
		{
			name:  "operators pass through untouched",
			input: "1 + 2 * 3",
			expect: []string{
				"+",
				".<INT:1>",
				".*",
				"..<INT:2>",
				"..<INT:3>",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := parseSource(t, tc.input)
			if !assert.NoError(err) {
				return
			}

			if !assert.NoError(Standardize(ast)) {
				return
			}

			assert.Equal(strings.Join(tc.expect, "\n"), ast.Dump())
		})
	}
}

func Test_Standardize_isIdempotent(t *testing.T) {
	sources := []string{
		"let x = 42 in Print x",
		"let rec f n = n eq 0 -> 1 | n * f (n-1) in Print (f 5)",
		"let x = 1 and y = 2 in x + y",
		"let x = 1 within y = x in y",
		"Print (2 @ add 3) where add a b = a + b",
		"let swap (x,y) = (y,x) in Print (swap (1,2))",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := parseSource(t, src)
			if !assert.NoError(err) {
				return
			}

			if !assert.NoError(Standardize(ast)) {
				return
			}
			once := ast.Copy()

			if !assert.NoError(Standardize(ast)) {
				return
			}

			assert.True(once.Equal(ast), "standardizing a standard tree changed it")
		})
	}
}

func Test_Standardize_rejectsMalformedShapes(t *testing.T) {
	assert := assert.New(t)

	// a let node whose first child is not a definition can only come from a
	// parser bug; the standardizer treats it as fatal
	bad := NewNode("let",
		NewLeaf(Token{Kind: IntLiteral, Lexeme: "1"}),
		NewLeaf(Token{Kind: IntLiteral, Lexeme: "2"}),
	)

	assert.Error(Standardize(bad))
}
