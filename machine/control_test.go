package machine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pratheep-Srikones/rpal-online/syntax"
)

// generateSource runs the full frontend and the generator over src.
func generateSource(t *testing.T, src string) []*ControlStructure {
	t.Helper()

	tokens, warnings := syntax.Tokenize(src)
	if len(warnings) > 0 {
		t.Fatalf("unexpected tokenizer warnings: %v", warnings)
	}
	ast, err := syntax.Parse(tokens)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := syntax.Standardize(ast); err != nil {
		t.Fatalf("standardize: %v", err)
	}
	deltas, err := Generate(ast)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return deltas
}

func Test_Generate_deltaLayout(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:  "simple expression stays in delta 0",
			input: "1 + 2 * 3",
			expect: []string{
				"delta 0: <+> <1> <*> <2> <3>",
			},
		},
		{
			name:  "lambda body is lifted into its own delta",
			input: "let x = 42 in Print x",
			expect: []string{
				"delta 0: <gamma> <lambda 1, [x]> <42>",
				"delta 1: <gamma> <Print> <x>",
			},
		},
		{
			name:  "conditional branches get their own deltas",
			input: "1 gr 2 -> 'a' | 'b'",
			expect: []string{
				"delta 0: <delta 1> <delta 2> <beta> <gr> <1> <2>",
				"delta 1: <'a'>",
				"delta 2: <'b'>",
			},
		},
		{
			name:  "tau stays inline",
			input: "1, 2, 3",
			expect: []string{
				"delta 0: <tau(3)> <1> <2> <3>",
			},
		},
		{
			name:  "tuple parameter produces one multi-variable lambda",
			input: "let swap (x,y) = (y,x) in swap (1,2)",
			expect: []string{
				"delta 0: <gamma> <lambda 1, [swap]> <lambda 2, [x, y]>",
				"delta 1: <gamma> <swap> <tau(2)> <1> <2>",
				"delta 2: <tau(2)> <y> <x>",
			},
		},
		{
			name:  "recursion routes through Y",
			input: "let rec f n = f n in f 1",
			expect: []string{
				"delta 0: <gamma> <lambda 1, [f]> <gamma> <Y> <lambda 2, [f]>",
				"delta 1: <gamma> <f> <1>",
				"delta 2: <lambda 3, [n]>",
				"delta 3: <gamma> <f> <n>",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			deltas := generateSource(t, tc.input)

			actual := make([]string, len(deltas))
			for i := range deltas {
				actual[i] = deltas[i].String()
			}

			assert.Equal(strings.Join(tc.expect, "\n"), strings.Join(actual, "\n"))
		})
	}
}

func Test_Generate_everyReferencedDeltaExists(t *testing.T) {
	sources := []string{
		"let rec f n = n eq 0 -> 1 | n * f (n-1) in Print (f 5)",
		"let Sum(A) = Psum (A, Order A) where rec Psum (T,N) = N eq 0 -> 0 | Psum(T,N-1) + T N in Print ( Sum (1,2,3,4,5) )",
		"fn x y z. x gr y -> y | z",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			assert := assert.New(t)

			deltas := generateSource(t, src)

			for i, cs := range deltas {
				assert.Equal(i, cs.Number, "delta numbering must match table position")
				for _, it := range cs.Items {
					switch it.Kind {
					case LambdaItem:
						assert.Less(it.Lambda.K, len(deltas))
						assert.Equal(-1, it.Lambda.C, "lambda inside a delta must have no captured environment")
					case DeltaItem:
						assert.Less(it.Delta.Number, len(deltas))
					}
				}
			}
		})
	}
}

func Test_Generate_numbersLambdaBodiesInCreationOrder(t *testing.T) {
	assert := assert.New(t)

	// nested lambdas: the outer body delta is created before the inner one
	deltas := generateSource(t, "fn x. fn y. x + y")

	assert.Len(deltas, 3)
	assert.Equal("delta 0: <lambda 1, [x]>", deltas[0].String())
	assert.Equal("delta 1: <lambda 2, [y]>", deltas[1].String())
	assert.Equal("delta 2: <+> <x> <y>", deltas[2].String())
}
