package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// parseSource is a test helper running the tokenizer and parser together.
func parseSource(t *testing.T, src string) (*Node, error) {
	t.Helper()

	tokens, warnings := Tokenize(src)
	if len(warnings) > 0 {
		t.Fatalf("unexpected tokenizer warnings: %v", warnings)
	}
	return Parse(tokens)
}

func Test_Parse_trees(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:  "let binding",
			input: "let x = 42 in Print x",
			expect: []string{
				"let",
				".=",
				"..<ID:x>",
				"..<INT:42>",
				".gamma",
				"..<ID:Print>",
				"..<ID:x>",
			},
		},
		{
			name:  "fn with two parameters",
			input: "fn x y. x + y",
			expect: []string{
				"lambda",
				".<ID:x>",
				".<ID:y>",
				".+",
				"..<ID:x>",
				"..<ID:y>",
			},
		},
		{
			name:  "where",
			input: "x + 1 where x = 3",
			expect: []string{
				"where",
				".+",
				"..<ID:x>",
				"..<INT:1>",
				".=",
				"..<ID:x>",
				"..<INT:3>",
			},
		},
		{
			name:  "tuple",
			input: "1, 2, 3",
			expect: []string{
				"tau",
				".<INT:1>",
				".<INT:2>",
				".<INT:3>",
			},
		},
		{
			name:  "aug is left associative",
			input: "nil aug 1 aug 2",
			expect: []string{
				"aug",
				".aug",
				"..nil",
				"..<INT:1>",
				".<INT:2>",
			},
		},
		{
			name:  "conditional",
			input: "x gr 1 -> 'a' | 'b'",
			expect: []string{
				"->",
				".gr",
				"..<ID:x>",
				"..<INT:1>",
				".<STRING:'a'>",
				".<STRING:'b'>",
			},
		},
		{
			name:  "symbolic relop is an alias",
			input: "x >= 1",
			expect: []string{
				"ge",
				".<ID:x>",
				".<INT:1>",
			},
		},
		{
			name:  "boolean precedence",
			input: "not a & b or c",
			expect: []string{
				"or",
				".&",
				"..not",
				"...<ID:a>",
				"..<ID:b>",
				".<ID:c>",
			},
		},
		{
			name:  "arithmetic precedence",
			input: "1 + 2 * 3",
			expect: []string{
				"+",
				".<INT:1>",
				".*",
				"..<INT:2>",
				"..<INT:3>",
			},
		},
		{
			name:  "power is right associative",
			input: "2 ** 3 ** 2",
			expect: []string{
				"**",
				".<INT:2>",
				".**",
				"..<INT:3>",
				"..<INT:2>",
			},
		},
		{
			name:  "unary minus",
			input: "-x * 2",
			expect: []string{
				"neg",
				".*",
				"..<ID:x>",
				"..<INT:2>",
			},
		},
		{
			name:  "application is left associative",
			input: "f 1 2",
			expect: []string{
				"gamma",
				".gamma",
				"..<ID:f>",
				"..<INT:1>",
				".<INT:2>",
			},
		},
		{
			name:  "infix at",
			input: "2 @ add 3",
			expect: []string{
				"@",
				".<INT:2>",
				".<ID:add>",
				".<INT:3>",
			},
		},
		{
			name:  "simultaneous definitions",
			input: "let x = 1 and y = 2 in x",
			expect: []string{
				"let",
				".and",
				"..=",
				"...<ID:x>",
				"...<INT:1>",
				"..=",
				"...<ID:y>",
				"...<INT:2>",
				".<ID:x>",
			},
		},
		{
			name:  "within",
			input: "let x = 1 within y = x in y",
			expect: []string{
				"let",
				".within",
				"..=",
				"...<ID:x>",
				"...<INT:1>",
				"..=",
				"...<ID:y>",
				"...<ID:x>",
				".<ID:y>",
			},
		},
		{
			name:  "recursive function form",
			input: "let rec f n = n in f",
			expect: []string{
				"let",
				".rec",
				"..fcn_form",
				"...<ID:f>",
				"...<ID:n>",
				"...<ID:n>",
				".<ID:f>",
			},
		},
		{
			name:  "function form with tuple parameter",
			input: "let swap (x,y) = (y,x) in swap",
			expect: []string{
				"let",
				".fcn_form",
				"..<ID:swap>",
				"..,",
				"...<ID:x>",
				"...<ID:y>",
				"..tau",
				"...<ID:y>",
				"...<ID:x>",
				".<ID:swap>",
			},
		},
		{
			name:  "variable list definition",
			input: "let x, y = 1, 2 in x",
			expect: []string{
				"let",
				".=",
				"..,",
				"...<ID:x>",
				"...<ID:y>",
				"..tau",
				"...<INT:1>",
				"...<INT:2>",
				".<ID:x>",
			},
		},
		{
			name:  "empty parameter binding",
			input: "let f () = 1 in f",
			expect: []string{
				"let",
				".fcn_form",
				"..<ID:f>",
				"..()",
				"..<INT:1>",
				".<ID:f>",
			},
		},
		{
			name:  "literals",
			input: "true, false, nil, dummy",
			expect: []string{
				"tau",
				".true",
				".false",
				".nil",
				".dummy",
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

			assert.Equal(strings.Join(tc.expect, "\n"), ast.Dump())
		})
	}
}

func Test_Parse_errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expectIn string
	}{
		{name: "missing in", input: "let x = 3", expectIn: "expected \"in\""},
		{name: "missing operand", input: "1 +", expectIn: "expected an operand"},
		{name: "unclosed paren", input: "(1 + 2", expectIn: "expected \")\""},
		{name: "conditional without bar", input: "true -> 1", expectIn: "expected \"|\""},
		{name: "fn without dot", input: "fn x x", expectIn: "expected \".\""},
		{name: "at requires identifier", input: "1 @ 2 3", expectIn: "expected an identifier"},
		{name: "definition required", input: "let 3 = 4 in 0", expectIn: "expected a definition"},
		{name: "trailing tokens", input: "1 + 2 )", expectIn: "expected end of input"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := parseSource(t, tc.input)
			if !assert.Error(err) {
				return
			}
			assert.Contains(err.Error(), tc.expectIn)
		})
	}
}

func Test_Parse_errorCarriesLine(t *testing.T) {
	assert := assert.New(t)

	_, err := parseSource(t, "let x = 3\nin let y = 4")

	if !assert.Error(err) {
		return
	}
	synErr, ok := err.(*SyntaxError)
	if !assert.True(ok, "error is not a *SyntaxError") {
		return
	}
	assert.Equal(2, synErr.Line())
}
