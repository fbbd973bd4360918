package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Value_Format(t *testing.T) {
	testCases := []struct {
		name   string
		value  Value
		expect string
	}{
		{name: "int", value: IntOf(42), expect: "42"},
		{name: "negative int", value: IntOf(-3), expect: "-3"},
		{name: "quoted string", value: StringOf("'hi'"), expect: "hi"},
		{name: "bare string", value: StringOf("hi"), expect: "hi"},
		{name: "true", value: BoolOf(true), expect: "true"},
		{name: "false", value: BoolOf(false), expect: "false"},
		{name: "nil", value: Nil(), expect: "nil"},
		{name: "dummy", value: Dummy(), expect: "dummy"},
		{name: "empty tuple", value: TupleOf(nil), expect: "()"},
		{
			name:   "tuple",
			value:  TupleOf([]Value{IntOf(2), IntOf(1)}),
			expect: "(2, 1)",
		},
		{
			name:   "nested tuple",
			value:  TupleOf([]Value{IntOf(1), TupleOf([]Value{StringOf("'a'"), BoolOf(false)})}),
			expect: "(1, (a, false))",
		},
		{
			name:   "single variable closure",
			value:  closureOf(&Lambda{K: 3, Variables: []string{"x"}, C: 0}),
			expect: "[lambda closure: x: 3]",
		},
		{
			name:   "multi variable closure",
			value:  closureOf(&Lambda{K: 3, Variables: []string{"x", "y"}, C: 0}),
			expect: "[lambda closure: [x, y]: 3]",
		},
		{
			name:   "eta",
			value:  etaOf(&Eta{K: 2, Variables: []string{"f"}, C: 0}),
			expect: "[eta closure: f: 2]",
		},
		{name: "builtin", value: Builtin("conc"), expect: "conc"},
		{name: "y combinator", value: YCombinator(), expect: "Y"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.value.Format())
		})
	}
}

func Test_Value_Equal(t *testing.T) {
	lam := &Lambda{K: 1, Variables: []string{"x"}, C: 0}

	testCases := []struct {
		name   string
		left   Value
		right  any
		expect bool
	}{
		{name: "same ints", left: IntOf(1), right: IntOf(1), expect: true},
		{name: "different ints", left: IntOf(1), right: IntOf(2), expect: false},
		{name: "int vs bool", left: IntOf(1), right: BoolOf(true), expect: false},
		{name: "nil vs nil", left: Nil(), right: Nil(), expect: true},
		{name: "nil vs empty tuple", left: Nil(), right: TupleOf(nil), expect: false},
		{name: "pointer to value", left: IntOf(1), right: &Value{t: IntType, i: 1}, expect: true},
		{name: "not a value", left: IntOf(1), right: 1, expect: false},
		{
			name:   "tuples elementwise",
			left:   TupleOf([]Value{IntOf(1), StringOf("a")}),
			right:  TupleOf([]Value{IntOf(1), StringOf("a")}),
			expect: true,
		},
		{
			name:   "closures compare by identity",
			left:   closureOf(lam),
			right:  closureOf(&Lambda{K: 1, Variables: []string{"x"}, C: 0}),
			expect: false,
		},
		{name: "same closure record", left: closureOf(lam), right: closureOf(lam), expect: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.left.Equal(tc.right))
		})
	}
}

func Test_Value_accessorsPanicOnWrongType(t *testing.T) {
	assert := assert.New(t)

	assert.Panics(func() { Nil().Int() })
	assert.Panics(func() { IntOf(1).Str() })
	assert.Panics(func() { IntOf(1).Bool() })
	assert.Panics(func() { IntOf(1).Tuple() })
	assert.Panics(func() { IntOf(1).Closure() })
}
