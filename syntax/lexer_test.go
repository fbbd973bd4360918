package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Tokenize_kindSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []TokenKind
	}{
		{name: "blank string", input: "", expect: nil},
		{name: "only a comment", input: "// nothing here", expect: nil},
		{name: "number", input: "42", expect: []TokenKind{IntLiteral}},
		{name: "identifier", input: "Psum", expect: []TokenKind{Identifier}},
		{name: "identifier with underscore", input: "a_b2", expect: []TokenKind{Identifier}},
		{name: "keyword", input: "let", expect: []TokenKind{Keyword}},
		{name: "keywords are case sensitive", input: "Let", expect: []TokenKind{Identifier}},
		{name: "string", input: "'hello'", expect: []TokenKind{StrLiteral}},
		{name: "string with escape", input: `'it\'s'`, expect: []TokenKind{StrLiteral}},
		{name: "empty string literal", input: "''", expect: []TokenKind{StrLiteral}},
		{name: "single operators", input: "+ - * / @ .", expect: []TokenKind{
			Operator, Operator, Operator, Operator, Operator, Operator,
		}},
		{name: "double operator arrow", input: "->", expect: []TokenKind{Operator}},
		{name: "double operator beats single", input: ">=", expect: []TokenKind{Operator}},
		{name: "power operator", input: "**", expect: []TokenKind{Operator}},
		{name: "punctuation", input: "( ) ; ,", expect: []TokenKind{
			OpenParen, CloseParen, Semicolon, Comma,
		}},
		{name: "let binding", input: "let x = 42 in x", expect: []TokenKind{
			Keyword, Identifier, Operator, IntLiteral, Keyword, Identifier,
		}},
		{name: "fn with dot", input: "fn x . x + 1", expect: []TokenKind{
			Keyword, Identifier, Operator, Identifier, Operator, IntLiteral,
		}},
		{name: "no spaces needed", input: "x+1", expect: []TokenKind{
			Identifier, Operator, IntLiteral,
		}},
		{name: "comment ends the line", input: "x // + y", expect: []TokenKind{Identifier}},
		{name: "relational keywords", input: "x gr 1 ls 2", expect: []TokenKind{
			Identifier, Keyword, IntLiteral, Keyword, IntLiteral,
		}},
		{name: "call with tuple", input: "Sum (1,2,3)", expect: []TokenKind{
			Identifier, OpenParen, IntLiteral, Comma, IntLiteral, Comma, IntLiteral, CloseParen,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tokens, warnings := Tokenize(tc.input)
			assert.Empty(warnings)

			actual := make([]string, len(tokens))
			for i := range tokens {
				actual[i] = string(tokens[i].Kind)
			}
			expect := make([]string, len(tc.expect))
			for i := range tc.expect {
				expect[i] = string(tc.expect[i])
			}

			assert.Equal(strings.Join(expect, " "), strings.Join(actual, " "))
		})
	}
}

func Test_Tokenize_lexemesAndLines(t *testing.T) {
	assert := assert.New(t)

	tokens, warnings := Tokenize("let x = 42\nin Print x")

	assert.Empty(warnings)
	expect := []Token{
		{Kind: Keyword, Lexeme: "let", Line: 1},
		{Kind: Identifier, Lexeme: "x", Line: 1},
		{Kind: Operator, Lexeme: "=", Line: 1},
		{Kind: IntLiteral, Lexeme: "42", Line: 1},
		{Kind: Keyword, Lexeme: "in", Line: 2},
		{Kind: Identifier, Lexeme: "Print", Line: 2},
		{Kind: Identifier, Lexeme: "x", Line: 2},
	}
	assert.Equal(expect, tokens)
}

func Test_Tokenize_stringKeepsQuotes(t *testing.T) {
	assert := assert.New(t)

	tokens, _ := Tokenize("'foo bar'")

	assert.Len(tokens, 1)
	assert.Equal("'foo bar'", tokens[0].Lexeme)
}

func Test_Tokenize_unknownCharacterWarns(t *testing.T) {
	assert := assert.New(t)

	tokens, warnings := Tokenize("x \x00 y")

	// the bad character is skipped, not fatal
	assert.Len(tokens, 2)
	assert.Len(warnings, 1)
	assert.Contains(warnings[0], "line 1")
}

func Test_Token_Int(t *testing.T) {
	assert := assert.New(t)

	tok := Token{Kind: IntLiteral, Lexeme: "123", Line: 1}
	assert.Equal(123, tok.Int())

	assert.Panics(func() {
		Token{Kind: Identifier, Lexeme: "x"}.Int()
	})
}
