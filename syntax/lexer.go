package syntax

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// reservedWords is the set of identifiers that are reclassified as keywords.
var reservedWords = map[string]bool{
	"let": true, "in": true, "within": true, "where": true, "fn": true,
	"aug": true, "and": true, "or": true, "not": true,
	"gr": true, "ge": true, "ls": true, "le": true, "eq": true, "ne": true,
	"true": true, "false": true, "nil": true, "dummy": true, "rec": true,
}

// doubleOperators are matched before anything else so that ">=" never lexes
// as ">" followed by "=".
var doubleOperators = []string{">=", "<=", "->", "**"}

var (
	patIdent  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*`)
	patInt    = regexp.MustCompile(`^[0-9]+`)
	patString = regexp.MustCompile(`^'([^'\\]|\\.)*'`)
	patOp     = regexp.MustCompile("^[+\\-*/&@|><.=~$!#%^_\\[\\]{}\"`?]")
	patPunct  = regexp.MustCompile(`^[();,]`)
)

// Tokenize splits RPAL source text into its tokens. The scanner is
// line-oriented: "//" begins a comment that runs to the end of the line, and
// every token is tagged with the 1-based line it was found on.
//
// Characters that cannot begin any token are skipped, not fatal; each one
// produces a warning string in the second return value.
func Tokenize(source string) ([]Token, []string) {
	var tokens []Token
	var warnings []string

	for i, line := range strings.Split(source, "\n") {
		lineNumber := i + 1

		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}

		for {
			line = strings.TrimLeftFunc(line, unicode.IsSpace)
			if line == "" {
				break
			}

			if op, ok := matchDoubleOperator(line); ok {
				tokens = append(tokens, Token{Kind: Operator, Lexeme: op, Line: lineNumber})
				line = line[len(op):]
				continue
			}

			if m := patIdent.FindString(line); m != "" {
				kind := Identifier
				if reservedWords[m] {
					kind = Keyword
				}
				tokens = append(tokens, Token{Kind: kind, Lexeme: m, Line: lineNumber})
				line = line[len(m):]
				continue
			}

			if m := patInt.FindString(line); m != "" {
				tokens = append(tokens, Token{Kind: IntLiteral, Lexeme: m, Line: lineNumber})
				line = line[len(m):]
				continue
			}

			if m := patString.FindString(line); m != "" {
				tokens = append(tokens, Token{Kind: StrLiteral, Lexeme: m, Line: lineNumber})
				line = line[len(m):]
				continue
			}

			if m := patOp.FindString(line); m != "" {
				tokens = append(tokens, Token{Kind: Operator, Lexeme: m, Line: lineNumber})
				line = line[len(m):]
				continue
			}

			if m := patPunct.FindString(line); m != "" {
				tokens = append(tokens, Token{Kind: TokenKind(m), Lexeme: m, Line: lineNumber})
				line = line[len(m):]
				continue
			}

			warnings = append(warnings, fmt.Sprintf("unexpected character %q at line %d", line[0], lineNumber))
			line = line[1:]
		}
	}

	return tokens, warnings
}

func matchDoubleOperator(s string) (string, bool) {
	for _, op := range doubleOperators {
		if strings.HasPrefix(s, op) {
			return op, true
		}
	}
	return "", false
}
