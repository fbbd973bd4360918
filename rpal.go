// Package rpal is an interpretation engine for RPAL, a small applicative
// functional language. It wires the full pipeline together: tokenizing,
// parsing, standardizing, control-structure generation, and evaluation on
// the CSE machine.
package rpal

import (
	"fmt"
	"strings"

	"github.com/Pratheep-Srikones/rpal-online/machine"
	"github.com/Pratheep-Srikones/rpal-online/syntax"
)

// DefaultMaxSteps is the evaluation budget used when an Interpreter does not
// set its own.
const DefaultMaxSteps = machine.DefaultMaxSteps

// Interpreter evaluates RPAL programs. The zero value is ready for use. Each
// call to Eval is fully independent: a fresh primitive environment, a fresh
// environment catalogue, and a fresh output buffer.
type Interpreter struct {
	// MaxSteps bounds each evaluation's number of machine steps. Zero means
	// DefaultMaxSteps; a negative value removes the bound.
	MaxSteps int

	// File is the name of the file being interpreted. It is only used to
	// prefix error messages and is optional to set.
	File string
}

// Options selects the optional artifacts of an interpretation.
type Options struct {
	// AST requests a copy of the parse tree before standardization.
	AST bool

	// ST requests the standardized tree.
	ST bool
}

// Result is the outcome of a successful interpretation.
type Result struct {
	// Value is the final value left on the machine's stack. It is the zero
	// Value if the program left nothing behind.
	Value machine.Value

	// Output is everything the program printed.
	Output string

	// Warnings holds tokenizer warnings for characters that were skipped.
	Warnings []string

	// AST and ST are set when requested via Options.
	AST *syntax.Node
	ST  *syntax.Node
}

// Eval interprets the given RPAL source text and returns the result.
func (interp *Interpreter) Eval(code string) (Result, error) {
	return interp.EvalOpts(code, Options{})
}

// EvalOpts interprets the given RPAL source text, optionally collecting tree
// dumps along the way.
func (interp *Interpreter) EvalOpts(code string, opts Options) (Result, error) {
	var res Result

	if strings.TrimSpace(code) == "" {
		return res, interp.wrap(fmt.Errorf("no code provided for interpretation"))
	}

	tokens, warnings := syntax.Tokenize(code)
	res.Warnings = warnings

	ast, err := syntax.Parse(tokens)
	if err != nil {
		return res, interp.wrap(err)
	}
	if opts.AST {
		res.AST = ast.Copy()
	}

	if err := syntax.Standardize(ast); err != nil {
		return res, interp.wrap(err)
	}
	if opts.ST {
		res.ST = ast
	}

	deltas, err := machine.Generate(ast)
	if err != nil {
		return res, interp.wrap(err)
	}

	var out strings.Builder
	m, err := machine.New(deltas, machine.NewPrimitiveEnv(), &out)
	if err != nil {
		return res, interp.wrap(err)
	}
	m.MaxSteps = interp.MaxSteps

	value, err := m.Run()
	res.Output = out.String()
	if err != nil {
		return res, interp.wrap(err)
	}

	res.Value = value
	return res, nil
}

func (interp *Interpreter) wrap(err error) error {
	if interp.File == "" {
		return err
	}
	return fmt.Errorf("%s: %w", interp.File, err)
}
