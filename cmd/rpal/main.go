/*
Rpal interprets RPAL programs from a file, from the command line, or
interactively.

Usage:

	rpal [flags] [FILE]

With a FILE argument, the file's contents are interpreted as one RPAL program
and any Print output is written to stdout. With -e, the flag's argument is
the program. With neither, an interactive session starts: each line entered
is interpreted as a complete program, and the session ends on "quit" or EOF.

The flags are:

	-v, --version
		Give the current version of the RPAL interpreter and then exit.

	-a, --ast
		Print the abstract syntax tree before interpreting.

	-t, --st
		Print the standardized tree before interpreting.

	-e, --execute PROGRAM
		Interpret the given program text instead of reading a file.

	--steps N
		Abort evaluation after N machine steps. 0 selects the default
		budget; a negative value removes the bound entirely.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	rpal "github.com/Pratheep-Srikones/rpal-online"
	"github.com/Pratheep-Srikones/rpal-online/internal/version"
	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitProgramError indicates an unsuccessful program execution due to a
	// problem in the interpreted program.
	ExitProgramError

	// ExitUsageError indicates an unsuccessful program execution due to bad
	// invocation.
	ExitUsageError
)

const consoleOutputWidth = 80

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagAST     *bool   = pflag.BoolP("ast", "a", false, "Print the abstract syntax tree before interpreting")
	flagST      *bool   = pflag.BoolP("st", "t", false, "Print the standardized tree before interpreting")
	flagExec    *string = pflag.StringP("execute", "e", "", "Interpret the given program text instead of reading a file")
	flagSteps   *int    = pflag.Int("steps", 0, "Maximum number of machine steps before aborting (0 for the default budget)")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("rpal %s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}

	switch {
	case *flagExec != "":
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "Cannot give both -e and a FILE\nDo -h for help.\n")
			returnCode = ExitUsageError
			return
		}
		interpretOnce(*flagExec, "")
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
		interpretOnce(string(data), args[0])
	default:
		runInteractive()
	}
}

// interpretOnce evaluates a single program and writes its output, its tree
// dumps if requested, and its final value.
func interpretOnce(source string, file string) {
	interp := rpal.Interpreter{MaxSteps: *flagSteps, File: file}

	res, err := interp.EvalOpts(source, rpal.Options{AST: *flagAST, ST: *flagST})

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", w)
	}
	if *flagAST && res.AST != nil {
		fmt.Println(res.AST.Dump())
	}
	if *flagST && res.ST != nil {
		fmt.Println(res.ST.Dump())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitProgramError
		return
	}

	fmt.Print(res.Output)
	if res.Output != "" && !strings.HasSuffix(res.Output, "\n") {
		fmt.Println()
	}
}

// runInteractive reads programs line by line with readline until the session
// ends.
func runInteractive() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "RPAL> ",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}
	defer rl.Close()

	greeting := fmt.Sprintf("RPAL interpreter %s. Each line is interpreted as a complete program; "+
		"type \"quit\" or press ctrl-D to leave.", version.Current)
	fmt.Println(rosed.Edit(greeting).Wrap(consoleOutputWidth).String())

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitProgramError
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			break
		}

		interp := rpal.Interpreter{MaxSteps: *flagSteps}
		res, err := interp.Eval(line)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "WARN: %s\n", w)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			continue
		}

		if res.Output != "" {
			fmt.Println(res.Output)
		} else {
			fmt.Println(res.Value.Format())
		}
	}
}
