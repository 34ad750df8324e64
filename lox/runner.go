// Package lox is the engine facade: it wires the scan, parse, resolve,
// and interpret stages into a single pipeline and classifies the result
// for the driver.
package lox

import (
	"io"

	"golox/interpret"
	"golox/parse"
	"golox/resolve"
	"golox/scan"
)

// Classification is the driver-facing result of a run.
type Classification int

const (
	// ClassOK means the program ran to completion
	ClassOK Classification = iota
	// ClassStaticError means one or more lexical, syntax, or
	// resolution errors; execution never started
	ClassStaticError
	// ClassRuntimeError means execution started and halted on its
	// first runtime error
	ClassRuntimeError
)

// Outcome is the result of running one script or one interactive
// input unit.
type Outcome struct {
	Class Classification
	// StaticErrors holds every lexical, syntax, and resolution error
	// found, in report order
	StaticErrors []error
	// RuntimeError is the single runtime error that halted the run
	RuntimeError error
}

// Runner runs source text against a persistent interpreter. Global
// bindings and resolved scope depths survive across Run calls, which
// is what makes an interactive session work.
type Runner struct {
	interpreter *interpret.Interpreter
}

// NewRunner returns a Runner whose programs print to stdOut
func NewRunner(stdOut io.Writer) *Runner {
	return &Runner{interpreter: interpret.NewInterpreter(stdOut)}
}

// Run scans, parses, resolves, and interprets one unit of source text.
// Each stage may stop the pipeline: any static errors prevent
// resolution and execution, and the first runtime error halts the run.
func (r *Runner) Run(source string) Outcome {
	tokens, scanErrs := scan.NewScanner(source).ScanTokens()

	// parse even in the presence of lexical errors so one run can
	// surface both kinds
	statements, parseErrs := parse.NewParser(tokens).Parse()

	var static []error
	for _, e := range scanErrs {
		static = append(static, e)
	}
	for _, e := range parseErrs {
		static = append(static, e)
	}
	if len(static) > 0 {
		return Outcome{Class: ClassStaticError, StaticErrors: static}
	}

	for _, e := range resolve.NewResolver(r.interpreter).Resolve(statements) {
		static = append(static, e)
	}
	if len(static) > 0 {
		return Outcome{Class: ClassStaticError, StaticErrors: static}
	}

	if err := r.interpreter.Interpret(statements); err != nil {
		return Outcome{Class: ClassRuntimeError, RuntimeError: err}
	}
	return Outcome{Class: ClassOK}
}
