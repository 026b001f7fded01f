// Package repl implements the interpreter's read/eval/print driver: the
// state machine that groups consecutive top-level defines before
// committing them, evaluates every other top-level form against a single
// persistent global environment, and decides what -- if anything -- to
// print. It is the only component permitted to mutate the top-level
// environment between expressions (§5).
package repl

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/env"
	"github.com/tinylisp/scm/eval"
	"github.com/tinylisp/scm/parser"
	"github.com/tinylisp/scm/syntax"
	"github.com/tinylisp/scm/value"
)

// State names one point of the §4.F state machine. It exists mainly so
// --log-level debug can trace the driver's progress through a single
// top-level form, the same way the CPU-controller style of a run-loop
// exposes its own Running()/Step() status.
type State int

// States of the REPL driver, in the order §4.F describes them.
const (
	StateReading State = iota
	StateBuffering
	StateFlushing
	StateEvaluating
	StatePrinting
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateBuffering:
		return "buffering"
	case StateFlushing:
		return "flushing"
	case StateEvaluating:
		return "evaluating"
	case StatePrinting:
		return "printing"
	}
	return "unknown"
}

// Prompt is printed before each read when the driver is running
// interactively.
const Prompt = "scm> "

// Driver holds the persistent state threaded across REPL iterations: the
// global environment (mutated only here), the parser's matching lexical
// scope, and any top-level defines collected but not yet flushed.
type Driver struct {
	logger hclog.Logger
	out    io.Writer

	state State

	globalEnv *env.Env
	topScope  *parser.Scope

	pending    []ast.Binding
	savedScope *parser.Scope // topScope snapshot taken before buffering began; nil outside a buffer

	failed bool // set by reportError; cleared at the start of each Process call
}

// New creates a Driver with an empty global environment, writing printed
// results and RuntimeError reports to out.
func New(logger hclog.Logger, out io.Writer) *Driver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Driver{
		logger:    logger,
		out:       out,
		state:     StateReading,
		globalEnv: env.Empty(),
		topScope:  parser.NewScope(),
	}
}

// State reports the driver's current point in the §4.F state machine.
func (d *Driver) State() State { return d.state }

// GlobalEnv returns the driver's persistent top-level environment, e.g.
// for a CLI entrypoint that wants to pre-load definitions before handing
// control to an interactive loop sharing the same Driver.
func (d *Driver) GlobalEnv() *env.Env { return d.globalEnv }

func (d *Driver) setState(s State) {
	if d.state != s {
		d.logger.Debug("state transition", "from", d.state.String(), "to", s.String())
	}
	d.state = s
}

// Process parses and -- unless it is a define -- evaluates one top-level
// Datum. It reports whether the form was (exit), in which case the caller
// must stop the loop.
func (d *Driver) Process(datum *syntax.Datum) (terminate bool) {
	d.setState(StateReading)
	d.failed = false

	node, err := parser.Parse(datum, d.topScope)
	if err != nil {
		d.abort()
		d.reportError(err)
		return false
	}

	if def, ok := node.(*ast.Define); ok {
		d.buffer(def)
		return false
	}

	if err := d.flush(); err != nil {
		d.abort()
		d.reportError(err)
		return false
	}

	d.setState(StateEvaluating)
	v, err := eval.Eval(node, d.globalEnv)
	if err != nil {
		d.reportError(err)
		return false
	}

	if v.Kind() == value.Terminate {
		d.logger.Debug("exit evaluated, stopping")
		return true
	}

	d.setState(StatePrinting)
	if shouldPrint(node, v) {
		fmt.Fprintln(d.out, value.Show(v, true))
	}
	d.setState(StateReading)
	return false
}

// buffer collects one top-level define without evaluating it, extending
// the parse-time scope immediately (a later form in the same group, or
// after it, may reference the name) while leaving the actual binding as a
// placeholder until flush.
func (d *Driver) buffer(def *ast.Define) {
	if d.pending == nil {
		d.savedScope = d.topScope
	}
	d.setState(StateBuffering)
	d.pending = append(d.pending, ast.Binding{Name: def.Name, Expr: def.Expr})
	d.topScope = d.topScope.Extend(def.Name)
}

// flush commits a buffered run of top-level defines as one letrec-style
// group (eval.BindGroup): every name becomes a placeholder in a single new
// frame, then each right-hand side is evaluated in source order and the
// cell mutated to its value. A no-op when nothing is buffered.
func (d *Driver) flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	d.setState(StateFlushing)
	inner, err := eval.BindGroup(d.globalEnv, d.pending)
	if err != nil {
		return err
	}
	d.globalEnv = inner
	d.pending = nil
	d.savedScope = nil
	return nil
}

// abort discards any in-flight define buffer and restores the scope as it
// stood before buffering began, per §4.F: "On error, buffered defines are
// discarded."
func (d *Driver) abort() {
	if d.savedScope != nil {
		d.topScope = d.savedScope
	}
	d.pending = nil
	d.savedScope = nil
}

func (d *Driver) reportError(err error) {
	d.logger.Debug("runtime error", "error", err)
	d.failed = true
	fmt.Fprintln(d.out, "RuntimeError")
	d.setState(StateReading)
}

// Failed reports whether the most recent Process call (or the final flush
// at end-of-input inside Run) reported a RuntimeError. A CLI entrypoint
// driving --eval/--load uses this to decide its process exit status.
func (d *Driver) Failed() bool { return d.failed }

// shouldPrint implements the Void-suppression rule of §4.F: a Void result
// is printed only when the form's outermost operator is literally void.
func shouldPrint(node ast.Node, v *value.Value) bool {
	if v.Kind() != value.Void {
		return true
	}
	p, ok := node.(*ast.PrimApp)
	return ok && p.Op == ast.OpVoid
}

// Run drives the read/Process loop to completion against rd, printing a
// prompt before each read when interactive is true. It returns when
// (exit) is evaluated or the input is exhausted; any trailing buffered
// defines at end-of-input are flushed (not discarded -- there being no
// error, just no further form to trigger it) before returning. A read
// error is reported as RuntimeError like any other failure, discards any
// buffered defines, and ends the loop; Failed then reports true.
func (d *Driver) Run(rd *syntax.Reader, interactive bool) error {
	for {
		if interactive {
			fmt.Fprint(d.out, Prompt)
		}

		datum, err := rd.Read()
		if err == io.EOF {
			if ferr := d.flush(); ferr != nil {
				d.abort()
				d.reportError(ferr)
			}
			return nil
		}
		if err != nil {
			d.abort()
			d.reportError(err)
			return nil
		}

		if d.Process(datum) {
			return nil
		}
	}
}
