// Package eval implements the interpreter's evaluator: a pure recursive
// walk over the ast.Node tree that produces a runtime value, threading the
// lexical environment (package env) through every step. It is
// single-threaded and synchronous; it has no reentrant state beyond the
// environment argument.
package eval

import (
	"strconv"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/env"
	"github.com/tinylisp/scm/parser"
	"github.com/tinylisp/scm/syntax"
	"github.com/tinylisp/scm/value"
)

// Eval walks n under env e and returns its value, or the first error
// encountered. Eval never mutates e's existing frames except through an
// explicit set!/set-car!/set-cdr! reachable from n; every binding form
// that introduces new names does so by producing a fresh, extended Env.
func Eval(n ast.Node, e *env.Env) (*value.Value, error) {
	switch node := n.(type) {
	case *ast.Int:
		return value.NewInteger(node.Value), nil
	case *ast.Str:
		return value.NewString(node.Value), nil
	case *ast.Bool:
		return value.NewBoolean(node.Value), nil
	case *ast.Var:
		return evalVar(node, e)
	case *ast.Quote:
		return quoteToValue(node.Form)
	case *ast.If:
		return evalIf(node, e)
	case *ast.Begin:
		return evalBegin(node, e)
	case *ast.And:
		return evalAnd(node, e)
	case *ast.Or:
		return evalOr(node, e)
	case *ast.Cond:
		return evalCond(node, e)
	case *ast.Lambda:
		return value.NewClosure(node.Formals, node.Body, e), nil
	case *ast.Apply:
		return evalApply(node, e)
	case *ast.Let:
		return evalLet(node, e)
	case *ast.Letrec:
		return evalLetrec(node, e)
	case *ast.Define:
		// A bare Define only has meaning as part of a leading run of
		// definitions (handled by evalBegin) or as a top-level form
		// (handled by the REPL driver's own buffering, package repl).
		// Reaching here means a define appeared somewhere Eval cannot
		// thread a mutated environment back to its caller.
		return nil, newError(node.Position(), "define: not allowed in this context")
	case *ast.Set:
		return evalSet(node, e)
	case *ast.PrimApp:
		return evalPrimApp(node, e)
	}
	return nil, newError(n.Position(), "eval: unsupported node %T", n)
}

// evalVar implements §4.E's Var(x) rule: a bound, assigned cell wins; a
// bound-but-placeholder cell is an error; an absent name falls back to
// primitive reification; otherwise it is undefined.
func evalVar(node *ast.Var, e *env.Env) (*value.Value, error) {
	if v, ok := e.Find(node.Name); ok {
		if e.IsPlaceholder(node.Name) {
			return nil, newError(node.Position(), "undefined variable %q", node.Name)
		}
		return v, nil
	}
	if op, ok := parser.PrimitiveOp(node.Name); ok {
		return value.NewPrimitive(node.Name, nativeFor(op)), nil
	}
	return nil, newError(node.Position(), "undefined variable %q", node.Name)
}

func evalIf(node *ast.If, e *env.Env) (*value.Value, error) {
	c, err := Eval(node.Cond, e)
	if err != nil {
		return nil, err
	}
	if c.IsTruthy() {
		return Eval(node.Then, e)
	}
	return Eval(node.Else, e)
}

// evalBegin implements §4.E Begin, including the internal-define grouping
// rule: a leading run of Define nodes is bound as one letrec-style group
// (see BindGroup) before any of the remaining expressions are evaluated.
func evalBegin(node *ast.Begin, e *env.Env) (*value.Value, error) {
	exprs := node.Exprs
	if len(exprs) == 0 {
		return value.VoidValue(), nil
	}

	i := 0
	var bindings []ast.Binding
	for i < len(exprs) {
		d, ok := exprs[i].(*ast.Define)
		if !ok {
			break
		}
		bindings = append(bindings, ast.Binding{Name: d.Name, Expr: d.Expr})
		i++
	}

	cur := e
	if len(bindings) > 0 {
		inner, err := BindGroup(cur, bindings)
		if err != nil {
			return nil, err
		}
		cur = inner
	}

	rest := exprs[i:]
	if len(rest) == 0 {
		return value.VoidValue(), nil
	}

	var result *value.Value
	for _, x := range rest {
		v, err := Eval(x, cur)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func evalAnd(node *ast.And, e *env.Env) (*value.Value, error) {
	if len(node.Exprs) == 0 {
		return value.NewBoolean(true), nil
	}
	var last *value.Value
	for _, x := range node.Exprs {
		v, err := Eval(x, e)
		if err != nil {
			return nil, err
		}
		if !v.IsTruthy() {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func evalOr(node *ast.Or, e *env.Env) (*value.Value, error) {
	if len(node.Exprs) == 0 {
		return value.NewBoolean(false), nil
	}
	for _, x := range node.Exprs {
		v, err := Eval(x, e)
		if err != nil {
			return nil, err
		}
		if v.IsTruthy() {
			return v, nil
		}
	}
	return value.NewBoolean(false), nil
}

func evalCond(node *ast.Cond, e *env.Env) (*value.Value, error) {
	for _, clause := range node.Clauses {
		var test *value.Value
		if clause.Else {
			test = value.NewBoolean(true)
		} else {
			v, err := Eval(clause.Test, e)
			if err != nil {
				return nil, err
			}
			test = v
		}
		if !test.IsTruthy() {
			continue
		}
		if len(clause.Exprs) == 0 {
			return test, nil
		}
		var result *value.Value
		for _, x := range clause.Exprs {
			v, err := Eval(x, e)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil
	}
	return value.VoidValue(), nil
}

// evalLet implements §4.E Let: every right-hand side is evaluated under
// the outer env first, then all bindings become visible simultaneously.
func evalLet(node *ast.Let, e *env.Env) (*value.Value, error) {
	names := make([]string, len(node.Bindings))
	values := make([]*value.Value, len(node.Bindings))
	for i, b := range node.Bindings {
		v, err := Eval(b.Expr, e)
		if err != nil {
			return nil, err
		}
		names[i] = b.Name
		values[i] = v
	}
	inner := env.ExtendMany(names, values, e)
	return Eval(node.Body, inner)
}

func evalLetrec(node *ast.Letrec, e *env.Env) (*value.Value, error) {
	inner, err := BindGroup(e, node.Bindings)
	if err != nil {
		return nil, err
	}
	return Eval(node.Body, inner)
}

func evalSet(node *ast.Set, e *env.Env) (*value.Value, error) {
	v, err := Eval(node.Expr, e)
	if err != nil {
		return nil, err
	}
	if err := e.Modify(node.Name, v); err != nil {
		return nil, newError(node.Position(), "%s", err)
	}
	return value.VoidValue(), nil
}

func evalPrimApp(node *ast.PrimApp, e *env.Env) (*value.Value, error) {
	args := make([]*value.Value, len(node.Args))
	for i, a := range node.Args {
		v, err := Eval(a, e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	v, err := nativeFor(node.Op)(args)
	if err != nil {
		return nil, newError(node.Position(), "%s", err)
	}
	return v, nil
}

func evalApply(node *ast.Apply, e *env.Env) (*value.Value, error) {
	rator, err := Eval(node.Rator, e)
	if err != nil {
		return nil, err
	}
	if rator.Kind() != value.Procedure {
		return nil, newError(node.Position(), "attempt to apply a non-procedure")
	}
	args := make([]*value.Value, len(node.Rands))
	for i, r := range node.Rands {
		v, err := Eval(r, e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return Apply(node.Position(), rator, args)
}

// Apply invokes proc (a Procedure value) with already-evaluated args.
// evalApply calls it for every application, so a procedure is called
// uniformly whether it wraps a Native function (as the primitives reified
// by evalVar do) or user source.
func Apply(pos syntax.Position, proc *value.Value, args []*value.Value) (*value.Value, error) {
	if proc.Native() != nil {
		v, err := proc.Native()(args)
		if err != nil {
			return nil, newError(pos, "%s: %s", proc.Name(), err)
		}
		return v, nil
	}

	formals := proc.Formals()
	if len(args) != len(formals) {
		return nil, newError(pos, "procedure expected %d argument(s), got %d", len(formals), len(args))
	}
	body, ok := proc.Body().(ast.Node)
	if !ok {
		return nil, newError(pos, "internal error: closure has no body")
	}
	capturedEnv, ok := proc.Env().(*env.Env)
	if !ok {
		return nil, newError(pos, "internal error: closure has no captured environment")
	}
	callEnv := env.ExtendMany(formals, args, capturedEnv)
	return Eval(body, callEnv)
}

// BindGroup implements the one shared helper behind letrec, a begin's
// leading internal defines, and the REPL's top-level define grouping
// (§9, Mutual recursion): every name is reserved as a placeholder in one
// new frame, then each right-hand side is evaluated in source order under
// that frame and the cell is mutated to its value. Returning the extended
// Env lets callers keep it around (the REPL keeps growing the global
// chain this way across iterations).
func BindGroup(e *env.Env, bindings []ast.Binding) (*env.Env, error) {
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Name
	}
	inner := env.ExtendManyPlaceholders(names, e)
	for _, b := range bindings {
		v, err := Eval(b.Expr, inner)
		if err != nil {
			return nil, err
		}
		if err := inner.Modify(b.Name, v); err != nil {
			return nil, newError(b.Expr.Position(), "%s", err)
		}
	}
	return inner, nil
}

// quoteToValue structurally converts a raw Datum into a runtime value,
// per §4.E Quote: atoms map directly, a list right-folds cons onto Null,
// and an identifier "." in the second-to-last position marks an improper
// (dotted) tail.
func quoteToValue(d *syntax.Datum) (*value.Value, error) {
	switch d.Kind {
	case syntax.Number:
		n, err := parseQuotedInt(d.Text)
		if err != nil {
			return nil, newError(d.Pos, "malformed integer literal %q in quote", d.Text)
		}
		return value.NewInteger(n), nil
	case syntax.TrueAtom:
		return value.NewBoolean(true), nil
	case syntax.FalseAtom:
		return value.NewBoolean(false), nil
	case syntax.StringAtom:
		return value.NewString(d.Text), nil
	case syntax.SymbolicAtom:
		return value.NewSymbol(d.Text), nil
	case syntax.List:
		return quoteList(d)
	}
	return nil, newError(d.Pos, "quote: unrecognized datum kind %s", d.Kind)
}

func quoteList(d *syntax.Datum) (*value.Value, error) {
	children := d.Children
	if len(children) == 0 {
		return value.Nil(), nil
	}

	if len(children) >= 2 && isDotMarker(children[len(children)-2]) {
		if len(children) < 3 {
			return nil, newError(d.Pos, "quote: malformed dotted pair")
		}
		head := children[:len(children)-2]
		tailDatum := children[len(children)-1]
		tail, err := quoteToValue(tailDatum)
		if err != nil {
			return nil, err
		}
		return consUp(head, tail)
	}

	return consUp(children, value.Nil())
}

func isDotMarker(d *syntax.Datum) bool {
	return d.Kind == syntax.SymbolicAtom && d.Text == "."
}

func consUp(items []*syntax.Datum, tail *value.Value) (*value.Value, error) {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		v, err := quoteToValue(items[i])
		if err != nil {
			return nil, err
		}
		result = value.NewPair(v, result)
	}
	return result, nil
}

func parseQuotedInt(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
}
