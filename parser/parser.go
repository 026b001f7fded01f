// Package parser converts the raw Datum syntax tree produced by package
// syntax into the typed ast.Node tree the evaluator walks, resolving
// special forms, user bindings, and primitive arities along the way.
package parser

import (
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/syntax"
)

// Parse converts one Datum into an ast.Node under the given lexical scope.
// scope tracks which names are currently bound by an enclosing
// let/letrec/lambda, so that rule 2 (user binding shadows a primitive or
// reserved word) can be applied correctly.
func Parse(d *syntax.Datum, scope *Scope) (ast.Node, error) {
	switch d.Kind {
	case syntax.Number:
		n, err := strconv.ParseInt(d.Text, 10, 64)
		if err != nil {
			return nil, newError(d.Pos, "malformed integer literal %q", d.Text)
		}
		return ast.NewInt(d.Pos, n), nil

	case syntax.StringAtom:
		return ast.NewStr(d.Pos, d.Text), nil

	case syntax.TrueAtom:
		return ast.NewBool(d.Pos, true), nil

	case syntax.FalseAtom:
		return ast.NewBool(d.Pos, false), nil

	case syntax.SymbolicAtom:
		return ast.NewVar(d.Pos, d.Text), nil

	case syntax.List:
		return parseList(d, scope)
	}

	return nil, newError(d.Pos, "unrecognized datum kind %s", d.Kind)
}

// parseList implements the five-rule dispatch of §4.D: non-identifier head,
// user binding, primitive, reserved word, or unresolved identifier. An
// empty list is handled before the rules apply.
func parseList(d *syntax.Datum, scope *Scope) (ast.Node, error) {
	if d.Empty() {
		// An empty list used as a form is the quoted empty list.
		return ast.NewQuote(d.Pos, d), nil
	}

	head := d.Children[0]
	tail := d.Children[1:]

	if head.Kind != syntax.SymbolicAtom {
		// Rule 1: head is not an identifier.
		rator, err := Parse(head, scope)
		if err != nil {
			return nil, err
		}
		rands, err := parseAll(tail, scope)
		if err != nil {
			return nil, err
		}
		return ast.NewApply(d.Pos, rator, rands), nil
	}

	name := head.Text

	switch {
	case scope.Bound(name):
		// Rule 2: a user binding shadows a same-named primitive or
		// reserved word.
		rands, err := parseAll(tail, scope)
		if err != nil {
			return nil, err
		}
		return ast.NewApply(d.Pos, ast.NewVar(head.Pos, name), rands), nil

	case isReserved(name):
		// Rule 4: reserved word introduces a special form.
		return parseSpecialForm(d.Pos, name, tail, scope)

	case isPrimitive(name):
		// Rule 3: primitive operator.
		return parsePrimApp(d.Pos, name, tail, scope)

	default:
		// Rule 5: unresolved identifier; may still fail at eval time.
		rands, err := parseAll(tail, scope)
		if err != nil {
			return nil, err
		}
		return ast.NewApply(d.Pos, ast.NewVar(head.Pos, name), rands), nil
	}
}

func parseAll(ds []*syntax.Datum, scope *Scope) ([]ast.Node, error) {
	out := make([]ast.Node, len(ds))
	for i, d := range ds {
		n, err := Parse(d, scope)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func parsePrimApp(pos syntax.Position, name string, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	p := primitives[name]
	if err := checkArity(pos, name, p.arity, len(operands)); err != nil {
		return nil, err
	}
	args, err := parseAll(operands, scope)
	if err != nil {
		return nil, err
	}
	return ast.NewPrimApp(pos, p.op, args), nil
}

func checkArity(pos syntax.Position, name string, rule arityRule, got int) error {
	if got < rule.min || (rule.max != -1 && got > rule.max) {
		if rule.max == -1 {
			return newError(pos, "%s: expected at least %d argument(s), got %d", name, rule.min, got)
		}
		if rule.min == rule.max {
			return newError(pos, "%s: expected %d argument(s), got %d", name, rule.min, got)
		}
		return newError(pos, "%s: expected %d to %d argument(s), got %d", name, rule.min, rule.max, got)
	}
	return nil
}

// parseSpecialForm dispatches on the reserved word itself.
func parseSpecialForm(pos syntax.Position, word string, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	switch word {
	case "let":
		return parseLet(pos, operands, scope)
	case "letrec":
		return parseLetrec(pos, operands, scope)
	case "lambda":
		return parseLambda(pos, operands, scope)
	case "if":
		return parseIf(pos, operands, scope)
	case "begin":
		return parseBeginLike(pos, operands, scope, ast.NewBegin)
	case "and":
		return parseBeginLike(pos, operands, scope, ast.NewAnd)
	case "or":
		return parseBeginLike(pos, operands, scope, ast.NewOr)
	case "cond":
		return parseCond(pos, operands, scope)
	case "quote":
		return parseQuote(pos, operands)
	case "define":
		return parseDefine(pos, operands, scope)
	case "set!":
		return parseSet(pos, operands, scope)
	case "else":
		return nil, newError(pos, "else is not valid outside of a cond clause")
	}
	return nil, newError(pos, "unimplemented reserved word %q", word)
}

// parseBindingList validates and parses a ((name expr) ...) list shared by
// let and letrec. exprScope is the scope each right-hand side is parsed
// under (the outer scope for let, the extended scope for letrec).
func parseBindingList(pos syntax.Position, form string, d *syntax.Datum, exprScope *Scope) ([]ast.Binding, []string, error) {
	if d.Kind != syntax.List {
		return nil, nil, newError(d.Pos, "%s: binding list must be a list", form)
	}

	var result *multierror.Error
	seen := map[string]bool{}
	var bindings []ast.Binding
	var names []string

	for _, entry := range d.Children {
		if entry.Kind != syntax.List || len(entry.Children) != 2 {
			result = multierror.Append(result, newError(entry.Pos, "%s: binding must be (name expr)", form))
			continue
		}
		nameDatum, exprDatum := entry.Children[0], entry.Children[1]
		if nameDatum.Kind != syntax.SymbolicAtom {
			result = multierror.Append(result, newError(nameDatum.Pos, "%s: binder must be an identifier", form))
			continue
		}
		name := nameDatum.Text
		if seen[name] {
			result = multierror.Append(result, newError(nameDatum.Pos, "%s: duplicate binding for %q", form, name))
			continue
		}
		seen[name] = true
		names = append(names, name)

		expr, err := Parse(exprDatum, exprScope)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		bindings = append(bindings, ast.Binding{Name: name, Expr: expr})
	}

	if result != nil {
		return nil, nil, newError(pos, "%s", result.Error())
	}
	return bindings, names, nil
}

func parseLet(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) != 2 {
		return nil, newError(pos, "let: expected (let ((v e) ...) body)")
	}
	bindings, names, err := parseBindingList(pos, "let", operands[0], scope)
	if err != nil {
		return nil, err
	}
	bodyScope := scope.ExtendAll(names)
	body, err := Parse(operands[1], bodyScope)
	if err != nil {
		return nil, err
	}
	return ast.NewLet(pos, bindings, body), nil
}

func parseLetrec(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) != 2 {
		return nil, newError(pos, "letrec: expected (letrec ((v e) ...) body)")
	}
	if operands[0].Kind != syntax.List {
		return nil, newError(operands[0].Pos, "letrec: binding list must be a list")
	}

	var names []string
	for _, entry := range operands[0].Children {
		if entry.Kind == syntax.List && len(entry.Children) == 2 && entry.Children[0].Kind == syntax.SymbolicAtom {
			names = append(names, entry.Children[0].Text)
		}
	}
	innerScope := scope.ExtendAll(names)

	bindings, _, err := parseBindingList(pos, "letrec", operands[0], innerScope)
	if err != nil {
		return nil, err
	}
	body, err := Parse(operands[1], innerScope)
	if err != nil {
		return nil, err
	}
	return ast.NewLetrec(pos, bindings, body), nil
}

func parseLambda(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) < 2 {
		return nil, newError(pos, "lambda: expected (lambda (args...) body...)")
	}
	formals, err := parseFormals(operands[0])
	if err != nil {
		return nil, err
	}
	bodyScope := scope.ExtendAll(formals)
	body, err := parseImplicitBegin(pos, operands[1:], bodyScope)
	if err != nil {
		return nil, err
	}
	return ast.NewLambda(pos, formals, body), nil
}

func parseFormals(d *syntax.Datum) ([]string, error) {
	if d.Kind != syntax.List {
		return nil, newError(d.Pos, "lambda: formals must be a list of identifiers")
	}
	var result *multierror.Error
	seen := map[string]bool{}
	var formals []string
	for _, f := range d.Children {
		if f.Kind != syntax.SymbolicAtom {
			result = multierror.Append(result, newError(f.Pos, "lambda: formal must be an identifier"))
			continue
		}
		if seen[f.Text] {
			result = multierror.Append(result, newError(f.Pos, "lambda: duplicate parameter %q", f.Text))
			continue
		}
		seen[f.Text] = true
		formals = append(formals, f.Text)
	}
	if result != nil {
		return nil, newError(d.Pos, "%s", result.Error())
	}
	return formals, nil
}

// parseImplicitBegin wraps zero or more body forms in a Begin, the same
// node used for an explicit (begin ...); a single form is still wrapped so
// callers have one uniform Node to hold onto.
func parseImplicitBegin(pos syntax.Position, forms []*syntax.Datum, scope *Scope) (ast.Node, error) {
	exprs, err := parseAll(forms, scope)
	if err != nil {
		return nil, err
	}
	return ast.NewBegin(pos, exprs), nil
}

func parseIf(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) != 3 {
		return nil, newError(pos, "if: expected exactly 3 operands, got %d", len(operands))
	}
	cond, err := Parse(operands[0], scope)
	if err != nil {
		return nil, err
	}
	then, err := Parse(operands[1], scope)
	if err != nil {
		return nil, err
	}
	els, err := Parse(operands[2], scope)
	if err != nil {
		return nil, err
	}
	return ast.NewIf(pos, cond, then, els), nil
}

func parseBeginLike(pos syntax.Position, operands []*syntax.Datum, scope *Scope, build func(syntax.Position, []ast.Node) ast.Node) (ast.Node, error) {
	exprs, err := parseAll(operands, scope)
	if err != nil {
		return nil, err
	}
	return build(pos, exprs), nil
}

func parseCond(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	clauses := make([]ast.CondClause, len(operands))
	for i, d := range operands {
		if d.Kind != syntax.List || len(d.Children) == 0 {
			return nil, newError(d.Pos, "cond: each clause must be a non-empty list")
		}
		isElse := d.Children[0].Kind == syntax.SymbolicAtom && d.Children[0].Text == "else"
		if isElse && i != len(operands)-1 {
			return nil, newError(d.Pos, "cond: else clause must be last")
		}

		var test ast.Node
		var rest []*syntax.Datum
		if isElse {
			rest = d.Children[1:]
		} else {
			t, err := Parse(d.Children[0], scope)
			if err != nil {
				return nil, err
			}
			test = t
			rest = d.Children[1:]
		}

		exprs, err := parseAll(rest, scope)
		if err != nil {
			return nil, err
		}
		clauses[i] = ast.CondClause{Else: isElse, Test: test, Exprs: exprs}
	}
	return ast.NewCond(pos, clauses), nil
}

func parseQuote(pos syntax.Position, operands []*syntax.Datum) (ast.Node, error) {
	if len(operands) != 1 {
		return nil, newError(pos, "quote: expected exactly 1 operand, got %d", len(operands))
	}
	return ast.NewQuote(pos, operands[0]), nil
}

func parseDefine(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) != 2 {
		return nil, newError(pos, "define: expected exactly 2 operands, got %d", len(operands))
	}

	target := operands[0]

	if target.Kind == syntax.SymbolicAtom {
		name := target.Text
		if err := checkDefinable(target.Pos, name); err != nil {
			return nil, err
		}
		expr, err := Parse(operands[1], scope.Extend(name))
		if err != nil {
			return nil, err
		}
		return ast.NewDefine(pos, name, expr), nil
	}

	if target.Kind == syntax.List && len(target.Children) >= 1 && target.Children[0].Kind == syntax.SymbolicAtom {
		// (define (f x...) body) desugars to (define f (lambda (x...) body)).
		name := target.Children[0].Text
		if err := checkDefinable(target.Children[0].Pos, name); err != nil {
			return nil, err
		}
		formalsDatum := syntax.NewList(target.Pos, target.Children[1:])
		lambdaExpr, err := parseLambda(pos, []*syntax.Datum{formalsDatum, operands[1]}, scope.Extend(name))
		if err != nil {
			return nil, err
		}
		return ast.NewDefine(pos, name, lambdaExpr), nil
	}

	return nil, newError(pos, "define: malformed target")
}

func checkDefinable(pos syntax.Position, name string) error {
	if isReserved(name) {
		return newError(pos, "define: cannot redefine reserved word %q", name)
	}
	if isPrimitive(name) {
		return newError(pos, "define: cannot redefine primitive %q", name)
	}
	return nil
}

func parseSet(pos syntax.Position, operands []*syntax.Datum, scope *Scope) (ast.Node, error) {
	if len(operands) != 2 {
		return nil, newError(pos, "set!: expected exactly 2 operands, got %d", len(operands))
	}
	if operands[0].Kind != syntax.SymbolicAtom {
		return nil, newError(operands[0].Pos, "set!: target must be an identifier")
	}
	name := operands[0].Text
	if err := checkDefinable(operands[0].Pos, name); err != nil {
		return nil, err
	}
	expr, err := Parse(operands[1], scope)
	if err != nil {
		return nil, err
	}
	return ast.NewSet(pos, name, expr), nil
}
