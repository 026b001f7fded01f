package parser

import (
	"strings"
	"testing"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/syntax"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	rd, err := syntax.NewReader(strings.NewReader(src), "<test>")
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	d, err := rd.Read()
	if err != nil {
		t.Fatalf("read %q: %v", src, err)
	}
	node, err := Parse(d, NewScope())
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return node
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	rd, err := syntax.NewReader(strings.NewReader(src), "<test>")
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	d, err := rd.Read()
	if err != nil {
		t.Fatalf("read %q: %v", src, err)
	}
	_, err = Parse(d, NewScope())
	return err
}

func TestParsePrimitiveApplication(t *testing.T) {
	n := parseOne(t, "(+ 1 2 3)")
	app, ok := n.(*ast.PrimApp)
	if !ok {
		t.Fatalf("expected *ast.PrimApp, got %T", n)
	}
	if app.Op != ast.OpAdd || len(app.Args) != 3 {
		t.Fatalf("unexpected PrimApp: %+v", app)
	}
}

func TestParseVariadicArityRules(t *testing.T) {
	if err := parseErr(t, "(-)"); err == nil {
		t.Fatal("(-) with zero args should be a parse error")
	}
	if _, ok := parseOne(t, "(- 5)").(*ast.PrimApp); !ok {
		t.Fatal("(- 5) should parse")
	}
	if err := parseErr(t, "(< 1)"); err == nil {
		t.Fatal("comparisons require at least 2 arguments")
	}
}

func TestUserBindingShadowsPrimitive(t *testing.T) {
	n := parseOne(t, "(let ((+ 1)) (+ 2))")
	let, ok := n.(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", n)
	}
	body, ok := let.Body.(*ast.Apply)
	if !ok {
		t.Fatalf("shadowed + should parse as Apply(Var), got %T", let.Body)
	}
	if v, ok := body.Rator.(*ast.Var); !ok || v.Name != "+" {
		t.Fatalf("expected Var(+), got %+v", body.Rator)
	}
}

func TestDefineSugarDesugarsToLambda(t *testing.T) {
	n := parseOne(t, "(define (f x y) (+ x y))")
	def, ok := n.(*ast.Define)
	if !ok {
		t.Fatalf("expected *ast.Define, got %T", n)
	}
	if def.Name != "f" {
		t.Fatalf("expected name f, got %s", def.Name)
	}
	if _, ok := def.Expr.(*ast.Lambda); !ok {
		t.Fatalf("expected desugared Lambda, got %T", def.Expr)
	}
}

func TestDefineCannotShadowPrimitive(t *testing.T) {
	if err := parseErr(t, "(define + 1)"); err == nil {
		t.Fatal("redefining + should be a parse error")
	}
}

func TestLambdaRejectsDuplicateFormals(t *testing.T) {
	if err := parseErr(t, "(lambda (x x) x)"); err == nil {
		t.Fatal("duplicate formal names should be a parse error")
	}
}

func TestLetRejectsDuplicateBindings(t *testing.T) {
	if err := parseErr(t, "(let ((x 1) (x 2)) x)"); err == nil {
		t.Fatal("duplicate let bindings should be a parse error")
	}
}

func TestIfRequiresExactlyThreeOperands(t *testing.T) {
	if err := parseErr(t, "(if 1 2)"); err == nil {
		t.Fatal("if with 2 operands should be a parse error")
	}
}

func TestCondElseMustBeLast(t *testing.T) {
	if err := parseErr(t, "(cond (else 1) (#t 2))"); err == nil {
		t.Fatal("else before the last clause should be a parse error")
	}
}

func TestEmptyListIsQuotedNull(t *testing.T) {
	n := parseOne(t, "()")
	q, ok := n.(*ast.Quote)
	if !ok {
		t.Fatalf("expected *ast.Quote for (), got %T", n)
	}
	if !q.Form.Empty() {
		t.Fatalf("expected an empty-list datum")
	}
}

func TestQuoteShorthand(t *testing.T) {
	n := parseOne(t, "'x")
	q, ok := n.(*ast.Quote)
	if !ok {
		t.Fatalf("expected *ast.Quote for 'x, got %T", n)
	}
	if q.Form.Kind != syntax.SymbolicAtom || q.Form.Text != "x" {
		t.Fatalf("expected quoted symbol x, got %+v", q.Form)
	}
}
