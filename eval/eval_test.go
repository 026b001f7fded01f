package eval

import (
	"strings"
	"testing"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/env"
	"github.com/tinylisp/scm/parser"
	"github.com/tinylisp/scm/syntax"
	"github.com/tinylisp/scm/value"
)

// runProgram evaluates a sequence of top-level forms against one growing
// global environment, grouping any leading or consecutive top-level defines
// with BindGroup exactly as the REPL driver does (package repl), and
// returns the value of the last non-define form.
func runProgram(t *testing.T, src string) (*value.Value, error) {
	t.Helper()
	rd, err := syntax.NewReader(strings.NewReader(src), "<test>")
	if err != nil {
		t.Fatalf("reader: %v", err)
	}

	e := env.Empty()
	scope := parser.NewScope()

	var pending []ast.Binding
	var result *value.Value

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		inner, err := BindGroup(e, pending)
		if err != nil {
			return err
		}
		e = inner
		pending = nil
		return nil
	}

	for {
		d, err := rd.Read()
		if err != nil {
			break
		}
		node, err := parser.Parse(d, scope)
		if err != nil {
			return nil, err
		}
		if def, ok := node.(*ast.Define); ok {
			pending = append(pending, ast.Binding{Name: def.Name, Expr: def.Expr})
			scope = scope.Extend(def.Name)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		v, err := Eval(node, e)
		if err != nil {
			return nil, err
		}
		result = v
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

func TestArithmeticVariadicArities(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"(+ 1 2 3 4)", 10},
		{"(+)", 0},
		{"(- 5)", -5},
		{"(- 10 3 2)", 5},
		{"(*)", 1},
		{"(* 2 3 4)", 24},
	}
	for _, c := range cases {
		v, err := runProgram(t, c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		if v.Int() != c.want {
			t.Errorf("%s = %d, want %d", c.src, v.Int(), c.want)
		}
	}
}

func TestQuotientModuloSignSemantics(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"(quotient 7 2)", 3},
		{"(quotient -7 2)", -3},
		{"(modulo 7 2)", 1},
		{"(modulo -7 2)", 1},
		{"(modulo 7 -2)", -1},
	}
	for _, c := range cases {
		v, err := runProgram(t, c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		if v.Int() != c.want {
			t.Errorf("%s = %d, want %d", c.src, v.Int(), c.want)
		}
	}
}

func TestFactorialViaDefine(t *testing.T) {
	v, err := runProgram(t, `
		(define (fact n)
		  (if (= n 0) 1 (* n (fact (- n 1)))))
		(fact 6)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 720 {
		t.Fatalf("(fact 6) = %d, want 720", v.Int())
	}
}

func TestMutualRecursionViaLetrec(t *testing.T) {
	v, err := runProgram(t, `
		(letrec ((even? (lambda (n) (if (= n 0) #t (odd? (- n 1)))))
		         (odd?  (lambda (n) (if (= n 0) #f (even? (- n 1))))))
		  (even? 10))
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool() {
		t.Fatalf("(even? 10) = %v, want #t", v.Bool())
	}
}

func TestPairMutationViaSetCar(t *testing.T) {
	v, err := runProgram(t, `
		(define p (cons 1 2))
		(set-car! p 99)
		(car p)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 99 {
		t.Fatalf("(car p) = %d, want 99", v.Int())
	}
}

func TestCyclicListIsNotAProperList(t *testing.T) {
	v, err := runProgram(t, `
		(define p (list 1 2 3))
		(set-cdr! (cdr (cdr p)) p)
		(list? p)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsTruthy() {
		t.Fatal("a self-referential list must not be reported as a proper list")
	}
}

func TestCondElseAndDottedQuotePrinting(t *testing.T) {
	v, err := runProgram(t, `
		(cond (#f 1) (else '(1 . 2)))
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := value.Show(v, true); got != "(1 . 2)" {
		t.Fatalf("Show(...) = %q, want \"(1 . 2)\"", got)
	}
}

func TestClosureCapturesCellNotValue(t *testing.T) {
	v, err := runProgram(t, `
		(define counter 0)
		(define (bump) (begin (set! counter (+ counter 1)) counter))
		(bump)
		(bump)
		(bump)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 3 {
		t.Fatalf("third (bump) = %d, want 3", v.Int())
	}
}

func TestPrimitiveReificationAsValue(t *testing.T) {
	v, err := runProgram(t, `
		(define plus +)
		(plus 1 2 3)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 6 {
		t.Fatalf("(plus 1 2 3) = %d, want 6", v.Int())
	}
}

func TestApplyingNonProcedureIsAnError(t *testing.T) {
	if _, err := runProgram(t, "(1 2 3)"); err == nil {
		t.Fatal("applying an integer should be a runtime error")
	}
}

func TestSetOfUnboundNameIsAnError(t *testing.T) {
	if _, err := runProgram(t, "(set! nope 1)"); err == nil {
		t.Fatal("set! of an unbound name should be a runtime error")
	}
}

func TestBeginReturnsVoidFromTrailingVoidCall(t *testing.T) {
	v, err := runProgram(t, "(begin (void))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.Void {
		t.Fatalf("expected Void, got %s", v.Kind())
	}
}
