package env

import (
	"testing"

	"github.com/tinylisp/scm/value"
)

func TestExtendAndFind(t *testing.T) {
	e := Empty()
	e = Extend("x", value.NewInteger(1), e)

	v, ok := e.Find("x")
	if !ok || v.Int() != 1 {
		t.Fatalf("expected x=1, got %v, %v", v, ok)
	}

	if _, ok := e.Find("y"); ok {
		t.Fatal("y should be unbound")
	}
}

func TestExtensionDoesNotCopyOuterFrame(t *testing.T) {
	outer := Extend("x", value.NewInteger(1), Empty())
	inner := Extend("y", value.NewInteger(2), outer)

	if _, ok := outer.Find("y"); ok {
		t.Fatal("extending must not leak the new binding back into the outer env")
	}
	if _, ok := inner.Find("x"); !ok {
		t.Fatal("inner env must still see the outer binding")
	}
}

func TestModifyMutatesSharedCell(t *testing.T) {
	outer := Extend("x", value.NewInteger(1), Empty())
	inner := Extend("y", value.NewInteger(2), outer)

	if err := inner.Modify("x", value.NewInteger(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, _ := outer.Find("x")
	if v.Int() != 42 {
		t.Fatalf("mutation through inner env must be visible via outer handle, got %d", v.Int())
	}
}

func TestModifyUnboundIsError(t *testing.T) {
	e := Empty()
	if err := e.Modify("nope", value.NewInteger(1)); err == nil {
		t.Fatal("expected an error modifying an unbound name")
	}
}

func TestPlaceholderObservable(t *testing.T) {
	e := ExtendManyPlaceholders([]string{"f", "g"}, Empty())

	if !e.IsPlaceholder("f") {
		t.Fatal("f should be reported as a placeholder before assignment")
	}

	if err := e.Modify("f", value.NewInteger(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.IsPlaceholder("f") {
		t.Fatal("f should no longer be a placeholder after Modify")
	}
	v, ok := e.Find("f")
	if !ok || v.Int() != 7 {
		t.Fatalf("expected f=7, got %v %v", v, ok)
	}
}

func TestExtendManySimultaneous(t *testing.T) {
	e := ExtendMany([]string{"a", "b"}, []*value.Value{value.NewInteger(1), value.NewInteger(2)}, Empty())

	va, _ := e.Find("a")
	vb, _ := e.Find("b")
	if va.Int() != 1 || vb.Int() != 2 {
		t.Fatalf("expected a=1 b=2, got a=%v b=%v", va, vb)
	}
}

func TestLookupWalksNewestToOldest(t *testing.T) {
	e := Extend("x", value.NewInteger(1), Empty())
	e = Extend("x", value.NewInteger(2), e)

	v, _ := e.Find("x")
	if v.Int() != 2 {
		t.Fatalf("shadowing binding should win, got %d", v.Int())
	}
}
