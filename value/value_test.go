package value

import "testing"

func TestRationalReducesAndNormalizesSign(t *testing.T) {
	v := NewRational(-4, -8)
	n, d := v.Rat()
	if n != 1 || d != 2 {
		t.Fatalf("want 1/2, got %d/%d", n, d)
	}

	v = NewRational(3, -6)
	n, d = v.Rat()
	if n != -1 || d != 2 {
		t.Fatalf("want -1/2, got %d/%d", n, d)
	}
}

func TestBooleanSingletons(t *testing.T) {
	if NewBoolean(true) != NewBoolean(true) {
		t.Fatal("#t should be a shared singleton")
	}
	if NewBoolean(false) != NewBoolean(false) {
		t.Fatal("#f should be a shared singleton")
	}
}

func TestPairIdentity(t *testing.T) {
	a := NewPair(NewInteger(1), Nil())
	b := NewPair(NewInteger(1), Nil())
	if a == b {
		t.Fatal("distinct NewPair calls must not be eq?")
	}
	if a != a {
		t.Fatal("a pair must be eq? to itself")
	}
}

func TestMutation(t *testing.T) {
	p := NewPair(NewInteger(1), NewInteger(2))
	p.SetCar(NewInteger(9))
	if p.Car().Int() != 9 {
		t.Fatalf("SetCar did not take effect")
	}
	p.SetCdr(Nil())
	if p.Cdr().Kind() != Null {
		t.Fatalf("SetCdr did not take effect")
	}
}

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    *Value
		want bool
	}{
		{NewBoolean(false), false},
		{NewBoolean(true), true},
		{NewInteger(0), true},
		{Nil(), true},
		{VoidValue(), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("IsTruthy(%s) = %v, want %v", Show(c.v, true), got, c.want)
		}
	}
}

func TestShowPrinter(t *testing.T) {
	cases := []struct {
		v    *Value
		quot bool
		want string
	}{
		{NewInteger(-5), true, "-5"},
		{NewRational(3, 2), true, "3/2"},
		{NewBoolean(true), true, "#t"},
		{NewString("hi"), true, `"hi"`},
		{NewString("hi"), false, "hi"},
		{Nil(), true, "()"},
		{NewPair(NewInteger(1), NewPair(NewInteger(2), Nil())), true, "(1 2)"},
		{NewPair(NewInteger(1), NewInteger(2)), true, "(1 . 2)"},
	}
	for _, c := range cases {
		if got := Show(c.v, c.quot); got != c.want {
			t.Errorf("Show(...) = %q, want %q", got, c.want)
		}
	}
}

func TestShowGuardsCycles(t *testing.T) {
	p := NewPair(NewInteger(1), Nil())
	p.SetCdr(p)
	// Must terminate rather than loop forever.
	got := Show(p, true)
	if got == "" {
		t.Fatal("expected non-empty output for a cyclic pair")
	}
}
