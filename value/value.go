// Package value defines the runtime value domain of the interpreter: the
// tagged variants every expression reduces to, plus the printer that turns
// them back into source-like text.
package value

import (
	"github.com/google/uuid"
)

// Kind identifies which variant a Value holds.
type Kind int

// Known value kinds.
const (
	Integer Kind = iota
	Rational
	Boolean
	Symbol
	String
	Null
	Pair
	Procedure
	Void
	Terminate
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Rational:
		return "rational"
	case Boolean:
		return "boolean"
	case Symbol:
		return "symbol"
	case String:
		return "string"
	case Null:
		return "null"
	case Pair:
		return "pair"
	case Procedure:
		return "procedure"
	case Void:
		return "void"
	case Terminate:
		return "terminate"
	}
	return "unknown"
}

// Native is the signature of a primitive's implementation: it receives its
// already-evaluated arguments and returns a result or an error.
type Native func(args []*Value) (*Value, error)

// Value is a single, possibly-shared, runtime value cell. Pairs and
// procedures retain identity across the program: two Values of kind Pair
// are eq? iff they are the same *Value.
type Value struct {
	kind Kind

	// Integer
	i int64

	// Rational: num/den, den > 0, gcd(|num|, den) = 1.
	num, den int64

	// Boolean
	b bool

	// Symbol, String
	s string

	// Pair
	car, cdr *Value

	// Procedure
	formals []string
	body    interface{} // ast.Node, opaque here; see eval.Apply.
	env     interface{} // *env.Env, opaque here to avoid an import cycle; see eval.Apply.
	native  Native
	name    string // primitive name, or "" for a closure.

	tag string // opaque diagnostic identity tag, never used for eq?.
}

// Singletons for the nullary variants.
var (
	nullValue      = &Value{kind: Null, tag: newTag()}
	voidValue      = &Value{kind: Void, tag: newTag()}
	terminateValue = &Value{kind: Terminate, tag: newTag()}
	trueValue      = &Value{kind: Boolean, b: true, tag: newTag()}
	falseValue     = &Value{kind: Boolean, b: false, tag: newTag()}
)

func newTag() string {
	id := uuid.New()
	return id.String()[:8]
}

// NewInteger wraps n as an Integer value.
func NewInteger(n int64) *Value {
	return &Value{kind: Integer, i: n, tag: newTag()}
}

// NewRational builds a Rational value, normalizing the sign onto the
// numerator and reducing by gcd. Panics if den is zero; callers must check
// for division by zero before constructing a Rational.
func NewRational(num, den int64) *Value {
	if den == 0 {
		panic("value: NewRational with zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs(num), den); g > 1 {
		num, den = num/g, den/g
	}
	return &Value{kind: Rational, num: num, den: den, tag: newTag()}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// NewBoolean returns the shared #t or #f value.
func NewBoolean(b bool) *Value {
	if b {
		return trueValue
	}
	return falseValue
}

// NewSymbol wraps name as a Symbol value.
func NewSymbol(name string) *Value {
	return &Value{kind: Symbol, s: name, tag: newTag()}
}

// NewString wraps s as a String value.
func NewString(s string) *Value {
	return &Value{kind: String, s: s, tag: newTag()}
}

// Nil is the unique empty-list value.
func Nil() *Value { return nullValue }

// VoidValue is the unique unit value.
func VoidValue() *Value { return voidValue }

// TerminateValue is the sentinel returned by (exit).
func TerminateValue() *Value { return terminateValue }

// NewPair allocates a new, mutable Pair cell.
func NewPair(car, cdr *Value) *Value {
	return &Value{kind: Pair, car: car, cdr: cdr, tag: newTag()}
}

// NewPrimitive wraps a native Go function as a first-class Procedure value,
// indistinguishable from a user-defined closure under Kind() or Procedure?.
func NewPrimitive(name string, fn Native) *Value {
	return &Value{kind: Procedure, native: fn, name: name, tag: newTag()}
}

// NewClosure builds a user-defined Procedure value. body and capturedEnv are
// opaque (ast.Node and *env.Env respectively) to avoid an import cycle
// between value, ast and env; the eval package casts them back on use.
func NewClosure(formals []string, body, capturedEnv interface{}) *Value {
	return &Value{
		kind:    Procedure,
		formals: formals,
		body:    body,
		env:     capturedEnv,
		tag:     newTag(),
	}
}

// Kind returns the variant tag of v.
func (v *Value) Kind() Kind { return v.kind }

// Tag returns the opaque diagnostic identity tag. Never use this for eq?;
// cell identity is the Go pointer itself.
func (v *Value) Tag() string { return v.tag }

// Int returns the integer payload; only valid when Kind() == Integer.
func (v *Value) Int() int64 { return v.i }

// Rat returns the numerator and denominator; only valid when Kind() == Rational.
func (v *Value) Rat() (int64, int64) { return v.num, v.den }

// Bool returns the boolean payload; only valid when Kind() == Boolean.
func (v *Value) Bool() bool { return v.b }

// Str returns the symbol name or string contents.
func (v *Value) Str() string { return v.s }

// Car returns the head of a Pair.
func (v *Value) Car() *Value { return v.car }

// Cdr returns the tail of a Pair.
func (v *Value) Cdr() *Value { return v.cdr }

// SetCar mutates the head of a Pair.
func (v *Value) SetCar(x *Value) { v.car = x }

// SetCdr mutates the tail of a Pair.
func (v *Value) SetCdr(x *Value) { v.cdr = x }

// IsClosure reports whether this Procedure was built from user source
// rather than wrapping a Native.
func (v *Value) IsClosure() bool { return v.kind == Procedure && v.native == nil }

// Formals returns a closure's parameter names.
func (v *Value) Formals() []string { return v.formals }

// Body returns the opaque ast.Node captured at closure-creation time.
func (v *Value) Body() interface{} { return v.body }

// Env returns the opaque *env.Env captured at closure-creation time.
func (v *Value) Env() interface{} { return v.env }

// Native returns the wrapped Go function, or nil for a closure.
func (v *Value) Native() Native { return v.native }

// Name returns a primitive's name, or "" for a closure.
func (v *Value) Name() string { return v.name }

// IsTruthy implements Scheme's truthiness rule: only #f is false.
func (v *Value) IsTruthy() bool {
	return v.kind != Boolean || v.b
}
