package eval

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tinylisp/scm/value"
)

// asNumber extracts (numerator, denominator) for any numeric value, with
// denominator 1 for a plain Integer.
func asNumber(v *value.Value) (num, den int64, ok bool) {
	switch v.Kind() {
	case value.Integer:
		return v.Int(), 1, true
	case value.Rational:
		n, d := v.Rat()
		return n, d, true
	}
	return 0, 0, false
}

func isRational(v *value.Value) bool { return v.Kind() == value.Rational }

func numeric2(op string, a, b *value.Value) (an, ad, bn, bd int64, err error) {
	an, ad, aok := asNumber(a)
	bn, bd, bok := asNumber(b)
	if !aok || !bok {
		return 0, 0, 0, 0, errors.Errorf("%s: expected numeric operands", op)
	}
	return an, ad, bn, bd, nil
}

func addPair(a, b *value.Value) (*value.Value, error) {
	an, ad, bn, bd, err := numeric2("+", a, b)
	if err != nil {
		return nil, err
	}
	if !isRational(a) && !isRational(b) {
		return value.NewInteger(an + bn), nil
	}
	return value.NewRational(an*bd+bn*ad, ad*bd), nil
}

func subPair(a, b *value.Value) (*value.Value, error) {
	an, ad, bn, bd, err := numeric2("-", a, b)
	if err != nil {
		return nil, err
	}
	if !isRational(a) && !isRational(b) {
		return value.NewInteger(an - bn), nil
	}
	return value.NewRational(an*bd-bn*ad, ad*bd), nil
}

func mulPair(a, b *value.Value) (*value.Value, error) {
	an, ad, bn, bd, err := numeric2("*", a, b)
	if err != nil {
		return nil, err
	}
	if !isRational(a) && !isRational(b) {
		return value.NewInteger(an * bn), nil
	}
	return value.NewRational(an*bn, ad*bd), nil
}

// divPair always yields a Rational, per this implementation's choice never
// to auto-collapse a reduced Rational(n,1) back into an Integer.
func divPair(a, b *value.Value) (*value.Value, error) {
	an, ad, bn, bd, err := numeric2("/", a, b)
	if err != nil {
		return nil, err
	}
	if bn == 0 {
		return nil, errors.New("/: division by zero")
	}
	return value.NewRational(an*bd, ad*bn), nil
}

func primAdd(args []*value.Value) (*value.Value, error) {
	acc := value.NewInteger(0)
	for _, a := range args {
		v, err := addPair(acc, a)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func primSub(args []*value.Value) (*value.Value, error) {
	if len(args) == 0 {
		return nil, errors.New("-: expected at least 1 argument")
	}
	if len(args) == 1 {
		return subPair(value.NewInteger(0), args[0])
	}
	acc := args[0]
	for _, a := range args[1:] {
		v, err := subPair(acc, a)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func primMul(args []*value.Value) (*value.Value, error) {
	acc := value.NewInteger(1)
	for _, a := range args {
		v, err := mulPair(acc, a)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func primDiv(args []*value.Value) (*value.Value, error) {
	if len(args) == 0 {
		return nil, errors.New("/: expected at least 1 argument")
	}
	if len(args) == 1 {
		return divPair(value.NewInteger(1), args[0])
	}
	acc := args[0]
	for _, a := range args[1:] {
		v, err := divPair(acc, a)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

func requireTwoIntegers(op string, args []*value.Value) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, errors.Errorf("%s: expected exactly 2 arguments, got %d", op, len(args))
	}
	if args[0].Kind() != value.Integer || args[1].Kind() != value.Integer {
		return 0, 0, errors.Errorf("%s: expected integer operands", op)
	}
	return args[0].Int(), args[1].Int(), nil
}

func primQuotient(args []*value.Value) (*value.Value, error) {
	a, b, err := requireTwoIntegers("quotient", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, errors.New("quotient: division by zero")
	}
	return value.NewInteger(a / b), nil
}

func primModulo(args []*value.Value) (*value.Value, error) {
	a, b, err := requireTwoIntegers("modulo", args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, errors.New("modulo: division by zero")
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return value.NewInteger(m), nil
}

func primExpt(args []*value.Value) (*value.Value, error) {
	base, exp, err := requireTwoIntegers("expt", args)
	if err != nil {
		return nil, err
	}
	if exp < 0 {
		return nil, errors.New("expt: negative exponent")
	}
	if base == 0 && exp == 0 {
		return nil, errors.New("expt: 0^0 is undefined")
	}

	result := int64(1)
	b := base
	e := exp
	for e > 0 {
		if e&1 == 1 {
			if wouldOverflowMul(result, b) {
				return nil, errors.New("expt: overflow")
			}
			result *= b
		}
		e >>= 1
		if e > 0 {
			if wouldOverflowMul(b, b) {
				return nil, errors.New("expt: overflow")
			}
			b *= b
		}
	}
	return value.NewInteger(result), nil
}

func wouldOverflowMul(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	p := a * b
	return p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64)
}

// compareChain folds a variadic comparison over adjacent pairs using cross
// multiplication (both denominators are always positive by invariant, so
// the comparison direction never needs flipping).
func compareChain(op string, args []*value.Value, ok func(l, r int64) bool) (*value.Value, error) {
	if len(args) < 2 {
		return nil, errors.Errorf("%s: expected at least 2 arguments", op)
	}
	for i := 0; i+1 < len(args); i++ {
		an, ad, aok := asNumber(args[i])
		bn, bd, bok := asNumber(args[i+1])
		if !aok || !bok {
			return nil, errors.Errorf("%s: expected numeric operands", op)
		}
		if !ok(an*bd, bn*ad) {
			return value.NewBoolean(false), nil
		}
	}
	return value.NewBoolean(true), nil
}

func primLt(args []*value.Value) (*value.Value, error) {
	return compareChain("<", args, func(l, r int64) bool { return l < r })
}

func primLe(args []*value.Value) (*value.Value, error) {
	return compareChain("<=", args, func(l, r int64) bool { return l <= r })
}

func primNumEq(args []*value.Value) (*value.Value, error) {
	return compareChain("=", args, func(l, r int64) bool { return l == r })
}

func primGe(args []*value.Value) (*value.Value, error) {
	return compareChain(">=", args, func(l, r int64) bool { return l >= r })
}

func primGt(args []*value.Value) (*value.Value, error) {
	return compareChain(">", args, func(l, r int64) bool { return l > r })
}
