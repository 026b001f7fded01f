package eval

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/tinylisp/scm/ast"
	"github.com/tinylisp/scm/value"
)

// Output is where the display primitive writes. Tests may swap it out for
// a buffer; the REPL leaves it at its default of os.Stdout.
var Output io.Writer = os.Stdout

// nativeFor returns the Native implementation backing a primitive Op. Both
// direct PrimApp dispatch and reification of a bare primitive name (§9) go
// through this single table, so a reified primitive and its PrimApp form
// always behave identically.
func nativeFor(op ast.Op) value.Native {
	if fn, ok := primNatives[op]; ok {
		return fn
	}
	return func([]*value.Value) (*value.Value, error) {
		return nil, errors.Errorf("internal error: no implementation for operator %s", op)
	}
}

var primNatives = map[ast.Op]value.Native{
	ast.OpAdd:      primAdd,
	ast.OpSub:      primSub,
	ast.OpMul:      primMul,
	ast.OpDiv:      primDiv,
	ast.OpQuotient: primQuotient,
	ast.OpModulo:   primModulo,
	ast.OpExpt:     primExpt,
	ast.OpLt:       primLt,
	ast.OpLe:       primLe,
	ast.OpNumEq:    primNumEq,
	ast.OpGe:       primGe,
	ast.OpGt:       primGt,

	ast.OpCons:    primCons,
	ast.OpCar:     primCar,
	ast.OpCdr:     primCdr,
	ast.OpSetCar:  primSetCar,
	ast.OpSetCdr:  primSetCdr,
	ast.OpList:    primList,
	ast.OpPairP:   primPairP,
	ast.OpNullP:   primNullP,
	ast.OpListP:   primListP,

	ast.OpProcedureP: primProcedureP,
	ast.OpBooleanP:   primBooleanP,
	ast.OpSymbolP:    primSymbolP,
	ast.OpStringP:    primStringP,
	ast.OpNumberP:    primNumberP,
	ast.OpEqP:        primEqP,
	ast.OpNot:        primNot,

	ast.OpDisplay: primDisplay,
	ast.OpVoid:    primVoid,
	ast.OpExit:    primExit,
}

func arityExact(op string, args []*value.Value, n int) error {
	if len(args) != n {
		return errors.Errorf("%s: expected exactly %d argument(s), got %d", op, n, len(args))
	}
	return nil
}

func requirePair(op string, v *value.Value) error {
	if v.Kind() != value.Pair {
		return errors.Errorf("%s: expected a pair, got %s", op, v.Kind())
	}
	return nil
}

func primCons(args []*value.Value) (*value.Value, error) {
	if err := arityExact("cons", args, 2); err != nil {
		return nil, err
	}
	return value.NewPair(args[0], args[1]), nil
}

func primCar(args []*value.Value) (*value.Value, error) {
	if err := arityExact("car", args, 1); err != nil {
		return nil, err
	}
	if err := requirePair("car", args[0]); err != nil {
		return nil, err
	}
	return args[0].Car(), nil
}

func primCdr(args []*value.Value) (*value.Value, error) {
	if err := arityExact("cdr", args, 1); err != nil {
		return nil, err
	}
	if err := requirePair("cdr", args[0]); err != nil {
		return nil, err
	}
	return args[0].Cdr(), nil
}

func primSetCar(args []*value.Value) (*value.Value, error) {
	if err := arityExact("set-car!", args, 2); err != nil {
		return nil, err
	}
	if err := requirePair("set-car!", args[0]); err != nil {
		return nil, err
	}
	args[0].SetCar(args[1])
	return value.VoidValue(), nil
}

func primSetCdr(args []*value.Value) (*value.Value, error) {
	if err := arityExact("set-cdr!", args, 2); err != nil {
		return nil, err
	}
	if err := requirePair("set-cdr!", args[0]); err != nil {
		return nil, err
	}
	args[0].SetCdr(args[1])
	return value.VoidValue(), nil
}

// primList right-folds cons onto Null, per §4.E.1.
func primList(args []*value.Value) (*value.Value, error) {
	result := value.Nil()
	for i := len(args) - 1; i >= 0; i-- {
		result = value.NewPair(args[i], result)
	}
	return result, nil
}

func primPairP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("pair?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.Pair), nil
}

func primNullP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("null?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.Null), nil
}

// primListP detects proper lists via Floyd's tortoise-and-hare, so a cyclic
// structure introduced by set-cdr! reports #f instead of looping forever.
func primListP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("list?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(isProperList(args[0])), nil
}

func isProperList(v *value.Value) bool {
	slow, fast := v, v
	for {
		if fast.Kind() == value.Null {
			return true
		}
		if fast.Kind() != value.Pair {
			return false
		}
		fast = fast.Cdr()

		if fast.Kind() == value.Null {
			return true
		}
		if fast.Kind() != value.Pair {
			return false
		}
		fast = fast.Cdr()

		slow = slow.Cdr()
		if fast == slow {
			return false
		}
	}
}

func primProcedureP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("procedure?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.Procedure), nil
}

func primBooleanP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("boolean?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.Boolean), nil
}

func primSymbolP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("symbol?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.Symbol), nil
}

func primStringP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("string?", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(args[0].Kind() == value.String), nil
}

func primNumberP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("number?", args, 1); err != nil {
		return nil, err
	}
	k := args[0].Kind()
	return value.NewBoolean(k == value.Integer || k == value.Rational), nil
}

// primEqP implements §4.E.1 eq?: identity for pairs and procedures, value
// equality for the atomic kinds it enumerates. A Rational is never eq? to
// anything but itself by pointer, even a reduced Rational(n,1) next to the
// Integer n -- only numeric = treats those as equal.
func primEqP(args []*value.Value) (*value.Value, error) {
	if err := arityExact("eq?", args, 2); err != nil {
		return nil, err
	}
	a, b := args[0], args[1]
	if a == b {
		return value.NewBoolean(true), nil
	}
	if a.Kind() != b.Kind() {
		return value.NewBoolean(false), nil
	}
	switch a.Kind() {
	case value.Integer:
		return value.NewBoolean(a.Int() == b.Int()), nil
	case value.Boolean:
		return value.NewBoolean(a.Bool() == b.Bool()), nil
	case value.Symbol:
		return value.NewBoolean(a.Str() == b.Str()), nil
	case value.Null, value.Void:
		return value.NewBoolean(true), nil
	}
	return value.NewBoolean(false), nil
}

func primNot(args []*value.Value) (*value.Value, error) {
	if err := arityExact("not", args, 1); err != nil {
		return nil, err
	}
	return value.NewBoolean(!args[0].IsTruthy()), nil
}

// primDisplay writes its argument without quotes and without a trailing
// newline, per §4.E.1.
func primDisplay(args []*value.Value) (*value.Value, error) {
	if err := arityExact("display", args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(Output, value.Show(args[0], false))
	return value.VoidValue(), nil
}

func primVoid(args []*value.Value) (*value.Value, error) {
	if err := arityExact("void", args, 0); err != nil {
		return nil, err
	}
	return value.VoidValue(), nil
}

func primExit(args []*value.Value) (*value.Value, error) {
	if err := arityExact("exit", args, 0); err != nil {
		return nil, err
	}
	return value.TerminateValue(), nil
}
