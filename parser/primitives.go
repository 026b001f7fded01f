package parser

import "github.com/tinylisp/scm/ast"

// arityRule describes how many operands a primitive accepts.
type arityRule struct {
	min     int
	max     int // -1 means unbounded.
	variant string
}

// primitives maps every reserved primitive name to its Op tag and arity
// rule. Reserved words (let, if, ...) are handled separately in parser.go,
// since they shape their operands rather than merely counting them.
var primitives = map[string]struct {
	op    ast.Op
	arity arityRule
}{
	"+":        {ast.OpAdd, arityRule{0, -1, "variadic"}},
	"-":        {ast.OpSub, arityRule{1, -1, "variadic"}},
	"*":        {ast.OpMul, arityRule{0, -1, "variadic"}},
	"/":        {ast.OpDiv, arityRule{1, -1, "variadic"}},
	"quotient":  {ast.OpQuotient, arityRule{2, 2, "fixed"}},
	"modulo":    {ast.OpModulo, arityRule{2, 2, "fixed"}},
	"expt":      {ast.OpExpt, arityRule{2, 2, "fixed"}},
	"<":         {ast.OpLt, arityRule{2, -1, "chain"}},
	"<=":        {ast.OpLe, arityRule{2, -1, "chain"}},
	"=":         {ast.OpNumEq, arityRule{2, -1, "chain"}},
	">=":        {ast.OpGe, arityRule{2, -1, "chain"}},
	">":         {ast.OpGt, arityRule{2, -1, "chain"}},
	"cons":      {ast.OpCons, arityRule{2, 2, "fixed"}},
	"car":       {ast.OpCar, arityRule{1, 1, "fixed"}},
	"cdr":       {ast.OpCdr, arityRule{1, 1, "fixed"}},
	"set-car!":  {ast.OpSetCar, arityRule{2, 2, "fixed"}},
	"set-cdr!":  {ast.OpSetCdr, arityRule{2, 2, "fixed"}},
	"list":      {ast.OpList, arityRule{0, -1, "variadic"}},
	"pair?":     {ast.OpPairP, arityRule{1, 1, "fixed"}},
	"null?":     {ast.OpNullP, arityRule{1, 1, "fixed"}},
	"list?":     {ast.OpListP, arityRule{1, 1, "fixed"}},
	"procedure?": {ast.OpProcedureP, arityRule{1, 1, "fixed"}},
	"boolean?":  {ast.OpBooleanP, arityRule{1, 1, "fixed"}},
	"symbol?":   {ast.OpSymbolP, arityRule{1, 1, "fixed"}},
	"string?":   {ast.OpStringP, arityRule{1, 1, "fixed"}},
	"number?":   {ast.OpNumberP, arityRule{1, 1, "fixed"}},
	"eq?":       {ast.OpEqP, arityRule{2, 2, "fixed"}},
	"not":       {ast.OpNot, arityRule{1, 1, "fixed"}},
	"display":   {ast.OpDisplay, arityRule{1, 1, "fixed"}},
	"void":      {ast.OpVoid, arityRule{0, 0, "fixed"}},
	"exit":      {ast.OpExit, arityRule{0, 0, "fixed"}},
}

// reservedWords names every special form the parser recognizes directly,
// plus "else", which is only meaningful as the head of a cond clause but
// may never be used as an application operator or a binder name.
var reservedWords = map[string]bool{
	"let": true, "letrec": true, "lambda": true, "if": true,
	"begin": true, "and": true, "or": true, "cond": true,
	"quote": true, "define": true, "set!": true, "else": true,
}

// isPrimitive reports whether name is a built-in operator.
func isPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

// PrimitiveOp reports the Op tag a primitive name resolves to, for use by
// package eval when reifying a bare primitive name referenced as a value
// (§9, Primitive reification).
func PrimitiveOp(name string) (ast.Op, bool) {
	p, ok := primitives[name]
	if !ok {
		return 0, false
	}
	return p.op, true
}

// isReserved reports whether name is a reserved word.
func isReserved(name string) bool {
	return reservedWords[name]
}
