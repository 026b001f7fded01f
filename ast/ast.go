// Package ast defines the parsed abstract syntax tree: the typed nodes the
// evaluator walks, as opposed to the untyped Datum tree the reader produces.
package ast

import "github.com/tinylisp/scm/syntax"

// Op identifies a primitive operator recognized by PrimApp.
type Op int

// Known primitive operators.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpQuotient
	OpModulo
	OpExpt
	OpLt
	OpLe
	OpNumEq
	OpGe
	OpGt
	OpCons
	OpCar
	OpCdr
	OpSetCar
	OpSetCdr
	OpList
	OpPairP
	OpNullP
	OpListP
	OpProcedureP
	OpBooleanP
	OpSymbolP
	OpStringP
	OpNumberP
	OpEqP
	OpNot
	OpDisplay
	OpVoid
	OpExit
)

var opNames = map[Op]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpQuotient: "quotient", OpModulo: "modulo", OpExpt: "expt",
	OpLt: "<", OpLe: "<=", OpNumEq: "=", OpGe: ">=", OpGt: ">",
	OpCons: "cons", OpCar: "car", OpCdr: "cdr",
	OpSetCar: "set-car!", OpSetCdr: "set-cdr!", OpList: "list",
	OpPairP: "pair?", OpNullP: "null?", OpListP: "list?",
	OpProcedureP: "procedure?", OpBooleanP: "boolean?", OpSymbolP: "symbol?",
	OpStringP: "string?", OpNumberP: "number?", OpEqP: "eq?",
	OpNot: "not", OpDisplay: "display", OpVoid: "void", OpExit: "exit",
}

func (op Op) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "?op"
}

// Node is the common interface implemented by every AST node. It exists
// purely so the evaluator can type-switch over concrete node kinds; there
// is no virtual Eval method on Node itself (evaluation lives in package
// eval, to keep ast free of any dependency on the value/env packages).
type Node interface {
	Position() syntax.Position
	node()
}

type base struct {
	Pos syntax.Position
}

func (b base) Position() syntax.Position { return b.Pos }
func (base) node()                       {}

// Int is an integer literal.
type Int struct {
	base
	Value int64
}

// Str is a string literal.
type Str struct {
	base
	Value string
}

// Bool is a #t/#f literal.
type Bool struct {
	base
	Value bool
}

// Var is a reference to a bound name.
type Var struct {
	base
	Name string
}

// Quote holds a raw datum to be converted to a value structurally at
// evaluation time.
type Quote struct {
	base
	Form *syntax.Datum
}

// If is the three-armed conditional.
type If struct {
	base
	Cond, Then, Else Node
}

// Begin evaluates each expression in order, returning the last.
type Begin struct {
	base
	Exprs []Node
}

// And short-circuits on the first false value.
type And struct {
	base
	Exprs []Node
}

// Or short-circuits on the first true value.
type Or struct {
	base
	Exprs []Node
}

// CondClause is one (test expr...) clause of a Cond.
type CondClause struct {
	Else  bool
	Test  Node // nil when Else is true
	Exprs []Node
}

// Cond is the multi-branch conditional.
type Cond struct {
	base
	Clauses []CondClause
}

// Lambda builds a closure over formals/body when evaluated.
type Lambda struct {
	base
	Formals []string
	Body    Node
}

// Apply calls Rator with the evaluated Rands.
type Apply struct {
	base
	Rator Node
	Rands []Node
}

// Binding is one (name expr) pair in a Let or Letrec.
type Binding struct {
	Name string
	Expr Node
}

// Let evaluates all bindings under the outer scope, then the body under a
// single new frame holding all of them at once.
type Let struct {
	base
	Bindings []Binding
	Body     Node
}

// Letrec reserves all binding names as placeholders, evaluates each
// right-hand side under that extended scope, then evaluates the body.
type Letrec struct {
	base
	Bindings []Binding
	Body     Node
}

// Define binds Name to Expr's value in the enclosing environment.
type Define struct {
	base
	Name string
	Expr Node
}

// Set mutates an existing binding.
type Set struct {
	base
	Name string
	Expr Node
}

// PrimApp applies a built-in operator to already-shape-checked arguments.
type PrimApp struct {
	base
	Op   Op
	Args []Node
}

// Constructors. The parser builds nodes exclusively through these, since
// base is unexported and cannot be named from outside this package.

func NewInt(pos syntax.Position, v int64) *Int   { return &Int{base{pos}, v} }
func NewStr(pos syntax.Position, v string) *Str  { return &Str{base{pos}, v} }
func NewBool(pos syntax.Position, v bool) *Bool  { return &Bool{base{pos}, v} }
func NewVar(pos syntax.Position, name string) *Var { return &Var{base{pos}, name} }
func NewQuote(pos syntax.Position, form *syntax.Datum) *Quote {
	return &Quote{base{pos}, form}
}
func NewIf(pos syntax.Position, cond, then, els Node) *If {
	return &If{base{pos}, cond, then, els}
}
func NewBegin(pos syntax.Position, exprs []Node) *Begin { return &Begin{base{pos}, exprs} }
func NewAnd(pos syntax.Position, exprs []Node) *And     { return &And{base{pos}, exprs} }
func NewOr(pos syntax.Position, exprs []Node) *Or       { return &Or{base{pos}, exprs} }
func NewCond(pos syntax.Position, clauses []CondClause) *Cond {
	return &Cond{base{pos}, clauses}
}
func NewLambda(pos syntax.Position, formals []string, body Node) *Lambda {
	return &Lambda{base{pos}, formals, body}
}
func NewApply(pos syntax.Position, rator Node, rands []Node) *Apply {
	return &Apply{base{pos}, rator, rands}
}
func NewLet(pos syntax.Position, bindings []Binding, body Node) *Let {
	return &Let{base{pos}, bindings, body}
}
func NewLetrec(pos syntax.Position, bindings []Binding, body Node) *Letrec {
	return &Letrec{base{pos}, bindings, body}
}
func NewDefine(pos syntax.Position, name string, expr Node) *Define {
	return &Define{base{pos}, name, expr}
}
func NewSet(pos syntax.Position, name string, expr Node) *Set {
	return &Set{base{pos}, name, expr}
}
func NewPrimApp(pos syntax.Position, op Op, args []Node) *PrimApp {
	return &PrimApp{base{pos}, op, args}
}
