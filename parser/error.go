package parser

import (
	"fmt"

	"github.com/tinylisp/scm/syntax"
)

// Error is a parse error with source context.
type Error struct {
	Pos syntax.Position
	Msg string
}

func newError(pos syntax.Position, f string, argv ...interface{}) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(f, argv...)}
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}
