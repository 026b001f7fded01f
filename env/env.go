// Package env implements the interpreter's lexical environment: a
// persistent chain of frames, each binding names to heap-allocated,
// shared, mutable cells. Extension never copies an existing frame.
package env

import (
	"github.com/pkg/errors"

	"github.com/tinylisp/scm/value"
)

// cell is a single heap-allocated binding slot. A cell may be a
// placeholder, reserved by letrec/define before its right-hand side has
// been evaluated; dereferencing a placeholder is the caller's job to
// detect via IsPlaceholder.
type cell struct {
	value       *value.Value
	placeholder bool
}

// frame binds zero or more names to cells, and links to its parent.
type frame struct {
	bindings map[string]*cell
	parent   *frame
}

// Env is a lexical environment: an immutable handle onto a frame chain.
// Copying an Env copies only the handle; the chain itself is shared.
type Env struct {
	f *frame
}

// Empty returns the root environment, with no bindings.
func Empty() *Env {
	return &Env{f: &frame{bindings: map[string]*cell{}}}
}

// Extend returns a new environment whose newest frame binds name to value,
// in front of env.
func Extend(name string, v *value.Value, env *Env) *Env {
	return &Env{f: &frame{
		bindings: map[string]*cell{name: {value: v}},
		parent:   env.f,
	}}
}

// ExtendPlaceholder is like Extend, but reserves the cell without giving it
// a value yet. Letrec and internal-define groups reserve their names
// through ExtendManyPlaceholders instead.
func ExtendPlaceholder(name string, env *Env) *Env {
	return &Env{f: &frame{
		bindings: map[string]*cell{name: {placeholder: true}},
		parent:   env.f,
	}}
}

// ExtendMany returns a new environment whose newest frame binds every
// (names[i], values[i]) pair simultaneously. Used by let and procedure
// application, where no binding may observe another's value through
// sequential extension.
func ExtendMany(names []string, values []*value.Value, env *Env) *Env {
	bindings := make(map[string]*cell, len(names))
	for i, n := range names {
		bindings[n] = &cell{value: values[i]}
	}
	return &Env{f: &frame{bindings: bindings, parent: env.f}}
}

// ExtendManyPlaceholders is like ExtendMany but reserves every name as a
// placeholder, for use by letrec before any right-hand side is evaluated.
func ExtendManyPlaceholders(names []string, env *Env) *Env {
	bindings := make(map[string]*cell, len(names))
	for _, n := range names {
		bindings[n] = &cell{placeholder: true}
	}
	return &Env{f: &frame{bindings: bindings, parent: env.f}}
}

// lookup walks the frame chain from newest to oldest and returns the cell
// bound to name, or nil if absent.
func (e *Env) lookup(name string) *cell {
	for f := e.f; f != nil; f = f.parent {
		if c, ok := f.bindings[name]; ok {
			return c
		}
	}
	return nil
}

// Find returns the value bound to name and true, or (nil, false) if the
// name is absent from every frame. A placeholder cell is reported present
// but its value is nil; callers must check IsPlaceholder separately.
func (e *Env) Find(name string) (*value.Value, bool) {
	c := e.lookup(name)
	if c == nil {
		return nil, false
	}
	return c.value, true
}

// IsPlaceholder reports whether name is bound but not yet assigned.
func (e *Env) IsPlaceholder(name string) bool {
	c := e.lookup(name)
	return c != nil && c.placeholder
}

// Modify mutates the cell of the innermost frame binding name. Returns an
// error if no such binding exists; callers that must not fail on an absent
// name should call Find first.
func (e *Env) Modify(name string, v *value.Value) error {
	c := e.lookup(name)
	if c == nil {
		return errors.Errorf("set!: unbound variable %q", name)
	}
	c.value = v
	c.placeholder = false
	return nil
}

// Bound reports whether name is bound anywhere in the chain.
func (e *Env) Bound(name string) bool {
	return e.lookup(name) != nil
}
