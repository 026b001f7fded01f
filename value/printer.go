package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Show renders v as a single line of text, with no trailing newline.
// quoteStrings controls whether String values are wrapped in double quotes
// (the REPL's printed-result rule) or left bare (display's rule).
func Show(v *Value, quoteStrings bool) string {
	var b strings.Builder
	show(&b, v, quoteStrings, newCycleGuard())
	return b.String()
}

// cycleGuard bounds list traversal so that a cyclic pair structure built via
// set-cdr! cannot hang the printer; it uses the same tortoise/hare idea as
// list? (see eval's pair predicates) rather than an unbounded visited-set,
// so printing a long-but-acyclic list stays cheap.
type cycleGuard struct {
	slow, fast *Value
	advance    bool
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{}
}

// step advances the guard by one cdr and reports whether a cycle was
// detected ending at cur.
func (g *cycleGuard) step(cur *Value) bool {
	if g.fast == nil {
		g.slow, g.fast = cur, cur
		return false
	}
	if g.advance {
		g.slow = g.slow.cdr
	}
	g.advance = !g.advance
	g.fast = cur
	return g.slow == g.fast && g.slow != nil
}

func show(b *strings.Builder, v *Value, quoteStrings bool, g *cycleGuard) {
	switch v.kind {
	case Integer:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case Rational:
		b.WriteString(strconv.FormatInt(v.num, 10))
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(v.den, 10))
	case Boolean:
		if v.b {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case Symbol:
		b.WriteString(v.s)
	case String:
		if quoteStrings {
			b.WriteString(strconv.Quote(v.s))
		} else {
			b.WriteString(v.s)
		}
	case Null:
		b.WriteString("()")
	case Pair:
		showPair(b, v, quoteStrings)
	case Procedure:
		if v.IsClosure() {
			b.WriteString("#<procedure>")
		} else {
			fmt.Fprintf(b, "#<primitive:%s>", v.name)
		}
	case Void:
		b.WriteString("#<void>")
	case Terminate:
		b.WriteString("#<terminate>")
	}
}

func showPair(b *strings.Builder, v *Value, quoteStrings bool) {
	b.WriteByte('(')
	g := newCycleGuard()
	cur := v
	first := true
	for {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		show(b, cur.car, quoteStrings, nil)

		next := cur.cdr
		switch next.kind {
		case Null:
			b.WriteByte(')')
			return
		case Pair:
			if g.step(next) {
				b.WriteString(" ...)")
				return
			}
			cur = next
		default:
			b.WriteString(" . ")
			show(b, next, quoteStrings, nil)
			b.WriteByte(')')
			return
		}
	}
}
