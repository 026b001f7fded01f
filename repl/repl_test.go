package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylisp/scm/syntax"
)

func runSource(t *testing.T, src string) (string, *Driver) {
	t.Helper()
	rd, err := syntax.NewReader(strings.NewReader(src), "<test>")
	require.NoError(t, err)
	var out bytes.Buffer
	d := New(nil, &out)
	require.NoError(t, d.Run(rd, false))
	return out.String(), d
}

func TestBufferedDefinesFlushBeforeSubsequentCall(t *testing.T) {
	require := require.New(t)
	out, d := runSource(t, `
		(define (fact n)
		  (if (= n 0) 1 (* n (fact (- n 1)))))
		(fact 6)
	`)
	require.False(d.Failed(), "output: %q", out)
	require.Equal("720", strings.TrimSpace(out))
}

func TestNonVoidResultsArePrinted(t *testing.T) {
	require := require.New(t)
	out, d := runSource(t, "(+ 1 2)\n(* 3 4)\n")
	require.False(d.Failed(), "output: %q", out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal([]string{"3", "12"}, lines)
}

func TestVoidIsSuppressedExceptForExplicitVoidCall(t *testing.T) {
	require := require.New(t)
	out, d := runSource(t, `
		(define x 1)
		(set! x 2)
		(void)
	`)
	require.False(d.Failed(), "output: %q", out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Lenf(lines, 1, "set! must not print anything, only the trailing (void) call may; got %q", out)
}

func TestErrorDiscardsBufferedDefines(t *testing.T) {
	require := require.New(t)
	out, d := runSource(t, `
		(define x 1)
		(bogus-form
		(+ 1 1)
	`)
	require.True(d.Failed(), "output: %q", out)
	require.Contains(out, "RuntimeError")
}

func TestExitTerminatesTheLoop(t *testing.T) {
	require := require.New(t)
	out, d := runSource(t, "(+ 1 1)\n(exit)\n(+ 99 99)\n")
	require.False(d.Failed(), "output: %q", out)
	require.NotContains(out, "198", "form after (exit) must never run")
	require.Equal("2", strings.TrimSpace(out))
}

func TestStateStringsCoverAllStates(t *testing.T) {
	for s := StateReading; s <= StatePrinting; s++ {
		require.NotEqual(t, "unknown", s.String())
	}
}
