package syntax

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// tokenT is a local alias so the fold functions below read naturally.
type tokenT = lexer.Token

// Reader reads successive top-level Datum forms from a character stream.
type Reader struct {
	ts *tokenStream
}

// NewReader creates a Reader over r. file provides source context for
// error messages and positions; it may be empty.
func NewReader(r io.Reader, file string) (*Reader, error) {
	ts, err := newTokenStream(r, file)
	if err != nil {
		return nil, errors.Wrap(err, "syntax: failed to initialize lexer")
	}
	return &Reader{ts: ts}, nil
}

// AtEOF reports whether the stream has no more significant tokens.
func (rd *Reader) AtEOF() (bool, error) {
	tok, err := rd.ts.peek()
	if err != nil {
		return false, err
	}
	return tok.EOF(), nil
}

// Read reads and returns the next top-level Datum. Returns io.EOF when the
// stream is exhausted.
func (rd *Reader) Read() (*Datum, error) {
	tok, err := rd.ts.next()
	if err != nil {
		return nil, err
	}
	if tok.EOF() {
		return nil, io.EOF
	}
	return rd.readFormTok(tok)
}

// readFormTok folds a single token (already consumed) and, for Quote and
// LParen, whatever follows, into one Datum. Nesting is handled by
// recursion: each LParen starts a readList call that returns at its
// matching RParen.
func (rd *Reader) readFormTok(tok tokenT) (*Datum, error) {
	name := tokenName(tok)
	pos := rd.ts.position(tok)

	switch name {
	case tokLParen:
		return rd.readList(pos)

	case tokRParen:
		return nil, errors.Errorf("%s: unexpected )", pos)

	case tokQuote:
		inner, err := rd.Read()
		if err != nil {
			if err == io.EOF {
				return nil, errors.Errorf("%s: expected a form after '", pos)
			}
			return nil, err
		}
		return NewList(pos, []*Datum{NewSymbol(pos, "quote"), inner}), nil

	case tokNumber:
		return NewNumber(pos, tok.Value), nil

	case tokBool:
		return NewBool(pos, tok.Value == "#t"), nil

	case tokString:
		s, err := decodeString(tok.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: malformed string literal", pos)
		}
		return NewString(pos, s), nil

	case tokIdent:
		return NewSymbol(pos, tok.Value), nil
	}

	return nil, errors.Errorf("%s: unrecognized token %q", pos, tok.Value)
}

// readList reads the children of a list whose opening '(' has already been
// consumed, up to and including the matching ')'.
func (rd *Reader) readList(pos Position) (*Datum, error) {
	var children []*Datum
	for {
		tok, err := rd.ts.next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return nil, errors.Errorf("%s: unterminated list", pos)
		}
		if tokenName(tok) == tokRParen {
			return NewList(pos, children), nil
		}

		child, err := rd.readFormTok(tok)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

// decodeString decodes a quoted string literal's C-style escapes.
func decodeString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", errors.New("string literal missing quotes")
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New("trailing backslash in string literal")
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", errors.Errorf("unknown escape sequence \\%c", body[i])
		}
	}
	return b.String(), nil
}
