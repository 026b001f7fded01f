package syntax

import (
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token class names, matched positionally against the rule table below.
const (
	tokLParen = "LParen"
	tokRParen = "RParen"
	tokQuote  = "Quote"
	tokString = "String"
	tokNumber = "Number"
	tokBool   = "Bool"
	tokIdent  = "Ident"
	tokSpace  = "Whitespace"
)

// tokenDef is the compiled lexical grammar shared by every reader. Building
// it once at package init time, rather than hand-rolling a character-by-
// character scanner, is the same division of labour the rest of this
// module's ecosystem uses: a declarative rule table feeds a generic
// scanner, and a separate stage folds the resulting tokens into a tree.
var tokenDef = lexer.MustSimple([]lexer.SimpleRule{
	{Name: tokLParen, Pattern: `\(`},
	{Name: tokRParen, Pattern: `\)`},
	{Name: tokQuote, Pattern: `'`},
	{Name: tokString, Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: tokBool, Pattern: `#t|#f`},
	{Name: tokNumber, Pattern: `[-+]?[0-9]+`},
	{Name: tokIdent, Pattern: `[^\s()'"]+`},
	{Name: tokSpace, Pattern: `[ \t\r\n]+`},
})

// tokenNames inverts tokenDef.Symbols() (name -> TokenType) so the reader
// can recover a token's class name from the lexer.Token it receives.
var tokenNames = func() map[lexer.TokenType]string {
	m := make(map[lexer.TokenType]string)
	for name, tt := range tokenDef.Symbols() {
		m[tt] = name
	}
	return m
}()

// tokenStream wraps a participle lexer.Lexer with one token of lookahead,
// so the reader (reader.go) can peek before deciding how to fold a form.
type tokenStream struct {
	lex    lexer.Lexer
	peeked *lexer.Token
	file   string
}

func newTokenStream(r io.Reader, file string) (*tokenStream, error) {
	lex, err := tokenDef.Lex(file, r)
	if err != nil {
		return nil, err
	}
	return &tokenStream{lex: lex, file: file}, nil
}

// next returns the next significant (non-whitespace) token, or an EOF
// token when the stream is exhausted.
func (ts *tokenStream) next() (lexer.Token, error) {
	if ts.peeked != nil {
		tok := *ts.peeked
		ts.peeked = nil
		return tok, nil
	}
	for {
		tok, err := ts.lex.Next()
		if err != nil {
			return tok, err
		}
		if tok.EOF() {
			return tok, nil
		}
		if tokenNames[tok.Type] == tokSpace {
			continue
		}
		return tok, nil
	}
}

// peek returns the next significant token without consuming it.
func (ts *tokenStream) peek() (lexer.Token, error) {
	if ts.peeked == nil {
		tok, err := ts.next()
		if err != nil {
			return tok, err
		}
		ts.peeked = &tok
	}
	return *ts.peeked, nil
}

func (ts *tokenStream) position(tok lexer.Token) Position {
	return Position{File: ts.file, Line: tok.Pos.Line, Col: tok.Pos.Column}
}

func tokenName(tok lexer.Token) string {
	return tokenNames[tok.Type]
}
