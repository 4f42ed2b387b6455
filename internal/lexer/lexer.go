package lexer

import (
	"emptylines/internal/source"
	"emptylines/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	syntax *Syntax
	look   *token.Token   // one-token lookahead buffer
	hold   []token.Trivia // leading trivia collected for the next token
	// lineStart is true while only blank trivia has been seen on the current line.
	lineStart bool
	done      bool
}

func New(file *source.File, opts Options) *Lexer {
	syntax := opts.Syntax
	if syntax == nil {
		syntax = SyntaxC
	}
	return &Lexer{
		file:      file,
		cursor:    NewCursor(file),
		opts:      opts,
		syntax:    syntax,
		lineStart: true,
	}
}

// Next returns the next significant token with its Leading trivia attached.
// The EOF token carries the trivia between the last token and the end of the
// file; after EOF, Next keeps returning an empty EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.hold,
		}
		lx.hold = nil
		lx.done = true
		return tok
	}

	var tok token.Token
	ch := lx.cursor.Peek()
	quote := lx.atQuote()

	switch {
	case quote != nil:
		tok = lx.scanString(quote)

	case isIdentStartByte(ch):
		tok = lx.scanIdent()

	case ch >= utf8RuneSelf:
		// possible Unicode identifier; scanIdent falls back to Invalid
		tok = lx.scanIdent()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	lx.lineStart = false
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// Done reports whether the EOF token has been produced.
func (lx *Lexer) Done() bool {
	return lx.done && lx.look == nil
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

// Tokenize lexes the whole file. The result always ends with the EOF token.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}
