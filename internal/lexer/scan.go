package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"emptylines/internal/diag"
	"emptylines/internal/token"
)

const utf8RuneSelf = 0x80

// peekRune decodes the rune at the cursor.
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	b := lx.cursor.Peek()
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.limit()])
}

func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	if sz == 0 {
		return
	}
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += usz
}

func isIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isIdentStartRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinueRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

// ".5": a dot followed by a digit starts a number.
func (lx *Lexer) isNumberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	switch {
	case sz == 0:
		return token.Token{Kind: token.Invalid, Span: lx.cursor.SpanFrom(start)}
	case r < utf8RuneSelf:
		lx.cursor.Bump()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	case isIdentStartRune(r):
		lx.bumpRune()
	default:
		// stray non-letter rune or invalid UTF-8 byte
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}

	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) || lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			break
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Ident, Span: sp, Text: lx.text(sp)}
}

// scanNumber is deliberately loose: digits, letters, underscores and dots,
// plus a sign right after an exponent marker.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	prev := byte(0)
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isIdentContinueByte(b) && b != '$':
		case b == '.' && lx.isNumberAfterDot():
		case (b == '+' || b == '-') && (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'):
		default:
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.Number, Span: sp, Text: lx.text(sp)}
		}
		prev = lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Number, Span: sp, Text: lx.text(sp)}
}

// atQuote returns the first quote form whose opener matches at the cursor.
// Quote lists are ordered longest opener first.
func (lx *Lexer) atQuote() *Quote {
	for i := range lx.syntax.Quotes {
		if lx.cursor.HasPrefix(lx.syntax.Quotes[i].Open) {
			return &lx.syntax.Quotes[i]
		}
	}
	return nil
}

func (lx *Lexer) scanString(q *Quote) token.Token {
	start := lx.cursor.Mark()
	kind := token.String
	if q.Char {
		kind = token.Char
	}
	lx.cursor.Advance(len(q.Open))

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if q.Escape != 0 && b == q.Escape {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			// an escaped line break still ends a single-line literal
			if nb := lx.cursor.Peek(); (nb == '\n' || nb == '\r') && !q.Multiline {
				continue
			}
			lx.cursor.Bump()
			continue
		}
		if lx.cursor.HasPrefix(q.Close) {
			lx.cursor.Advance(len(q.Close))
			if q.DoubledClose && lx.cursor.HasPrefix(q.Close) {
				lx.cursor.Advance(len(q.Close))
				continue
			}
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
		}
		if (b == '\n' || b == '\r') && !q.Multiline {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.Bump()
	}

	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// multi-byte operators, longest first
var operators = []string{
	"<<=", ">>=", "...", "??=", "===", "!==",
	"->", "=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "::", "??",
	"<<", ">>", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ":=", "..", "?.",
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range operators {
		if lx.cursor.HasPrefix(op) {
			lx.cursor.Advance(len(op))
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.Punct, Span: sp, Text: lx.text(sp)}
		}
	}
	b := lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	kind := token.Punct
	if b < ' ' || b == 0x7f {
		kind = token.Invalid
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
