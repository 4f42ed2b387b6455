package lexer

import (
	"unicode"

	"emptylines/internal/diag"
	"emptylines/internal/token"
)

// collectLeadingTrivia gathers the trivia preceding the next significant token.
//   - runs of blanks (space, tab, form feed, vertical tab, Unicode spaces) -> one TriviaWhitespace
//   - every "\n", "\r\n" or lone "\r" -> its own TriviaEndOfLine
//   - line and block comments of the syntax -> TriviaComment
//   - directives at line start and a leading shebang -> TriviaOther
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if b == '\n' || b == '\r' {
			lx.cursor.Bump()
			if b == '\r' {
				lx.cursor.Eat('\n')
			}
			lx.push(token.TriviaEndOfLine, start)
			lx.lineStart = true
			continue
		}

		if n := lx.blankWidth(); n > 0 {
			for n > 0 {
				lx.cursor.Advance(n)
				n = lx.blankWidth()
			}
			lx.push(token.TriviaWhitespace, start)
			continue
		}

		if lx.cursor.Off == 0 && lx.syntax.Shebang && lx.cursor.HasPrefix("#!") {
			lx.skipToLineEnd(false)
			lx.push(token.TriviaOther, start)
			lx.lineStart = false
			continue
		}

		if lx.scanCommentIntoHold() {
			continue
		}

		if lx.lineStart && lx.scanDirectiveIntoHold() {
			continue
		}

		break
	}
}

func (lx *Lexer) push(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: lx.text(sp),
	})
}

// blankWidth returns the byte width of the blank rune at the cursor, or 0.
func (lx *Lexer) blankWidth() int {
	b := lx.cursor.Peek()
	switch b {
	case ' ', '\t', '\f', '\v':
		return 1
	}
	if b < utf8RuneSelf {
		return 0
	}
	r, sz := lx.peekRune()
	if unicode.IsSpace(r) {
		return sz
	}
	return 0
}

// skipToLineEnd stops before the line break. With continuation, a backslash
// right before the break keeps the element going.
func (lx *Lexer) skipToLineEnd(continuation bool) {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' || b == '\r' {
			return
		}
		if continuation && b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.Eat('\r') {
				lx.cursor.Eat('\n')
			} else {
				lx.cursor.Eat('\n')
			}
			continue
		}
		lx.cursor.Bump()
	}
}

func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	for _, prefix := range lx.syntax.LineComments {
		if lx.cursor.HasPrefix(prefix) {
			lx.skipToLineEnd(false)
			lx.push(token.TriviaComment, start)
			lx.lineStart = false
			return true
		}
	}
	for _, bc := range lx.syntax.BlockComments {
		if !lx.cursor.HasPrefix(bc.Open) {
			continue
		}
		lx.cursor.Advance(len(bc.Open))
		depth := 1
		for !lx.cursor.EOF() && depth > 0 {
			if bc.Nested && lx.cursor.HasPrefix(bc.Open) {
				lx.cursor.Advance(len(bc.Open))
				depth++
				continue
			}
			if lx.cursor.HasPrefix(bc.Close) {
				lx.cursor.Advance(len(bc.Close))
				depth--
				continue
			}
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		if depth > 0 {
			lx.errLex(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
		}
		lx.push(token.TriviaComment, start)
		lx.lineStart = false
		return true
	}
	return false
}

func (lx *Lexer) scanDirectiveIntoHold() bool {
	start := lx.cursor.Mark()
	for _, prefix := range lx.syntax.Directives {
		if lx.cursor.HasPrefix(prefix) {
			lx.skipToLineEnd(lx.syntax.LineContinuation)
			lx.push(token.TriviaOther, start)
			lx.lineStart = false
			return true
		}
	}
	return false
}
