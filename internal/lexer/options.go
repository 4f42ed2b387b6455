package lexer

import (
	"emptylines/internal/diag"
	"emptylines/internal/source"
)

type Options struct {
	Reporter diag.Reporter // may be nil; lexing continues either way
	Syntax   *Syntax       // nil selects SyntaxC
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	// malformed literals only blur trivia boundaries, so they never fail a check
	diag.ReportWarning(lx.opts.Reporter, code, sp, msg).Emit()
}
