package emptylines

import (
	"emptylines/internal/source"
	"emptylines/internal/token"
)

const defaultLineBreak = "\n"

// Rewrite returns a copy of leading in which the run covered by report holds
// threshold-1 blank lines. Elements outside report are copied verbatim. The
// first element inside it is kept and followed by synthetic line breaks; the
// remaining elements inside it are dropped. When nothing overlaps report the
// input is returned as is.
func Rewrite(leading []token.Trivia, report source.Span, threshold int) []token.Trivia {
	anchor := -1
	for i, el := range leading {
		if el.Span.Overlaps(report) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return leading
	}

	kept := leading[anchor]
	// a kept line break already ends one of the remaining blank lines
	extra := threshold - 1
	if kept.Kind == token.TriviaEndOfLine {
		extra--
	}

	out := make([]token.Trivia, 0, len(leading)+max(extra, 0))
	out = append(out, leading[:anchor]...)
	out = append(out, kept)

	brk := lineBreakText(leading[anchor:], report)
	at := source.Span{File: kept.Span.File, Start: kept.Span.End, End: kept.Span.End}
	for range max(extra, 0) {
		out = append(out, token.Trivia{Kind: token.TriviaEndOfLine, Span: at, Text: brk})
	}

	for _, el := range leading[anchor+1:] {
		if el.Span.Overlaps(report) {
			continue
		}
		out = append(out, el)
	}
	return out
}

// lineBreakText picks the text of the first line break inside the run so
// synthetic breaks match the file's line ending style.
func lineBreakText(list []token.Trivia, report source.Span) string {
	for _, el := range list {
		if el.Kind == token.TriviaEndOfLine && el.Span.Overlaps(report) {
			return el.Text
		}
	}
	return defaultLineBreak
}
