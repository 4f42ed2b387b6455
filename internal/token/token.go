package token

import (
	"sort"
	"strings"

	"emptylines/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsEOF reports whether the token terminates the stream.
func (t Token) IsEOF() bool { return t.Kind == EOF }

// LeadingSpan covers the leading trivia only; it is empty at Span.Start when
// the token has none.
func (t Token) LeadingSpan() source.Span {
	if len(t.Leading) == 0 {
		return source.Span{File: t.Span.File, Start: t.Span.Start, End: t.Span.Start}
	}
	return source.Span{
		File:  t.Span.File,
		Start: t.Leading[0].Span.Start,
		End:   t.Leading[len(t.Leading)-1].Span.End,
	}
}

// Find returns the index of the token whose span equals span.
// tokens must be in source order.
func Find(tokens []Token, span source.Span) (int, bool) {
	i := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].Span.Start >= span.Start
	})
	// zero-width tokens may share a start with their neighbour
	for ; i < len(tokens) && tokens[i].Span.Start == span.Start; i++ {
		if tokens[i].Span == span {
			return i, true
		}
	}
	return -1, false
}

// Render concatenates leading trivia and text of every token.
func Render(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(RenderTrivia(tok.Leading))
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// RenderTrivia concatenates the text of trivia elements.
func RenderTrivia(list []Trivia) string {
	n := 0
	for _, tv := range list {
		n += len(tv.Text)
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, tv := range list {
		sb.WriteString(tv.Text)
	}
	return sb.String()
}
