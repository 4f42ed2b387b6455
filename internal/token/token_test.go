package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"emptylines/internal/source"
	"emptylines/internal/token"
)

func sp(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func TestFind(t *testing.T) {
	toks := []token.Token{
		{Kind: token.Ident, Span: sp(0, 1), Text: "A"},
		{Kind: token.Punct, Span: sp(1, 2), Text: ";"},
		{Kind: token.Ident, Span: sp(5, 6), Text: "B"},
		{Kind: token.EOF, Span: sp(6, 6)},
	}

	idx, ok := token.Find(toks, sp(5, 6))
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = token.Find(toks, sp(6, 6))
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = token.Find(toks, sp(5, 7))
	assert.False(t, ok)
	_, ok = token.Find(toks, sp(9, 9))
	assert.False(t, ok)
}

func TestRenderAndSpans(t *testing.T) {
	tok := token.Token{
		Kind: token.Ident,
		Span: sp(4, 5),
		Text: "B",
		Leading: []token.Trivia{
			{Kind: token.TriviaEndOfLine, Span: sp(2, 3), Text: "\n"},
			{Kind: token.TriviaWhitespace, Span: sp(3, 4), Text: " "},
		},
	}
	assert.Equal(t, sp(2, 4), tok.LeadingSpan())
	assert.Equal(t, "\n B", token.Render([]token.Token{tok}))

	bare := token.Token{Kind: token.EOF, Span: sp(7, 7)}
	assert.Equal(t, sp(7, 7), bare.LeadingSpan())
	assert.True(t, bare.IsEOF())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "Punct", token.Punct.String())
	assert.Equal(t, "EndOfLine", token.TriviaEndOfLine.String())
	assert.Equal(t, "Other", token.TriviaOther.String())
	assert.True(t, token.Trivia{Kind: token.TriviaWhitespace}.IsBlank())
	assert.False(t, token.Trivia{Kind: token.TriviaComment}.IsBlank())
}
