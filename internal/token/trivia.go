package token

import "emptylines/internal/source"

// TriviaKind is the closed set of non-semantic element kinds.
type TriviaKind uint8

const (
	// TriviaWhitespace is a run of spaces, tabs, form feeds or vertical tabs.
	TriviaWhitespace TriviaKind = iota
	// TriviaEndOfLine is exactly one line break.
	TriviaEndOfLine
	// TriviaComment is a line or block comment.
	TriviaComment
	// TriviaOther covers directives, shebangs and anything else that is not code.
	TriviaOther
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaEndOfLine:
		return "EndOfLine"
	case TriviaComment:
		return "Comment"
	case TriviaOther:
		return "Other"
	default:
		return "TriviaKind(?)"
	}
}

// Trivia is one leading non-semantic element of a token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsBlank reports whether the element can be part of a blank-line run.
func (t Trivia) IsBlank() bool {
	return t.Kind == TriviaWhitespace || t.Kind == TriviaEndOfLine
}
