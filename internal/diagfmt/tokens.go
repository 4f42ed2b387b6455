package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"emptylines/internal/source"
	"emptylines/internal/token"
)

type TriviaOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text"`
	Span source.Span `json:"span"`
}

type TokenOutput struct {
	Kind    string         `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Span    source.Span    `json:"span"`
	Leading []TriviaOutput `json:"leading,omitempty"`
}

// FormatTokensPretty prints one token per line. With showTrivia every leading
// trivia element is listed below its token, otherwise only the kinds are
// summarised.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet, showTrivia bool) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)

		if _, err := fmt.Fprintf(w, "%3d: %-8s", i+1, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d",
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col)

		if !showTrivia && len(tok.Leading) > 0 {
			kinds := make([]string, 0, len(tok.Leading))
			for _, tr := range tok.Leading {
				kinds = append(kinds, tr.Kind.String())
			}
			fmt.Fprintf(w, " (leading: %s)", strings.Join(kinds, ", "))
		}
		fmt.Fprintln(w)

		if showTrivia {
			for _, tr := range tok.Leading {
				fmt.Fprintf(w, "       %-10s %q [%d,%d)\n", tr.Kind.String(), tr.Text, tr.Span.Start, tr.Span.End)
			}
		}

		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON prints tokens and their leading trivia as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))

	for _, tok := range tokens {
		tokenOut := TokenOutput{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
		}
		for _, tr := range tok.Leading {
			tokenOut.Leading = append(tokenOut.Leading, TriviaOutput{
				Kind: tr.Kind.String(),
				Text: tr.Text,
				Span: tr.Span,
			})
		}
		output = append(output, tokenOut)

		if tok.Kind == token.EOF {
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
