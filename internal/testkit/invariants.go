package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"emptylines/internal/emptylines"
	"emptylines/internal/source"
	"emptylines/internal/token"
)

// CheckTokenInvariants verifies that tokens tile the file content:
//  1. every trivia element and token starts where the previous one ended
//  2. each text equals the bytes its span covers
//  3. the stream ends with a single EOF token at the end of the content
func CheckTokenInvariants(file *source.File, tokens []token.Token) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no tokens")
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var at uint32
	check := func(what string, sp source.Span, text string) error {
		if sp.File != file.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, file.ID)
		}
		if sp.Start != at {
			return fmt.Errorf("%s span %v does not start at %d", what, sp, at)
		}
		if sp.End < sp.Start || sp.End > size {
			return fmt.Errorf("%s span %v is out of bounds (size %d)", what, sp, size)
		}
		if got := string(file.Content[sp.Start:sp.End]); got != text {
			return fmt.Errorf("%s text %q does not match content %q at %v", what, text, got, sp)
		}
		at = sp.End
		return nil
	}

	for i, tok := range tokens {
		for _, tv := range tok.Leading {
			if err := check("trivia", tv.Span, tv.Text); err != nil {
				return fmt.Errorf("token %d: %w", i, err)
			}
		}
		if err := check("token", tok.Span, tok.Text); err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
		if tok.IsEOF() != (i == len(tokens)-1) {
			return fmt.Errorf("token %d: EOF must be last and only last", i)
		}
	}
	if at != size {
		return fmt.Errorf("tokens end at %d, content has %d bytes", at, size)
	}
	return nil
}

// CheckFindingInvariants verifies findings produced from tokens:
//  1. the report span lies in the anchor's leading trivia and covers only
//     whitespace and line breaks
//  2. it starts and ends on line boundaries and spans exactly Blank lines
//  3. Blank is at least threshold
//  4. findings are in source order and do not overlap
func CheckFindingInvariants(file *source.File, tokens []token.Token, findings []emptylines.Finding, threshold int) error {
	var prevEnd uint32
	for i, f := range findings {
		rep := f.Report
		if rep.End <= rep.Start {
			return fmt.Errorf("finding %d: empty report span %v", i, rep)
		}
		if i > 0 && rep.Start < prevEnd {
			return fmt.Errorf("finding %d: span %v overlaps or precedes the previous one", i, rep)
		}
		prevEnd = rep.End

		if f.Anchor.Index < 0 || f.Anchor.Index >= len(tokens) {
			return fmt.Errorf("finding %d: anchor index %d out of range", i, f.Anchor.Index)
		}
		tok := tokens[f.Anchor.Index]
		if tok.Span != f.Anchor.Span {
			return fmt.Errorf("finding %d: anchor span %v does not match token %v", i, f.Anchor.Span, tok.Span)
		}
		leading := tok.LeadingSpan()
		if rep.Start < leading.Start || rep.End > leading.End {
			return fmt.Errorf("finding %d: span %v outside leading trivia %v", i, rep, leading)
		}
		for _, tv := range tok.Leading {
			if tv.Span.Overlaps(rep) && !tv.IsBlank() {
				return fmt.Errorf("finding %d: span %v covers non-blank trivia %q", i, rep, tv.Text)
			}
		}

		sp, ep := file.LinePos(rep.Start), file.LinePos(rep.End)
		if sp.Column != 0 || ep.Column != 0 {
			return fmt.Errorf("finding %d: span %v is not line aligned", i, rep)
		}
		if lines := int(ep.Line) - int(sp.Line); lines != f.Blank {
			return fmt.Errorf("finding %d: span covers %d lines, Blank is %d", i, lines, f.Blank)
		}
		if f.Blank < threshold {
			return fmt.Errorf("finding %d: %d blank lines is below threshold %d", i, f.Blank, threshold)
		}
	}
	return nil
}
