package emptylines

import (
	"emptylines/internal/source"
	"emptylines/internal/token"
)

// Run is one reportable blank-line run.
type Run struct {
	// Span covers the fully blank lines only.
	Span source.Span
	// Blank is the number of fully blank lines in the run.
	Blank int
}

// Anchor identifies the token whose leading trivia holds a run.
type Anchor struct {
	Span  source.Span
	Index int // position in the token slice the finding was produced from
}

// Finding pairs a reportable span with its anchor token.
type Finding struct {
	Report source.Span
	Anchor Anchor
	Blank  int
}

type runState uint8

const (
	stateIdle runState = iota
	stateOpen
)

type scanner struct {
	file      *source.File
	threshold int
	state     runState
	start     uint32
	end       uint32
	out       []Run
}

func (s *scanner) step(el token.Trivia) {
	switch el.Kind {
	case token.TriviaWhitespace:
		if s.state == stateIdle {
			s.open(el)
		}
	case token.TriviaEndOfLine:
		if s.state == stateIdle {
			s.open(el)
			return
		}
		s.end = el.Span.End
	case token.TriviaComment, token.TriviaOther:
		if s.state == stateOpen {
			s.emit()
		}
	}
}

func (s *scanner) open(el token.Trivia) {
	s.state = stateOpen
	s.start, s.end = el.Span.Start, el.Span.End
}

// emit closes the open run and keeps it when enough full lines are blank.
func (s *scanner) emit() {
	s.state = stateIdle

	sp := s.file.LinePos(s.start)
	ep := s.file.LinePos(s.end)

	first := int(sp.Line)
	if sp.Column != 0 {
		first++
	}
	last := int(ep.Line)
	if ep.Column != 0 {
		last--
	}
	blank := last - first
	if blank < s.threshold {
		return
	}

	start := s.start
	if sp.Column != 0 {
		// skip the rest of the content line, trailing blanks included
		start = s.file.LineStart(uint32(first))
	}
	s.out = append(s.out, Run{
		Span:  source.Span{File: s.file.ID, Start: start, End: s.end - ep.Column},
		Blank: blank,
	})
}

// Detect scans the leading trivia of tok and returns its reportable runs in
// source order. threshold is assumed valid (see Options.Validate).
func Detect(file *source.File, tok token.Token, threshold int) []Run {
	s := scanner{file: file, threshold: threshold}
	for _, el := range tok.Leading {
		s.step(el)
	}
	if s.state == stateOpen {
		s.emit()
	}
	return s.out
}

// Scan runs Detect over every token, EOF included. Generated files yield nothing.
func Scan(file *source.File, tokens []token.Token, threshold int) []Finding {
	if file.Flags&source.FileGenerated != 0 {
		return nil
	}
	var out []Finding
	for i, tok := range tokens {
		for _, run := range Detect(file, tok, threshold) {
			out = append(out, Finding{
				Report: run.Span,
				Anchor: Anchor{Span: tok.Span, Index: i},
				Blank:  run.Blank,
			})
		}
	}
	return out
}
