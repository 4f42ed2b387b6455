package emptylines

import (
	"errors"
	"fmt"

	"emptylines/internal/diag"
	"emptylines/internal/lexer"
)

// DefaultThreshold reports two or more consecutive blank lines.
const DefaultThreshold = 2

const (
	// FixTitle labels the fix in listings.
	FixTitle = "Remove redundant empty lines"
	// Message is the diagnostic text.
	Message = "Remove multiple sequential empty lines"
)

// ErrThresholdMisconfigured rejects thresholds below two.
var ErrThresholdMisconfigured = errors.New("threshold must be at least 2")

type Options struct {
	// Threshold is the minimum number of blank lines in one run that triggers a report.
	Threshold int
	Severity  diag.Severity
	// Syntax selects the lexer preset; nil means lexer.SyntaxC.
	Syntax *lexer.Syntax
}

func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Severity:  diag.SevError,
	}
}

func (o Options) Validate() error {
	if o.Threshold < 2 {
		return fmt.Errorf("%w: got %d", ErrThresholdMisconfigured, o.Threshold)
	}
	return nil
}
