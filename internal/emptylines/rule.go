package emptylines

import (
	"emptylines/internal/diag"
	"emptylines/internal/fix"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
	"emptylines/internal/token"
)

// Result is the outcome of analysing one file.
type Result struct {
	Tokens   []token.Token
	Findings []Finding
}

// Analyze lexes file, scans it and reports one diagnostic per finding through
// reporter. Lexer problems go to the same reporter. Generated files are lexed
// but produce no findings.
func Analyze(file *source.File, opts Options, reporter diag.Reporter) Result {
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: reporter, Syntax: opts.Syntax})
	findings := Scan(file, tokens, opts.Threshold)
	for _, f := range findings {
		Report(reporter, file, f, opts)
	}
	return Result{Tokens: tokens, Findings: findings}
}

// Report emits the diagnostic for one finding with a note on the anchor token
// and a lazy fix.
func Report(reporter diag.Reporter, file *source.File, f Finding, opts Options) {
	diag.NewReportBuilder(reporter, opts.Severity, diag.LintEmptyLines, f.Report, Message).
		WithNote(f.Anchor.Span, "blank lines precede this token").
		WithFixSuggestion(fix.Lazy(FixTitle, NewFixThunk(file, f, opts), fix.Preferred())).
		Emit()
}
