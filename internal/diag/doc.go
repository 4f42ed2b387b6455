// Package diag defines the diagnostic model shared by the lexer, the rules and
// the fix engine.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable ID ("LNT9001"), a rule
//     name ("empty-lines-redundant") and a category (codes.go).
//   - Message: short, actionable text.
//   - Primary: the source.Span the finding points to.
//   - Notes: secondary spans, e.g. the token a blank-line run belongs to.
//   - Fixes: Fix records describing how to address the problem.
//
// # Fix suggestions
//
// A Fix carries a title, a kind, an applicability level and either concrete
// TextEdits or a FixThunk. Thunks run against the FileSet at application time,
// so a fix computed for an older version of a file can notice that its anchor
// has moved and fail instead of corrupting the text. Resolve and
// MaterializeFixes expand thunks; the fix engine in internal/fix records
// failures as skipped fixes.
//
// TextEdit spans are in source coordinates; OldText is an optional guard the
// fix engine checks before applying an edit.
//
// # Emitting diagnostics
//
// Producers use a Reporter, usually through ReportBuilder (ReportWarning)
// chained with WithNote / WithFixSuggestion and Emit. BagReporter collects
// into a Bag, which caps its size and supports sorting.
//
// Package diag performs no IO and no formatting beyond the single-line short
// form in short.go; rich renderers live in internal/diagfmt.
package diag
