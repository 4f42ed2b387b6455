package emptylines

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"emptylines/internal/diag"
	"emptylines/internal/fix"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
	"emptylines/internal/token"
)

// ErrStaleLocation means the anchor token or its run no longer exists in the
// current file contents.
var ErrStaleLocation = errors.New("stale location: anchor token not found")

// Relocate finds the anchor of f in tokens and checks that the run is still
// reportable there. It returns the anchor index.
func Relocate(file *source.File, tokens []token.Token, f Finding, threshold int) (int, error) {
	idx := f.Anchor.Index
	want := f.Anchor.Span
	want.File = file.ID
	if idx < 0 || idx >= len(tokens) || tokens[idx].Span != want {
		var ok bool
		if idx, ok = token.Find(tokens, want); !ok {
			return -1, fmt.Errorf("%w: %s", ErrStaleLocation, want)
		}
	}

	report := f.Report
	report.File = file.ID
	for _, run := range Detect(file, tokens[idx], threshold) {
		if run.Span == report {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%w: no run at %s", ErrStaleLocation, report)
}

// Fix lexes the current contents of file, relocates the finding and returns
// the minimal edit that replaces the anchor's leading trivia with its
// rewritten form.
func Fix(file *source.File, f Finding, opts Options) (diag.TextEdit, error) {
	return fixTokens(file, lex(file, opts), f, opts)
}

func fixTokens(file *source.File, tokens []token.Token, f Finding, opts Options) (diag.TextEdit, error) {
	idx, err := Relocate(file, tokens, f, opts.Threshold)
	if err != nil {
		return diag.TextEdit{}, err
	}

	tok := tokens[idx]
	report := f.Report
	report.File = file.ID
	rewritten := Rewrite(tok.Leading, report, opts.Threshold)
	return spliceEdit(tok.LeadingSpan(), token.RenderTrivia(tok.Leading), token.RenderTrivia(rewritten)), nil
}

func lex(file *source.File, opts Options) []token.Token {
	return lexer.Tokenize(file, lexer.Options{Syntax: opts.Syntax})
}

func syntaxName(opts Options) string {
	if opts.Syntax == nil {
		return lexer.SyntaxC.Name
	}
	return opts.Syntax.Name
}

// spliceEdit shrinks a whole-range replacement to the bytes that differ.
func spliceEdit(span source.Span, oldText, newText string) diag.TextEdit {
	prefix := 0
	for prefix < len(oldText) && prefix < len(newText) && oldText[prefix] == newText[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldText)-prefix && suffix < len(newText)-prefix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}

	start := span.Start + mustU32(prefix)
	end := span.End - mustU32(suffix)
	return diag.TextEdit{
		Span:    source.Span{File: span.File, Start: start, End: end},
		NewText: newText[prefix : len(newText)-suffix],
		OldText: oldText[prefix : len(oldText)-suffix],
	}
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

// fixThunk rebuilds the edit against the newest version of the file. Thunks
// built in one context share the token stream of each file version.
type fixThunk struct {
	path    string
	file    source.FileID
	finding Finding
	opts    Options
}

func (t fixThunk) BuildFix(ctx diag.FixBuildContext) (diag.Fix, error) {
	if ctx.FileSet == nil {
		return diag.Fix{}, errors.New("no file set")
	}
	file := ctx.FileSet.Get(t.file)
	if id, ok := ctx.FileSet.GetLatest(t.path); ok {
		file = ctx.FileSet.Get(id)
	}
	if file == nil {
		return diag.Fix{}, fmt.Errorf("%w: file %s is gone", ErrStaleLocation, t.path)
	}
	tokens := ctx.Tokens.Tokens(file.ID, syntaxName(t.opts), func() []token.Token {
		return lex(file, t.opts)
	})
	edit, err := fixTokens(file, tokens, t.finding, t.opts)
	if err != nil {
		return diag.Fix{}, err
	}
	return fix.ReplaceSpan(FixTitle, edit.Span, edit.NewText, edit.OldText), nil
}

// NewFixThunk returns a lazy fix builder for f found in file.
func NewFixThunk(file *source.File, f Finding, opts Options) diag.FixThunk {
	return fixThunk{path: file.Path, file: file.ID, finding: f, opts: opts}
}
