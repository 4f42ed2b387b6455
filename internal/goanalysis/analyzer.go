// Package goanalysis exposes the empty-lines rule as a go/analysis pass, so
// it runs under go vet, gopls and multichecker drivers.
package goanalysis

import (
	"go/ast"
	"go/token"
	"os"

	"golang.org/x/tools/go/analysis"

	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
)

var threshold = emptylines.DefaultThreshold

var Analyzer = &analysis.Analyzer{
	Name: "emptylines",
	Doc:  "reports runs of redundant empty lines\n\nA run of threshold or more blank lines between two tokens is reported with a fix that keeps one fewer than threshold.",
	Run:  run,
}

func init() {
	Analyzer.Flags.IntVar(&threshold, "threshold", emptylines.DefaultThreshold, "minimum number of consecutive blank lines to report (>= 2)")
}

func run(pass *analysis.Pass) (any, error) {
	opts := emptylines.DefaultOptions()
	opts.Threshold = threshold
	opts.Syntax = lexer.SyntaxGo
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	for _, f := range pass.Files {
		if ast.IsGenerated(f) {
			continue
		}
		tf := pass.Fset.File(f.Pos())
		if tf == nil {
			continue
		}
		content, err := readFile(pass, tf.Name())
		if err != nil {
			return nil, err
		}
		// cgo and other preprocessors hand us positions that no longer match the file
		if len(content) != tf.Size() {
			continue
		}
		check(pass, tf, content, opts)
	}
	return nil, nil
}

func readFile(pass *analysis.Pass, name string) ([]byte, error) {
	if pass.ReadFile != nil {
		return pass.ReadFile(name)
	}
	// #nosec G304 -- name comes from the package loader
	return os.ReadFile(name)
}

func check(pass *analysis.Pass, tf *token.File, content []byte, opts emptylines.Options) {
	pos := func(off uint32) token.Pos { return tf.Pos(int(off)) }

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(tf.Name(), content))
	bag := diag.NewBag(0)
	emptylines.Analyze(file, opts, diag.BagReporter{Bag: bag})

	ctx := diag.NewFixBuildContext(fs)
	for _, d := range bag.Items() {
		// malformed literals are the compiler's business
		if d.Code != diag.LintEmptyLines {
			continue
		}
		report := analysis.Diagnostic{
			Pos:      pos(d.Primary.Start),
			End:      pos(d.Primary.End),
			Category: d.Code.Name(),
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			report.Related = append(report.Related, analysis.RelatedInformation{
				Pos:     pos(n.Span.Start),
				End:     pos(n.Span.End),
				Message: n.Msg,
			})
		}
		fixes, err := diag.MaterializeFixes(ctx, d.Fixes)
		if err == nil {
			for _, fx := range fixes {
				suggested := analysis.SuggestedFix{Message: fx.Title}
				for _, e := range fx.Edits {
					suggested.TextEdits = append(suggested.TextEdits, analysis.TextEdit{
						Pos:     pos(e.Span.Start),
						End:     pos(e.Span.End),
						NewText: []byte(e.NewText),
					})
				}
				report.SuggestedFixes = append(report.SuggestedFixes, suggested)
			}
		}
		pass.Report(report)
	}
}
