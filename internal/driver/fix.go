package driver

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"emptylines/internal/diag"
	"emptylines/internal/fix"
	"emptylines/internal/source"
	"emptylines/internal/trace"
)

const defaultMaxPasses = 8

// FixOptions configures FixPath.
type FixOptions struct {
	Options
	Mode     fix.ApplyMode
	TargetID string
	// DryRun computes the fixed contents without writing them.
	DryRun bool
	// MaxPasses bounds fix-all iterations; <= 0 uses a small default.
	MaxPasses int
}

// FixedFile pairs the original and final contents of a changed file.
type FixedFile struct {
	Path     string
	Original []byte
	Fixed    []byte
	Written  bool
}

// FixResult summarises a FixPath run.
type FixResult struct {
	FileSet *source.FileSet
	Applied []fix.AppliedFix
	Skipped []fix.SkippedFix
	Files   []FixedFile
	Passes  int
	// Remaining holds the diagnostics still reported after the last pass.
	Remaining *diag.Bag
}

// FixPath analyses path and applies its fixes. In ApplyModeAll the file set is
// re-analysed after every pass until nothing applies, so runs that shift after
// an edit are still collapsed. Files are written once, at the end.
func FixPath(ctx context.Context, path string, opts FixOptions) (*FixResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "fix", trace.CurrentSpan(ctx).SpanID)
	analysis, err := Analyze(trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()}), path, opts.Options)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	cfg := opts.config()
	fileSet := analysis.FileSet

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}
	if opts.Mode != fix.ApplyModeAll {
		maxPasses = 1
	}

	current := make(map[string]FileResult, len(analysis.Files))
	original := make(map[string]source.FileID, len(analysis.Files))
	for _, res := range analysis.Files {
		current[res.Path] = res
		original[res.Path] = res.FileID
	}
	pending := analysis.Files

	out := &FixResult{FileSet: fileSet}
	// Conflict skips only survive from the last pass; earlier ones are
	// retried against the re-analysed file.
	var conflicts []fix.SkippedFix
	stop := opts.Timer.Track("fix")
	for out.Passes < maxPasses {
		if err := ctx.Err(); err != nil {
			stop("")
			span.End(err.Error())
			return nil, err
		}
		diagnostics := collectDiagnostics(pending)
		if len(diagnostics) == 0 {
			break
		}
		out.Passes++
		applyRes, applyErr := fix.Apply(fileSet, diagnostics, fix.ApplyOptions{
			Mode:     opts.Mode,
			TargetID: opts.TargetID,
			DryRun:   true,
		})
		for _, sk := range applyRes.Skipped {
			traceSkip(tracer, out.Passes, sk)
		}
		out.Applied = append(out.Applied, applyRes.Applied...)
		conflicts = conflicts[:0]
		for _, sk := range applyRes.Skipped {
			if strings.HasPrefix(sk.Reason, "conflicts with") {
				conflicts = append(conflicts, sk)
				continue
			}
			out.Skipped = append(out.Skipped, sk)
		}
		if errors.Is(applyErr, fix.ErrNoFixes) {
			break
		}
		if applyErr != nil {
			stop("")
			span.End(applyErr.Error())
			return nil, applyErr
		}

		// Re-analyse only what changed; untouched files have nothing left to apply.
		pending = pending[:0:0]
		for _, change := range applyRes.FileChanges {
			started := time.Now()
			prev := findByFileID(current, change.File)
			revised := fileSet.Revise(change.File, change.After)
			res := analyzeLoaded(fileSet, revised, prev.Path, cfg, nil)
			current[prev.Path] = res
			pending = append(pending, res)
			emit(opts.Progress, Event{
				File:     prev.Path,
				Stage:    StageFix,
				Status:   StatusDone,
				Elapsed:  time.Since(started),
				Findings: len(res.Findings),
			})
		}
	}
	stop(strconv.Itoa(len(out.Applied)) + " fixes")
	out.Skipped = append(out.Skipped, conflicts...)

	for _, p := range sortedKeys(current) {
		res := current[p]
		if res.FileID == original[p] {
			continue
		}
		before := fileSet.Get(original[p])
		after := fileSet.Get(res.FileID)
		ff := FixedFile{Path: p, Original: before.Content, Fixed: after.Content}
		if !opts.DryRun && after.Flags&source.FileVirtual == 0 {
			if err := fix.WriteFile(after, after.Content); err != nil {
				span.End(err.Error())
				return out, err
			}
			ff.Written = true
		}
		out.Files = append(out.Files, ff)
	}

	results := make([]FileResult, 0, len(current))
	for _, p := range sortedKeys(current) {
		results = append(results, current[p])
	}
	out.Remaining = mergeBags(opts.MaxDiagnostics, results...)

	span.WithExtra("passes", strconv.Itoa(out.Passes)).
		WithExtra("applied", strconv.Itoa(len(out.Applied))).
		End("")
	if len(out.Applied) == 0 {
		return out, fix.ErrNoFixes
	}
	return out, nil
}

func collectDiagnostics(results []FileResult) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, res := range results {
		if res.Bag == nil || res.Err != nil {
			continue
		}
		out = append(out, res.Bag.Items()...)
	}
	return out
}

func findByFileID(current map[string]FileResult, id source.FileID) FileResult {
	for _, res := range current {
		if res.FileID == id {
			return res
		}
	}
	return FileResult{FileID: id}
}

func sortedKeys(m map[string]FileResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func traceSkip(tracer trace.Tracer, pass int, sk fix.SkippedFix) {
	detail := sk.Reason
	if sk.Err != nil {
		detail = sk.Reason + ": " + sk.Err.Error()
	}
	trace.Point(tracer, trace.ScopeFile, "fix-skipped", detail, map[string]string{
		"id":   sk.ID,
		"pass": strconv.Itoa(pass),
	})
}
