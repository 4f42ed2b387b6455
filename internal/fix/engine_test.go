package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/diag"
	"emptylines/internal/source"
)

func replaceDiag(id string, span source.Span, newText string) diag.Diagnostic {
	f := ReplaceSpan("replace", span, newText, "")
	f.ID = id
	return diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.LintEmptyLines,
		Message:  "test",
		Primary:  span,
		Fixes:    []diag.Fix{f},
	}
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte(""))
	span := source.Span{File: fileID, Start: 0, End: 0}

	diagnostics := []diag.Diagnostic{{
		Code:    diag.LintEmptyLines,
		Message: "blank lines",
		Primary: span,
		Fixes: []diag.Fix{
			{
				ID:    "fix-duplicate",
				Title: "insert newline",
				Edits: []diag.TextEdit{{Span: span, NewText: "\n"}},
			},
			{
				ID:    "fix-duplicate",
				Title: "insert newline again",
				Edits: []diag.TextEdit{{Span: span, NewText: "\n"}},
			},
		},
	}}

	candidates, skips := gatherCandidates(diag.FixBuildContext{FileSet: fs}, diagnostics)
	require.Len(t, candidates, 1)
	require.Len(t, skips, 1)
	assert.Equal(t, "fix-duplicate", skips[0].ID)
	assert.Equal(t, "duplicate fix id", skips[0].Reason)
}

func TestGatherCandidatesDerivesIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte("abc"))
	span := source.Span{File: fileID, Start: 1, End: 2}

	d := replaceDiag("", span, "x")
	candidates, skips := gatherCandidates(diag.FixBuildContext{FileSet: fs}, []diag.Diagnostic{d})
	require.Empty(t, skips)
	require.Len(t, candidates, 1)
	assert.Equal(t, "LNT9001-0-1-0", candidates[0].fix.ID)
}

func TestGatherCandidatesRecordsThunkFailures(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte("abc"))
	span := source.Span{File: fileID, Start: 0, End: 1}

	d := diag.Diagnostic{
		Code:    diag.LintEmptyLines,
		Primary: span,
		Fixes: []diag.Fix{Lazy("broken", diag.FixThunkFunc(func(diag.FixBuildContext) (diag.Fix, error) {
			return diag.Fix{}, assert.AnError
		}))},
	}
	candidates, skips := gatherCandidates(diag.FixBuildContext{FileSet: fs}, []diag.Diagnostic{d})
	assert.Empty(t, candidates)
	require.Len(t, skips, 1)
	assert.ErrorIs(t, skips[0].Err, assert.AnError)
	assert.Contains(t, skips[0].Reason, "failed to build fixes")
}

func TestApplyTracksCumulativeDelta(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte("abcdef"))

	diagnostics := []diag.Diagnostic{
		replaceDiag("grow", source.Span{File: fileID, Start: 1, End: 2}, "XYZ"),
		replaceDiag("drop", source.Span{File: fileID, Start: 4, End: 5}, ""),
	}

	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	require.NoError(t, err)
	require.Len(t, res.Applied, 2)
	require.Len(t, res.FileChanges, 1)

	change := res.FileChanges[0]
	assert.Equal(t, "aXYZcdf", string(change.After))
	assert.Equal(t, "abcdef", string(change.Before))
	assert.Equal(t, 2, change.EditCount)
	assert.False(t, change.Written, "virtual files are never written")
}

func TestApplySkipsConflictingEdits(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte("abcdef"))

	diagnostics := []diag.Diagnostic{
		replaceDiag("first", source.Span{File: fileID, Start: 1, End: 4}, "-"),
		replaceDiag("second", source.Span{File: fileID, Start: 2, End: 5}, "+"),
	}

	res, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "first", res.Applied[0].ID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "second", res.Skipped[0].ID)
	assert.Contains(t, res.Skipped[0].Reason, "conflicts with previously applied edits")
	assert.Equal(t, "a-ef", string(res.FileChanges[0].After))
}

func TestApplyRejectsMismatchedOldText(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.cs", []byte("abcdef"))
	span := source.Span{File: fileID, Start: 0, End: 2}

	d := diag.Diagnostic{
		Code:    diag.LintEmptyLines,
		Primary: span,
		Fixes:   []diag.Fix{ReplaceSpan("guarded", span, "zz", "xy")},
	}
	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll})
	assert.ErrorIs(t, err, ErrNoFixes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "existing text does not match expected content", res.Skipped[0].Reason)
}

func TestApplyModes(t *testing.T) {
	newDiagnostics := func(fileID source.FileID) []diag.Diagnostic {
		manual := replaceDiag("manual", source.Span{File: fileID, Start: 0, End: 1}, "M")
		manual.Fixes[0].Applicability = diag.FixApplicabilityManualReview
		return []diag.Diagnostic{
			manual,
			replaceDiag("safe", source.Span{File: fileID, Start: 2, End: 3}, "S"),
		}
	}

	t.Run("once prefers safe fix", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID := fs.AddVirtual("test.cs", []byte("abcd"))
		res, err := Apply(fs, newDiagnostics(fileID), ApplyOptions{Mode: ApplyModeOnce})
		require.NoError(t, err)
		require.Len(t, res.Applied, 1)
		assert.Equal(t, "safe", res.Applied[0].ID)
		assert.Equal(t, "abSd", string(res.FileChanges[0].After))
	})

	t.Run("all skips unsafe", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID := fs.AddVirtual("test.cs", []byte("abcd"))
		res, err := Apply(fs, newDiagnostics(fileID), ApplyOptions{Mode: ApplyModeAll})
		require.NoError(t, err)
		require.Len(t, res.Applied, 1)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "applicability is manual-review", res.Skipped[0].Reason)
	})

	t.Run("id selects exact fix", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID := fs.AddVirtual("test.cs", []byte("abcd"))
		res, err := Apply(fs, newDiagnostics(fileID), ApplyOptions{Mode: ApplyModeID, TargetID: "manual"})
		require.NoError(t, err)
		assert.Equal(t, "Mbcd", string(res.FileChanges[0].After))
	})

	t.Run("unknown id", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID := fs.AddVirtual("test.cs", []byte("abcd"))
		res, err := Apply(fs, newDiagnostics(fileID), ApplyOptions{Mode: ApplyModeID, TargetID: "nope"})
		assert.ErrorIs(t, err, ErrNoFixes)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "fix id not found", res.Skipped[0].Reason)
	})
}

func TestSpansConflict(t *testing.T) {
	edit := func(start, end uint32) diag.TextEdit {
		return diag.TextEdit{Span: source.Span{Start: start, End: end}}
	}
	assert.False(t, spansConflict(edit(3, 3), edit(3, 3)))
	assert.True(t, spansConflict(edit(3, 3), edit(2, 5)))
	assert.False(t, spansConflict(edit(5, 5), edit(2, 5)))
	assert.True(t, spansConflict(edit(1, 4), edit(3, 6)))
	assert.False(t, spansConflict(edit(1, 3), edit(3, 6)))
}
