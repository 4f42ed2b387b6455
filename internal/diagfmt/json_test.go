package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/diag"
	"emptylines/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("void M() {\n\ts = \"unterminated\n}")
	fileID := fs.AddVirtual("test.cs", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 16, End: 29},
		"Unterminated string literal",
	))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	require.NoError(t, err)

	var output DiagnosticsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output), buf.String())
	require.Equal(t, 1, output.Count)
	require.Len(t, output.Diagnostics, 1)

	d := output.Diagnostics[0]
	assert.Equal(t, "WARNING", d.Severity)
	assert.Equal(t, "LEX1001", d.Code)
	assert.Empty(t, d.Rule)
	assert.Equal(t, "Unterminated string literal", d.Message)
	assert.Equal(t, "test.cs", d.Location.File)
	assert.Equal(t, uint32(16), d.Location.StartByte)
	assert.Equal(t, uint32(29), d.Location.EndByte)
	assert.Equal(t, uint32(2), d.Location.StartLine)
	assert.Equal(t, uint32(6), d.Location.StartCol)
}

func TestJSONLazyFixWithPreview(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;")

	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	})
	require.NoError(t, err)
	require.Len(t, out.Diagnostics, 1)

	d := out.Diagnostics[0]
	assert.Equal(t, "LNT9001", d.Code)
	assert.Equal(t, "empty-lines-redundant", d.Rule)
	assert.Equal(t, "ERROR", d.Severity)
	assert.Equal(t, uint32(3), d.Location.StartByte)
	assert.Equal(t, uint32(5), d.Location.EndByte)

	require.Len(t, d.Notes, 1)
	assert.Equal(t, uint32(4), d.Notes[0].Location.StartLine)

	require.Len(t, d.Fixes, 1)
	f := d.Fixes[0]
	assert.Equal(t, "Remove redundant empty lines", f.Title)
	assert.Equal(t, "always-safe", f.Applicability)
	assert.True(t, f.IsPreferred)
	assert.Empty(t, f.BuildError)
	require.Len(t, f.Edits, 1)

	edit := f.Edits[0]
	assert.Equal(t, uint32(4), edit.Location.StartByte)
	assert.Equal(t, uint32(5), edit.Location.EndByte)
	assert.Equal(t, "", edit.NewText)
	assert.Equal(t, "\n", edit.OldText)
	assert.Equal(t, []string{"", "", "B;"}, edit.BeforeLines)
	assert.Equal(t, []string{"", "B;"}, edit.AfterLines)
}

func TestJSONReportsFixBuildErrors(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;")
	id, ok := fs.GetLatest("test.cs")
	require.True(t, ok)
	fs.Revise(id, []byte("A;\nB;"))

	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeFixes: true})
	require.NoError(t, err)
	require.Len(t, out.Diagnostics[0].Fixes, 1)

	f := out.Diagnostics[0].Fixes[0]
	assert.Equal(t, "Remove redundant empty lines", f.Title)
	assert.Contains(t, f.BuildError, "stale location")
	assert.Empty(t, f.Edits)
}

func TestJSONMaxTruncatesOutput(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;\n\n\nC;\n\n\nD;")
	require.Equal(t, 3, bag.Len())

	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 3, bag.Len(), "bag is left intact")
}
