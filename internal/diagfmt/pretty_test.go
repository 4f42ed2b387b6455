package diagfmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
)

func lintVirtual(t *testing.T, name, src string) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(name, []byte(src)))
	opts := emptylines.DefaultOptions()
	opts.Syntax = lexer.SyntaxCSharp
	bag := diag.NewBag(0)
	emptylines.Analyze(file, opts, diag.BagReporter{Bag: bag})
	bag.Sort()
	return fs, bag
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("s = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.cs", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 4, End: 24},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/src/test.cs"},
		{name: "Relative path", mode: PathModeRelative, contains: "src/test.cs"},
		{name: "Basename only", mode: PathModeBasename, contains: "test.cs:1:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			assert.Contains(t, output, tt.contains)
			assert.Contains(t, output, "ERROR")
			assert.Contains(t, output, "LEX1001")
			assert.Contains(t, output, "Unterminated string")
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Short path - as is", path: "test.cs", expected: "test.cs:1:9"},
		{name: "Long absolute path - basename", path: "/very/long/absolute/path/to/some/nested/directory/file.cs", expected: "file.cs:1:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			fileID := fs.AddVirtual(tt.path, []byte("let x = 42\n"))

			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnterminatedString, source.Span{File: fileID, Start: 8, End: 10}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := buf.String()

			assert.Contains(t, output, tt.expected)
			assert.NotContains(t, output, "/very/long")
		})
	}
}

func TestPrettyCaretUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.cs", []byte("let x = 42\n"))

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.LexUnterminatedString, source.Span{File: fileID, Start: 8, End: 10}, "caret"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	output := buf.String()

	assert.Contains(t, output, "1 |  let x = 42\n")
	assert.Contains(t, output, "|          ^~\n")
}

func TestPrettyMarksBlankRun(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;")
	require.Equal(t, 1, bag.Len())

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	output := buf.String()

	assert.Contains(t, output, "test.cs:2:1: ERROR LNT9001: Remove multiple sequential empty lines")
	assert.Contains(t, output, "2 |+ \n")
	assert.Contains(t, output, "3 |+ \n")
	assert.NotContains(t, output, "4 |")
	assert.NotContains(t, output, "^")
}

func TestPrettyContextLines(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	output := buf.String()

	assert.Contains(t, output, "1 |  A;\n")
	assert.Contains(t, output, "4 |  B;\n")
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs, bag := lintVirtual(t, "test.cs", "A;\n\n\nB;")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: true,
	})
	output := buf.String()

	assert.Contains(t, output, "note: test.cs:4:1: blank lines precede this token")
	assert.Contains(t, output, "fix #1: Remove redundant empty lines [always-safe, preferred]")
	assert.Contains(t, output, "edit test.cs:3:1-4:1 apply=\"\"")
	assert.Contains(t, output, "preview:")
	assert.Contains(t, output, "+ B;")
}

func TestPrettyStaticFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("example.cs", []byte("let a = 42 // missing semicolon"))

	insertSpan := source.Span{File: fileID, Start: 10, End: 10}
	d := diag.New(diag.SevWarning, diag.LintEmptyLines, insertSpan, "missing semicolon").
		WithFix("insert semicolon", diag.TextEdit{Span: insertSpan, NewText: ";"})

	bag := diag.NewBag(2)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	output := buf.String()

	assert.Contains(t, output, "apply=\";\"")
	assert.Contains(t, output, "- let a = 42 // missing semicolon")
	assert.Contains(t, output, "+ let a = 42; // missing semicolon")
}
