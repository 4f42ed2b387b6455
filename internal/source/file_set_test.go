package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.cs", []byte("hello world"), 0)
	assert.Equal(t, FileID(0), id1)

	latestID, exists := fs.GetLatest("test.cs")
	require.True(t, exists)
	assert.Equal(t, id1, latestID)

	id2 := fs.Add("test.cs", []byte("hello universe"), 0)
	assert.Equal(t, FileID(1), id2)

	latestID, exists = fs.GetLatest("test.cs")
	require.True(t, exists)
	assert.Equal(t, id2, latestID)

	// the old version stays addressable
	assert.Equal(t, "hello world", string(fs.Get(id1).Content))
	assert.Equal(t, "hello universe", string(fs.Get(id2).Content))
	assert.Equal(t, fs.Get(id1).Path, fs.Get(id2).Path)
	assert.Nil(t, fs.Get(FileID(42)))
}

func TestRevisePreservesFlags(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("a.cs", []byte("x"), FileHadBOM)
	fs.MarkGenerated(id)

	next := fs.Revise(id, []byte("y"))
	f := fs.Get(next)
	assert.Equal(t, "y", string(f.Content))
	assert.NotZero(t, f.Flags&FileHadBOM)
	assert.NotZero(t, f.Flags&FileGenerated)
	assert.Equal(t, 2, fs.Len())
}

func TestBuildLineIndex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []uint32
	}{
		{name: "empty", content: "", want: []uint32{}},
		{name: "no terminator", content: "abc", want: []uint32{}},
		{name: "lf", content: "a\nb\n", want: []uint32{1, 3}},
		{name: "crlf counts once", content: "a\r\nb", want: []uint32{2}},
		{name: "lone cr", content: "a\rb\r", want: []uint32{1, 3}},
		{name: "mixed", content: "\r\n\n\r", want: []uint32{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildLineIndex([]byte(tt.content)))
		})
	}
}

func TestLinePosAndLineStart(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("v", []byte("A;\n\n  \nB;")))

	assert.Equal(t, LinePos{Line: 0, Column: 0}, f.LinePos(0))
	assert.Equal(t, LinePos{Line: 0, Column: 2}, f.LinePos(2))
	assert.Equal(t, LinePos{Line: 1, Column: 0}, f.LinePos(3))
	assert.Equal(t, LinePos{Line: 2, Column: 0}, f.LinePos(4))
	assert.Equal(t, LinePos{Line: 2, Column: 2}, f.LinePos(6))
	assert.Equal(t, LinePos{Line: 3, Column: 1}, f.LinePos(8))

	assert.Equal(t, uint32(0), f.LineStart(0))
	assert.Equal(t, uint32(3), f.LineStart(1))
	assert.Equal(t, uint32(4), f.LineStart(2))
	assert.Equal(t, uint32(7), f.LineStart(3))
	assert.Equal(t, uint32(9), f.LineStart(10))
	assert.Equal(t, 4, f.LineCount())
}

func TestLinePosCRLF(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("v", []byte("a\r\n\r\nb")))

	// '\r' still belongs to the line it terminates
	assert.Equal(t, LinePos{Line: 0, Column: 1}, f.LinePos(1))
	assert.Equal(t, LinePos{Line: 0, Column: 2}, f.LinePos(2))
	assert.Equal(t, LinePos{Line: 1, Column: 0}, f.LinePos(3))
	assert.Equal(t, LinePos{Line: 2, Column: 0}, f.LinePos(5))
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("v", []byte("first\r\nsecond\n\nlast")))

	assert.Equal(t, "first", f.GetLine(1))
	assert.Equal(t, "second", f.GetLine(2))
	assert.Equal(t, "", f.GetLine(3))
	assert.Equal(t, "last", f.GetLine(4))
	assert.Equal(t, "", f.GetLine(5))
	assert.Equal(t, "", f.GetLine(0))
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("v", []byte("ab\ncd"))

	start, end := fs.Resolve(Span{File: id, Start: 1, End: 4})
	assert.Equal(t, LineCol{Line: 1, Col: 2}, start)
	assert.Equal(t, LineCol{Line: 2, Col: 2}, end)
}

func TestLoadStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.cs")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFA;\r\n"), 0o600))

	fs := NewFileSet()
	id, err := fs.Load(path)
	require.NoError(t, err)

	f := fs.Get(id)
	assert.Equal(t, "A;\r\n", string(f.Content))
	assert.NotZero(t, f.Flags&FileHadBOM)
	assert.Equal(t, "\xEF\xBB\xBFA;\r\n", string(f.WithBOM(f.Content)))

	_, err = fs.Load(filepath.Join(dir, "missing.cs"))
	assert.Error(t, err)
}

func TestFormatPath(t *testing.T) {
	dir := t.TempDir()
	f := &File{Path: filepath.ToSlash(filepath.Join(dir, "pkg", "file.cs"))}

	assert.Equal(t, "file.cs", f.FormatPath("basename", ""))
	assert.Equal(t, "pkg/file.cs", f.FormatPath("relative", dir))
	assert.Equal(t, f.Path, f.FormatPath("unknown", ""))

	rel := &File{Path: "src/x.cs"}
	assert.Equal(t, "src/x.cs", rel.FormatPath("auto", ""))
}

func TestRelativePathOutsideBase(t *testing.T) {
	base := t.TempDir()
	other := t.TempDir()
	target := filepath.Join(other, "x.cs")

	rel, err := RelativePath(target, base)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(rel)))
}
