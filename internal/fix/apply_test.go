package fix_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/fix"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
)

func lint(t *testing.T, fs *source.FileSet, id source.FileID) []diag.Diagnostic {
	t.Helper()
	opts := emptylines.DefaultOptions()
	opts.Syntax = lexer.SyntaxCSharp
	bag := diag.NewBag(0)
	emptylines.Analyze(fs.Get(id), opts, diag.BagReporter{Bag: bag})
	return bag.Items()
}

func TestApplyAllCollapsesEveryRun(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte("A;\n\n\n\nB;\n\n\nC;\n\n\n\n\nD;"))

	res, err := fix.Apply(fs, lint(t, fs, id), fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Applied, 3)
	require.Len(t, res.FileChanges, 1)
	assert.Equal(t, "A;\n\nB;\n\nC;\n\nD;", string(res.FileChanges[0].After))
	assert.False(t, res.FileChanges[0].Written)
}

func TestApplyOnceFixesFirstRun(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte("A;\n\n\nB;\n\n\nC;"))

	res, err := fix.Apply(fs, lint(t, fs, id), fix.ApplyOptions{Mode: fix.ApplyModeOnce})
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, diag.LintEmptyLines, res.Applied[0].Code)
	assert.Equal(t, emptylines.FixTitle, res.Applied[0].Title)
	assert.Equal(t, "A;\n\nB;\n\n\nC;", string(res.FileChanges[0].After))
}

func TestApplyWritesFileAndKeepsBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cs")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFA;\r\n\r\n\r\nB;\r\n"), 0o600))

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	require.NoError(t, err)

	res, err := fix.Apply(fs, lint(t, fs, id), fix.ApplyOptions{Mode: fix.ApplyModeAll})
	require.NoError(t, err)
	require.Len(t, res.FileChanges, 1)
	assert.True(t, res.FileChanges[0].Written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFA;\r\n\r\nB;\r\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestApplyDryRunLeavesDiskAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cs")
	const src = "A;\n\n\n\nB;\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	require.NoError(t, err)

	res, err := fix.Apply(fs, lint(t, fs, id), fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "A;\n\nB;\n", string(res.FileChanges[0].After))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
}

func TestApplySkipsStaleFindings(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte("A;\n\n\nB;"))
	diagnostics := lint(t, fs, id)
	require.Len(t, diagnostics, 1)

	fs.Revise(id, []byte("A;\nB;"))

	res, err := fix.Apply(fs, diagnostics, fix.ApplyOptions{Mode: fix.ApplyModeAll})
	assert.ErrorIs(t, err, fix.ErrNoFixes)
	require.Len(t, res.Skipped, 1)
	assert.ErrorIs(t, res.Skipped[0].Err, emptylines.ErrStaleLocation)
	assert.True(t, strings.HasPrefix(res.Skipped[0].Reason, "failed to build fixes"))
}

func TestApplyAllManyRunsInOnePass(t *testing.T) {
	const runs = 20000
	fs := source.NewFileSet()
	id := fs.AddVirtual("big.cs", []byte(strings.Repeat("A;\n\n\n", runs)))
	diagnostics := lint(t, fs, id)
	require.Len(t, diagnostics, runs)

	started := time.Now()
	res, err := fix.Apply(fs, diagnostics, fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	elapsed := time.Since(started)
	require.NoError(t, err)

	assert.Len(t, res.Applied, runs)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.FileChanges, 1)
	assert.Equal(t, strings.Repeat("A;\n\n", runs), string(res.FileChanges[0].After))
	// one lex per file version; a lex per finding takes minutes here
	assert.Less(t, elapsed, 10*time.Second)
}
