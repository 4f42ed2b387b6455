package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"emptylines/internal/fix"
	"emptylines/internal/trace"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFixPathAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"a.cs":     "A;\n\n\n\nB;\n\n\nC;\n\n\n\n\nD;",
		"b.cs":     "A;\n\nB;",
		"sub/c.cs": "X;\n\n\n// c\n\n\nY;",
	})
	res, err := FixPath(context.Background(), dir, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeAll,
	})
	require.NoError(t, err)

	assert.Len(t, res.Applied, 5)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 0, res.Remaining.Len())

	require.Len(t, res.Files, 2)
	assert.Equal(t, "a.cs", res.Files[0].Path)
	assert.True(t, res.Files[0].Written)
	assert.Equal(t, "A;\n\n\n\nB;\n\n\nC;\n\n\n\n\nD;", string(res.Files[0].Original))

	assert.Equal(t, "A;\n\nB;\n\nC;\n\nD;", readFile(t, filepath.Join(dir, "a.cs")))
	assert.Equal(t, "A;\n\nB;", readFile(t, filepath.Join(dir, "b.cs")))
	assert.Equal(t, "X;\n\n// c\n\nY;", readFile(t, filepath.Join(dir, "sub", "c.cs")))
}

func TestFixPathDryRun(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.cs": "A;\r\n\r\n\r\nB;"})
	path := filepath.Join(dir, "a.cs")

	res, err := FixPath(context.Background(), path, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeAll,
		DryRun:  true,
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.False(t, res.Files[0].Written)
	assert.Equal(t, "A;\r\n\r\nB;", string(res.Files[0].Fixed))
	assert.Equal(t, "A;\r\n\r\n\r\nB;", readFile(t, path))
}

func TestFixPathOnce(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.cs": "A;\n\n\nB;\n\n\nC;"})
	path := filepath.Join(dir, "a.cs")

	res, err := FixPath(context.Background(), path, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeOnce,
	})
	require.NoError(t, err)
	assert.Len(t, res.Applied, 1)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, "A;\n\nB;\n\n\nC;", readFile(t, path))
	assert.Equal(t, 1, res.Remaining.Len())
}

func TestFixPathByID(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.cs": "A;\n\n\nB;\n\n\nC;"})
	path := filepath.Join(dir, "a.cs")
	opts := FixOptions{Options: Options{Config: rootedConfig(dir)}, Mode: fix.ApplyModeID, DryRun: true}

	// the second run starts at offset 8
	opts.TargetID = "LNT9001-0-8-0"
	res, err := FixPath(context.Background(), path, opts)
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "A;\n\n\nB;\n\nC;", string(res.Files[0].Fixed))

	opts.TargetID = "LNT9001-0-99-0"
	res, err = FixPath(context.Background(), path, opts)
	require.ErrorIs(t, err, fix.ErrNoFixes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "fix id not found", res.Skipped[0].Reason)
}

func TestFixPathNothingToDo(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.cs": "A;\n\nB;"})
	ring := trace.NewRingTracer(16, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	res, err := FixPath(ctx, dir, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeAll,
	})
	require.ErrorIs(t, err, fix.ErrNoFixes)
	assert.Equal(t, 0, res.Passes)
	assert.Empty(t, res.Files)
}

func TestFixPathSkipsGenerated(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.cs": "// <auto-generated/>\nA;\n\n\nB;",
	})
	_, err := FixPath(context.Background(), dir, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeAll,
	})
	require.ErrorIs(t, err, fix.ErrNoFixes)
	assert.Equal(t, "// <auto-generated/>\nA;\n\n\nB;", readFile(t, filepath.Join(dir, "a.cs")))
}

func TestFixPathNestsUnderCallerSpan(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.cs": "A;\n\n\nB;"})
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: 4242})

	_, err := FixPath(ctx, dir, FixOptions{
		Options: Options{Config: rootedConfig(dir)},
		Mode:    fix.ApplyModeAll,
		DryRun:  true,
	})
	require.NoError(t, err)

	parents := make(map[string]uint64)
	ids := make(map[string]uint64)
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			parents[ev.Name] = ev.ParentID
			ids[ev.Name] = ev.SpanID
		}
	}
	assert.Equal(t, uint64(4242), parents["fix"])
	require.NotZero(t, ids["fix"])
	assert.Equal(t, ids["fix"], parents["analyze"])
}
