package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func withoutColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestDefaultVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
}

func TestColoredKeepsSuffix(t *testing.T) {
	withoutColor(t)
	withVersion(t, "1.2.3-rc.1", "", "")
	assert.Equal(t, "1.2.3-rc.1", Colored())
}

func TestColoredAddsEscapes(t *testing.T) {
	withVersion(t, "1.2.3", "", "")
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })
	assert.Contains(t, Colored(), "\x1b[")
}

func TestColoredLeavesOddVersionsAlone(t *testing.T) {
	withVersion(t, "nightly", "", "")
	assert.Equal(t, "nightly", Colored())
}

func TestLine(t *testing.T) {
	withoutColor(t)

	withVersion(t, "0.1.0", "", "")
	assert.Equal(t, "emptylines 0.1.0", Line("emptylines"))

	withVersion(t, "0.1.0", "abc123", "2024-01-15")
	assert.Equal(t, "emptylines 0.1.0 (commit abc123, built 2024-01-15)", Line("emptylines"))
}
