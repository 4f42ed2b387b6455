package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSarifLog(t *testing.T) {
	fs, bag := lintVirtual(t, "src/test.cs", "A;\n\n\nB;\n\n\nC;")
	require.Equal(t, 2, bag.Len())

	var buf bytes.Buffer
	require.NoError(t, Sarif(&buf, bag, fs, SarifRunMeta{
		ToolName:       "emptylines",
		ToolVersion:    "1.2.3",
		InvocationArgs: []string{"check", "src"},
	}))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log), buf.String())
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)

	run := log.Runs[0]
	assert.Equal(t, "emptylines", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 1)
	rule := run.Tool.Driver.Rules[0]
	assert.Equal(t, "LNT9001", rule.ID)
	assert.Equal(t, "empty-lines-redundant", rule.Name)
	assert.Equal(t, "Multiple redundant empty lines", rule.ShortDescription.Text)
	assert.Equal(t, []string{"Design"}, rule.Properties["tags"])
	require.Len(t, run.Invocations, 1)
	assert.True(t, run.Invocations[0].ExecutionSuccessful)

	require.Len(t, run.Results, 2)
	res := run.Results[0]
	assert.Equal(t, "LNT9001", res.RuleID)
	assert.Equal(t, 0, res.RuleIndex)
	assert.Equal(t, "error", res.Level)
	require.Len(t, res.Locations, 1)
	loc := res.Locations[0].PhysicalLocation
	assert.Equal(t, "src/test.cs", loc.ArtifactLocation.URI)
	assert.Equal(t, uint32(2), loc.Region.StartLine)
	assert.Equal(t, uint32(3), loc.Region.CharOffset)
	assert.Equal(t, uint32(2), loc.Region.CharLength)

	require.Len(t, res.RelatedLocations, 1)
	require.Len(t, res.Fixes, 1)
	change := res.Fixes[0].ArtifactChanges[0]
	require.Len(t, change.Replacements, 1)
	assert.Equal(t, uint32(4), change.Replacements[0].DeletedRegion.CharOffset)
	assert.Equal(t, uint32(1), change.Replacements[0].DeletedRegion.CharLength)
	assert.Nil(t, change.Replacements[0].InsertedContent)
}
