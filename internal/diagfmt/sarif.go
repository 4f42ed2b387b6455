package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"

	"emptylines/internal/diag"
	"emptylines/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name,omitempty"`
	ShortDescription     sarifMessage        `json:"shortDescription"`
	DefaultConfiguration sarifRuleConfig     `json:"defaultConfiguration"`
	Properties           map[string][]string `json:"properties,omitempty"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	CharOffset  uint32 `json:"charOffset"`
	CharLength  uint32 `json:"charLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif writes diagnostics as a SARIF 2.1.0 log with one run. Lazy fixes are
// built and emitted as artifact changes; fixes that fail to build are left out.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
		}},
		Results: make([]sarifResult, 0),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}}
	}

	ruleIndex := make(map[diag.Code]int)
	ctx := diag.NewFixBuildContext(fs)

	for _, d := range bag.Items() {
		idx, ok := ruleIndex[d.Code]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[d.Code] = idx
			rule := sarifRule{
				ID:                   d.Code.ID(),
				ShortDescription:     sarifMessage{Text: d.Code.Title()},
				DefaultConfiguration: sarifRuleConfig{Level: sarifLevel(d.Severity)},
			}
			if name := d.Code.Name(); name != rule.ID {
				rule.Name = name
			}
			if cat := d.Code.Category(); cat != "" {
				rule.Properties = map[string][]string{"tags": {cat}}
			}
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
		}

		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: idx,
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysical(fs, d.Primary, meta.PathMode)}},
		}
		for i, note := range d.Notes {
			res.RelatedLocations = append(res.RelatedLocations, sarifLocation{
				ID:               i + 1,
				PhysicalLocation: sarifPhysical(fs, note.Span, meta.PathMode),
				Message:          &sarifMessage{Text: note.Msg},
			})
		}
		for _, f := range d.Fixes {
			resolved, err := f.Resolve(ctx)
			if err != nil || len(resolved.Edits) == 0 {
				continue
			}
			res.Fixes = append(res.Fixes, sarifFixFrom(fs, resolved, meta.PathMode))
		}
		run.Results = append(run.Results, res)
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs:    []sarifRun{run},
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func sarifURI(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return ""
	}
	return filepath.ToSlash(formatPath(fs, f, mode))
}

func sarifPhysical(fs *source.FileSet, span source.Span, mode PathMode) sarifPhysicalLocation {
	return sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: sarifURI(fs, span.File, mode)},
		Region:           sarifRegionFor(fs, span),
	}
}

func sarifRegionFor(fs *source.FileSet, span source.Span) sarifRegion {
	region := sarifRegion{CharOffset: span.Start, CharLength: span.Len()}
	if fs.Get(span.File) == nil {
		return region
	}
	start, end := fs.Resolve(span)
	region.StartLine = start.Line
	region.StartColumn = start.Col
	region.EndLine = end.Line
	region.EndColumn = end.Col
	return region
}

func sarifFixFrom(fs *source.FileSet, f diag.Fix, mode PathMode) sarifFix {
	out := sarifFix{Description: sarifMessage{Text: f.Title}}
	byFile := make(map[source.FileID]int)
	for _, edit := range f.Edits {
		idx, ok := byFile[edit.Span.File]
		if !ok {
			idx = len(out.ArtifactChanges)
			byFile[edit.Span.File] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifactLocation{URI: sarifURI(fs, edit.Span.File, mode)},
			})
		}
		repl := sarifReplacement{DeletedRegion: sarifRegionFor(fs, edit.Span)}
		if edit.NewText != "" {
			repl.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, repl)
	}
	return out
}
