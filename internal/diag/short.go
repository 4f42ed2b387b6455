package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"emptylines/internal/source"
)

type shortEntry struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders one "severity code path:line:col message"
// line per diagnostic (and per note when includeNotes is set), sorted by
// location. The result has no trailing newline and is empty when diags is.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	entries := make([]shortEntry, 0, len(diags))
	for _, d := range diags {
		entries = appendShort(entries, d, fs, includeNotes)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ei, ej := entries[i], entries[j]
		if ei.Path != ej.Path {
			return ei.Path < ej.Path
		}
		if ei.Line != ej.Line {
			return ei.Line < ej.Line
		}
		if ei.Column != ej.Column {
			return ei.Column < ej.Column
		}
		if ei.Severity != ej.Severity {
			return ei.Severity < ej.Severity
		}
		if ei.Code != ej.Code {
			return ei.Code < ej.Code
		}
		return ei.Message < ej.Message
	})

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", e.Severity, e.Code, e.Path, e.Line, e.Column, e.Message)
		if i < len(entries)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortEntry, d *Diagnostic, fs *source.FileSet, includeNotes bool) []shortEntry {
	if loc, ok := resolveSpan(fs, d.Primary); ok {
		out = append(out, shortEntry{
			Severity: severityLabel(d.Severity),
			Code:     d.Code.ID(),
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  singleLine(d.Message),
		})
	}
	if !includeNotes {
		return out
	}
	for _, note := range d.Notes {
		loc, ok := resolveSpan(fs, note.Span)
		if !ok {
			continue
		}
		out = append(out, shortEntry{
			Severity: "note",
			Code:     d.Code.ID(),
			Path:     loc.Path,
			Line:     loc.Line,
			Column:   loc.Column,
			Message:  singleLine(note.Msg),
		})
	}
	return out
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpan(fs *source.FileSet, span source.Span) (loc resolvedSpan, ok bool) {
	defer func() {
		if recover() != nil {
			loc = resolvedSpan{}
			ok = false
		}
	}()

	file := fs.Get(span.File)
	if file == nil {
		return resolvedSpan{}, false
	}
	start, _ := fs.Resolve(span)
	return resolvedSpan{
		Path:   strings.TrimPrefix(filepath.ToSlash(file.FormatPath("relative", fs.BaseDir())), "./"),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func singleLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	msg = strings.NewReplacer("\r", " ", "\n", " ").Replace(msg)
	return strings.TrimSpace(msg)
}
