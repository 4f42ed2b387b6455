package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"emptylines/internal/diag"
	"emptylines/internal/source"
)

const (
	tabWidth      = 4
	maxSpanLines  = 6
	gutterMarker  = "+"
	gutterContext = " "
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	caret, note     *color.Color
	gutter, fix     *color.Color
	added, removed  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		code:    color.New(color.Bold),
		path:    color.New(color.FgWhite, color.Bold),
		caret:   color.New(color.FgGreen, color.Bold),
		note:    color.New(color.FgBlue),
		gutter:  color.New(color.FgBlue, color.Bold),
		fix:     color.New(color.FgMagenta),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.caret, p.note, p.gutter, p.fix, p.added, p.removed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics in a human readable form. It walks bag.Items()
// (call bag.Sort() first) and prints for each entry
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source context. Single-line spans are underlined with ^~~~;
// multi-line spans mark every covered line in the gutter. Notes and fixes
// follow when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	ctx := diag.NewFixBuildContext(fs)

	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		file := fs.Get(d.Primary.File)
		if file == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", formatPath(fs, file, opts.PathMode), start.Line, start.Col),
			p.severity(d.Severity).Sprint(d.Severity),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeContext(w, p, fs, file, d.Primary, opts)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				nf := fs.Get(note.Span.File)
				if nf == nil {
					fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), note.Msg)
					continue
				}
				ns, _ := fs.Resolve(note.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, note.Msg)
			}
		}

		if opts.ShowFixes {
			writeFixes(w, p, ctx, fs, d.Fixes, opts)
		}
	}
}

func writeContext(w io.Writer, p palette, fs *source.FileSet, file *source.File, span source.Span, opts PrettyOpts) {
	start, end := fs.Resolve(span)
	lastLine := end.Line
	// an exclusive end at column 1 does not touch that line
	if end.Col == 1 && end.Line > start.Line {
		lastLine--
	}

	ctxLines := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctxLines {
		first = start.Line - ctxLines
	}
	last := min(lastLine+ctxLines, uint32(file.LineCount()))

	digits := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", digits)

	for line := first; line <= last; line++ {
		inSpan := line >= start.Line && line <= lastLine
		if inSpan && lastLine-start.Line+1 > maxSpanLines && line > start.Line+maxSpanLines/2 && line+maxSpanLines/2 <= lastLine {
			if line == start.Line+maxSpanLines/2+1 {
				fmt.Fprintf(w, " %s %s\n", blank, p.gutter.Sprint("..."))
			}
			continue
		}

		marker := gutterContext
		if inSpan && start.Line != lastLine {
			marker = gutterMarker
		}
		text := displayLine(file.GetLine(line), opts.Width)
		fmt.Fprintf(w, " %s %s%s %s\n", p.gutter.Sprintf("%*d", digits, line), p.gutter.Sprint("|"), p.caret.Sprint(marker), text)

		if inSpan && start.Line == lastLine {
			raw := file.GetLine(line)
			from := displayWidth(prefixBytes(raw, start.Col-1))
			width := 1
			if end.Line == line {
				width = max(displayWidth(prefixBytes(raw, end.Col-1))-from, 1)
			}
			underline := "^" + strings.Repeat("~", width-1)
			fmt.Fprintf(w, " %s %s  %s%s\n", blank, p.gutter.Sprint("|"), strings.Repeat(" ", from), p.caret.Sprint(underline))
		}
	}
}

func writeFixes(w io.Writer, p palette, ctx diag.FixBuildContext, fs *source.FileSet, fixes []diag.Fix, opts PrettyOpts) {
	for idx, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			fmt.Fprintf(w, "  %s %s (unavailable: %v)\n", p.fix.Sprintf("fix #%d:", idx+1), f.Title, err)
			continue
		}
		meta := []string{resolved.Applicability.String()}
		if resolved.ID != "" {
			meta = append([]string{"id=" + resolved.ID}, meta...)
		}
		if resolved.IsPreferred {
			meta = append(meta, "preferred")
		}
		fmt.Fprintf(w, "  %s %s [%s]\n", p.fix.Sprintf("fix #%d:", idx+1), resolved.Title, strings.Join(meta, ", "))

		for _, edit := range resolved.Edits {
			ef := fs.Get(edit.Span.File)
			if ef == nil {
				continue
			}
			es, ee := fs.Resolve(edit.Span)
			fmt.Fprintf(w, "    edit %s:%d:%d-%d:%d apply=%q\n", formatPath(fs, ef, opts.PathMode), es.Line, es.Col, ee.Line, ee.Col, edit.NewText)

			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixEditPreview(fs, edit)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, line := range preview.before {
				fmt.Fprintf(w, "      %s\n", p.removed.Sprint("- "+line))
			}
			for _, line := range preview.after {
				fmt.Fprintf(w, "      %s\n", p.added.Sprint("+ "+line))
			}
		}
	}
}

func displayLine(line string, width uint8) string {
	line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "...")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth)))
}

// prefixBytes returns the first n bytes of line, clamped to its length.
func prefixBytes(line string, n uint32) string {
	if int(n) > len(line) {
		return line
	}
	return line[:n]
}
