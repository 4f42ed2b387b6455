// Package textdiff renders unified diffs of fixed files.
package textdiff

import "github.com/pmezard/go-difflib/difflib"

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified generates a unified diff between oldText and newText.
// Returns an empty string if the inputs are identical.
// Carriage returns are kept, so CRLF files diff line by line like LF files.
func Unified(filename string, oldText, newText []byte) (string, error) {
	if string(oldText) == string(newText) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(oldText)),
		B:        splitLines(string(newText)),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  contextLines,
	})
}

// splitLines splits text after each line break: "\n", "\r\n" or a lone "\r".
// Every line is returned ending in "\n" so hunks stay line-aligned; carriage
// returns are kept in front of it.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			lines = append(lines, s[start:i+1]+"\n")
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:]+"\n")
	}
	return lines
}
