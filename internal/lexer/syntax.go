package lexer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// BlockComment describes a delimited comment form.
type BlockComment struct {
	Open   string
	Close  string
	Nested bool
}

// Quote describes one string or character literal form.
type Quote struct {
	Open  string
	Close string
	// Escape is the escape byte; 0 disables escapes.
	Escape byte
	// DoubledClose treats a repeated Close as an escaped quote ("" in C# verbatim and SQL).
	DoubledClose bool
	// Multiline allows line breaks inside the literal.
	Multiline bool
	// Char marks character literals.
	Char bool
}

// Syntax is the per-language configuration of comment, directive and string forms.
type Syntax struct {
	Name          string
	LineComments  []string
	BlockComments []BlockComment
	// Directives start at the first non-blank column of a line and run to its end.
	Directives []string
	// LineContinuation lets a directive continue past a backslash-newline.
	LineContinuation bool
	Quotes           []Quote
	// Shebang treats "#!" at offset zero as Other trivia.
	Shebang bool
}

var (
	// SyntaxC covers C, C++, Objective-C and other cpp-preprocessed sources.
	SyntaxC = &Syntax{
		Name:             "c",
		LineComments:     []string{"//"},
		BlockComments:    []BlockComment{{Open: "/*", Close: "*/"}},
		Directives:       []string{"#"},
		LineContinuation: true,
		Quotes: []Quote{
			{Open: `"`, Close: `"`, Escape: '\\'},
			{Open: `'`, Close: `'`, Escape: '\\', Char: true},
		},
	}

	// SyntaxCSharp covers C#: #region/#if directives, verbatim, interpolated and raw strings.
	SyntaxCSharp = &Syntax{
		Name:          "csharp",
		LineComments:  []string{"//"},
		BlockComments: []BlockComment{{Open: "/*", Close: "*/"}},
		Directives:    []string{"#"},
		Quotes: []Quote{
			{Open: `$"""`, Close: `"""`, Multiline: true},
			{Open: `"""`, Close: `"""`, Multiline: true},
			{Open: `$@"`, Close: `"`, DoubledClose: true, Multiline: true},
			{Open: `@$"`, Close: `"`, DoubledClose: true, Multiline: true},
			{Open: `@"`, Close: `"`, DoubledClose: true, Multiline: true},
			{Open: `$"`, Close: `"`, Escape: '\\'},
			{Open: `"`, Close: `"`, Escape: '\\'},
			{Open: `'`, Close: `'`, Escape: '\\', Char: true},
		},
	}

	// SyntaxGo covers Go sources.
	SyntaxGo = &Syntax{
		Name:          "go",
		LineComments:  []string{"//"},
		BlockComments: []BlockComment{{Open: "/*", Close: "*/"}},
		Quotes: []Quote{
			{Open: "`", Close: "`", Multiline: true},
			{Open: `"`, Close: `"`, Escape: '\\'},
			{Open: `'`, Close: `'`, Escape: '\\', Char: true},
		},
	}

	// SyntaxHash covers shell, Python, TOML, YAML and other '#'-commented text.
	SyntaxHash = &Syntax{
		Name:         "hash",
		LineComments: []string{"#"},
		Shebang:      true,
		Quotes: []Quote{
			{Open: `"""`, Close: `"""`, Escape: '\\', Multiline: true},
			{Open: `'''`, Close: `'''`, Escape: '\\', Multiline: true},
			{Open: `"`, Close: `"`, Escape: '\\'},
			{Open: `'`, Close: `'`, Escape: '\\'},
		},
	}

	// SyntaxSQL covers SQL dialects.
	SyntaxSQL = &Syntax{
		Name:          "sql",
		LineComments:  []string{"--"},
		BlockComments: []BlockComment{{Open: "/*", Close: "*/"}},
		Quotes: []Quote{
			{Open: `'`, Close: `'`, DoubledClose: true, Multiline: true},
			{Open: `"`, Close: `"`, DoubledClose: true},
		},
	}
)

var syntaxes = map[string]*Syntax{
	SyntaxC.Name:      SyntaxC,
	SyntaxCSharp.Name: SyntaxCSharp,
	SyntaxGo.Name:     SyntaxGo,
	SyntaxHash.Name:   SyntaxHash,
	SyntaxSQL.Name:    SyntaxSQL,
}

// extension -> preset name
var defaultExtensions = map[string]string{
	".c":     "c",
	".h":     "c",
	".cc":    "c",
	".cpp":   "c",
	".hpp":   "c",
	".m":     "c",
	".java":  "c",
	".js":    "c",
	".ts":    "c",
	".kt":    "c",
	".swift": "c",
	".rs":    "c",
	".cs":    "csharp",
	".go":    "go",
	".py":    "hash",
	".sh":    "hash",
	".rb":    "hash",
	".toml":  "hash",
	".yaml":  "hash",
	".yml":   "hash",
	".sql":   "sql",
}

// LookupSyntax returns a preset by name.
func LookupSyntax(name string) (*Syntax, error) {
	if s, ok := syntaxes[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown syntax %q (known: %s)", name, strings.Join(SyntaxNames(), ", "))
}

// SyntaxNames lists preset names in sorted order.
func SyntaxNames() []string {
	names := make([]string, 0, len(syntaxes))
	for name := range syntaxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultExtensions returns a copy of the built-in extension table.
func DefaultExtensions() map[string]string {
	out := make(map[string]string, len(defaultExtensions))
	for ext, name := range defaultExtensions {
		out[ext] = name
	}
	return out
}

// SyntaxForPath picks a preset by file extension. overrides maps extensions
// (with leading dot) to preset names and wins over the built-in table.
// Unknown extensions fall back to SyntaxC.
func SyntaxForPath(path string, overrides map[string]string) (*Syntax, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := overrides[ext]; ok {
		return LookupSyntax(name)
	}
	if name, ok := defaultExtensions[ext]; ok {
		return LookupSyntax(name)
	}
	return SyntaxC, nil
}
