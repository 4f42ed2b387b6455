package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/lexer"
)

// Config is the contents of emptylines.toml or .emptylines.yaml.
type Config struct {
	Rule   RuleConfig        `toml:"rule" yaml:"rule"`
	Files  FilesConfig       `toml:"files" yaml:"files"`
	Syntax map[string]string `toml:"syntax" yaml:"syntax"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Root anchors the file globs. It is the directory holding Path.
	Root string `toml:"-" yaml:"-"`
}

type RuleConfig struct {
	// Threshold is the minimum number of blank lines that triggers a report.
	Threshold int    `toml:"threshold" yaml:"threshold"`
	Severity  string `toml:"severity" yaml:"severity"`
}

type FilesConfig struct {
	Include          []string `toml:"include" yaml:"include"`
	Exclude          []string `toml:"exclude" yaml:"exclude"`
	GeneratedGlobs   []string `toml:"generated_globs" yaml:"generated_globs"`
	GeneratedMarkers []string `toml:"generated_markers" yaml:"generated_markers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	exts := lexer.DefaultExtensions()
	include := make([]string, 0, len(exts))
	for ext := range exts {
		include = append(include, "*"+ext)
	}
	sort.Strings(include)
	return &Config{
		Rule: RuleConfig{
			Threshold: emptylines.DefaultThreshold,
			Severity:  "error",
		},
		Files: FilesConfig{
			Include: include,
			Exclude: []string{".git/**", "vendor/**", "node_modules/**", "bin/**", "obj/**"},
			GeneratedGlobs: []string{
				"*.g.cs", "*.g.i.cs", "*.designer.cs", "*.generated.cs",
				"*.AssemblyInfo.cs", "*.pb.go", "*_string.go",
			},
			GeneratedMarkers: []string{"<auto-generated", "<autogenerated", "Code generated", "DO NOT EDIT"},
		},
		Syntax: map[string]string{},
	}
}

// Validate checks the rule settings and syntax names.
func (c *Config) Validate() error {
	if _, err := c.RuleOptions(""); err != nil {
		return err
	}
	for ext, name := range c.Syntax {
		if _, err := lexer.LookupSyntax(name); err != nil {
			return fmt.Errorf("syntax for %q: %w", ext, err)
		}
	}
	for _, pattern := range c.allGlobs() {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("bad glob %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

func (c *Config) allGlobs() []string {
	out := append([]string(nil), c.Files.Include...)
	out = append(out, c.Files.Exclude...)
	return append(out, c.Files.GeneratedGlobs...)
}

// RuleOptions builds the rule options for a file at filePath.
func (c *Config) RuleOptions(filePath string) (emptylines.Options, error) {
	sev, err := diag.ParseSeverity(c.Rule.Severity)
	if err != nil {
		return emptylines.Options{}, err
	}
	syntax, err := c.SyntaxFor(filePath)
	if err != nil {
		return emptylines.Options{}, err
	}
	opts := emptylines.Options{
		Threshold: c.Rule.Threshold,
		Severity:  sev,
		Syntax:    syntax,
	}
	if err := opts.Validate(); err != nil {
		return emptylines.Options{}, err
	}
	return opts, nil
}

// SyntaxFor picks the lexer preset for filePath, honouring the [syntax] map.
func (c *Config) SyntaxFor(filePath string) (*lexer.Syntax, error) {
	return lexer.SyntaxForPath(filePath, c.Syntax)
}

// Included reports whether a path relative to Root should be analysed.
func (c *Config) Included(rel string) bool {
	rel = normalize(rel)
	if matchAny(c.Files.Exclude, rel) {
		return false
	}
	if len(c.Files.Include) == 0 {
		return true
	}
	return matchAny(c.Files.Include, rel)
}

// Excluded reports whether a directory relative to Root is pruned from walks.
func (c *Config) Excluded(relDir string) bool {
	relDir = normalize(relDir)
	return matchAny(c.Files.Exclude, relDir)
}

// markerWindow bounds how far into a file generated markers are searched.
const markerWindow = 4096

// IsGenerated reports whether the file is generated code, either by name or
// by a marker comment near the top of content.
func (c *Config) IsGenerated(rel string, content []byte) bool {
	if matchAny(c.Files.GeneratedGlobs, normalize(rel)) {
		return true
	}
	head := content[:min(len(content), markerWindow)]
	for _, marker := range c.Files.GeneratedMarkers {
		if marker != "" && bytes.Contains(head, []byte(marker)) {
			return true
		}
	}
	return false
}

// Fingerprint identifies the settings that change analysis results.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "threshold=%d\nseverity=%s\n", c.Rule.Threshold, strings.ToLower(c.Rule.Severity))
	keys := make([]string, 0, len(c.Syntax))
	for k := range c.Syntax {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "syntax %s=%s\n", k, c.Syntax[k])
	}
	for _, m := range c.Files.GeneratedMarkers {
		fmt.Fprintf(h, "marker %s\n", m)
	}
	for _, g := range c.Files.GeneratedGlobs {
		fmt.Fprintf(h, "generated %s\n", g)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize turns a path into the NFC, slash separated form globs are matched
// against, so decomposed file names from some file systems still match.
func normalize(p string) string {
	p = norm.NFC.String(filepath.ToSlash(p))
	return strings.TrimPrefix(p, "./")
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matchGlob(norm.NFC.String(pattern), rel) {
			return true
		}
	}
	return false
}

// matchGlob matches rel against pattern. Patterns without a slash match the
// base name anywhere; others are anchored at the root and may use "**" for
// any number of directories.
func matchGlob(pattern, rel string) bool {
	rel = strings.TrimSuffix(rel, "/")
	if !strings.Contains(pattern, "/") {
		rel = path.Base(rel)
	}
	ok, _ := doublestar.Match(pattern, rel)
	return ok
}
