package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexUnterminatedString       Code = 1001
	LexUnterminatedBlockComment Code = 1002

	// io
	IOLoadFileError Code = 4001

	// style rules
	LintEmptyLines Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		IOLoadFileError:             "I/O load file error",
		LintEmptyLines:              "Multiple redundant empty lines",
	}

	// codeName is the stable rule identifier used in config and SARIF output.
	codeName = map[Code]string{
		LintEmptyLines: "empty-lines-redundant",
	}

	codeCategory = map[Code]string{
		LintEmptyLines: "Design",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("LNT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// Name returns the rule identifier, falling back to ID for non-rule codes.
func (c Code) Name() string {
	if name, ok := codeName[c]; ok {
		return name
	}
	return c.ID()
}

// Category groups rule codes; empty for non-rule codes.
func (c Code) Category() string {
	return codeCategory[c]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
