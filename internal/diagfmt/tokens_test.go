package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/lexer"
	"emptylines/internal/source"
)

func TestFormatTokensJSONIncludesTrivia(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.cs", []byte("A;\n\nB;")))
	tokens := lexer.Tokenize(file, lexer.Options{Syntax: lexer.SyntaxCSharp})

	var buf bytes.Buffer
	require.NoError(t, FormatTokensJSON(&buf, tokens))

	var out []TokenOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 5)
	assert.Equal(t, "Ident", out[2].Kind)
	assert.Equal(t, "B", out[2].Text)
	require.Len(t, out[2].Leading, 2)
	assert.Equal(t, "EndOfLine", out[2].Leading[0].Kind)
	assert.Equal(t, "\n", out[2].Leading[0].Text)
	assert.Equal(t, "EOF", out[4].Kind)
}

func TestFormatTokensPretty(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.cs", []byte("A;\n\nB;")))
	tokens := lexer.Tokenize(file, lexer.Options{Syntax: lexer.SyntaxCSharp})

	var summary bytes.Buffer
	require.NoError(t, FormatTokensPretty(&summary, tokens, fs, false))
	assert.Contains(t, summary.String(), `"B" at 3:1-3:2 (leading: EndOfLine, EndOfLine)`)

	var detail bytes.Buffer
	require.NoError(t, FormatTokensPretty(&detail, tokens, fs, true))
	assert.Contains(t, detail.String(), `EndOfLine  "\n" [3,4)`)
}
