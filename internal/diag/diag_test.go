package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptylines/internal/source"
	"emptylines/internal/token"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/src/sample.cs", []byte("a\nb\n"), 0)
	vendorFile := fs.Add("/workspace/vendor/helper.cs", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     LintEmptyLines,
			Message:  "first line\r\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: vendorFile, Start: 0, End: 0}, Msg: "vendored"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     LexUnterminatedString,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error LNT9001 src/sample.cs:1:1 first line second\n" +
		"note LNT9001 src/sample.cs:2:1 note line\n" +
		"warning LEX1001 src/sample.cs:2:1 another\n" +
		"note LNT9001 vendor/helper.cs:1:1 vendored"
	assert.Equal(t, expected, FormatShortDiagnostics(diags, fs, true))

	withoutNotes := FormatShortDiagnostics(diags, fs, false)
	assert.Equal(t, "error LNT9001 src/sample.cs:1:1 first line second\n"+
		"warning LEX1001 src/sample.cs:2:1 another", withoutNotes)

	assert.Empty(t, FormatShortDiagnostics(nil, fs, true))
}

func TestBagLimitSort(t *testing.T) {
	bag := NewBag(3)
	mk := func(start uint32, sev Severity) Diagnostic {
		return New(sev, LintEmptyLines, source.Span{Start: start, End: start + 1}, "m")
	}
	assert.True(t, bag.Add(mk(5, SevError)))
	assert.True(t, bag.Add(mk(1, SevWarning)))
	assert.True(t, bag.Add(mk(5, SevError)))
	assert.False(t, bag.Add(mk(9, SevError)))

	bag.Sort()
	assert.Equal(t, uint32(1), bag.Items()[0].Primary.Start)
	assert.Equal(t, 3, bag.Len())
	assert.True(t, bag.HasErrors())
	assert.True(t, bag.HasWarnings())

	unlimited := NewBag(0)
	for i := range 300 {
		require.True(t, unlimited.Add(mk(uint32(i), SevInfo)))
	}
	assert.False(t, unlimited.HasWarnings())
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	sp := source.Span{Start: 1, End: 2}

	b := NewReportBuilder(BagReporter{Bag: bag}, SevError, LintEmptyLines, sp, "Remove multiple sequential empty lines").
		WithNote(source.Span{Start: 3, End: 4}, "anchor").
		WithFixSuggestion(Fix{
			Title:       "Remove redundant empty lines",
			IsPreferred: true,
			Thunk: FixThunkFunc(func(FixBuildContext) (Fix, error) {
				return Fix{Edits: []TextEdit{{Span: sp}}}, nil
			}),
		})
	b.Emit()
	b.Emit()

	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Len(t, d.Notes, 1)
	require.Len(t, d.Fixes, 1)
	assert.True(t, d.Fixes[0].IsPreferred)
}

func TestMaterializeFixes(t *testing.T) {
	boom := errors.New("boom")
	ok := Fix{
		ID:    "keep-id",
		Title: "outer",
		Thunk: FixThunkFunc(func(FixBuildContext) (Fix, error) {
			return Fix{Title: "inner", Edits: []TextEdit{{NewText: "x"}}}, nil
		}),
	}
	resolved, err := MaterializeFixes(FixBuildContext{}, []Fix{ok})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "outer", resolved[0].Title)
	assert.Equal(t, "keep-id", resolved[0].ID)
	assert.Nil(t, resolved[0].Thunk)

	failing := Fix{Title: "f", Thunk: FixThunkFunc(func(FixBuildContext) (Fix, error) { return Fix{}, boom })}
	_, err = MaterializeFixes(FixBuildContext{}, []Fix{ok, failing})
	assert.ErrorIs(t, err, boom)

	_, err = Fix{Title: "empty"}.Resolve(FixBuildContext{})
	assert.ErrorIs(t, err, ErrFixNotMaterialized)
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "LNT9001", LintEmptyLines.ID())
	assert.Equal(t, "empty-lines-redundant", LintEmptyLines.Name())
	assert.Equal(t, "Design", LintEmptyLines.Category())
	assert.Equal(t, "IO4001", IOLoadFileError.Name())

	assert.Equal(t, "Multiple redundant empty lines", LintEmptyLines.Title())
	assert.Equal(t, "E0000", Code(7).ID())

	sev, err := ParseSeverity("Warning")
	require.NoError(t, err)
	assert.Equal(t, SevWarning, sev)
	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestTokenCacheLexesOncePerVersion(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.cs", []byte("A;"))
	revised := fs.Revise(id, []byte("B;"))

	calls := 0
	lex := func() []token.Token {
		calls++
		return []token.Token{{Kind: token.EOF}}
	}

	ctx := NewFixBuildContext(fs)
	ctx.Tokens.Tokens(id, "csharp", lex)
	ctx.Tokens.Tokens(id, "csharp", lex)
	assert.Equal(t, 1, calls)

	ctx.Tokens.Tokens(revised, "csharp", lex)
	ctx.Tokens.Tokens(id, "c", lex)
	assert.Equal(t, 3, calls)

	var uncached *TokenCache
	uncached.Tokens(id, "csharp", lex)
	uncached.Tokens(id, "csharp", lex)
	assert.Equal(t, 5, calls)
}
