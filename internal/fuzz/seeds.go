package fuzztests

import (
	"testing"

	"emptylines/internal/lexer"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxSeedBytes = 64 << 10
)

var seedInputs = []string{
	"",
	"\n\n\n",
	"A;\n\n\nB;",
	"A;\r\n\r\n\r\n\r\nB;\r\n",
	"A;\r\r\rB;",
	"A;\n  \n\t\n\nB;\n\n\n",
	"X;\n\n\n// c\n\n\nY;",
	"class C {\n\n\n    /* doc */\n\n\n    void M() { }\n}\n",
	"#region R\n\n\n#endregion\n",
	"s = \"a\n\n\nb\";\n\n\nt;",
	"`raw\n\n\n`\n\n\nx",
	"#!/bin/sh\n\n\necho hi\n",
	"-- sql\n\n\nSELECT 1;\n",
	"a \n \n\n b",
	"\xEF\xBB\xBFbom kept verbatim\n\n\n",
	"\xff\xfe invalid bytes \n\n\n",
	"'unterminated\n\n\n",
	"/* unterminated block\n\n\n",
}

// syntaxes is indexed by the fuzzer's selector byte.
var syntaxes = []*lexer.Syntax{
	lexer.SyntaxC,
	lexer.SyntaxCSharp,
	lexer.SyntaxGo,
	lexer.SyntaxHash,
	lexer.SyntaxSQL,
}

func pickSyntax(sel uint8) *lexer.Syntax {
	return syntaxes[int(sel)%len(syntaxes)]
}

func addCorpusSeeds(f *testing.F) {
	for _, in := range seedInputs {
		for i := range syntaxes {
			f.Add(clampSeed([]byte(in)), uint8(i))
		}
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
