package driver

import (
	"emptylines/internal/config"
	"emptylines/internal/diag"
	"emptylines/internal/lexer"
	"emptylines/internal/source"
	"emptylines/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one file with the syntax preset cfg selects for it.
func Tokenize(path string, cfg *config.Config, maxDiagnostics int) (*TokenizeResult, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	syntax, err := cfg.SyntaxFor(path)
	if err != nil {
		return nil, err
	}

	fs := source.NewFileSetWithBase(cfg.Root)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.Tokenize(file, lexer.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Syntax:   syntax,
	})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
