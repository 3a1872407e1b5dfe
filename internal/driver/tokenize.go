package driver

import (
	"sort"

	"indentguard/internal/diag"
	"indentguard/internal/lexer"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token // code tokens and comments in source order, EOF last
	Bag     *diag.Bag
}

// Tokenize lexes one file from disk.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenizeFile(fs, fileID, maxDiagnostics), nil
}

// TokenizeSource lexes in-memory text.
func TokenizeSource(name string, content []byte, maxDiagnostics int) *TokenizeResult {
	fs := source.NewFileSet()
	return tokenizeFile(fs, fs.AddVirtual(name, content), maxDiagnostics)
}

func tokenizeFile(fs *source.FileSet, id source.FileID, maxDiagnostics int) *TokenizeResult {
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)
	toks, comments := lexer.Tokenize(file, lexer.Options{
		Reporter: diag.BagReporter{Bag: bag, File: file},
	})

	// комментарии вливаем по позиции, EOF остаётся последним
	all := make([]token.Token, 0, len(toks)+len(comments))
	all = append(all, toks...)
	all = append(all, comments...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Kind == token.EOF || all[j].Kind == token.EOF {
			return all[j].Kind == token.EOF && all[i].Kind != token.EOF
		}
		return all[i].Span.Start < all[j].Span.Start
	})
	bag.Sort()

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  all,
		Bag:     bag,
	}
}
