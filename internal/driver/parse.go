package driver

import (
	"fortio.org/safecast"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/parser"
	"indentguard/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tree    *ast.Tree
	Bag     *diag.Bag
}

// Parse parses one file from disk.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	return parseFile(fs, fileID, maxDiagnostics)
}

// ParseSource parses in-memory text.
func ParseSource(name string, content []byte, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	return parseFile(fs, fs.AddVirtual(name, content), maxDiagnostics)
}

func parseFile(fs *source.FileSet, id source.FileID, maxDiagnostics int) (*ParseResult, error) {
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)

	var maxErrors uint
	if maxDiagnostics > 0 {
		var err error
		maxErrors, err = safecast.Conv[uint](maxDiagnostics)
		if err != nil {
			return nil, err
		}
	}

	result := parser.ParseFile(file, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag, File: file},
		MaxErrors: maxErrors,
	})
	bag.Sort()

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Tree:    result.Tree,
		Bag:     bag,
	}, nil
}
