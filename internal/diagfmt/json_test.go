package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"indentguard/internal/diag"
	"indentguard/internal/fix"
	"indentguard/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte("if (a) {\n  b();\n}\n"))

	bag := diag.NewBag(10)
	bag.Add(indentDiag(fileID))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || output.Errors != 1 || output.Fixable != 1 {
		t.Errorf("unexpected totals: count=%d errors=%d fixable=%d", output.Count, output.Errors, output.Fixable)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "IND3001" {
		t.Errorf("Expected code=IND3001, got %s", d.Code)
	}
	if d.Line != 2 || d.Column != 1 {
		t.Errorf("Expected 2:1, got %d:%d", d.Line, d.Column)
	}
	if d.Location.File != "test.js" {
		t.Errorf("Expected file=test.js, got %s", d.Location.File)
	}
	if d.Location.StartByte != 9 || d.Location.EndByte != 11 {
		t.Errorf("Expected bytes 9-11, got %d-%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 1 {
		t.Errorf("Expected start 2:1, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if d.Indent == nil || d.Indent.Expected != 4 || d.Indent.ActualSpaces != 2 || d.Indent.ActualTabs != 0 {
		t.Errorf("unexpected indent detail: %+v", d.Indent)
	}
	if !d.Fixable {
		t.Error("Expected fixable=true")
	}
	if len(d.Fixes) != 0 {
		t.Error("fixes must be omitted unless requested")
	}
}

// TestJSONWithNotesAndFixes проверяет JSON с заметками и исправлениями
func TestJSONWithNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte("{\n      x();\n}\n"))

	d := diag.NewError(diag.IndentMismatch, source.Span{File: fileID, Start: 2, End: 8}, "Expected indentation of 4 spaces but found 6.")
	d.Loc = source.LineCol{Line: 2, Col: 1}
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 1}, "block starts here")
	d.Fixes = []diag.Fix{fix.New("fix indentation", []diag.TextEdit{fix.Delete(2, 4)}, fix.WithID("IND3001-2"))}

	bag := diag.NewBag(10)
	bag.Add(d)

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	got := output.Diagnostics[0]

	if len(got.Notes) != 1 || got.Notes[0].Message != "block starts here" {
		t.Fatalf("unexpected notes: %+v", got.Notes)
	}
	if len(got.Fixes) != 1 {
		t.Fatalf("Expected 1 fix, got %d", len(got.Fixes))
	}
	f := got.Fixes[0]
	if f.ID != "IND3001-2" || f.Title != "fix indentation" {
		t.Errorf("unexpected fix: %+v", f)
	}
	if len(f.Edits) != 1 {
		t.Fatalf("Expected 1 edit, got %d", len(f.Edits))
	}
	edit := f.Edits[0]
	if edit.NewText != "" || edit.OldText != "  " {
		t.Errorf("unexpected edit texts: new=%q old=%q", edit.NewText, edit.OldText)
	}
	if edit.Location.StartByte != 2 || edit.Location.EndByte != 4 {
		t.Errorf("unexpected edit location: %+v", edit.Location)
	}
	if len(edit.BeforeLines) != 1 || edit.BeforeLines[0] != "      x();" {
		t.Errorf("unexpected before lines: %q", edit.BeforeLines)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "    x();" {
		t.Errorf("unexpected after lines: %q", edit.AfterLines)
	}
}

// TestJSONWithoutPositions проверяет JSON без позиций строк/колонок
func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte("var x = ;"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.SynExpectExpression, source.Span{File: fileID, Start: 8, End: 9}, "expected expression"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	d := output.Diagnostics[0]
	if d.Location.StartLine != 0 || d.Location.StartCol != 0 {
		t.Errorf("Expected no positions, got %+v", d.Location)
	}
	// line/column верхнего уровня выводятся всегда
	if d.Line != 1 || d.Column != 9 {
		t.Errorf("Expected 1:9, got %d:%d", d.Line, d.Column)
	}
	if output.Errors != 0 || d.Fixable {
		t.Errorf("warning without fix counted: %+v", output)
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("m.js", []byte("a\nb\nc\n"))
	bag := diag.NewBag(0)
	for i := uint32(0); i < 3; i++ {
		bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: fileID, Start: 2 * i, End: 2*i + 1}, "unexpected"))
	}

	output, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", output.Count)
	}
	if output.Diagnostics[1].Line != 2 {
		t.Errorf("Expected second diagnostic on line 2, got %d", output.Diagnostics[1].Line)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatTokensJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("empty token list rendered as %q", buf.String())
	}
}
