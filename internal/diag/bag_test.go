package diag

import (
	"testing"

	"indentguard/internal/source"
)

func TestBagSortByLocation(t *testing.T) {
	b := NewBag(0)
	b.Add(Diagnostic{Code: IndentMismatch, Loc: source.LineCol{Line: 3, Col: 1}, Primary: source.Span{Start: 20}})
	b.Add(Diagnostic{Code: IndentMismatch, Loc: source.LineCol{Line: 1, Col: 5}, Primary: source.Span{Start: 4}})
	b.Add(Diagnostic{Code: SynUnexpectedToken, Severity: SevError, Loc: source.LineCol{Line: 1, Col: 5}, Primary: source.Span{Start: 4}})
	b.Sort()

	items := b.Items()
	if items[0].Code != SynUnexpectedToken {
		t.Errorf("errors should sort first on equal positions, got %s", items[0].Code.ID())
	}
	if items[2].Loc.Line != 3 {
		t.Errorf("last item line = %d, want 3", items[2].Loc.Line)
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{}) || b.Add(Diagnostic{}) {
		t.Fatal("bag should accept exactly one diagnostic")
	}
	other := NewBag(0)
	other.Add(Diagnostic{Severity: SevError})
	b.Merge(other)
	if b.Len() != 2 || !b.HasErrors() {
		t.Errorf("merge: len=%d hasErrors=%v", b.Len(), b.HasErrors())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 3, End: 4}
	r.Report(SynUnexpectedToken, SevError, sp, "unexpected ')'", nil, nil)
	r.Report(SynUnexpectedToken, SevError, sp, "unexpected ')' again", nil, nil)
	r.Report(SynExpectExpression, SevError, sp, "expected expression", nil, nil)
	if bag.Len() != 2 {
		t.Errorf("bag len = %d, want 2", bag.Len())
	}
}

func TestBagReporterResolvesLoc(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.js", []byte("a;\n  b;\n")))
	bag := NewBag(0)
	ReportError(BagReporter{Bag: bag, File: file}, SynUnexpectedToken, source.Span{Start: 5, End: 6}, "x").
		WithFix("drop", TextEdit{Start: 5, End: 6}).
		Emit()

	d := bag.Items()[0]
	if d.Loc != (source.LineCol{Line: 2, Col: 3}) {
		t.Errorf("Loc = %+v", d.Loc)
	}
	if !d.HasFix() || len(d.Edits()) != 1 {
		t.Errorf("expected one edit, got %+v", d.Fixes)
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/work")
	id := fs.Add("/work/src/a.js", []byte("x\n"), 0)
	out := FormatShortDiagnostics([]Diagnostic{
		{Code: IndentMismatch, Message: "second", Primary: source.Span{File: id}, Loc: source.LineCol{Line: 2, Col: 1}},
		{Code: IndentMismatch, Message: "first\ndetails", Primary: source.Span{File: id}, Loc: source.LineCol{Line: 1, Col: 1}},
	}, fs)
	want := "src/a.js:1:1: IND3001 first\nsrc/a.js:2:1: IND3001 second\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}
