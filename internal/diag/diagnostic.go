package diag

import (
	"indentguard/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the half-open byte range [Start, End) with NewText.
type TextEdit struct {
	Start   int
	End     int
	NewText string
}

type Fix struct {
	ID    string
	Title string
	Edits []TextEdit
}

// IndentDetail carries the numbers behind an indentation finding.
type IndentDetail struct {
	Expected     int // in indent characters
	ActualSpaces int
	ActualTabs   int
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Loc      source.LineCol
	Notes    []Note
	Fixes    []Fix
	Indent   *IndentDetail
}

// HasFix reports whether any fix carries at least one edit.
func (d *Diagnostic) HasFix() bool {
	for i := range d.Fixes {
		if len(d.Fixes[i].Edits) > 0 {
			return true
		}
	}
	return false
}

// Edits flattens the edits of every fix, in order.
func (d *Diagnostic) Edits() []TextEdit {
	var out []TextEdit
	for i := range d.Fixes {
		out = append(out, d.Fixes[i].Edits...)
	}
	return out
}
