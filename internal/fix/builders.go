package fix

import (
	"indentguard/internal/diag"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// Insert returns an edit that inserts text at offset at.
func Insert(at int, text string) diag.TextEdit {
	return diag.TextEdit{Start: at, End: at, NewText: text}
}

// Delete returns an edit that removes [start, end).
func Delete(start, end int) diag.TextEdit {
	return diag.TextEdit{Start: start, End: end}
}

// Replace returns an edit that replaces [start, end) with text.
func Replace(start, end int, text string) diag.TextEdit {
	return diag.TextEdit{Start: start, End: end, NewText: text}
}

// RemoveBOM returns the edit that strips a leading byte order mark.
func RemoveBOM() diag.TextEdit {
	return diag.TextEdit{Start: -1, End: 0}
}

// New builds a fix made of edits.
func New(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title: title,
		Edits: edits,
	}
	return applyOptions(fix, opts)
}
