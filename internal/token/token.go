package token

import (
	"indentguard/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind  Kind
	Span  source.Span
	Start source.LineCol
	End   source.LineCol
	Text  string
}

// Is reports whether the token is a punctuator or keyword spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == s
}

// IsPunct reports whether the token is the punctuator s.
func (t Token) IsPunct(s string) bool {
	return t.Kind == Punct && t.Text == s
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

// IsIdent reports whether the token is an identifier spelled name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && t.Text == name
}

// IsLiteral reports whether the token is a string, number, regexp or template chunk.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case String, Numeric, RegExp, Template:
		return true
	default:
		return false
	}
}

// MultiLine reports whether the token spans more than one line.
func (t Token) MultiLine() bool {
	return t.End.Line > t.Start.Line
}

// OpensSubstitution reports whether a template chunk ends with an unescaped "${".
func (t Token) OpensSubstitution() bool {
	n := len(t.Text)
	if t.Kind != Template || n < 2 || t.Text[n-2:] != "${" {
		return false
	}
	slashes := 0
	for i := n - 3; i >= 0 && t.Text[i] == '\\'; i-- {
		slashes++
	}
	return slashes%2 == 0
}
