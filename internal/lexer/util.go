package lexer

import (
	"unicode"
	"unicode/utf8"
)

const utf8RuneSelf = utf8.RuneSelf

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isIdentStartRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentContinueRune(r rune) bool {
	if isIdentStartRune(r) || unicode.IsDigit(r) {
		return true
	}
	// ZWNJ, ZWJ
	if r == 0x200C || r == 0x200D {
		return true
	}
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)
}

// peekRune декодирует руну в текущей позиции.
func (lx *Lexer) peekRune() (rune, uint32) {
	r, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	return r, uint32(sz) //nolint:gosec // size of a single rune
}

func (lx *Lexer) bumpN(n uint32) {
	for range n {
		lx.cursor.Bump()
	}
}
