package lexer

import (
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// scanIdentOrKeyword сканирует идентификатор (ASCII, Unicode или с \uXXXX).
// Слово с escape-последовательностью никогда не считается ключевым.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	escaped := false
	first := true

loop:
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\':
			if !lx.scanIdentEscape() {
				break loop
			}
			escaped = true
		case b < utf8RuneSelf:
			if first && !isIdentStartByte(b) || !first && !isIdentContinueByte(b) {
				break loop
			}
			lx.cursor.Bump()
		default:
			r, sz := lx.peekRune()
			if first && !isIdentStartRune(r) || !first && !isIdentContinueRune(r) {
				break loop
			}
			lx.bumpN(sz)
		}
		first = false
	}

	if first {
		// ни одного символа идентификатора: неизвестный символ
		_, sz := lx.peekRune()
		if sz == 0 {
			sz = 1
		}
		lx.bumpN(sz)
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexUnknownChar, tok.Span, "unexpected character "+quoteText(tok.Text))
		return tok
	}

	tok := lx.emit(token.Ident, start)
	if !escaped && token.LookupKeyword(tok.Text) {
		tok.Kind = token.Keyword
	}
	return tok
}

// scanIdentEscape съедает \uXXXX или \u{X...}.
func (lx *Lexer) scanIdentEscape() bool {
	if lx.cursor.PeekAt(1) != 'u' {
		return false
	}
	mark := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	if lx.cursor.Eat('{') {
		n := 0
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
			n++
		}
		if n > 0 && lx.cursor.Eat('}') {
			return true
		}
		lx.cursor.Reset(mark)
		return false
	}
	for range 4 {
		if !isHex(lx.cursor.Peek()) {
			lx.cursor.Reset(mark)
			return false
		}
		lx.cursor.Bump()
	}
	return true
}

func quoteText(s string) string {
	return "'" + s + "'"
}
