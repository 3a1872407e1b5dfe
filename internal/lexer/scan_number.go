package lexer

import (
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// scanNumber: 0x.., 0o.., 0b.., десятичные с дробью и экспонентой.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	bad := false

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			digit = isHex
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		}
		if digit != nil {
			lx.cursor.Bump()
			lx.cursor.Bump()
			n := 0
			for digit(lx.cursor.Peek()) {
				lx.cursor.Bump()
				n++
			}
			bad = n == 0
			return lx.finishNumber(start, bad)
		}
	}

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		n := 0
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
			n++
		}
		bad = n == 0
	}
	return lx.finishNumber(start, bad)
}

// finishNumber: число не может сразу продолжаться идентификатором (3in, 0x1g).
func (lx *Lexer) finishNumber(start Mark, bad bool) token.Token {
	for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
		bad = true
	}
	tok := lx.emit(token.Numeric, start)
	if bad {
		lx.errLex(diag.LexBadNumber, tok.Span, "invalid numeric literal "+quoteText(tok.Text))
	}
	return tok
}
