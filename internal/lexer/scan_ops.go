package lexer

import (
	"bytes"

	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// punctuators упорядочены от длинных к коротким: берём самое длинное совпадение.
var punctuators = [...]string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", "<<", ">>", "**",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/", "%",
	"&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	rest := lx.file.Content[lx.cursor.Off:]
	for _, p := range punctuators {
		if bytes.HasPrefix(rest, []byte(p)) {
			lx.bumpN(uint32(len(p))) //nolint:gosec // punctuators are at most 4 bytes
			return lx.emit(token.Punct, start)
		}
	}

	_, sz := lx.peekRune()
	if sz == 0 {
		sz = 1
	}
	lx.bumpN(sz)
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unexpected character "+quoteText(tok.Text))
	return tok
}
