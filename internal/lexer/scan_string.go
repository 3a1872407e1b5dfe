package lexer

import (
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// scanString сканирует строку в одинарных или двойных кавычках.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			tok := lx.emit(token.String, start)
			lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
			return tok
		}
		b := lx.cursor.Bump()
		switch b {
		case '\\':
			// \<newline> продолжает строку
			if lx.cursor.Peek() == '\r' {
				lx.cursor.Bump()
			}
			lx.cursor.Bump()
		case quote:
			return lx.emit(token.String, start)
		}
	}
}

// scanTemplate сканирует кусок шаблона от '`' или '}' до "${" или '`'.
// Открывающий "${" заводит новый счётчик скобок.
func (lx *Lexer) scanTemplate(start Mark) token.Token {
	for {
		if lx.cursor.EOF() {
			tok := lx.emit(token.Template, start)
			lx.errLex(diag.LexUnterminatedTemplate, tok.Span, "unterminated template literal")
			return tok
		}
		switch lx.cursor.Bump() {
		case '\\':
			lx.cursor.Bump()
		case '`':
			return lx.emit(token.Template, start)
		case '$':
			if lx.cursor.Eat('{') {
				lx.templates = append(lx.templates, 0)
				return lx.emit(token.Template, start)
			}
		}
	}
}

// scanRegExp сканирует /body/flags; '/' внутри [...] не закрывает литерал.
func (lx *Lexer) scanRegExp() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	inClass := false
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			tok := lx.emit(token.RegExp, start)
			lx.errLex(diag.LexUnterminatedRegExp, tok.Span, "unterminated regular expression")
			return tok
		}
		b := lx.cursor.Bump()
		switch {
		case b == '\\':
			if lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '[':
			inClass = true
		case b == ']':
			inClass = false
		case b == '/' && !inClass:
			for isIdentContinueByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			return lx.emit(token.RegExp, start)
		}
	}
}
