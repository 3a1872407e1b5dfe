package lexer

import (
	"unicode"

	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// skipTrivia пропускает пробелы и переводы строк, комментарии складывает в lx.comments.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
			lx.cursor.Bump()
			continue
		case b >= utf8RuneSelf:
			r, sz := lx.peekRune()
			if r == 0xFEFF || unicode.IsSpace(r) {
				lx.bumpN(sz)
				continue
			}
			return
		case b == '/':
			if lx.scanComment() {
				continue
			}
			return
		default:
			return
		}
	}
}

// scanComment сканирует // и /* */ комментарии.
func (lx *Lexer) scanComment() bool {
	start := lx.cursor.Mark()
	switch lx.cursor.PeekAt(1) {
	case '/':
		lx.cursor.Bump()
		lx.cursor.Bump()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.comments = append(lx.comments, lx.trimCR(lx.emit(token.LineComment, start)))
		return true

	case '*':
		lx.cursor.Bump()
		lx.cursor.Bump()
		closed := false
		for !lx.cursor.EOF() {
			if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				closed = true
				break
			}
			lx.cursor.Bump()
		}
		tok := lx.emit(token.BlockComment, start)
		if !closed {
			lx.errLex(diag.LexUnterminatedBlockComment, tok.Span, "unterminated block comment")
		}
		lx.comments = append(lx.comments, tok)
		return true
	}
	return false
}

// trimCR убирает завершающий '\r' строчного комментария в CRLF файлах.
func (lx *Lexer) trimCR(tok token.Token) token.Token {
	if n := len(tok.Text); n > 0 && tok.Text[n-1] == '\r' {
		tok.Text = tok.Text[:n-1]
		tok.Span.End--
		tok.End = lx.file.Position(tok.Span.End)
	}
	return tok
}

// skipHashbang treats a leading "#!" line as a line comment.
func (lx *Lexer) skipHashbang() {
	if lx.cursor.Peek() != '#' || lx.cursor.PeekAt(1) != '!' {
		return
	}
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	lx.comments = append(lx.comments, lx.trimCR(lx.emit(token.LineComment, start)))
}
