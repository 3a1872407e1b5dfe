package lexer

import (
	"indentguard/internal/source"
	"indentguard/internal/token"
)

type Lexer struct {
	file      *source.File
	cursor    Cursor
	opts      Options
	prev      token.Token // последний значимый токен, решает regexp или деление
	hasPrev   bool
	templates []int // глубина фигурных скобок внутри каждой открытой ${...}
	comments  []token.Token
}

func New(file *source.File, opts Options) *Lexer {
	lx := &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
	lx.skipHashbang()
	return lx
}

// Tokenize lexes the whole file. Code tokens end with a single EOF token;
// comments come back separately in source order.
func Tokenize(file *source.File, opts Options) (tokens, comments []token.Token) {
	lx := New(file, opts)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, lx.Comments()
}

// Comments returns every comment seen so far.
func (lx *Lexer) Comments() []token.Token {
	return lx.comments
}

// Next возвращает следующий **значимый** токен; комментарии уходят в lx.comments.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()

	if lx.cursor.EOF() {
		start := lx.cursor.Mark()
		return lx.emit(token.EOF, start)
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch == '\\':
		tok = lx.scanIdentOrKeyword()

	case ch >= utf8RuneSelf:
		// Возможный Unicode идентификатор
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '"' || ch == '\'':
		tok = lx.scanString()

	case ch == '`':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		tok = lx.scanTemplate(start)

	case ch == '}' && len(lx.templates) > 0 && lx.templates[len(lx.templates)-1] == 0:
		// конец подстановки: продолжение шаблона "}...${" или "}...`"
		lx.templates = lx.templates[:len(lx.templates)-1]
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		tok = lx.scanTemplate(start)

	case ch == '/' && lx.regexAllowed():
		tok = lx.scanRegExp()

	default:
		tok = lx.scanOperatorOrPunct()
		lx.trackBraces(tok)
	}

	lx.prev = tok
	lx.hasPrev = true
	return tok
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{
		Kind:  k,
		Span:  sp,
		Start: lx.file.Position(sp.Start),
		End:   lx.file.Position(sp.End),
		Text:  string(lx.file.Content[sp.Start:sp.End]),
	}
}

// regexAllowed decides whether '/' starts a regular expression, judging by
// the previous significant token.
func (lx *Lexer) regexAllowed() bool {
	if !lx.hasPrev {
		return true
	}
	switch lx.prev.Kind {
	case token.Punct:
		switch lx.prev.Text {
		case ")", "]", "}":
			return false
		}
		return true
	case token.Keyword:
		switch lx.prev.Text {
		case "this", "super", "null", "true", "false":
			return false
		}
		return true
	case token.Template:
		return lx.prev.OpensSubstitution()
	}
	return false
}

// trackBraces ведёт счётчик скобок для текущей подстановки шаблона.
func (lx *Lexer) trackBraces(tok token.Token) {
	if len(lx.templates) == 0 || tok.Kind != token.Punct {
		return
	}
	top := len(lx.templates) - 1
	switch tok.Text {
	case "{":
		lx.templates[top]++
	case "}":
		lx.templates[top]--
	}
}
