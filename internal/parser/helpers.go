package parser

import (
	"slices"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekAt смотрит на n токенов вперёд, за концом всегда EOF.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(s string) bool {
	return p.peek().Is(s)
}

func (p *Parser) atIdent() bool {
	return p.peek().Kind == token.Ident
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == token.EOF
}

// advance: съедает текущий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(s string) bool {
	if p.at(s) {
		p.advance()
		return true
	}
	return false
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем false.
func (p *Parser) expect(s string) (token.Token, bool) {
	if p.at(s) {
		return p.advance(), true
	}
	code := diag.SynUnexpectedToken
	if s == ")" || s == "]" || s == "}" {
		code = diag.SynUnclosedDelimiter
	}
	p.err(code, "expected '"+s+"', got "+describe(p.peek()))
	return p.peek(), false
}

// newlineBefore сообщает, есть ли перевод строки между предыдущим и текущим токеном.
func (p *Parser) newlineBefore() bool {
	if p.pos == 0 {
		return false
	}
	return p.peek().Start.Line > p.toks[p.pos-1].End.Line
}

// consumeSemicolon реализует автоматическую вставку ';'.
func (p *Parser) consumeSemicolon() bool {
	if p.eat(";") {
		return true
	}
	if p.at("}") || p.atEOF() || p.newlineBefore() {
		return true
	}
	p.err(diag.SynExpectSemicolon, "expected ';', got "+describe(p.peek()))
	return false
}

// spanFrom покрывает всё от start до последнего съеденного токена.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return source.Span{File: start.File, Start: start.Start, End: p.lastSpan.End}
}

// finish создаёт узел со span от start до последнего съеденного токена.
func (p *Parser) finish(kind ast.Kind, start source.Span) (ast.NodeID, *ast.Node) {
	id := p.tree.New(kind, p.spanFrom(start))
	return id, p.tree.Node(id)
}

func (p *Parser) node(id ast.NodeID) *ast.Node {
	return p.tree.Node(id)
}

// getDiagnosticSpan: на EOF указываем сразу за последним токеном
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil || p.opts.Enough() && code != diag.SynTooManyErrors {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	return true
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return "'" + tok.Text + "'"
}

// isStatementStart: токены, с которых resync может начать новый оператор.
func isStatementStart(tok token.Token) bool {
	if tok.Kind != token.Keyword {
		return false
	}
	switch tok.Text {
	case "var", "const", "function", "class", "if", "for", "while", "do", "return",
		"break", "continue", "throw", "try", "switch", "with", "debugger":
		return true
	}
	return false
}

// resyncStatement: восстановление после ошибки: прокручиваем до ';' вне
// фигурных скобок, до закрывающей '}' внешнего блока или до ключевого слова
// оператора в начале новой строки. Незакрытые ( и [ не мешают остановке.
func (p *Parser) resyncStatement(start int) {
	var open []string
	for i := start; i < p.pos; i++ {
		open = trackBracket(open, p.toks[i])
	}
	progressed := p.pos > start
	for !p.atEOF() {
		tok := p.peek()
		if progressed && !slices.Contains(open, "{") {
			if tok.IsPunct("}") {
				return
			}
			if isStatementStart(tok) && p.newlineBefore() {
				return
			}
		}
		p.advance()
		progressed = true
		open = trackBracket(open, tok)
		if !slices.Contains(open, "{") {
			if tok.IsPunct(";") {
				return
			}
			if tok.IsPunct("}") && p.newlineBefore() {
				return
			}
		}
	}
}

var closerOf = map[string]string{")": "(", "]": "[", "}": "{"}

// trackBracket ведёт стек открытых скобок; закрывающая снимает всё до своей пары.
func trackBracket(open []string, tok token.Token) []string {
	if tok.Kind != token.Punct {
		return open
	}
	switch tok.Text {
	case "(", "[", "{":
		return append(open, tok.Text)
	case ")", "]", "}":
		want := closerOf[tok.Text]
		for i := len(open) - 1; i >= 0; i-- {
			if open[i] == want {
				return open[:i]
			}
		}
	}
	return open
}

// parseStatementOrBad разбирает оператор, при ошибке заворачивает
// прочитанное в BadStatement.
func (p *Parser) parseStatementOrBad() ast.NodeID {
	startPos := p.pos
	start := p.peek().Span
	id, ok := p.parseStatement()
	if ok {
		return id
	}
	p.resyncStatement(startPos)
	if p.pos == startPos {
		p.advance()
	}
	bad, _ := p.finish(ast.BadStatement, start)
	return bad
}
