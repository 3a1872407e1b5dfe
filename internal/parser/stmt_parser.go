package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// parseStatement выбирает распознаватель по первому токену.
func (p *Parser) parseStatement() (ast.NodeID, bool) {
	tok := p.peek()

	switch tok.Kind {
	case token.Punct:
		switch tok.Text {
		case "{":
			return p.parseBlock()
		case ";":
			p.advance()
			id, _ := p.finish(ast.EmptyStatement, tok.Span)
			return id, true
		}

	case token.Keyword:
		switch tok.Text {
		case "var", "const":
			return p.parseVarStatement()
		case "function":
			return p.parseFunctionDeclaration()
		case "class":
			return p.parseClass(ast.ClassDeclaration)
		case "if":
			return p.parseIfStatement()
		case "for":
			return p.parseForStatement()
		case "while":
			return p.parseWhileStatement()
		case "do":
			return p.parseDoWhileStatement()
		case "return":
			return p.parseReturnStatement()
		case "break", "continue":
			return p.parseJumpStatement()
		case "throw":
			return p.parseThrowStatement()
		case "try":
			return p.parseTryStatement()
		case "switch":
			return p.parseSwitchStatement()
		case "with":
			return p.parseWithStatement()
		case "debugger":
			p.advance()
			p.consumeSemicolon()
			id, _ := p.finish(ast.DebuggerStatement, tok.Span)
			return id, true
		case "import", "export":
			p.errAt(diag.SynUnsupportedSyntax, tok.Span, "ES modules are not supported")
			return ast.NoNodeID, false
		}

	case token.Ident:
		if p.atLetDeclaration() {
			return p.parseVarStatement()
		}
		if tok.Text == "async" && p.peekAt(1).Is("function") && p.peekAt(1).Start.Line == tok.End.Line {
			p.errAt(diag.SynUnsupportedSyntax, tok.Span, "async functions are not supported")
			p.advance()
			return p.parseFunctionDeclaration()
		}
		if p.peekAt(1).IsPunct(":") {
			return p.parseLabeledStatement()
		}
	}

	return p.parseExpressionStatement()
}

// atLetDeclaration: `let`: контекстное слово, объявление только перед именем или паттерном.
func (p *Parser) atLetDeclaration() bool {
	if !p.peek().IsIdent("let") {
		return false
	}
	next := p.peekAt(1)
	return next.Kind == token.Ident || next.IsPunct("[") || next.IsPunct("{")
}

func (p *Parser) parseBlock() (ast.NodeID, bool) {
	start := p.peek().Span
	if _, ok := p.expect("{"); !ok {
		return ast.NoNodeID, false
	}
	body := p.parseStatementList(func() bool { return p.at("}") })
	if _, ok := p.expect("}"); !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.BlockStatement, start)
	n.List = body
	return id, true
}

// parseStatementList читает операторы до stop или EOF.
func (p *Parser) parseStatementList(stop func() bool) []ast.NodeID {
	var body []ast.NodeID
	for !p.atEOF() && !stop() {
		if p.opts.Enough() {
			break
		}
		body = append(body, p.parseStatementOrBad())
	}
	return body
}

func (p *Parser) parseExpressionStatement() (ast.NodeID, bool) {
	start := p.peek().Span
	expr, ok := p.parseExpression()
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.consumeSemicolon() {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ExpressionStatement, start)
	n.Body = expr
	return id, true
}

func (p *Parser) parseLabeledStatement() (ast.NodeID, bool) {
	start := p.peek().Span
	label := p.parseIdentifier()
	p.advance() // ':'
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.LabeledStatement, start)
	n.ID = label
	n.Body = body
	return id, true
}

func (p *Parser) parseVarStatement() (ast.NodeID, bool) {
	decl, ok := p.parseVarDeclaration(false)
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.consumeSemicolon() {
		return ast.NoNodeID, false
	}
	// ';' входит в диапазон объявления
	p.node(decl).Span.End = p.lastSpan.End
	return decl, true
}

// parseVarDeclaration разбирает `var|let|const` со списком деклараторов.
// inFor разрешает const без инициализатора (for-in/of) и запрещает `in`.
func (p *Parser) parseVarDeclaration(inFor bool) (ast.NodeID, bool) {
	kindTok := p.advance()
	var decls []ast.NodeID
	for {
		d, ok := p.parseVarDeclarator(kindTok.Text, inFor)
		if !ok {
			return ast.NoNodeID, false
		}
		decls = append(decls, d)
		if !p.eat(",") {
			break
		}
	}
	id, n := p.finish(ast.VariableDeclaration, kindTok.Span)
	n.Op = kindTok.Text
	n.List = decls
	return id, true
}

func (p *Parser) parseVarDeclarator(kind string, inFor bool) (ast.NodeID, bool) {
	start := p.peek().Span
	target, ok := p.parseBindingTarget()
	if !ok {
		return ast.NoNodeID, false
	}
	var init ast.NodeID
	if p.eat("=") {
		saved := p.noIn
		p.noIn = inFor
		init, ok = p.parseAssign()
		p.noIn = saved
		if !ok {
			return ast.NoNodeID, false
		}
	} else if !inFor && (kind == "const" || p.node(target).Kind != ast.Identifier) {
		p.err(diag.SynMissingInitializer, "missing initializer in "+kind+" declaration")
	}
	id, n := p.finish(ast.VariableDeclarator, start)
	n.ID = target
	n.Init = init
	return id, true
}
