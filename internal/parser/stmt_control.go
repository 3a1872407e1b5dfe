package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/source"
)

// parseParenExpr разбирает `( expr )` заголовка if/while/switch/with.
func (p *Parser) parseParenExpr() (ast.NodeID, bool) {
	if _, ok := p.expect("("); !ok {
		return ast.NoNodeID, false
	}
	expr, ok := p.parseExpression()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(")"); !ok {
		return ast.NoNodeID, false
	}
	return expr, true
}

func (p *Parser) parseIfStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	test, ok := p.parseParenExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	cons, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	var alt ast.NodeID
	if p.eat("else") {
		if alt, ok = p.parseStatement(); !ok {
			return ast.NoNodeID, false
		}
	}
	id, n := p.finish(ast.IfStatement, start)
	n.Test, n.Consequent, n.Alternate = test, cons, alt
	return id, true
}

func (p *Parser) parseWhileStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	test, ok := p.parseParenExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.WhileStatement, start)
	n.Test, n.Body = test, body
	return id, true
}

func (p *Parser) parseDoWhileStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok = p.expect("while"); !ok {
		return ast.NoNodeID, false
	}
	test, ok := p.parseParenExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	// после do-while ';' вставляется всегда
	p.eat(";")
	id, n := p.finish(ast.DoWhileStatement, start)
	n.Body, n.Test = body, test
	return id, true
}

func (p *Parser) parseWithStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	object, ok := p.parseParenExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.WithStatement, start)
	n.Object, n.Body = object, body
	return id, true
}

// parseForStatement разбирает for(;;), for-in и for-of.
func (p *Parser) parseForStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	if _, ok := p.expect("("); !ok {
		return ast.NoNodeID, false
	}

	var init ast.NodeID
	var ok bool
	switch {
	case p.at(";"):
	case p.at("var") || p.at("const") || p.atLetDeclaration():
		if init, ok = p.parseVarDeclaration(true); !ok {
			return ast.NoNodeID, false
		}
		if p.at("in") || p.peek().IsIdent("of") {
			if decls := p.node(init).List; len(decls) != 1 {
				p.errAt(diag.SynUnexpectedToken, p.node(init).Span, "only one variable is allowed in a for-in/for-of head")
			}
			return p.parseForInOf(start, init)
		}
	default:
		saved := p.noIn
		p.noIn = true
		init, ok = p.parseExpression()
		p.noIn = saved
		if !ok {
			return ast.NoNodeID, false
		}
		if p.at("in") || p.peek().IsIdent("of") {
			return p.parseForInOf(start, p.toPattern(init))
		}
	}

	if _, ok = p.expect(";"); !ok {
		return ast.NoNodeID, false
	}
	var test, update ast.NodeID
	if !p.at(";") {
		if test, ok = p.parseExpression(); !ok {
			return ast.NoNodeID, false
		}
	}
	if _, ok = p.expect(";"); !ok {
		return ast.NoNodeID, false
	}
	if !p.at(")") {
		if update, ok = p.parseExpression(); !ok {
			return ast.NoNodeID, false
		}
	}
	if _, ok = p.expect(")"); !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ForStatement, start)
	n.Init, n.Test, n.Update, n.Body = init, test, update, body
	return id, true
}

func (p *Parser) parseForInOf(start source.Span, left ast.NodeID) (ast.NodeID, bool) {
	kind := ast.ForInStatement
	if p.advance().Text == "of" {
		kind = ast.ForOfStatement
	}
	var right ast.NodeID
	var ok bool
	if kind == ast.ForOfStatement {
		right, ok = p.parseAssign()
	} else {
		right, ok = p.parseExpression()
	}
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok = p.expect(")"); !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(kind, start)
	n.Left, n.Right, n.Body = left, right, body
	return id, true
}

func (p *Parser) parseReturnStatement() (ast.NodeID, bool) {
	tok := p.advance()
	if p.fnDepth == 0 {
		p.errAt(diag.SynIllegalReturn, tok.Span, "'return' outside of function")
	}
	var arg ast.NodeID
	if !p.at(";") && !p.at("}") && !p.atEOF() && !p.newlineBefore() {
		var ok bool
		if arg, ok = p.parseExpression(); !ok {
			return ast.NoNodeID, false
		}
	}
	if !p.consumeSemicolon() {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ReturnStatement, tok.Span)
	n.Argument = arg
	return id, true
}

func (p *Parser) parseThrowStatement() (ast.NodeID, bool) {
	tok := p.advance()
	if p.newlineBefore() {
		p.err(diag.SynNewlineAfterThrow, "illegal newline after throw")
	}
	arg, ok := p.parseExpression()
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.consumeSemicolon() {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ThrowStatement, tok.Span)
	n.Argument = arg
	return id, true
}

// parseJumpStatement: break/continue с необязательной меткой на той же строке.
func (p *Parser) parseJumpStatement() (ast.NodeID, bool) {
	tok := p.advance()
	kind := ast.BreakStatement
	if tok.Text == "continue" {
		kind = ast.ContinueStatement
	}
	var label ast.NodeID
	if p.atIdent() && !p.newlineBefore() {
		label = p.parseIdentifier()
	}
	if !p.consumeSemicolon() {
		return ast.NoNodeID, false
	}
	id, n := p.finish(kind, tok.Span)
	n.ID = label
	return id, true
}

func (p *Parser) parseTryStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	block, ok := p.parseBlock()
	if !ok {
		return ast.NoNodeID, false
	}
	var handler, finalizer ast.NodeID
	if p.at("catch") {
		cstart := p.advance().Span
		if _, ok = p.expect("("); !ok {
			return ast.NoNodeID, false
		}
		param, ok := p.parseBindingTarget()
		if !ok {
			return ast.NoNodeID, false
		}
		if _, ok = p.expect(")"); !ok {
			return ast.NoNodeID, false
		}
		body, ok := p.parseBlock()
		if !ok {
			return ast.NoNodeID, false
		}
		var cn *ast.Node
		handler, cn = p.finish(ast.CatchClause, cstart)
		cn.Param, cn.Body = param, body
	}
	if p.eat("finally") {
		if finalizer, ok = p.parseBlock(); !ok {
			return ast.NoNodeID, false
		}
	}
	if handler == ast.NoNodeID && finalizer == ast.NoNodeID {
		p.err(diag.SynUnexpectedToken, "missing catch or finally after try")
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.TryStatement, start)
	n.Body, n.Handler, n.Finalizer = block, handler, finalizer
	return id, true
}

func (p *Parser) parseSwitchStatement() (ast.NodeID, bool) {
	start := p.advance().Span
	disc, ok := p.parseParenExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok = p.expect("{"); !ok {
		return ast.NoNodeID, false
	}
	var cases []ast.NodeID
	seenDefault := false
	for !p.at("}") && !p.atEOF() {
		cstart := p.peek().Span
		var test ast.NodeID
		switch {
		case p.eat("case"):
			if test, ok = p.parseExpression(); !ok {
				return ast.NoNodeID, false
			}
		case p.eat("default"):
			if seenDefault {
				p.errAt(diag.SynUnexpectedToken, cstart, "more than one default clause in switch")
			}
			seenDefault = true
		default:
			p.err(diag.SynUnexpectedToken, "expected 'case' or 'default', got "+describe(p.peek()))
			return ast.NoNodeID, false
		}
		if _, ok = p.expect(":"); !ok {
			return ast.NoNodeID, false
		}
		body := p.parseStatementList(func() bool {
			return p.at("case") || p.at("default") || p.at("}")
		})
		cid, cn := p.finish(ast.SwitchCase, cstart)
		cn.Test, cn.List = test, body
		cases = append(cases, cid)
	}
	if _, ok = p.expect("}"); !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.SwitchStatement, start)
	n.Discriminant, n.List = disc, cases
	return id, true
}
