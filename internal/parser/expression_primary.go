package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

func (p *Parser) parsePrimary() (ast.NodeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		return p.parseIdentifier(), true

	case token.Keyword:
		switch tok.Text {
		case "this":
			return p.parseLeaf(ast.ThisExpression), true
		case "super":
			return p.parseLeaf(ast.Super), true
		case "null", "true", "false":
			return p.parseLeaf(ast.Literal), true
		case "function":
			return p.parseFunction(ast.FunctionExpression)
		case "class":
			return p.parseClass(ast.ClassExpression)
		}

	case token.String, token.Numeric, token.RegExp:
		return p.parseLeaf(ast.Literal), true

	case token.Template:
		if tok.Text[0] == '`' {
			return p.parseTemplate()
		}

	case token.Punct:
		switch tok.Text {
		case "(":
			return p.parseParenthesized()
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseObjectLiteral()
		}

	case token.Invalid:
		// лексер уже сообщил об ошибке
		p.advance()
		return ast.NoNodeID, false
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	return ast.NoNodeID, false
}

// parseLeaf: узел из одного токена, сырой текст в Name.
func (p *Parser) parseLeaf(kind ast.Kind) ast.NodeID {
	tok := p.advance()
	id, n := p.finish(kind, tok.Span)
	n.Name = tok.Text
	return id
}

// parseParenthesized возвращает внутреннее выражение; скобки в его span не входят.
func (p *Parser) parseParenthesized() (ast.NodeID, bool) {
	p.advance() // (
	saved := p.noIn
	p.noIn = false
	expr, ok := p.parseExpression()
	p.noIn = saved
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok = p.expect(")"); !ok {
		return ast.NoNodeID, false
	}
	p.node(expr).Flags |= ast.FlagParenthesized
	return expr, true
}

func (p *Parser) parseArrayLiteral() (ast.NodeID, bool) {
	start := p.advance().Span // [
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var elems []ast.NodeID
	for !p.at("]") {
		if p.eat(",") {
			elems = append(elems, ast.NoNodeID)
			continue
		}
		var el ast.NodeID
		var ok bool
		if p.at("...") {
			el, ok = p.parseSpread()
		} else {
			el, ok = p.parseAssign()
		}
		if !ok {
			return ast.NoNodeID, false
		}
		elems = append(elems, el)
		if !p.eat(",") {
			break
		}
	}
	if _, ok := p.expect("]"); !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ArrayExpression, start)
	n.List = elems
	return id, true
}

func (p *Parser) parseObjectLiteral() (ast.NodeID, bool) {
	start := p.advance().Span // {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var props []ast.NodeID
	for !p.at("}") {
		prop, ok := p.parseObjectProperty()
		if !ok {
			return ast.NoNodeID, false
		}
		props = append(props, prop)
		if !p.eat(",") {
			break
		}
	}
	if _, ok := p.expect("}"); !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ObjectExpression, start)
	n.List = props
	return id, true
}

func (p *Parser) parseObjectProperty() (ast.NodeID, bool) {
	start := p.peek().Span
	if p.at("...") {
		p.err(diag.SynUnsupportedSyntax, "object spread is not supported")
		return ast.NoNodeID, false
	}
	op := "init"
	if p.atAccessor() {
		op = p.advance().Text
	}
	p.skipUnsupportedModifiers()

	next := p.peekAt(1)
	shorthand := op == "init" && p.atIdent() &&
		(next.IsPunct(",") || next.IsPunct("}") || next.IsPunct("="))

	key, computed, ok := p.parsePropertyKey()
	if !ok {
		return ast.NoNodeID, false
	}
	var flags ast.Flags
	if computed {
		flags |= ast.FlagComputed
	}
	var value ast.NodeID
	switch {
	case op != "init" || p.at("("):
		if op == "init" {
			flags |= ast.FlagMethod
		}
		if value, ok = p.parseMethodFunction(); !ok {
			return ast.NoNodeID, false
		}
	case shorthand:
		flags |= ast.FlagShorthand
		value = key
		if p.eat("=") {
			def, ok := p.parseAssign()
			if !ok {
				return ast.NoNodeID, false
			}
			value = p.shorthandDefault(key, def)
		}
	default:
		if _, ok = p.expect(":"); !ok {
			return ast.NoNodeID, false
		}
		if value, ok = p.parseAssign(); !ok {
			return ast.NoNodeID, false
		}
	}
	id, n := p.finish(ast.Property, start)
	n.Key, n.Value, n.Op, n.Flags = key, value, op, flags
	return id, true
}

// parseTemplate собирает куски шаблона и выражения подстановок.
func (p *Parser) parseTemplate() (ast.NodeID, bool) {
	start := p.peek().Span
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var quasis, exprs []ast.NodeID
	for {
		tok := p.peek()
		if tok.Kind != token.Template || (len(quasis) > 0 && tok.Text[0] != '}') {
			p.err(diag.SynUnexpectedToken, "expected '}' closing template substitution, got "+describe(tok))
			return ast.NoNodeID, false
		}
		quasis = append(quasis, p.parseLeaf(ast.TemplateElement))
		if !tok.OpensSubstitution() {
			break
		}
		expr, ok := p.parseExpression()
		if !ok {
			return ast.NoNodeID, false
		}
		exprs = append(exprs, expr)
	}
	id, n := p.finish(ast.TemplateLiteral, start)
	n.Quasis, n.List = quasis, exprs
	return id, true
}
