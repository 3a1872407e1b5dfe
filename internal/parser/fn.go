package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

func (p *Parser) parseFunctionDeclaration() (ast.NodeID, bool) {
	return p.parseFunction(ast.FunctionDeclaration)
}

// parseFunction разбирает `function [name] (params) { body }`.
func (p *Parser) parseFunction(kind ast.Kind) (ast.NodeID, bool) {
	start := p.advance().Span // function
	if p.at("*") {
		p.err(diag.SynUnsupportedSyntax, "generator functions are not supported")
		p.advance()
	}
	var name ast.NodeID
	switch {
	case p.atIdent():
		name = p.parseIdentifier()
	case kind == ast.FunctionDeclaration:
		p.err(diag.SynExpectIdentifier, "expected function name, got "+describe(p.peek()))
		return ast.NoNodeID, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseFunctionBody()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(kind, start)
	n.ID, n.Params, n.Body = name, params, body
	return id, true
}

// parseMethodFunction: функция метода объекта или класса, span начинается с '('.
func (p *Parser) parseMethodFunction() (ast.NodeID, bool) {
	start := p.peek().Span
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseFunctionBody()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.FunctionExpression, start)
	n.Params, n.Body = params, body
	return id, true
}

func (p *Parser) parseFunctionBody() (ast.NodeID, bool) {
	p.fnDepth++
	saved := p.noIn
	p.noIn = false
	defer func() {
		p.fnDepth--
		p.noIn = saved
	}()
	return p.parseBlock()
}

// parseParams разбирает список параметров в скобках.
func (p *Parser) parseParams() ([]ast.NodeID, bool) {
	if _, ok := p.expect("("); !ok {
		return nil, false
	}
	var params []ast.NodeID
	for !p.at(")") {
		if p.at("...") {
			rest, ok := p.parseRestElement()
			if !ok {
				return nil, false
			}
			params = append(params, rest)
			break
		}
		param, ok := p.parseBindingElement()
		if !ok {
			return nil, false
		}
		params = append(params, param)
		if !p.eat(",") {
			break
		}
	}
	if _, ok := p.expect(")"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseIdentifier() ast.NodeID {
	tok := p.advance()
	id, n := p.finish(ast.Identifier, tok.Span)
	n.Name = tok.Text
	return id
}

// parsePropertyKey разбирает имя свойства: идентификатор (включая
// ключевые слова), строку, число или вычисляемый [expr].
func (p *Parser) parsePropertyKey() (ast.NodeID, bool, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident, token.Keyword:
		return p.parseIdentifier(), false, true
	case token.String, token.Numeric:
		p.advance()
		id, n := p.finish(ast.Literal, tok.Span)
		n.Name = tok.Text
		return id, false, true
	case token.Punct:
		if tok.Text == "[" {
			p.advance()
			key, ok := p.parseAssign()
			if !ok {
				return ast.NoNodeID, true, false
			}
			if _, ok = p.expect("]"); !ok {
				return ast.NoNodeID, true, false
			}
			return key, true, true
		}
	}
	p.err(diag.SynExpectIdentifier, "expected property name, got "+describe(tok))
	return ast.NoNodeID, false, false
}

// atAccessor: get/set перед именем свойства, а не само имя.
func (p *Parser) atAccessor() bool {
	tok := p.peek()
	if !tok.IsIdent("get") && !tok.IsIdent("set") {
		return false
	}
	next := p.peekAt(1)
	return !next.IsPunct("(") && !next.IsPunct(",") && !next.IsPunct(":") &&
		!next.IsPunct("}") && !next.IsPunct("=") && !next.IsPunct(";")
}

// parseClass разбирает объявление или выражение класса.
func (p *Parser) parseClass(kind ast.Kind) (ast.NodeID, bool) {
	start := p.advance().Span // class
	var name, super ast.NodeID
	switch {
	case p.atIdent():
		name = p.parseIdentifier()
	case kind == ast.ClassDeclaration:
		p.err(diag.SynExpectIdentifier, "expected class name, got "+describe(p.peek()))
		return ast.NoNodeID, false
	}
	if p.eat("extends") {
		var ok bool
		if super, ok = p.parseLeftHandSide(); !ok {
			return ast.NoNodeID, false
		}
	}
	body, ok := p.parseClassBody()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(kind, start)
	n.ID, n.SuperClass, n.Body = name, super, body
	return id, true
}

func (p *Parser) parseClassBody() (ast.NodeID, bool) {
	start := p.peek().Span
	if _, ok := p.expect("{"); !ok {
		return ast.NoNodeID, false
	}
	var members []ast.NodeID
	for !p.at("}") && !p.atEOF() {
		if p.eat(";") {
			continue
		}
		m, ok := p.parseClassMember()
		if !ok {
			return ast.NoNodeID, false
		}
		members = append(members, m)
	}
	if _, ok := p.expect("}"); !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ClassBody, start)
	n.List = members
	return id, true
}

func (p *Parser) parseClassMember() (ast.NodeID, bool) {
	start := p.peek().Span
	var flags ast.Flags
	if p.peek().IsIdent("static") && !p.peekAt(1).IsPunct("(") {
		p.advance()
		flags |= ast.FlagStatic
	}
	op := "method"
	if p.atAccessor() {
		op = p.advance().Text
	}
	p.skipUnsupportedModifiers()
	key, computed, ok := p.parsePropertyKey()
	if !ok {
		return ast.NoNodeID, false
	}
	if computed {
		flags |= ast.FlagComputed
	}
	if k := p.node(key); op == "method" && !computed && flags&ast.FlagStatic == 0 &&
		(k.Name == "constructor" || k.Name == `"constructor"` || k.Name == `'constructor'`) {
		op = "constructor"
	}
	value, ok := p.parseMethodFunction()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.MethodDefinition, start)
	n.Key, n.Value, n.Op, n.Flags = key, value, op, flags
	return id, true
}

// skipUnsupportedModifiers репортит `async` и `*` перед методом и пропускает их.
func (p *Parser) skipUnsupportedModifiers() {
	tok := p.peek()
	if tok.IsIdent("async") && !p.peekAt(1).IsPunct("(") && p.peekAt(1).Start.Line == tok.End.Line &&
		!p.peekAt(1).IsPunct(",") && !p.peekAt(1).IsPunct(":") && !p.peekAt(1).IsPunct("}") {
		p.errAt(diag.SynUnsupportedSyntax, tok.Span, "async methods are not supported")
		p.advance()
	}
	if p.at("*") {
		p.err(diag.SynUnsupportedSyntax, "generator methods are not supported")
		p.advance()
	}
}

// spanOf возвращает диапазон узла.
func (p *Parser) spanOf(id ast.NodeID) source.Span {
	return p.node(id).Span
}
