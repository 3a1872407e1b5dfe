package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
)

// parseBindingTarget: идентификатор, [..] или {..}.
func (p *Parser) parseBindingTarget() (ast.NodeID, bool) {
	switch {
	case p.atIdent():
		return p.parseIdentifier(), true
	case p.at("["):
		return p.parseArrayPattern()
	case p.at("{"):
		return p.parseObjectPattern()
	}
	p.err(diag.SynExpectIdentifier, "expected identifier or pattern, got "+describe(p.peek()))
	return ast.NoNodeID, false
}

// parseBindingElement: цель с необязательным значением по умолчанию.
func (p *Parser) parseBindingElement() (ast.NodeID, bool) {
	start := p.peek().Span
	target, ok := p.parseBindingTarget()
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.eat("=") {
		return target, true
	}
	def, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.AssignmentPattern, start)
	n.Left, n.Right, n.Op = target, def, "="
	return id, true
}

func (p *Parser) parseRestElement() (ast.NodeID, bool) {
	start := p.advance().Span // ...
	target, ok := p.parseBindingTarget()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.RestElement, start)
	n.Argument = target
	return id, true
}

func (p *Parser) parseArrayPattern() (ast.NodeID, bool) {
	start := p.advance().Span // [
	var elems []ast.NodeID
	for !p.at("]") {
		if p.eat(",") {
			elems = append(elems, ast.NoNodeID)
			continue
		}
		var el ast.NodeID
		var ok bool
		if p.at("...") {
			el, ok = p.parseRestElement()
		} else {
			el, ok = p.parseBindingElement()
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
	id, n := p.finish(ast.ArrayPattern, start)
	n.List = elems
	return id, true
}

func (p *Parser) parseObjectPattern() (ast.NodeID, bool) {
	start := p.advance().Span // {
	var props []ast.NodeID
	for !p.at("}") {
		prop, ok := p.parsePatternProperty()
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
	id, n := p.finish(ast.ObjectPattern, start)
	n.List = props
	return id, true
}

func (p *Parser) parsePatternProperty() (ast.NodeID, bool) {
	start := p.peek().Span
	shorthand := p.atIdent() && !p.peekAt(1).IsPunct(":")
	key, computed, ok := p.parsePropertyKey()
	if !ok {
		return ast.NoNodeID, false
	}
	var value ast.NodeID
	var flags ast.Flags
	switch {
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
		if value, ok = p.parseBindingElement(); !ok {
			return ast.NoNodeID, false
		}
	}
	if computed {
		flags |= ast.FlagComputed
	}
	id, n := p.finish(ast.Property, start)
	n.Key, n.Value, n.Op, n.Flags = key, value, "init", flags
	return id, true
}

// shorthandDefault строит `{a = def}`: значение: AssignmentPattern с копией ключа слева.
func (p *Parser) shorthandDefault(key, def ast.NodeID) ast.NodeID {
	k := p.node(key)
	left := p.tree.New(ast.Identifier, k.Span)
	p.node(left).Name = k.Name
	id, n := p.finish(ast.AssignmentPattern, k.Span)
	n.Left, n.Right, n.Op = left, def, "="
	return id
}

// toPattern переписывает покрывающую грамматику выражения в паттерн
// присваивания: [a, b] = ..., ({x} = ...), for (a.b in c).
func (p *Parser) toPattern(id ast.NodeID) ast.NodeID {
	n := p.node(id)
	switch n.Kind {
	case ast.Identifier, ast.MemberExpression, ast.ArrayPattern, ast.ObjectPattern,
		ast.AssignmentPattern, ast.RestElement:
	case ast.ArrayExpression:
		n.Kind = ast.ArrayPattern
		for i, el := range n.List {
			if el != ast.NoNodeID {
				n.List[i] = p.toPattern(el)
			}
		}
	case ast.ObjectExpression:
		n.Kind = ast.ObjectPattern
		for _, prop := range n.List {
			pn := p.node(prop)
			if pn.Has(ast.FlagMethod) || pn.Op != "init" {
				p.errAt(diag.SynInvalidAssignment, pn.Span, "invalid destructuring target")
				continue
			}
			if !pn.Has(ast.FlagShorthand) || pn.Value != pn.Key {
				pn.Value = p.toPattern(pn.Value)
			}
		}
	case ast.AssignmentExpression:
		if n.Op == "=" {
			n.Kind = ast.AssignmentPattern
			n.Left = p.toPattern(n.Left)
		} else {
			p.errAt(diag.SynInvalidAssignment, n.Span, "invalid destructuring target")
		}
	case ast.SpreadElement:
		n.Kind = ast.RestElement
		n.Argument = p.toPattern(n.Argument)
	default:
		p.errAt(diag.SynInvalidAssignment, n.Span, "invalid assignment target")
	}
	return id
}
