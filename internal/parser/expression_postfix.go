package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

// parseLeftHandSide: primary или new, затем цепочка .x, [x], (args), `tpl`.
func (p *Parser) parseLeftHandSide() (ast.NodeID, bool) {
	start := p.peek().Span
	var expr ast.NodeID
	var ok bool
	if p.at("new") {
		expr, ok = p.parseNew()
	} else {
		expr, ok = p.parsePrimary()
	}
	if !ok {
		return ast.NoNodeID, false
	}
	return p.parseCallTail(start, expr, true)
}

func (p *Parser) parseCallTail(start source.Span, expr ast.NodeID, allowCall bool) (ast.NodeID, bool) {
	for {
		tok := p.peek()
		switch {
		case tok.IsPunct("."):
			p.advance()
			if k := p.peek().Kind; k != token.Ident && k != token.Keyword {
				p.err(diag.SynExpectIdentifier, "expected property name after '.', got "+describe(p.peek()))
				return ast.NoNodeID, false
			}
			prop := p.parseIdentifier()
			id, n := p.finish(ast.MemberExpression, start)
			n.Object, n.Property = expr, prop
			expr = id

		case tok.IsPunct("["):
			p.advance()
			saved := p.noIn
			p.noIn = false
			prop, ok := p.parseExpression()
			p.noIn = saved
			if !ok {
				return ast.NoNodeID, false
			}
			if _, ok = p.expect("]"); !ok {
				return ast.NoNodeID, false
			}
			id, n := p.finish(ast.MemberExpression, start)
			n.Object, n.Property, n.Flags = expr, prop, ast.FlagComputed
			expr = id

		case tok.IsPunct("(") && allowCall:
			args, ok := p.parseArguments()
			if !ok {
				return ast.NoNodeID, false
			}
			id, n := p.finish(ast.CallExpression, start)
			n.Callee, n.List = expr, args
			expr = id

		case tok.Kind == token.Template && tok.Text[0] == '`':
			quasi, ok := p.parseTemplate()
			if !ok {
				return ast.NoNodeID, false
			}
			id, n := p.finish(ast.TaggedTemplateExpression, start)
			n.Callee, n.Argument = expr, quasi
			expr = id

		default:
			return expr, true
		}
	}
}

// parseNew разбирает `new Callee(args)`, `new Callee` и `new.target`.
func (p *Parser) parseNew() (ast.NodeID, bool) {
	newTok := p.advance()
	if p.eat(".") {
		meta := p.tree.New(ast.Identifier, newTok.Span)
		p.node(meta).Name = "new"
		if !p.peek().IsIdent("target") {
			p.err(diag.SynUnexpectedToken, "expected 'target' after 'new.', got "+describe(p.peek()))
			return ast.NoNodeID, false
		}
		prop := p.parseIdentifier()
		id, n := p.finish(ast.MetaProperty, newTok.Span)
		n.Object, n.Property = meta, prop
		return id, true
	}

	calleeStart := p.peek().Span
	var callee ast.NodeID
	var ok bool
	if p.at("new") {
		callee, ok = p.parseNew()
	} else {
		callee, ok = p.parsePrimary()
	}
	if !ok {
		return ast.NoNodeID, false
	}
	if callee, ok = p.parseCallTail(calleeStart, callee, false); !ok {
		return ast.NoNodeID, false
	}
	var args []ast.NodeID
	if p.at("(") {
		if args, ok = p.parseArguments(); !ok {
			return ast.NoNodeID, false
		}
	}
	id, n := p.finish(ast.NewExpression, newTok.Span)
	n.Callee, n.List = callee, args
	return id, true
}

func (p *Parser) parseArguments() ([]ast.NodeID, bool) {
	if _, ok := p.expect("("); !ok {
		return nil, false
	}
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var args []ast.NodeID
	for !p.at(")") {
		var arg ast.NodeID
		var ok bool
		if p.at("...") {
			arg, ok = p.parseSpread()
		} else {
			arg, ok = p.parseAssign()
		}
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.eat(",") {
			break
		}
	}
	if _, ok := p.expect(")"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseSpread() (ast.NodeID, bool) {
	start := p.advance().Span // ...
	arg, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.SpreadElement, start)
	n.Argument = arg
	return id, true
}
