package parser

import (
	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/token"
)

// parseExpression - главная точка входа: выражение через запятую.
func (p *Parser) parseExpression() (ast.NodeID, bool) {
	start := p.peek().Span
	first, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.at(",") {
		return first, true
	}
	list := []ast.NodeID{first}
	for p.eat(",") {
		next, ok := p.parseAssign()
		if !ok {
			return ast.NoNodeID, false
		}
		list = append(list, next)
	}
	id, n := p.finish(ast.SequenceExpression, start)
	n.List = list
	return id, true
}

// parseAssign: стрелочная функция, присваивание или условное выражение.
func (p *Parser) parseAssign() (ast.NodeID, bool) {
	if p.atArrow() {
		return p.parseArrow()
	}
	if p.at("yield") {
		p.err(diag.SynUnsupportedSyntax, "yield expressions are not supported")
		return ast.NoNodeID, false
	}
	start := p.peek().Span
	left, ok := p.parseConditional()
	if !ok {
		return ast.NoNodeID, false
	}
	if !isAssignOp(p.peek()) {
		return left, true
	}
	op := p.advance()
	if op.Text == "=" {
		left = p.toPattern(left)
	} else if k := p.node(left).Kind; k != ast.Identifier && k != ast.MemberExpression {
		p.errAt(diag.SynInvalidAssignment, p.spanOf(left), "invalid assignment target")
	}
	right, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.AssignmentExpression, start)
	n.Op, n.Left, n.Right = op.Text, left, right
	return id, true
}

func (p *Parser) parseConditional() (ast.NodeID, bool) {
	start := p.peek().Span
	test, ok := p.parseBinary(precLogicalOr)
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.eat("?") {
		return test, true
	}
	saved := p.noIn
	p.noIn = false
	cons, ok := p.parseAssign()
	p.noIn = saved
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok = p.expect(":"); !ok {
		return ast.NoNodeID, false
	}
	alt, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ConditionalExpression, start)
	n.Test, n.Consequent, n.Alternate = test, cons, alt
	return id, true
}

// parseBinary реализует Pratt parsing для бинарных операторов.
// Все узлы цепочки начинаются там же, где левый операнд, включая его скобки.
func (p *Parser) parseBinary(minPrec int) (ast.NodeID, bool) {
	start := p.peek().Span
	left, ok := p.parseUnary()
	if !ok {
		return ast.NoNodeID, false
	}
	for {
		prec, rightAssoc := binaryPrec(p.peek(), p.noIn)
		if prec == precNone || prec < minPrec {
			break
		}
		opTok := p.advance()
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		right, ok := p.parseBinary(nextMin)
		if !ok {
			return ast.NoNodeID, false
		}
		kind := ast.BinaryExpression
		if opTok.Text == "||" || opTok.Text == "&&" {
			kind = ast.LogicalExpression
		}
		id, n := p.finish(kind, start)
		n.Op, n.Left, n.Right = opTok.Text, left, right
		left = id
	}
	return left, true
}

func (p *Parser) parseUnary() (ast.NodeID, bool) {
	tok := p.peek()
	switch {
	case isUnaryOp(tok):
		p.advance()
		arg, ok := p.parseUnary()
		if !ok {
			return ast.NoNodeID, false
		}
		id, n := p.finish(ast.UnaryExpression, tok.Span)
		n.Op, n.Argument, n.Flags = tok.Text, arg, ast.FlagPrefix
		return id, true

	case tok.IsPunct("++") || tok.IsPunct("--"):
		p.advance()
		arg, ok := p.parseUnary()
		if !ok {
			return ast.NoNodeID, false
		}
		p.checkUpdateTarget(arg)
		id, n := p.finish(ast.UpdateExpression, tok.Span)
		n.Op, n.Argument, n.Flags = tok.Text, arg, ast.FlagPrefix
		return id, true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.NodeID, bool) {
	start := p.peek().Span
	expr, ok := p.parseLeftHandSide()
	if !ok {
		return ast.NoNodeID, false
	}
	tok := p.peek()
	if (tok.IsPunct("++") || tok.IsPunct("--")) && !p.newlineBefore() {
		p.advance()
		p.checkUpdateTarget(expr)
		id, n := p.finish(ast.UpdateExpression, start)
		n.Op, n.Argument = tok.Text, expr
		return id, true
	}
	return expr, true
}

func (p *Parser) checkUpdateTarget(id ast.NodeID) {
	if k := p.node(id).Kind; k != ast.Identifier && k != ast.MemberExpression {
		p.errAt(diag.SynInvalidAssignment, p.spanOf(id), "invalid update target")
	}
}

// atArrow смотрит вперёд: `x =>` или `( ... ) =>`.
func (p *Parser) atArrow() bool {
	tok := p.peek()
	if tok.Kind == token.Ident {
		next := p.peekAt(1)
		return next.IsPunct("=>") && next.Start.Line == tok.End.Line
	}
	if !tok.IsPunct("(") {
		return false
	}
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		switch {
		case t.Kind == token.EOF:
			return false
		case t.IsPunct("(") || t.IsPunct("[") || t.IsPunct("{"):
			depth++
		case t.IsPunct(")") || t.IsPunct("]") || t.IsPunct("}"):
			depth--
			if depth == 0 {
				next := p.toks[i+1]
				return next.IsPunct("=>") && next.Start.Line == t.End.Line
			}
		}
	}
	return false
}

func (p *Parser) parseArrow() (ast.NodeID, bool) {
	start := p.peek().Span
	var params []ast.NodeID
	if p.atIdent() {
		params = []ast.NodeID{p.parseIdentifier()}
	} else {
		var ok bool
		if params, ok = p.parseParams(); !ok {
			return ast.NoNodeID, false
		}
	}
	if _, ok := p.expect("=>"); !ok {
		return ast.NoNodeID, false
	}
	var body ast.NodeID
	var flags ast.Flags
	var ok bool
	if p.at("{") {
		body, ok = p.parseFunctionBody()
	} else {
		flags = ast.FlagExprBody
		body, ok = p.parseAssign()
	}
	if !ok {
		return ast.NoNodeID, false
	}
	id, n := p.finish(ast.ArrowFunctionExpression, start)
	n.Params, n.Body, n.Flags = params, body, flags
	return id, true
}
