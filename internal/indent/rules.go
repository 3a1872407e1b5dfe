package indent

import (
	"indentguard/internal/ast"
	"indentguard/internal/token"
)

// build walks the tree once and fills the offset records.
func (a *analysis) build() {
	ast.Walk(a.tree, a.tree.Root, func(id ast.NodeID) bool {
		n := a.tree.Node(id)
		if first := a.ts.firstToken(n); first >= 0 {
			a.setNodeOffsets(id, first, 0)
		}
		a.visit(id, n)
		return true
	})
	a.addParensIndent()
}

// visit применяет правило, специфичное для вида узла.
func (a *analysis) visit(id ast.NodeID, n *ast.Node) {
	switch n.Kind {
	case ast.ArrayExpression, ast.ArrayPattern:
		a.addElementListIndent(n.List, a.ts.firstToken(n), a.ts.lastToken(n), a.cfg.ArrayExpression)
	case ast.ObjectExpression, ast.ObjectPattern:
		a.addElementListIndent(n.List, a.ts.firstToken(n), a.ts.lastToken(n), a.cfg.ObjectExpression)
	case ast.ArrowFunctionExpression:
		a.arrowFunction(n)
	case ast.AssignmentExpression:
		a.assignment(n)
	case ast.BinaryExpression, ast.LogicalExpression:
		a.binary(n)
	case ast.BlockStatement, ast.ClassBody:
		a.block(id, n)
	case ast.CallExpression:
		a.functionCall(n)
	case ast.NewExpression:
		last := a.ts.lastToken(n)
		if len(n.List) > 0 || (a.ts.isPunct(last, ")") && a.ts.isPunct(a.ts.codeBefore(last), "(")) {
			a.functionCall(n)
		}
	case ast.ClassDeclaration, ast.ClassExpression:
		a.classHeritage(n)
	case ast.ConditionalExpression:
		a.conditional(n)
	case ast.DoWhileStatement, ast.WhileStatement, ast.ForInStatement, ast.ForOfStatement:
		a.blocklessBody(n.Body)
	case ast.ForStatement:
		a.forStatement(n)
	case ast.FunctionDeclaration:
		a.functionParams(n, a.cfg.FunctionDeclaration.Parameters)
	case ast.FunctionExpression:
		a.functionParams(n, a.cfg.FunctionExpression.Parameters)
	case ast.IfStatement:
		a.blocklessBody(n.Consequent)
		if n.Alternate != ast.NoNodeID && a.tree.Kind(n.Alternate) != ast.IfStatement {
			a.blocklessBody(n.Alternate)
		}
	case ast.MemberExpression, ast.MetaProperty:
		a.member(n)
	case ast.Property:
		a.property(n)
	case ast.SwitchStatement:
		a.switchStatement(n)
	case ast.SwitchCase:
		a.switchCase(n)
	case ast.TemplateLiteral:
		a.templateLiteral(n)
	case ast.VariableDeclaration:
		a.variableDeclaration(n)
	case ast.VariableDeclarator:
		a.variableDeclarator(n)
	case ast.BadStatement, ast.BadExpression:
		if first := a.ts.firstToken(n); first >= 0 {
			a.setNodeOffsets(id, first, 1)
		}
	}
}

// elementFirstToken finds the first token of a list element, including
// any parens wrapping it, but never stepping past the list opener.
func (a *analysis) elementFirstToken(el *ast.Node, start int) int {
	first := a.ts.firstToken(el)
	if first < 0 {
		return -1
	}
	tok := a.ts.codeBefore(first)
	for tok >= 0 && tok != start && a.ts.isPunct(tok, "(") {
		tok = a.ts.codeBefore(tok)
	}
	return a.ts.codeAfter(tok)
}

// addElementListIndent indents a delimited list: the interior is offset
// from start, end matches start, and each element anchors on the previous.
func (a *analysis) addElementListIndent(elements []ast.NodeID, start, end int, opt ListOption) {
	if start < 0 || end < 0 {
		return
	}
	a.setDesiredOffsets(a.ts.at(start).Span.End, a.ts.at(end).Span.Start, start, opt.units())
	a.setDesiredOffset(end, start, 0)

	if opt.Mode == ListFirst && len(elements) > 0 && elements[0] == ast.NoNodeID {
		return
	}
	firstElementTok := -1
	if len(elements) > 0 && elements[0] != ast.NoNodeID {
		firstElementTok = a.elementFirstToken(a.tree.Node(elements[0]), start)
	}

	for i, id := range elements {
		if id == ast.NoNodeID {
			continue
		}
		el := a.tree.Node(id)
		elFirst := a.elementFirstToken(el, start)
		if opt.Mode == ListIgnore {
			a.ignoreToken(elFirst)
		}
		if i == 0 {
			// в режиме first собственный отступ первого элемента не проверяется
			if opt.Mode == ListFirst {
				a.ignoreToken(elFirst)
			}
			continue
		}
		if opt.Mode == ListFirst && a.ts.isFirstOfLine(elFirst) {
			a.matchOffsetOf(firstElementTok, elFirst)
			continue
		}
		prevID := elements[i-1]
		if prevID == ast.NoNodeID {
			continue
		}
		prev := a.tree.Node(prevID)
		prevLast := a.ts.lastToken(prev)
		if prevLast < 0 || a.ts.at(prevLast).End.Line <= a.ts.at(start).End.Line {
			continue
		}
		anchor := a.elementFirstToken(prev, start)
		if a.ts.isFirstOfLine(prevLast) {
			anchor = prevLast
		}
		a.setDesiredOffsets(prev.Span.End, el.Span.End, anchor, 0)
	}
}

// isOuterIIFE reports whether fn is called immediately at the top level.
func (a *analysis) isOuterIIFE(fnID ast.NodeID) bool {
	call := a.tree.Parent(fnID)
	cn := a.tree.Node(call)
	if cn == nil || cn.Kind != ast.CallExpression || cn.Callee != fnID {
		return false
	}
	stmt := a.tree.Parent(call)
	for {
		sn := a.tree.Node(stmt)
		if sn == nil {
			return false
		}
		switch {
		case sn.Kind == ast.UnaryExpression && isIIFEUnary(sn.Op),
			sn.Kind == ast.AssignmentExpression,
			sn.Kind == ast.LogicalExpression,
			sn.Kind == ast.SequenceExpression,
			sn.Kind == ast.VariableDeclarator:
			stmt = sn.Parent
			continue
		}
		break
	}
	sn := a.tree.Node(stmt)
	if sn.Kind != ast.ExpressionStatement && sn.Kind != ast.VariableDeclaration {
		return false
	}
	return a.tree.Kind(sn.Parent) == ast.Program
}

func isIIFEUnary(op string) bool {
	switch op {
	case "!", "~", "+", "-":
		return true
	}
	return false
}

func (a *analysis) block(id ast.NodeID, n *ast.Node) {
	level := 1
	parent := a.tree.Node(n.Parent)
	if parent != nil {
		switch {
		case (parent.Kind == ast.FunctionExpression || parent.Kind == ast.ArrowFunctionExpression) && a.isOuterIIFE(n.Parent):
			level = a.cfg.OuterIIFEBody
		case parent.Kind == ast.FunctionExpression || parent.Kind == ast.ArrowFunctionExpression:
			level = a.cfg.FunctionExpression.Body
		case parent.Kind == ast.FunctionDeclaration:
			level = a.cfg.FunctionDeclaration.Body
		}
		switch parent.Kind {
		case ast.Program, ast.BlockStatement, ast.SwitchCase:
		default:
			a.setDesiredOffset(a.ts.firstToken(n), a.ts.firstToken(parent), 0)
		}
	}
	a.addElementListIndent(n.List, a.ts.firstToken(n), a.ts.lastToken(n), Offset(level))
}

// blocklessBody indents a non-block body one level past its controlling token.
func (a *analysis) blocklessBody(id ast.NodeID) {
	n := a.tree.Node(id)
	if n == nil || n.Kind == ast.BlockStatement {
		return
	}
	first, last := a.ts.firstToken(n), a.ts.lastToken(n)
	if first < 0 {
		return
	}
	lastParent := a.ts.beforeSkippingParens(first)
	for a.ts.isPunct(a.ts.codeBefore(first), "(") && a.ts.isPunct(a.ts.codeAfter(last), ")") {
		first, last = a.ts.codeBefore(first), a.ts.codeAfter(last)
	}
	a.setDesiredOffsets(a.ts.at(first).Span.Start, a.ts.at(last).Span.End, lastParent, 1)

	if tail := a.ts.lastToken(n); n.Kind != ast.EmptyStatement && a.ts.isPunct(tail, ";") {
		a.setDesiredOffset(tail, lastParent, 0)
	}
}

func (a *analysis) arrowFunction(n *ast.Node) {
	first := a.ts.firstToken(n)
	if a.ts.isPunct(first, "(") {
		body := a.tree.Node(n.Body)
		closing := a.ts.codeBefore(a.ts.firstToken(body))
		for closing > first && !a.ts.isPunct(closing, ")") {
			closing = a.ts.codeBefore(closing)
		}
		a.markParamParens(first, closing)
		a.addElementListIndent(n.Params, first, closing, a.cfg.FunctionExpression.Parameters)
	}
	a.blocklessBody(n.Body)
}

func (a *analysis) assignment(n *ast.Node) {
	left, right := a.tree.Node(n.Left), a.tree.Node(n.Right)
	op := a.ts.codeBetween(left.Span.End, right.Span.Start, func(t token.Token) bool { return t.Text == n.Op })
	if op < 0 {
		return
	}
	// правая часть отсчитывается от первого токена левой, даже многострочной
	a.setDesiredOffsets(a.ts.at(op).Span.Start, n.Span.End, a.ts.firstToken(left), 1)
	a.ignoreToken(op)
	a.ignoreToken(a.ts.codeAfter(op))
}

func (a *analysis) binary(n *ast.Node) {
	left, right := a.tree.Node(n.Left), a.tree.Node(n.Right)
	op := a.ts.codeBetween(left.Span.End, right.Span.Start, func(t token.Token) bool { return t.Text == n.Op })
	if op < 0 {
		return
	}
	after := a.ts.codeAfter(op)
	a.ignoreToken(op)
	a.ignoreToken(after)
	a.setDesiredOffset(after, op, 0)
}

func (a *analysis) markParamParens(open, closing int) {
	if open >= 0 {
		a.paramParens[open] = struct{}{}
	}
	if closing >= 0 {
		a.paramParens[closing] = struct{}{}
	}
}

// functionCall handles call and new arguments.
func (a *analysis) functionCall(n *ast.Node) {
	callee := a.tree.Node(n.Callee)
	closing := a.ts.lastToken(n)
	open := -1
	if len(n.List) > 0 {
		arg := a.tree.Node(n.List[0])
		open = a.ts.codeBetween(callee.Span.End, arg.Span.Start, func(t token.Token) bool { return t.IsPunct("(") })
	}
	if open < 0 {
		open = a.ts.codeBefore(closing)
	}
	if !a.ts.isPunct(open, "(") {
		return
	}
	a.markParamParens(open, closing)
	a.setDesiredOffset(open, a.ts.codeBefore(open), 0)
	a.addElementListIndent(n.List, open, closing, a.cfg.CallArguments)
}

func (a *analysis) classHeritage(n *ast.Node) {
	if n.SuperClass == ast.NoNodeID {
		return
	}
	super, body := a.tree.Node(n.SuperClass), a.tree.Node(n.Body)
	ext := a.ts.beforeSkippingParens(a.ts.firstToken(super))
	if ext < 0 {
		return
	}
	a.setDesiredOffsets(a.ts.at(ext).Span.Start, body.Span.Start, a.ts.firstToken(n), 1)
}

func (a *analysis) conditional(n *ast.Node) {
	first := a.ts.firstToken(n)
	test, cons, alt := a.tree.Node(n.Test), a.tree.Node(n.Consequent), a.tree.Node(n.Alternate)
	question := a.ts.codeBetween(test.Span.End, cons.Span.Start, func(t token.Token) bool { return t.IsPunct("?") })
	colon := a.ts.codeBetween(cons.Span.End, alt.Span.Start, func(t token.Token) bool { return t.IsPunct(":") })
	if question < 0 || colon < 0 {
		return
	}
	firstCons := a.ts.codeAfter(question)
	lastCons := a.ts.codeBefore(colon)
	firstAlt := a.ts.codeAfter(colon)

	a.setDesiredOffset(question, first, 1)
	a.setDesiredOffset(colon, first, 1)
	a.setDesiredOffset(firstCons, first, 1)
	if a.ts.at(lastCons).End.Line == a.ts.at(firstAlt).Start.Line {
		a.setDesiredOffset(firstAlt, firstCons, 0)
	} else {
		a.setDesiredOffset(firstAlt, first, 1)
	}
}

func (a *analysis) forStatement(n *ast.Node) {
	forOpen := a.ts.codeAfter(a.ts.firstToken(n))
	for _, part := range [...]ast.NodeID{n.Init, n.Test, n.Update} {
		if part != ast.NoNodeID {
			a.setNodeOffsets(part, forOpen, 1)
		}
	}
	a.blocklessBody(n.Body)
}

func (a *analysis) functionParams(n *ast.Node, opt ListOption) {
	body := a.tree.Node(n.Body)
	if body == nil {
		return
	}
	closing := a.ts.codeBefore(a.ts.firstToken(body))
	var open int
	if len(n.Params) > 0 {
		open = a.ts.codeBefore(a.ts.firstToken(a.tree.Node(n.Params[0])))
	} else {
		open = a.ts.codeBefore(closing)
	}
	if !a.ts.isPunct(open, "(") || !a.ts.isPunct(closing, ")") {
		return
	}
	a.markParamParens(open, closing)
	a.addElementListIndent(n.Params, open, closing, opt)
}

func (a *analysis) member(n *ast.Node) {
	object, prop := a.tree.Node(n.Object), a.tree.Node(n.Property)
	computed := n.Has(ast.FlagComputed)

	firstNon := a.ts.codeBetween(object.Span.End, prop.Span.Start, func(t token.Token) bool { return !t.IsPunct(")") })
	if firstNon < 0 {
		return
	}
	second := a.ts.codeAfter(firstNon)

	parenCount := 0
	for i := a.ts.codeAt(object.Span.End); i >= 0 && i < firstNon; i = a.ts.codeAfter(i) {
		if a.ts.isPunct(i, ")") {
			parenCount++
		}
	}
	firstObj := a.ts.firstToken(object)
	for k := 0; k < parenCount && firstObj >= 0; k++ {
		firstObj = a.ts.codeBefore(firstObj)
	}
	lastObj := a.ts.codeBefore(firstNon)
	if firstObj < 0 || lastObj < 0 {
		return
	}

	firstProp := second
	if computed {
		firstProp = firstNon
		a.setDesiredOffset(a.ts.lastToken(n), firstNon, 0)
		a.setNodeOffsets(n.Property, firstNon, 1)
	}
	base := firstObj
	if a.ts.valid(firstProp) && a.ts.at(lastObj).End.Line == a.ts.at(firstProp).Start.Line {
		base = lastObj
	}

	if opt := a.cfg.MemberExpression; opt.Mode == ListOffset {
		a.setDesiredOffset(firstNon, base, opt.Offset)
		if computed {
			a.setDesiredOffset(second, firstNon, opt.Offset)
		} else {
			a.setDesiredOffset(second, base, opt.Offset)
		}
		return
	}
	a.ignoreToken(firstNon)
	a.ignoreToken(second)
	a.setDesiredOffset(firstNon, base, 0)
	a.setDesiredOffset(second, firstNon, 0)
}

func (a *analysis) property(n *ast.Node) {
	if n.Has(ast.FlagShorthand) || n.Has(ast.FlagMethod) || n.Op != "init" {
		return
	}
	key, value := a.tree.Node(n.Key), a.tree.Node(n.Value)
	colon := a.ts.codeBetween(key.Span.End, value.Span.Start, func(t token.Token) bool { return t.IsPunct(":") })
	if colon >= 0 {
		a.ignoreToken(a.ts.codeAfter(colon))
	}
}

func (a *analysis) switchStatement(n *ast.Node) {
	disc := a.tree.Node(n.Discriminant)
	open := a.ts.codeBetween(disc.Span.End, n.Span.End, func(t token.Token) bool { return t.IsPunct("{") })
	closing := a.ts.lastToken(n)
	if open < 0 || closing < 0 {
		return
	}
	a.setDesiredOffsets(a.ts.at(open).Span.End, a.ts.at(closing).Span.Start, open, a.cfg.SwitchCase)

	if len(n.List) == 0 {
		return
	}
	lastCase := a.tree.Node(n.List[len(n.List)-1])
	for i := a.ts.search(lastCase.Span.End); i < closing; i++ {
		if a.ts.at(i).IsComment() {
			a.ignoreToken(i)
		}
	}
}

func (a *analysis) switchCase(n *ast.Node) {
	if len(n.List) == 1 && a.tree.Kind(n.List[0]) == ast.BlockStatement {
		return
	}
	kw := a.ts.firstToken(n)
	next := a.ts.codeAt(n.Span.End)
	if kw < 0 || next < 0 {
		return
	}
	a.setDesiredOffsets(a.ts.at(kw).Span.End, a.ts.at(next).Span.Start, kw, 1)
}

func (a *analysis) templateLiteral(n *ast.Node) {
	for i := range n.List {
		if i+1 >= len(n.Quasis) {
			break
		}
		prev, next := a.tree.Node(n.Quasis[i]), a.tree.Node(n.Quasis[i+1])
		prevTok := a.ts.firstToken(prev)
		from := noAnchor
		if prevTok >= 0 && !a.ts.at(prevTok).MultiLine() {
			from = prevTok
		}
		a.setDesiredOffsets(prev.Span.End, next.Span.Start, from, 1)
		a.setDesiredOffset(a.ts.firstToken(next), from, 0)
	}
}

func (a *analysis) variableDeclaration(n *ast.Node) {
	level := a.cfg.VariableDeclarator.For(n.Op)
	first := a.ts.firstToken(n)
	if first < 0 {
		return
	}
	a.setDesiredOffsets(n.Span.Start, n.Span.End, first, level)

	if len(n.List) > 0 {
		lastDecl := a.ts.firstToken(a.tree.Node(n.List[len(n.List)-1]))
		if lastDecl >= 0 && a.ts.at(lastDecl).Start.Line > a.ts.at(first).Start.Line {
			line := a.ts.at(first).Start.Line
			for i := first + 1; i < a.ts.len() && a.ts.at(i).Start.Line == line && a.ts.at(i).Span.End <= n.Span.End; i++ {
				a.addExtra(i, level)
			}
		}
	}
	if last := a.ts.lastToken(n); a.ts.isPunct(last, ";") {
		a.ignoreToken(last)
	}
}

func (a *analysis) variableDeclarator(n *ast.Node) {
	if n.Init == ast.NoNodeID {
		return
	}
	init := a.tree.Node(n.Init)
	eq := a.ts.beforeSkippingParens(a.ts.firstToken(init))
	after := a.ts.codeAfter(eq)
	if eq < 0 || after < 0 {
		return
	}
	a.ignoreToken(eq)
	a.ignoreToken(after)
	a.setDesiredOffsets(a.ts.at(after).Span.Start, n.Span.End, eq, 1)
	a.setDesiredOffset(eq, a.ts.lastToken(a.tree.Node(n.ID)), 0)
}

// addParensIndent re-anchors the contents of expression parens to "(".
func (a *analysis) addParensIndent() {
	type pair struct{ left, right int }
	var stack []int
	var pairs []pair
	for _, i := range a.ts.code {
		switch {
		case a.ts.isPunct(i, "("):
			stack = append(stack, i)
		case a.ts.isPunct(i, ")") && len(stack) > 0:
			pairs = append(pairs, pair{left: stack[len(stack)-1], right: i})
			stack = stack[:len(stack)-1]
		}
	}

	for k := len(pairs) - 1; k >= 0; k-- {
		p := pairs[k]
		_, lp := a.paramParens[p.left]
		_, rp := a.paramParens[p.right]
		if !lp && !rp {
			for i := a.ts.codeAfter(p.left); i >= 0 && i < p.right; i = a.ts.codeAfter(i) {
				if from := a.firstDependency(i); !a.ts.isCode(from) || from <= p.left || from >= p.right {
					a.setDesiredOffset(i, p.left, 1)
				}
			}
		}
		a.setDesiredOffset(p.right, p.left, 0)
	}
}
