package parser_test

import (
	"strings"
	"testing"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/parser"
	"indentguard/internal/source"
)

func parseSource(t *testing.T, input string) (parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte(input))
	file := fs.Get(fileID)
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Reporter: &diag.BagReporter{Bag: bag, File: file}})
	return res, bag
}

func parseOK(t *testing.T, input string) *ast.Tree {
	t.Helper()
	res, bag := parseSource(t, input)
	if bag.HasErrors() {
		var sb strings.Builder
		for _, d := range bag.Items() {
			sb.WriteString(d.Code.ID() + " " + d.Message + "\n")
		}
		t.Fatalf("unexpected errors for %q:\n%s", input, sb.String())
	}
	return res.Tree
}

func text(tree *ast.Tree, id ast.NodeID) string {
	sp := tree.Node(id).Span
	return string(tree.File.Content[sp.Start:sp.End])
}

// body возвращает операторы верхнего уровня
func body(tree *ast.Tree) []ast.NodeID {
	return tree.Node(tree.Root).List
}

func find(tree *ast.Tree, kind ast.Kind) ast.NodeID {
	var found ast.NodeID
	ast.Walk(tree, tree.Root, func(id ast.NodeID) bool {
		if found == ast.NoNodeID && tree.Kind(id) == kind {
			found = id
		}
		return found == ast.NoNodeID
	})
	return found
}

func TestStatementsAndSemicolons(t *testing.T) {
	tree := parseOK(t, "var a = 1\nlet b = 2;\nconst c = 3\nfoo()\n")
	stmts := body(tree)
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(stmts))
	}
	want := []ast.Kind{ast.VariableDeclaration, ast.VariableDeclaration, ast.VariableDeclaration, ast.ExpressionStatement}
	for i, k := range want {
		if got := tree.Kind(stmts[i]); got != k {
			t.Errorf("stmt %d: %v, want %v", i, got, k)
		}
	}
	if got := text(tree, stmts[1]); got != "let b = 2;" {
		t.Errorf("declaration span %q should include ';'", got)
	}
	if op := tree.Node(stmts[2]).Op; op != "const" {
		t.Errorf("declaration kind %q", op)
	}
}

func TestParenthesesExcludedFromSpan(t *testing.T) {
	tree := parseOK(t, "x = (a + b) * c;")
	bin := find(tree, ast.BinaryExpression)
	if got := text(tree, bin); got != "(a + b) * c" {
		t.Fatalf("outer binary span %q", got)
	}
	inner := tree.Node(bin).Left
	if got := text(tree, inner); got != "a + b" {
		t.Fatalf("inner binary span %q", got)
	}
	if !tree.Node(inner).Has(ast.FlagParenthesized) {
		t.Fatalf("inner binary should be marked parenthesized")
	}
}

func TestPrecedence(t *testing.T) {
	tree := parseOK(t, "a || b && c + d * e ** f ** g;")
	or := find(tree, ast.LogicalExpression)
	if tree.Node(or).Op != "||" {
		t.Fatalf("root op %q", tree.Node(or).Op)
	}
	and := tree.Node(or).Right
	if tree.Node(and).Op != "&&" {
		t.Fatalf("right of || is %q", tree.Node(and).Op)
	}
	pow := find(tree, ast.BinaryExpression)
	for tree.Node(pow).Op != "**" {
		pow = tree.Node(pow).Right
	}
	// ** правоассоциативен: e ** (f ** g)
	if got := text(tree, tree.Node(pow).Right); got != "f ** g" {
		t.Fatalf("right of first ** is %q", got)
	}
}

func TestArrowFunctions(t *testing.T) {
	tree := parseOK(t, "f(x => x + 1, (a, {b}) => {\n  return a;\n});")
	call := find(tree, ast.CallExpression)
	args := tree.Node(call).List
	if len(args) != 2 {
		t.Fatalf("got %d args", len(args))
	}
	first := tree.Node(args[0])
	if first.Kind != ast.ArrowFunctionExpression || !first.Has(ast.FlagExprBody) {
		t.Fatalf("first arg %v", first.Kind)
	}
	second := tree.Node(args[1])
	if len(second.Params) != 2 || tree.Kind(second.Params[1]) != ast.ObjectPattern {
		t.Fatalf("second arrow params %+v", second.Params)
	}
	if tree.Kind(second.Body) != ast.BlockStatement {
		t.Fatalf("second arrow body %v", tree.Kind(second.Body))
	}
}

func TestDestructuringAssignment(t *testing.T) {
	tree := parseOK(t, "[a, b] = [b, a];")
	assign := find(tree, ast.AssignmentExpression)
	if k := tree.Kind(tree.Node(assign).Left); k != ast.ArrayPattern {
		t.Fatalf("left side %v, want ArrayPattern", k)
	}
}

func TestTemplateLiteral(t *testing.T) {
	tree := parseOK(t, "s = `a${x}b${ {y: 1}.y }c`;")
	tpl := find(tree, ast.TemplateLiteral)
	n := tree.Node(tpl)
	if len(n.Quasis) != 3 || len(n.List) != 2 {
		t.Fatalf("quasis=%d exprs=%d", len(n.Quasis), len(n.List))
	}
	if got := text(tree, n.Quasis[1]); got != "}b${" {
		t.Fatalf("middle chunk %q", got)
	}
}

func TestNewWithoutArguments(t *testing.T) {
	tree := parseOK(t, "a = new Foo.Bar;\nb = new Baz(1)(2);")
	first := find(tree, ast.NewExpression)
	if n := tree.Node(first); len(n.List) != 0 || tree.Kind(n.Callee) != ast.MemberExpression {
		t.Fatalf("new callee %v args %d", tree.Kind(n.Callee), len(n.List))
	}
	second := tree.Node(body(tree)[1]).Body
	call := tree.Node(second).Right
	if tree.Kind(call) != ast.CallExpression || tree.Kind(tree.Node(call).Callee) != ast.NewExpression {
		t.Fatalf("new Baz(1)(2) parsed as %v", tree.Kind(call))
	}
}

func TestControlFlow(t *testing.T) {
	src := `function f(a, b = 2, ...rest) {
  for (var i = 0; i < a; i++) {}
  for (const k in obj) continue;
  for (let v of list) break;
  do x++; while (x < 3)
  while (y) y--;
  if (a) b(); else if (c) d(); else e();
  try { g(); } catch (err) { h(); } finally { k(); }
  switch (a) {
    case 1:
      break;
    default:
      return;
  }
  label: for (;;) break label;
}
`
	tree := parseOK(t, src)
	fn := tree.Node(body(tree)[0])
	if fn.Kind != ast.FunctionDeclaration || len(fn.Params) != 3 {
		t.Fatalf("function %v params %d", fn.Kind, len(fn.Params))
	}
	if tree.Kind(fn.Params[1]) != ast.AssignmentPattern || tree.Kind(fn.Params[2]) != ast.RestElement {
		t.Fatalf("param kinds %v %v", tree.Kind(fn.Params[1]), tree.Kind(fn.Params[2]))
	}
	stmts := tree.Node(fn.Body).List
	want := []ast.Kind{
		ast.ForStatement, ast.ForInStatement, ast.ForOfStatement, ast.DoWhileStatement,
		ast.WhileStatement, ast.IfStatement, ast.TryStatement, ast.SwitchStatement, ast.LabeledStatement,
	}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(want))
	}
	for i, k := range want {
		if got := tree.Kind(stmts[i]); got != k {
			t.Errorf("stmt %d: %v, want %v", i, got, k)
		}
	}
	sw := tree.Node(stmts[7])
	if len(sw.List) != 2 || tree.Node(sw.List[1]).Test != ast.NoNodeID {
		t.Fatalf("switch cases %d", len(sw.List))
	}
}

func TestClasses(t *testing.T) {
	tree := parseOK(t, "class A extends B {\n  constructor() { super(); }\n  static make() {}\n  get size() { return 1; }\n}")
	cls := tree.Node(body(tree)[0])
	if cls.SuperClass == ast.NoNodeID {
		t.Fatalf("missing superclass")
	}
	members := tree.Node(cls.Body).List
	if len(members) != 3 {
		t.Fatalf("got %d members", len(members))
	}
	ops := []string{"constructor", "method", "get"}
	for i, op := range ops {
		if got := tree.Node(members[i]).Op; got != op {
			t.Errorf("member %d op %q, want %q", i, got, op)
		}
	}
	if !tree.Node(members[1]).Has(ast.FlagStatic) {
		t.Errorf("make should be static")
	}
}

func TestObjectLiteral(t *testing.T) {
	tree := parseOK(t, "o = {a, b: 1, [c]: 2, d() {}, get e() { return 1; }, 'f': 3};")
	obj := tree.Node(find(tree, ast.ObjectExpression))
	if len(obj.List) != 6 {
		t.Fatalf("got %d properties", len(obj.List))
	}
	checks := []struct {
		flag ast.Flags
		op   string
	}{
		{ast.FlagShorthand, "init"},
		{0, "init"},
		{ast.FlagComputed, "init"},
		{ast.FlagMethod, "init"},
		{0, "get"},
		{0, "init"},
	}
	for i, c := range checks {
		n := tree.Node(obj.List[i])
		if c.flag != 0 && !n.Has(c.flag) {
			t.Errorf("property %d missing flag %v", i, c.flag)
		}
		if n.Op != c.op {
			t.Errorf("property %d op %q, want %q", i, n.Op, c.op)
		}
	}
	// shorthand: ключ и значение: один узел, в детях он один раз
	if got := len(tree.Children(obj.List[0])); got != 1 {
		t.Errorf("shorthand property children = %d, want 1", got)
	}
}

func TestParentLinks(t *testing.T) {
	tree := parseOK(t, "if (a) { b(); }")
	call := find(tree, ast.CallExpression)
	chain := ast.Ancestors(tree, call)
	want := []ast.Kind{ast.ExpressionStatement, ast.BlockStatement, ast.IfStatement, ast.Program}
	if len(chain) != len(want) {
		t.Fatalf("ancestors %d, want %d", len(chain), len(want))
	}
	for i, k := range want {
		if got := tree.Kind(chain[i]); got != k {
			t.Errorf("ancestor %d: %v, want %v", i, got, k)
		}
	}
}

func TestErrorRecoveryProducesBadStatement(t *testing.T) {
	res, bag := parseSource(t, "var a = ;\nfoo();\nif (x) {\n  y(;\n}\nbar();\n")
	if !bag.HasErrors() {
		t.Fatalf("expected syntax errors")
	}
	if res.Errors == 0 {
		t.Fatalf("result should count errors")
	}
	stmts := body(res.Tree)
	if res.Tree.Kind(stmts[0]) != ast.BadStatement {
		t.Fatalf("first statement %v, want BadStatement", res.Tree.Kind(stmts[0]))
	}
	if res.Tree.Kind(stmts[1]) != ast.ExpressionStatement {
		t.Fatalf("parser did not recover: %v", res.Tree.Kind(stmts[1]))
	}
	last := stmts[len(stmts)-1]
	if got := text(res.Tree, last); got != "bar();" {
		t.Fatalf("last statement %q", got)
	}
}

func TestUnsupportedSyntax(t *testing.T) {
	for _, src := range []string{
		"import x from 'y';",
		"function* gen() {}",
		"async function f() {}",
	} {
		_, bag := parseSource(t, src)
		if !bag.HasCode(diag.SynUnsupportedSyntax) {
			t.Errorf("%q: expected SynUnsupportedSyntax", src)
		}
	}
}

func TestIllegalReturnAndThrow(t *testing.T) {
	_, bag := parseSource(t, "return 1;")
	if !bag.HasCode(diag.SynIllegalReturn) {
		t.Errorf("expected SynIllegalReturn")
	}
	_, bag = parseSource(t, "function f() {\n  throw\n  new Error();\n}")
	if !bag.HasCode(diag.SynNewlineAfterThrow) {
		t.Errorf("expected SynNewlineAfterThrow")
	}
}

func TestMissingSemicolon(t *testing.T) {
	_, bag := parseSource(t, "a b")
	if !bag.HasCode(diag.SynExpectSemicolon) {
		t.Errorf("expected SynExpectSemicolon")
	}
}

func TestTokensExcludeEOF(t *testing.T) {
	tree := parseOK(t, "a; // tail\n")
	if len(tree.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(tree.Tokens))
	}
	if len(tree.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(tree.Comments))
	}
	first, end := tree.TokenRange(body(tree)[0])
	if first != 0 || end != 2 {
		t.Fatalf("token range [%d,%d)", first, end)
	}
}
