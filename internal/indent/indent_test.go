package indent

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/parser"
	"indentguard/internal/source"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.js", []byte(src)))
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Reporter: &diag.BagReporter{Bag: bag, File: file}})
	for _, d := range bag.Items() {
		t.Logf("%s %s", d.Code.ID(), d.Message)
	}
	require.False(t, bag.HasErrors(), "syntax errors in %q", src)
	return res.Tree
}

func spaces(n int) Config {
	cfg := DefaultConfig()
	cfg.Unit = Spaces(n)
	return cfg
}

// applyEdits применяет непересекающиеся правки справа налево.
func applyEdits(src string, problems []Problem) string {
	edits := make([]diag.TextEdit, 0, len(problems))
	for _, p := range problems {
		edits = append(edits, p.Edit)
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Start > edits[j].Start })
	out := src
	for _, e := range edits {
		out = out[:e.Start] + e.NewText + out[e.End:]
	}
	return out
}

func lines(problems []Problem) []uint32 {
	out := make([]uint32, 0, len(problems))
	for _, p := range problems {
		out = append(out, p.Line)
	}
	return out
}

func TestCorrectBlockHasNoProblems(t *testing.T) {
	tree := parse(t, "if (a) {\n  b();\n}\n")
	assert.Empty(t, Problems(tree, spaces(2)))
}

func TestMissingIndentInsertsDeficit(t *testing.T) {
	src := "if (a) {\nb();\n}\n"
	problems := Problems(parse(t, src), spaces(2))
	require.Len(t, problems, 1)

	p := problems[0]
	assert.Equal(t, uint32(2), p.Line)
	assert.Equal(t, 2, p.ExpectedChars)
	assert.Equal(t, 0, p.ActualSpaces)
	assert.Equal(t, 0, p.ActualTabs)
	assert.Equal(t, "Expected indentation of 2 spaces but found 0.", p.Message)
	assert.Equal(t, diag.TextEdit{Start: 9, End: 9, NewText: "  "}, p.Edit)
}

func TestExcessIndentDeletesSurplus(t *testing.T) {
	src := "if (a) {\n      b();\n}\n"
	problems := Problems(parse(t, src), spaces(2))
	require.Len(t, problems, 1)
	assert.Equal(t, diag.TextEdit{Start: 9, End: 13}, problems[0].Edit)
	assert.Equal(t, "if (a) {\n  b();\n}\n", applyEdits(src, problems))
}

func TestWrongCharacterReplacesIndent(t *testing.T) {
	src := "if (a) {\n\tb();\n}\n"
	problems := Problems(parse(t, src), spaces(4))
	require.Len(t, problems, 1)
	assert.Equal(t, "Expected indentation of 4 spaces but found 1 tab.", problems[0].Message)
	assert.Equal(t, diag.TextEdit{Start: 9, End: 10, NewText: "    "}, problems[0].Edit)
}

func TestTabUnit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Unit = Tab()
	assert.Empty(t, Problems(parse(t, "if (a) {\n\tb();\n}\n"), cfg))

	problems := Problems(parse(t, "if (a) {\n\t\tb();\n}\n"), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, "Expected indentation of 1 tab but found 2.", problems[0].Message)
}

func TestMixedIndentIsNotReported(t *testing.T) {
	assert.Empty(t, Problems(parse(t, "if (a) {\n \t b();\n}\n"), spaces(2)))
}

func TestSwitchCase(t *testing.T) {
	src := strings.Join([]string{
		"switch (a) {",
		"  case 1:",
		"    b();",
		"    break;",
		"  default:",
		"      c();",
		"}",
		"",
	}, "\n")
	cfg := spaces(2)
	cfg.SwitchCase = 1
	problems := Problems(parse(t, src), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, uint32(6), problems[0].Line)
	assert.Equal(t, 4, problems[0].ExpectedChars)
	assert.Equal(t, 6, problems[0].ActualSpaces)
}

func TestSwitchCaseDefaultsToZero(t *testing.T) {
	src := "switch (a) {\ncase 1:\n  b();\n  break;\n}\n"
	assert.Empty(t, Problems(parse(t, src), spaces(2)))
}

func TestTrailingSwitchCommentIsFree(t *testing.T) {
	src := "switch (a) {\n  case 1:\n    b();\n      // free\n}\n"
	cfg := spaces(2)
	cfg.SwitchCase = 1
	assert.Empty(t, Problems(parse(t, src), cfg))
}

func TestMultiDeclaratorInitializer(t *testing.T) {
	cfg := spaces(2)
	cfg.VariableDeclarator = VarOptions{Var: 2, Let: 2, Const: 2}

	assert.Empty(t, Problems(parse(t, "var a = 1,\n    b = {\n      x: 1\n    };\n"), cfg))
	assert.Empty(t, Problems(parse(t, "var a = {\n      x: 1\n    },\n    b = 2;\n"), cfg))

	problems := Problems(parse(t, "var a = {\n  x: 1\n},\n    b = 2;\n"), cfg)
	assert.Equal(t, []uint32{2, 3}, lines(problems))
}

func TestValidSamples(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"function", "function foo(a, b) {\n  return a + b;\n}\n"},
		{"callback", "foo(function () {\n  bar();\n});\n"},
		{"array of objects", "var list = [\n  {\n    a: 1\n  },\n  {\n    b: 2\n  }\n];\n"},
		{"object argument", "foo({\n  a: 1\n});\n"},
		{"comment in block", "function a() {\n  // comment\n  return 1;\n}\n"},
		{"comment before closer", "if (a) {\n  b();\n// trailing\n}\n"},
		{"else if chain", "if (a) {\n  b();\n} else if (c) {\n  d();\n} else {\n  e();\n}\n"},
		{"blockless bodies", "if (a)\n  b();\nelse\n  c();\nwhile (x)\n  y();\n"},
		{"template", "var s = `a${\n  b\n}c`;\n"},
		{"iife", "(function () {\n  foo();\n})();\n"},
		{"ternary", "var x = a\n  ? b\n  : c;\n"},
		{"call arguments", "foo(a,\n  b);\n"},
		{"class", "class A extends B {\n  constructor() {\n    super();\n  }\n  m() {\n    return 1;\n  }\n}\n"},
		{"arrow", "var f = (a) => {\n  return a;\n};\n"},
		{"for", "for (var i = 0; i < n; i++) {\n  x(i);\n}\n"},
		{"try", "try {\n  a();\n} catch (e) {\n  b();\n} finally {\n  c();\n}\n"},
		{"multiline block comment", "/*\n * doc\n   */\nfoo();\n"},
		{"parens", "var a = (\n  b + c\n);\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := Problems(parse(t, tc.src), spaces(2))
			assert.Empty(t, problems, "lines %v", lines(problems))
		})
	}
}

func TestMemberExpression(t *testing.T) {
	src := "foo\n  .bar\n  .baz();\n"
	cfg := spaces(2)
	assert.Empty(t, Problems(parse(t, "foo\n      .bar\n.baz();\n"), cfg), "unset option ignores member chains")

	cfg.MemberExpression = Offset(1)
	assert.Empty(t, Problems(parse(t, src), cfg))

	problems := Problems(parse(t, "foo\n.bar\n  .baz();\n"), cfg)
	assert.Equal(t, []uint32{2}, lines(problems))
}

func TestAssignmentAnchorsOnLeftSideStart(t *testing.T) {
	cfg := spaces(4)

	assert.Empty(t, Problems(parse(t, "a = b\n    .c;\n"), cfg))
	assert.Empty(t, Problems(parse(t, "a[\n    0\n] = b\n        .c;\n"), cfg))

	problems := Problems(parse(t, "a[\n    0\n] = b\n    .c;\n"), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, uint32(4), problems[0].Line)
	assert.Equal(t, 8, problems[0].ExpectedChars)
}

func TestFirstParameterAlignment(t *testing.T) {
	cfg := spaces(2)
	cfg.FunctionDeclaration.Parameters = First()

	assert.Empty(t, Problems(parse(t, "function foo(a,\n             b) {\n}\n"), cfg))

	problems := Problems(parse(t, "function foo(a,\n  b) {\n}\n"), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, 13, problems[0].ExpectedChars)
}

func TestFirstParameterOnOwnLine(t *testing.T) {
	cfg := spaces(2)
	cfg.FunctionDeclaration.Parameters = First()

	assert.Empty(t, Problems(parse(t, "function foo(\n      a,\n      b) {\n}\n"), cfg))

	problems := Problems(parse(t, "function foo(\n      a,\n    b) {\n}\n"), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, uint32(3), problems[0].Line)
	assert.Equal(t, 6, problems[0].ExpectedChars)
}

func TestFirstAlignmentCountsColumnsNotBytes(t *testing.T) {
	cfg := spaces(2)
	cfg.CallArguments = First()

	assert.Empty(t, Problems(parse(t, "föö(a,\n    b);\n"), cfg))

	problems := Problems(parse(t, "föö(a,\n     b);\n"), cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, 4, problems[0].ExpectedChars)
	assert.Equal(t, "Expected indentation of 4 spaces but found 5.", problems[0].Message)
}

func TestIgnoredParametersAreNotChecked(t *testing.T) {
	assert.Empty(t, Problems(parse(t, "function foo(a,\n         b) {\n}\n"), spaces(2)))
}

func TestOuterIIFEBody(t *testing.T) {
	cfg := spaces(2)
	cfg.OuterIIFEBody = 0
	assert.Empty(t, Problems(parse(t, "(function () {\nfoo();\n})();\n"), cfg))

	problems := Problems(parse(t, "(function () {\n  foo();\n})();\n"), cfg)
	assert.Equal(t, []uint32{2}, lines(problems))
}

func TestFixThenRecheck(t *testing.T) {
	samples := []string{
		"function foo(a, b) {\nvar x = 1;\n      if (x) {\n  return a;\n    }\n}\n",
		"var obj = {\n      a: [\n  1,\n        2\n      ],\n  b: 3\n};\n",
		"foo(function () {\n        bar();\n    baz(1,\n2);\n  });\n",
		"switch (a) {\n    case 1:\n  b();\n        break;\n default:\nc();\n}\n",
		"class A {\n      m() {\n  return 1;\n        }\n}\n",
		"if (a)\nb();\n  else\n      c();\n",
		"\tif (a) {\n\t\t\tb();\n\t}\n",
	}
	cfg := spaces(2)
	cfg.SwitchCase = 1
	for _, src := range samples {
		problems := Problems(parse(t, src), cfg)
		require.NotEmpty(t, problems, "sample %q", src)

		fixed := applyEdits(src, problems)
		again := Problems(parse(t, fixed), cfg)
		assert.Empty(t, again, "fixed output %q still has lines %v", fixed, lines(again))
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	tree := parse(t, "var obj = {\n  a: [\n    1,\n    2\n  ],\n  b: foo(x,\n    y)\n};\n")
	a := newAnalysis(tree, spaces(2))
	a.build()

	first := make([]int, a.ts.len())
	for i := range first {
		first[i] = a.desiredIndent(i)
	}
	for i := range first {
		assert.Equal(t, first[i], a.desiredIndent(i), "token %d", i)
	}

	fresh := newAnalysis(tree, spaces(2))
	fresh.build()
	for i := a.ts.len() - 1; i >= 0; i-- {
		assert.Equal(t, first[i], fresh.desiredIndent(i), "token %d resolved in reverse", i)
	}
}

func TestAnchorsPrecedeTokens(t *testing.T) {
	tree := parse(t, "foo(a, function () {\n  return [\n    (b),\n  ];\n});\n")
	a := newAnalysis(tree, spaces(2))
	a.build()
	for i, rec := range a.records {
		assert.Less(t, rec.from, i, "token %d", i)
	}
}

func TestRecoveredTreeIsChecked(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("bad.js", []byte("foo(;\n  bar();\n")))
	res := parser.ParseFile(file, parser.Options{Reporter: &diag.BagReporter{Bag: diag.NewBag(0), File: file}})
	assert.NotPanics(t, func() { Problems(res.Tree, spaces(2)) })
}

func TestMessagePluralization(t *testing.T) {
	cases := []struct {
		unit               Unit
		want, spaces, tabs int
		msg                string
	}{
		{Spaces(2), 2, 0, 0, "Expected indentation of 2 spaces but found 0."},
		{Spaces(2), 1, 3, 0, "Expected indentation of 1 space but found 3."},
		{Spaces(4), 0, 1, 0, "Expected indentation of 0 spaces but found 1."},
		{Tab(), 1, 4, 0, "Expected indentation of 1 tab but found 4 spaces."},
		{Tab(), 2, 1, 0, "Expected indentation of 2 tabs but found 1 space."},
		{Tab(), 2, 0, 1, "Expected indentation of 2 tabs but found 1."},
		{Spaces(4), 4, 0, 2, "Expected indentation of 4 spaces but found 2 tabs."},
		{Spaces(4), 4, 1, 2, "Expected indentation of 4 spaces but found 1 space and 2 tabs."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.msg, message(tc.unit, tc.want, tc.spaces, tc.tabs))
	}
}

func TestCheckBuildsDiagnostics(t *testing.T) {
	tree := parse(t, "if (a) {\nb();\n}\n")
	diags := Check(tree, spaces(2))
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, diag.IndentMismatch, d.Code)
	assert.Equal(t, diag.SevError, d.Severity)
	assert.Equal(t, source.LineCol{Line: 2, Col: 1}, d.Loc)
	require.NotNil(t, d.Indent)
	assert.Equal(t, 2, d.Indent.Expected)
	require.True(t, d.HasFix())
	assert.Equal(t, []diag.TextEdit{{Start: 9, End: 9, NewText: "  "}}, d.Edits())
}
