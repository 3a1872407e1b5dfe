package lexer_test

import (
	"fmt"
	"testing"

	"indentguard/internal/diag"
	"indentguard/internal/lexer"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) hasCode(code diag.Code) bool {
	for _, d := range r.diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// tokenize лексит тестовую строку целиком
func tokenize(input string) (tokens, comments []token.Token, rep *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte(input))
	rep = &testReporter{}
	tokens, comments = lexer.Tokenize(fs.Get(fileID), lexer.Options{Reporter: rep})
	return tokens, comments, rep
}

func texts(tokens []token.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == token.EOF {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}

func expectTexts(t *testing.T, input string, want ...string) []token.Token {
	t.Helper()
	tokens, _, rep := tokenize(input)
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %+v", input, rep.diagnostics)
	}
	got := texts(tokens)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("tokens for %q:\n got  %q\n want %q", input, got, want)
	}
	return tokens
}

func TestPunctuatorsLongestMatch(t *testing.T) {
	expectTexts(t, "a >>>= b === c !== d ... e => f",
		"a", ">>>=", "b", "===", "c", "!==", "d", "...", "e", "=>", "f")
	expectTexts(t, "x**=2;y>>>1", "x", "**=", "2", ";", "y", ">>>", "1")
}

func TestKeywordsAndContextualWords(t *testing.T) {
	tokens := expectTexts(t, "var let = this; of", "var", "let", "=", "this", ";", "of")
	want := []token.Kind{token.Keyword, token.Ident, token.Punct, token.Keyword, token.Punct, token.Ident}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d (%q): kind %v, want %v", i, tokens[i].Text, tokens[i].Kind, k)
		}
	}
}

func TestEscapedKeywordIsIdent(t *testing.T) {
	tokens := expectTexts(t, `v\u0061r`, `v\u0061r`)
	if tokens[0].Kind != token.Ident {
		t.Fatalf("kind = %v, want Ident", tokens[0].Kind)
	}
}

func TestUnicodeIdentifier(t *testing.T) {
	tokens := expectTexts(t, "переменная = 1", "переменная", "=", "1")
	if tokens[0].Kind != token.Ident {
		t.Fatalf("kind = %v", tokens[0].Kind)
	}
}

func TestNumbers(t *testing.T) {
	expectTexts(t, "0x1F 0o17 0b101 1.5e-3 .25 42", "0x1F", "0o17", "0b101", "1.5e-3", ".25", "42")

	_, _, rep := tokenize("3in")
	if !rep.hasCode(diag.LexBadNumber) {
		t.Fatalf("expected LexBadNumber, got %+v", rep.diagnostics)
	}
}

func TestStrings(t *testing.T) {
	expectTexts(t, `"a\"b" 'c'`, `"a\"b"`, `'c'`)

	_, _, rep := tokenize("'abc\nx")
	if !rep.hasCode(diag.LexUnterminatedString) {
		t.Fatalf("expected LexUnterminatedString, got %+v", rep.diagnostics)
	}
}

func TestRegExpVersusDivision(t *testing.T) {
	tokens := expectTexts(t, "a = b / c / d", "a", "=", "b", "/", "c", "/", "d")
	if tokens[3].Kind != token.Punct {
		t.Fatalf("expected division, got %v", tokens[3].Kind)
	}

	tokens = expectTexts(t, "x = /[/]a/g.test(y)", "x", "=", "/[/]a/g", ".", "test", "(", "y", ")")
	if tokens[2].Kind != token.RegExp {
		t.Fatalf("expected regexp, got %v", tokens[2].Kind)
	}

	tokens = expectTexts(t, "f(x) / 2", "f", "(", "x", ")", "/", "2")
	if tokens[4].Kind != token.Punct {
		t.Fatalf("division after ')' lexed as %v", tokens[4].Kind)
	}
}

func TestTemplateChunks(t *testing.T) {
	tokens := expectTexts(t, "`a${ {b: 1}.b }c${d}e`",
		"`a${", "{", "b", ":", "1", "}", ".", "b", "}c${", "d", "}e`")
	for _, i := range []int{0, 8, 10} {
		if tokens[i].Kind != token.Template {
			t.Errorf("token %d (%q) kind %v, want Template", i, tokens[i].Text, tokens[i].Kind)
		}
	}
}

func TestNestedTemplate(t *testing.T) {
	expectTexts(t, "`x${`y${z}`}`", "`x${", "`y${", "z", "}`", "}`")
}

func TestUnterminatedTemplate(t *testing.T) {
	_, _, rep := tokenize("`abc")
	if !rep.hasCode(diag.LexUnterminatedTemplate) {
		t.Fatalf("expected LexUnterminatedTemplate, got %+v", rep.diagnostics)
	}
}

func TestCommentsCollectedSeparately(t *testing.T) {
	tokens, comments, rep := tokenize("a // one\r\n/* two\n three */ b")
	if len(rep.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", rep.diagnostics)
	}
	if got := texts(tokens); fmt.Sprint(got) != "[a b]" {
		t.Fatalf("tokens = %q", got)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Kind != token.LineComment || comments[0].Text != "// one" {
		t.Errorf("line comment = %+v", comments[0])
	}
	if comments[1].Kind != token.BlockComment || !comments[1].MultiLine() {
		t.Errorf("block comment = %+v", comments[1])
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, _, rep := tokenize("a /* never closed")
	if !rep.hasCode(diag.LexUnterminatedBlockComment) {
		t.Fatalf("expected LexUnterminatedBlockComment, got %+v", rep.diagnostics)
	}
}

func TestHashbang(t *testing.T) {
	tokens, comments, _ := tokenize("#!/usr/bin/env node\nfoo();")
	if len(comments) != 1 || comments[0].Text != "#!/usr/bin/env node" {
		t.Fatalf("hashbang comment = %+v", comments)
	}
	if tokens[0].Text != "foo" || tokens[0].Start.Line != 2 {
		t.Fatalf("first token = %+v", tokens[0])
	}
}

func TestPositions(t *testing.T) {
	tokens, _, _ := tokenize("if (a) {\n\tb();\n}")
	b := tokens[5]
	if b.Text != "b" {
		t.Fatalf("token 5 = %q", b.Text)
	}
	if b.Start != (source.LineCol{Line: 2, Col: 2}) {
		t.Fatalf("b at %+v, want 2:2", b.Start)
	}
	if last := tokens[len(tokens)-1]; last.Kind != token.EOF {
		t.Fatalf("last token kind %v", last.Kind)
	}
}

func TestUnknownCharacter(t *testing.T) {
	tokens, _, rep := tokenize("a # b")
	if !rep.hasCode(diag.LexUnknownChar) {
		t.Fatalf("expected LexUnknownChar, got %+v", rep.diagnostics)
	}
	if tokens[1].Kind != token.Invalid {
		t.Fatalf("kind = %v", tokens[1].Kind)
	}
}
