// Package indent computes the indentation every line-leading token should
// have and reports the lines that deviate, each with a whitespace fix.
//
// The engine records, per token, an offset in indentation levels relative
// to an earlier anchor token. Node rules refine these records in a single
// pre-order walk; desired indentation is resolved lazily through the anchor
// chain.
package indent

import (
	"fmt"

	"fortio.org/safecast"

	"indentguard/internal/ast"
	"indentguard/internal/diag"
	"indentguard/internal/fix"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

// Problem is one misindented line.
type Problem struct {
	Token         token.Token
	Line          uint32
	LineStart     uint32
	ExpectedChars int
	ActualSpaces  int
	ActualTabs    int
	Message       string
	Edit          diag.TextEdit
}

// Problems returns the misindented lines of tree in line order.
func Problems(tree *ast.Tree, cfg Config) []Problem {
	if tree == nil || tree.File == nil {
		return nil
	}
	a := newAnalysis(tree, cfg)
	a.build()
	return a.compare()
}

// Check runs Problems and converts every finding into a diagnostic with a fix.
func Check(tree *ast.Tree, cfg Config) []diag.Diagnostic {
	problems := Problems(tree, cfg)
	out := make([]diag.Diagnostic, 0, len(problems))
	for i := range problems {
		out = append(out, problems[i].Diagnostic(tree.File))
	}
	return out
}

// Diagnostic converts the problem into an IND3001 diagnostic.
func (p *Problem) Diagnostic(file *source.File) diag.Diagnostic {
	var fileID source.FileID
	if file != nil {
		fileID = file.ID
	}
	d := diag.NewError(diag.IndentMismatch, source.Span{
		File:  fileID,
		Start: p.LineStart,
		End:   p.Token.Span.Start,
	}, p.Message)
	d.Loc = source.LineCol{Line: p.Line, Col: 1}
	d.Indent = &diag.IndentDetail{
		Expected:     p.ExpectedChars,
		ActualSpaces: p.ActualSpaces,
		ActualTabs:   p.ActualTabs,
	}
	d.Fixes = []diag.Fix{fix.New("fix indentation", []diag.TextEdit{p.Edit},
		fix.WithID(fmt.Sprintf("%s-%d", diag.IndentMismatch.ID(), p.Line)))}
	return d
}

// compare checks every line that a token starts.
func (a *analysis) compare() []Problem {
	var out []Problem
	lines := a.ts.file.LineCount()
	for line := uint32(1); line <= lines; line++ {
		idx, ok := a.ts.firstByLine[line]
		if !ok {
			continue
		}
		tok := a.ts.at(idx)
		// строки внутри многострочных токенов не проверяем
		if tok.Start.Line != line || a.ignored[idx] {
			continue
		}
		lineStart, spaces, tabs, other := a.ts.leading(line, tok.Span.Start)
		want := a.desiredIndent(idx)
		if a.valid(want, spaces, tabs, other) {
			continue
		}
		if tok.IsComment() && a.commentMatchesNeighbor(idx, spaces, tabs, other) {
			continue
		}
		out = append(out, a.problem(tok, line, lineStart, want, spaces, tabs, other))
	}
	return out
}

// valid reports whether the measured indentation satisfies want.
// Lines mixing spaces and tabs belong to a separate check and always pass.
func (a *analysis) valid(want, spaces, tabs, other int) bool {
	if spaces > 0 && tabs > 0 {
		return true
	}
	if other > 0 {
		return false
	}
	if a.cfg.Unit.Kind == UnitTab {
		return tabs == want && spaces == 0
	}
	return spaces == want && tabs == 0
}

// commentMatchesNeighbor lets a comment align with the code token before
// it or, failing that, with the code token after it.
func (a *analysis) commentMatchesNeighbor(idx, spaces, tabs, other int) bool {
	before := a.ts.codeBefore(idx)
	if before >= 0 && a.valid(a.desiredIndent(before), spaces, tabs, other) {
		return true
	}
	after := a.ts.codeAfter(before)
	return after >= 0 && a.valid(a.desiredIndent(after), spaces, tabs, other)
}

func (a *analysis) problem(tok token.Token, line, lineStart uint32, want, spaces, tabs, other int) Problem {
	unit := a.cfg.Unit
	p := Problem{
		Token:         tok,
		Line:          line,
		LineStart:     lineStart,
		ExpectedChars: want,
		ActualSpaces:  spaces,
		ActualTabs:    tabs,
		Message:       message(unit, want, spaces, tabs),
	}

	start, tokStart := offsetInt(lineStart), offsetInt(tok.Span.Start)
	have := spaces
	if unit.Kind == UnitTab {
		have = tabs
	}
	pure := other == 0 && have == tokStart-start

	switch {
	case pure && have < want:
		p.Edit = fix.Insert(start, unit.Repeat(want-have))
	case pure && have > want:
		p.Edit = fix.Delete(start, start+have-want)
	default:
		p.Edit = fix.Replace(start, tokStart, unit.Repeat(want))
	}
	return p
}

func offsetInt(off uint32) int {
	n, err := safecast.Conv[int](off)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// message renders "Expected indentation of N unit(s) but found M."
func message(unit Unit, want, spaces, tabs int) string {
	expected := plural(want, unit.Name())
	var found string
	switch {
	case spaces > 0 && tabs > 0:
		found = plural(spaces, "space") + " and " + plural(tabs, "tab")
	case spaces > 0 && unit.Kind == UnitSpace:
		found = fmt.Sprintf("%d", spaces)
	case spaces > 0:
		found = plural(spaces, "space")
	case tabs > 0 && unit.Kind == UnitTab:
		found = fmt.Sprintf("%d", tabs)
	case tabs > 0:
		found = plural(tabs, "tab")
	default:
		found = "0"
	}
	return fmt.Sprintf("Expected indentation of %s but found %s.", expected, found)
}
