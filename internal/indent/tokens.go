package indent

import (
	"sort"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"indentguard/internal/ast"
	"indentguard/internal/source"
	"indentguard/internal/token"
)

// tokenStore is the merged, position-ordered sequence of code tokens and
// comments. Every index in the analysis refers to this sequence.
type tokenStore struct {
	file *source.File
	toks []token.Token

	code     []int // индексы значимых токенов
	codeRank []int // число значимых токенов до i

	firstByLine map[uint32]int
}

func newTokenStore(tree *ast.Tree) *tokenStore {
	toks := make([]token.Token, 0, len(tree.Tokens)+len(tree.Comments))
	i, j := 0, 0
	for i < len(tree.Tokens) || j < len(tree.Comments) {
		if j >= len(tree.Comments) || (i < len(tree.Tokens) && tree.Tokens[i].Span.Start < tree.Comments[j].Span.Start) {
			toks = append(toks, tree.Tokens[i])
			i++
			continue
		}
		toks = append(toks, tree.Comments[j])
		j++
	}

	ts := &tokenStore{
		file:        tree.File,
		toks:        toks,
		code:        make([]int, 0, len(tree.Tokens)),
		codeRank:    make([]int, len(toks)+1),
		firstByLine: make(map[uint32]int, len(toks)/2+1),
	}
	for idx, tok := range toks {
		ts.codeRank[idx] = len(ts.code)
		if !tok.IsComment() {
			ts.code = append(ts.code, idx)
		}
		if _, ok := ts.firstByLine[tok.Start.Line]; !ok {
			ts.firstByLine[tok.Start.Line] = idx
		}
		if tok.MultiLine() && ts.textBeforeEnd(tok) {
			if _, ok := ts.firstByLine[tok.End.Line]; !ok {
				ts.firstByLine[tok.End.Line] = idx
			}
		}
	}
	ts.codeRank[len(toks)] = len(ts.code)
	return ts
}

// textBeforeEnd reports whether the last line of a multi-line token holds
// anything but whitespace before the token's end.
func (ts *tokenStore) textBeforeEnd(tok token.Token) bool {
	lineStart := ts.file.LineStart(tok.End.Line)
	for _, b := range ts.file.Content[lineStart:tok.Span.End] {
		if b != ' ' && b != '\t' && b != '\r' {
			return true
		}
	}
	return false
}

func (ts *tokenStore) len() int { return len(ts.toks) }

func (ts *tokenStore) at(i int) token.Token { return ts.toks[i] }

func (ts *tokenStore) valid(i int) bool { return i >= 0 && i < len(ts.toks) }

func (ts *tokenStore) isCode(i int) bool { return ts.valid(i) && !ts.toks[i].IsComment() }

func (ts *tokenStore) isPunct(i int, s string) bool {
	return ts.isCode(i) && ts.toks[i].IsPunct(s)
}

// search returns the first index whose token starts at or after off.
func (ts *tokenStore) search(off uint32) int {
	return sort.Search(len(ts.toks), func(i int) bool {
		return ts.toks[i].Span.Start >= off
	})
}

// codeAfter returns the next code token after i, or -1.
func (ts *tokenStore) codeAfter(i int) int {
	if i < 0 {
		if len(ts.code) == 0 {
			return -1
		}
		return ts.code[0]
	}
	r := ts.codeRank[i]
	if ts.isCode(i) {
		r++
	}
	if r < len(ts.code) {
		return ts.code[r]
	}
	return -1
}

// codeBefore returns the previous code token before i, or -1.
func (ts *tokenStore) codeBefore(i int) int {
	if i > len(ts.toks) {
		i = len(ts.toks)
	}
	if i <= 0 {
		return -1
	}
	r := ts.codeRank[i] - 1
	if r >= 0 {
		return ts.code[r]
	}
	return -1
}

// codeAt returns the first code token starting at or after off.
func (ts *tokenStore) codeAt(off uint32) int {
	i := ts.search(off)
	if i >= len(ts.toks) {
		return -1
	}
	if ts.isCode(i) {
		return i
	}
	return ts.codeAfter(i)
}

// firstToken is the first code token inside the node.
func (ts *tokenStore) firstToken(n *ast.Node) int {
	i := ts.codeAt(n.Span.Start)
	if i < 0 || ts.toks[i].Span.Start >= n.Span.End {
		return -1
	}
	return i
}

// lastToken is the last code token inside the node.
func (ts *tokenStore) lastToken(n *ast.Node) int {
	i := ts.codeBefore(ts.search(n.Span.End))
	if i < 0 || ts.toks[i].Span.Start < n.Span.Start {
		return -1
	}
	return i
}

// codeBetween returns the first code token in [lo, hi) of byte offsets
// satisfying pred, or -1.
func (ts *tokenStore) codeBetween(lo, hi uint32, pred func(token.Token) bool) int {
	for i := ts.codeAt(lo); i >= 0 && ts.toks[i].Span.End <= hi; i = ts.codeAfter(i) {
		if pred(ts.toks[i]) {
			return i
		}
	}
	return -1
}

// beforeSkippingParens walks back from the token preceding i over "(" tokens.
func (ts *tokenStore) beforeSkippingParens(i int) int {
	j := ts.codeBefore(i)
	for j >= 0 && ts.toks[j].IsPunct("(") {
		j = ts.codeBefore(j)
	}
	return j
}

func (ts *tokenStore) firstOfLine(i int) int {
	if first, ok := ts.firstByLine[ts.toks[i].Start.Line]; ok {
		return first
	}
	return i
}

func (ts *tokenStore) isFirstOfLine(i int) bool {
	if !ts.valid(i) {
		return false
	}
	first, ok := ts.firstByLine[ts.toks[i].Start.Line]
	return ok && first == i
}

// leading measures the whitespace in front of the token that starts line.
func (ts *tokenStore) leading(line uint32, tokStart uint32) (lineStart uint32, spaces, tabs, other int) {
	lineStart = ts.file.LineStart(line)
	for _, b := range ts.file.Content[lineStart:tokStart] {
		switch b {
		case ' ':
			spaces++
		case '\t':
			tabs++
		default:
			other++
		}
	}
	return lineStart, spaces, tabs, other
}

// width is the display width of the text in [from, to); a tab counts as one
// column, like it does in leading.
func (ts *tokenStore) width(from, to uint32) int {
	if to <= from {
		return 0
	}
	text := ts.file.Content[from:to]
	w := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		text = text[size:]
		if r == '\t' {
			w++
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}
