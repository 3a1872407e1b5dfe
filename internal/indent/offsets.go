package indent

import (
	"indentguard/internal/ast"
)

// offsetRecord ставит токен на offset уровней от токена from.
// from == noAnchor означает абсолютный отступ.
type offsetRecord struct {
	offset int
	from   int
}

const noAnchor = -1

// analysis is the state of one Check run over one tree.
type analysis struct {
	tree *ast.Tree
	cfg  Config
	ts   *tokenStore

	records []offsetRecord
	ignored []bool
	extra   []int // дополнительные уровни, сбрасываются при переназначении
	locked  []int // выравнивание по колонке токена, noAnchor если нет

	paramParens map[int]struct{}

	desired  []int
	resolved []bool
}

func newAnalysis(tree *ast.Tree, cfg Config) *analysis {
	ts := newTokenStore(tree)
	n := ts.len()
	a := &analysis{
		tree:        tree,
		cfg:         cfg,
		ts:          ts,
		records:     make([]offsetRecord, n),
		ignored:     make([]bool, n),
		extra:       make([]int, n),
		locked:      make([]int, n),
		paramParens: make(map[int]struct{}),
		desired:     make([]int, n),
		resolved:    make([]bool, n),
	}
	for i := range a.records {
		a.records[i] = offsetRecord{from: noAnchor}
		a.locked[i] = noAnchor
	}
	return a
}

// setDesiredOffset anchors tok at n levels from from. Anchors must precede
// the token; other requests are dropped so the records stay a forest.
func (a *analysis) setDesiredOffset(tok, from, n int) {
	if !a.ts.valid(tok) || from >= tok {
		return
	}
	a.records[tok] = offsetRecord{offset: n, from: from}
	a.extra[tok] = 0
}

// setDesiredOffsets anchors every token inside [start, end) of byte offsets,
// except from itself.
func (a *analysis) setDesiredOffsets(start, end uint32, from, n int) {
	for i := a.ts.search(start); i < a.ts.len(); i++ {
		tok := a.ts.at(i)
		if tok.Span.End > end {
			break
		}
		if i != from {
			a.setDesiredOffset(i, from, n)
		}
	}
}

// setNodeOffsets is setDesiredOffsets over the node's span.
func (a *analysis) setNodeOffsets(id ast.NodeID, from, n int) {
	node := a.tree.Node(id)
	if node == nil {
		return
	}
	a.setDesiredOffsets(node.Span.Start, node.Span.End, from, n)
}

// ignoreToken exempts a line-leading token from checking.
func (a *analysis) ignoreToken(tok int) {
	if a.ts.isFirstOfLine(tok) {
		a.ignored[tok] = true
	}
}

// matchOffsetOf aligns tok with the column of base.
func (a *analysis) matchOffsetOf(base, tok int) {
	if !a.ts.valid(tok) || !a.ts.valid(base) || base >= tok {
		return
	}
	a.locked[tok] = base
}

func (a *analysis) addExtra(tok, n int) {
	if a.ts.valid(tok) {
		a.extra[tok] = n
	}
}

// firstDependency returns the anchor of tok.
func (a *analysis) firstDependency(tok int) int {
	return a.records[tok].from
}

// desiredIndent resolves the indentation of tok in characters.
func (a *analysis) desiredIndent(tok int) int {
	if !a.ts.valid(tok) {
		return 0
	}
	if a.resolved[tok] {
		return a.desired[tok]
	}

	var want int
	switch {
	case a.ignored[tok]:
		_, spaces, tabs, other := a.ts.leading(a.ts.at(tok).Start.Line, a.ts.at(tok).Span.Start)
		want = spaces + tabs + other
	case a.locked[tok] != noAnchor:
		base := a.locked[tok]
		first := a.ts.firstOfLine(base)
		want = a.desiredIndent(first) + a.ts.width(a.ts.at(first).Span.Start, a.ts.at(base).Span.Start)
	default:
		rec := a.records[tok]
		levels := rec.offset
		if rec.from != noAnchor {
			if a.ts.at(rec.from).Start.Line == a.ts.at(tok).Start.Line {
				levels = 0
			}
			want = a.desiredIndent(rec.from)
		}
		want += levels * a.cfg.Unit.Size
	}
	want += a.extra[tok] * a.cfg.Unit.Size

	a.desired[tok] = want
	a.resolved[tok] = true
	return want
}
