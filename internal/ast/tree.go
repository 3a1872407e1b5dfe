package ast

import (
	"slices"
	"sort"

	"indentguard/internal/source"
	"indentguard/internal/token"
)

// Tree is one parsed file: the node arena plus its token streams.
type Tree struct {
	File     *source.File
	Nodes    *Arena[Node]
	Root     NodeID
	Tokens   []token.Token // значимые токены без EOF
	Comments []token.Token
}

func NewTree(file *source.File, capHint uint) *Tree {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Tree{
		File:  file,
		Nodes: NewArena[Node](capHint),
	}
}

// New allocates a node and returns its id.
func (t *Tree) New(kind Kind, sp source.Span) NodeID {
	return NodeID(t.Nodes.Allocate(Node{Kind: kind, Span: sp}))
}

func (t *Tree) Node(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

// Children returns the direct children of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make([]NodeID, 0, 4+len(n.Params)+len(n.List)+len(n.Quasis))
	for _, c := range n.slots() {
		if c != NoNodeID {
			out = append(out, c)
		}
	}
	for _, list := range [...][]NodeID{n.Params, n.List, n.Quasis} {
		for _, c := range list {
			// дырки массива [a, , b] хранятся как NoNodeID
			if c != NoNodeID {
				out = append(out, c)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return t.Node(out[i]).Span.Start < t.Node(out[j]).Span.Start
	})
	// {a} хранит один идентификатор и как Key, и как Value
	return slices.Compact(out)
}

// LinkParents заполняет обратные ссылки Parent у всех узлов под root.
func (t *Tree) LinkParents() {
	var link func(id NodeID)
	link = func(id NodeID) {
		for _, c := range t.Children(id) {
			t.Node(c).Parent = id
			link(c)
		}
	}
	if t.Root != NoNodeID {
		t.Node(t.Root).Parent = NoNodeID
		link(t.Root)
	}
}

// TokenIndex returns the index of the first code token starting at or after off.
func (t *Tree) TokenIndex(off uint32) int {
	return sort.Search(len(t.Tokens), func(i int) bool {
		return t.Tokens[i].Span.Start >= off
	})
}

// TokenRange returns the half-open index range of code tokens inside id.
func (t *Tree) TokenRange(id NodeID) (first, end int) {
	n := t.Node(id)
	if n == nil {
		return 0, 0
	}
	first = t.TokenIndex(n.Span.Start)
	end = sort.Search(len(t.Tokens), func(i int) bool {
		return t.Tokens[i].Span.Start >= n.Span.End
	})
	return first, end
}
