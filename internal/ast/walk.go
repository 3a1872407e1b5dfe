package ast

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(t *Tree, id NodeID, fn func(id NodeID) bool) {
	if id == NoNodeID {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		Walk(t, c, fn)
	}
}

// Ancestors returns the chain of parents of id, nearest first.
func Ancestors(t *Tree, id NodeID) []NodeID {
	var out []NodeID
	for p := t.Parent(id); p != NoNodeID; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}
