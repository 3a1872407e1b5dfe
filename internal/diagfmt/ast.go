package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"indentguard/internal/ast"
	"indentguard/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Span     source.Span     `json:"span"`
	Op       string          `json:"op,omitempty"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty печатает дерево с рамкой ├─ / └─.
func FormatASTPretty(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	if tree == nil || tree.Root == ast.NoNodeID {
		return fmt.Errorf("empty tree")
	}
	header := "File"
	if fs != nil && tree.File != nil {
		header = tree.File.FormatPath("auto", fs.BaseDir())
	}
	root := tree.Node(tree.Root)
	if _, err := fmt.Fprintf(w, "%s (span: %s)\n", header, formatSpan(root.Span, fs)); err != nil {
		return err
	}

	var walk func(id ast.NodeID, prefix string, last bool) error
	walk = func(id ast.NodeID, prefix string, last bool) error {
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(tree, id, fs)); err != nil {
			return err
		}
		children := tree.Children(id)
		for i, c := range children {
			if err := walk(c, prefix+next, i == len(children)-1); err != nil {
				return err
			}
		}
		return nil
	}
	children := tree.Children(tree.Root)
	for i, c := range children {
		if err := walk(c, "", i == len(children)-1); err != nil {
			return err
		}
	}
	return nil
}

func nodeLabel(tree *ast.Tree, id ast.NodeID, fs *source.FileSet) string {
	n := tree.Node(id)
	label := fmt.Sprintf("%s (span: %s)", n.Kind, formatSpan(n.Span, fs))
	if n.Op != "" {
		label += " op=" + n.Op
	}
	if n.Name != "" {
		label += fmt.Sprintf(" %q", n.Name)
	}
	return label
}

func buildASTJSON(tree *ast.Tree, id ast.NodeID) ASTNodeOutput {
	n := tree.Node(id)
	out := ASTNodeOutput{
		Type: n.Kind.String(),
		Span: n.Span,
		Op:   n.Op,
		Text: n.Name,
	}
	for _, c := range tree.Children(id) {
		out.Children = append(out.Children, buildASTJSON(tree, c))
	}
	return out
}

// FormatASTJSON выводит дерево в JSON.
func FormatASTJSON(w io.Writer, tree *ast.Tree) error {
	if tree == nil || tree.Root == ast.NoNodeID {
		return fmt.Errorf("empty tree")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildASTJSON(tree, tree.Root))
}
