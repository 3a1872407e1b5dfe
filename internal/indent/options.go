package indent

import (
	"fmt"
	"strings"
)

// UnitKind выбирает символ отступа.
type UnitKind uint8

const (
	UnitSpace UnitKind = iota
	UnitTab
)

// Unit is one indentation level: Size characters of Kind.
type Unit struct {
	Kind UnitKind
	Size int
}

// Spaces returns a unit of n spaces.
func Spaces(n int) Unit { return Unit{Kind: UnitSpace, Size: n} }

// Tab returns the single-tab unit.
func Tab() Unit { return Unit{Kind: UnitTab, Size: 1} }

func (u Unit) Char() byte {
	if u.Kind == UnitTab {
		return '\t'
	}
	return ' '
}

// Name returns "space" or "tab".
func (u Unit) Name() string {
	if u.Kind == UnitTab {
		return "tab"
	}
	return "space"
}

func (u Unit) String() string {
	if u.Kind == UnitTab {
		return "tab"
	}
	return fmt.Sprintf("%d", u.Size)
}

// Repeat builds an indentation string of n characters.
func (u Unit) Repeat(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(u.Char()), n)
}

// ListMode describes how the items of a delimited list are indented.
type ListMode uint8

const (
	// ListOffset indents items by a fixed number of units from the opening delimiter.
	ListOffset ListMode = iota
	// ListFirst aligns line-leading items with the first item.
	ListFirst
	// ListIgnore exempts the first token of every item from checking.
	ListIgnore
)

// ListOption is an "integer | first | off" option value.
type ListOption struct {
	Mode   ListMode
	Offset int
}

func Offset(n int) ListOption { return ListOption{Mode: ListOffset, Offset: n} }
func First() ListOption       { return ListOption{Mode: ListFirst} }
func Ignore() ListOption      { return ListOption{Mode: ListIgnore} }

// units returns the interior offset used for tokens that are not item starts.
func (o ListOption) units() int {
	if o.Mode == ListOffset {
		return o.Offset
	}
	return 1
}

func (o ListOption) String() string {
	switch o.Mode {
	case ListFirst:
		return "first"
	case ListIgnore:
		return "off"
	default:
		return fmt.Sprintf("%d", o.Offset)
	}
}

// FunctionOptions configures parameter lists and bodies of one function kind.
type FunctionOptions struct {
	Parameters ListOption
	Body       int
}

// VarOptions holds the declarator indent per declaration keyword.
type VarOptions struct {
	Var, Let, Const int
}

// For returns the unit count for a declaration kind ("var", "let", "const").
func (v VarOptions) For(kind string) int {
	switch kind {
	case "let":
		return v.Let
	case "const":
		return v.Const
	default:
		return v.Var
	}
}

// Config is the immutable rule configuration for one run.
type Config struct {
	Unit               Unit
	SwitchCase         int
	MemberExpression   ListOption // ListOffset или ListIgnore
	VariableDeclarator VarOptions
	OuterIIFEBody      int

	FunctionDeclaration FunctionOptions
	FunctionExpression  FunctionOptions

	CallArguments    ListOption
	ArrayExpression  ListOption
	ObjectExpression ListOption
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Unit:               Spaces(4),
		SwitchCase:         0,
		MemberExpression:   Ignore(),
		VariableDeclarator: VarOptions{Var: 1, Let: 1, Const: 1},
		OuterIIFEBody:      1,
		FunctionDeclaration: FunctionOptions{
			Parameters: Ignore(),
			Body:       1,
		},
		FunctionExpression: FunctionOptions{
			Parameters: Ignore(),
			Body:       1,
		},
		CallArguments:    Offset(1),
		ArrayExpression:  Offset(1),
		ObjectExpression: Offset(1),
	}
}
