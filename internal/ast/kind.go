package ast

// Kind is the closed set of syntax constructs the parser produces.
type Kind uint8

const (
	KindInvalid Kind = iota

	Program

	// statements
	BlockStatement
	EmptyStatement
	ExpressionStatement
	IfStatement
	LabeledStatement
	BreakStatement
	ContinueStatement
	WithStatement
	SwitchStatement
	SwitchCase
	ReturnStatement
	ThrowStatement
	TryStatement
	CatchClause
	WhileStatement
	DoWhileStatement
	ForStatement
	ForInStatement
	ForOfStatement
	DebuggerStatement

	// declarations
	FunctionDeclaration
	VariableDeclaration
	VariableDeclarator
	ClassDeclaration

	// expressions
	Identifier
	Literal
	ThisExpression
	Super
	TemplateLiteral
	TemplateElement
	TaggedTemplateExpression
	ArrayExpression
	ObjectExpression
	Property
	FunctionExpression
	ArrowFunctionExpression
	ClassExpression
	ClassBody
	MethodDefinition
	UnaryExpression
	UpdateExpression
	BinaryExpression
	LogicalExpression
	AssignmentExpression
	ConditionalExpression
	CallExpression
	NewExpression
	MemberExpression
	SequenceExpression
	SpreadElement
	MetaProperty

	// patterns
	ObjectPattern
	ArrayPattern
	RestElement
	AssignmentPattern

	// recovery
	BadStatement
	BadExpression

	kindCount
)

var kindNames = [...]string{
	KindInvalid:              "Invalid",
	Program:                  "Program",
	BlockStatement:           "BlockStatement",
	EmptyStatement:           "EmptyStatement",
	ExpressionStatement:      "ExpressionStatement",
	IfStatement:              "IfStatement",
	LabeledStatement:         "LabeledStatement",
	BreakStatement:           "BreakStatement",
	ContinueStatement:        "ContinueStatement",
	WithStatement:            "WithStatement",
	SwitchStatement:          "SwitchStatement",
	SwitchCase:               "SwitchCase",
	ReturnStatement:          "ReturnStatement",
	ThrowStatement:           "ThrowStatement",
	TryStatement:             "TryStatement",
	CatchClause:              "CatchClause",
	WhileStatement:           "WhileStatement",
	DoWhileStatement:         "DoWhileStatement",
	ForStatement:             "ForStatement",
	ForInStatement:           "ForInStatement",
	ForOfStatement:           "ForOfStatement",
	DebuggerStatement:        "DebuggerStatement",
	FunctionDeclaration:      "FunctionDeclaration",
	VariableDeclaration:      "VariableDeclaration",
	VariableDeclarator:       "VariableDeclarator",
	ClassDeclaration:         "ClassDeclaration",
	Identifier:               "Identifier",
	Literal:                  "Literal",
	ThisExpression:           "ThisExpression",
	Super:                    "Super",
	TemplateLiteral:          "TemplateLiteral",
	TemplateElement:          "TemplateElement",
	TaggedTemplateExpression: "TaggedTemplateExpression",
	ArrayExpression:          "ArrayExpression",
	ObjectExpression:         "ObjectExpression",
	Property:                 "Property",
	FunctionExpression:       "FunctionExpression",
	ArrowFunctionExpression:  "ArrowFunctionExpression",
	ClassExpression:          "ClassExpression",
	ClassBody:                "ClassBody",
	MethodDefinition:         "MethodDefinition",
	UnaryExpression:          "UnaryExpression",
	UpdateExpression:         "UpdateExpression",
	BinaryExpression:         "BinaryExpression",
	LogicalExpression:        "LogicalExpression",
	AssignmentExpression:     "AssignmentExpression",
	ConditionalExpression:    "ConditionalExpression",
	CallExpression:           "CallExpression",
	NewExpression:            "NewExpression",
	MemberExpression:         "MemberExpression",
	SequenceExpression:       "SequenceExpression",
	SpreadElement:            "SpreadElement",
	MetaProperty:             "MetaProperty",
	ObjectPattern:            "ObjectPattern",
	ArrayPattern:             "ArrayPattern",
	RestElement:              "RestElement",
	AssignmentPattern:        "AssignmentPattern",
	BadStatement:             "BadStatement",
	BadExpression:            "BadExpression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsBad reports whether the node came from parser error recovery.
func (k Kind) IsBad() bool {
	return k == BadStatement || k == BadExpression
}

// IsFunction reports whether the kind introduces a function body.
func (k Kind) IsFunction() bool {
	switch k {
	case FunctionDeclaration, FunctionExpression, ArrowFunctionExpression:
		return true
	default:
		return false
	}
}
