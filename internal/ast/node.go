package ast

import (
	"indentguard/internal/source"
)

// NodeID индексирует узел в арене дерева, 0 означает отсутствие узла.
type NodeID uint32

const NoNodeID NodeID = 0

// Flags хранит булевы признаки узла.
type Flags uint16

const (
	FlagComputed  Flags = 1 << iota // a[b], {[k]: v}, class { [k]() {} }
	FlagShorthand                   // {a}
	FlagMethod                      // {a() {}}
	FlagStatic                      // class { static m() {} }
	FlagPrefix                      // ++a
	FlagExprBody                    // x => x
	FlagParenthesized               // (a)
)

// Node is a fat record: each kind uses the subset of slots that fit it.
//
//	Left/Right   Binary, Logical, Assignment, AssignmentPattern, ForIn, ForOf
//	Test         If, Conditional, While, DoWhile, For, SwitchCase
//	Consequent   If, Conditional; Alternate: If, Conditional
//	Body         functions, loops, With, Labeled, Catch, Class, Try (block), Program/Block via List
//	Init/Update  For; Init is also the declarator initializer
//	ID           declarator id, function/class name, label, break/continue label
//	Object/Prop  Member, MetaProperty
//	Callee       Call, New, TaggedTemplate (tag)
//	Argument     Unary, Update, Spread, Rest, Return, Throw
//	Key/Value    Property, MethodDefinition
//	SuperClass   Class; Handler/Finalizer: Try; Param: Catch
//	Discriminant Switch
//	Params       function parameters
//	List         statements, elements, properties, arguments, declarators,
//	             cases, case consequent, sequence expressions, template expressions
//	Quasis       template chunks
type Node struct {
	Kind   Kind
	Span   source.Span
	Parent NodeID
	Flags  Flags

	// Op: оператор, вид объявления (var/let/const), вид свойства (init/get/set/constructor/method)
	Op string
	// Name: имя идентификатора или сырой текст литерала
	Name string

	Left, Right           NodeID
	Test                  NodeID
	Consequent, Alternate NodeID
	Body                  NodeID
	Init, Update          NodeID
	ID                    NodeID
	Object, Property      NodeID
	Callee                NodeID
	Argument              NodeID
	Key, Value            NodeID
	SuperClass            NodeID
	Handler, Finalizer    NodeID
	Param                 NodeID
	Discriminant          NodeID

	Params []NodeID
	List   []NodeID
	Quasis []NodeID
}

func (n *Node) Has(f Flags) bool {
	return n.Flags&f != 0
}

// slots перечисляет одиночные дочерние ссылки узла.
func (n *Node) slots() [20]NodeID {
	return [...]NodeID{
		n.Left, n.Right, n.Test, n.Consequent, n.Alternate, n.Body, n.Init, n.Update,
		n.ID, n.Object, n.Property, n.Callee, n.Argument, n.Key, n.Value,
		n.SuperClass, n.Handler, n.Finalizer, n.Param, n.Discriminant,
	}
}
