// Package jast provides the syntax tree for the Java-style source subset that
// flowfix analyzes. Trees are built once by the parser and are read-only
// afterwards; rewrites are expressed as overlays in package rewrite.
package jast

// Kind classifies the type of a syntax node. The set is closed.
type Kind uint8

// Node kinds for declarations, statements and expressions.
const (
	NodeBad Kind = iota

	// Declarations.
	NodeCompilationUnit
	NodeClass
	NodeField
	NodeMethod
	NodeParam
	NodeModifier
	NodeType
	NodeFragment

	// Statements.
	NodeBlock
	NodeEmpty
	NodeLocalVar
	NodeExprStmt
	NodeIf
	NodeWhile
	NodeDo
	NodeFor
	NodeSwitch
	NodeCase
	NodeBreak
	NodeContinue
	NodeReturn
	NodeThrow
	NodeTry
	NodeCatch
	NodeAssert
	NodeLabeled

	// Expressions.
	NodeLiteral
	NodeName
	NodeFieldAccess
	NodeCall
	NodeNew
	NodeAssign
	NodeUnary
	NodePostfix
	NodeBinary
	NodeConditional
	NodeParen
	NodeInstanceOf
	NodeCast
	NodeArrayAccess
	NodeArrayInit
)

// IsStatement reports whether kind is a statement kind.
func (k Kind) IsStatement() bool {
	return k >= NodeBlock && k <= NodeLabeled && k != NodeCase && k != NodeCatch
}

// IsExpression reports whether kind is an expression kind.
func (k Kind) IsExpression() bool {
	return k >= NodeLiteral
}

// IsLoop reports whether kind is one of the loop statements.
func (k Kind) IsLoop() bool {
	return k == NodeWhile || k == NodeDo || k == NodeFor
}

// Prop names a child slot of a node. A slot holds either a single optional
// child or an ordered list of children.
type Prop uint8

// Child slots.
const (
	PropNone Prop = iota

	// Single-valued slots.
	PropType
	PropInit
	PropCond
	PropThen
	PropElse
	PropBody
	PropExpr
	PropMessage
	PropLeft
	PropRight
	PropTarget
	PropFinally

	// List slots.
	PropMembers
	PropModifiers
	PropParams
	PropThrows
	PropFragments
	PropStatements
	PropInits
	PropUpdates
	PropCases
	PropCatches
	PropTypes
	PropArgs
)

// IsList reports whether the slot holds a list of children.
func (p Prop) IsList() bool {
	return p >= PropMembers
}

type slot struct {
	prop  Prop
	nodes []*Node
}

// Node is a single syntax tree node. Children are exclusively owned and live
// in named slots kept in source order.
type Node struct {
	// Kind identifies the node variant.
	Kind Kind

	// Range is the node's source span [Start, End).
	Range Range

	// Text carries the token-level payload: an identifier, operator,
	// modifier keyword, label, type name or raw literal.
	Text string

	// Parent is nil for the root.
	Parent *Node

	// Prop is the slot of Parent holding this node.
	Prop Prop

	slots []slot
}

// NewNode creates a detached node.
func NewNode(kind Kind, text string) *Node {
	return &Node{Kind: kind, Text: text}
}

func (n *Node) slotIndex(p Prop) int {
	for i := range n.slots {
		if n.slots[i].prop == p {
			return i
		}
	}
	return -1
}

// Child returns the node in a single-valued slot, or nil.
func (n *Node) Child(p Prop) *Node {
	if n == nil {
		return nil
	}
	if i := n.slotIndex(p); i >= 0 && len(n.slots[i].nodes) > 0 {
		return n.slots[i].nodes[0]
	}
	return nil
}

// List returns the children of a list slot. The slice must not be modified.
func (n *Node) List(p Prop) []*Node {
	if n == nil {
		return nil
	}
	if i := n.slotIndex(p); i >= 0 {
		return n.slots[i].nodes
	}
	return nil
}

// Set stores child in a single-valued slot. A nil child clears the slot but
// keeps its position among the other slots.
func (n *Node) Set(p Prop, child *Node) {
	i := n.slotIndex(p)
	if i < 0 {
		n.slots = append(n.slots, slot{prop: p})
		i = len(n.slots) - 1
	}
	if child == nil {
		n.slots[i].nodes = nil
		return
	}
	child.Parent = n
	child.Prop = p
	n.slots[i].nodes = []*Node{child}
}

// Append adds children to a list slot, creating the slot if needed.
func (n *Node) Append(p Prop, children ...*Node) {
	i := n.slotIndex(p)
	if i < 0 {
		n.slots = append(n.slots, slot{prop: p})
		i = len(n.slots) - 1
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		c.Prop = p
		n.slots[i].nodes = append(n.slots[i].nodes, c)
	}
}

// Props returns the node's slots in source order. Empty slots are included.
func (n *Node) Props() []Prop {
	props := make([]Prop, len(n.slots))
	for i, s := range n.slots {
		props[i] = s.prop
	}
	return props
}

// HasProp reports whether the slot was declared on the node, even if empty.
func (n *Node) HasProp(p Prop) bool {
	return n.slotIndex(p) >= 0
}

// Children returns all direct children in source order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, s := range n.slots {
		out = append(out, s.nodes...)
	}
	return out
}

// Index returns the position of n inside its parent's list slot, or -1.
func (n *Node) Index() int {
	if n.Parent == nil || !n.Prop.IsList() {
		return -1
	}
	for i, c := range n.Parent.List(n.Prop) {
		if c == n {
			return i
		}
	}
	return -1
}

// HasModifier reports whether a declaration carries the modifier keyword.
func (n *Node) HasModifier(keyword string) bool {
	return n.Modifier(keyword) != nil
}

// Modifier returns the modifier node with the given keyword, or nil.
func (n *Node) Modifier(keyword string) *Node {
	for _, m := range n.List(PropModifiers) {
		if m.Text == keyword {
			return m
		}
	}
	return nil
}

// Enclosing returns the nearest ancestor of one of the given kinds.
func (n *Node) Enclosing(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// Depth returns the number of enclosing blocks, class bodies and case
// groups. It is the nesting level used for indentation.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case NodeBlock, NodeClass, NodeCase, NodeSwitch:
			depth++
		}
	}
	return depth
}
