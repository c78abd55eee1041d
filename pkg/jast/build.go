package jast

// Builders for synthesized nodes. Built nodes have an empty range; the
// rewrite engine prints them instead of copying source text.

// NewName returns a simple name expression.
func NewName(name string) *Node {
	return NewNode(NodeName, name)
}

// NewLiteral returns a literal with the given source spelling.
func NewLiteral(text string) *Node {
	return NewNode(NodeLiteral, text)
}

// NewType returns a type reference.
func NewType(name string) *Node {
	return NewNode(NodeType, name)
}

// NewModifier returns a modifier keyword.
func NewModifier(keyword string) *Node {
	return NewNode(NodeModifier, keyword)
}

// NewEmpty returns an empty statement.
func NewEmpty() *Node {
	return NewNode(NodeEmpty, "")
}

// NewBlock returns a block holding stmts.
func NewBlock(stmts ...*Node) *Node {
	b := NewNode(NodeBlock, "")
	b.Append(PropStatements, stmts...)
	return b
}

// NewReturn returns a return statement. value may be nil.
func NewReturn(value *Node) *Node {
	r := NewNode(NodeReturn, "")
	r.Set(PropExpr, value)
	return r
}

// NewThrow returns a throw statement.
func NewThrow(value *Node) *Node {
	t := NewNode(NodeThrow, "")
	t.Set(PropExpr, value)
	return t
}

// NewExprStmt wraps an expression as a statement.
func NewExprStmt(expr *Node) *Node {
	s := NewNode(NodeExprStmt, "")
	s.Set(PropExpr, expr)
	return s
}

// NewCall returns a method call. target may be nil.
func NewCall(target *Node, name string, args ...*Node) *Node {
	c := NewNode(NodeCall, name)
	c.Set(PropTarget, target)
	c.Append(PropArgs, args...)
	return c
}

// NewLocalVar returns a single-fragment local declaration. init may be nil.
func NewLocalVar(typeName, name string, init *Node) *Node {
	frag := NewNode(NodeFragment, name)
	frag.Set(PropInit, init)

	decl := NewNode(NodeLocalVar, "")
	decl.Append(PropModifiers)
	decl.Set(PropType, NewType(typeName))
	decl.Append(PropFragments, frag)
	return decl
}

// NewCatch returns a catch clause for the given types binding name.
func NewCatch(name string, body *Node, types ...string) *Node {
	c := NewNode(NodeCatch, name)
	c.Append(PropModifiers)
	for _, t := range types {
		c.Append(PropTypes, NewType(t))
	}
	c.Set(PropBody, body)
	return c
}

// NewTry returns a try statement. finally may be nil.
func NewTry(body *Node, catches []*Node, finally *Node) *Node {
	t := NewNode(NodeTry, "")
	t.Set(PropBody, body)
	t.Append(PropCatches, catches...)
	t.Set(PropFinally, finally)
	return t
}
