// Package syntax lowers Python source into a small, closed syntax tree used by
// the skill safety policy.
//
// Only four node kinds exist: Import, Call, Attribute and Other. A Visitor
// must implement one method per kind, so adding a kind is a compile error for
// every visitor that does not handle it.
package syntax

import "context"

// Node is a single lowered syntax node. The set of implementations is closed
// to this package.
type Node interface {
	// Line is the 1-based source line where the node starts.
	Line() int

	// Accept dispatches to the Visitor method matching the node kind.
	Accept(v Visitor)

	sealed()
}

// Visitor handles every node kind.
type Visitor interface {
	VisitImport(n *Import)
	VisitCall(n *Call)
	VisitAttribute(n *Attribute)
	VisitOther(n *Other)
}

// Import is one imported module. "import a, b" yields two Import nodes;
// "from a.b import c" yields one with Module "a.b" and From set.
type Import struct {
	Pos    int
	Module string
	From   bool
}

// Call is a call expression whose callee is either a bare name or the
// trailing attribute of a member access (Member set).
type Call struct {
	Pos    int
	Callee string
	Member bool
}

// Attribute is an attribute access; Name is the trailing attribute.
type Attribute struct {
	Pos  int
	Name string
}

// Other is any named syntax node that carries no policy meaning.
type Other struct {
	Pos  int
	Kind string
}

func (n *Import) Line() int    { return n.Pos }
func (n *Call) Line() int      { return n.Pos }
func (n *Attribute) Line() int { return n.Pos }
func (n *Other) Line() int     { return n.Pos }

func (n *Import) Accept(v Visitor)    { v.VisitImport(n) }
func (n *Call) Accept(v Visitor)      { v.VisitCall(n) }
func (n *Attribute) Accept(v Visitor) { v.VisitAttribute(n) }
func (n *Other) Accept(v Visitor)     { v.VisitOther(n) }

func (*Import) sealed()    {}
func (*Call) sealed()      {}
func (*Attribute) sealed() {}
func (*Other) sealed()     {}

// Tree is a parsed source unit. Nodes are stored in pre-order, which is also
// source order.
type Tree struct {
	Filename string
	Nodes    []Node
}

// Walk visits every node of the tree in order.
func (t *Tree) Walk(v Visitor) {
	for _, n := range t.Nodes {
		n.Accept(v)
	}
}

// Parser turns raw source into a Tree. Implementations must be safe for
// concurrent use.
type Parser interface {
	Parse(ctx context.Context, filename string, src []byte) (*Tree, error)
}
