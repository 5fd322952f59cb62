package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/papercomputeco/skillgate/pkg/utils"
)

// legacyStatements are Python 2 statement forms the grammar still accepts.
// The skill runtime is Python 3, and "exec code" would otherwise hide an exec
// call from the policy.
var legacyStatements = map[string]string{
	"print_statement": "Python 2 print statement",
	"exec_statement":  "Python 2 exec statement",
}

// PythonParser parses Python 3 source with the tree-sitter Python grammar.
type PythonParser struct{}

// NewPythonParser creates a new PythonParser.
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

// Parse parses src and lowers it into a Tree. A fresh tree-sitter parser is
// used per call, so PythonParser is safe for concurrent use.
func (p *PythonParser) Parse(ctx context.Context, filename string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	cst, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer cst.Close()

	root := cst.RootNode()
	if root.HasError() {
		return nil, syntaxErrorAt(filename, src, firstError(root))
	}

	l := &lowerer{filename: filename, src: src}
	l.walk(root)
	if l.err != nil {
		return nil, l.err
	}

	return &Tree{Filename: filename, Nodes: l.nodes}, nil
}

// lowerer converts the concrete tree into the closed node set.
type lowerer struct {
	filename string
	src      []byte
	nodes    []Node
	err      *SyntaxError
}

func (l *lowerer) walk(n *sitter.Node) {
	if l.err != nil {
		return
	}

	if n.IsNamed() {
		l.lower(n)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		l.walk(n.NamedChild(i))
	}
}

func (l *lowerer) lower(n *sitter.Node) {
	line := lineOf(n)

	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				l.add(&Import{Pos: line, Module: dottedName(child, l.src)})
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					l.add(&Import{Pos: line, Module: dottedName(name, l.src)})
				}
			}
		}

	case "import_from_statement":
		module := fromModule(n, l.src)
		if module == "" {
			l.add(&Other{Pos: line, Kind: n.Type()})
			return
		}
		l.add(&Import{Pos: line, Module: module, From: true})

	case "call":
		fn := n.ChildByFieldName("function")
		switch {
		case fn == nil:
			l.add(&Other{Pos: line, Kind: n.Type()})
		case fn.Type() == "identifier":
			l.add(&Call{Pos: line, Callee: fn.Content(l.src)})
		case fn.Type() == "attribute" && fn.ChildByFieldName("attribute") != nil:
			l.add(&Call{Pos: line, Callee: fn.ChildByFieldName("attribute").Content(l.src), Member: true})
		default:
			l.add(&Other{Pos: line, Kind: n.Type()})
		}

	case "attribute":
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			l.add(&Other{Pos: line, Kind: n.Type()})
			return
		}
		l.add(&Attribute{Pos: line, Name: attr.Content(l.src)})

	default:
		if msg, ok := legacyStatements[n.Type()]; ok {
			l.err = &SyntaxError{
				Filename: l.filename,
				Line:     line,
				Column:   int(n.StartPoint().Column) + 1,
				Msg:      msg,
			}
			return
		}
		l.add(&Other{Pos: line, Kind: n.Type()})
	}
}

func (l *lowerer) add(n Node) {
	l.nodes = append(l.nodes, n)
}

// fromModule returns the module of a from-import. Relative imports keep the
// dotted part after the leading dots; "from . import x" has no module.
func fromModule(n *sitter.Node, src []byte) string {
	m := n.ChildByFieldName("module_name")
	if m == nil {
		return ""
	}

	switch m.Type() {
	case "dotted_name":
		return dottedName(m, src)
	case "relative_import":
		for i := 0; i < int(m.NamedChildCount()); i++ {
			if child := m.NamedChild(i); child.Type() == "dotted_name" {
				return dottedName(child, src)
			}
		}
	}
	return ""
}

// dottedName joins the identifiers of a dotted_name so that "os . path"
// reads as "os.path".
func dottedName(n *sitter.Node, src []byte) string {
	if n.Type() != "dotted_name" {
		return strings.TrimSpace(n.Content(src))
	}

	parts := make([]string, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		parts = append(parts, n.NamedChild(i).Content(src))
	}
	return strings.Join(parts, ".")
}

// firstError returns the first ERROR or MISSING node in pre-order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if e := firstError(n.Child(i)); e != nil {
			return e
		}
	}
	return nil
}

func syntaxErrorAt(filename string, src []byte, n *sitter.Node) *SyntaxError {
	if n == nil {
		return &SyntaxError{Filename: filename, Msg: "invalid syntax"}
	}

	msg := "invalid syntax"
	if n.IsMissing() {
		msg = fmt.Sprintf("missing %q", n.Type())
	} else if tok := strings.TrimSpace(n.Content(src)); tok != "" {
		if i := strings.IndexByte(tok, '\n'); i >= 0 {
			tok = tok[:i]
		}
		tok = utils.Truncate(tok, 40)
		msg = fmt.Sprintf("invalid syntax near %q", tok)
	}

	return &SyntaxError{
		Filename: filename,
		Line:     lineOf(n),
		Column:   int(n.StartPoint().Column) + 1,
		Msg:      msg,
	}
}

func lineOf(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}
