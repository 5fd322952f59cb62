package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/skillgate/pkg/syntax"
)

// Engine scans source units against a Denylist. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	denylist *Denylist
	parser   syntax.Parser
}

// NewEngine creates an Engine. A nil parser selects the tree-sitter Python
// parser.
func NewEngine(denylist *Denylist, parser syntax.Parser) *Engine {
	if parser == nil {
		parser = syntax.NewPythonParser()
	}
	return &Engine{
		denylist: denylist,
		parser:   parser,
	}
}

// Denylist returns the engine's policy.
func (e *Engine) Denylist() *Denylist {
	return e.denylist
}

// Scan parses unit and returns its diagnostics in source order. A unit that
// fails to parse yields exactly one diagnostic and is not traversed.
func (e *Engine) Scan(ctx context.Context, unit SourceUnit) []Diagnostic {
	tree, err := e.parser.Parse(ctx, unit.Filename, []byte(unit.Text))
	if err != nil {
		return []Diagnostic{parseDiagnostic(err)}
	}

	s := &scanner{
		denylist:    e.denylist,
		diagnostics: make([]Diagnostic, 0),
	}
	tree.Walk(s)

	return s.diagnostics
}

func parseDiagnostic(err error) Diagnostic {
	var synErr *syntax.SyntaxError
	if errors.As(err, &synErr) {
		return Diagnostic{
			Line:    synErr.Line,
			Message: "Syntax error: " + synErr.Msg,
		}
	}
	return Diagnostic{Message: "Unable to parse: " + err.Error()}
}

// scanner is the policy Visitor. Each node yields at most one diagnostic.
type scanner struct {
	denylist    *Denylist
	diagnostics []Diagnostic
}

func (s *scanner) VisitImport(n *syntax.Import) {
	if !s.denylist.BlocksModule(n.Module) {
		return
	}
	if n.From {
		s.report(n, fmt.Sprintf("Blocked import from '%s'", n.Module))
		return
	}
	s.report(n, fmt.Sprintf("Blocked import '%s'", n.Module))
}

func (s *scanner) VisitCall(n *syntax.Call) {
	if !s.denylist.BlocksCall(n.Callee) {
		return
	}
	if n.Member {
		s.report(n, fmt.Sprintf("Blocked call '.%s()'", n.Callee))
		return
	}
	s.report(n, fmt.Sprintf("Blocked call '%s()'", n.Callee))
}

func (s *scanner) VisitAttribute(n *syntax.Attribute) {
	if s.denylist.BlocksAttribute(n.Name) {
		s.report(n, fmt.Sprintf("Blocked attribute '.%s'", n.Name))
	}
}

func (s *scanner) VisitOther(_ *syntax.Other) {}

func (s *scanner) report(n syntax.Node, msg string) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Line: n.Line(), Message: msg})
}
