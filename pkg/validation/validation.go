// Package validation is the entry point for checking a single skill script
// against the safety policy. It performs no I/O.
package validation

import (
	"context"

	"github.com/papercomputeco/skillgate/pkg/policy"
)

// Result is the outcome of validating one source unit. Valid is true exactly
// when Diagnostics is empty.
type Result struct {
	Valid       bool                `json:"valid"`
	Diagnostics []policy.Diagnostic `json:"diagnostics"`
}

// Errors renders the diagnostics as user-facing strings.
func (r Result) Errors() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

// Gate validates source units with a policy engine.
type Gate struct {
	engine *policy.Engine
}

// NewGate creates a Gate backed by engine.
func NewGate(engine *policy.Engine) *Gate {
	return &Gate{engine: engine}
}

// NewDefaultGate creates a Gate with the built-in denylist and the Python
// parser.
func NewDefaultGate() *Gate {
	return NewGate(policy.NewEngine(policy.DefaultDenylist(), nil))
}

// Validate checks unit against the policy. The result depends only on the
// unit's text.
func (g *Gate) Validate(ctx context.Context, unit policy.SourceUnit) Result {
	diags := g.engine.Scan(ctx, unit)
	return Result{
		Valid:       len(diags) == 0,
		Diagnostics: diags,
	}
}
