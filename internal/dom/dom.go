// Package dom generates client code: templates are cloned once per use and
// their dynamic slots are wired to reactive bindings.
package dom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/hydration"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/internal/template"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// Generator renders classified roots as client-side JavaScript
// expressions. The first fatal error sticks; later output is discarded by
// the caller.
type Generator struct {
	p   *pass.Pass
	reg *template.Registry
	hyd *hydration.Coordinator
	err error
}

// New returns a generator. hyd is nil unless the pass is hydratable.
func New(p *pass.Pass, reg *template.Registry, hyd *hydration.Coordinator) *Generator {
	return &Generator{p: p, reg: reg, hyd: hyd}
}

// Root renders one module-level root.
func (g *Generator) Root(n *analysis.Node) (string, error) {
	out := g.root(n)
	return out, g.err
}

func (g *Generator) root(n *analysis.Node) string {
	switch n.Kind {
	case analysis.KindFragment:
		return g.list(n.Children, g.root)
	case analysis.KindComponent, analysis.KindExpr:
		v := g.value(n, false)
		if g.hyd == nil {
			return v
		}
		k, _ := g.hyd.Key(n)
		return fmt.Sprintf("%s(%d, %s)", g.p.Use(pass.HelperHydrationSlot), k, v)
	}
	return g.value(n, false)
}

// value renders n as an expression. lazy is set when the caller already
// evaluates the result inside a tracking scope.
func (g *Generator) value(n *analysis.Node, lazy bool) string {
	switch n.Kind {
	case analysis.KindElement:
		return g.element(n)
	case analysis.KindComponent:
		return g.component(n)
	case analysis.KindExpr:
		g.claim(n)
		v := g.expr(n.Expr)
		if !lazy && analysis.NeedsTracking(n.Expr) {
			return g.p.Use(pass.HelperMemo) + "(" + emit.Accessor(v) + ")"
		}
		return v
	case analysis.KindText:
		return emit.Quote(n.Text)
	case analysis.KindFragment, analysis.KindDeferred:
		return g.list(n.Children, func(c *analysis.Node) string { return g.value(c, false) })
	}
	return "undefined"
}

// list renders nodes as a single value or an array.
func (g *Generator) list(nodes []*analysis.Node, render func(*analysis.Node) string) string {
	if len(nodes) == 1 {
		return render(nodes[0])
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = render(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expr renders an expression with its embedded JSX compiled.
func (g *Generator) expr(e *analysis.Expr) string {
	if e == nil {
		return "undefined"
	}
	if e.Unsupported {
		return fmt.Sprintf("/* @jsxc-unsupported %s */ undefined", g.p.Position(e.Source.Loc))
	}
	if e.Source.Kind == jsx.ExprString {
		return emit.Quote(e.Source.Value)
	}
	return e.Render(func(n *analysis.Node) string { return g.value(n, false) })
}

func (g *Generator) claim(n *analysis.Node) int {
	if g.hyd == nil {
		return 0
	}
	k, err := g.hyd.Claim(n)
	if err != nil {
		g.fail(err)
	}
	return k
}

// clientOnly renders code the server never sees, so it takes no keys.
func (g *Generator) clientOnly(render func() string) string {
	if g.hyd == nil {
		return render()
	}
	g.hyd.Suspend()
	defer g.hyd.Resume()
	return render()
}

func (g *Generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}
