// Package ssr generates server code that renders markup strings. Static
// markup is escaped at compile time and every dynamic value is escaped
// exactly once at runtime through the escape helper.
package ssr

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

// Generator renders classified roots as server-side JavaScript
// expressions producing safe markup values.
type Generator struct {
	p   *pass.Pass
	hyd *hydration.Coordinator
	err error
}

// New returns a generator. hyd is nil unless the pass is hydratable.
func New(p *pass.Pass, hyd *hydration.Coordinator) *Generator {
	return &Generator{p: p, hyd: hyd}
}

// Root renders one module-level root.
func (g *Generator) Root(n *analysis.Node) (string, error) {
	out := g.root(n)
	return out, g.err
}

func (g *Generator) root(n *analysis.Node) string {
	switch n.Kind {
	case analysis.KindElement, analysis.KindFragment:
		var t markup
		g.flat(&t, n)
		return t.safe(g.p)
	case analysis.KindComponent, analysis.KindExpr:
		if g.hyd == nil {
			return g.value(n)
		}
		var t markup
		g.slot(&t, n)
		return t.safe(g.p)
	}
	return g.value(n)
}

// flat writes a root into one literal, flattening fragments.
func (g *Generator) flat(t *markup, n *analysis.Node) {
	switch n.Kind {
	case analysis.KindElement:
		g.element(t, n)
	case analysis.KindFragment:
		for _, c := range n.Children {
			g.flat(t, c)
		}
	case analysis.KindText:
		t.static(template.EscapeText(n.Text))
	default:
		g.slot(t, n)
	}
}

// slot writes a dynamic child, wrapped in hydration markers when the
// output is hydratable.
func (g *Generator) slot(t *markup, n *analysis.Node) {
	var v string
	if n.Kind == analysis.KindExpr {
		g.claim(n)
		v = g.p.Use(pass.HelperEscape) + "(" + g.expr(n.Expr) + ")"
	} else {
		v = g.value(n)
	}
	if g.hyd == nil {
		t.dynamic(v)
		return
	}
	k, _ := g.hyd.Key(n)
	t.static(fmt.Sprintf("<!--#%d-->", k))
	t.dynamic(v)
	t.static("<!--/-->")
}

// value renders n as a JavaScript value: safe markup for elements,
// component output, or the raw expression.
func (g *Generator) value(n *analysis.Node) string {
	switch n.Kind {
	case analysis.KindElement:
		var t markup
		g.element(&t, n)
		return t.safe(g.p)
	case analysis.KindComponent:
		return g.component(n)
	case analysis.KindExpr:
		g.claim(n)
		return g.expr(n.Expr)
	case analysis.KindText:
		return emit.Quote(n.Text)
	case analysis.KindFragment, analysis.KindDeferred:
		return g.list(n.Children)
	}
	return "undefined"
}

func (g *Generator) list(nodes []*analysis.Node) string {
	if len(nodes) == 1 {
		return g.value(nodes[0])
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = g.value(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

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
	return e.Render(g.value)
}

func (g *Generator) claim(n *analysis.Node) {
	if g.hyd == nil {
		return
	}
	if _, err := g.hyd.Claim(n); err != nil && g.err == nil {
		g.err = err
	}
}

// markup accumulates the body of a JavaScript template literal.
type markup struct {
	b strings.Builder
}

func (t *markup) static(s string) {
	t.b.WriteString(emit.TemplateText(s))
}

func (t *markup) dynamic(expr string) {
	t.b.WriteString("${" + expr + "}")
}

func (t *markup) literal() string {
	return "`" + t.b.String() + "`"
}

// safe wraps the literal so escape passes it through unchanged.
func (t *markup) safe(p *pass.Pass) string {
	return p.Use(pass.HelperSSR) + "(" + t.literal() + ")"
}
