package ssr

import (
	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/builtins"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/pass"
)

// component renders createComponent(Comp, props). Its result is markup
// already and is interpolated without escaping.
func (g *Generator) component(n *analysis.Node) string {
	g.claim(n)
	var attrs []*analysis.Attr
	for _, a := range n.Attrs {
		if a.Kind != analysis.Ref {
			attrs = append(attrs, a)
		}
	}
	props := g.props(attrs, g.propEntry)
	if children, ok := g.childrenEntry(n); ok {
		props = g.withEntry(props, children)
	}
	return g.p.Use(pass.HelperCreateComponent) + "(" + n.Name + ", " + props + ")"
}

func (g *Generator) withEntry(props, entry string) string {
	switch {
	case props == "{}":
		return "{ " + entry + " }"
	case len(props) > 4 && props[:2] == "{ " && props[len(props)-2:] == " }":
		return props[:len(props)-2] + ", " + entry + " }"
	}
	return g.p.Use(pass.HelperMergeProps) + "(" + props + ", { " + entry + " })"
}

func (g *Generator) childrenEntry(n *analysis.Node) (string, bool) {
	if len(n.Children) == 0 {
		return "", false
	}
	if n.Builtin != nil && len(n.Children) == 1 && n.Children[0].Kind == analysis.KindDeferred {
		d := n.Children[0]
		switch n.Builtin.Children {
		case builtins.Callback:
			return "children: " + g.expr(d.Expr), true
		case builtins.Thunk:
			return "children: " + emit.Accessor(g.list(d.Children)), true
		}
	}
	if len(n.Children) == 1 && n.Children[0].Kind == analysis.KindText {
		return "children: " + emit.Quote(n.Children[0].Text), true
	}
	return emit.Getter("children", g.list(n.Children)), true
}

func (g *Generator) propEntry(a *analysis.Attr) (string, bool) {
	if a.Tag == analysis.Static {
		return emit.Key(a.Name) + ": " + g.expr(a.Expr), true
	}
	return emit.Getter(a.Name, g.expr(a.Expr)), true
}
