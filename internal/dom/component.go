package dom

import (
	"strings"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/builtins"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// component renders createComponent(Comp, props). Built-ins are ordinary
// components whose children follow their rule.
func (g *Generator) component(n *analysis.Node) string {
	g.claim(n)
	props := g.props(n.Attrs, g.propEntry)
	if children, ok := g.children(n); ok {
		props = appendEntry(props, children, g)
	}
	return g.p.Use(pass.HelperCreateComponent) + "(" + n.Name + ", " + props + ")"
}

// appendEntry adds an entry to rendered props: into the object literal when
// props is one, or as a trailing mergeProps source otherwise.
func appendEntry(props, entry string, g *Generator) string {
	switch {
	case props == "{}":
		return "{ " + entry + " }"
	case strings.HasPrefix(props, "{ ") && strings.HasSuffix(props, " }"):
		return props[:len(props)-2] + ", " + entry + " }"
	case strings.HasPrefix(props, pass.HelperMergeProps+"("):
		return props[:len(props)-1] + ", { " + entry + " })"
	}
	return g.p.Use(pass.HelperMergeProps) + "(" + props + ", { " + entry + " })"
}

// children renders the children entry of a props object.
func (g *Generator) children(n *analysis.Node) (string, bool) {
	if len(n.Children) == 0 {
		return "", false
	}
	if n.Builtin != nil && len(n.Children) == 1 && n.Children[0].Kind == analysis.KindDeferred {
		d := n.Children[0]
		switch n.Builtin.Children {
		case builtins.Callback:
			return "children: " + g.expr(d.Expr), true
		case builtins.Thunk:
			return "children: " + emit.Accessor(g.lazy(d.Children)), true
		}
	}
	if len(n.Children) == 1 && n.Children[0].Kind == analysis.KindText {
		return "children: " + emit.Quote(n.Children[0].Text), true
	}
	return emit.Getter("children", g.lazy(n.Children)), true
}

// lazy renders children evaluated inside a getter or thunk.
func (g *Generator) lazy(nodes []*analysis.Node) string {
	if len(nodes) == 1 {
		return g.value(nodes[0], true)
	}
	return g.list(nodes, func(c *analysis.Node) string { return g.value(c, false) })
}

type entryFunc func(a *analysis.Attr) (string, bool)

// props renders attributes as one props value. Consecutive plain entries
// are grouped into object literals and spreads are kept in source order,
// so later sources win in mergeProps.
func (g *Generator) props(attrs []*analysis.Attr, entry entryFunc) string {
	var sources, group []string
	flush := func() {
		if len(group) > 0 {
			sources = append(sources, emit.Object(group))
			group = nil
		}
	}
	for _, a := range attrs {
		if a.Spread {
			flush()
			sources = append(sources, g.expr(a.Expr))
			continue
		}
		if e, ok := entry(a); ok {
			group = append(group, e)
		}
	}
	flush()

	switch len(sources) {
	case 0:
		return "{}"
	case 1:
		return sources[0]
	}
	return g.p.Use(pass.HelperMergeProps) + "(" + strings.Join(sources, ", ") + ")"
}

// propEntry renders a component prop. Literals are passed as values and
// everything else through a getter so the component reads it lazily.
func (g *Generator) propEntry(a *analysis.Attr) (string, bool) {
	key := emit.Key(a.Name)
	if a.Kind == analysis.Ref {
		return g.clientOnly(func() string { return g.refEntry(a.Expr) }), true
	}
	if a.Tag == analysis.Static {
		return key + ": " + g.expr(a.Expr), true
	}
	return emit.Getter(a.Name, g.expr(a.Expr)), true
}

// spreadEntry renders an element attribute merged with spread props.
func (g *Generator) spreadEntry(a *analysis.Attr) (string, bool) {
	name := a.Name
	if a.Namespace != "" && a.Source != nil {
		name = a.Source.FullName()
	}
	key := emit.Key(name)

	if a.Tag == analysis.Static {
		switch {
		case a.Bool:
			return key + ": true", true
		case a.Omit:
			return key + ": " + omitted(a), true
		}
		return key + ": " + emit.Quote(a.Value), true
	}

	if a.ClientOnly() {
		return g.clientOnly(func() string {
			if a.Kind == analysis.Ref {
				return g.refEntry(a.Expr)
			}
			return key + ": " + g.expr(a.Expr)
		}), true
	}
	v := g.expr(a.Expr)
	if analysis.NeedsTracking(a.Expr) {
		return emit.Getter(name, v), true
	}
	return key + ": " + v, true
}

func omitted(a *analysis.Attr) string {
	if a.Source != nil {
		if e, ok := a.Source.Value.(*jsx.Expr); ok {
			return e.Source
		}
	}
	return "false"
}

// refEntry renders a ref prop for a component or spread. Function values
// pass through; assignable references get a forwarding ref method.
func (g *Generator) refEntry(e *analysis.Expr) string {
	src := e.Source
	v := g.expr(e)
	if src.Kind != jsx.ExprIdentifier && src.Kind != jsx.ExprMember {
		return "ref: " + v
	}
	return "ref(r$) { const _ref$ = " + v + `; typeof _ref$ === "function" ? _ref$(r$) : ` + v + " = r$; }"
}
