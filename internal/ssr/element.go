package ssr

import (
	"fmt"
	"strings"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/internal/template"
)

// element writes the markup of an element subtree.
func (g *Generator) element(t *markup, n *analysis.Node) {
	if n.HasSpread {
		g.spreadElement(t, n)
		return
	}

	t.static("<" + n.Name)
	var content string
	list := classList(n.Attrs)
	for _, a := range n.Attrs {
		switch {
		case list != nil && a != list && a.Name == "class":
			// folded into the classList attribute
		case a == list:
			t.dynamic(g.classes(n.Attrs, a))
		case a.Tag == analysis.Static:
			t.static(template.StaticAttr(a))
		case a.ClientOnly():
		case a.Kind == analysis.PropertyBinding && analysis.IsContentProperty(a.Name):
			content = g.content(a)
		default:
			t.dynamic(g.attribute(a))
		}
	}
	t.static(">")
	if n.Void {
		return
	}

	if content != "" {
		t.dynamic(content)
	}
	g.children(t, n.Children)
	t.static("</" + n.Name + ">")
}

func (g *Generator) children(t *markup, kids []*analysis.Node) {
	for _, c := range kids {
		switch c.Kind {
		case analysis.KindText:
			t.static(template.EscapeText(c.Text))
		case analysis.KindElement:
			g.element(t, c)
		default:
			g.slot(t, c)
		}
	}
}

// attribute renders ssrAttribute for a dynamic attribute.
func (g *Generator) attribute(a *analysis.Attr) string {
	v := g.expr(a.Expr)
	name := a.Name
	switch a.Kind {
	case analysis.ClassList:
		name = "class"
		v = g.p.Use(pass.HelperSSRClassList) + "(" + v + ")"
	case analysis.StyleObject:
		v = g.p.Use(pass.HelperSSRStyle) + "(" + v + ")"
	}
	return g.ssrAttribute(name, v)
}

// ssrAttribute escapes v once; ssrAttribute only adds the name and quotes.
func (g *Generator) ssrAttribute(name, v string) string {
	escaped := g.p.Use(pass.HelperEscape) + "(" + v + ", true)"
	return fmt.Sprintf("%s(%s, %s, %t)", g.p.Use(pass.HelperSSRAttribute), emit.Quote(name), escaped, analysis.IsBooleanAttr(name))
}

// classList returns the classList attribute rendered on the server, if
// any. An element renders a single class attribute, so a class set next
// to it is merged into that one.
func classList(attrs []*analysis.Attr) *analysis.Attr {
	for _, a := range attrs {
		if a.Kind == analysis.ClassList && !a.ClientOnly() {
			return a
		}
	}
	return nil
}

// classes renders the class attribute of an element with a classList: the
// plain class value first, then the names the classList turns on.
func (g *Generator) classes(attrs []*analysis.Attr, list *analysis.Attr) string {
	toggled := g.p.Use(pass.HelperSSRClassList) + "(" + g.expr(list.Expr) + ")"
	for _, a := range attrs {
		if a == list || a.Name != "class" {
			continue
		}
		switch {
		case a.Tag != analysis.Static:
			return g.ssrAttribute("class", "("+g.expr(a.Expr)+") + \" \" + "+toggled)
		case !a.Bool && !a.Omit && a.Value != "":
			return g.ssrAttribute("class", emit.Quote(a.Value+" ")+" + "+toggled)
		}
	}
	return g.ssrAttribute("class", toggled)
}

// content renders a property that replaces the element's children.
// innerHTML is markup by definition and is not escaped.
func (g *Generator) content(a *analysis.Attr) string {
	v := g.expr(a.Expr)
	if a.Name == "innerHTML" {
		return v
	}
	return g.p.Use(pass.HelperEscape) + "(" + v + ")"
}

// spreadElement defers the whole element to ssrElement, which renders the
// merged props at runtime.
func (g *Generator) spreadElement(t *markup, n *analysis.Node) {
	props := g.props(n.Attrs, g.spreadEntry)

	children := "undefined"
	if !n.Void && len(n.Children) > 0 {
		var inner markup
		g.children(&inner, n.Children)
		children = emit.Accessor(inner.literal())
	}
	t.dynamic(fmt.Sprintf("%s(%s, %s, %s, %t)", g.p.Use(pass.HelperSSRElement), emit.Quote(n.Name), props, children, g.p.Hydratable))
}

func (g *Generator) spreadEntry(a *analysis.Attr) (string, bool) {
	if a.ClientOnly() {
		return "", false
	}
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
			return key + ": false", true
		}
		return key + ": " + emit.Quote(a.Value), true
	}
	v := g.expr(a.Expr)
	if analysis.NeedsTracking(a.Expr) {
		return emit.Getter(name, v), true
	}
	return key + ": " + v, true
}

type entryFunc func(a *analysis.Attr) (string, bool)

// props renders attributes as one props value, keeping spreads and groups
// of plain entries in source order.
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
