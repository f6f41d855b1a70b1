package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/emit"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/internal/template"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// element clones the template for n and wires its bindings inside an
// immediately invoked function.
func (g *Generator) element(n *analysis.Node) string {
	in, err := g.reg.Assemble(g.p, n)
	if err != nil {
		g.fail(err)
		return "undefined"
	}
	if g.p.VerifyTemplates {
		if err := in.Verify(g.p); err != nil {
			g.fail(err)
			return "undefined"
		}
	}

	create := in.ID + "()"
	if g.p.Hydratable {
		create = g.p.Use(pass.HelperGetNextElement) + "(" + in.ID + ")"
	}
	if len(n.Bindings) == 0 {
		return create
	}

	h := g.walk(in, create)
	stmts := make([]string, 0, len(n.Bindings))
	for i, b := range n.Bindings {
		stmts = append(stmts, g.binding(b, in.Slots[i], h))
	}

	w := emit.NewWriter(nil)
	w.Line("(() => {")
	w.Indent()
	for i, d := range h.decls {
		switch {
		case len(h.decls) == 1:
			w.Line("const %s;", d)
		case i == 0:
			w.Line("const %s,", d)
		case i == len(h.decls)-1:
			w.Line("  %s;", d)
		default:
			w.Line("  %s,", d)
		}
	}
	for _, s := range stmts {
		w.Line("%s", emit.Reindent(s, "  "))
	}
	w.Line("return %s;", h.root)
	w.Dedent()
	w.Raw("})()")
	return w.String()
}

// handles names the nodes of one template instance that bindings touch.
type handles struct {
	root  string
	names map[string]string
	decls []string
	// current names the server nodes claimed by each hydrated marker slot.
	current map[string]string
}

func (h *handles) at(p analysis.SlotPath) string {
	return h.names[p.String()]
}

// walk declares a variable for every node a binding needs. Paths are
// declared in document order so each walk can start from the declared node
// that needs the fewest firstChild/nextSibling steps.
//
// When hydrating, a marker slot spans the server's <!--#k--> ... <!--/-->
// pair and whatever was rendered between them. Its handle is the end
// comment returned by getNextMarker, and no walk may step over a slot
// without starting from that handle.
func (g *Generator) walk(in *template.Instance, create string) *handles {
	seen := map[string]bool{"root": true}
	var paths []analysis.SlotPath
	need := func(p analysis.SlotPath) {
		if !seen[p.String()] {
			seen[p.String()] = true
			paths = append(paths, p)
		}
	}
	markers := make(map[string]*analysis.Binding)
	for i, b := range in.Root.Bindings {
		p := in.Slots[i]
		if b.Kind.Insertion() && b.Marker {
			need(p.Parent())
			if g.hyd != nil {
				markers[p.String()] = b
			}
		}
		need(p)
	}
	sort.Slice(paths, func(i, j int) bool { return less(paths[i], paths[j]) })

	h := &handles{names: make(map[string]string), current: make(map[string]string)}
	h.root = g.p.UID("_el$")
	h.names["root"] = h.root
	h.decls = append(h.decls, h.root+" = "+create)

	declared := []analysis.SlotPath{{}}
	for _, p := range paths {
		best, bestCost := "", -1
		for _, d := range declared {
			expr, cost, ok := steps(h.at(d), d, p)
			if ok && !crosses(markers, d, p) && (bestCost < 0 || cost <= bestCost) {
				best, bestCost = expr, cost
			}
		}
		name := g.p.UID("_el$")
		h.names[p.String()] = name
		declared = append(declared, p)

		b, ok := markers[p.String()]
		if !ok {
			h.decls = append(h.decls, name+" = "+best)
			continue
		}
		k, _ := g.hyd.Key(b.Child)
		co := g.p.UID("_co$")
		h.current[p.String()] = co
		h.decls = append(h.decls, fmt.Sprintf("[%s, %s] = %s(%s, %d)", name, co, g.p.Use(pass.HelperGetNextMarker), best, k))
	}
	return h
}

// crosses reports whether the walk from one path to another passes over a
// marker slot with nextSibling steps.
func crosses(markers map[string]*analysis.Binding, from, to analysis.SlotPath) bool {
	if len(markers) == 0 {
		return false
	}
	over := func(parent analysis.SlotPath, lo, hi int) bool {
		for k := lo; k < hi; k++ {
			if markers[parent.Append(k).String()] != nil {
				return true
			}
		}
		return false
	}
	m := len(from)
	if m > 0 && over(to[:m-1], from[m-1]+1, to[m-1]) {
		return true
	}
	for i := m; i < len(to); i++ {
		if over(to[:i], 0, to[i]) {
			return true
		}
	}
	return false
}

// steps returns the walk from the node at from (named base) to the node at
// to. from must be an ancestor of to or a left sibling of one of its
// ancestors.
func steps(base string, from, to analysis.SlotPath) (string, int, bool) {
	m := len(from)
	if m > len(to) {
		return "", 0, false
	}
	if m > 0 {
		if !from[:m-1].Equal(to[:m-1]) || from[m-1] > to[m-1] {
			return "", 0, false
		}
	}

	var b strings.Builder
	b.WriteString(base)
	cost := 0
	if m > 0 {
		for k := from[m-1]; k < to[m-1]; k++ {
			b.WriteString(".nextSibling")
			cost++
		}
	}
	for i := m; i < len(to); i++ {
		b.WriteString(".firstChild")
		cost++
		for k := 0; k < to[i]; k++ {
			b.WriteString(".nextSibling")
			cost++
		}
	}
	return b.String(), cost, true
}

func less(a, b analysis.SlotPath) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (g *Generator) binding(b *analysis.Binding, path analysis.SlotPath, h *handles) string {
	el := h.at(path)
	if b.ClientOnly {
		return g.clientOnly(func() string { return g.clientBinding(b, el) })
	}

	switch b.Kind {
	case analysis.TextContent, analysis.Child:
		return g.insert(b, path, h)
	case analysis.Attribute:
		v := g.expr(b.Expr)
		if b.Name == "class" {
			return g.effect(b, fmt.Sprintf("%s(%s, %s)", g.p.Use(pass.HelperClassName), el, v))
		}
		return g.effect(b, fmt.Sprintf("%s(%s, %s, %s)", g.p.Use(pass.HelperSetAttribute), el, emit.Quote(b.Name), v))
	case analysis.ClassList, analysis.StyleObject:
		helper := pass.HelperClassList
		if b.Kind == analysis.StyleObject {
			helper = pass.HelperStyle
		}
		v := g.expr(b.Expr)
		if g.wrapped(b) {
			return fmt.Sprintf("%s(_p$ => %s(%s, %s, _p$));", g.p.Use(pass.HelperEffect), g.p.Use(helper), el, v)
		}
		return fmt.Sprintf("%s(%s, %s);", g.p.Use(helper), el, v)
	case analysis.PropertyBinding:
		return g.effect(b, emit.Member(el, b.Name)+" = "+g.expr(b.Expr))
	case analysis.Spread:
		return fmt.Sprintf("%s(%s, %s, %t, %t);", g.p.Use(pass.HelperSpread), el, g.props(b.Attrs, g.spreadEntry), b.Owner.SVG, len(b.Owner.Children) > 0)
	}
	return ""
}

func (g *Generator) clientBinding(b *analysis.Binding, el string) string {
	switch b.Kind {
	case analysis.PropertyBinding:
		if b.Synthetic {
			return fmt.Sprintf("%s = %s();", emit.Member(el, b.Name), g.p.Use(pass.HelperGetOwner))
		}
		return g.effect(b, emit.Member(el, b.Name)+" = "+g.expr(b.Expr))
	case analysis.EventHandler:
		return g.event(b, el)
	case analysis.Ref:
		return g.ref(b.Expr, el)
	case analysis.Directive:
		return fmt.Sprintf("%s(%s, %s, %s);", g.p.Use(pass.HelperUse), b.Name, el, emit.Accessor(g.expr(b.Expr)))
	}
	return ""
}

// wrapped reports whether a binding is re-evaluated in an effect. Every
// dynamic binding is wrapped unless WrapConditionals is off, in which case
// only expressions that may read reactive state are.
func (g *Generator) wrapped(b *analysis.Binding) bool {
	return g.p.WrapConditionals || analysis.NeedsTracking(b.Expr)
}

func (g *Generator) effect(b *analysis.Binding, stmt string) string {
	if g.wrapped(b) {
		return g.p.Use(pass.HelperEffect) + "(" + emit.Accessor(stmt) + ");"
	}
	return stmt + ";"
}

func (g *Generator) insert(b *analysis.Binding, path analysis.SlotPath, h *handles) string {
	parent := h.at(path)
	var marker string
	if b.Marker {
		parent, marker = h.at(path.Parent()), h.at(path)
	}

	var v string
	if b.Child.Kind == analysis.KindExpr {
		g.claim(b.Child)
		v = g.expr(b.Child.Expr)
		if analysis.NeedsTracking(b.Child.Expr) {
			v = emit.Accessor(v)
		}
	} else {
		v = g.value(b.Child, true)
	}

	if marker == "" {
		return fmt.Sprintf("%s(%s, %s);", g.p.Use(pass.HelperInsert), parent, v)
	}
	if co, ok := h.current[path.String()]; ok {
		return fmt.Sprintf("%s(%s, %s, %s, %s);", g.p.Use(pass.HelperInsert), parent, v, marker, co)
	}
	return fmt.Sprintf("%s(%s, %s, %s);", g.p.Use(pass.HelperInsert), parent, v, marker)
}

func (g *Generator) event(b *analysis.Binding, el string) string {
	ev := b.Event
	src := b.Expr.Source
	handler := g.expr(b.Expr)
	pair := src.Kind == jsx.ExprArray && len(src.Elements) == 2 && len(b.Expr.Embeds) == 0

	if ev.Delegate {
		g.p.Delegate(ev.Name)
		prop := emit.Member(el, "$$"+ev.Name)
		if pair {
			return fmt.Sprintf("%s = %s;\n%s = %s;", prop, src.Elements[0].Source, emit.Member(el, "$$"+ev.Name+"Data"), src.Elements[1].Source)
		}
		return fmt.Sprintf("%s = %s;", prop, handler)
	}

	if pair {
		handler = fmt.Sprintf("e => (%s)(%s, e)", src.Elements[0].Source, src.Elements[1].Source)
	}
	args := []string{emit.Quote(ev.Name), handler}
	if opts := listenerOptions(ev); opts != "" {
		args = append(args, opts)
	}
	return fmt.Sprintf("%s.addEventListener(%s);", el, strings.Join(args, ", "))
}

func listenerOptions(ev *analysis.Event) string {
	if ev.Capture && !ev.Once && !ev.Passive {
		return "true"
	}
	var opts []string
	if ev.Capture {
		opts = append(opts, "capture: true")
	}
	if ev.Once {
		opts = append(opts, "once: true")
	}
	if ev.Passive {
		opts = append(opts, "passive: true")
	}
	if len(opts) == 0 {
		return ""
	}
	return emit.Object(opts)
}

// ref binds el to a ref expression: functions are called with the element,
// assignable references receive it unless they hold a function.
func (g *Generator) ref(e *analysis.Expr, el string) string {
	src := e.Source
	v := g.expr(e)
	switch {
	case src.IsFunction():
		return fmt.Sprintf("(%s)(%s);", v, el)
	case src.Kind == jsx.ExprIdentifier || src.Kind == jsx.ExprMember:
		return fmt.Sprintf(`typeof %s === "function" ? %s(%s, %s) : %s = %s;`, v, g.p.Use(pass.HelperUse), v, el, v, el)
	}
	tmp := g.p.UID("_ref$")
	return fmt.Sprintf("const %s = %s;\ntypeof %s === \"function\" && %s(%s, %s);", tmp, v, tmp, g.p.Use(pass.HelperUse), tmp, el)
}
