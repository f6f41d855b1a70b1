package analysis

import (
	"strings"

	"github.com/vango-dev/jsxc/internal/builtins"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// Classifier partitions JSX into static template structure and dynamic
// bindings. It is single-use per compilation pass.
type Classifier struct {
	p        *pass.Pass
	builtins *builtins.Resolver
	extra    map[string]bool

	// tmpl collects the bindings of the template being classified.
	tmpl *[]*Binding
}

// New returns a classifier reporting into p.
func New(p *pass.Pass) *Classifier {
	c := &Classifier{
		p:        p,
		builtins: builtins.NewResolver(p.BuiltIns),
		extra:    make(map[string]bool, len(p.DelegatedEvents)),
	}
	for _, ev := range p.DelegatedEvents {
		c.extra[ev] = true
	}
	return c
}

// Module classifies every JSX root of m, in source order.
func (c *Classifier) Module(m *jsx.Module) []*Node {
	roots := m.Roots()
	out := make([]*Node, len(roots))
	for i, r := range roots {
		out[i] = c.Classify(r)
	}
	return out
}

// Classify classifies one JSX root.
func (c *Classifier) Classify(n jsx.Node) *Node {
	switch v := n.(type) {
	case *jsx.Element:
		if IsComponentName(v.Name) {
			return c.component(v)
		}
		return c.template(v)
	case *jsx.Fragment:
		return &Node{Kind: KindFragment, Source: v, Tag: Dynamic, Children: c.values(v.Children)}
	case *jsx.Text:
		return &Node{Kind: KindText, Source: v, Text: normalizeText(v.Value)}
	case *jsx.ExprSlot:
		return c.exprNode(v.Expr, v)
	}
	return &Node{Kind: KindText, Source: n}
}

func (c *Classifier) template(el *jsx.Element) *Node {
	saved := c.tmpl
	bindings := make([]*Binding, 0, 4)
	c.tmpl = &bindings

	n := c.element(el, SlotPath{})

	n.Bindings = bindings
	c.tmpl = saved
	if len(n.Bindings) > 0 {
		n.Tag = Dynamic
	}
	return n
}

func (c *Classifier) bind(b *Binding) {
	*c.tmpl = append(*c.tmpl, b)
}

func (c *Classifier) own(n *Node, b *Binding) {
	n.Own = append(n.Own, b)
	c.bind(b)
}

func (c *Classifier) element(el *jsx.Element, path SlotPath) *Node {
	n := &Node{
		Kind:   KindElement,
		Source: el,
		Name:   el.Name,
		Void:   IsVoid(el.Name),
		SVG:    IsSVG(el.Name),
		Custom: strings.Contains(el.Name, "-"),
	}
	before := len(*c.tmpl)

	for _, item := range c.dedupe(el.Attrs, true) {
		if a := c.elementAttr(item); a != nil {
			n.Attrs = append(n.Attrs, a)
			if a.Spread {
				n.HasSpread = true
			}
		}
	}

	if n.HasSpread {
		var merged, directives []*Attr
		for _, a := range n.Attrs {
			if a.Kind == Directive && !a.Spread {
				directives = append(directives, a)
			} else {
				merged = append(merged, a)
			}
		}
		c.own(n, &Binding{Kind: Spread, Path: path, Owner: n, Attrs: merged})
		for _, a := range directives {
			c.own(n, c.attrBinding(a, n, path))
		}
	} else {
		for _, a := range n.Attrs {
			if a.Tag == Dynamic {
				c.own(n, c.attrBinding(a, n, path))
			}
		}
	}

	if n.Custom && c.p.PassContextToCustomElements {
		c.own(n, &Binding{
			Kind:       PropertyBinding,
			Path:       path,
			Name:       "_$owner",
			Owner:      n,
			ClientOnly: true,
			Synthetic:  true,
		})
	}

	if !n.Void && !n.hasContentProperty() {
		c.children(n, el.Children, path)
	}

	if len(*c.tmpl) > before {
		n.Tag = Dynamic
	}
	return n
}

func (n *Node) hasContentProperty() bool {
	for _, a := range n.Attrs {
		if a.Kind == PropertyBinding && a.Namespace == "" && IsContentProperty(a.Name) {
			return true
		}
	}
	return false
}

func (c *Classifier) attrBinding(a *Attr, owner *Node, path SlotPath) *Binding {
	return &Binding{
		Kind:       a.Kind,
		Path:       path,
		Name:       a.Name,
		Expr:       a.Expr,
		Owner:      owner,
		Attr:       a,
		Event:      a.Event,
		ClientOnly: a.ClientOnly(),
	}
}

func (c *Classifier) children(n *Node, kids []jsx.Node, path SlotPath) {
	items := c.normalize(kids)
	single := len(items) == 1 && !items[0].isText && !c.p.Hydratable
	if single {
		if el, ok := items[0].src.(*jsx.Element); ok && !IsComponentName(el.Name) {
			single = false
		}
	}

	idx := 0
	for _, it := range items {
		if it.isText {
			n.Children = append(n.Children, &Node{Kind: KindText, Source: it.src, Text: it.text})
			idx++
			continue
		}
		if el, ok := it.src.(*jsx.Element); ok && !IsComponentName(el.Name) {
			n.Children = append(n.Children, c.element(el, path.Append(idx)))
			idx++
			continue
		}

		var child *Node
		if el, ok := it.src.(*jsx.Element); ok {
			child = c.component(el)
		} else {
			slot := it.src.(*jsx.ExprSlot)
			child = c.exprNode(slot.Expr, slot)
		}
		n.Children = append(n.Children, child)

		b := &Binding{Kind: Child, Owner: n, Child: child}
		if single {
			b.Path = path
			if child.Kind == KindExpr {
				b.Kind = TextContent
			}
		} else {
			child.Marker = true
			b.Marker = true
			b.Path = path.Append(idx)
			idx++
		}
		if child.Kind == KindExpr {
			b.Expr = child.Expr
		}
		c.bind(b)
	}
}

func (c *Classifier) component(el *jsx.Element) *Node {
	n := &Node{Kind: KindComponent, Source: el, Name: el.Name, Tag: Dynamic}
	rule, known, configured := c.builtins.Lookup(el.Name)
	switch {
	case known:
		n.Builtin = &rule
	case configured:
		c.p.Report("J105", el.Loc, "")
	}

	for _, item := range c.dedupe(el.Attrs, false) {
		if a := c.prop(item); a != nil {
			n.Attrs = append(n.Attrs, a)
			if a.Spread {
				n.HasSpread = true
			}
		}
	}

	kids := c.values(el.Children)
	if n.Builtin == nil || len(kids) == 0 {
		n.Children = kids
		return n
	}

	switch n.Builtin.Children {
	case builtins.Thunk:
		n.Children = []*Node{{Kind: KindDeferred, Source: el, Tag: Dynamic, Children: kids}}
	case builtins.Callback:
		if len(kids) == 1 && kids[0].Kind == KindExpr && kids[0].Expr.Source.IsFunction() {
			n.Children = []*Node{{Kind: KindDeferred, Source: kids[0].Source, Tag: Dynamic, Expr: kids[0].Expr}}
			break
		}
		c.p.Report("J104", el.Loc, "")
		n.Children = kids
	default:
		n.Children = kids
	}
	return n
}

func (c *Classifier) prop(item jsx.AttrItem) *Attr {
	switch v := item.(type) {
	case *jsx.SpreadAttribute:
		return c.spread(v)
	case *jsx.Attribute:
		a := &Attr{Name: v.FullName(), Namespace: v.Namespace, Source: v}
		if v.Namespace == "" && v.Name == "ref" {
			a.Kind = Ref
			return c.refValue(a, v)
		}
		switch val := v.Value.(type) {
		case nil:
			a.Expr = &Expr{Source: jsx.Bool(true)}
		case *jsx.StringValue:
			a.Expr = &Expr{Source: jsx.Str(val.Value)}
		case *jsx.Expr:
			a.Expr = c.expr(val)
			if !val.IsLiteral() {
				a.Tag = Dynamic
			}
		}
		return a
	}
	return nil
}

func (c *Classifier) spread(v *jsx.SpreadAttribute) *Attr {
	if v.Argument.IsLiteral() {
		c.p.Report("J103", v.Loc, "cannot spread "+v.Argument.Source)
		return nil
	}
	return &Attr{Spread: true, Tag: Dynamic, Kind: Spread, Expr: c.expr(v.Argument)}
}

func (c *Classifier) refValue(a *Attr, v *jsx.Attribute) *Attr {
	e, ok := v.Value.(*jsx.Expr)
	if !ok || e.Kind == jsx.ExprEmpty {
		c.p.Report("J106", v.Loc, "")
		return nil
	}
	a.Tag = Dynamic
	a.Expr = c.expr(e)
	return a
}

func (c *Classifier) exprNode(e *jsx.Expr, src jsx.Node) *Node {
	return &Node{Kind: KindExpr, Source: src, Tag: Dynamic, Expr: c.expr(e)}
}

// expr classifies the JSX embedded in e as independent roots.
func (c *Classifier) expr(e *jsx.Expr) *Expr {
	out := &Expr{Source: e}
	if e.Kind == jsx.ExprStatement {
		out.Unsupported = true
		c.p.Report("J001", e.Loc, "")
		return out
	}
	for _, n := range e.EmbeddedNodes() {
		out.Embeds = append(out.Embeds, c.Classify(n))
	}
	return out
}

// values classifies children that are passed around as values: fragment
// members and component children.
func (c *Classifier) values(kids []jsx.Node) []*Node {
	var out []*Node
	for _, it := range c.normalize(kids) {
		if it.isText {
			out = append(out, &Node{Kind: KindText, Source: it.src, Text: it.text})
			continue
		}
		switch v := it.src.(type) {
		case *jsx.Element:
			out = append(out, c.Classify(v))
		case *jsx.ExprSlot:
			out = append(out, c.exprNode(v.Expr, v))
		}
	}
	return out
}

// dedupe drops all but the last occurrence of each attribute name and
// reports the dropped ones.
func (c *Classifier) dedupe(items []jsx.AttrItem, alias bool) []jsx.AttrItem {
	key := func(a *jsx.Attribute) string {
		name := a.FullName()
		if alias && a.Namespace == "" {
			if to, ok := aliases[a.Name]; ok {
				name = to
			}
		}
		return name
	}

	last := make(map[string]int, len(items))
	for i, item := range items {
		if a, ok := item.(*jsx.Attribute); ok {
			last[key(a)] = i
		}
	}
	if len(last) == len(items) {
		return items
	}

	out := make([]jsx.AttrItem, 0, len(items))
	for i, item := range items {
		a, ok := item.(*jsx.Attribute)
		if ok && last[key(a)] != i {
			c.p.Report("J101", items[last[key(a)]].Span(), "attribute "+key(a)+" is set more than once; the last value wins")
			continue
		}
		out = append(out, item)
	}
	return out
}

type item struct {
	isText bool
	text   string
	src    jsx.Node
}

// normalize flattens fragments, folds literal expressions into text, drops
// children that render nothing and merges adjacent text.
func (c *Classifier) normalize(kids []jsx.Node) []item {
	var out []item
	addText := func(s string, src jsx.Node) {
		if n := len(out); n > 0 && out[n-1].isText {
			out[n-1].text += s
			return
		}
		out = append(out, item{isText: true, text: s, src: src})
	}

	var walk func([]jsx.Node)
	walk = func(ns []jsx.Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case *jsx.Text:
				if t := normalizeText(v.Value); t != "" {
					addText(t, v)
				}
			case *jsx.Fragment:
				walk(v.Children)
			case *jsx.ExprSlot:
				switch {
				case v.Expr.Kind == jsx.ExprEmpty:
				case v.Expr.IsLiteral():
					if t := literalText(v.Expr); v.Expr.Renders() && t != "" {
						addText(t, v)
					}
				default:
					out = append(out, item{src: v})
				}
			case *jsx.Element:
				out = append(out, item{src: v})
			}
		}
	}
	walk(kids)
	return out
}

func literalText(e *jsx.Expr) string {
	if e.Value == "" && e.Kind == jsx.ExprNumber {
		return e.Source
	}
	if e.Value == "" && e.Kind == jsx.ExprTemplate {
		return strings.Trim(e.Source, "`")
	}
	return e.Value
}

// normalizeText applies JSX whitespace rules: lines are trimmed where they
// meet a line break, blank lines vanish and the rest join with one space.
func normalizeText(s string) string {
	if !strings.ContainsAny(s, "\n\r") {
		return s
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lastNonEmpty := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lastNonEmpty = i
		}
	}

	var b strings.Builder
	for i, l := range lines {
		l = strings.ReplaceAll(l, "\t", " ")
		if i > 0 {
			l = strings.TrimLeft(l, " ")
		}
		if i < len(lines)-1 {
			l = strings.TrimRight(l, " ")
		}
		if l == "" {
			continue
		}
		b.WriteString(l)
		if i != lastNonEmpty {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
