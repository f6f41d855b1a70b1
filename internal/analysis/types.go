package analysis

import (
	"strconv"
	"strings"

	"github.com/vango-dev/jsxc/internal/builtins"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// Tag marks whether a value can be folded into a template at compile time.
type Tag uint8

const (
	Static Tag = iota
	Dynamic
)

func (t Tag) String() string {
	if t == Dynamic {
		return "dynamic"
	}
	return "static"
}

// BindingKind says how generated code attaches a dynamic value to a node.
type BindingKind uint8

const (
	Attribute BindingKind = iota
	TextContent
	Child
	EventHandler
	Ref
	Directive
	Spread
	PropertyBinding
	ClassList
	StyleObject
)

var bindingKindNames = [...]string{
	Attribute:       "attribute",
	TextContent:     "text",
	Child:           "child",
	EventHandler:    "event",
	Ref:             "ref",
	Directive:       "directive",
	Spread:          "spread",
	PropertyBinding: "property",
	ClassList:       "classList",
	StyleObject:     "style",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "unknown"
}

// Insertion reports whether the binding inserts a child value.
func (k BindingKind) Insertion() bool {
	return k == TextContent || k == Child
}

// SlotPath is the sequence of child indices leading from a template root
// to a node of its skeleton.
type SlotPath []int

// Equal reports whether two paths are identical.
func (p SlotPath) Equal(o SlotPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Parent returns the path without its last step.
func (p SlotPath) Parent() SlotPath {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Append returns a new path extended by i.
func (p SlotPath) Append(i int) SlotPath {
	out := make(SlotPath, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

func (p SlotPath) String() string {
	if len(p) == 0 {
		return "root"
	}
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// NodeKind is the shape of a classified node.
type NodeKind uint8

const (
	KindElement NodeKind = iota
	KindComponent
	KindFragment
	KindText
	KindExpr
	// KindDeferred holds children a built-in renders later, either as a
	// thunk or through a callback expression.
	KindDeferred
)

// Node is a classified JSX node.
type Node struct {
	Kind   NodeKind
	Source jsx.Node
	Tag    Tag

	// Element and component fields.
	Name     string
	Attrs    []*Attr
	Children []*Node

	// Element facts.
	Void      bool
	SVG       bool
	Custom    bool
	HasSpread bool
	// Own lists the bindings attached to this element itself, in order.
	Own []*Binding
	// Bindings lists every binding of the template this element roots.
	// Only set on template roots.
	Bindings []*Binding
	// Marker is set on dynamic children that insert before a placeholder.
	Marker bool

	// Text is the normalised content of a text node.
	Text string
	// Expr is the expression of an expression node, or the callback of a
	// deferred node.
	Expr *Expr

	// Builtin is set on components that resolve to a built-in.
	Builtin *builtins.Rule
}

// Span returns the source range of the node.
func (n *Node) Span() jsx.Span {
	if n.Source == nil {
		return jsx.Span{}
	}
	return n.Source.Span()
}

// IsTemplateRoot reports whether n is an element that owns a template.
func (n *Node) IsTemplateRoot() bool {
	return n.Kind == KindElement && n.Bindings != nil
}

// Expr is an expression with its embedded JSX classified.
type Expr struct {
	Source *jsx.Expr
	// Embeds are the classified embedded roots in source order.
	Embeds      []*Node
	Unsupported bool
}

// Render returns the expression source with each embedded root replaced
// by render(root).
func (e *Expr) Render(render func(*Node) string) string {
	i := 0
	return e.Source.Splice(func(jsx.Node) string {
		n := e.Embeds[i]
		i++
		return render(n)
	})
}

// Text returns the expression source unchanged.
func (e *Expr) Text() string {
	return e.Source.Source
}

// Event describes an event handler attribute.
type Event struct {
	Name     string
	Delegate bool
	// Native handlers (on:name) bypass the runtime listener helpers.
	Native  bool
	Capture bool
	Once    bool
	Passive bool
}

// Attr is a classified attribute or component prop.
type Attr struct {
	// Name is the resolved name without namespace (aliases applied for
	// elements). For markup namespaces such as xlink it is the full name.
	Name      string
	Namespace string
	Source    *jsx.Attribute
	Tag       Tag
	Kind      BindingKind

	// Static values.
	Value string
	Bool  bool
	Omit  bool

	// Dynamic values.
	Expr   *Expr
	Event  *Event
	Spread bool
}

// Span returns the source range of the attribute.
func (a *Attr) Span() jsx.Span {
	if a.Source != nil {
		return a.Source.Loc
	}
	if a.Expr != nil {
		return a.Expr.Source.Loc
	}
	return jsx.Span{}
}

// ClientOnly reports whether the attribute only has an effect in the
// browser: handlers, refs, directives and prop: bindings.
func (a *Attr) ClientOnly() bool {
	switch a.Kind {
	case EventHandler, Ref, Directive:
		return true
	case PropertyBinding:
		return a.Namespace == "prop"
	}
	return false
}

// Binding is one dynamic attachment point in a template.
type Binding struct {
	Kind BindingKind
	Path SlotPath
	Name string
	Expr *Expr

	// Owner is the element the binding belongs to. For insertions it is
	// the parent element.
	Owner *Node
	// Child is the inserted node for insertion bindings.
	Child *Node
	// Marker is set when Path points at a placeholder rather than Owner.
	Marker bool

	Attr  *Attr
	Event *Event
	// Attrs holds every merged attribute of a Spread binding.
	Attrs []*Attr

	// ClientOnly bindings are not rendered by the server generator.
	ClientOnly bool
	// Synthetic bindings are produced by the compiler rather than by an
	// attribute, with the value held in Name and Expr.
	Synthetic bool
}
