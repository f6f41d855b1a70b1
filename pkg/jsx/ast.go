package jsx

import "strings"

// Pos is a position in the module source. Line is 1-based; Column and
// Offset are 0-based byte counts.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Span is the source range a node was parsed from.
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Node is a JSX child: *Element, *Fragment, *Text or *ExprSlot.
type Node interface {
	Span() Span
	jsxNode()
}

// Element is <name attrs...>children</name>. Component elements use the
// same type; the compiler tells them apart by name.
type Element struct {
	Name     string
	Attrs    []AttrItem
	Children []Node
	Loc      Span
}

// Fragment is <>children</>.
type Fragment struct {
	Children []Node
	Loc      Span
}

// Text is literal JSX text with entities already decoded.
type Text struct {
	Value string
	Loc   Span
}

// ExprSlot is an expression container used as a child: {expr}.
type ExprSlot struct {
	Expr *Expr
	Loc  Span
}

func (n *Element) Span() Span  { return n.Loc }
func (n *Fragment) Span() Span { return n.Loc }
func (n *Text) Span() Span     { return n.Loc }
func (n *ExprSlot) Span() Span { return n.Loc }

func (*Element) jsxNode()  {}
func (*Fragment) jsxNode() {}
func (*Text) jsxNode()     {}
func (*ExprSlot) jsxNode() {}

// AttrItem is an *Attribute or a *SpreadAttribute.
type AttrItem interface {
	Span() Span
	attrItem()
}

// AttrValue is the value of an attribute: *StringValue or *Expr. A nil
// AttrValue is a bare boolean attribute.
type AttrValue interface {
	attrValue()
}

// Attribute is name="value", name={expr}, ns:name={expr} or a bare name.
type Attribute struct {
	Namespace string
	Name      string
	Value     AttrValue
	Loc       Span
}

// FullName returns the attribute name including its namespace.
func (a *Attribute) FullName() string {
	if a.Namespace == "" {
		return a.Name
	}
	return a.Namespace + ":" + a.Name
}

// SpreadAttribute is {...argument} in attribute position.
type SpreadAttribute struct {
	Argument *Expr
	Loc      Span
}

// StringValue is a quoted attribute value with entities decoded.
type StringValue struct {
	Value string
}

func (a *Attribute) Span() Span       { return a.Loc }
func (a *SpreadAttribute) Span() Span { return a.Loc }

func (*Attribute) attrItem()       {}
func (*SpreadAttribute) attrItem() {}

func (*StringValue) attrValue() {}
func (*Expr) attrValue()        {}

// Module is one source file as seen by the compiler: host-language code
// with JSX roots embedded in it.
type Module struct {
	Filename string
	Source   string
	Body     []Segment
}

// Segment is a *Code or a *Root.
type Segment interface {
	segment()
}

// Code is host-language text copied to the output unchanged.
type Code struct {
	Text string
	Loc  Span
}

// Root is a top-level JSX expression replaced by its compiled form.
type Root struct {
	Node Node
}

func (*Code) segment() {}
func (*Root) segment() {}

// Roots returns the JSX roots of the module in source order.
func (m *Module) Roots() []Node {
	var out []Node
	for _, seg := range m.Body {
		if r, ok := seg.(*Root); ok {
			out = append(out, r.Node)
		}
	}
	return out
}

// Line returns the 1-based line n of the module source.
func (m *Module) Line(n int) string {
	lines := strings.Split(m.Source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
