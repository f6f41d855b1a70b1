package jsx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// wire is the JSON shape of every node kind; Type selects which fields apply.
type wire struct {
	Type string `json:"type"`
	Loc  *Span  `json:"loc,omitempty"`

	// Module
	Filename string  `json:"filename,omitempty"`
	Source   string  `json:"source,omitempty"`
	Body     []*wire `json:"body,omitempty"`

	// Element, Fragment, Attribute
	Name       string  `json:"name,omitempty"`
	Namespace  string  `json:"namespace,omitempty"`
	Attributes []*wire `json:"attributes,omitempty"`
	Children   []*wire `json:"children,omitempty"`
	Value      *wire   `json:"value,omitempty"`

	// Text, String, Code
	Text string `json:"text,omitempty"`

	// ExpressionSlot, SpreadAttribute, JSX segment
	Expression *wire `json:"expression,omitempty"`
	Argument   *wire `json:"argument,omitempty"`
	Node       *wire `json:"node,omitempty"`

	// Expression
	Kind       ExprKind    `json:"kind,omitempty"`
	Literal    string      `json:"literal,omitempty"`
	Embeds     []wireEmbed `json:"embeds,omitempty"`
	Properties []wireProp  `json:"properties,omitempty"`
	Elements   []*wire     `json:"elements,omitempty"`
}

type wireEmbed struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Node  *wire `json:"node"`
}

type wireProp struct {
	Key   string `json:"key"`
	Value *wire  `json:"value"`
}

// Decode reads a module in the jsxc JSON AST format.
func Decode(r io.Reader) (*Module, error) {
	var w wire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("jsx: decode: %w", err)
	}
	return w.module()
}

// Unmarshal parses a module from JSON bytes.
func Unmarshal(data []byte) (*Module, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("jsx: decode: %w", err)
	}
	return w.module()
}

// DecodeFile reads a module from a JSON file. The module's filename
// defaults to the path when the document does not name one.
func DecodeFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if m.Filename == "" {
		m.Filename = path
	}
	return m, nil
}

// Encode writes the module in the jsxc JSON AST format.
func Encode(w io.Writer, m *Module) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(moduleWire(m))
}

// Marshal returns the module in the jsxc JSON AST format.
func Marshal(m *Module) ([]byte, error) {
	return json.Marshal(moduleWire(m))
}

func (w *wire) module() (*Module, error) {
	if w.Type != "Module" {
		return nil, fmt.Errorf("jsx: expected Module, got %q", w.Type)
	}
	m := &Module{Filename: w.Filename, Source: w.Source}
	for _, s := range w.Body {
		if s == nil {
			return nil, fmt.Errorf("jsx: null segment in module body")
		}
		switch s.Type {
		case "Code":
			m.Body = append(m.Body, &Code{Text: s.Text, Loc: s.span()})
		case "JSX":
			n, err := s.Node.node()
			if err != nil {
				return nil, err
			}
			m.Body = append(m.Body, &Root{Node: n})
		default:
			return nil, fmt.Errorf("jsx: unknown segment type %q", s.Type)
		}
	}
	return m, nil
}

func (w *wire) span() Span {
	if w.Loc == nil {
		return Span{}
	}
	return *w.Loc
}

func (w *wire) node() (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("jsx: null node")
	}
	switch w.Type {
	case "Element":
		el := &Element{Name: w.Name, Loc: w.span()}
		for _, a := range w.Attributes {
			item, err := a.attr()
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, item)
		}
		children, err := nodes(w.Children)
		if err != nil {
			return nil, err
		}
		el.Children = children
		return el, nil
	case "Fragment":
		children, err := nodes(w.Children)
		if err != nil {
			return nil, err
		}
		return &Fragment{Children: children, Loc: w.span()}, nil
	case "Text":
		return &Text{Value: w.Text, Loc: w.span()}, nil
	case "ExpressionSlot":
		e, err := w.Expression.expr()
		if err != nil {
			return nil, err
		}
		return &ExprSlot{Expr: e, Loc: w.span()}, nil
	}
	return nil, fmt.Errorf("jsx: unknown node type %q", w.Type)
}

func nodes(ws []*wire) ([]Node, error) {
	out := make([]Node, 0, len(ws))
	for _, c := range ws {
		n, err := c.node()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (w *wire) attr() (AttrItem, error) {
	if w == nil {
		return nil, fmt.Errorf("jsx: null attribute")
	}
	switch w.Type {
	case "Attribute":
		a := &Attribute{Namespace: w.Namespace, Name: w.Name, Loc: w.span()}
		if w.Value != nil {
			switch w.Value.Type {
			case "String":
				a.Value = &StringValue{Value: w.Value.Text}
			case "Expression":
				e, err := w.Value.expr()
				if err != nil {
					return nil, err
				}
				a.Value = e
			case "Element", "Fragment":
				n, err := w.Value.node()
				if err != nil {
					return nil, err
				}
				a.Value = JSX(n)
			default:
				return nil, fmt.Errorf("jsx: unknown attribute value type %q", w.Value.Type)
			}
		}
		return a, nil
	case "SpreadAttribute":
		e, err := w.Argument.expr()
		if err != nil {
			return nil, err
		}
		return &SpreadAttribute{Argument: e, Loc: w.span()}, nil
	}
	return nil, fmt.Errorf("jsx: unknown attribute type %q", w.Type)
}

func (w *wire) expr() (*Expr, error) {
	if w == nil {
		return nil, fmt.Errorf("jsx: null expression")
	}
	if w.Type != "Expression" {
		return nil, fmt.Errorf("jsx: expected Expression, got %q", w.Type)
	}
	e := &Expr{Kind: w.Kind, Source: w.Source, Value: w.Literal, Loc: w.span()}
	if e.Kind == "" {
		e.Kind = guessKind(e.Source)
	}
	for _, em := range w.Embeds {
		n, err := em.Node.node()
		if err != nil {
			return nil, err
		}
		e.Embeds = append(e.Embeds, Embed{Start: em.Start, End: em.End, Node: n})
	}
	for _, p := range w.Properties {
		v, err := p.Value.expr()
		if err != nil {
			return nil, err
		}
		e.Props = append(e.Props, Prop{Key: p.Key, Value: v})
	}
	for _, el := range w.Elements {
		v, err := el.expr()
		if err != nil {
			return nil, err
		}
		e.Elements = append(e.Elements, v)
	}
	return e, nil
}

func loc(s Span) *Span {
	if s.IsZero() {
		return nil
	}
	return &s
}

func moduleWire(m *Module) *wire {
	w := &wire{Type: "Module", Filename: m.Filename, Source: m.Source}
	for _, seg := range m.Body {
		switch s := seg.(type) {
		case *Code:
			w.Body = append(w.Body, &wire{Type: "Code", Text: s.Text, Loc: loc(s.Loc)})
		case *Root:
			w.Body = append(w.Body, &wire{Type: "JSX", Node: nodeWire(s.Node)})
		}
	}
	return w
}

func nodeWire(n Node) *wire {
	switch v := n.(type) {
	case *Element:
		w := &wire{Type: "Element", Name: v.Name, Loc: loc(v.Loc)}
		for _, a := range v.Attrs {
			w.Attributes = append(w.Attributes, attrWire(a))
		}
		for _, c := range v.Children {
			w.Children = append(w.Children, nodeWire(c))
		}
		return w
	case *Fragment:
		w := &wire{Type: "Fragment", Loc: loc(v.Loc)}
		for _, c := range v.Children {
			w.Children = append(w.Children, nodeWire(c))
		}
		return w
	case *Text:
		return &wire{Type: "Text", Text: v.Value, Loc: loc(v.Loc)}
	case *ExprSlot:
		return &wire{Type: "ExpressionSlot", Expression: exprWire(v.Expr), Loc: loc(v.Loc)}
	}
	return nil
}

func attrWire(a AttrItem) *wire {
	switch v := a.(type) {
	case *Attribute:
		w := &wire{Type: "Attribute", Namespace: v.Namespace, Name: v.Name, Loc: loc(v.Loc)}
		switch val := v.Value.(type) {
		case *StringValue:
			w.Value = &wire{Type: "String", Text: val.Value}
		case *Expr:
			w.Value = exprWire(val)
		}
		return w
	case *SpreadAttribute:
		return &wire{Type: "SpreadAttribute", Argument: exprWire(v.Argument), Loc: loc(v.Loc)}
	}
	return nil
}

func exprWire(e *Expr) *wire {
	if e == nil {
		return nil
	}
	w := &wire{Type: "Expression", Kind: e.Kind, Source: e.Source, Literal: e.Value, Loc: loc(e.Loc)}
	for _, em := range e.Embeds {
		w.Embeds = append(w.Embeds, wireEmbed{Start: em.Start, End: em.End, Node: nodeWire(em.Node)})
	}
	for _, p := range e.Props {
		w.Properties = append(w.Properties, wireProp{Key: p.Key, Value: exprWire(p.Value)})
	}
	for _, el := range e.Elements {
		w.Elements = append(w.Elements, exprWire(el))
	}
	return w
}
