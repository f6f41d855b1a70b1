package jsx

import (
	"sort"

	"github.com/vango-dev/jsxc/pkg/diag"
)

// Validate checks the guarantees the compiler relies on: every node and
// expression is present, element names are non-empty, and embed ranges lie
// inside their expression's source without overlapping.
func (m *Module) Validate() error {
	v := validator{file: m.Filename, src: m.Source}
	for _, seg := range m.Body {
		switch s := seg.(type) {
		case *Root:
			if s.Node == nil {
				return v.fail(Span{}, "module root has no node")
			}
			if err := v.node(s.Node); err != nil {
				return err
			}
		case *Code:
		case nil:
			return v.fail(Span{}, "module has a nil segment")
		}
	}
	return nil
}

type validator struct {
	file string
	src  string
}

func (v *validator) fail(at Span, detail string) error {
	err := diag.New("J903").WithDetail(detail)
	if !at.IsZero() {
		err = err.WithLocation(v.file, at.Start.Line, at.Start.Column+1).WithSource(v.src)
	}
	return err
}

func (v *validator) node(n Node) error {
	switch n := n.(type) {
	case *Element:
		if n == nil {
			return v.fail(Span{}, "nil element")
		}
		if n.Name == "" {
			return v.fail(n.Loc, "element has an empty name")
		}
		for _, a := range n.Attrs {
			if err := v.attr(a); err != nil {
				return err
			}
		}
		return v.children(n.Children)
	case *Fragment:
		if n == nil {
			return v.fail(Span{}, "nil fragment")
		}
		return v.children(n.Children)
	case *Text:
		if n == nil {
			return v.fail(Span{}, "nil text")
		}
		return nil
	case *ExprSlot:
		if n == nil || n.Expr == nil {
			return v.fail(Span{}, "expression container without expression")
		}
		return v.expr(n.Expr)
	case nil:
		return v.fail(Span{}, "nil child node")
	}
	return v.fail(Span{}, "unknown node type")
}

func (v *validator) children(cs []Node) error {
	for _, c := range cs {
		if err := v.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) attr(a AttrItem) error {
	switch a := a.(type) {
	case *Attribute:
		if a == nil || a.Name == "" && a.Namespace == "" {
			return v.fail(Span{}, "attribute without a name")
		}
		if e, ok := a.Value.(*Expr); ok {
			if e == nil {
				return v.fail(a.Loc, "attribute "+a.FullName()+" has a nil expression")
			}
			return v.expr(e)
		}
		return nil
	case *SpreadAttribute:
		if a == nil || a.Argument == nil {
			return v.fail(Span{}, "spread without an argument")
		}
		return v.expr(a.Argument)
	}
	return v.fail(Span{}, "nil attribute")
}

func (v *validator) expr(e *Expr) error {
	if len(e.Embeds) > 0 {
		embeds := append([]Embed(nil), e.Embeds...)
		sort.Slice(embeds, func(i, j int) bool { return embeds[i].Start < embeds[j].Start })
		last := 0
		for _, em := range embeds {
			if em.Start < last || em.End < em.Start || em.End > len(e.Source) {
				return v.fail(e.Loc, "embedded JSX range out of bounds or overlapping")
			}
			if em.Node == nil {
				return v.fail(e.Loc, "embedded JSX without a node")
			}
			if err := v.node(em.Node); err != nil {
				return err
			}
			last = em.End
		}
	}
	for _, p := range e.Props {
		if p.Value == nil {
			return v.fail(e.Loc, "object property "+p.Key+" has no value")
		}
	}
	for _, el := range e.Elements {
		if el == nil {
			return v.fail(e.Loc, "array literal has a nil element")
		}
	}
	return nil
}
