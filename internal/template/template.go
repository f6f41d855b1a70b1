// Package template serialises the static skeleton of an element subtree
// into reusable template markup and records where each dynamic binding
// lives inside it.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/pass"
)

// MarkerText is the placeholder inserted for dynamic children.
const MarkerText = "<!>"

// Descriptor is one unique skeleton in a module.
type Descriptor struct {
	// ID is the generated constant name, _tmpl$1, _tmpl$2, ...
	ID     string
	Markup string
	// SVG is set when the root is an SVG child element that must be parsed
	// in an SVG context.
	SVG bool
	// Slots are the slot paths of the first subtree that created the
	// descriptor.
	Slots []analysis.SlotPath
	// Uses counts the subtrees that share the skeleton.
	Uses int
}

// Instance is one use of a descriptor by a classified template root.
type Instance struct {
	*Descriptor
	Root *analysis.Node
	// Slots holds the recomputed path of each binding of Root, in binding
	// order.
	Slots []analysis.SlotPath
	// Probe is the skeleton annotated with binding indices.
	Probe string
}

// Registry deduplicates descriptors by skeleton text for one module.
type Registry struct {
	byMarkup map[string]*Descriptor
	list     []*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMarkup: make(map[string]*Descriptor)}
}

// Descriptors returns every descriptor in creation order.
func (r *Registry) Descriptors() []*Descriptor {
	return r.list
}

// Assemble serialises root, reuses or creates its descriptor and checks the
// recomputed slots against the classifier's bindings. A mismatch is fatal.
func (r *Registry) Assemble(p *pass.Pass, root *analysis.Node) (*Instance, error) {
	if !root.IsTemplateRoot() {
		return nil, p.Fatal("J900", root.Span(), fmt.Sprintf("<%s> is not a template root", root.Name))
	}

	s := &serializer{bindings: root.Bindings}
	s.element(root, analysis.SlotPath{})

	if err := s.check(p, root); err != nil {
		return nil, err
	}

	markup := s.markup.String()
	d, ok := r.byMarkup[markup]
	if !ok {
		d = &Descriptor{
			ID:     "_tmpl$" + strconv.Itoa(len(r.list)+1),
			Markup: markup,
			SVG:    root.SVG && root.Name != "svg",
			Slots:  s.slots,
		}
		r.byMarkup[markup] = d
		r.list = append(r.list, d)
	}
	d.Uses++

	return &Instance{Descriptor: d, Root: root, Slots: s.slots, Probe: s.probe.String()}, nil
}

// serializer writes the skeleton and the probe side by side. The probe
// carries data-jsxc-slot on every element a binding points at and names
// each marker after its binding.
type serializer struct {
	markup   strings.Builder
	probe    strings.Builder
	bindings []*analysis.Binding
	slots    []analysis.SlotPath
}

func (s *serializer) write(str string) {
	s.markup.WriteString(str)
	s.probe.WriteString(str)
}

// claim records path for the next binding and returns its index.
func (s *serializer) claim(path analysis.SlotPath) int {
	s.slots = append(s.slots, path)
	return len(s.slots) - 1
}

func (s *serializer) element(n *analysis.Node, path analysis.SlotPath) {
	var owned []int
	for range n.Own {
		owned = append(owned, s.claim(path))
	}
	// A lone dynamic child is inserted without a marker, so its binding
	// points at this element too.
	for _, c := range n.Children {
		if !c.Marker && (c.Kind == analysis.KindExpr || c.Kind == analysis.KindComponent) {
			owned = append(owned, s.claim(path))
		}
	}

	s.write("<" + n.Name)
	if !n.HasSpread {
		for _, a := range n.Attrs {
			if a.Tag == analysis.Static {
				s.write(StaticAttr(a))
			}
		}
	}
	if len(owned) > 0 {
		s.probe.WriteString(` data-jsxc-slot="` + joinInts(owned) + `"`)
	}
	s.write(">")

	idx := 0
	for _, c := range n.Children {
		switch {
		case c.Kind == analysis.KindText:
			s.write(EscapeText(c.Text))
		case c.Kind == analysis.KindElement:
			s.element(c, path.Append(idx))
		case c.Marker:
			i := s.claim(path.Append(idx))
			s.markup.WriteString(MarkerText)
			fmt.Fprintf(&s.probe, "<!--jsxc-slot:%d-->", i)
		default:
			continue
		}
		idx++
	}
	if !n.Void {
		s.write("</" + n.Name + ">")
	}
}

func (s *serializer) check(p *pass.Pass, root *analysis.Node) error {
	if len(s.slots) != len(root.Bindings) {
		return p.Fatal("J900", root.Span(),
			fmt.Sprintf("<%s> has %d bindings but its skeleton has %d slots", root.Name, len(root.Bindings), len(s.slots)))
	}
	for i, b := range root.Bindings {
		if !b.Path.Equal(s.slots[i]) {
			return p.Fatal("J900", root.Span(),
				fmt.Sprintf("binding %d (%s) expects path %s but the skeleton places it at %s", i, b.Kind, b.Path, s.slots[i]))
		}
	}
	return nil
}

// StaticAttr renders a folded attribute as markup, with a leading space.
// Omitted attributes render as the empty string.
func StaticAttr(a *analysis.Attr) string {
	switch {
	case a.Omit:
		return ""
	case a.Bool:
		return " " + a.Name
	}
	return " " + a.Name + `="` + EscapeAttr(a.Value) + `"`
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
