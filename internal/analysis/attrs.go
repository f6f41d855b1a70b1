package analysis

import (
	"strings"

	"github.com/vango-dev/jsxc/pkg/jsx"
)

func (c *Classifier) elementAttr(item jsx.AttrItem) *Attr {
	switch v := item.(type) {
	case *jsx.SpreadAttribute:
		return c.spread(v)
	case *jsx.Attribute:
		return c.attribute(v)
	}
	return nil
}

func malformed(ns, name string) bool {
	if ns == "" {
		return strings.Contains(name, ":")
	}
	return name == "" || strings.Contains(name, ":") || strings.Contains(ns, ":")
}

func (c *Classifier) attribute(v *jsx.Attribute) *Attr {
	ns, name := v.Namespace, v.Name
	if malformed(ns, name) {
		c.p.Report("J102", v.Loc, "attribute "+v.FullName()+" is not of the form namespace:name")
		ns, name = "", v.FullName()
	}
	a := &Attr{Name: name, Namespace: ns, Source: v}

	switch ns {
	case "":
	case "on", "oncapture":
		a.Kind = EventHandler
		a.Event = &Event{Name: strings.ToLower(name), Native: true, Capture: ns == "oncapture"}
		return c.dynamic(a, v)
	case "use":
		a.Kind = Directive
		return c.dynamic(a, v)
	case "prop":
		a.Kind = PropertyBinding
		return c.dynamic(a, v)
	case "attr":
		a.Kind = Attribute
		return c.dynamic(a, v)
	default:
		// xlink:href, xml:lang and other markup namespaces
		a.Name, a.Namespace = v.FullName(), ""
		a.Kind = Attribute
		return c.markup(a, v)
	}

	if to, ok := aliases[name]; ok {
		a.Name = to
	}
	switch {
	case name == "ref":
		a.Kind = Ref
		return c.refValue(a, v)
	case isEventName(name):
		a.Kind = EventHandler
		a.Event = c.event(name)
		return c.dynamic(a, v)
	case name == "classList":
		a.Kind = ClassList
		return c.dynamic(a, v)
	case name == "style":
		if css, ok := staticStyle(v.Value); ok {
			a.Kind = Attribute
			a.Value = css
			return a
		}
		a.Kind = StyleObject
		return c.dynamic(a, v)
	case contentProperties[name]:
		a.Kind = PropertyBinding
		return c.dynamic(a, v)
	case properties[name]:
		a.Kind = PropertyBinding
		return c.markup(a, v)
	}
	a.Kind = Attribute
	return c.markup(a, v)
}

// markup folds literal values into the skeleton and leaves the rest dynamic.
func (c *Classifier) markup(a *Attr, v *jsx.Attribute) *Attr {
	switch val := v.Value.(type) {
	case nil:
		a.Bool = true
		return a
	case *jsx.StringValue:
		a.Value = val.Value
		return a
	case *jsx.Expr:
		if !val.IsLiteral() {
			return c.dynamic(a, v)
		}
		switch {
		case val.Kind == jsx.ExprBoolean && val.Source == "true":
			a.Bool = true
		case val.Kind == jsx.ExprBoolean || val.Kind == jsx.ExprNull:
			a.Omit = true
		default:
			a.Value = literalText(val)
		}
		return a
	}
	return a
}

func (c *Classifier) dynamic(a *Attr, v *jsx.Attribute) *Attr {
	a.Tag = Dynamic
	switch val := v.Value.(type) {
	case nil:
		a.Expr = &Expr{Source: jsx.Bool(true)}
	case *jsx.StringValue:
		a.Expr = &Expr{Source: jsx.Str(val.Value)}
	case *jsx.Expr:
		a.Expr = c.expr(val)
	}
	return a
}

func isEventName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z'
}

var eventModifiers = []string{"Capture", "Once", "Passive"}

func (c *Classifier) event(name string) *Event {
	ev := &Event{}
	base := name[2:]
	for stripped := true; stripped; {
		stripped = false
		for _, mod := range eventModifiers {
			if len(base) > len(mod) && strings.HasSuffix(base, mod) {
				base = strings.TrimSuffix(base, mod)
				switch mod {
				case "Capture":
					ev.Capture = true
				case "Once":
					ev.Once = true
				case "Passive":
					ev.Passive = true
				}
				stripped = true
			}
		}
	}
	ev.Name = strings.ToLower(base)
	modified := ev.Capture || ev.Once || ev.Passive
	ev.Delegate = !modified && c.p.DelegateEvents && (delegatedEvents[ev.Name] || c.extra[ev.Name])
	return ev
}
