package analysis

import "github.com/vango-dev/jsxc/pkg/jsx"

// NeedsTracking reports whether reading e may observe reactive state, so
// that a binding must be re-evaluated in an effect. Identifiers count as
// tracked: without scope analysis a bare name can be a signal.
func NeedsTracking(e *Expr) bool {
	if e == nil || e.Unsupported {
		return false
	}
	return tracked(e.Source)
}

func tracked(e *jsx.Expr) bool {
	switch e.Kind {
	case jsx.ExprString, jsx.ExprNumber, jsx.ExprBoolean, jsx.ExprNull, jsx.ExprTemplate,
		jsx.ExprArrow, jsx.ExprFunction, jsx.ExprJSX, jsx.ExprEmpty:
		return false
	case jsx.ExprObject:
		if e.Props == nil {
			return e.Source != "{}"
		}
		for _, p := range e.Props {
			if tracked(p.Value) {
				return true
			}
		}
		return false
	case jsx.ExprArray:
		if e.Elements == nil {
			return e.Source != "[]"
		}
		for _, el := range e.Elements {
			if tracked(el) {
				return true
			}
		}
		return false
	}
	return true
}
