package analysis

import (
	"strings"

	"github.com/vango-dev/jsxc/pkg/jsx"
)

// staticStyle returns the inline CSS for a style value that is fully known
// at compile time: a string, or an object literal of string and number
// literals.
func staticStyle(v jsx.AttrValue) (string, bool) {
	switch val := v.(type) {
	case *jsx.StringValue:
		return val.Value, true
	case *jsx.Expr:
		switch val.Kind {
		case jsx.ExprString, jsx.ExprTemplate:
			return literalText(val), true
		case jsx.ExprObject:
			return objectStyle(val)
		}
	}
	return "", false
}

func objectStyle(obj *jsx.Expr) (string, bool) {
	if len(obj.Props) == 0 {
		return "", false
	}
	decls := make([]string, 0, len(obj.Props))
	for _, p := range obj.Props {
		if p.Key == "" {
			return "", false
		}
		key := p.Key
		if !strings.HasPrefix(key, "--") {
			key = kebab(key)
		}
		var value string
		switch p.Value.Kind {
		case jsx.ExprString, jsx.ExprTemplate:
			value = literalText(p.Value)
		case jsx.ExprNumber:
			value = literalText(p.Value)
			if value != "0" && !unitless[key] {
				value += "px"
			}
		default:
			return "", false
		}
		decls = append(decls, key+": "+value)
	}
	return strings.Join(decls, "; "), true
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
