package emit

import (
	"fmt"
	"strings"
)

// Quote returns s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// TemplateText escapes s for use inside a JavaScript template literal.
func TemplateText(s string) string {
	if !strings.ContainsAny(s, "`\\$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			b.WriteString(`\$`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Key returns name as an object literal key, quoting it when it is not a
// valid identifier.
func Key(name string) string {
	if IsIdent(name) {
		return name
	}
	return Quote(name)
}

// IsIdent reports whether s is a plain JavaScript identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Accessor wraps an expression in a zero-argument arrow function.
func Accessor(expr string) string {
	return "() => " + expr
}

// Getter renders an accessor property: get name() { return expr; }.
func Getter(name, expr string) string {
	return "get " + Key(name) + "() { return " + expr + "; }"
}

// Object renders an object literal from already rendered entries.
func Object(entries []string) string {
	if len(entries) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}

// Member renders a property access on obj.
func Member(obj, name string) string {
	if IsIdent(name) {
		return obj + "." + name
	}
	return obj + "[" + Quote(name) + "]"
}

// Reindent prefixes every line of s after the first with indent, so a
// multi-line value can be placed on an indented line.
func Reindent(s, indent string) string {
	if indent == "" || !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(s, "\n", "\n"+indent)
}
