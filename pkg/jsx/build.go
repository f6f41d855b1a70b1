package jsx

import (
	"fmt"
	"strconv"
	"strings"
)

// El builds an element. Items may be attribute items, nodes, or strings
// (text children).
//
//	jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x")))
func El(name string, items ...any) *Element {
	el := &Element{Name: name}
	for _, it := range items {
		switch v := it.(type) {
		case AttrItem:
			el.Attrs = append(el.Attrs, v)
		case Node:
			el.Children = append(el.Children, v)
		case string:
			el.Children = append(el.Children, Txt(v))
		case nil:
		default:
			panic(fmt.Sprintf("jsx.El: unsupported item %T", it))
		}
	}
	return el
}

// Frag builds a fragment from nodes and strings.
func Frag(items ...any) *Fragment {
	f := &Fragment{}
	for _, it := range items {
		switch v := it.(type) {
		case Node:
			f.Children = append(f.Children, v)
		case string:
			f.Children = append(f.Children, Txt(v))
		default:
			panic(fmt.Sprintf("jsx.Frag: unsupported item %T", it))
		}
	}
	return f
}

// Txt builds a text node.
func Txt(s string) *Text {
	return &Text{Value: s}
}

// Slot builds an expression container child.
func Slot(e *Expr) *ExprSlot {
	return &ExprSlot{Expr: e}
}

// A builds an attribute. The name may carry a namespace ("on:click").
// value is nil for a boolean attribute, a string for a quoted value, an
// *Expr, or a Node used as a JSX attribute value.
func A(name string, value any) *Attribute {
	attr := &Attribute{Name: name}
	if ns, local, ok := strings.Cut(name, ":"); ok {
		attr.Namespace, attr.Name = ns, local
	}
	switch v := value.(type) {
	case nil:
	case string:
		attr.Value = &StringValue{Value: v}
	case *Expr:
		attr.Value = v
	case Node:
		attr.Value = JSX(v)
	default:
		panic(fmt.Sprintf("jsx.A: unsupported value %T", value))
	}
	return attr
}

// Spread builds {...src}.
func Spread(src string) *SpreadAttribute {
	return &SpreadAttribute{Argument: Ex(src)}
}

// Ex builds an expression from source, guessing its kind from its shape.
// Use ExKind when the guess would be wrong.
func Ex(src string) *Expr {
	return &Expr{Kind: guessKind(src), Source: src}
}

// ExKind builds an expression of an explicit kind.
func ExKind(kind ExprKind, src string) *Expr {
	return &Expr{Kind: kind, Source: src}
}

// Str builds a string literal expression.
func Str(s string) *Expr {
	return &Expr{Kind: ExprString, Source: strconv.Quote(s), Value: s}
}

// Num builds a number literal expression.
func Num(n float64) *Expr {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	return &Expr{Kind: ExprNumber, Source: s, Value: s}
}

// Bool builds a boolean literal expression.
func Bool(b bool) *Expr {
	s := strconv.FormatBool(b)
	return &Expr{Kind: ExprBoolean, Source: s, Value: s}
}

// Null builds the null literal.
func Null() *Expr {
	return &Expr{Kind: ExprNull, Source: "null", Value: "null"}
}

// Lit builds a literal expression from a Go string, number, bool or nil.
func Lit(v any) *Expr {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return Str(x)
	case bool:
		return Bool(x)
	case int:
		return Num(float64(x))
	case int64:
		return Num(float64(x))
	case float64:
		return Num(x)
	}
	panic(fmt.Sprintf("jsx.Lit: unsupported value %T", v))
}

// Obj builds an object literal from key/value pairs.
func Obj(props ...Prop) *Expr {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = strconv.Quote(p.Key) + ": " + p.Value.Source
	}
	return &Expr{Kind: ExprObject, Source: "{ " + strings.Join(parts, ", ") + " }", Props: props}
}

// P builds an object literal property.
func P(key string, value *Expr) Prop {
	return Prop{Key: key, Value: value}
}

// Arr builds an array literal.
func Arr(items ...*Expr) *Expr {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Source
	}
	return &Expr{Kind: ExprArray, Source: "[" + strings.Join(parts, ", ") + "]", Elements: items}
}

const embedText = "<JSX />"

// Embedded builds an expression whose source contains JSX. Each %s in
// format is replaced by an embed of the corresponding node.
//
//	jsx.Embedded("cond() && %s", jsx.El("p"))
func Embedded(format string, nodes ...Node) *Expr {
	parts := strings.Split(format, "%s")
	if len(parts)-1 != len(nodes) {
		panic("jsx.Embedded: placeholder count does not match nodes")
	}
	e := &Expr{}
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i < len(nodes) {
			start := b.Len()
			b.WriteString(embedText)
			e.Embeds = append(e.Embeds, Embed{Start: start, End: b.Len(), Node: nodes[i]})
		}
	}
	e.Source = b.String()
	e.Kind = guessKind(e.Source)
	return e
}

// JSX wraps a node as an expression, as in fallback={<p />}.
func JSX(n Node) *Expr {
	return &Expr{
		Kind:   ExprJSX,
		Source: embedText,
		Embeds: []Embed{{Start: 0, End: len(embedText), Node: n}},
	}
}

// Arrow builds (params) => body where body is JSX.
func Arrow(params string, body Node) *Expr {
	e := Embedded("("+params+") => %s", body)
	e.Kind = ExprArrow
	return e
}

// Mod builds a module. Strings become code segments and nodes become roots.
// Spans of code segments and roots without positions are filled in from
// the concatenated source.
func Mod(filename string, items ...any) *Module {
	m := &Module{Filename: filename}
	var src strings.Builder
	pos := Pos{Line: 1}
	advance := func(s string) Span {
		start := pos
		for _, r := range s {
			if r == '\n' {
				pos.Line++
				pos.Column = 0
			} else {
				pos.Column += len(string(r))
			}
		}
		pos.Offset += len(s)
		src.WriteString(s)
		return Span{Start: start, End: pos}
	}
	for _, it := range items {
		switch v := it.(type) {
		case string:
			m.Body = append(m.Body, &Code{Text: v, Loc: advance(v)})
		case Node:
			loc := advance(embedText)
			setSpan(v, loc)
			m.Body = append(m.Body, &Root{Node: v})
		default:
			panic(fmt.Sprintf("jsx.Mod: unsupported item %T", it))
		}
	}
	m.Source = src.String()
	return m
}

func setSpan(n Node, loc Span) {
	switch v := n.(type) {
	case *Element:
		if v.Loc.IsZero() {
			v.Loc = loc
		}
	case *Fragment:
		if v.Loc.IsZero() {
			v.Loc = loc
		}
	case *Text:
		if v.Loc.IsZero() {
			v.Loc = loc
		}
	case *ExprSlot:
		if v.Loc.IsZero() {
			v.Loc = loc
		}
	}
}

func guessKind(src string) ExprKind {
	s := strings.TrimSpace(src)
	switch {
	case s == "":
		return ExprEmpty
	case s == "true" || s == "false":
		return ExprBoolean
	case s == "null":
		return ExprNull
	case strings.HasPrefix(s, "function"):
		return ExprFunction
	case strings.Contains(s, "=>") && (strings.HasPrefix(s, "(") || isIdent(strings.TrimSpace(s[:strings.Index(s, "=>")]))):
		return ExprArrow
	case strings.HasPrefix(s, "{"):
		return ExprObject
	case strings.HasPrefix(s, "["):
		return ExprArray
	case strings.HasPrefix(s, "`") && !strings.Contains(s, "${"):
		return ExprTemplate
	case strings.HasPrefix(s, "\"") || strings.HasPrefix(s, "'"):
		return ExprString
	case isNumber(s):
		return ExprNumber
	case strings.Contains(s, "?") && strings.Contains(s, ":") && !strings.Contains(s, "?."):
		return ExprConditional
	case strings.Contains(s, "&&") || strings.Contains(s, "||") || strings.Contains(s, "??"):
		return ExprLogical
	case isIdent(s):
		return ExprIdentifier
	case strings.HasPrefix(s, "!") || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "typeof "):
		return ExprUnary
	case strings.HasSuffix(s, ")"):
		return ExprCall
	case isMember(s):
		return ExprMember
	}
	return ExprBinary
}

func isIdent(s string) bool {
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

func isMember(s string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(s, "?.", "."), ".") {
		if !isIdent(part) {
			return false
		}
	}
	return strings.Contains(s, ".")
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
