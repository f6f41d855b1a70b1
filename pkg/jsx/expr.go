package jsx

import (
	"sort"
	"strings"
)

// ExprKind is the syntactic class of an expression as reported by the parser.
type ExprKind string

const (
	ExprString      ExprKind = "string"
	ExprNumber      ExprKind = "number"
	ExprBoolean     ExprKind = "boolean"
	ExprNull        ExprKind = "null"
	ExprTemplate    ExprKind = "template"
	ExprIdentifier  ExprKind = "identifier"
	ExprMember      ExprKind = "member"
	ExprCall        ExprKind = "call"
	ExprArrow       ExprKind = "arrow"
	ExprFunction    ExprKind = "function"
	ExprObject      ExprKind = "object"
	ExprArray       ExprKind = "array"
	ExprConditional ExprKind = "conditional"
	ExprLogical     ExprKind = "logical"
	ExprBinary      ExprKind = "binary"
	ExprUnary       ExprKind = "unary"
	ExprJSX         ExprKind = "jsx"
	ExprEmpty       ExprKind = "empty"
	ExprStatement   ExprKind = "statement"
)

// Expr is a host-language expression kept as source text. JSX nested inside
// it is listed in Embeds so the compiler can replace it.
type Expr struct {
	Kind   ExprKind
	Source string
	// Value is the decoded value of literal kinds ("true", "null", the
	// string contents, the number text).
	Value  string
	Embeds []Embed
	// Props lists the properties of an object literal when the parser
	// could resolve them all to plain keys.
	Props []Prop
	// Elements lists the items of an array literal.
	Elements []*Expr
	Loc      Span
}

// Embed is a JSX node occupying Source[Start:End] of its expression.
type Embed struct {
	Start int
	End   int
	Node  Node
}

// Prop is one key: value pair of an object literal.
type Prop struct {
	Key   string
	Value *Expr
}

// Span returns the expression's source range.
func (e *Expr) Span() Span { return e.Loc }

// IsLiteral reports whether the expression is a string, number, boolean,
// null or substitution-free template literal.
func (e *Expr) IsLiteral() bool {
	switch e.Kind {
	case ExprString, ExprNumber, ExprBoolean, ExprNull, ExprTemplate:
		return true
	}
	return false
}

// IsFunction reports whether the expression is a function value.
func (e *Expr) IsFunction() bool {
	return e.Kind == ExprArrow || e.Kind == ExprFunction
}

// Renders reports whether a literal child produces output. true, false,
// null and empty containers render nothing.
func (e *Expr) Renders() bool {
	switch e.Kind {
	case ExprBoolean, ExprNull, ExprEmpty:
		return false
	}
	return true
}

// Splice returns Source with every embedded JSX node replaced by render(node).
func (e *Expr) Splice(render func(Node) string) string {
	if len(e.Embeds) == 0 {
		return e.Source
	}
	embeds := append([]Embed(nil), e.Embeds...)
	sort.Slice(embeds, func(i, j int) bool { return embeds[i].Start < embeds[j].Start })

	var b strings.Builder
	last := 0
	for _, em := range embeds {
		b.WriteString(e.Source[last:em.Start])
		b.WriteString(render(em.Node))
		last = em.End
	}
	b.WriteString(e.Source[last:])
	return b.String()
}

// EmbeddedNodes returns the embedded JSX nodes in source order.
func (e *Expr) EmbeddedNodes() []Node {
	if len(e.Embeds) == 0 {
		return nil
	}
	embeds := append([]Embed(nil), e.Embeds...)
	sort.Slice(embeds, func(i, j int) bool { return embeds[i].Start < embeds[j].Start })
	out := make([]Node, len(embeds))
	for i, em := range embeds {
		out[i] = em.Node
	}
	return out
}
