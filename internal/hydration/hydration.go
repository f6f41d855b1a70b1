// Package hydration assigns the keys that let client code find the nodes
// the server rendered. Keys are planned once over the classified module and
// then claimed by whichever generator runs, so the server and client
// sequences cannot drift apart.
package hydration

import (
	"fmt"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/pass"
)

// Coordinator owns the key sequence of one compilation pass.
type Coordinator struct {
	p     *pass.Pass
	order []*analysis.Node
	keys  map[*analysis.Node]int

	cursor    int
	suspended int
}

// New returns a coordinator reporting into p.
func New(p *pass.Pass) *Coordinator {
	return &Coordinator{p: p, keys: make(map[*analysis.Node]int)}
}

// Plan records the canonical key sequence for roots. Every component and
// expression node that is rendered on both sides gets a key, starting at 1.
func (c *Coordinator) Plan(roots []*analysis.Node) {
	for _, r := range roots {
		c.visit(r)
	}
}

func (c *Coordinator) assign(n *analysis.Node) {
	c.order = append(c.order, n)
	c.keys[n] = len(c.order)
}

func (c *Coordinator) visit(n *analysis.Node) {
	switch n.Kind {
	case analysis.KindElement:
		for _, b := range n.Bindings {
			if b.ClientOnly {
				continue
			}
			if b.Kind.Insertion() {
				c.visit(b.Child)
				continue
			}
			if b.Kind == analysis.Spread {
				for _, a := range b.Attrs {
					if !a.ClientOnly() {
						c.embeds(a.Expr)
					}
				}
				continue
			}
			c.embeds(b.Expr)
		}
	case analysis.KindComponent:
		c.assign(n)
		for _, a := range n.Attrs {
			if a.Kind != analysis.Ref {
				c.embeds(a.Expr)
			}
		}
		for _, ch := range n.Children {
			c.visit(ch)
		}
	case analysis.KindExpr:
		c.assign(n)
		c.embeds(n.Expr)
	case analysis.KindDeferred:
		if n.Expr != nil {
			c.embeds(n.Expr)
			return
		}
		for _, ch := range n.Children {
			c.visit(ch)
		}
	case analysis.KindFragment:
		for _, ch := range n.Children {
			c.visit(ch)
		}
	}
}

func (c *Coordinator) embeds(e *analysis.Expr) {
	if e == nil {
		return
	}
	for _, em := range e.Embeds {
		c.visit(em)
	}
}

// Len returns the number of planned keys.
func (c *Coordinator) Len() int {
	return len(c.order)
}

// Key returns the planned key of n.
func (c *Coordinator) Key(n *analysis.Node) (int, bool) {
	k, ok := c.keys[n]
	return k, ok
}

// Claim returns the key of n, which must be the next node in the planned
// sequence. While suspended, claims are ignored and return 0.
func (c *Coordinator) Claim(n *analysis.Node) (int, error) {
	if c.suspended > 0 {
		return 0, nil
	}
	if c.cursor >= len(c.order) {
		return 0, c.p.Fatal("J902", n.Span(), fmt.Sprintf("claimed %s after all %d keys were used", describe(n), len(c.order)))
	}
	want := c.order[c.cursor]
	if want != n {
		return 0, c.p.Fatal("J902", n.Span(),
			fmt.Sprintf("claimed %s but key %d belongs to %s", describe(n), c.cursor+1, describe(want)))
	}
	c.cursor++
	return c.cursor, nil
}

// Suspend stops key claims until the matching Resume. Generators suspend
// while rendering code that only one side emits.
func (c *Coordinator) Suspend() {
	c.suspended++
}

// Resume undoes one Suspend.
func (c *Coordinator) Resume() {
	if c.suspended > 0 {
		c.suspended--
	}
}

// Done reports an error if planned keys were never claimed.
func (c *Coordinator) Done() error {
	if c.cursor == len(c.order) {
		return nil
	}
	n := c.order[c.cursor]
	return c.p.Fatal("J902", n.Span(), fmt.Sprintf("key %d for %s was never claimed", c.cursor+1, describe(n)))
}

func describe(n *analysis.Node) string {
	switch n.Kind {
	case analysis.KindComponent:
		return "<" + n.Name + ">"
	case analysis.KindExpr:
		return "{" + n.Expr.Text() + "}"
	}
	return "node"
}
