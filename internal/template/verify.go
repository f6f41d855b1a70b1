package template

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/pass"
)

const slotAttr = "data-jsxc-slot"

// documentRoots cannot be parsed as template content.
var documentRoots = map[string]bool{"html": true, "head": true, "body": true}

// Verify parses the probe markup the way a browser parses template content
// and replays every slot path with firstChild/nextSibling steps. Each path
// must land on the node that carries its binding index.
func (in *Instance) Verify(p *pass.Pass) error {
	if documentRoots[in.Root.Name] {
		return nil
	}

	context := &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
	nodes, err := html.ParseFragment(strings.NewReader(in.Probe), context)
	if err != nil {
		return p.Fatal("J901", in.Root.Span(), err.Error())
	}
	if len(nodes) != 1 || nodes[0].Type != html.ElementNode {
		return p.Fatal("J901", in.Root.Span(), fmt.Sprintf("%s parses into %d top-level nodes", in.ID, len(nodes)))
	}

	for i, path := range in.Slots {
		b := in.Root.Bindings[i]
		node, ok := walk(nodes[0], path)
		if !ok {
			return p.Fatal("J901", b.Owner.Span(), fmt.Sprintf("%s: path %s of binding %d (%s) leaves the tree", in.ID, path, i, b.Kind))
		}
		if !carries(node, i, b.Marker) {
			return p.Fatal("J901", b.Owner.Span(), fmt.Sprintf("%s: path %s of binding %d (%s) reaches %s", in.ID, path, i, b.Kind, describe(node)))
		}
	}
	return nil
}

func walk(n *html.Node, path analysis.SlotPath) (*html.Node, bool) {
	for _, step := range path {
		n = n.FirstChild
		for ; step > 0 && n != nil; step-- {
			n = n.NextSibling
		}
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

func carries(n *html.Node, index int, marker bool) bool {
	if marker {
		return n.Type == html.CommentNode && n.Data == "jsxc-slot:"+strconv.Itoa(index)
	}
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != slotAttr {
			continue
		}
		for _, v := range strings.Split(a.Val, ",") {
			if v == strconv.Itoa(index) {
				return true
			}
		}
	}
	return false
}

func describe(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		return strconv.Quote(n.Data)
	case html.CommentNode:
		return "<!--" + n.Data + "-->"
	}
	return "node"
}
