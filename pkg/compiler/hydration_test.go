package compiler

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/jsxc/pkg/jsx"
)

var (
	declLine   = regexp.MustCompile(`^(?:const )?(.+?) = (.+?)[,;]$`)
	nextMarker = regexp.MustCompile(`^getNextMarker\((.+), (\d+)\)$`)
	titleSet   = regexp.MustCompile(`setAttribute\((_el\$\d+), "title"`)
	ssrCall    = regexp.MustCompile("ssr\\(`(.*)`\\)")
)

// serverMarkup renders the ssr literal of code with every interpolation
// replaced by a sample value.
func serverMarkup(t *testing.T, code string) string {
	t.Helper()
	m := ssrCall.FindStringSubmatch(code)
	require.NotNil(t, m, "no ssr literal in %s", code)
	lit := m[1]

	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if !strings.HasPrefix(lit[i:], "${") {
			b.WriteByte(lit[i])
			continue
		}
		depth := 0
		for ; i < len(lit); i++ {
			if lit[i] == '{' {
				depth++
			} else if lit[i] == '}' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		b.WriteString(" x")
	}
	return b.String()
}

// hydrate runs the element declarations of code against markup and
// returns the node each handle resolved to.
func hydrate(t *testing.T, code, markup string) map[string]*html.Node {
	t.Helper()
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	named := map[string]*html.Node{}
	follow := func(chain string) *html.Node {
		parts := strings.Split(chain, ".")
		n := named[parts[0]]
		require.NotNil(t, n, "%s walks from an undeclared node", chain)
		for _, step := range parts[1:] {
			require.NotNil(t, n, "%s leaves the server markup", chain)
			if step == "firstChild" {
				n = n.FirstChild
			} else {
				require.Equal(t, "nextSibling", step)
				n = n.NextSibling
			}
		}
		require.NotNil(t, n, "%s leaves the server markup", chain)
		return n
	}

	in := false
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "const _el$") {
			in = true
		}
		if !in {
			continue
		}
		m := declLine.FindStringSubmatch(line)
		require.NotNil(t, m, "unexpected declaration %q", line)
		name := strings.Split(strings.Trim(m[1], "[]"), ", ")[0]

		switch mk := nextMarker.FindStringSubmatch(m[2]); {
		case strings.HasPrefix(m[2], "getNextElement("):
			named[name] = nodes[0]
		case mk != nil:
			start := follow(mk[1])
			require.Equal(t, html.CommentNode, start.Type, "%s starts on %q", line, start.Data)
			require.Equal(t, "#"+mk[2], start.Data, line)
			end, depth := start.NextSibling, 0
			for ; end != nil; end = end.NextSibling {
				if end.Type != html.CommentNode {
					continue
				}
				if strings.HasPrefix(end.Data, "#") {
					depth++
				} else if end.Data == "/" {
					if depth == 0 {
						break
					}
					depth--
				}
			}
			require.NotNil(t, end, "%s has no end marker", line)
			named[name] = end
		default:
			named[name] = follow(m[2])
		}
		if strings.HasSuffix(line, ";") {
			break
		}
	}
	return named
}

func TestHydratedHandlesMatchServerMarkup(t *testing.T) {
	target := func(kids ...any) *jsx.Element {
		return jsx.El("span", append([]any{jsx.A("id", "target"), jsx.A("title", jsx.Ex("t"))}, kids...)...)
	}
	cases := map[string]*jsx.Element{
		"after slot":          jsx.El("div", jsx.Slot(jsx.Ex("a")), target()),
		"after empty literal": jsx.El("div", jsx.Slot(jsx.Str("")), target()),
		"after two slots":     jsx.El("div", "x", jsx.Slot(jsx.Ex("a")), jsx.El("Comp"), "y", target()),
		"nested after slot":   jsx.El("div", jsx.Slot(jsx.Ex("a")), jsx.El("p", jsx.Slot(jsx.Ex("b")), target(jsx.Slot(jsx.Ex("c"))))),
	}
	for name, el := range cases {
		t.Run(name, func(t *testing.T) {
			mod := jsx.Mod("h.jsx", "v = ", el, ";\n")
			dom := compile(t, mod, hydratable)
			ssr := compile(t, mod, hydratable, ssrMode)

			named := hydrate(t, dom.Code, serverMarkup(t, ssr.Code))
			m := titleSet.FindStringSubmatch(dom.Code)
			require.NotNil(t, m, dom.Code)
			node := named[m[1]]
			require.NotNil(t, node)
			require.Equal(t, html.ElementNode, node.Type, "title lands on %q", node.Data)
			assert.Equal(t, []html.Attribute{{Key: "id", Val: "target"}, {Key: "x"}}, node.Attr)
		})
	}
}

func TestEmptyLiteralChildKeepsPaths(t *testing.T) {
	mod := jsx.Mod("e.jsx", "v = ", jsx.El("div", jsx.Slot(jsx.Str("")), jsx.El("span", jsx.A("title", jsx.Ex("t")))), ";\n")
	res := compile(t, mod)
	assert.Equal(t, []Template{{ID: "_tmpl$1", Markup: "<div><span></span></div>", Uses: 1}}, res.Templates)
	assert.Contains(t, res.Code, "_el$2 = _el$1.firstChild;")
	assert.Contains(t, res.Code, "effect(() => setAttribute(_el$2, \"title\", t));")
}
