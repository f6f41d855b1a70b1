package ssr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/hydration"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

func generate(t *testing.T, n jsx.Node, mut ...func(*pass.Config)) (string, *pass.Pass) {
	t.Helper()
	cfg := pass.Config{Mode: pass.ModeSSR, DelegateEvents: true, WrapConditionals: true, Filename: "t.jsx"}
	for _, m := range mut {
		m(&cfg)
	}
	p := pass.New(cfg)
	root := analysis.New(p).Classify(n)

	var hyd *hydration.Coordinator
	if p.Hydratable {
		hyd = hydration.New(p)
		hyd.Plan([]*analysis.Node{root})
	}
	out, err := New(p, hyd).Root(root)
	require.NoError(t, err)
	if hyd != nil {
		require.NoError(t, hyd.Done())
	}
	return out, p
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		node jsx.Node
		want string
	}{
		{
			name: "static attribute with dynamic text",
			node: jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x"))),
			want: "ssr(`<div class=\"a\">${escape(x)}</div>`)",
		},
		{
			name: "event handlers are omitted",
			node: jsx.El("button", jsx.A("onClick", jsx.Ex("h")), "Go"),
			want: "ssr(`<button>Go</button>`)",
		},
		{
			name: "show passes a deferred child",
			node: jsx.El("Show", jsx.A("when", jsx.Ex("cond()")), jsx.El("p", "Yes")),
			want: "createComponent(Show, { get when() { return cond(); }, children: () => ssr(`<p>Yes</p>`) })",
		},
		{
			name: "spread then literal class",
			node: jsx.El("div", jsx.Spread("props"), jsx.A("class", "x")),
			want: "ssr(`${ssrElement(\"div\", mergeProps(props, { class: \"x\" }), undefined, false)}`)",
		},
		{
			name: "spread element children stay markup",
			node: jsx.El("div", jsx.Spread("p"), jsx.El("span", jsx.Slot(jsx.Ex("x")))),
			want: "ssr(`${ssrElement(\"div\", p, () => `<span>${escape(x)}</span>`, false)}`)",
		},
		{
			name: "static text and attributes escaped at compile time",
			node: jsx.El("p", jsx.A("title", jsx.Ex("t()")), jsx.A("data-x", "a&b"), "Tom & ", jsx.Slot(jsx.Ex("name"))),
			want: "ssr(`<p${ssrAttribute(\"title\", escape(t(), true), false)} data-x=\"a&amp;b\">Tom &amp; ${escape(name)}</p>`)",
		},
		{
			name: "client only bindings are omitted",
			node: jsx.El("input",
				jsx.A("use:model", jsx.Ex("sig")),
				jsx.A("onInput", jsx.Ex("h")),
				jsx.A("ref", jsx.Ex("r")),
				jsx.A("prop:x", jsx.Ex("y")),
				jsx.A("value", jsx.Ex("v()")),
			),
			want: "ssr(`<input${ssrAttribute(\"value\", escape(v(), true), false)}>`)",
		},
		{
			name: "boolean attribute",
			node: jsx.El("button", jsx.A("disabled", jsx.Ex("busy()"))),
			want: "ssr(`<button${ssrAttribute(\"disabled\", escape(busy(), true), true)}></button>`)",
		},
		{
			name: "classList and style objects",
			node: jsx.El("div", jsx.A("classList", jsx.Obj(jsx.P("on", jsx.Ex("on()")))), jsx.A("style", jsx.Ex("css()"))),
			want: "ssr(`<div${ssrAttribute(\"class\", escape(ssrClassList({ \"on\": on() }), true), false)}" +
				"${ssrAttribute(\"style\", escape(ssrStyle(css()), true), false)}></div>`)",
		},
		{
			name: "static class merges into classList",
			node: jsx.El("div", jsx.A("class", "a"), jsx.A("classList", jsx.Obj(jsx.P("b", jsx.Ex("c()"))))),
			want: "ssr(`<div${ssrAttribute(\"class\", escape(\"a \" + ssrClassList({ \"b\": c() }), true), false)}></div>`)",
		},
		{
			name: "dynamic class merges into classList",
			node: jsx.El("div", jsx.A("classList", jsx.Obj(jsx.P("b", jsx.Ex("c()")))), jsx.A("className", jsx.Ex("cls()"))),
			want: "ssr(`<div${ssrAttribute(\"class\", escape((cls()) + \" \" + ssrClassList({ \"b\": c() }), true), false)}></div>`)",
		},
		{
			name: "innerHTML is raw",
			node: jsx.El("div", jsx.A("innerHTML", jsx.Ex("html"))),
			want: "ssr(`<div>${html}</div>`)",
		},
		{
			name: "textContent is escaped",
			node: jsx.El("div", jsx.A("textContent", jsx.Ex("text"))),
			want: "ssr(`<div>${escape(text)}</div>`)",
		},
		{
			name: "root fragment flattens",
			node: jsx.Frag(jsx.El("p"), jsx.Slot(jsx.Ex("x()")), "text"),
			want: "ssr(`<p></p>${escape(x())}text`)",
		},
		{
			name: "embedded jsx is a safe value",
			node: jsx.El("div", jsx.Slot(jsx.Embedded("ok() ? %s : null", jsx.El("b", "y")))),
			want: "ssr(`<div>${escape(ok() ? ssr(`<b>y</b>`) : null)}</div>`)",
		},
		{
			name: "template literal characters",
			node: jsx.El("p", "a`b${c}"),
			want: "ssr(`<p>a\\`b\\${c}</p>`)",
		},
		{
			name: "component children become an array",
			node: jsx.El("Card", jsx.Slot(jsx.Ex("a")), jsx.El("b")),
			want: "createComponent(Card, { get children() { return [a, ssr(`<b></b>`)]; } })",
		},
		{
			name: "component refs are dropped",
			node: jsx.El("Card", jsx.A("ref", jsx.Ex("box")), jsx.A("size", jsx.Num(2))),
			want: "createComponent(Card, { size: 2 })",
		},
		{
			name: "void element",
			node: jsx.El("img", jsx.A("src", jsx.Ex("url")), jsx.A("alt", "")),
			want: "ssr(`<img${ssrAttribute(\"src\", escape(url, true), false)} alt=\"\">`)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := generate(t, tt.node)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDirectivesNeverReachServerOutput(t *testing.T) {
	out, p := generate(t, jsx.El("div", jsx.Spread("rest"), jsx.A("use:tooltip", jsx.Ex("msg"))))
	assert.NotContains(t, out, "tooltip")
	assert.NotContains(t, p.Helpers(), "use")
}

func TestHydrationMarkers(t *testing.T) {
	out, _ := generate(t, jsx.El("div", jsx.Slot(jsx.Ex("a")), jsx.El("Comp")), func(c *pass.Config) { c.Hydratable = true })
	assert.Equal(t, "ssr(`<div><!--#1-->${escape(a)}<!--/--><!--#2-->${createComponent(Comp, {})}<!--/--></div>`)", out)

	root, _ := generate(t, jsx.El("Comp"), func(c *pass.Config) { c.Hydratable = true })
	assert.Equal(t, "ssr(`<!--#1-->${createComponent(Comp, {})}<!--/-->`)", root)
}

func TestUnsupportedPlaceholder(t *testing.T) {
	out, p := generate(t, jsx.El("div", jsx.Slot(jsx.ExKind(jsx.ExprStatement, "while (x) {}"))))
	assert.Contains(t, out, "${escape(/* @jsxc-unsupported t.jsx:")
	require.Len(t, p.Diagnostics(), 1)
}

func TestHelpersAreMinimal(t *testing.T) {
	_, p := generate(t, jsx.El("div", jsx.Slot(jsx.Ex("x"))))
	assert.Equal(t, []string{"escape", "ssr"}, p.Helpers())
}
