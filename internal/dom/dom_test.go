package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/jsxc/internal/analysis"
	"github.com/vango-dev/jsxc/internal/hydration"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/internal/template"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

type result struct {
	out string
	p   *pass.Pass
	reg *template.Registry
}

func generate(t *testing.T, n jsx.Node, mut ...func(*pass.Config)) result {
	t.Helper()
	cfg := pass.Config{
		Mode:             pass.ModeDOM,
		DelegateEvents:   true,
		WrapConditionals: true,
		VerifyTemplates:  true,
		Filename:         "t.jsx",
	}
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
	reg := template.NewRegistry()
	out, err := New(p, reg, hyd).Root(root)
	require.NoError(t, err)
	if hyd != nil {
		require.NoError(t, hyd.Done())
	}
	return result{out: out, p: p, reg: reg}
}

func hydratable(c *pass.Config) { c.Hydratable = true }

func TestStaticAttributeWithTextInsertion(t *testing.T) {
	r := generate(t, jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x"))))

	assert.Equal(t, "(() => {\n"+
		"  const _el$1 = _tmpl$1();\n"+
		"  insert(_el$1, () => x);\n"+
		"  return _el$1;\n"+
		"})()", r.out)
	require.Len(t, r.reg.Descriptors(), 1)
	assert.Equal(t, `<div class="a"></div>`, r.reg.Descriptors()[0].Markup)
	assert.Equal(t, []string{"insert"}, r.p.Helpers())
}

func TestDelegatedClick(t *testing.T) {
	r := generate(t, jsx.El("button", jsx.A("onClick", jsx.Ex("h")), "Go"))

	assert.Contains(t, r.out, "_el$1.$$click = h;")
	assert.NotContains(t, r.out, "addEventListener")
	assert.Equal(t, []string{"click"}, r.p.Delegated())
	assert.Equal(t, `<button>Go</button>`, r.reg.Descriptors()[0].Markup)
}

func TestShowDefersChildren(t *testing.T) {
	r := generate(t, jsx.El("Show", jsx.A("when", jsx.Ex("cond()")), jsx.El("p", "Yes")))

	assert.Equal(t, "createComponent(Show, { get when() { return cond(); }, children: () => _tmpl$1() })", r.out)
	assert.Equal(t, `<p>Yes</p>`, r.reg.Descriptors()[0].Markup)
}

func TestSpreadThenLiteralClass(t *testing.T) {
	r := generate(t, jsx.El("div", jsx.Spread("props"), jsx.A("class", "x")))

	assert.Contains(t, r.out, `spread(_el$1, mergeProps(props, { class: "x" }), false, false);`)
	assert.Equal(t, `<div></div>`, r.reg.Descriptors()[0].Markup)
	assert.Equal(t, []string{"mergeProps", "spread"}, r.p.Helpers())
}

func TestWalkReusesNearestHandle(t *testing.T) {
	r := generate(t, jsx.El("div",
		jsx.El("span", jsx.A("title", jsx.Ex("t")), "static"),
		jsx.Slot(jsx.Ex("a")),
		jsx.El("section", jsx.El("b", jsx.Slot(jsx.Ex("c"))), jsx.El("Widget")),
	))

	assert.Equal(t, "(() => {\n"+
		"  const _el$1 = _tmpl$1(),\n"+
		"    _el$2 = _el$1.firstChild,\n"+
		"    _el$3 = _el$2.nextSibling,\n"+
		"    _el$4 = _el$3.nextSibling,\n"+
		"    _el$5 = _el$4.firstChild,\n"+
		"    _el$6 = _el$5.nextSibling;\n"+
		"  effect(() => setAttribute(_el$2, \"title\", t));\n"+
		"  insert(_el$1, () => a, _el$3);\n"+
		"  insert(_el$5, () => c);\n"+
		"  insert(_el$4, createComponent(Widget, {}), _el$6);\n"+
		"  return _el$1;\n"+
		"})()", r.out)
}

func TestWrapConditionals(t *testing.T) {
	node := jsx.El("a", jsx.A("href", jsx.Ex("url")), jsx.A("title", jsx.Ex("() => label")))

	wrapped := generate(t, node)
	assert.Contains(t, wrapped.out, `effect(() => setAttribute(_el$1, "href", url));`)
	assert.Contains(t, wrapped.out, `effect(() => setAttribute(_el$1, "title", () => label));`)

	bare := generate(t, node, func(c *pass.Config) { c.WrapConditionals = false })
	assert.Contains(t, bare.out, `effect(() => setAttribute(_el$1, "href", url));`)
	assert.Contains(t, bare.out, `  setAttribute(_el$1, "title", () => label);`)
}

func TestBindingKinds(t *testing.T) {
	r := generate(t, jsx.El("input",
		jsx.A("className", jsx.Ex("cls()")),
		jsx.A("classList", jsx.Obj(jsx.P("on", jsx.Ex("on()")))),
		jsx.A("style", jsx.Ex("css()")),
		jsx.A("value", jsx.Ex("v()")),
		jsx.A("prop:indeterminate", jsx.Ex("mixed()")),
	))

	assert.Contains(t, r.out, `effect(() => className(_el$1, cls()));`)
	assert.Contains(t, r.out, `effect(_p$ => classList(_el$1, { "on": on() }, _p$));`)
	assert.Contains(t, r.out, `effect(_p$ => style(_el$1, css(), _p$));`)
	assert.Contains(t, r.out, `effect(() => _el$1.value = v());`)
	assert.Contains(t, r.out, `effect(() => _el$1.indeterminate = mixed());`)
	assert.Equal(t, `<input>`, r.reg.Descriptors()[0].Markup)
}

func TestEventsRefsDirectives(t *testing.T) {
	r := generate(t, jsx.El("input",
		jsx.A("onInput", jsx.Arr(jsx.Ex("handler"), jsx.Num(1))),
		jsx.A("onScroll", jsx.Ex("s")),
		jsx.A("onFocusCapture", jsx.Ex("f")),
		jsx.A("onKeyUpOncePassive", jsx.Ex("k")),
		jsx.A("on:custom", jsx.Ex("c")),
		jsx.A("ref", jsx.Ex("el")),
		jsx.A("use:model", jsx.Ex("sig")),
	))

	assert.Contains(t, r.out, "  _el$1.$$input = handler;\n  _el$1.$$inputData = 1;\n")
	assert.Contains(t, r.out, `_el$1.addEventListener("scroll", s);`)
	assert.Contains(t, r.out, `_el$1.addEventListener("focus", f, true);`)
	assert.Contains(t, r.out, `_el$1.addEventListener("keyup", k, { once: true, passive: true });`)
	assert.Contains(t, r.out, `_el$1.addEventListener("custom", c);`)
	assert.Contains(t, r.out, `typeof el === "function" ? use(el, _el$1) : el = _el$1;`)
	assert.Contains(t, r.out, `use(model, _el$1, () => sig);`)
	assert.Equal(t, []string{"input"}, r.p.Delegated())
}

func TestInlineRefFunction(t *testing.T) {
	r := generate(t, jsx.El("canvas", jsx.A("ref", jsx.Ex("el => setup(el)"))))
	assert.Contains(t, r.out, "(el => setup(el))(_el$1);")

	r = generate(t, jsx.El("canvas", jsx.A("ref", jsx.Ex("refs.get()"))))
	assert.Contains(t, r.out, "const _ref$1 = refs.get();\n  typeof _ref$1 === \"function\" && use(_ref$1, _el$1);")
}

func TestStaticTemplateNeedsNoFunction(t *testing.T) {
	r := generate(t, jsx.El("hr"))
	assert.Equal(t, "_tmpl$1()", r.out)
	assert.Empty(t, r.p.Helpers())
}

func TestComponents(t *testing.T) {
	r := generate(t, jsx.El("Card", jsx.A("title", "t"), jsx.A("count", jsx.Ex("n()")), jsx.Slot(jsx.Ex("x"))))
	assert.Equal(t, `createComponent(Card, { title: "t", get count() { return n(); }, get children() { return x; } })`, r.out)

	r = generate(t, jsx.El("Comp", jsx.Spread("p"), jsx.A("a", "1")))
	assert.Equal(t, `createComponent(Comp, mergeProps(p, { a: "1" }))`, r.out)

	r = generate(t, jsx.El("Comp", jsx.Spread("p"), "hi"))
	assert.Equal(t, `createComponent(Comp, mergeProps(p, { children: "hi" }))`, r.out)

	r = generate(t, jsx.El("Comp", jsx.A("ref", jsx.Ex("box"))))
	assert.Equal(t, `createComponent(Comp, { ref(r$) { const _ref$ = box; typeof _ref$ === "function" ? _ref$(r$) : box = r$; } })`, r.out)
}

func TestListCallback(t *testing.T) {
	r := generate(t, jsx.El("For", jsx.A("each", jsx.Ex("items()")),
		jsx.Slot(jsx.Arrow("item", jsx.El("li", jsx.Slot(jsx.Ex("item")))))))

	assert.Contains(t, r.out, "createComponent(For, { get each() { return items(); }, children: (item) => (() => {")
	assert.Contains(t, r.out, "insert(_el$1, () => item);")
}

func TestFragmentRoot(t *testing.T) {
	r := generate(t, jsx.Frag(jsx.El("p"), jsx.Slot(jsx.Ex("x()")), "tail"))
	assert.Equal(t, `[_tmpl$1(), memo(() => x()), "tail"]`, r.out)
}

func TestEmbeddedJSXCompiles(t *testing.T) {
	r := generate(t, jsx.El("div", jsx.Slot(jsx.Embedded("ok() ? %s : %s", jsx.El("b", "yes"), jsx.El("Fallback")))))
	assert.Contains(t, r.out, "insert(_el$1, () => ok() ? _tmpl$2() : createComponent(Fallback, {}));")
	assert.Len(t, r.reg.Descriptors(), 2)
}

func TestDedupAcrossUses(t *testing.T) {
	r := generate(t, jsx.El("ul",
		jsx.Slot(jsx.Embedded("a ? %s : %s", jsx.El("li", jsx.Slot(jsx.Ex("a"))), jsx.El("li", jsx.Slot(jsx.Ex("b()")))))))
	descs := r.reg.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "<li></li>", descs[1].Markup)
	assert.Equal(t, 2, descs[1].Uses)
}

func TestCustomElementOwner(t *testing.T) {
	r := generate(t, jsx.El("my-el"), func(c *pass.Config) { c.PassContextToCustomElements = true })
	assert.Contains(t, r.out, "_el$1._$owner = getOwner();")
	assert.Contains(t, r.p.Helpers(), "getOwner")
}

func TestUnsupportedPlaceholder(t *testing.T) {
	r := generate(t, jsx.El("div", jsx.Slot(jsx.ExKind(jsx.ExprStatement, "if (a) b"))))
	assert.Contains(t, r.out, "insert(_el$1, /* @jsxc-unsupported t.jsx:")
	assert.Contains(t, r.out, "*/ undefined);")
	require.Len(t, r.p.Diagnostics(), 1)
	assert.Equal(t, "J001", r.p.Diagnostics()[0].Code)
}

func TestHydratableMarkers(t *testing.T) {
	r := generate(t, jsx.El("div", jsx.Slot(jsx.Ex("a")), jsx.El("Comp")), hydratable)

	assert.Contains(t, r.out, "const _el$1 = getNextElement(_tmpl$1),\n"+
		"    [_el$2, _co$1] = getNextMarker(_el$1.firstChild, 1),\n"+
		"    [_el$3, _co$2] = getNextMarker(_el$2.nextSibling, 2);")
	assert.Contains(t, r.out, "insert(_el$1, () => a, _el$2, _co$1);")
	assert.Contains(t, r.out, "insert(_el$1, createComponent(Comp, {}), _el$3, _co$2);")
	assert.Equal(t, "<div><!><!></div>", r.reg.Descriptors()[0].Markup)

	root := generate(t, jsx.El("Comp", jsx.A("a", jsx.Ex("x"))), hydratable)
	assert.Equal(t, "hydrationSlot(1, createComponent(Comp, { get a() { return x; } }))", root.out)
}

func TestSVGChildTemplate(t *testing.T) {
	r := generate(t, jsx.El("circle", jsx.A("r", jsx.Ex("radius()"))))
	assert.True(t, r.reg.Descriptors()[0].SVG)
	assert.Contains(t, r.out, `setAttribute(_el$1, "r", radius())`)
}
