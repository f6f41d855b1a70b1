// Package jsx defines the syntax tree jsxc compiles.
//
// Parsing is not jsxc's job: an external parser produces the tree and hands
// it over in the JSON format read by Decode. A Module is the host source
// split into verbatim code segments and JSX roots; expressions are kept as
// source text, with any JSX nested inside them listed as embeds.
//
// The builders (El, Frag, A, Ex, Embedded, Mod, ...) construct trees
// directly, which is how tests and tools feed the compiler:
//
//	mod := jsx.Mod("app.jsx",
//	    "const view = ",
//	    jsx.El("div", jsx.A("class", "a"), jsx.Slot(jsx.Ex("x()"))),
//	    ";\n",
//	)
package jsx
