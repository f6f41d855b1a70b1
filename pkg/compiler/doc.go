// Package compiler is the entry point of jsxc. It compiles one JSX module,
// given as an AST view, into either client code that clones shared
// templates and binds only the parts that change, or server code that
// renders escaped markup strings with optional hydration markers.
//
// # Usage
//
//	mod, err := jsx.DecodeFile("app.jsx.json")
//	if err != nil {
//		return err
//	}
//	res, err := compiler.Compile(mod, compiler.DefaultOptions())
//	if err != nil {
//		diag.Print(os.Stderr, err)
//		return err
//	}
//	for _, d := range res.Diagnostics {
//		fmt.Fprintln(os.Stderr, d.FormatCompact())
//	}
//	fmt.Print(res.Code)
//
// # Diagnostics
//
// Unsupported expressions (J0xx) and structural problems such as duplicate
// attributes (J1xx) are collected in Result.Diagnostics and compilation
// continues. Internal consistency failures (J9xx) abort the call: no code
// is returned, only the *diag.Error.
//
// # Tracing
//
// A Compiler records a jsxc.compile span with classify and generate child
// spans through the global OpenTelemetry tracer provider.
package compiler
