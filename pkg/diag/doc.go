// Package diag provides the coded diagnostics reported by jsxc.
//
// Every diagnostic has a code that maps to a registered template carrying
// its category, severity, message and documentation URL:
//
//   - J001-J099: recoverable; a placeholder is emitted and compilation continues
//   - J101-J199: structural; best-effort output is still produced
//   - J900-J999: fatal; compilation aborts without code
//   - E120-E159: configuration, CLI and build errors
//
// # Usage
//
//	err := diag.New("J101").
//	    WithLocation("app.jsx", 3, 14).
//	    WithSource(src).
//	    WithSuggestion("Remove the first class attribute")
//
//	fmt.Print(err.Format())
//	// WARNING J101: Duplicate attribute
//	//
//	//   app.jsx:3:14
//	//
//	//        2 │ return (
//	//   →    3 │   <div class="a" class="b" />
//	//          │              ^
//	//        4 │ );
package diag
