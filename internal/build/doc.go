// Package build compiles a directory of JSX syntax trees into JavaScript
// modules.
//
// This package handles:
//   - Discovery of *.jsx.json AST files under the input directory
//   - Compilation on a bounded pool of workers
//   - A content-addressed compile cache stored as msgpack files
//   - Source map output next to each module
//   - Publishing modules to S3
//
// # Usage
//
//	builder := build.New(cfg, build.Options{Logger: logger})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built %d modules in %s\n", result.Compiled, result.Duration)
//
// # Output Structure
//
//	dist/
//	├── app.js             # compiled module
//	├── app.js.map         # source map (build.sourceMaps)
//	└── widgets/
//	    └── list.js
//
// # Cache
//
// Entries are keyed by the sha256 of the input bytes and the compiler
// options, so changing either recompiles the file:
//
//	.jsxc-cache/
//	└── 3f/
//	    └── 3fa1...c2.msgpack
package build
