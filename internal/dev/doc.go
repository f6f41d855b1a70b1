// Package dev provides the development server.
//
// The server keeps the build output directory in sync with the input
// directory and reports compile results to connected browsers:
//
//   - Watcher: polls the input directory and dev.watch entries
//   - Builder: recompiles changed *.jsx.json files through the build cache
//   - Hub: pushes results to browsers via WebSocket
//   - HTTP API: module listing, compiled modules, ad hoc compilation, metrics
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config: cfg,
//	    Logger: logger,
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//	GET  /                 index of modules and their diagnostics
//	GET  /modules          module states as JSON
//	GET  /modules/{path}   a compiled module or its source map
//	POST /compile          AST JSON in, compiler.Result JSON out
//	GET  /ws               change notifications
//	GET  /metrics          Prometheus metrics
//
// POST /compile accepts the mode, hydratable, filename and sourceMap query
// parameters, which override the project's compiler options.
//
// # Notification Protocol
//
// Messages are JSON-encoded:
//
//	{"type": "compiled", "file": "a.jsx.json", "diagnostics": [...]}
//	{"type": "removed", "file": "a.jsx.json"}
//	{"type": "error", "file": "a.jsx.json", "error": "..."}
//	{"type": "rebuilt"}
package dev
