package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/jsxc/pkg/compiler"
)

func inspectCmd() *cobra.Command {
	var (
		flags  compileFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file.jsx.json | ->",
		Short: "Show templates, helpers and diagnostics of a module",
		Long: `Compile one AST file and describe the result instead of printing code.

The report lists every deduplicated template with its markup and use
count, the runtime helpers the module imports, and all diagnostics.

Examples:
  jsxc inspect src/app.jsx.json
  jsxc inspect src/app.jsx.json --mode=ssr --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			res, err := compileFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			writeReport(cmd.OutOrStdout(), args[0], opts, res)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func writeReport(w io.Writer, input string, opts compiler.Options, res *compiler.Result) {
	fmt.Fprintf(w, "%s (%s", input, opts.GenerateMode)
	if opts.Hydratable {
		fmt.Fprint(w, ", hydratable")
	}
	fmt.Fprintln(w, ")")

	fmt.Fprintf(w, "\nTemplates: %d\n", len(res.Templates))
	for _, t := range res.Templates {
		fmt.Fprintf(w, "  %-10s uses=%d  %s\n", t.ID, t.Uses, t.Markup)
	}

	fmt.Fprintf(w, "\nHelpers: %s\n", strings.Join(res.Helpers, ", "))

	fmt.Fprintf(w, "\nDiagnostics: %d\n", len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d.FormatCompact())
	}
}
