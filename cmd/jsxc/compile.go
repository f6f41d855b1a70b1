package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// compileFlags are the compiler option overrides shared by compile and
// inspect.
type compileFlags struct {
	mode       string
	hydratable bool
	runtime    string
	sourceMap  bool
	verify     bool
	noDelegate bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Generate mode: dom or ssr (default from jsxc.json)")
	cmd.Flags().BoolVar(&f.hydratable, "hydratable", false, "Emit hydratable output")
	cmd.Flags().StringVar(&f.runtime, "runtime", "", "Runtime module name (default from jsxc.json)")
	cmd.Flags().BoolVar(&f.sourceMap, "sourcemap", false, "Write a source map next to the output")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Verify every slot path against the template markup")
	cmd.Flags().BoolVar(&f.noDelegate, "no-delegate", false, "Attach every event listener directly")
}

// options resolves compiler options: project config when one is found,
// defaults otherwise, then flags that were set explicitly.
func (f *compileFlags) options(cmd *cobra.Command) (compiler.Options, error) {
	opts := compiler.DefaultOptions()
	cfg, err := config.LoadFromWorkingDir()
	var de *diag.Error
	switch {
	case err == nil:
		opts = cfg.Compiler
	case errors.As(err, &de) && de.Code == "E121":
	default:
		return opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		opts.GenerateMode = compiler.Mode(f.mode)
	}
	if flags.Changed("hydratable") {
		opts.Hydratable = f.hydratable
	}
	if flags.Changed("runtime") {
		opts.RuntimeModuleName = f.runtime
	}
	if flags.Changed("sourcemap") {
		opts.EmitSourceMap = f.sourceMap
	}
	if flags.Changed("verify") {
		opts.VerifyTemplates = f.verify
	}
	if f.noDelegate {
		opts.DelegateEvents = false
	}
	return opts, opts.Validate()
}

func compileCmd() *cobra.Command {
	var (
		flags  compileFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "compile <file.jsx.json | ->",
		Short: "Compile one module",
		Long: `Compile one AST file and print the generated module.

Options come from jsxc.json when the working directory is inside a
project, and from the documented defaults otherwise. Flags override both.
Diagnostics are printed to stderr; a fatal one exits with status 1 and
prints no code.

Examples:
  jsxc compile src/app.jsx.json
  jsxc compile src/app.jsx.json --mode=ssr --hydratable
  jsxc compile - < app.jsx.json > app.js
  jsxc compile src/app.jsx.json -o dist/app.js --sourcemap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			return runCompile(cmd.Context(), args[0], output, opts, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the module to this file instead of stdout")

	return cmd
}

func runCompile(ctx context.Context, input, output string, opts compiler.Options, stdout io.Writer) error {
	res, err := compileFile(ctx, input, opts)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)

	if output == "" {
		_, err := io.WriteString(stdout, res.Code)
		return err
	}

	code := res.Code
	if res.SourceMap != "" {
		code += "//# sourceMappingURL=" + filepath.Base(output) + ".map\n"
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return diag.New("E143").Wrap(err)
	}
	if err := os.WriteFile(output, []byte(code), 0644); err != nil {
		return diag.New("E143").WithDetail(output).Wrap(err)
	}
	if res.SourceMap != "" {
		if err := os.WriteFile(output+".map", []byte(res.SourceMap), 0644); err != nil {
			return diag.New("E143").WithDetail(output + ".map").Wrap(err)
		}
	}
	success("Compiled %s → %s", input, output)
	return nil
}

// compileFile reads and compiles input ("-" for stdin).
func compileFile(ctx context.Context, input string, opts compiler.Options) (*compiler.Result, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, diag.New("E140").WithDetail(input).Wrap(err)
	}

	mod, err := jsx.Unmarshal(data)
	if err != nil {
		return nil, diag.FromError(err, "E142")
	}
	if opts.Filename == "" {
		opts.Filename = mod.Filename
	}
	if opts.Filename == "" && input != "-" {
		opts.Filename = strings.TrimSuffix(filepath.Base(input), ".json")
	}

	return compiler.New().Compile(ctx, mod, opts)
}
