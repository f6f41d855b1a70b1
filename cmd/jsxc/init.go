package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
)

func initCmd() *cobra.Command {
	var (
		mode       string
		hydratable bool
		runtime    string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a jsxc.json with default settings",
		Long: `Create a jsxc.json in dir (default: the working directory) and the
build input directory.

Examples:
  jsxc init
  jsxc init web --mode=ssr --hydratable`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, mode, hydratable, runtime, force)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(compiler.ModeDOM), "Generate mode: dom or ssr")
	cmd.Flags().BoolVar(&hydratable, "hydratable", false, "Emit hydratable output")
	cmd.Flags().StringVar(&runtime, "runtime", compiler.DefaultRuntime, "Runtime module name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing jsxc.json")

	return cmd
}

func runInit(dir, mode string, hydratable bool, runtime string, force bool) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if config.Exists(dir) && !force {
		return diag.New("E120").
			WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists").
			WithSuggestion("Use --force to overwrite it")
	}

	cfg := config.New()
	cfg.Compiler.GenerateMode = compiler.Mode(mode)
	cfg.Compiler.Hydratable = hydratable
	cfg.Compiler.RuntimeModuleName = runtime
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return diag.New("E143").Wrap(err)
	}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.InputPath(), 0755); err != nil {
		return diag.New("E143").Wrap(err)
	}

	success("Created %s", cfg.Path())
	info("Put *.jsx.json files in %s and run 'jsxc build'", cfg.InputPath())
	return nil
}
