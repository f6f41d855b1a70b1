package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/jsxc/internal/build"
	"github.com/vango-dev/jsxc/internal/config"
)

type buildFlags struct {
	output     string
	workers    int
	sourceMaps bool
	force      bool
	clean      bool
	publish    bool
}

func buildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every module of the project",
		Long: `Compile every *.jsx.json file under build.input into build.output.

This command:
  • Compiles modules concurrently with the options in jsxc.json
  • Reuses cached results for unchanged inputs
  • Writes source maps when enabled
  • Uploads the output to S3 when publish.bucket is set

Examples:
  jsxc build
  jsxc build --output=public/js --sourcemaps
  jsxc build --force --no-publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noPublish, _ := cmd.Flags().GetBool("no-publish")
			flags.publish = !noPublish
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (default from jsxc.json)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "Concurrent compilations (default from jsxc.json)")
	cmd.Flags().BoolVar(&flags.sourceMaps, "sourcemaps", false, "Generate source maps")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Ignore cached results")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "Clean output directory before build")
	cmd.Flags().Bool("no-publish", false, "Skip publishing even when publish.bucket is set")

	return cmd
}

func runBuild(ctx context.Context, flags buildFlags) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if flags.output != "" {
		cfg.Build.Output = flags.output
	}

	options := build.Options{
		Workers:    flags.workers,
		SourceMaps: flags.sourceMaps,
		Force:      flags.force,
		OnProgress: func(step string) {
			info("%s", step)
		},
	}
	if flags.publish && cfg.Publishing() {
		options.Publisher = build.NewS3Publisher(build.NewS3Client(cfg.Publish), cfg.Publish.Bucket, cfg.Publish.Prefix)
	}
	builder := build.New(cfg, options)

	if flags.clean {
		info("Cleaning output directory...")
		if err := builder.Clean(); err != nil {
			return err
		}
	}

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		if f.Err != nil {
			errorMsg("%s: %v", f.Input, f.Err)
			continue
		}
		printDiagnostics(f.Diagnostics)
	}

	fmt.Fprintln(os.Stderr)
	if result.Failed > 0 {
		errorMsg("Build failed: %d of %d modules", result.Failed, len(result.Files))
		return result.Err()
	}
	success("Built %d modules in %s (%d cached)", len(result.Files), result.Duration.Round(1000000), result.Cached)
	if result.Diagnostics > 0 {
		warn("%d diagnostics", result.Diagnostics)
	}
	if result.Published > 0 {
		success("Published %d objects to s3://%s/%s", result.Published, cfg.Publish.Bucket, cfg.Publish.Prefix)
	}
	info("Output: %s", cfg.OutputPath())
	return nil
}
