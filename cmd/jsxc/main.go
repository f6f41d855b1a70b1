package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/jsxc/pkg/diag"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	verbose bool
	noColor bool
)

// colors is false when stderr is not a terminal or --no-color is set.
var colors = true

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsxc",
		Short: "Compile JSX into fine-grained reactive DOM and SSR code",
		Long: `jsxc compiles JSX syntax trees into JavaScript for a fine-grained
reactive runtime.

Client output clones static templates and binds reactive expressions to
the exact nodes they update. Server output renders HTML strings with
hydration markers the client code can claim.

Input is the jsxc JSON form of a parsed module (*.jsx.json).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setup()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		compileCmd(),
		buildCmd(),
		devCmd(),
		inspectCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		diag.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// setup configures colors and the default logger from the global flags.
func setup() {
	if noColor || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stderr.Fd())) {
		colors = false
		diag.DisableColors()
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func paint(code, text string) string {
	if !colors {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[31m", "✗"), fmt.Sprintf(format, args...))
}

// printDiagnostics writes every diagnostic to stderr in compact form.
func printDiagnostics(diags []*diag.Error) {
	for _, d := range diags {
		if verbose {
			diag.Print(os.Stderr, d)
			continue
		}
		warn("%s", d.FormatCompact())
	}
}
