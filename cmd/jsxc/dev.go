package main

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/vango-dev/jsxc/internal/build"
	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/internal/dev"
	"github.com/vango-dev/jsxc/internal/telemetry"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server.

The dev server builds the project, watches build.input for changes and
recompiles changed modules. Connected browsers are notified over a
WebSocket. It also compiles ASTs posted to /compile and serves
Prometheus metrics on /metrics.

Examples:
  jsxc dev
  jsxc dev --port=8080
  jsxc dev --host=0.0.0.0 --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd.Context(), port, host, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from jsxc.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from jsxc.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runDev(ctx context.Context, port int, host string, openBrowser bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	server := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Logger:  slog.Default(),
		Metrics: telemetry.New(),
		OnBuildComplete: func(result *build.Result) {
			if result.Failed > 0 {
				errorMsg("%d of %d modules failed", result.Failed, len(result.Files))
				return
			}
			success("Built %d modules in %s", len(result.Files), result.Duration.Round(1000000))
		},
	})

	if openBrowser {
		go openURL(cfg.DevURL())
	}

	info("Serving on %s", cfg.DevURL())
	return server.Start(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
