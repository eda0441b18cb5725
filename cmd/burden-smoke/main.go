package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/burden/internal/smoketest"
	"github.com/okian/burden/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &smoketest.Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "burden-smoke",
		Short: "Walk every metric and year against a running burden explorer",
		Long: `Walk every (metric, year) pair of a running burden explorer and check the
linked-view laws over its HTTP API.

Checks:
  ranking    at most ten bars, descending by value
  map        every shape value inside the color domain
  selection  highlight only the selected entity; global trend independent of it
  session    click, year and metric changes keep the selection; a second click clears it

Examples:
  burden-smoke
  burden-smoke --url http://localhost:9080 --workers 16
  burden-smoke --select Peru -o report.yaml --format yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			_, err := smoketest.Run(cmd.Context(), cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", smoketest.DefaultBaseURL, "base URL of the service")
	f.IntVar(&cfg.Workers, "workers", smoketest.DefaultWorkers, "concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", smoketest.DefaultTimeout, "HTTP request timeout")
	f.StringVar(&cfg.Select, "select", smoketest.DefaultSelect, "entity clicked during the session walk")
	f.StringVarP(&cfg.Output, "output", "o", "", "write the run report to this file")
	f.StringVar(&cfg.Format, "format", smoketest.FormatJSON, "report format: json or yaml")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every checked view")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "log format: text or json")

	return cmd
}
