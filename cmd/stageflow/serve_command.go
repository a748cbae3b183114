package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stageflow/internal/api"
	"stageflow/internal/daemon"
	"stageflow/internal/logging"
	"stageflow/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind := strings.TrimSpace(bindFlag); bind != "" {
				cfg.API.Bind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if check := preflight.CheckSourceFromConfig(signalCtx, cfg); !check.Passed {
				return fmt.Errorf("source check failed: %s: %s", check.Name, check.Detail)
			}
			if check := preflight.CheckAPIExposure(cfg); !check.Passed {
				return fmt.Errorf("api check failed: %s", check.Detail)
			}

			return ctx.withReports(signalCtx, func(reports *api.ReportService) error {
				d, err := daemon.New(cfg, reports, logger)
				if err != nil {
					return fmt.Errorf("create server: %w", err)
				}
				defer d.Close()

				if err := d.Start(signalCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Serving reports on http://%s (Ctrl+C to stop)\n", d.Address())

				<-signalCtx.Done()
				logger.Info("stageflow server shutting down", logging.String("address", d.Address()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Override api.bind (host:port)")
	return cmd
}
