package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stageflow/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, the configured source, and API exposure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Configuration", colorize)
				lines = append(lines,
					renderStatusLine("Config file", statusInfo, fallback(ctx.configPath, "(defaults)"), colorize),
					renderStatusLine("Source driver", statusInfo, cfg.Source.Driver, colorize),
					renderStatusLine("Workspace", statusInfo, fallback(cfg.Source.Workspace, "(all)"), colorize),
					"",
				)
				lines = append(lines, renderSectionHeader("Checks", colorize)...)
				for _, result := range results {
					lines = append(lines, renderResult(result, colorize))
				}
				fmt.Fprintln(out, strings.Join(lines, "\n"))
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
