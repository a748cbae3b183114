package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stageflow/internal/api"
	"stageflow/internal/notifications"
	"stageflow/internal/reconcile"
)

var reportDescriptions = map[reconcile.ReportKind]string{
	reconcile.ReportOccupancy:   "Show how many jobs sit at each stage",
	reconcile.ReportStuck:       "List jobs whose output stalled between stages",
	reconcile.ReportWIP:         "Show quantity produced but not yet consumed per stage pair",
	reconcile.ReportBottlenecks: "Rank stages by the work waiting to enter them",
}

var reportAliases = map[reconcile.ReportKind][]string{
	reconcile.ReportWIP:         {"transitions"},
	reconcile.ReportBottlenecks: {"bottleneck"},
}

func newReportCommand(ctx *commandContext, kind reconcile.ReportKind) *cobra.Command {
	var workspace string
	var asJSON bool
	var notify bool

	cmd := &cobra.Command{
		Use:     string(kind),
		Aliases: reportAliases[kind],
		Short:   reportDescriptions[kind],
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReports(cmd.Context(), func(reports *api.ReportService) error {
				resp, err := reports.Report(cmd.Context(), kind, workspace)
				if err != nil {
					return err
				}
				if asJSON {
					err = writeJSON(cmd, resp)
				} else {
					fmt.Fprint(cmd.OutOrStdout(), renderReport(resp))
				}
				if err != nil || !notify {
					return err
				}
				return publishReport(cmd.Context(), ctx, resp)
			})
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace to report on (defaults to source.workspace)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	if kind == reconcile.ReportStuck || kind == reconcile.ReportBottlenecks {
		cmd.Flags().BoolVar(&notify, "notify", false, "Publish a summary to the configured ntfy topic")
	}
	return cmd
}

// publishReport sends a stuck or bottleneck summary. Empty reports send nothing.
func publishReport(runCtx context.Context, ctx *commandContext, resp api.ReportResponse) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	svc := notifications.NewService(cfg)
	if !notifications.Enabled(svc) {
		return errors.New("--notify requires notifications.ntfy_topic")
	}
	switch reconcile.ReportKind(resp.Kind) {
	case reconcile.ReportStuck:
		err = svc.NotifyStuckJobs(runCtx, resp.WorkspaceID, resp.Stuck)
	case reconcile.ReportBottlenecks:
		err = svc.NotifyBottlenecks(runCtx, resp.WorkspaceID, resp.Bottlenecks)
	}
	if err != nil {
		return fmt.Errorf("publish %s notification: %w", resp.Kind, err)
	}
	return nil
}
