package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stageflow/internal/api"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var workspace string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan <job-id|job-code>",
		Short: "Explain a job's planned quantity, output, and threshold per stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReports(cmd.Context(), func(reports *api.ReportService) error {
				resp, err := reports.JobPlan(cmd.Context(), workspace, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderJobPlan(resp))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace containing the job (defaults to source.workspace)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
