package main

import (
	"fmt"
	"sort"
	"strings"

	"stageflow/internal/api"
	"stageflow/internal/reconcile"
)

func renderReport(resp api.ReportResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workspace: %s  Generated: %s  Band: -%s/+%s\n",
		fallback(resp.WorkspaceID, "(all)"),
		resp.GeneratedAt,
		formatQuantity(resp.Band.Lower, ""),
		formatQuantity(resp.Band.Upper, ""),
	)

	if resp.Count == 0 {
		b.WriteString(emptyReportMessage(resp.Kind))
		b.WriteString("\n")
		return b.String()
	}

	switch reconcile.ReportKind(resp.Kind) {
	case reconcile.ReportOccupancy:
		b.WriteString(renderOccupancy(resp.Occupancy))
	case reconcile.ReportStuck:
		b.WriteString(renderStuck(resp.Stuck))
	case reconcile.ReportWIP:
		b.WriteString(renderTransitions(resp.Transitions))
	case reconcile.ReportBottlenecks:
		b.WriteString(renderBottlenecks(resp.Bottlenecks))
	}
	b.WriteString("\n")
	return b.String()
}

func emptyReportMessage(kind string) string {
	switch reconcile.ReportKind(kind) {
	case reconcile.ReportOccupancy:
		return "No jobs are placed at a stage."
	case reconcile.ReportStuck:
		return "No stuck jobs."
	case reconcile.ReportWIP:
		return "No work in progress between stages."
	case reconcile.ReportBottlenecks:
		return "No bottlenecks."
	default:
		return "Nothing to report."
	}
}

func renderOccupancy(rows []reconcile.StageOccupancy) string {
	spec := tableSpec{
		Headers: []string{"Stage", "Workflow", "Jobs", "Avg Days", "Overdue", "WIP Limit", "Workcenters"},
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	}
	total := 0
	for _, row := range rows {
		total += row.Count
		limit := "-"
		if row.WIPLimit > 0 {
			limit = formatCount(row.WIPLimit)
			if row.OverLimit {
				limit += " (over)"
			}
		}
		spec.Rows = append(spec.Rows, []string{
			fallback(row.StageName, row.StageID),
			fallback(row.WorkflowID, "-"),
			formatCount(row.Count),
			formatDays(row.AvgDaysInStage),
			formatCount(row.OverdueCount),
			limit,
			summarizeCounts(row.WorkcenterCounts),
		})
	}
	spec.Footer = []string{"Total", "", formatCount(total)}
	return renderTable(spec)
}

func renderStuck(rows []reconcile.StuckJob) string {
	spec := tableSpec{
		Headers: []string{"Job", "Case", "Waiting", "Quantity", "Days", "Priority", "Due", "Workcenter"},
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	}
	for _, row := range rows {
		workcenter := fallback(row.WorkcenterID, "-")
		if row.Workcenter != nil && row.Workcenter.Name != "" {
			workcenter = row.Workcenter.Name
		}
		spec.Rows = append(spec.Rows, []string{
			fallback(row.JobCode, row.JobID),
			humanize(string(row.Case)),
			stagePair(row.FromStageName, row.ToStageName),
			formatQuantity(row.Quantity, row.UOM),
			formatDays(row.DaysStuck),
			formatCount(row.Priority),
			formatDate(row.DueDate),
			workcenter,
		})
	}
	return renderTable(spec)
}

func renderTransitions(rows []reconcile.WIPTransition) string {
	spec := tableSpec{
		Headers: []string{"Transition", "Jobs", "Quantity", "Oldest (days)"},
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	}
	for _, row := range rows {
		oldest := 0.0
		for _, job := range row.Jobs {
			oldest = max(oldest, job.DaysInTransition)
		}
		spec.Rows = append(spec.Rows, []string{
			stagePair(row.FromStageName, row.ToStageName),
			formatCount(row.JobCount),
			formatQuantity(row.Quantity, row.UOM),
			formatDays(oldest),
		})
	}
	return renderTable(spec)
}

func renderBottlenecks(rows []reconcile.StageBottleneck) string {
	spec := tableSpec{
		Headers: []string{"#", "Stage", "Stuck Jobs", "Waiting Quantity", "Avg Days Stuck"},
		Aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	}
	for i, row := range rows {
		uom := ""
		if len(row.Transitions) > 0 {
			uom = row.Transitions[0].UOM
		}
		spec.Rows = append(spec.Rows, []string{
			formatCount(i + 1),
			fallback(row.StageName, row.StageID),
			formatCount(row.StuckJobCount),
			formatQuantity(row.TotalWIPQuantity, uom),
			formatDays(row.AvgDaysStuck),
		})
	}
	return renderTable(spec)
}

func renderJobPlan(resp api.JobPlanResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s  Workflow: %s  Status: %s  Current: %s\n",
		resp.JobLabel, resp.WorkflowID, fallback(resp.Status, "-"), resp.CurrentStageID)

	spec := tableSpec{
		Headers: []string{"", "Stage", "Planned", "Strategy", "Output", "Transferred", "Window", "Met"},
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	}
	for _, row := range resp.Stages {
		marker := ""
		if row.Current {
			marker = ">"
		}
		window := "-"
		if row.Threshold.Planned > 0 {
			window = fmt.Sprintf("%s..%s", formatQuantity(row.Threshold.Min, ""), formatQuantity(row.Threshold.Max, ""))
		}
		spec.Rows = append(spec.Rows, []string{
			marker,
			fallback(row.StageName, row.StageID),
			formatQuantity(row.Plan.Quantity, row.Plan.UOM),
			fallback(humanize(row.Plan.Strategy), "-"),
			formatQuantity(row.AuthenticOutput, ""),
			formatQuantity(row.TransferQuantity, ""),
			window,
			yesNo(row.Threshold.Met),
		})
	}
	b.WriteString(renderTable(spec))
	b.WriteString("\n")

	if len(resp.TransferIssues) > 0 {
		b.WriteString("Transfer issues:\n")
		for _, issue := range resp.TransferIssues {
			fmt.Fprintf(&b, "  run %s at %s: source %s %s\n",
				issue.RunID, issue.StageID, issue.SourceRunID, strings.ReplaceAll(issue.Reason, "_", " "))
		}
	}
	return b.String()
}

func stagePair(from, to string) string {
	return fmt.Sprintf("%s -> %s", fallback(from, "?"), fallback(to, "?"))
}

// summarizeCounts renders "a=2, b=1" sorted by count then key.
func summarizeCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", fallback(k, "unassigned"), counts[k]))
	}
	return strings.Join(parts, ", ")
}
