package reconcile

import (
	"strings"

	"stageflow/internal/production"
)

// Transfer issue reasons.
const (
	TransferUnknownSource    = "unknown_source"
	TransferSourceOtherJob   = "source_other_job"
	TransferSourceNotEarlier = "source_not_earlier_stage"
)

// TransferIssue flags a transfer run whose sources break the lineage rules:
// each source must be a known run of the same job at an earlier stage.
type TransferIssue struct {
	RunID       string `json:"runId"`
	JobID       string `json:"jobId"`
	StageID     string `json:"stageId"`
	SourceRunID string `json:"sourceRunId"`
	Reason      string `json:"reason"`
}

// ValidateTransfers checks transfer lineage for one job. It is diagnostic:
// totals never depend on its outcome.
func ValidateTransfers(job production.Job, chain StageChain, runs []production.Run) []TransferIssue {
	byID := make(map[string]production.Run, len(runs))
	for _, run := range runs {
		byID[run.ID] = run
	}

	var issues []TransferIssue
	for _, run := range runs {
		if !run.IsTransfer() {
			continue
		}
		target := chain.IndexOf(run.StageID)
		for _, sourceID := range run.TransferSourceRunIDs {
			sourceID = strings.TrimSpace(sourceID)
			if sourceID == "" {
				continue
			}
			issue := TransferIssue{RunID: run.ID, JobID: job.ID, StageID: run.StageID, SourceRunID: sourceID}
			source, ok := byID[sourceID]
			switch {
			case !ok:
				issue.Reason = TransferUnknownSource
			case source.JobID != "" && source.JobID != job.ID:
				issue.Reason = TransferSourceOtherJob
			default:
				origin := chain.IndexOf(source.StageID)
				if origin < 0 || target < 0 || origin >= target {
					issue.Reason = TransferSourceNotEarlier
				}
			}
			if issue.Reason != "" {
				issues = append(issues, issue)
			}
		}
	}
	return issues
}
