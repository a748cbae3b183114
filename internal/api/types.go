package api

import (
	"stageflow/internal/reconcile"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ReportResponse is the transport form of one engine report.
type ReportResponse struct {
	Kind        string                      `json:"kind"`
	WorkspaceID string                      `json:"workspaceId,omitempty"`
	GeneratedAt string                      `json:"generatedAt"`
	Count       int                         `json:"count"`
	Band        reconcile.Band              `json:"band"`
	Occupancy   []reconcile.StageOccupancy  `json:"occupancy,omitempty"`
	Stuck       []reconcile.StuckJob        `json:"stuck,omitempty"`
	Transitions []reconcile.WIPTransition   `json:"transitions,omitempty"`
	Bottlenecks []reconcile.StageBottleneck `json:"bottlenecks,omitempty"`
}

// JobPlanResponse explains how one job reconciles stage by stage.
type JobPlanResponse struct {
	JobID          string                    `json:"jobId"`
	JobLabel       string                    `json:"jobLabel"`
	WorkflowID     string                    `json:"workflowId"`
	Status         string                    `json:"status"`
	CurrentStageID string                    `json:"currentStageId"`
	GeneratedAt    string                    `json:"generatedAt"`
	Band           reconcile.Band            `json:"band"`
	Stages         []reconcile.StagePlanRow  `json:"stages"`
	TransferIssues []reconcile.TransferIssue `json:"transferIssues,omitempty"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Source    string `json:"source"`
	Workspace string `json:"workspace,omitempty"`
	Time      string `json:"time"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// FromReport converts an engine report.
func FromReport(report reconcile.Report, band reconcile.Band) ReportResponse {
	return ReportResponse{
		Kind:        string(report.Kind),
		WorkspaceID: report.WorkspaceID,
		GeneratedAt: report.GeneratedAt.UTC().Format(dateTimeFormat),
		Count:       report.Len(),
		Band:        band,
		Occupancy:   report.Occupancy,
		Stuck:       report.Stuck,
		Transitions: report.Transitions,
		Bottlenecks: report.Bottlenecks,
	}
}
