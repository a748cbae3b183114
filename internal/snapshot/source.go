package snapshot

import (
	"context"

	"stageflow/internal/production"
)

// Source lists the records a snapshot is built from.
type Source interface {
	ListJobs(ctx context.Context, workspaceID string) ([]production.Job, error)
	ListWorkflows(ctx context.Context, workspaceID string) ([]production.Workflow, error)
	ListWorkcenters(ctx context.Context, workspaceID string) ([]production.Workcenter, error)
	ListRuns(ctx context.Context, jobID string) ([]production.Run, error)
}
