package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

// ErrJobNotFound is returned by JobPlan when the job is not in the snapshot.
var ErrJobNotFound = errors.New("job not found")

// ErrJobOffChain is returned by JobPlan when the job's current stage is not on
// its resolved stage chain.
var ErrJobOffChain = errors.New("job current stage is not on its stage chain")

// SnapshotLoader abstracts snapshot assembly for report queries.
type SnapshotLoader interface {
	Load(ctx context.Context, workspaceID string) (*reconcile.Snapshot, error)
}

// RunLoader fetches a single job's runs. Loaders implementing it let JobPlan
// explain terminal jobs, whose runs snapshots leave out.
type RunLoader interface {
	LoadRuns(ctx context.Context, jobID string) ([]production.Run, error)
}

// ReportService loads a fresh snapshot per call and runs the engine over it.
type ReportService struct {
	loader    SnapshotLoader
	engine    *reconcile.Engine
	workspace string
}

// NewReportService constructs a ReportService. defaultWorkspace applies when
// callers pass an empty workspace.
func NewReportService(loader SnapshotLoader, engine *reconcile.Engine, defaultWorkspace string) *ReportService {
	if loader == nil || engine == nil {
		return nil
	}
	return &ReportService{
		loader:    loader,
		engine:    engine,
		workspace: strings.TrimSpace(defaultWorkspace),
	}
}

// Workspace resolves the workspace a request applies to.
func (s *ReportService) Workspace(requested string) string {
	if trimmed := strings.TrimSpace(requested); trimmed != "" {
		return trimmed
	}
	return s.workspace
}

// Report computes one report for workspaceID.
func (s *ReportService) Report(ctx context.Context, kind reconcile.ReportKind, workspaceID string) (ReportResponse, error) {
	if s == nil {
		return ReportResponse{}, errors.New("report service unavailable")
	}
	snap, err := s.loader.Load(ctx, s.Workspace(workspaceID))
	if err != nil {
		return ReportResponse{}, fmt.Errorf("load snapshot: %w", err)
	}
	return FromReport(s.engine.Report(kind, snap), s.engine.Band()), nil
}

// JobPlan explains one job's reconciliation, including transfer lineage
// problems.
func (s *ReportService) JobPlan(ctx context.Context, workspaceID, jobID string) (JobPlanResponse, error) {
	if s == nil {
		return JobPlanResponse{}, errors.New("report service unavailable")
	}
	snap, err := s.loader.Load(ctx, s.Workspace(workspaceID))
	if err != nil {
		return JobPlanResponse{}, fmt.Errorf("load snapshot: %w", err)
	}

	jobID = strings.TrimSpace(jobID)
	idx := -1
	for i, job := range snap.Jobs {
		if job.ID == jobID || (job.Code != "" && strings.EqualFold(job.Code, jobID)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return JobPlanResponse{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	job := snap.Jobs[idx]

	var (
		wf    production.Workflow
		found bool
	)
	for _, candidate := range snap.Workflows {
		if candidate.ID == job.WorkflowID {
			wf, found = candidate, true
			break
		}
	}
	if !found {
		return JobPlanResponse{}, fmt.Errorf("%w: workflow %s for job %s not found", ErrJobOffChain, job.WorkflowID, job.ID)
	}

	runs, fetched := snap.Runs[job.ID]
	if !fetched && job.Status.IsTerminal() {
		if runLoader, ok := s.loader.(RunLoader); ok {
			runs, err = runLoader.LoadRuns(ctx, job.ID)
			if err != nil {
				return JobPlanResponse{}, fmt.Errorf("load runs: %w", err)
			}
		}
	}

	engine := s.engine.ForSnapshot(snap)
	rows, ok := engine.StagePlan(job, wf, runs)
	if !ok {
		return JobPlanResponse{}, fmt.Errorf("%w: %s at %s", ErrJobOffChain, job.ID, job.CurrentStageID)
	}
	return JobPlanResponse{
		JobID:          job.ID,
		JobLabel:       job.Label(),
		WorkflowID:     job.WorkflowID,
		Status:         string(job.Status),
		CurrentStageID: job.CurrentStageID,
		GeneratedAt:    snap.CapturedAt.UTC().Format(dateTimeFormat),
		Band:           engine.Band(),
		Stages:         rows,
		TransferIssues: reconcile.ValidateTransfers(job, reconcile.ResolveStages(job, wf), runs),
	}, nil
}
