package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

var capturedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type mockLoader struct {
	snap      *reconcile.Snapshot
	err       error
	workspace string
}

func (m *mockLoader) Load(_ context.Context, workspaceID string) (*reconcile.Snapshot, error) {
	m.workspace = workspaceID
	return m.snap, m.err
}

func sampleSnapshot() *reconcile.Snapshot {
	wf := production.Workflow{
		ID: "wf",
		Stages: []production.Stage{
			{ID: "print", Name: "Print", Order: 1, OutputUOM: "sheets"},
			{ID: "cut", Name: "Cut", Order: 2, OutputUOM: "sheets"},
		},
	}
	job := production.Job{
		ID: "job-1", Code: "J-1", WorkflowID: "wf", CurrentStageID: "cut",
		Status: production.StatusInProgress, NumberUp: 10,
	}
	return &reconcile.Snapshot{
		WorkspaceID: "ws",
		Jobs:        []production.Job{job},
		Workflows:   []production.Workflow{wf},
		Runs: map[string][]production.Run{
			"job-1": {
				{ID: "r1", JobID: "job-1", StageID: "print", QtyGood: 1000, At: capturedAt.Add(-24 * time.Hour)},
				{ID: "r2", JobID: "job-1", StageID: "cut", QtyGood: 200, At: capturedAt, TransferSourceRunIDs: []string{"ghost"}},
			},
		},
		CapturedAt: capturedAt,
	}
}

func newService(loader SnapshotLoader) *ReportService {
	return NewReportService(loader, reconcile.New(reconcile.Options{}), "default-ws")
}

func TestReportServiceReport(t *testing.T) {
	loader := &mockLoader{snap: sampleSnapshot()}
	svc := newService(loader)

	resp, err := svc.Report(context.Background(), reconcile.ReportStuck, "")
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if loader.workspace != "default-ws" {
		t.Fatalf("expected default workspace, got %q", loader.workspace)
	}
	if resp.Kind != "stuck" || resp.Count != 1 || len(resp.Stuck) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.GeneratedAt != "2026-05-01T12:00:00.000Z" {
		t.Fatalf("unexpected generatedAt %q", resp.GeneratedAt)
	}
	if resp.Band != reconcile.DefaultBand() {
		t.Fatalf("unexpected band %+v", resp.Band)
	}
	if resp.Stuck[0].DaysStuck < 0.99 || resp.Stuck[0].DaysStuck > 1.01 {
		t.Fatalf("days stuck should use capture time, got %v", resp.Stuck[0].DaysStuck)
	}

	if _, err := svc.Report(context.Background(), reconcile.ReportWIP, "other"); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if loader.workspace != "other" {
		t.Fatalf("explicit workspace should win, got %q", loader.workspace)
	}
}

func TestReportServiceLoaderError(t *testing.T) {
	loadErr := errors.New("source down")
	svc := newService(&mockLoader{err: loadErr})
	if _, err := svc.Report(context.Background(), reconcile.ReportOccupancy, "ws"); !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
}

func TestReportServiceJobPlan(t *testing.T) {
	svc := newService(&mockLoader{snap: sampleSnapshot()})

	plan, err := svc.JobPlan(context.Background(), "ws", "j-1")
	if err != nil {
		t.Fatalf("JobPlan returned error: %v", err)
	}
	if plan.JobID != "job-1" || len(plan.Stages) != 2 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	cut := plan.Stages[1]
	if !cut.Current || cut.Plan.Quantity != 1000 || cut.AuthenticOutput != 0 || cut.TransferQuantity != 200 {
		t.Fatalf("unexpected cut row %+v", cut)
	}
	if len(plan.TransferIssues) != 1 || plan.TransferIssues[0].Reason != reconcile.TransferUnknownSource {
		t.Fatalf("expected unknown source issue, got %+v", plan.TransferIssues)
	}

	if _, err := svc.JobPlan(context.Background(), "ws", "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	snap := sampleSnapshot()
	snap.Jobs[0].CurrentStageID = "pack"
	svc = newService(&mockLoader{snap: snap})
	if _, err := svc.JobPlan(context.Background(), "ws", "job-1"); !errors.Is(err, ErrJobOffChain) {
		t.Fatalf("expected ErrJobOffChain, got %v", err)
	}
}

type runLoader struct {
	mockLoader
	runs    map[string][]production.Run
	err     error
	fetched []string
}

func (r *runLoader) LoadRuns(_ context.Context, jobID string) ([]production.Run, error) {
	r.fetched = append(r.fetched, jobID)
	return r.runs[jobID], r.err
}

func terminalSnapshot() *reconcile.Snapshot {
	snap := sampleSnapshot()
	snap.Jobs[0].Status = production.StatusDone
	delete(snap.Runs, "job-1")
	return snap
}

func TestReportServiceJobPlanFetchesTerminalRuns(t *testing.T) {
	loader := &runLoader{
		mockLoader: mockLoader{snap: terminalSnapshot()},
		runs: map[string][]production.Run{
			"job-1": {
				{ID: "r1", JobID: "job-1", StageID: "print", QtyGood: 1000, At: capturedAt.Add(-48 * time.Hour)},
				{ID: "r2", JobID: "job-1", StageID: "cut", QtyGood: 950, At: capturedAt.Add(-24 * time.Hour)},
			},
		},
	}
	plan, err := newService(loader).JobPlan(context.Background(), "ws", "job-1")
	if err != nil {
		t.Fatalf("JobPlan returned error: %v", err)
	}
	if len(loader.fetched) != 1 || loader.fetched[0] != "job-1" {
		t.Fatalf("expected one run fetch for job-1, got %v", loader.fetched)
	}
	if plan.Status != "done" || plan.Stages[0].AuthenticOutput != 1000 || plan.Stages[1].AuthenticOutput != 950 {
		t.Fatalf("terminal job plan should show recorded output, got %+v", plan.Stages)
	}

	loadErr := errors.New("runs unavailable")
	failing := &runLoader{mockLoader: mockLoader{snap: terminalSnapshot()}, err: loadErr}
	if _, err := newService(failing).JobPlan(context.Background(), "ws", "job-1"); !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped run load error, got %v", err)
	}

	active := &runLoader{mockLoader: mockLoader{snap: sampleSnapshot()}}
	if _, err := newService(active).JobPlan(context.Background(), "ws", "job-1"); err != nil {
		t.Fatalf("JobPlan returned error: %v", err)
	}
	if len(active.fetched) != 0 {
		t.Fatalf("active jobs use snapshot runs, fetched %v", active.fetched)
	}
}

func TestNilReportService(t *testing.T) {
	if svc := NewReportService(nil, nil, ""); svc != nil {
		t.Fatal("expected nil service without dependencies")
	}
	var svc *ReportService
	if _, err := svc.Report(context.Background(), reconcile.ReportStuck, ""); err == nil {
		t.Fatal("expected error from nil service")
	}
}
