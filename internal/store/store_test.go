package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stageflow/internal/production"
	"stageflow/internal/store"
	"stageflow/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	version, err := st.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "001_initial" {
		t.Fatalf("unexpected schema version %q", version)
	}
	if st.Path() != cfg.DatabasePath() {
		t.Fatalf("path = %q, want %q", st.Path(), cfg.DatabasePath())
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Jobs != 0 || counts.LastImport != nil {
		t.Fatalf("expected empty store, got %+v", counts)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	testsupport.MustImport(t, first, testsupport.SampleDataset())
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	counts, err := second.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Jobs != 6 {
		t.Fatalf("expected data to survive reopen, got %d jobs", counts.Jobs)
	}
}

func TestImportRoundTripsRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	result := testsupport.MustImport(t, st, testsupport.SampleDataset())
	if result.BatchID == "" {
		t.Fatal("expected batch id")
	}
	if result.Jobs != 6 || result.Runs != 7 || result.Workflows != 1 || result.Workcenters != 2 {
		t.Fatalf("unexpected import result %+v", result)
	}

	job, err := st.GetJob(ctx, "job-ready")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != production.StatusInProgress || job.Priority != 5 || job.NumberUp != 10 {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(job.BOM) != 1 || job.BOM[0].QtyRequired != 1000 || job.BOM[0].UOM != "sheets" {
		t.Fatalf("bom did not round trip: %+v", job.BOM)
	}
	wantCreated := testsupport.FixtureNow.Add(-6 * 24 * time.Hour)
	if !job.CreatedAt.Equal(wantCreated) {
		t.Fatalf("createdAt = %v, want %v", job.CreatedAt, wantCreated)
	}

	draft, err := st.GetJob(ctx, "job-draft")
	if err != nil {
		t.Fatalf("GetJob draft: %v", err)
	}
	if draft.Status != production.StatusDraft {
		t.Fatalf("missing status should persist as draft, got %q", draft.Status)
	}
	if !draft.DueDate.Equal(time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("due date = %v", draft.DueDate)
	}

	wf, err := st.GetWorkflow(ctx, "wf-carton")
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if len(wf.Stages) != 3 || wf.Stages[1].WIPLimit != 1 || wf.Stages[2].OutputUOM != "cartoon" {
		t.Fatalf("stages did not round trip: %+v", wf.Stages)
	}

	runs, err := st.ListRuns(ctx, "job-transfer")
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-5" || runs[1].ID != "run-6" {
		t.Fatalf("runs should be ordered oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[1].IsTransfer() || runs[1].TransferSourceRunIDs[0] != "run-5" {
		t.Fatalf("transfer sources lost: %+v", runs[1])
	}
	if runs[0].IsTransfer() {
		t.Fatal("authentic run should not become a transfer")
	}
}

func TestImportUpsertsByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ds := testsupport.SampleDataset()
	first := testsupport.MustImport(t, st, ds)

	for i := range ds.Jobs {
		if ds.Jobs[i].ID == "job-flowing" {
			ds.Jobs[i].CurrentStageID = "pack"
			ds.Jobs[i].Priority = 7
		}
	}
	second := testsupport.MustImport(t, st, ds)
	if first.BatchID == second.BatchID {
		t.Fatal("each import should get its own batch id")
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Jobs != 6 || counts.Runs != 7 {
		t.Fatalf("re-import should not duplicate rows: %+v", counts)
	}
	if counts.ByStatus["in_progress"] != 3 || counts.ByStatus["done"] != 1 {
		t.Fatalf("unexpected status counts %+v", counts.ByStatus)
	}
	if counts.LastImport == nil || counts.LastImport.BatchID != second.BatchID {
		t.Fatalf("last import should be the second batch, got %+v", counts.LastImport)
	}

	job, err := st.GetJob(ctx, "job-flowing")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.CurrentStageID != "pack" || job.Priority != 7 {
		t.Fatalf("upsert did not update job: %+v", job)
	}
}

func TestListingsFilterByWorkspace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustImport(t, st, testsupport.SampleDataset())

	tests := []struct {
		workspace string
		wantJobs  int
	}{
		{testsupport.FixtureWorkspace, 6},
		{"", 6},
		{"ws-other", 0},
	}
	for _, tc := range tests {
		jobs, err := st.ListJobs(ctx, tc.workspace)
		if err != nil {
			t.Fatalf("ListJobs(%q): %v", tc.workspace, err)
		}
		if len(jobs) != tc.wantJobs {
			t.Fatalf("ListJobs(%q) returned %d jobs, want %d", tc.workspace, len(jobs), tc.wantJobs)
		}
	}

	workcenters, err := st.ListWorkcenters(ctx, testsupport.FixtureWorkspace)
	if err != nil {
		t.Fatalf("ListWorkcenters: %v", err)
	}
	if len(workcenters) != 2 || workcenters[0].ID != "wc-die" {
		t.Fatalf("unexpected workcenters %+v", workcenters)
	}
}

func TestGetMissingRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.GetJob(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetWorkflow(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	runs, err := st.ListRuns(ctx, "nope")
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected no runs, got %v, %v", runs, err)
	}
}

func TestImportRejectsNilDataset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if _, err := st.Import(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil dataset")
	}
}
