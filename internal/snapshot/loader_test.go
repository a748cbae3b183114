package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stageflow/internal/production"
	"stageflow/internal/snapshot"
)

var capturedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	jobs        []production.Job
	workflows   []production.Workflow
	workcenters []production.Workcenter
	runs        map[string][]production.Run

	jobsErr     error
	workflowErr error
	runErrs     map[string]error
	runDelay    time.Duration

	mu       sync.Mutex
	fetched  []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubSource) ListJobs(context.Context, string) ([]production.Job, error) {
	return s.jobs, s.jobsErr
}

func (s *stubSource) ListWorkflows(context.Context, string) ([]production.Workflow, error) {
	return s.workflows, s.workflowErr
}

func (s *stubSource) ListWorkcenters(context.Context, string) ([]production.Workcenter, error) {
	return s.workcenters, nil
}

func (s *stubSource) ListRuns(ctx context.Context, jobID string) ([]production.Run, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	s.mu.Lock()
	s.fetched = append(s.fetched, jobID)
	s.mu.Unlock()

	if s.runDelay > 0 {
		select {
		case <-time.After(s.runDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.runErrs[jobID]; err != nil {
		return nil, err
	}
	return s.runs[jobID], nil
}

func job(id string, status production.JobStatus) production.Job {
	return production.Job{ID: id, WorkflowID: "wf", CurrentStageID: "print", Status: status}
}

func newLoader(src snapshot.Source, logger *slog.Logger, concurrency int) *snapshot.Loader {
	return snapshot.NewLoader(src, snapshot.Options{
		Concurrency: concurrency,
		Clock:       func() time.Time { return capturedAt },
		Logger:      logger,
	})
}

func TestLoadAssemblesSnapshot(t *testing.T) {
	src := &stubSource{
		jobs: []production.Job{
			job("j1", production.StatusInProgress),
			job("j2", production.StatusDone),
			job("j3", production.StatusReleased),
		},
		workflows:   []production.Workflow{{ID: "wf"}},
		workcenters: []production.Workcenter{{ID: "wc"}},
		runs: map[string][]production.Run{
			"j1": {{ID: "r1", JobID: "j1", StageID: "print", QtyGood: 10}},
			"j2": {{ID: "r2", JobID: "j2", StageID: "print", QtyGood: 10}},
		},
	}

	snap, err := newLoader(src, nil, 2).Load(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.WorkspaceID != "ws-1" || !snap.CapturedAt.Equal(capturedAt) {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}
	if len(snap.Runs["j1"]) != 1 {
		t.Fatalf("expected runs for j1, got %+v", snap.Runs)
	}
	if _, ok := snap.Runs["j2"]; ok {
		t.Fatal("terminal job runs should not be fetched")
	}
	if _, ok := snap.Runs["j3"]; !ok {
		t.Fatal("non-terminal job without runs should still have an entry")
	}
	for _, id := range src.fetched {
		if id == "j2" {
			t.Fatal("ListRuns called for terminal job")
		}
	}
}

func TestLoadListingFailureAborts(t *testing.T) {
	listErr := errors.New("firestore unavailable")
	tests := []struct {
		name string
		src  *stubSource
		want string
	}{
		{"jobs", &stubSource{jobsErr: listErr}, "list jobs"},
		{"workflows", &stubSource{workflowErr: listErr}, "list workflows"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newLoader(tc.src, nil, 1).Load(context.Background(), "ws")
			if !errors.Is(err, listErr) {
				t.Fatalf("expected wrapped listing error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadDegradesFailedRunFetch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	src := &stubSource{
		jobs: []production.Job{
			job("ok", production.StatusInProgress),
			job("broken", production.StatusInProgress),
		},
		runs: map[string][]production.Run{
			"ok": {{ID: "r1", JobID: "ok", StageID: "print", QtyGood: 5}},
		},
		runErrs: map[string]error{"broken": errors.New("timeout")},
	}

	snap, err := newLoader(src, logger, 4).Load(context.Background(), "ws")
	if err != nil {
		t.Fatalf("Load should degrade, got %v", err)
	}
	if len(snap.Runs["ok"]) != 1 {
		t.Fatalf("healthy job lost its runs: %+v", snap.Runs)
	}
	if runs, ok := snap.Runs["broken"]; !ok || len(runs) != 0 {
		t.Fatalf("failed job should have an empty run list, got %+v (present=%v)", runs, ok)
	}
	out := buf.String()
	for _, want := range []string{`"event_type":"run_fetch_failed"`, `"job_id":"broken"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestLoadRespectsConcurrencyLimit(t *testing.T) {
	src := &stubSource{runDelay: 10 * time.Millisecond}
	for i := range 12 {
		src.jobs = append(src.jobs, job(string(rune('a'+i)), production.StatusInProgress))
	}
	if _, err := newLoader(src, nil, 3).Load(context.Background(), "ws"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if peak := src.peak.Load(); peak > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", peak)
	}
	if len(src.fetched) != 12 {
		t.Fatalf("expected 12 fetches, got %d", len(src.fetched))
	}
}

func TestLoadCancellationAborts(t *testing.T) {
	src := &stubSource{
		jobs:     []production.Job{job("j1", production.StatusInProgress), job("j2", production.StatusInProgress)},
		runDelay: time.Second,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newLoader(src, nil, 2).Load(ctx, "ws")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLoadRunsFetchesTerminalJob(t *testing.T) {
	src := &stubSource{
		runs: map[string][]production.Run{
			"done": {{ID: "r1", JobID: "done", StageID: "print", QtyGood: 800}},
		},
		runErrs: map[string]error{"broken": errors.New("timeout")},
	}
	loader := newLoader(src, nil, 1)

	runs, err := loader.LoadRuns(context.Background(), "done")
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].QtyGood != 800 {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if _, err := loader.LoadRuns(context.Background(), "broken"); err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected error naming the job, got %v", err)
	}
}
