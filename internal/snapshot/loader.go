package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stageflow/internal/logging"
	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

// DefaultConcurrency bounds run fetches when Options.Concurrency is unset.
const DefaultConcurrency = 8

// Options configures a Loader.
type Options struct {
	Concurrency int
	Clock       func() time.Time
	Logger      *slog.Logger
}

// Loader builds snapshots from a Source.
type Loader struct {
	source      Source
	concurrency int
	clock       func() time.Time
	logger      *slog.Logger
}

// NewLoader constructs a Loader over source.
func NewLoader(source Source, opts Options) *Loader {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Loader{
		source:      source,
		concurrency: concurrency,
		clock:       clock,
		logger:      logging.NewComponentLogger(opts.Logger, "snapshot"),
	}
}

// Load reads one workspace. Listing failures abort the load; run fetch
// failures are logged and leave that job with no runs.
func (l *Loader) Load(ctx context.Context, workspaceID string) (*reconcile.Snapshot, error) {
	capturedAt := l.clock().UTC()

	jobs, err := l.source.ListJobs(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	workflows, err := l.source.ListWorkflows(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	workcenters, err := l.source.ListWorkcenters(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workcenters: %w", err)
	}

	runs, err := l.fetchRuns(ctx, workspaceID, jobs)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("snapshot loaded",
		logging.String(logging.FieldWorkspace, workspaceID),
		logging.Int("jobs", len(jobs)),
		logging.Int("workflows", len(workflows)),
		logging.Int("workcenters", len(workcenters)),
		logging.Int("jobs_with_runs", len(runs)),
	)

	return &reconcile.Snapshot{
		WorkspaceID: workspaceID,
		Jobs:        jobs,
		Workflows:   workflows,
		Workcenters: workcenters,
		Runs:        runs,
		CapturedAt:  capturedAt,
	}, nil
}

func (l *Loader) fetchRuns(ctx context.Context, workspaceID string, jobs []production.Job) (map[string][]production.Run, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]production.Run, len(jobs))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)

	for _, job := range jobs {
		if job.Status.IsTerminal() {
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			runs, err := l.source.ListRuns(groupCtx, job.ID)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logging.WarnWithContext(l.logger, "run fetch failed; job treated as having no runs",
					"run_fetch_failed",
					logging.String(logging.FieldWorkspace, workspaceID),
					logging.String(logging.FieldJobID, job.ID),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the run source for this job"),
				)
				runs = nil
			}
			mu.Lock()
			out[job.ID] = runs
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("fetch runs: %w", err)
	}
	return out, nil
}

// LoadRuns fetches one job's runs directly from the source. Load skips
// terminal jobs, so callers explaining such a job fetch its runs here.
func (l *Loader) LoadRuns(ctx context.Context, jobID string) ([]production.Run, error) {
	runs, err := l.source.ListRuns(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", jobID, err)
	}
	return runs, nil
}
