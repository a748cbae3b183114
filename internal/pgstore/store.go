package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stageflow/internal/production"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a read-only PostgreSQL source.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

// Open connects to dsn. maxConns bounds the pool and should match the snapshot
// fetch concurrency; values below 1 keep the pgx default.
func Open(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, q: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not open")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

const listJobsSQL = `
	SELECT id, workspace_id, code, name, workflow_id, current_stage_id, planned_stage_ids,
	       status, priority, due_date, quantity, unit, number_up, bom, packaging, outputs,
	       workcenter_id, stage_entered_at, created_at, updated_at
	FROM jobs
	WHERE ($1 = '' OR workspace_id = $1)
	ORDER BY id
`

const listWorkflowsSQL = `
	SELECT id, workspace_id, name, stages
	FROM workflows
	WHERE ($1 = '' OR workspace_id = $1)
	ORDER BY id
`

const listWorkcentersSQL = `
	SELECT id, workspace_id, name
	FROM workcenters
	WHERE ($1 = '' OR workspace_id = $1)
	ORDER BY id
`

const listRunsSQL = `
	SELECT id, job_id, stage_id, qty_good, qty_scrap, lot, workcenter_id, operator_id,
	       at, transfer_source_run_ids
	FROM production_runs
	WHERE job_id = $1
	ORDER BY at NULLS LAST, id
`

// ListJobs returns the jobs in workspaceID.
func (s *Store) ListJobs(ctx context.Context, workspaceID string) ([]production.Job, error) {
	rows, err := s.q.Query(ctx, listJobsSQL, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := collect(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ListWorkflows returns the workflows in workspaceID.
func (s *Store) ListWorkflows(ctx context.Context, workspaceID string) ([]production.Workflow, error) {
	rows, err := s.q.Query(ctx, listWorkflowsSQL, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	workflows, err := collect(rows, scanWorkflow)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return workflows, nil
}

// ListWorkcenters returns the workcenters in workspaceID.
func (s *Store) ListWorkcenters(ctx context.Context, workspaceID string) ([]production.Workcenter, error) {
	rows, err := s.q.Query(ctx, listWorkcentersSQL, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workcenters: %w", err)
	}
	workcenters, err := collect(rows, scanWorkcenter)
	if err != nil {
		return nil, fmt.Errorf("list workcenters: %w", err)
	}
	return workcenters, nil
}

// ListRuns returns the runs recorded against jobID.
func (s *Store) ListRuns(ctx context.Context, jobID string) ([]production.Run, error) {
	rows, err := s.q.Query(ctx, listRunsSQL, jobID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs, err := collect(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("list runs for job %s: %w", jobID, err)
	}
	return runs, nil
}
