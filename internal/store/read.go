package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stageflow/internal/production"
)

// workspaceFilter matches rows in the requested workspace, rows without one,
// and everything when no workspace is requested.
const workspaceFilter = `(? = '' OR workspace_id = '' OR workspace_id = ?)`

const jobColumns = "id, workspace_id, code, name, workflow_id, current_stage_id, planned_stage_ids_json, status, priority, due_date, quantity, unit, number_up, bom_json, packaging_json, outputs_json, workcenter_id, stage_entered_at, created_at, updated_at"

const runColumns = "id, job_id, stage_id, qty_good, qty_scrap, lot, workcenter_id, operator_id, at, transfer_source_run_ids_json"

// ListJobs returns the jobs in workspaceID ordered by ID.
func (s *Store) ListJobs(ctx context.Context, workspaceID string) ([]production.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE `+workspaceFilter+` ORDER BY id`,
		workspaceID, workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []production.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// GetJob fetches one job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (production.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return production.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListWorkflows returns the workflows in workspaceID ordered by ID.
func (s *Store) ListWorkflows(ctx context.Context, workspaceID string) ([]production.Workflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace_id, name, stages_json FROM workflows WHERE `+workspaceFilter+` ORDER BY id`,
		workspaceID, workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []production.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return workflows, nil
}

// GetWorkflow fetches one workflow by ID.
func (s *Store) GetWorkflow(ctx context.Context, id string) (production.Workflow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, workspace_id, name, stages_json FROM workflows WHERE id = ?`, id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Workflow{}, fmt.Errorf("workflow %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return production.Workflow{}, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

// ListWorkcenters returns the workcenters in workspaceID ordered by ID.
func (s *Store) ListWorkcenters(ctx context.Context, workspaceID string) ([]production.Workcenter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace_id, name FROM workcenters WHERE `+workspaceFilter+` ORDER BY id`,
		workspaceID, workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workcenters: %w", err)
	}
	defer rows.Close()

	var out []production.Workcenter
	for rows.Next() {
		var (
			wc   production.Workcenter
			name sql.NullString
		)
		if err := rows.Scan(&wc.ID, &wc.WorkspaceID, &name); err != nil {
			return nil, fmt.Errorf("scan workcenter: %w", err)
		}
		wc.Name = name.String
		out = append(out, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workcenters: %w", err)
	}
	return out, nil
}

// ListRuns returns the runs recorded against jobID, oldest first.
func (s *Store) ListRuns(ctx context.Context, jobID string) ([]production.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE job_id = ? ORDER BY COALESCE(at, ''), id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []production.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Counts summarizes the stored records.
type Counts struct {
	Workflows   int            `json:"workflows"`
	Jobs        int            `json:"jobs"`
	Workcenters int            `json:"workcenters"`
	Runs        int            `json:"runs"`
	ByStatus    map[string]int `json:"byStatus"`
	LastImport  *ImportResult  `json:"lastImport,omitempty"`
}

// Counts returns record totals and the most recent import batch.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	counts := Counts{ByStatus: make(map[string]int)}
	tables := []struct {
		name   string
		target *int
	}{
		{"workflows", &counts.Workflows},
		{"jobs", &counts.Jobs},
		{"workcenters", &counts.Workcenters},
		{"runs", &counts.Runs},
	}
	for _, table := range tables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table.name).Scan(table.target); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", table.name, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return Counts{}, fmt.Errorf("count job statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Counts{}, fmt.Errorf("scan status count: %w", err)
		}
		counts.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("iterate status counts: %w", err)
	}

	last, err := s.lastImport(ctx)
	if err != nil {
		return Counts{}, err
	}
	counts.LastImport = last
	return counts, nil
}

func (s *Store) lastImport(ctx context.Context) (*ImportResult, error) {
	var (
		result     ImportResult
		importedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, workspace_id, source, imported_at, workflows, jobs, workcenters, runs
         FROM import_batches ORDER BY imported_at DESC, rowid DESC LIMIT 1`,
	).Scan(
		&result.BatchID,
		&result.WorkspaceID,
		&result.Source,
		&importedAt,
		&result.Workflows,
		&result.Jobs,
		&result.Workcenters,
		&result.Runs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read last import: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, importedAt); err == nil {
		result.ImportedAt = ts
	}
	return &result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(scanner rowScanner) (production.Workflow, error) {
	var (
		wf     production.Workflow
		name   sql.NullString
		stages sql.NullString
	)
	if err := scanner.Scan(&wf.ID, &wf.WorkspaceID, &name, &stages); err != nil {
		return production.Workflow{}, err
	}
	wf.Name = name.String
	if err := decodeJSON(stages, &wf.Stages); err != nil {
		return production.Workflow{}, fmt.Errorf("workflow %s stages: %w", wf.ID, err)
	}
	return wf, nil
}

func scanJob(scanner rowScanner) (production.Job, error) {
	var (
		job            production.Job
		code           sql.NullString
		name           sql.NullString
		planned        sql.NullString
		status         string
		dueDate        sql.NullString
		unit           sql.NullString
		bom            sql.NullString
		packaging      sql.NullString
		outputs        sql.NullString
		workcenterID   sql.NullString
		stageEnteredAt sql.NullString
		createdAt      sql.NullString
		updatedAt      sql.NullString
	)
	if err := scanner.Scan(
		&job.ID,
		&job.WorkspaceID,
		&code,
		&name,
		&job.WorkflowID,
		&job.CurrentStageID,
		&planned,
		&status,
		&job.Priority,
		&dueDate,
		&job.Quantity,
		&unit,
		&job.NumberUp,
		&bom,
		&packaging,
		&outputs,
		&workcenterID,
		&stageEnteredAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return production.Job{}, err
	}

	job.Code = code.String
	job.Name = name.String
	job.Status = production.ParseStatus(status)
	job.DueDate = parseTime(dueDate)
	job.Unit = unit.String
	job.WorkcenterID = workcenterID.String
	job.StageEnteredAt = parseTime(stageEnteredAt)
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)

	if err := decodeJSON(planned, &job.PlannedStageIDs); err != nil {
		return production.Job{}, fmt.Errorf("job %s planned stages: %w", job.ID, err)
	}
	if err := decodeJSON(bom, &job.BOM); err != nil {
		return production.Job{}, fmt.Errorf("job %s bom: %w", job.ID, err)
	}
	if err := decodeJSON(outputs, &job.Outputs); err != nil {
		return production.Job{}, fmt.Errorf("job %s outputs: %w", job.ID, err)
	}
	if packaging.Valid && packaging.String != "" {
		job.Packaging = &production.Packaging{}
		if err := decodeJSON(packaging, job.Packaging); err != nil {
			return production.Job{}, fmt.Errorf("job %s packaging: %w", job.ID, err)
		}
	}
	return job, nil
}

func scanRun(scanner rowScanner) (production.Run, error) {
	var (
		run          production.Run
		lot          sql.NullString
		workcenterID sql.NullString
		operatorID   sql.NullString
		at           sql.NullString
		sources      sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.JobID,
		&run.StageID,
		&run.QtyGood,
		&run.QtyScrap,
		&lot,
		&workcenterID,
		&operatorID,
		&at,
		&sources,
	); err != nil {
		return production.Run{}, err
	}
	run.Lot = lot.String
	run.WorkcenterID = workcenterID.String
	run.OperatorID = operatorID.String
	run.At = parseTime(at)
	if err := decodeJSON(sources, &run.TransferSourceRunIDs); err != nil {
		return production.Run{}, fmt.Errorf("run %s transfer sources: %w", run.ID, err)
	}
	return run, nil
}
