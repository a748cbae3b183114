package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stageflow/internal/dataset"
)

// ImportResult summarizes one Import call.
type ImportResult struct {
	BatchID     string    `json:"batchId"`
	WorkspaceID string    `json:"workspaceId,omitempty"`
	Source      string    `json:"source,omitempty"`
	ImportedAt  time.Time `json:"importedAt"`
	Workflows   int       `json:"workflows"`
	Jobs        int       `json:"jobs"`
	Workcenters int       `json:"workcenters"`
	Runs        int       `json:"runs"`
}

// Import upserts every record in ds inside one transaction. Records are keyed
// by ID, so re-importing a newer export replaces older rows.
func (s *Store) Import(ctx context.Context, ds *dataset.Dataset) (ImportResult, error) {
	if ds == nil {
		return ImportResult{}, errors.New("import requires a dataset")
	}
	result := ImportResult{
		BatchID:     uuid.NewString(),
		WorkspaceID: ds.WorkspaceID,
		Source:      ds.Origin,
		ImportedAt:  time.Now().UTC(),
		Workflows:   len(ds.Workflows),
		Jobs:        len(ds.Jobs),
		Workcenters: len(ds.Workcenters),
		Runs:        len(ds.Runs),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_batches (id, workspace_id, source, imported_at, workflows, jobs, workcenters, runs)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.BatchID,
		result.WorkspaceID,
		result.Source,
		result.ImportedAt.Format(timeLayout),
		result.Workflows,
		result.Jobs,
		result.Workcenters,
		result.Runs,
	); err != nil {
		return ImportResult{}, fmt.Errorf("record import batch: %w", err)
	}

	steps := []func(context.Context, *sql.Tx, *dataset.Dataset, string) error{
		importWorkflows,
		importWorkcenters,
		importJobs,
		importRuns,
	}
	for _, step := range steps {
		if err := step(ctx, tx, ds, result.BatchID); err != nil {
			return ImportResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return result, nil
}

func importWorkflows(ctx context.Context, tx *sql.Tx, ds *dataset.Dataset, batchID string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO workflows (id, workspace_id, name, stages_json, batch_id)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             workspace_id = excluded.workspace_id,
             name = excluded.name,
             stages_json = excluded.stages_json,
             batch_id = excluded.batch_id`)
	if err != nil {
		return fmt.Errorf("prepare workflow upsert: %w", err)
	}
	defer stmt.Close()

	for _, wf := range ds.Workflows {
		stages, err := encodeJSON(wf.Stages)
		if err != nil {
			return fmt.Errorf("encode stages for workflow %s: %w", wf.ID, err)
		}
		if stages == nil {
			stages = "[]"
		}
		if _, err := stmt.ExecContext(ctx, wf.ID, wf.WorkspaceID, nullableString(wf.Name), stages, batchID); err != nil {
			return fmt.Errorf("upsert workflow %s: %w", wf.ID, err)
		}
	}
	return nil
}

func importWorkcenters(ctx context.Context, tx *sql.Tx, ds *dataset.Dataset, batchID string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO workcenters (id, workspace_id, name, batch_id)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             workspace_id = excluded.workspace_id,
             name = excluded.name,
             batch_id = excluded.batch_id`)
	if err != nil {
		return fmt.Errorf("prepare workcenter upsert: %w", err)
	}
	defer stmt.Close()

	for _, wc := range ds.Workcenters {
		if _, err := stmt.ExecContext(ctx, wc.ID, wc.WorkspaceID, nullableString(wc.Name), batchID); err != nil {
			return fmt.Errorf("upsert workcenter %s: %w", wc.ID, err)
		}
	}
	return nil
}

func importJobs(ctx context.Context, tx *sql.Tx, ds *dataset.Dataset, batchID string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs (
            id, workspace_id, code, name, workflow_id, current_stage_id, planned_stage_ids_json,
            status, priority, due_date, quantity, unit, number_up, bom_json, packaging_json,
            outputs_json, workcenter_id, stage_entered_at, created_at, updated_at, batch_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            workspace_id = excluded.workspace_id,
            code = excluded.code,
            name = excluded.name,
            workflow_id = excluded.workflow_id,
            current_stage_id = excluded.current_stage_id,
            planned_stage_ids_json = excluded.planned_stage_ids_json,
            status = excluded.status,
            priority = excluded.priority,
            due_date = excluded.due_date,
            quantity = excluded.quantity,
            unit = excluded.unit,
            number_up = excluded.number_up,
            bom_json = excluded.bom_json,
            packaging_json = excluded.packaging_json,
            outputs_json = excluded.outputs_json,
            workcenter_id = excluded.workcenter_id,
            stage_entered_at = excluded.stage_entered_at,
            created_at = excluded.created_at,
            updated_at = excluded.updated_at,
            batch_id = excluded.batch_id`)
	if err != nil {
		return fmt.Errorf("prepare job upsert: %w", err)
	}
	defer stmt.Close()

	for _, job := range ds.Jobs {
		planned, err := encodeJSON(job.PlannedStageIDs)
		if err != nil {
			return fmt.Errorf("encode planned stages for job %s: %w", job.ID, err)
		}
		bom, err := encodeJSON(job.BOM)
		if err != nil {
			return fmt.Errorf("encode bom for job %s: %w", job.ID, err)
		}
		outputs, err := encodeJSON(job.Outputs)
		if err != nil {
			return fmt.Errorf("encode outputs for job %s: %w", job.ID, err)
		}
		var packaging any
		if job.Packaging != nil {
			data, err := json.Marshal(job.Packaging)
			if err != nil {
				return fmt.Errorf("encode packaging for job %s: %w", job.ID, err)
			}
			packaging = string(data)
		}
		if _, err := stmt.ExecContext(ctx,
			job.ID,
			job.WorkspaceID,
			nullableString(job.Code),
			nullableString(job.Name),
			job.WorkflowID,
			job.CurrentStageID,
			planned,
			string(job.Status),
			job.Priority,
			nullableTime(job.DueDate),
			job.Quantity,
			nullableString(job.Unit),
			job.UpFactor(),
			bom,
			packaging,
			outputs,
			nullableString(job.WorkcenterID),
			nullableTime(job.StageEnteredAt),
			nullableTime(job.CreatedAt),
			nullableTime(job.UpdatedAt),
			batchID,
		); err != nil {
			return fmt.Errorf("upsert job %s: %w", job.ID, err)
		}
	}
	return nil
}

func importRuns(ctx context.Context, tx *sql.Tx, ds *dataset.Dataset, batchID string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (
            id, job_id, stage_id, qty_good, qty_scrap, lot, workcenter_id, operator_id, at,
            transfer_source_run_ids_json, batch_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            job_id = excluded.job_id,
            stage_id = excluded.stage_id,
            qty_good = excluded.qty_good,
            qty_scrap = excluded.qty_scrap,
            lot = excluded.lot,
            workcenter_id = excluded.workcenter_id,
            operator_id = excluded.operator_id,
            at = excluded.at,
            transfer_source_run_ids_json = excluded.transfer_source_run_ids_json,
            batch_id = excluded.batch_id`)
	if err != nil {
		return fmt.Errorf("prepare run upsert: %w", err)
	}
	defer stmt.Close()

	for _, run := range ds.Runs {
		sources, err := encodeJSON(run.TransferSourceRunIDs)
		if err != nil {
			return fmt.Errorf("encode transfer sources for run %s: %w", run.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			run.JobID,
			run.StageID,
			run.QtyGood,
			run.QtyScrap,
			nullableString(run.Lot),
			nullableString(run.WorkcenterID),
			nullableString(run.OperatorID),
			nullableTime(run.At),
			sources,
			batchID,
		); err != nil {
			return fmt.Errorf("upsert run %s: %w", run.ID, err)
		}
	}
	return nil
}
