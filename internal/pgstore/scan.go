package pgstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stageflow/internal/production"
)

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func deref[T any](value *T) T {
	var zero T
	if value == nil {
		return zero
	}
	return *value
}

func utc(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return value.UTC()
}

func decodeJSONB(raw []byte, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}

func scanWorkflow(rows pgx.Rows) (production.Workflow, error) {
	var (
		wf          production.Workflow
		workspaceID *string
		name        *string
		stages      []byte
	)
	if err := rows.Scan(&wf.ID, &workspaceID, &name, &stages); err != nil {
		return production.Workflow{}, fmt.Errorf("scan workflow: %w", err)
	}
	wf.WorkspaceID = deref(workspaceID)
	wf.Name = deref(name)
	if err := decodeJSONB(stages, &wf.Stages); err != nil {
		return production.Workflow{}, fmt.Errorf("workflow %s stages: %w", wf.ID, err)
	}
	return wf, nil
}

func scanWorkcenter(rows pgx.Rows) (production.Workcenter, error) {
	var (
		wc          production.Workcenter
		workspaceID *string
		name        *string
	)
	if err := rows.Scan(&wc.ID, &workspaceID, &name); err != nil {
		return production.Workcenter{}, fmt.Errorf("scan workcenter: %w", err)
	}
	wc.WorkspaceID = deref(workspaceID)
	wc.Name = deref(name)
	return wc, nil
}

func scanJob(rows pgx.Rows) (production.Job, error) {
	var (
		job            production.Job
		workspaceID    *string
		code           *string
		name           *string
		currentStageID *string
		planned        []string
		status         *string
		priority       *int32
		dueDate        *time.Time
		quantity       *float64
		unit           *string
		numberUp       *float64
		bom            []byte
		packaging      []byte
		outputs        []byte
		workcenterID   *string
		stageEnteredAt *time.Time
		createdAt      *time.Time
		updatedAt      *time.Time
	)
	if err := rows.Scan(
		&job.ID,
		&workspaceID,
		&code,
		&name,
		&job.WorkflowID,
		&currentStageID,
		&planned,
		&status,
		&priority,
		&dueDate,
		&quantity,
		&unit,
		&numberUp,
		&bom,
		&packaging,
		&outputs,
		&workcenterID,
		&stageEnteredAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return production.Job{}, fmt.Errorf("scan job: %w", err)
	}

	job.WorkspaceID = deref(workspaceID)
	job.Code = deref(code)
	job.Name = deref(name)
	job.CurrentStageID = deref(currentStageID)
	job.PlannedStageIDs = planned
	job.Status = production.ParseStatus(deref(status))
	job.Priority = int(deref(priority))
	job.DueDate = utc(dueDate)
	job.Quantity = deref(quantity)
	job.Unit = deref(unit)
	job.NumberUp = deref(numberUp)
	if job.NumberUp <= 0 {
		job.NumberUp = 1
	}
	job.WorkcenterID = deref(workcenterID)
	job.StageEnteredAt = utc(stageEnteredAt)
	job.CreatedAt = utc(createdAt)
	job.UpdatedAt = utc(updatedAt)

	if err := decodeJSONB(bom, &job.BOM); err != nil {
		return production.Job{}, fmt.Errorf("job %s bom: %w", job.ID, err)
	}
	if err := decodeJSONB(outputs, &job.Outputs); err != nil {
		return production.Job{}, fmt.Errorf("job %s outputs: %w", job.ID, err)
	}
	if len(packaging) > 0 && string(packaging) != "null" {
		job.Packaging = &production.Packaging{}
		if err := decodeJSONB(packaging, job.Packaging); err != nil {
			return production.Job{}, fmt.Errorf("job %s packaging: %w", job.ID, err)
		}
		if job.Packaging.PcsPerBox <= 0 {
			job.Packaging.PcsPerBox = 1
		}
	}
	return job, nil
}

func scanRun(rows pgx.Rows) (production.Run, error) {
	var (
		run          production.Run
		qtyGood      *float64
		qtyScrap     *float64
		lot          *string
		workcenterID *string
		operatorID   *string
		at           *time.Time
		sources      []string
	)
	if err := rows.Scan(
		&run.ID,
		&run.JobID,
		&run.StageID,
		&qtyGood,
		&qtyScrap,
		&lot,
		&workcenterID,
		&operatorID,
		&at,
		&sources,
	); err != nil {
		return production.Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.QtyGood = deref(qtyGood)
	run.QtyScrap = deref(qtyScrap)
	run.Lot = deref(lot)
	run.WorkcenterID = deref(workcenterID)
	run.OperatorID = deref(operatorID)
	run.At = utc(at)
	run.TransferSourceRunIDs = sources
	return run, nil
}
