package reconcile_test

import (
	"time"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(days float64) time.Time {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func printCutPack() production.Workflow {
	return production.Workflow{
		ID:   "wf-carton",
		Name: "Carton line",
		Stages: []production.Stage{
			{ID: "pack", Name: "Pack", Order: 3, OutputUOM: "cartoon"},
			{ID: "print", Name: "Print", Order: 1, OutputUOM: "sheets"},
			{ID: "cut", Name: "Cut", Order: 2, OutputUOM: "sheets"},
		},
	}
}

func newJob(id, stageID string) production.Job {
	return production.Job{
		ID:             id,
		Code:           "JOB-" + id,
		WorkflowID:     "wf-carton",
		CurrentStageID: stageID,
		Status:         production.StatusInProgress,
		NumberUp:       10,
	}
}

func run(id, jobID, stageID string, good float64, at time.Time, sources ...string) production.Run {
	return production.Run{
		ID:                   id,
		JobID:                jobID,
		StageID:              stageID,
		QtyGood:              good,
		At:                   at,
		TransferSourceRunIDs: sources,
	}
}

func newEngine() *reconcile.Engine {
	return reconcile.New(reconcile.Options{Clock: func() time.Time { return testNow }})
}
