package testsupport

import (
	"bytes"
	"encoding/json"
	"time"

	"stageflow/internal/dataset"
)

// FixtureWorkspace is the workspace ID used by SampleDocument.
const FixtureWorkspace = "ws-demo"

// FixtureNow is the reference instant the sample timestamps are relative to.
var FixtureNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func epoch(daysBefore float64) map[string]any {
	at := FixtureNow.Add(-time.Duration(daysBefore * 24 * float64(time.Hour)))
	return map[string]any{"seconds": at.Unix(), "nanoseconds": 0}
}

// SampleDocument returns a workspace export covering every report:
//   - job-stranded has print output but nothing at its current cut stage
//   - job-ready finished print within the band but was never advanced
//   - job-flowing has partial cut input against its print output
//   - job-transfer only has a transfer run at cut
//   - job-done is terminal and must never appear in flow reports
//   - job-draft has no runs and is overdue
//
// Expected: three stuck jobs all bound for cut, one print to cut transition
// of 2100 sheets across three jobs.
func SampleDocument() map[string]any {
	return map[string]any{
		"workspaceId": FixtureWorkspace,
		"workflows": []any{
			map[string]any{
				"id":   "wf-carton",
				"name": "Folding carton",
				"stages": []any{
					map[string]any{"id": "print", "name": "Print", "order": 1, "outputUOM": "sheets"},
					map[string]any{"id": "cut", "name": "Die cut", "order": 2, "outputUOM": "sheets", "wipLimit": 1},
					map[string]any{"id": "pack", "name": "Pack", "order": 3, "outputUOM": "cartoon"},
				},
			},
		},
		"workcenters": []any{
			map[string]any{"id": "wc-press", "name": "Heidelberg XL 106"},
			map[string]any{"id": "wc-die", "name": "Bobst die cutter"},
		},
		"jobs": []any{
			map[string]any{
				"id": "job-stranded", "code": "J-100", "workflowId": "wf-carton", "currentStageId": "cut",
				"status": "in_progress", "priority": 2, "numberUp": 10, "workcenterId": "wc-die",
				"createdAt": epoch(10), "stageEnteredAt": epoch(3),
			},
			map[string]any{
				"id": "job-ready", "code": "J-101", "workflowId": "wf-carton", "currentStageId": "print",
				"status": "in_progress", "priority": 5, "numberUp": 10,
				"bom":       []any{map[string]any{"uom": "sheets", "qtyRequired": 1000}},
				"createdAt": epoch(6),
			},
			map[string]any{
				"id": "job-flowing", "code": "J-102", "workflowId": "wf-carton", "currentStageId": "cut",
				"status": "in_progress", "priority": 1, "numberUp": 10,
				"createdAt": epoch(8),
			},
			map[string]any{
				"id": "job-transfer", "code": "J-103", "workflowId": "wf-carton", "currentStageId": "cut",
				"status": "released", "priority": 1, "numberUp": 10,
				"createdAt": epoch(5),
			},
			map[string]any{
				"id": "job-done", "code": "J-090", "workflowId": "wf-carton", "currentStageId": "pack",
				"status": "done", "priority": 9,
				"createdAt": epoch(30),
			},
			map[string]any{
				"id": "job-draft", "code": "J-104", "workflowId": "wf-carton", "currentStageId": "print",
				"priority": 0, "dueDate": "2026-04-20",
				"createdAt": epoch(12),
			},
		},
		"runs": []any{
			map[string]any{"id": "run-1", "jobId": "job-stranded", "stageId": "print", "qtyGood": 1000, "workcenterId": "wc-press", "at": epoch(3)},
			map[string]any{"id": "run-2", "jobId": "job-ready", "stageId": "print", "qtyGood": 900, "workcenterId": "wc-press", "at": epoch(2)},
			map[string]any{"id": "run-3", "jobId": "job-flowing", "stageId": "print", "qtyGood": 1000, "at": epoch(4)},
			map[string]any{"id": "run-4", "jobId": "job-flowing", "stageId": "cut", "qtyGood": 400, "at": epoch(1)},
			map[string]any{"id": "run-5", "jobId": "job-transfer", "stageId": "print", "qtyGood": 500, "at": epoch(2)},
			map[string]any{"id": "run-6", "jobId": "job-transfer", "stageId": "cut", "qtyGood": 500, "at": epoch(1), "transferSourceRunIds": []string{"run-5"}},
			map[string]any{"id": "run-7", "jobId": "job-done", "stageId": "print", "qtyGood": 800, "at": epoch(20)},
		},
	}
}

// SampleDataset decodes SampleDocument.
func SampleDataset() *dataset.Dataset {
	data, err := json.Marshal(SampleDocument())
	if err != nil {
		panic(err)
	}
	ds, err := dataset.Decode(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	return ds
}
