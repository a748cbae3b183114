package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"stageflow/internal/production"
)

// UnassignedWorkcenter buckets jobs without a workcenter in occupancy reports.
const UnassignedWorkcenter = "unassigned"

// StageOccupancy is a census of the jobs currently sitting at one stage.
type StageOccupancy struct {
	StageID          string         `json:"stageId"`
	StageName        string         `json:"stageName"`
	WorkflowID       string         `json:"workflowId,omitempty"`
	Order            int            `json:"order"`
	Count            int            `json:"count"`
	AvgDaysInStage   float64        `json:"avgDaysInStage"`
	PriorityCounts   map[int]int    `json:"priorityCounts"`
	WorkcenterCounts map[string]int `json:"workcenterCounts"`
	OverdueCount     int            `json:"overdueCount"`
	WIPLimit         int            `json:"wipLimit,omitempty"`
	OverLimit        bool           `json:"overLimit"`
}

// Stage ids are only unique within a workflow.
type occupancyKey struct {
	workflowID string
	stageID    string
}

// StageOccupancy buckets every job by its workflow and current stage
// regardless of run history. Days in stage use the stage entry time when tracked, else the job
// creation time. Results are ordered by workflow, stage order, then stage id.
func (e *Engine) StageOccupancy(jobs []production.Job, workflows []production.Workflow) []StageOccupancy {
	now := e.now()
	byWorkflow := indexWorkflows(workflows)
	buckets := make(map[occupancyKey]*StageOccupancy)
	daysTotal := make(map[occupancyKey]float64)

	for _, job := range jobs {
		stageID := strings.TrimSpace(job.CurrentStageID)
		if stageID == "" {
			continue
		}
		key := occupancyKey{workflowID: job.WorkflowID, stageID: stageID}
		entry, ok := buckets[key]
		if !ok {
			entry = &StageOccupancy{
				StageID:          stageID,
				StageName:        stageID,
				WorkflowID:       job.WorkflowID,
				PriorityCounts:   make(map[int]int),
				WorkcenterCounts: make(map[string]int),
			}
			if wf, found := byWorkflow[job.WorkflowID]; found {
				if stage, found := wf.StageByID(stageID); found {
					entry.StageName = stage.DisplayName()
					entry.Order = stage.Order
					entry.WIPLimit = stage.WIPLimit
				}
			}
			buckets[key] = entry
		}

		entry.Count++
		entry.PriorityCounts[job.Priority]++
		workcenter := strings.TrimSpace(job.WorkcenterID)
		if workcenter == "" {
			workcenter = UnassignedWorkcenter
		}
		entry.WorkcenterCounts[workcenter]++
		if !job.DueDate.IsZero() && job.DueDate.Before(now) && !job.Status.IsTerminal() {
			entry.OverdueCount++
		}

		entered := job.StageEnteredAt
		if entered.IsZero() {
			entered = job.CreatedAt
		}
		daysTotal[key] += daysSince(now, entered)
	}

	out := make([]StageOccupancy, 0, len(buckets))
	for key, entry := range buckets {
		entry.AvgDaysInStage = daysTotal[key] / float64(entry.Count)
		entry.OverLimit = entry.WIPLimit > 0 && entry.Count > entry.WIPLimit
		out = append(out, *entry)
	}
	slices.SortStableFunc(out, func(a, b StageOccupancy) int {
		if c := strings.Compare(a.WorkflowID, b.WorkflowID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return strings.Compare(a.StageID, b.StageID)
	})
	return out
}
