package reconcile

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"stageflow/internal/production"
)

// StuckCase identifies which boundary a job stalled at.
type StuckCase string

const (
	// CaseStranded: the previous stage produced output but the current stage
	// has not recorded any.
	CaseStranded StuckCase = "stranded_before_current"
	// CaseNotAdvanced: the current stage met its plan but the next stage has
	// not started.
	CaseNotAdvanced StuckCase = "ready_not_advanced"
)

// StuckJob describes a job whose output stalled between two adjacent stages.
type StuckJob struct {
	JobID         string               `json:"jobId"`
	JobCode       string               `json:"jobCode,omitempty"`
	JobName       string               `json:"jobName,omitempty"`
	WorkflowID    string               `json:"workflowId"`
	Status        production.JobStatus `json:"status"`
	Case          StuckCase            `json:"case"`
	FromStageID   string               `json:"fromStageId"`
	FromStageName string               `json:"fromStageName"`
	ToStageID     string               `json:"toStageId"`
	ToStageName   string               `json:"toStageName"`
	Quantity      float64              `json:"quantity"`
	UOM           string               `json:"uom"`
	DaysStuck     float64              `json:"daysStuck"`
	LastRunAt     time.Time            `json:"lastRunAt,omitzero"`
	Priority      int                  `json:"priority"`
	DueDate       time.Time            `json:"dueDate,omitzero"`
	WorkcenterID  string               `json:"workcenterId,omitempty"`
	// Workcenter is nil when the id does not resolve.
	Workcenter *production.Workcenter `json:"workcenter,omitempty"`
}

// DetectStuckJobs finds non-terminal jobs whose output stalled between stages,
// sorted by priority then days stuck, both descending.
func (e *Engine) DetectStuckJobs(
	jobs []production.Job,
	runsByJob map[string][]production.Run,
	workflows []production.Workflow,
	workcenters []production.Workcenter,
) []StuckJob {
	return e.detectStuck(e.now(), e.flows(jobs, runsByJob, workflows), indexWorkcenters(workcenters))
}

func (e *Engine) detectStuck(now time.Time, flows []jobFlow, workcenters map[string]production.Workcenter) []StuckJob {
	out := make([]StuckJob, 0)
	for _, f := range flows {
		stuck, ok := e.classifyStuck(now, f)
		if !ok {
			continue
		}
		if id := stuck.WorkcenterID; id != "" {
			if wc, found := workcenters[id]; found {
				stuck.Workcenter = &wc
			}
		}
		out = append(out, stuck)
	}
	sortStuck(out)
	return out
}

// classifyStuck applies the stranded check first so a job is only ever
// reported at one boundary.
func (e *Engine) classifyStuck(now time.Time, f jobFlow) (StuckJob, bool) {
	current := f.current()

	if prev, ok := f.chain.Previous(f.index); ok {
		if f.runs.Output(prev.ID) > 0 && !f.runs.HasRuns(current.ID) {
			run, at, _ := f.runs.Latest(prev.ID, now)
			return newStuckJob(f, CaseStranded, prev, current, f.runs.Output(prev.ID), run, at, now), true
		}
	}

	next, ok := f.chain.Next(f.index)
	if !ok || !f.runs.HasRuns(current.ID) || f.runs.HasRuns(next.ID) {
		return StuckJob{}, false
	}
	if _, threshold := e.thresholdAt(f, f.index); !threshold.Met {
		return StuckJob{}, false
	}
	run, at, _ := f.runs.Latest(current.ID, now)
	return newStuckJob(f, CaseNotAdvanced, current, next, f.runs.Output(current.ID), run, at, now), true
}

func newStuckJob(f jobFlow, kind StuckCase, from, to production.Stage, qty float64, run production.Run, lastAt, now time.Time) StuckJob {
	workcenterID := strings.TrimSpace(f.job.WorkcenterID)
	if workcenterID == "" {
		workcenterID = strings.TrimSpace(run.WorkcenterID)
	}
	return StuckJob{
		JobID:         f.job.ID,
		JobCode:       f.job.Code,
		JobName:       f.job.Name,
		WorkflowID:    f.job.WorkflowID,
		Status:        f.job.Status,
		Case:          kind,
		FromStageID:   from.ID,
		FromStageName: from.DisplayName(),
		ToStageID:     to.ID,
		ToStageName:   to.DisplayName(),
		Quantity:      qty,
		UOM:           from.UOM(),
		DaysStuck:     daysSince(now, lastAt),
		LastRunAt:     lastAt,
		Priority:      f.job.Priority,
		DueDate:       f.job.DueDate,
		WorkcenterID:  workcenterID,
	}
}

func sortStuck(jobs []StuckJob) {
	slices.SortStableFunc(jobs, func(a, b StuckJob) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(b.DaysStuck, a.DaysStuck); c != 0 {
			return c
		}
		return strings.Compare(a.JobID, b.JobID)
	})
}
