package reconcile

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"stageflow/internal/production"
)

// WIPJob is one job's contribution to a stage transition.
type WIPJob struct {
	JobID            string  `json:"jobId"`
	JobCode          string  `json:"jobCode,omitempty"`
	JobName          string  `json:"jobName,omitempty"`
	Priority         int     `json:"priority"`
	PreviousOutput   float64 `json:"previousOutput"`
	CurrentInput     float64 `json:"currentInput"`
	Quantity         float64 `json:"quantity"`
	UOM              string  `json:"uom"`
	DaysInTransition float64 `json:"daysInTransition"`
}

// WIPTransition accumulates quantity produced at one stage but not yet
// consumed by the next, across all jobs.
type WIPTransition struct {
	FromStageID   string   `json:"fromStageId"`
	FromStageName string   `json:"fromStageName"`
	ToStageID     string   `json:"toStageId"`
	ToStageName   string   `json:"toStageName"`
	UOM           string   `json:"uom"`
	Quantity      float64  `json:"quantity"`
	JobCount      int      `json:"jobCount"`
	Jobs          []WIPJob `json:"jobs"`
}

// WIPTransitions computes the quantity sitting between every pair of adjacent
// stages, sorted by quantity descending. Only positive WIP is reported.
func (e *Engine) WIPTransitions(
	jobs []production.Job,
	runsByJob map[string][]production.Run,
	workflows []production.Workflow,
) []WIPTransition {
	return e.transitions(e.now(), e.flows(jobs, runsByJob, workflows))
}

type transitionKey struct {
	from string
	to   string
}

func (e *Engine) transitions(now time.Time, flows []jobFlow) []WIPTransition {
	buckets := make(map[transitionKey]*WIPTransition)
	for _, f := range flows {
		prev, ok := f.chain.Previous(f.index)
		if !ok {
			continue
		}
		current := f.current()
		previousOutput := f.runs.Output(prev.ID)
		currentInput := f.runs.Output(current.ID)
		wip := previousOutput - currentInput
		if wip <= 0 {
			continue
		}

		key := transitionKey{from: prev.ID, to: current.ID}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &WIPTransition{
				FromStageID:   prev.ID,
				FromStageName: prev.DisplayName(),
				ToStageID:     current.ID,
				ToStageName:   current.DisplayName(),
				UOM:           prev.UOM(),
			}
			buckets[key] = bucket
		}
		_, lastAt, _ := f.runs.Latest(prev.ID, now)
		bucket.Quantity += wip
		bucket.JobCount++
		bucket.Jobs = append(bucket.Jobs, WIPJob{
			JobID:            f.job.ID,
			JobCode:          f.job.Code,
			JobName:          f.job.Name,
			Priority:         f.job.Priority,
			PreviousOutput:   previousOutput,
			CurrentInput:     currentInput,
			Quantity:         wip,
			UOM:              prev.UOM(),
			DaysInTransition: daysSince(now, lastAt),
		})
	}

	out := make([]WIPTransition, 0, len(buckets))
	for _, bucket := range buckets {
		slices.SortStableFunc(bucket.Jobs, func(a, b WIPJob) int {
			if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
				return c
			}
			return strings.Compare(a.JobID, b.JobID)
		})
		out = append(out, *bucket)
	}
	slices.SortStableFunc(out, func(a, b WIPTransition) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := strings.Compare(a.FromStageID, b.FromStageID); c != 0 {
			return c
		}
		return strings.Compare(a.ToStageID, b.ToStageID)
	})
	return out
}
