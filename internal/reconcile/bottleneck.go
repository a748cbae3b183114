package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"stageflow/internal/production"
)

// StageBottleneck merges stuck jobs and WIP transitions by destination stage.
type StageBottleneck struct {
	StageID          string          `json:"stageId"`
	StageName        string          `json:"stageName"`
	StuckJobCount    int             `json:"stuckJobCount"`
	TotalWIPQuantity float64         `json:"totalWipQuantity"`
	AvgDaysStuck     float64         `json:"avgDaysStuck"`
	StuckJobs        []StuckJob      `json:"stuckJobs"`
	Transitions      []WIPTransition `json:"transitions"`
}

// StageBottlenecks ranks stages by the WIP waiting to enter them. Stuck jobs
// and transitions are computed once against the same captured clock.
func (e *Engine) StageBottlenecks(
	jobs []production.Job,
	runsByJob map[string][]production.Run,
	workflows []production.Workflow,
	workcenters []production.Workcenter,
) []StageBottleneck {
	now := e.now()
	flows := e.flows(jobs, runsByJob, workflows)
	return MergeBottlenecks(
		e.detectStuck(now, flows, indexWorkcenters(workcenters)),
		e.transitions(now, flows),
	)
}

// MergeBottlenecks groups stuck jobs by their destination stage and
// transitions by their destination stage, sorted by total WIP descending.
func MergeBottlenecks(stuck []StuckJob, transitions []WIPTransition) []StageBottleneck {
	byStage := make(map[string]*StageBottleneck)
	daysTotal := make(map[string]float64)
	get := func(id, name string) *StageBottleneck {
		entry, ok := byStage[id]
		if !ok {
			entry = &StageBottleneck{
				StageID:     id,
				StageName:   name,
				StuckJobs:   []StuckJob{},
				Transitions: []WIPTransition{},
			}
			byStage[id] = entry
		}
		return entry
	}

	for _, job := range stuck {
		entry := get(job.ToStageID, job.ToStageName)
		entry.StuckJobCount++
		entry.StuckJobs = append(entry.StuckJobs, job)
		daysTotal[job.ToStageID] += job.DaysStuck
	}
	for _, transition := range transitions {
		entry := get(transition.ToStageID, transition.ToStageName)
		entry.TotalWIPQuantity += transition.Quantity
		entry.Transitions = append(entry.Transitions, transition)
	}

	out := make([]StageBottleneck, 0, len(byStage))
	for id, entry := range byStage {
		if entry.StuckJobCount > 0 {
			entry.AvgDaysStuck = daysTotal[id] / float64(entry.StuckJobCount)
		}
		out = append(out, *entry)
	}
	slices.SortStableFunc(out, func(a, b StageBottleneck) int {
		if c := cmp.Compare(b.TotalWIPQuantity, a.TotalWIPQuantity); c != 0 {
			return c
		}
		if c := cmp.Compare(b.StuckJobCount, a.StuckJobCount); c != 0 {
			return c
		}
		return strings.Compare(a.StageID, b.StageID)
	})
	return out
}
