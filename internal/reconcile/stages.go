package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"stageflow/internal/production"
)

// StageChain is the ordered list of stages a job traverses.
type StageChain []production.Stage

// ResolveStages orders the workflow stages and restricts them to the job's
// planned stages. When the job plans no stages, or none of its planned stages
// exist in the workflow, the full ordered list is returned. The result keeps
// workflow order regardless of the order of PlannedStageIDs.
func ResolveStages(job production.Job, wf production.Workflow) StageChain {
	ordered := make([]production.Stage, len(wf.Stages))
	copy(ordered, wf.Stages)
	slices.SortStableFunc(ordered, func(a, b production.Stage) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	planned := make(map[string]struct{}, len(job.PlannedStageIDs))
	for _, id := range job.PlannedStageIDs {
		if id = strings.TrimSpace(id); id != "" {
			planned[id] = struct{}{}
		}
	}
	if len(planned) == 0 {
		return ordered
	}

	filtered := make([]production.Stage, 0, len(planned))
	for _, stage := range ordered {
		if _, ok := planned[stage.ID]; ok {
			filtered = append(filtered, stage)
		}
	}
	if len(filtered) == 0 {
		return ordered
	}
	return filtered
}

// IndexOf returns the position of the stage in the chain, or -1.
func (c StageChain) IndexOf(stageID string) int {
	if stageID == "" {
		return -1
	}
	for i, stage := range c {
		if stage.ID == stageID {
			return i
		}
	}
	return -1
}

// Previous returns the stage before index i.
func (c StageChain) Previous(i int) (production.Stage, bool) {
	if i <= 0 || i > len(c) {
		return production.Stage{}, false
	}
	return c[i-1], true
}

// Next returns the stage after index i.
func (c StageChain) Next(i int) (production.Stage, bool) {
	if i < 0 || i+1 >= len(c) {
		return production.Stage{}, false
	}
	return c[i+1], true
}
