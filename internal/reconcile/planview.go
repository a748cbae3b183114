package reconcile

import (
	"stageflow/internal/production"
)

// StagePlanRow explains how one stage of a job reconciles.
type StagePlanRow struct {
	Index            int       `json:"index"`
	StageID          string    `json:"stageId"`
	StageName        string    `json:"stageName"`
	Current          bool      `json:"current"`
	Plan             Plan      `json:"plan"`
	AuthenticOutput  float64   `json:"authenticOutput"`
	AuthenticRuns    int       `json:"authenticRuns"`
	TransferQuantity float64   `json:"transferQuantity"`
	TransferRuns     int       `json:"transferRuns"`
	Threshold        Threshold `json:"threshold"`
}

// StagePlan walks the job's resolved chain and reports plan, authentic
// output, and threshold per stage. It returns false when the job's current
// stage is not on its chain. Terminal jobs are explained too.
func (e *Engine) StagePlan(job production.Job, wf production.Workflow, runs []production.Run) ([]StagePlanRow, bool) {
	chain := ResolveStages(job, wf)
	index := chain.IndexOf(job.CurrentStageID)
	if index < 0 {
		return nil, false
	}
	f := jobFlow{job: job, chain: chain, index: index, runs: Classify(runs)}

	rows := make([]StagePlanRow, 0, len(chain))
	for i, stage := range chain {
		plan, threshold := e.thresholdAt(f, i)
		transferQty, transferRuns := f.runs.TransferredInto(stage.ID)
		rows = append(rows, StagePlanRow{
			Index:            i,
			StageID:          stage.ID,
			StageName:        stage.DisplayName(),
			Current:          i == index,
			Plan:             plan,
			AuthenticOutput:  f.runs.Output(stage.ID),
			AuthenticRuns:    f.runs.RunCount(stage.ID),
			TransferQuantity: transferQty,
			TransferRuns:     transferRuns,
			Threshold:        threshold,
		})
	}
	return rows, true
}
