package reconcile

import (
	"time"

	"stageflow/internal/production"
)

// Partition separates a job's run history into authentic production and
// transfers. Stage totals are derived from Authentic only so a unit is counted
// once, at the stage where it was produced.
type Partition struct {
	Authentic []production.Run
	Transfer  []production.Run

	byStage map[string]stageTotals
}

type stageTotals struct {
	output float64
	runs   int
}

// Classify partitions runs. Input order is preserved within each side.
func Classify(runs []production.Run) Partition {
	p := Partition{byStage: make(map[string]stageTotals)}
	for _, run := range runs {
		if run.IsTransfer() {
			p.Transfer = append(p.Transfer, run)
			continue
		}
		p.Authentic = append(p.Authentic, run)
		totals := p.byStage[run.StageID]
		totals.output += run.QtyGood
		totals.runs++
		p.byStage[run.StageID] = totals
	}
	return p
}

// Output returns the authentic good quantity recorded at a stage.
func (p Partition) Output(stageID string) float64 {
	return p.byStage[stageID].output
}

// RunCount returns the number of authentic runs recorded at a stage.
func (p Partition) RunCount(stageID string) int {
	return p.byStage[stageID].runs
}

// HasRuns reports whether any authentic run exists at a stage.
func (p Partition) HasRuns(stageID string) bool {
	return p.byStage[stageID].runs > 0
}

// TransferredInto returns the quantity moved into a stage by transfer runs.
func (p Partition) TransferredInto(stageID string) (float64, int) {
	var qty float64
	var count int
	for _, run := range p.Transfer {
		if run.StageID == stageID {
			qty += run.QtyGood
			count++
		}
	}
	return qty, count
}

// Latest returns the most recent authentic run at a stage along with its
// effective timestamp. Runs without a timestamp count as now.
func (p Partition) Latest(stageID string, now time.Time) (production.Run, time.Time, bool) {
	var (
		latest   production.Run
		latestAt time.Time
		found    bool
	)
	for _, run := range p.Authentic {
		if run.StageID != stageID {
			continue
		}
		at := run.At
		if at.IsZero() {
			at = now
		}
		if !found || at.After(latestAt) {
			latest, latestAt, found = run, at, true
		}
	}
	return latest, latestAt, found
}
