package reconcile_test

import (
	"testing"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

func TestStagePlanExplainsEveryStage(t *testing.T) {
	job := newJob("j1", "pack")
	runs := []production.Run{
		run("p1", "j1", "print", 1000, daysAgo(3)),
		run("c1", "j1", "cut", 100, daysAgo(2)),
		run("c2", "j1", "cut", 100, daysAgo(2), "p1"),
	}
	rows, ok := newEngine().StagePlan(job, printCutPack(), runs)
	if !ok || len(rows) != 3 {
		t.Fatalf("expected three rows, got %+v (ok=%v)", rows, ok)
	}
	if rows[0].Plan.Quantity != 0 || rows[0].Threshold.Met {
		t.Fatalf("print has no planning data: %+v", rows[0])
	}
	if rows[1].Plan.Quantity != 1000 || rows[1].AuthenticOutput != 100 || rows[1].TransferRuns != 1 || rows[1].TransferQuantity != 100 {
		t.Fatalf("unexpected cut row %+v", rows[1])
	}
	if rows[1].Plan.Strategy != reconcile.StrategyPriorStageOutput || rows[2].Plan.Strategy != reconcile.StrategyPriorStageOutput {
		t.Fatalf("expected prior stage output plans, got %q and %q", rows[1].Plan.Strategy, rows[2].Plan.Strategy)
	}
	if rows[2].Plan.Quantity != 1000 || rows[2].Plan.UOM != "cartoon" || !rows[2].Current {
		t.Fatalf("pack plan should convert 100 sheets at 10-up, got %+v", rows[2])
	}

	job.CurrentStageID = "nowhere"
	if _, ok := newEngine().StagePlan(job, printCutPack(), runs); ok {
		t.Fatal("expected false for a current stage outside the chain")
	}
}
