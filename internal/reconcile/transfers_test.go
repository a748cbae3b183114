package reconcile_test

import (
	"testing"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

func TestValidateTransfers(t *testing.T) {
	job := newJob("j1", "pack")
	chain := reconcile.ResolveStages(job, printCutPack())
	runs := []production.Run{
		run("p1", "j1", "print", 1000, daysAgo(3)),
		run("c1", "j1", "cut", 1000, daysAgo(2)),
		run("ok", "j1", "cut", 500, daysAgo(1), "p1"),
		run("ghost", "j1", "cut", 10, daysAgo(1), "missing"),
		run("backwards", "j1", "print", 10, daysAgo(1), "c1"),
		run("foreign", "j1", "pack", 10, daysAgo(1), "x1"),
		{ID: "x1", JobID: "j2", StageID: "print", QtyGood: 5},
	}
	issues := reconcile.ValidateTransfers(job, chain, runs)
	want := map[string]string{
		"ghost":     reconcile.TransferUnknownSource,
		"backwards": reconcile.TransferSourceNotEarlier,
		"foreign":   reconcile.TransferSourceOtherJob,
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), issues)
	}
	for _, issue := range issues {
		if want[issue.RunID] != issue.Reason {
			t.Fatalf("run %s: reason %q, want %q", issue.RunID, issue.Reason, want[issue.RunID])
		}
	}
}
