package reconcile_test

import (
	"testing"

	"stageflow/internal/production"
	"stageflow/internal/reconcile"
)

func TestStageOccupancyCensus(t *testing.T) {
	wf := printCutPack()
	wf.Stages[2].WIPLimit = 1 // cut

	a := newJob("a", "cut")
	a.Priority = 3
	a.WorkcenterID = "wc-1"
	a.StageEnteredAt = daysAgo(2)
	a.DueDate = daysAgo(1)

	b := newJob("b", "cut")
	b.Priority = 3
	b.CreatedAt = daysAgo(4)
	b.DueDate = daysAgo(1)
	b.Status = production.StatusDone

	c := newJob("c", "print")
	c.Priority = 1

	none := newJob("none", "")
	orphan := newJob("orphan", "laminate")
	orphan.WorkflowID = "wf-missing"

	got := newEngine().StageOccupancy([]production.Job{a, b, c, none, orphan}, []production.Workflow{wf})
	if len(got) != 3 {
		t.Fatalf("expected three stages, got %+v", got)
	}

	byID := map[string]reconcile.StageOccupancy{}
	for _, entry := range got {
		byID[entry.StageID] = entry
	}

	cut := byID["cut"]
	if cut.Count != 2 || cut.StageName != "Cut" || cut.Order != 2 {
		t.Fatalf("unexpected cut entry %+v", cut)
	}
	if cut.AvgDaysInStage != 3 {
		t.Fatalf("expected average of 2 and 4 days, got %v", cut.AvgDaysInStage)
	}
	if cut.OverdueCount != 1 {
		t.Fatalf("terminal jobs must not count as overdue, got %d", cut.OverdueCount)
	}
	if cut.PriorityCounts[3] != 2 {
		t.Fatalf("unexpected priority histogram %+v", cut.PriorityCounts)
	}
	if cut.WorkcenterCounts["wc-1"] != 1 || cut.WorkcenterCounts[reconcile.UnassignedWorkcenter] != 1 {
		t.Fatalf("unexpected workcenter histogram %+v", cut.WorkcenterCounts)
	}
	if !cut.OverLimit || cut.WIPLimit != 1 {
		t.Fatalf("expected cut over its WIP limit, got %+v", cut)
	}

	printStage := byID["print"]
	if printStage.Count != 1 || printStage.OverLimit || printStage.AvgDaysInStage != 0 {
		t.Fatalf("unexpected print entry %+v", printStage)
	}

	if byID["laminate"].StageName != "laminate" {
		t.Fatalf("unknown stage should fall back to its id, got %+v", byID["laminate"])
	}
	if got[0].StageID != "print" || got[1].StageID != "cut" {
		t.Fatalf("expected stage order within workflow, got %s, %s", got[0].StageID, got[1].StageID)
	}
}

func TestStageOccupancySeparatesWorkflowsSharingStageIDs(t *testing.T) {
	wa := production.Workflow{ID: "wa", Stages: []production.Stage{{ID: "print", Name: "Print A", Order: 1, WIPLimit: 1}}}
	wb := production.Workflow{ID: "wb", Stages: []production.Stage{{ID: "print", Name: "Print B", Order: 1, WIPLimit: 5}}}

	a := newJob("a", "print")
	a.WorkflowID = "wa"
	b1 := newJob("b1", "print")
	b1.WorkflowID = "wb"
	b2 := newJob("b2", "print")
	b2.WorkflowID = "wb"

	got := newEngine().StageOccupancy([]production.Job{b1, a, b2}, []production.Workflow{wa, wb})
	if len(got) != 2 {
		t.Fatalf("expected one row per workflow, got %+v", got)
	}

	tests := []struct {
		workflow string
		name     string
		count    int
		limit    int
	}{
		{workflow: "wa", name: "Print A", count: 1, limit: 1},
		{workflow: "wb", name: "Print B", count: 2, limit: 5},
	}
	for i, tc := range tests {
		entry := got[i]
		if entry.WorkflowID != tc.workflow || entry.StageID != "print" || entry.StageName != tc.name {
			t.Fatalf("row %d: unexpected identity %+v", i, entry)
		}
		if entry.Count != tc.count || entry.WIPLimit != tc.limit || entry.OverLimit {
			t.Fatalf("row %d: unexpected census %+v", i, entry)
		}
	}
}
