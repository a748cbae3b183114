package production_test

import (
	"testing"

	"stageflow/internal/production"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want production.JobStatus
	}{
		{"released", production.StatusReleased},
		{" In Progress ", production.StatusInProgress},
		{"in-progress", production.StatusInProgress},
		{"DONE", production.StatusDone},
		{"canceled", production.StatusCancelled},
		{"", production.StatusDraft},
		{"archived", production.StatusDraft},
	}
	for _, tc := range cases {
		if got := production.ParseStatus(tc.raw); got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range production.AllStatuses() {
		want := status == production.StatusDone || status == production.StatusCancelled
		if status.IsTerminal() != want {
			t.Fatalf("%s: IsTerminal = %v, want %v", status, status.IsTerminal(), want)
		}
	}
}

func TestStageUOMFallsBackToInput(t *testing.T) {
	stage := production.Stage{ID: "s1", InputUOM: "sheets"}
	if stage.UOM() != "sheets" {
		t.Fatalf("expected input UOM fallback, got %q", stage.UOM())
	}
	stage.OutputUOM = "cartons"
	if stage.UOM() != "cartons" {
		t.Fatalf("expected output UOM, got %q", stage.UOM())
	}
	if stage.DisplayName() != "s1" {
		t.Fatalf("expected id as display name, got %q", stage.DisplayName())
	}
}

func TestDefaultValuePolicies(t *testing.T) {
	var job production.Job
	if job.UpFactor() != 1 {
		t.Fatalf("expected numberUp default 1, got %v", job.UpFactor())
	}
	job.NumberUp = 6
	if job.UpFactor() != 6 {
		t.Fatalf("expected numberUp 6, got %v", job.UpFactor())
	}
	var pkg production.Packaging
	if pkg.PiecesPerBox() != 1 {
		t.Fatalf("expected pcsPerBox default 1, got %v", pkg.PiecesPerBox())
	}
}

func TestRunIsTransfer(t *testing.T) {
	if (production.Run{}).IsTransfer() {
		t.Fatal("run without sources must be authentic")
	}
	if (production.Run{TransferSourceRunIDs: []string{" "}}).IsTransfer() {
		t.Fatal("blank source ids must not mark a transfer")
	}
	if !(production.Run{TransferSourceRunIDs: []string{"r1"}}).IsTransfer() {
		t.Fatal("expected transfer")
	}
}

func TestClassifyUOM(t *testing.T) {
	cases := map[string]production.UOMDomain{
		"sheets":  production.DomainSheets,
		"Sheet":   production.DomainSheets,
		"cartoon": production.DomainCartons,
		"Boxes":   production.DomainCartons,
		"ctn.":    production.DomainCartons,
		"kg":      production.DomainOther,
		"":        production.DomainOther,
	}
	for raw, want := range cases {
		if got := production.ClassifyUOM(raw); got != want {
			t.Fatalf("ClassifyUOM(%q) = %v, want %v", raw, got, want)
		}
	}
}
