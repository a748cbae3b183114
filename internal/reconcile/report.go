package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReportKind names one of the engine's reports.
type ReportKind string

const (
	ReportOccupancy   ReportKind = "occupancy"
	ReportStuck       ReportKind = "stuck"
	ReportWIP         ReportKind = "wip"
	ReportBottlenecks ReportKind = "bottlenecks"
)

// ErrUnknownReport is returned by ParseReportKind for unrecognized names.
var ErrUnknownReport = errors.New("unknown report")

// ReportKinds lists every report in display order.
func ReportKinds() []ReportKind {
	return []ReportKind{ReportOccupancy, ReportStuck, ReportWIP, ReportBottlenecks}
}

// ParseReportKind maps a user-supplied name onto a ReportKind.
func ParseReportKind(raw string) (ReportKind, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "transitions":
		return ReportWIP, nil
	case "bottleneck":
		return ReportBottlenecks, nil
	}
	for _, kind := range ReportKinds() {
		if string(kind) == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownReport, raw)
}

// Report is the envelope returned by Engine.Report. Only the section matching
// Kind is populated.
type Report struct {
	Kind        ReportKind        `json:"kind"`
	WorkspaceID string            `json:"workspaceId,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Occupancy   []StageOccupancy  `json:"occupancy,omitempty"`
	Stuck       []StuckJob        `json:"stuck,omitempty"`
	Transitions []WIPTransition   `json:"transitions,omitempty"`
	Bottlenecks []StageBottleneck `json:"bottlenecks,omitempty"`
}

// Report computes one report over a snapshot with the clock pinned to the
// snapshot's capture time.
func (e *Engine) Report(kind ReportKind, s *Snapshot) Report {
	if s == nil {
		s = &Snapshot{}
	}
	pinned := e.ForSnapshot(s)
	now := pinned.now()
	pinned = pinned.AsOf(now)

	report := Report{Kind: kind, WorkspaceID: s.WorkspaceID, GeneratedAt: now}
	switch kind {
	case ReportOccupancy:
		report.Occupancy = pinned.StageOccupancy(s.Jobs, s.Workflows)
	case ReportStuck:
		report.Stuck = pinned.DetectStuckJobs(s.Jobs, s.Runs, s.Workflows, s.Workcenters)
	case ReportWIP:
		report.Transitions = pinned.WIPTransitions(s.Jobs, s.Runs, s.Workflows)
	case ReportBottlenecks:
		report.Bottlenecks = pinned.StageBottlenecks(s.Jobs, s.Runs, s.Workflows, s.Workcenters)
	}
	return report
}

// Len returns the number of rows in the populated section.
func (r Report) Len() int {
	switch r.Kind {
	case ReportOccupancy:
		return len(r.Occupancy)
	case ReportStuck:
		return len(r.Stuck)
	case ReportWIP:
		return len(r.Transitions)
	case ReportBottlenecks:
		return len(r.Bottlenecks)
	default:
		return 0
	}
}
