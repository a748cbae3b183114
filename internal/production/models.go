package production

import (
	"strings"
	"time"
)

// JobStatus represents the lifecycle of a job in the production-tracking system.
type JobStatus string

const (
	StatusDraft      JobStatus = "draft"
	StatusReleased   JobStatus = "released"
	StatusInProgress JobStatus = "in_progress"
	StatusBlocked    JobStatus = "blocked"
	StatusDone       JobStatus = "done"
	StatusCancelled  JobStatus = "cancelled"
)

var allStatuses = []JobStatus{
	StatusDraft,
	StatusReleased,
	StatusInProgress,
	StatusBlocked,
	StatusDone,
	StatusCancelled,
}

// AllStatuses returns every known job status in lifecycle order.
func AllStatuses() []JobStatus {
	out := make([]JobStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalizes a raw status string. Unknown or empty values map to
// StatusDraft so that unrecognized jobs are never treated as terminal.
func ParseStatus(raw string) JobStatus {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	value = strings.ReplaceAll(value, " ", "_")
	switch value {
	case "canceled":
		return StatusCancelled
	case "inprogress":
		return StatusInProgress
	}
	for _, status := range allStatuses {
		if string(status) == value {
			return status
		}
	}
	return StatusDraft
}

// IsTerminal reports whether the status ends the job lifecycle.
func (s JobStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Stage is one step of a workflow. Order is unique within the workflow and
// defines traversal order.
type Stage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Order positions the stage in the linear chain; lower runs first.
	Order int `json:"order"`
	// WIPLimit caps the number of jobs expected at the stage. Zero means no limit.
	WIPLimit  int    `json:"wipLimit,omitempty"`
	InputUOM  string `json:"inputUOM,omitempty"`
	OutputUOM string `json:"outputUOM,omitempty"`
}

// UOM returns the unit the stage reports its output in, falling back to the
// input unit when no output unit is configured.
func (s Stage) UOM() string {
	if uom := strings.TrimSpace(s.OutputUOM); uom != "" {
		return uom
	}
	return strings.TrimSpace(s.InputUOM)
}

// DisplayName returns the stage name, or its identifier when unnamed.
func (s Stage) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.ID
}

// Workflow is an ordered set of stages shared by many jobs.
type Workflow struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspaceId,omitempty"`
	Name        string  `json:"name"`
	Stages      []Stage `json:"stages"`
}

// StageByID returns the stage with the given identifier.
func (w Workflow) StageByID(id string) (Stage, bool) {
	for _, stage := range w.Stages {
		if stage.ID == id {
			return stage, true
		}
	}
	return Stage{}, false
}

// BOMLine is one required-material line on a job.
type BOMLine struct {
	SKU         string  `json:"sku,omitempty"`
	Name        string  `json:"name,omitempty"`
	UOM         string  `json:"uom"`
	QtyRequired float64 `json:"qtyRequired"`
}

// Packaging carries planned and actual box/pallet counts. Absent counts are zero.
type Packaging struct {
	PlannedBoxes   float64 `json:"plannedBoxes,omitempty"`
	ActualBoxes    float64 `json:"actualBoxes,omitempty"`
	PlannedPallets float64 `json:"plannedPallets,omitempty"`
	ActualPallets  float64 `json:"actualPallets,omitempty"`
	// PcsPerBox defaults to 1 when absent or non-positive; see PiecesPerBox.
	PcsPerBox float64 `json:"pcsPerBox,omitempty"`
}

// PiecesPerBox applies the default-value policy for PcsPerBox.
func (p Packaging) PiecesPerBox() float64 {
	if p.PcsPerBox <= 0 {
		return 1
	}
	return p.PcsPerBox
}

// OutputLine is a planned output of the job (first line is the primary product).
type OutputLine struct {
	SKU        string  `json:"sku,omitempty"`
	Name       string  `json:"name,omitempty"`
	QtyPlanned float64 `json:"qtyPlanned"`
}

// Job is a manufacturing order moving through a workflow.
type Job struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId,omitempty"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	WorkflowID  string `json:"workflowId"`
	// CurrentStageID must belong to the resolved stage chain; otherwise the
	// job is excluded from stage-flow reports.
	CurrentStageID string `json:"currentStageId"`
	// PlannedStageIDs restricts the chain to a subset of workflow stages when non-empty.
	PlannedStageIDs []string  `json:"plannedStageIds,omitempty"`
	Status          JobStatus `json:"status"`
	Priority        int       `json:"priority"`
	// DueDate is zero when the job has no due date.
	DueDate  time.Time `json:"dueDate,omitzero"`
	Quantity float64   `json:"quantity,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	// NumberUp is the pieces-per-sheet factor; values <= 0 mean 1 (see UpFactor).
	NumberUp     float64      `json:"numberUp,omitempty"`
	BOM          []BOMLine    `json:"bom,omitempty"`
	Packaging    *Packaging   `json:"packaging,omitempty"`
	Outputs      []OutputLine `json:"outputs,omitempty"`
	WorkcenterID string       `json:"workcenterId,omitempty"`
	// StageEnteredAt records when the job arrived at its current stage; zero when untracked.
	StageEnteredAt time.Time `json:"stageEnteredAt,omitzero"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// UpFactor applies the default-value policy for NumberUp.
func (j Job) UpFactor() float64 {
	if j.NumberUp <= 0 {
		return 1
	}
	return j.NumberUp
}

// Label returns the most human-friendly identifier available for the job.
func (j Job) Label() string {
	if code := strings.TrimSpace(j.Code); code != "" {
		return code
	}
	if name := strings.TrimSpace(j.Name); name != "" {
		return name
	}
	return j.ID
}

// Run is an immutable production event for one job at one stage.
type Run struct {
	ID           string    `json:"id"`
	JobID        string    `json:"jobId"`
	StageID      string    `json:"stageId"`
	QtyGood      float64   `json:"qtyGood"`
	QtyScrap     float64   `json:"qtyScrap,omitempty"`
	Lot          string    `json:"lot,omitempty"`
	WorkcenterID string    `json:"workcenterId,omitempty"`
	OperatorID   string    `json:"operatorId,omitempty"`
	At           time.Time `json:"at,omitzero"`
	// TransferSourceRunIDs lists the earlier runs whose quantity this run moves.
	// A non-empty list marks the run as a transfer rather than new production.
	TransferSourceRunIDs []string `json:"transferSourceRunIds,omitempty"`
}

// IsTransfer reports whether the run re-attributes existing quantity.
func (r Run) IsTransfer() bool {
	for _, id := range r.TransferSourceRunIDs {
		if strings.TrimSpace(id) != "" {
			return true
		}
	}
	return false
}

// Workcenter is a machine or cell that runs and jobs are attributed to.
type Workcenter struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId,omitempty"`
	Name        string `json:"name"`
}
