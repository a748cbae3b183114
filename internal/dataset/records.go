package dataset

import (
	"strings"

	"stageflow/internal/production"
)

type stageRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     Number `json:"order"`
	WIPLimit  Number `json:"wipLimit"`
	InputUOM  string `json:"inputUOM"`
	OutputUOM string `json:"outputUOM"`
}

type workflowRecord struct {
	ID          string        `json:"id"`
	WorkspaceID string        `json:"workspaceId"`
	Name        string        `json:"name"`
	Stages      []stageRecord `json:"stages"`
}

type bomRecord struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	UOM         string `json:"uom"`
	QtyRequired Number `json:"qtyRequired"`
}

type packagingRecord struct {
	PlannedBoxes   Number `json:"plannedBoxes"`
	ActualBoxes    Number `json:"actualBoxes"`
	PlannedPallets Number `json:"plannedPallets"`
	ActualPallets  Number `json:"actualPallets"`
	PcsPerBox      Number `json:"pcsPerBox"`
}

type outputRecord struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	QtyPlanned Number `json:"qtyPlanned"`
}

type jobRecord struct {
	ID              string           `json:"id"`
	WorkspaceID     string           `json:"workspaceId"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	WorkflowID      string           `json:"workflowId"`
	CurrentStageID  string           `json:"currentStageId"`
	PlannedStageIDs IDList           `json:"plannedStageIds"`
	Status          string           `json:"status"`
	Priority        Number           `json:"priority"`
	DueDate         Timestamp        `json:"dueDate"`
	Quantity        Number           `json:"quantity"`
	Unit            string           `json:"unit"`
	NumberUp        Number           `json:"numberUp"`
	BOM             []bomRecord      `json:"bom"`
	Packaging       *packagingRecord `json:"packaging"`
	Outputs         []outputRecord   `json:"outputs"`
	WorkcenterID    string           `json:"workcenterId"`
	StageEnteredAt  Timestamp        `json:"stageEnteredAt"`
	CreatedAt       Timestamp        `json:"createdAt"`
	UpdatedAt       Timestamp        `json:"updatedAt"`
}

type runRecord struct {
	ID                   string    `json:"id"`
	JobID                string    `json:"jobId"`
	StageID              string    `json:"stageId"`
	QtyGood              Number    `json:"qtyGood"`
	QtyScrap             Number    `json:"qtyScrap"`
	Lot                  string    `json:"lot"`
	WorkcenterID         string    `json:"workcenterId"`
	OperatorID           string    `json:"operatorId"`
	At                   Timestamp `json:"at"`
	TransferSourceRunIDs IDList    `json:"transferSourceRunIds"`
}

type workcenterRecord struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
}

type document struct {
	WorkspaceID string             `json:"workspaceId"`
	Workflows   []workflowRecord   `json:"workflows"`
	Jobs        []jobRecord        `json:"jobs"`
	Workcenters []workcenterRecord `json:"workcenters"`
	Runs        []runRecord        `json:"runs"`
}

func (r workflowRecord) toWorkflow(workspaceID string) production.Workflow {
	wf := production.Workflow{
		ID:          strings.TrimSpace(r.ID),
		WorkspaceID: orDefault(r.WorkspaceID, workspaceID),
		Name:        strings.TrimSpace(r.Name),
	}
	for _, s := range r.Stages {
		wf.Stages = append(wf.Stages, production.Stage{
			ID:        strings.TrimSpace(s.ID),
			Name:      strings.TrimSpace(s.Name),
			Order:     int(s.Order),
			WIPLimit:  int(s.WIPLimit),
			InputUOM:  strings.TrimSpace(s.InputUOM),
			OutputUOM: strings.TrimSpace(s.OutputUOM),
		})
	}
	return wf
}

func (r jobRecord) toJob(workspaceID string) production.Job {
	job := production.Job{
		ID:              strings.TrimSpace(r.ID),
		WorkspaceID:     orDefault(r.WorkspaceID, workspaceID),
		Code:            strings.TrimSpace(r.Code),
		Name:            strings.TrimSpace(r.Name),
		WorkflowID:      strings.TrimSpace(r.WorkflowID),
		CurrentStageID:  strings.TrimSpace(r.CurrentStageID),
		PlannedStageIDs: []string(r.PlannedStageIDs),
		Status:          production.ParseStatus(r.Status),
		Priority:        int(r.Priority),
		DueDate:         r.DueDate.Time,
		Quantity:        r.Quantity.Float(),
		Unit:            strings.TrimSpace(r.Unit),
		NumberUp:        r.NumberUp.Float(),
		WorkcenterID:    strings.TrimSpace(r.WorkcenterID),
		StageEnteredAt:  r.StageEnteredAt.Time,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}
	if job.NumberUp <= 0 {
		job.NumberUp = 1
	}
	for _, line := range r.BOM {
		job.BOM = append(job.BOM, production.BOMLine{
			SKU:         strings.TrimSpace(line.SKU),
			Name:        strings.TrimSpace(line.Name),
			UOM:         strings.TrimSpace(line.UOM),
			QtyRequired: line.QtyRequired.Float(),
		})
	}
	if p := r.Packaging; p != nil {
		job.Packaging = &production.Packaging{
			PlannedBoxes:   p.PlannedBoxes.Float(),
			ActualBoxes:    p.ActualBoxes.Float(),
			PlannedPallets: p.PlannedPallets.Float(),
			ActualPallets:  p.ActualPallets.Float(),
			PcsPerBox:      p.PcsPerBox.Float(),
		}
		if job.Packaging.PcsPerBox <= 0 {
			job.Packaging.PcsPerBox = 1
		}
	}
	for _, out := range r.Outputs {
		job.Outputs = append(job.Outputs, production.OutputLine{
			SKU:        strings.TrimSpace(out.SKU),
			Name:       strings.TrimSpace(out.Name),
			QtyPlanned: out.QtyPlanned.Float(),
		})
	}
	return job
}

func (r runRecord) toRun() production.Run {
	return production.Run{
		ID:                   strings.TrimSpace(r.ID),
		JobID:                strings.TrimSpace(r.JobID),
		StageID:              strings.TrimSpace(r.StageID),
		QtyGood:              r.QtyGood.Float(),
		QtyScrap:             r.QtyScrap.Float(),
		Lot:                  strings.TrimSpace(r.Lot),
		WorkcenterID:         strings.TrimSpace(r.WorkcenterID),
		OperatorID:           strings.TrimSpace(r.OperatorID),
		At:                   r.At.Time,
		TransferSourceRunIDs: []string(r.TransferSourceRunIDs),
	}
}

func (r workcenterRecord) toWorkcenter(workspaceID string) production.Workcenter {
	return production.Workcenter{
		ID:          strings.TrimSpace(r.ID),
		WorkspaceID: orDefault(r.WorkspaceID, workspaceID),
		Name:        strings.TrimSpace(r.Name),
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(fallback)
}
