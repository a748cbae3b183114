package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"stageflow/internal/production"
)

// ErrInvalidDocument reports an export that is not a workspace document.
var ErrInvalidDocument = errors.New("invalid dataset document")

// Dataset is a decoded workspace export.
type Dataset struct {
	// Origin names where the export was read from, when known.
	Origin      string
	WorkspaceID string
	Workflows   []production.Workflow
	Jobs        []production.Job
	Workcenters []production.Workcenter
	Runs        []production.Run
}

// Decode reads a JSON export from r.
func Decode(r io.Reader) (*Dataset, error) {
	var doc document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return fromDocument(doc)
}

// Load decodes the JSON export at path.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	ds, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	ds.Origin = path
	return ds, nil
}

func fromDocument(doc document) (*Dataset, error) {
	ds := &Dataset{WorkspaceID: orDefault(doc.WorkspaceID, "")}
	for i, rec := range doc.Workflows {
		wf := rec.toWorkflow(ds.WorkspaceID)
		if wf.ID == "" {
			return nil, fmt.Errorf("%w: workflow %d has no id", ErrInvalidDocument, i)
		}
		ds.Workflows = append(ds.Workflows, wf)
	}
	for i, rec := range doc.Jobs {
		job := rec.toJob(ds.WorkspaceID)
		if job.ID == "" {
			return nil, fmt.Errorf("%w: job %d has no id", ErrInvalidDocument, i)
		}
		ds.Jobs = append(ds.Jobs, job)
	}
	for i, rec := range doc.Workcenters {
		wc := rec.toWorkcenter(ds.WorkspaceID)
		if wc.ID == "" {
			return nil, fmt.Errorf("%w: workcenter %d has no id", ErrInvalidDocument, i)
		}
		ds.Workcenters = append(ds.Workcenters, wc)
	}
	for i, rec := range doc.Runs {
		run := rec.toRun()
		if run.ID == "" || run.JobID == "" {
			return nil, fmt.Errorf("%w: run %d needs id and jobId", ErrInvalidDocument, i)
		}
		ds.Runs = append(ds.Runs, run)
	}
	return ds, nil
}

// RunsByJob groups runs by job ID, preserving document order.
func (d *Dataset) RunsByJob() map[string][]production.Run {
	out := make(map[string][]production.Run)
	for _, run := range d.Runs {
		out[run.JobID] = append(out[run.JobID], run)
	}
	return out
}

func inWorkspace(recordWorkspace, want string) bool {
	return want == "" || recordWorkspace == "" || recordWorkspace == want
}

// ListJobs returns the jobs in workspaceID. An empty workspace matches all.
func (d *Dataset) ListJobs(ctx context.Context, workspaceID string) ([]production.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []production.Job
	for _, job := range d.Jobs {
		if inWorkspace(job.WorkspaceID, workspaceID) {
			out = append(out, job)
		}
	}
	return out, nil
}

// ListWorkflows returns the workflows in workspaceID.
func (d *Dataset) ListWorkflows(ctx context.Context, workspaceID string) ([]production.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []production.Workflow
	for _, wf := range d.Workflows {
		if inWorkspace(wf.WorkspaceID, workspaceID) {
			wf.Stages = slices.Clone(wf.Stages)
			out = append(out, wf)
		}
	}
	return out, nil
}

// ListWorkcenters returns the workcenters in workspaceID.
func (d *Dataset) ListWorkcenters(ctx context.Context, workspaceID string) ([]production.Workcenter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []production.Workcenter
	for _, wc := range d.Workcenters {
		if inWorkspace(wc.WorkspaceID, workspaceID) {
			out = append(out, wc)
		}
	}
	return out, nil
}

// ListRuns returns every run recorded against jobID.
func (d *Dataset) ListRuns(ctx context.Context, jobID string) ([]production.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []production.Run
	for _, run := range d.Runs {
		if run.JobID == jobID {
			out = append(out, run)
		}
	}
	return out, nil
}
