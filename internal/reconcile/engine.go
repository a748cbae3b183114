package reconcile

import (
	"log/slog"
	"time"

	"stageflow/internal/logging"
	"stageflow/internal/production"
)

// Snapshot is a self-consistent view of one workspace at a point in time.
type Snapshot struct {
	WorkspaceID string                      `json:"workspaceId,omitempty"`
	Jobs        []production.Job            `json:"jobs"`
	Workflows   []production.Workflow       `json:"workflows"`
	Workcenters []production.Workcenter     `json:"workcenters"`
	Runs        map[string][]production.Run `json:"runs"`
	// CapturedAt pins "now" for elapsed-time metrics; zero means the engine clock.
	CapturedAt time.Time `json:"capturedAt,omitzero"`
}

// Options configures an Engine.
type Options struct {
	// Band overrides the completion band. Nil selects DefaultBand.
	Band   *Band
	Clock  func() time.Time
	Logger *slog.Logger
}

// Engine computes reports over snapshots. It holds configuration only and is
// safe for concurrent use.
type Engine struct {
	band   Band
	clock  func() time.Time
	logger *slog.Logger
}

// New constructs an Engine.
func New(opts Options) *Engine {
	band := DefaultBand()
	if opts.Band != nil {
		band = *opts.Band
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		band:   band,
		clock:  clock,
		logger: logging.NewComponentLogger(opts.Logger, "reconcile"),
	}
}

// Band returns the completion band the engine evaluates against.
func (e *Engine) Band() Band {
	return e.band
}

// AsOf returns a copy of the engine whose clock is pinned to now.
func (e *Engine) AsOf(now time.Time) *Engine {
	clone := *e
	clone.clock = func() time.Time { return now }
	return &clone
}

// ForSnapshot pins the clock to the snapshot capture time when present.
func (e *Engine) ForSnapshot(s *Snapshot) *Engine {
	if s == nil || s.CapturedAt.IsZero() {
		return e
	}
	return e.AsOf(s.CapturedAt)
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// jobFlow is a non-terminal job whose stage chain resolved and whose current
// stage sits on that chain.
type jobFlow struct {
	job   production.Job
	chain StageChain
	index int
	runs  Partition
}

func (f jobFlow) current() production.Stage {
	return f.chain[f.index]
}

func indexWorkflows(workflows []production.Workflow) map[string]production.Workflow {
	out := make(map[string]production.Workflow, len(workflows))
	for _, wf := range workflows {
		out[wf.ID] = wf
	}
	return out
}

func indexWorkcenters(workcenters []production.Workcenter) map[string]production.Workcenter {
	out := make(map[string]production.Workcenter, len(workcenters))
	for _, wc := range workcenters {
		out[wc.ID] = wc
	}
	return out
}

// flows resolves every non-terminal job into its stage chain. Jobs that cannot
// be placed on a chain are dropped with a debug log.
func (e *Engine) flows(jobs []production.Job, runsByJob map[string][]production.Run, workflows []production.Workflow) []jobFlow {
	byID := indexWorkflows(workflows)
	out := make([]jobFlow, 0, len(jobs))
	for _, job := range jobs {
		if job.Status.IsTerminal() {
			continue
		}
		wf, ok := byID[job.WorkflowID]
		if !ok {
			e.logExcluded(job, "workflow_not_found")
			continue
		}
		chain := ResolveStages(job, wf)
		index := chain.IndexOf(job.CurrentStageID)
		if index < 0 {
			e.logExcluded(job, "current_stage_not_in_chain")
			continue
		}
		out = append(out, jobFlow{
			job:   job,
			chain: chain,
			index: index,
			runs:  Classify(runsByJob[job.ID]),
		})
	}
	return out
}

func (e *Engine) logExcluded(job production.Job, reason string) {
	e.logger.Debug("job excluded from stage flow",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldWorkflowID, job.WorkflowID),
		logging.String(logging.FieldStage, job.CurrentStageID),
		logging.String(logging.FieldReason, reason),
	)
}

// daysSince returns fractional days between at and now, floored at zero.
// A zero instant counts as now.
func daysSince(now, at time.Time) float64 {
	if at.IsZero() {
		return 0
	}
	days := now.Sub(at).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
