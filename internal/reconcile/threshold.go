package reconcile

// Default completion-band tolerances in stage units.
const (
	DefaultLowerTolerance = 400
	DefaultUpperTolerance = 500
)

// Band is the tolerance window around a planned quantity inside which a stage
// counts as functionally complete.
type Band struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DefaultBand returns the stock tolerance window.
func DefaultBand() Band {
	return Band{Lower: DefaultLowerTolerance, Upper: DefaultUpperTolerance}
}

// Threshold is the outcome of evaluating actual output against a plan.
type Threshold struct {
	Planned float64 `json:"planned"`
	Actual  float64 `json:"actual"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Met     bool    `json:"met"`
}

// Evaluate checks actual against [planned-Lower, planned+Upper]. A plan of
// zero or less is never met.
func (b Band) Evaluate(planned, actual float64) Threshold {
	t := Threshold{
		Planned: planned,
		Actual:  actual,
		Min:     planned - b.Lower,
		Max:     planned + b.Upper,
	}
	t.Met = planned > 0 && actual >= t.Min && actual <= t.Max
	return t
}

// thresholdAt evaluates the stage at index i of a flow.
func (e *Engine) thresholdAt(f jobFlow, i int) (Plan, Threshold) {
	plan := planAt(f, i)
	return plan, e.band.Evaluate(plan.Quantity, f.runs.Output(f.chain[i].ID))
}
