package reconcile

import (
	"stageflow/internal/production"
)

// PlanInput is everything a plan strategy may consult.
type PlanInput struct {
	Job   production.Job
	Stage production.Stage
	// Previous is the stage before Stage in the job's chain; nil for the first stage.
	Previous *production.Stage
	// PreviousOutput is the authentic output recorded at Previous.
	PreviousOutput float64
}

// PlanStrategy resolves a planned quantity, reporting false when it has no
// usable data. Strategies never return non-positive quantities with ok set.
type PlanStrategy struct {
	Name    string
	Resolve func(PlanInput) (float64, bool)
}

// Plan is the planned quantity at a stage, expressed in the stage UOM.
type Plan struct {
	Quantity float64 `json:"quantity"`
	UOM      string  `json:"uom"`
	// Strategy names the strategy that produced Quantity; empty when none did.
	Strategy string `json:"strategy,omitempty"`
}

// Strategy names.
const (
	StrategyPriorStageOutput = "prior_stage_output"
	StrategyPackagingBoxes   = "packaging_boxes"
	StrategyBOMBoxes         = "bom_boxes"
	StrategyJobQuantityBoxes = "job_quantity_boxes"
	StrategyBOMSheets        = "bom_sheets"
	StrategyPlannedOutput    = "planned_output"
	StrategyJobQuantity      = "job_quantity"
)

// PriorStageStrategy derives the plan from what the previous stage produced.
var PriorStageStrategy = PlanStrategy{
	Name: StrategyPriorStageOutput,
	Resolve: func(in PlanInput) (float64, bool) {
		if in.Previous == nil || in.PreviousOutput <= 0 {
			return 0, false
		}
		qty := ConvertQuantity(in.PreviousOutput, in.Previous.UOM(), in.Stage.UOM(), in.Job.UpFactor())
		return qty, qty > 0
	},
}

// CartonStrategies apply, in order, to stages whose UOM denotes cartons.
var CartonStrategies = []PlanStrategy{
	{
		Name: StrategyPackagingBoxes,
		Resolve: func(in PlanInput) (float64, bool) {
			pkg := in.Job.Packaging
			if pkg == nil || pkg.PlannedBoxes <= 0 {
				return 0, false
			}
			return pkg.PlannedBoxes * pkg.PiecesPerBox(), true
		},
	},
	{
		Name: StrategyBOMBoxes,
		Resolve: func(in PlanInput) (float64, bool) {
			return bomQuantity(in.Job.BOM, production.IsCartonUOM)
		},
	},
	{
		Name: StrategyJobQuantityBoxes,
		Resolve: func(in PlanInput) (float64, bool) {
			if !production.IsCartonUOM(in.Job.Unit) || in.Job.Quantity <= 0 {
				return 0, false
			}
			return in.Job.Quantity, true
		},
	},
}

// SheetStrategies apply, in order, to every stage whose UOM is not cartons.
var SheetStrategies = []PlanStrategy{
	{
		Name: StrategyBOMSheets,
		Resolve: func(in PlanInput) (float64, bool) {
			return bomQuantity(in.Job.BOM, production.IsSheetUOM)
		},
	},
	{
		Name: StrategyPlannedOutput,
		Resolve: func(in PlanInput) (float64, bool) {
			if len(in.Job.Outputs) == 0 || in.Job.Outputs[0].QtyPlanned <= 0 {
				return 0, false
			}
			return in.Job.Outputs[0].QtyPlanned, true
		},
	},
	{
		Name: StrategyJobQuantity,
		Resolve: func(in PlanInput) (float64, bool) {
			if in.Job.Quantity <= 0 {
				return 0, false
			}
			return in.Job.Quantity, true
		},
	},
}

// PlanFor computes the planned quantity at a stage. The previous stage output
// wins when present; otherwise the job's planning data is consulted through
// the carton or sheet strategy table. A zero plan means nothing resolved.
func PlanFor(in PlanInput) Plan {
	plan := Plan{UOM: in.Stage.UOM()}
	strategies := SheetStrategies
	if production.IsCartonUOM(plan.UOM) {
		strategies = CartonStrategies
	}
	for _, strategy := range append([]PlanStrategy{PriorStageStrategy}, strategies...) {
		if qty, ok := strategy.Resolve(in); ok && qty > 0 {
			plan.Quantity = qty
			plan.Strategy = strategy.Name
			return plan
		}
	}
	return plan
}

// ConvertQuantity moves a quantity between UOM domains. Sheets become cartons
// by multiplying by numberUp and cartons become sheets by dividing. Any other
// combination is returned unchanged.
func ConvertQuantity(qty float64, fromUOM, toUOM string, numberUp float64) float64 {
	if numberUp <= 0 {
		numberUp = 1
	}
	from := production.ClassifyUOM(fromUOM)
	to := production.ClassifyUOM(toUOM)
	switch {
	case from == production.DomainSheets && to == production.DomainCartons:
		return qty * numberUp
	case from == production.DomainCartons && to == production.DomainSheets:
		return qty / numberUp
	default:
		return qty
	}
}

func bomQuantity(lines []production.BOMLine, match func(string) bool) (float64, bool) {
	for _, line := range lines {
		if match(line.UOM) && line.QtyRequired > 0 {
			return line.QtyRequired, true
		}
	}
	return 0, false
}

// planAt computes the plan for the stage at index i of a flow's chain.
func planAt(f jobFlow, i int) Plan {
	in := PlanInput{Job: f.job, Stage: f.chain[i]}
	if prev, ok := f.chain.Previous(i); ok {
		in.Previous = &prev
		in.PreviousOutput = f.runs.Output(prev.ID)
	}
	return PlanFor(in)
}
