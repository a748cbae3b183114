// Package reconcile reconstructs where work-in-process physically sits for a
// set of manufacturing jobs.
//
// Every computation takes a full snapshot (jobs, workflows, workcenters, and a
// per-job run list) and returns freshly allocated report structures. Nothing
// is cached between calls and the inputs are only read. The building blocks
// are exported so each step can be exercised on its own:
//
//   - ResolveStages orders and filters the stages a job traverses.
//   - Classify splits a run history into authentic and transfer runs; all
//     stage totals come from authentic runs only.
//   - PlanFor computes the planned quantity at a stage through an ordered
//     table of named strategies.
//   - Band.Evaluate decides whether a stage output is close enough to plan.
//
// Engine composes these into the stuck-job, WIP transition, bottleneck, and
// occupancy reports. "Now" is captured once per call (or pinned with AsOf)
// so repeated calls over the same snapshot produce identical output.
//
// Malformed data never produces an error here: jobs whose workflow or current
// stage cannot be resolved are skipped, missing timestamps count as "now", and
// unresolvable plans degrade to zero.
package reconcile
