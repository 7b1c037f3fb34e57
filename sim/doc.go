// Package sim provides the stochastic transmission-and-tracing
// simulation engine for outbreak-sim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - case.go: the Case record (one infected individual) and its invariants
//   - tracing.go: isolation channels (self-report, contact tracing) and the contact filter
//   - outbreak.go: the work-queue expansion loop, stop rules, and verdicts
//
// # Architecture
//
// One outbreak realization is a branching process: each case draws a
// negative-binomial number of secondary-contact opportunities
// (transmission.go), the tracing engine decides whether isolation cuts
// those contacts off (tracing.go), and the driver expands realized
// cases breadth-first until extinction, the case cap, or the horizon
// (outbreak.go). Ensembles repeat the driver across derived random
// streams and reduce outcomes to control-probability estimates
// (ensemble.go, stats.go); sweep.go repeats whole ensembles across a
// parameter grid.
//
// # Randomness
//
// All draws flow through explicitly threaded *rand.Rand streams from a
// PartitionedRNG (rng.go). A SimulationKey fully determines a run;
// ensemble replicate i derives its own key via key.Replicate(i). No
// global random state anywhere.
package sim
