package sim

import (
	"fmt"
	"math/rand"
)

// compiledParams bundles a validated parameter set with its constructed
// delay samplers, built once per run.
type compiledParams struct {
	p           Parameters
	incubation  DelaySampler
	genTime     DelaySampler
	reportDelay DelaySampler
	traceDelay  DelaySampler
}

func compileParameters(p Parameters) (*compiledParams, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cp := &compiledParams{p: p}
	var err error
	if cp.incubation, err = NewDelaySampler(p.Incubation); err != nil {
		return nil, fmt.Errorf("incubation: %w", err)
	}
	if cp.genTime, err = NewDelaySampler(p.GenerationTime); err != nil {
		return nil, fmt.Errorf("generation_time: %w", err)
	}
	if cp.reportDelay, err = NewDelaySampler(p.ReportDelay); err != nil {
		return nil, fmt.Errorf("report_delay: %w", err)
	}
	if cp.traceDelay, err = NewDelaySampler(p.TraceDelay); err != nil {
		return nil, fmt.Errorf("trace_delay: %w", err)
	}
	return cp, nil
}

// drawOpportunities draws the parent's secondary-contact opportunity
// times: k ~ NegBinom(mean=R, dispersion), each offset by a
// generation-time draw from the configured reference point. k = 0 is
// valid and yields a dead-end branch. Whether any opportunity becomes a
// realized case is decided later by the isolation filter.
func drawOpportunities(parent *Case, cp *compiledParams, rng *rand.Rand) []float64 {
	k := NegBinomRand(rng, cp.p.R, cp.p.Dispersion)
	if k == 0 {
		return nil
	}
	ref := parent.ExposureTime
	if cp.p.GenerationTimeRef == RefOnset {
		ref = parent.OnsetTime()
	}
	times := make([]float64, k)
	for i := range times {
		times[i] = ref + cp.genTime.Sample(rng)
	}
	return times
}

// newChildCase creates a prospective child case at the given exposure
// time, with freshly drawn incubation period and asymptomatic status.
// Isolation state is resolved separately by the tracing engine.
func newChildCase(id int, parent *Case, exposure float64, cp *compiledParams, rng *rand.Rand) *Case {
	return &Case{
		ID:           id,
		ParentID:     parent.ID,
		Generation:   parent.Generation + 1,
		ExposureTime: exposure,
		Incubation:   cp.incubation.Sample(rng),
		Asymptomatic: BernoulliRand(rng, cp.p.AsymptomaticProb),
	}
}

// newSeedCase creates a seed case at time 0, generation 0, no parent.
// Seeds are never traced: there is no detected parent to trace from.
func newSeedCase(id int, cp *compiledParams, rng *rand.Rand) *Case {
	return &Case{
		ID:           id,
		ParentID:     NoParent,
		Generation:   0,
		ExposureTime: 0,
		Incubation:   cp.incubation.Sample(rng),
		Asymptomatic: BernoulliRand(rng, cp.p.AsymptomaticProb),
	}
}
