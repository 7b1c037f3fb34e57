package sim

import "math/rand"

// resolveIsolation decides whether and when a case becomes isolated.
// Called exactly once per case, at creation; it is the only writer of
// the Traced/Isolated/IsolationTime fields.
//
// Two independent channels, earliest wins:
//
//  1. Self-reporting: a symptomatic case whose confirmation test is
//     positive isolates at onset + reporting delay.
//  2. Contact tracing: a case whose parent was detected (isolated via
//     either channel) is traced with probability trace_success_prob and
//     isolates at the parent's detection time + tracing delay.
//
// Tracing propagates forward only. An untraced asymptomatic case with
// no self-report is invisible to the system and never isolates - the
// scenario the model exists to quantify.
func resolveIsolation(c *Case, parent *Case, cp *compiledParams, rng *rand.Rand) {
	haveCandidate := false
	candidate := 0.0

	// Channel 1: self-reporting, gated by test sensitivity. A missed
	// test leaves the case undetected by this channel entirely.
	if !c.Asymptomatic && BernoulliRand(rng, cp.p.TestSensitivity) {
		haveCandidate = true
		candidate = c.OnsetTime() + cp.reportDelay.Sample(rng)
	}

	// Channel 2: contact tracing back from a detected parent.
	if parent != nil && parent.Isolated && BernoulliRand(rng, cp.p.TraceSuccessProb) {
		c.Traced = true
		t := parent.IsolationTime + cp.traceDelay.Sample(rng)
		if !haveCandidate || t < candidate {
			haveCandidate = true
			candidate = t
		}
	}

	if haveCandidate {
		c.Isolated = true
		c.IsolationTime = candidate
	}
}

// filterContacts partitions the parent's opportunity times into realized
// contact times and a count of prevented ones. A contact is prevented
// when the parent is isolated at or before the contact instant: a tie
// (contact time == isolation time) counts as prevented.
func filterContacts(parent *Case, opportunities []float64) (realized []float64, prevented int) {
	for _, t := range opportunities {
		if parent.IsolatedBefore(t) {
			prevented++
			continue
		}
		realized = append(realized, t)
	}
	return realized, prevented
}
