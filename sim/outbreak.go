// sim/outbreak.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Verdict is the control outcome of one stochastic realization.
type Verdict string

const (
	// VerdictControlled means the branching process went extinct before
	// exceeding the case cap or the time horizon.
	VerdictControlled Verdict = "controlled"
	// VerdictNotControlled means the case cap or the horizon was reached
	// while transmission was still ongoing.
	VerdictNotControlled Verdict = "not_controlled"
)

// OutbreakRun is the complete, immutable result of one realization.
type OutbreakRun struct {
	Key     SimulationKey
	Cases   []*Case // arena indexed by Case.ID, in creation order
	Verdict Verdict

	FinalSize      int
	ExtinctionTime float64 // time of the last infection; meaningful only when controlled
	CapExceeded    bool    // run truncated at the case cap
	Truncated      int     // realized contacts pushed past the horizon
}

// Simulate runs one stochastic outbreak realization under the given
// parameters and key. Identical parameters and key produce bit-identical
// results. Parameters are validated before anything runs; within a run
// the only error source is an internal invariant violation, which is a
// defect and aborts the run.
func Simulate(p Parameters, key SimulationKey) (*OutbreakRun, error) {
	cp, err := compileParameters(p)
	if err != nil {
		return nil, err
	}
	return simulate(cp, key)
}

func simulate(cp *compiledParams, key SimulationKey) (*OutbreakRun, error) {
	rngs := NewPartitionedRNG(key)
	tx := rngs.ForSubsystem(SubsystemTransmission)
	tr := rngs.ForSubsystem(SubsystemTracing)

	run := &OutbreakRun{Key: key}
	// FIFO work queue of pending case IDs. The branching process is
	// expanded iteratively over an arena rather than recursively, so
	// stack depth is flat and the cap check is O(1) per case.
	var queue []int

	for i := 0; i < cp.p.SeedCases; i++ {
		c := newSeedCase(len(run.Cases), cp, tx)
		resolveIsolation(c, nil, cp, tr)
		if err := c.checkInvariants(nil); err != nil {
			return nil, fmt.Errorf("invariant violation: %w", err)
		}
		run.Cases = append(run.Cases, c)
		queue = append(queue, c.ID)
	}
	capExceeded := len(run.Cases) > cp.p.CaseCap

	for len(queue) > 0 && !capExceeded {
		parent := run.Cases[queue[0]]
		queue = queue[1:]

		parent.Opportunities = drawOpportunities(parent, cp, tx)
		realized, prevented := filterContacts(parent, parent.Opportunities)
		logrus.Debugf("[case %04d gen %d] %d contacts drawn, %d prevented by isolation",
			parent.ID, parent.Generation, len(parent.Opportunities), prevented)

		for _, t := range realized {
			if t > cp.p.Horizon {
				// Transmission is still ongoing past the horizon; the
				// contact itself is not simulated.
				run.Truncated++
				continue
			}
			child := newChildCase(len(run.Cases), parent, t, cp, tx)
			resolveIsolation(child, parent, cp, tr)
			if err := child.checkInvariants(parent); err != nil {
				return nil, fmt.Errorf("invariant violation: %w", err)
			}
			parent.Realized++
			run.Cases = append(run.Cases, child)
			queue = append(queue, child.ID)
			if len(run.Cases) > cp.p.CaseCap {
				capExceeded = true
				break
			}
		}
	}

	run.FinalSize = len(run.Cases)
	run.CapExceeded = capExceeded
	if capExceeded || run.Truncated > 0 {
		run.Verdict = VerdictNotControlled
	} else {
		run.Verdict = VerdictControlled
		for _, c := range run.Cases {
			if c.ExposureTime > run.ExtinctionTime {
				run.ExtinctionTime = c.ExposureTime
			}
		}
	}
	logrus.Debugf("[key %d] outbreak %s: %d cases, %d contacts past horizon",
		key, run.Verdict, run.FinalSize, run.Truncated)
	return run, nil
}
