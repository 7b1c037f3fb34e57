// Defines the Case struct that models one infected individual in the
// branching process, with its timeline:
//
//   -- x ------------- x ------------------ x --------->
//   infection   |   symptoms    |       isolation
//               |               |
//         incubation      detection delay

package sim

import (
	"fmt"
	"math"
)

// NoParent is the ParentID of seed cases.
const NoParent = -1

// Case models a single infected individual. Identity and timing fields
// are immutable after creation; only Traced/Isolated/IsolationTime are
// set afterwards, exactly once, by the tracing engine.
type Case struct {
	ID       int // arena index, unique within one run
	ParentID int // NoParent for seed cases

	Generation   int     // seed = 0, child = parent + 1
	ExposureTime float64 // infection time on the simulation clock (days)
	Incubation   float64 // infection to symptom onset; drawn even for asymptomatic cases
	Asymptomatic bool    // never self-reports symptoms

	// Secondary-contact opportunities drawn by the transmission
	// generator, in draw order. Realized counts how many survived the
	// parent-isolation filter and the horizon cutoff to become cases.
	Opportunities []float64
	Realized      int

	// Set once by the tracing engine.
	Traced        bool    // known to the tracing system via its parent
	Isolated      bool    // some isolation channel fired
	IsolationTime float64 // meaningful only when Isolated
}

// OnsetTime returns the symptom onset time. Defined even for
// asymptomatic cases, where it anchors infectiousness timing only.
func (c *Case) OnsetTime() float64 {
	return c.ExposureTime + c.Incubation
}

// IsolatedBefore reports whether this case's transmissions are blocked
// at contact time t. A contact at exactly the isolation instant is
// still prevented.
func (c *Case) IsolatedBefore(t float64) bool {
	return c.Isolated && t >= c.IsolationTime
}

// checkInvariants validates the structural invariants of a realized
// case against its parent (nil for seeds). Any violation is a defect:
// continuing the run would corrupt aggregate statistics.
func (c *Case) checkInvariants(parent *Case) error {
	if c.ExposureTime < 0 || math.IsNaN(c.ExposureTime) {
		return fmt.Errorf("case %d: invalid exposure time %f", c.ID, c.ExposureTime)
	}
	if c.Incubation < 0 || math.IsNaN(c.Incubation) {
		return fmt.Errorf("case %d: invalid incubation period %f", c.ID, c.Incubation)
	}
	if parent == nil {
		if c.ParentID != NoParent {
			return fmt.Errorf("seed case %d: unexpected parent %d", c.ID, c.ParentID)
		}
		if c.Generation != 0 {
			return fmt.Errorf("seed case %d: generation %d, want 0", c.ID, c.Generation)
		}
	} else {
		if c.ParentID != parent.ID {
			return fmt.Errorf("case %d: parent ID %d, want %d", c.ID, c.ParentID, parent.ID)
		}
		if c.Generation != parent.Generation+1 {
			return fmt.Errorf("case %d: generation %d, want parent+1 = %d",
				c.ID, c.Generation, parent.Generation+1)
		}
		if c.ExposureTime < parent.ExposureTime {
			return fmt.Errorf("case %d: exposed at %f before parent at %f",
				c.ID, c.ExposureTime, parent.ExposureTime)
		}
	}
	if c.Isolated && c.IsolationTime < c.ExposureTime {
		return fmt.Errorf("case %d: isolation time %f before exposure time %f",
			c.ID, c.IsolationTime, c.ExposureTime)
	}
	if c.Realized > len(c.Opportunities) {
		return fmt.Errorf("case %d: realized %d of %d opportunities",
			c.ID, c.Realized, len(c.Opportunities))
	}
	return nil
}
