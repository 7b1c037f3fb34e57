package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveIsolation_SymptomaticSelfReports(t *testing.T) {
	p := DefaultParameters()
	p.ReportDelay = DelaySpec{Type: "constant", Params: map[string]float64{"value": 3.43}}
	cp := compileForTest(t, p)
	rng := rand.New(rand.NewSource(1))

	c := &Case{ID: 0, ParentID: NoParent, ExposureTime: 2, Incubation: 5.8}
	resolveIsolation(c, nil, cp, rng)

	require.True(t, c.Isolated)
	require.False(t, c.Traced)
	require.InDelta(t, 2+5.8+3.43, c.IsolationTime, 1e-12)
}

func TestResolveIsolation_AsymptomaticUntracedNeverIsolates(t *testing.T) {
	// The key scenario the model exists to quantify: invisible cases.
	cp := compileForTest(t, DefaultParameters())
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		c := &Case{ID: i, ParentID: NoParent, Incubation: 5, Asymptomatic: true}
		resolveIsolation(c, nil, cp, rng)
		require.False(t, c.Isolated)
		require.False(t, c.Traced)
	}
}

func TestResolveIsolation_FailedTestLeavesCaseUndetected(t *testing.T) {
	p := DefaultParameters()
	p.TestSensitivity = 0
	p.TraceSuccessProb = 0
	cp := compileForTest(t, p)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		c := &Case{ID: i, ParentID: NoParent, Incubation: 5}
		resolveIsolation(c, nil, cp, rng)
		require.False(t, c.Isolated, "symptomatic case with a missed test must stay undetected")
	}
}

func TestResolveIsolation_TracingFromDetectedParent(t *testing.T) {
	p := DefaultParameters()
	p.AsymptomaticProb = 1 // close the self-report channel
	p.TraceSuccessProb = 1
	p.TraceDelay = DelaySpec{Type: "constant", Params: map[string]float64{"value": 2}}
	cp := compileForTest(t, p)
	rng := rand.New(rand.NewSource(1))

	parent := &Case{ID: 0, ParentID: NoParent, Isolated: true, IsolationTime: 9}
	c := &Case{ID: 1, ParentID: 0, Generation: 1, ExposureTime: 4, Incubation: 5, Asymptomatic: true}
	resolveIsolation(c, parent, cp, rng)

	require.True(t, c.Traced)
	require.True(t, c.Isolated)
	require.InDelta(t, 11.0, c.IsolationTime, 1e-12, "parent detection time + tracing delay")
}

func TestResolveIsolation_EarliestChannelWins(t *testing.T) {
	p := DefaultParameters()
	p.TestSensitivity = 1
	p.TraceSuccessProb = 1
	p.ReportDelay = DelaySpec{Type: "constant", Params: map[string]float64{"value": 0}}
	p.TraceDelay = DelaySpec{Type: "constant", Params: map[string]float64{"value": 1}}
	cp := compileForTest(t, p)
	rng := rand.New(rand.NewSource(1))

	// Tracing resolves at 3+1=4, well before onset at 2+10=12.
	parent := &Case{ID: 0, ParentID: NoParent, Isolated: true, IsolationTime: 3}
	c := &Case{ID: 1, ParentID: 0, Generation: 1, ExposureTime: 2, Incubation: 10}
	resolveIsolation(c, parent, cp, rng)
	require.True(t, c.Traced)
	require.InDelta(t, 4.0, c.IsolationTime, 1e-12)

	// Self-report at onset 2+1=3 beats tracing at 8+1=9; traced flag
	// still records tracing-system knowledge of the case.
	lateParent := &Case{ID: 0, ParentID: NoParent, Isolated: true, IsolationTime: 8}
	c2 := &Case{ID: 2, ParentID: 0, Generation: 1, ExposureTime: 2, Incubation: 1}
	resolveIsolation(c2, lateParent, cp, rng)
	require.True(t, c2.Traced)
	require.InDelta(t, 3.0, c2.IsolationTime, 1e-12)
}

func TestResolveIsolation_UndetectedParentCannotBeTracedFrom(t *testing.T) {
	p := DefaultParameters()
	p.AsymptomaticProb = 1
	p.TraceSuccessProb = 1
	cp := compileForTest(t, p)
	rng := rand.New(rand.NewSource(1))

	parent := &Case{ID: 0, ParentID: NoParent, Asymptomatic: true} // never isolated
	c := &Case{ID: 1, ParentID: 0, Generation: 1, Asymptomatic: true}
	resolveIsolation(c, parent, cp, rng)

	require.False(t, c.Traced, "tracing propagates forward only, from detected parents")
	require.False(t, c.Isolated)
}

func TestFilterContacts_TieBoundary(t *testing.T) {
	parent := &Case{ID: 0, Isolated: true, IsolationTime: 10}
	opportunities := []float64{9.5, 10.0, 10.5, 3.2}

	realized, prevented := filterContacts(parent, opportunities)
	require.Equal(t, []float64{9.5, 3.2}, realized)
	require.Equal(t, 2, prevented, "contact at exactly the isolation instant is prevented")
}

func TestFilterContacts_NeverIsolatedRealizesAll(t *testing.T) {
	parent := &Case{ID: 0}
	opportunities := []float64{1, 2, 3}

	realized, prevented := filterContacts(parent, opportunities)
	require.Equal(t, opportunities, realized)
	require.Zero(t, prevented)
}
