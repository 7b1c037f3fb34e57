package sim

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RunOutcome is the per-replicate record kept by the ensemble runner.
type RunOutcome struct {
	Replicate      int
	Verdict        Verdict
	FinalSize      int
	ExtinctionTime float64 // meaningful only when Verdict is controlled
	CapExceeded    bool
}

// EnsembleResult aggregates N replicate outcomes under one fixed
// parameter set - the scientific payload of the tool.
type EnsembleResult struct {
	Runs []RunOutcome

	ControlProbability float64
	CILower            float64 // 95% Wilson score interval
	CIUpper            float64

	FinalSize        SummaryStats // over all runs
	TimeToExtinction SummaryStats // over controlled runs only
}

// RunEnsemble runs n independent replicates of the outbreak under p.
// Replicate i uses base.Replicate(i), so replicates never share random
// state and the whole ensemble is reproducible from (p, n, base).
// Replicates run in parallel; each owns its RNG and writes only its own
// slot of the outcome slice.
func RunEnsemble(p Parameters, n int, base SimulationKey) (*EnsembleResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n_runs must be positive, got %d", n)
	}
	cp, err := compileParameters(p)
	if err != nil {
		return nil, err
	}

	outcomes := make([]RunOutcome, n)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			run, err := simulate(cp, base.Replicate(i))
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			outcomes[i] = RunOutcome{
				Replicate:      i,
				Verdict:        run.Verdict,
				FinalSize:      run.FinalSize,
				ExtinctionTime: run.ExtinctionTime,
				CapExceeded:    run.CapExceeded,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := Aggregate(outcomes)
	logrus.Infof("ensemble done: %d runs, control probability %.3f [%.3f, %.3f]",
		n, res.ControlProbability, res.CILower, res.CIUpper)
	return res, nil
}

// Aggregate reduces completed, immutable run outcomes to summary
// statistics.
func Aggregate(outcomes []RunOutcome) *EnsembleResult {
	res := &EnsembleResult{Runs: outcomes}
	if len(outcomes) == 0 {
		return res
	}

	controlled := 0
	sizes := make([]float64, 0, len(outcomes))
	var times []float64
	for _, o := range outcomes {
		sizes = append(sizes, float64(o.FinalSize))
		if o.Verdict == VerdictControlled {
			controlled++
			times = append(times, o.ExtinctionTime)
		}
	}
	res.ControlProbability = float64(controlled) / float64(len(outcomes))
	res.CILower, res.CIUpper = wilsonInterval(controlled, len(outcomes), 0.95)
	res.FinalSize = Summarize(sizes)
	res.TimeToExtinction = Summarize(times)
	return res
}
