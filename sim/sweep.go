package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Axis is one swept parameter and the values it takes.
// Scalar parameters are addressed by name ("r", "trace_success_prob");
// delay-distribution parameters by "<field>.<param>" (for example
// "trace_delay.value" or "report_delay.mu").
type Axis struct {
	Parameter string    `yaml:"parameter"`
	Values    []float64 `yaml:"values"`
}

// Grid is a parameter sweep: a base scenario plus axes whose Cartesian
// product defines the combinations to evaluate.
type Grid struct {
	Base Parameters `yaml:"base"`
	Axes []Axis     `yaml:"axes"`
}

// SweepPoint pairs one parameter combination with its ensemble result.
type SweepPoint struct {
	Values map[string]float64
	Result *EnsembleResult
}

// Label renders the combination as "name=value" pairs in sorted order.
func (sp *SweepPoint) Label() string {
	names := make([]string, 0, len(sp.Values))
	for name := range sp.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, sp.Values[name]))
	}
	return strings.Join(parts, ",")
}

// scalarParams maps sweepable scalar parameter names to their setters.
var scalarParams = map[string]func(*Parameters, float64){
	"r":                  func(p *Parameters, v float64) { p.R = v },
	"dispersion":         func(p *Parameters, v float64) { p.Dispersion = v },
	"asymptomatic_prob":  func(p *Parameters, v float64) { p.AsymptomaticProb = v },
	"test_sensitivity":   func(p *Parameters, v float64) { p.TestSensitivity = v },
	"trace_success_prob": func(p *Parameters, v float64) { p.TraceSuccessProb = v },
	"horizon":            func(p *Parameters, v float64) { p.Horizon = v },
	"case_cap":           func(p *Parameters, v float64) { p.CaseCap = int(v) },
	"seed_cases":         func(p *Parameters, v float64) { p.SeedCases = int(v) },
}

// integerParams are scalar parameters that only take whole-number
// values; fractional sweep values are rejected, never truncated.
var integerParams = map[string]bool{
	"case_cap":   true,
	"seed_cases": true,
}

// delayFields maps sweepable delay-spec field names to accessors.
var delayFields = map[string]func(*Parameters) *DelaySpec{
	"incubation":      func(p *Parameters) *DelaySpec { return &p.Incubation },
	"generation_time": func(p *Parameters) *DelaySpec { return &p.GenerationTime },
	"report_delay":    func(p *Parameters) *DelaySpec { return &p.ReportDelay },
	"trace_delay":     func(p *Parameters) *DelaySpec { return &p.TraceDelay },
}

// LoadGrid reads and parses a YAML sweep grid file. The base scenario
// starts from DefaultParameters, so fields omitted under base keep
// their defaults rather than collapsing to zero values.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadGrid(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep grid: %w", err)
	}
	g := Grid{Base: DefaultParameters()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&g); err != nil {
		return nil, fmt.Errorf("parsing sweep grid: %w", err)
	}
	return &g, nil
}

// Validate checks the grid's axes; the base scenario itself is
// validated per combination when its ensemble runs.
func (g *Grid) Validate() error {
	if len(g.Axes) == 0 {
		return fmt.Errorf("sweep grid needs at least one axis")
	}
	seen := make(map[string]bool, len(g.Axes))
	for i, ax := range g.Axes {
		if len(ax.Values) == 0 {
			return fmt.Errorf("axis[%d] %q has no values", i, ax.Parameter)
		}
		if seen[ax.Parameter] {
			return fmt.Errorf("axis[%d] %q appears more than once", i, ax.Parameter)
		}
		seen[ax.Parameter] = true
		if err := checkAxisParameter(ax.Parameter); err != nil {
			return fmt.Errorf("axis[%d]: %w", i, err)
		}
		for _, v := range ax.Values {
			if err := checkIntegral(ax.Parameter, v); err != nil {
				return fmt.Errorf("axis[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// checkIntegral rejects fractional values for whole-number parameters.
func checkIntegral(name string, v float64) error {
	if integerParams[name] && v != math.Trunc(v) {
		return fmt.Errorf("sweep parameter %q takes integer values, got %v", name, v)
	}
	return nil
}

func checkAxisParameter(name string) error {
	if _, ok := scalarParams[name]; ok {
		return nil
	}
	if field, _, ok := strings.Cut(name, "."); ok {
		if _, known := delayFields[field]; known {
			return nil
		}
	}
	return fmt.Errorf("unknown sweep parameter %q", name)
}

// applyAxis sets one swept parameter on p. Delay-spec params are
// written into a fresh map so combinations never share mutable state.
func applyAxis(p *Parameters, name string, v float64) error {
	if set, ok := scalarParams[name]; ok {
		if err := checkIntegral(name, v); err != nil {
			return err
		}
		set(p, v)
		return nil
	}
	field, param, ok := strings.Cut(name, ".")
	if !ok {
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	access, known := delayFields[field]
	if !known {
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	spec := access(p)
	params := make(map[string]float64, len(spec.Params)+1)
	for k, val := range spec.Params {
		params[k] = val
	}
	params[param] = v
	spec.Params = params
	return nil
}

// RunSweep evaluates a full N-run ensemble for every combination in the
// grid's Cartesian product. Every combination reuses the same base key,
// so ensembles across combinations are paired (common random numbers),
// which sharpens comparisons such as tracing-delay monotonicity.
func RunSweep(g *Grid, nRuns int, base SimulationKey) ([]SweepPoint, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	// Odometer over axis value indices.
	idx := make([]int, len(g.Axes))
	total := 1
	for _, ax := range g.Axes {
		total *= len(ax.Values)
	}

	points := make([]SweepPoint, 0, total)
	for {
		p := g.Base
		values := make(map[string]float64, len(g.Axes))
		for ai, ax := range g.Axes {
			v := ax.Values[idx[ai]]
			if err := applyAxis(&p, ax.Parameter, v); err != nil {
				return nil, err
			}
			values[ax.Parameter] = v
		}

		point := SweepPoint{Values: values}
		logrus.Infof("sweep %d/%d: %s", len(points)+1, total, point.Label())
		res, err := RunEnsemble(p, nRuns, base)
		if err != nil {
			return nil, fmt.Errorf("combination %s: %w", point.Label(), err)
		}
		point.Result = res
		points = append(points, point)

		// Advance the odometer.
		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(g.Axes[pos].Values) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return points, nil
}
