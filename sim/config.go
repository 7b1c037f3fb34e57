package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Generation-time reference modes. Whether infectious-contact offsets
// are measured from the parent's exposure or from its symptom onset is
// a modeling choice with real epidemiological consequence (onset
// referencing cannot represent pre-symptomatic transmission), so it is
// an explicit setting rather than an implicit default.
const (
	RefExposure = "exposure"
	RefOnset    = "onset"
)

// Valid value registries.
var (
	validReferences = map[string]bool{
		RefExposure: true, RefOnset: true,
	}
	validDelayTypes = map[string]bool{
		"lognormal": true, "weibull": true, "gamma": true, "exponential": true, "constant": true,
	}
)

// Parameters is the full configuration of one outbreak scenario.
// Loaded from YAML via LoadParameters(path) or built from CLI flags.
type Parameters struct {
	R          float64 `yaml:"r"`          // effective reproduction number (offspring mean)
	Dispersion float64 `yaml:"dispersion"` // negative binomial dispersion; low = superspreading

	Incubation        DelaySpec `yaml:"incubation"`                // infection to symptom onset
	GenerationTime    DelaySpec `yaml:"generation_time"`           // infectious-contact offset
	GenerationTimeRef string    `yaml:"generation_time_reference"` // "exposure" or "onset"

	AsymptomaticProb float64   `yaml:"asymptomatic_prob"` // probability a case never shows symptoms
	ReportDelay      DelaySpec `yaml:"report_delay"`      // symptom onset to self-report isolation
	TestSensitivity  float64   `yaml:"test_sensitivity"`  // probability a symptomatic case's test detects it

	TraceSuccessProb float64   `yaml:"trace_success_prob"` // probability a contact of a detected case is traced
	TraceDelay       DelaySpec `yaml:"trace_delay"`        // parent detection to traced-contact isolation

	CaseCap   int     `yaml:"case_cap"`   // total-case cap; exceeding it truncates the run as uncontrolled
	Horizon   float64 `yaml:"horizon"`    // simulation horizon in days
	SeedCases int     `yaml:"seed_cases"` // initial cases at time 0
}

// DefaultParameters returns a literature-shaped baseline scenario:
// incubation lognormal with median ~5 days, Weibull generation time
// with mean ~5 days, and a short onset-to-report delay.
func DefaultParameters() Parameters {
	return Parameters{
		R:                 2.5,
		Dispersion:        0.5,
		Incubation:        DelaySpec{Type: "lognormal", Params: map[string]float64{"mu": 1.62, "sigma": 0.42}},
		GenerationTime:    DelaySpec{Type: "weibull", Params: map[string]float64{"shape": 2.83, "scale": 5.67}},
		GenerationTimeRef: RefExposure,
		AsymptomaticProb:  0.1,
		ReportDelay:       DelaySpec{Type: "lognormal", Params: map[string]float64{"mu": 1.0, "sigma": 0.5}},
		TestSensitivity:   1.0,
		TraceSuccessProb:  0.8,
		TraceDelay:        DelaySpec{Type: "constant", Params: map[string]float64{"value": 1.0}},
		CaseCap:           5000,
		Horizon:           365,
		SeedCases:         1,
	}
}

// LoadParameters reads and parses a YAML scenario file. Decoding starts
// from DefaultParameters, so omitted fields keep their defaults rather
// than collapsing to zero values (an absent test_sensitivity must not
// silently disable self-reporting).
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadParameters(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	p := DefaultParameters()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &p, nil
}

// Validate checks that all fields describe a well-formed scenario.
// Invalid parameters are a fatal configuration error: they are rejected
// here, before any run starts, never silently corrected.
func (p *Parameters) Validate() error {
	if err := validateFiniteNonNegative("r", p.R); err != nil {
		return err
	}
	if err := validateFinitePositive("dispersion", p.Dispersion); err != nil {
		return err
	}
	if err := validateProbability("asymptomatic_prob", p.AsymptomaticProb); err != nil {
		return err
	}
	if err := validateProbability("test_sensitivity", p.TestSensitivity); err != nil {
		return err
	}
	if err := validateProbability("trace_success_prob", p.TraceSuccessProb); err != nil {
		return err
	}
	if !validReferences[p.GenerationTimeRef] {
		return fmt.Errorf("unknown generation_time_reference %q; valid: exposure, onset", p.GenerationTimeRef)
	}
	if p.CaseCap <= 0 {
		return fmt.Errorf("case_cap must be positive, got %d", p.CaseCap)
	}
	if err := validateFinitePositive("horizon", p.Horizon); err != nil {
		return err
	}
	if p.SeedCases <= 0 {
		return fmt.Errorf("seed_cases must be positive, got %d", p.SeedCases)
	}
	for _, d := range []struct {
		name string
		spec DelaySpec
	}{
		{"incubation", p.Incubation},
		{"generation_time", p.GenerationTime},
		{"report_delay", p.ReportDelay},
		{"trace_delay", p.TraceDelay},
	} {
		if err := validateDelaySpec(d.name, d.spec); err != nil {
			return err
		}
	}
	return nil
}

func validateDelaySpec(prefix string, d DelaySpec) error {
	if !validDelayTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: lognormal, weibull, gamma, exponential, constant", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	// Constructing the sampler surfaces missing or out-of-range params.
	if _, err := NewDelaySampler(d); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return fmt.Errorf("%s must be a probability in [0, 1], got %f", name, val)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
