package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// DelaySampler generates non-negative durations in days.
// Used for incubation periods, generation-time offsets, onset-to-report
// delays, and contact-tracing delays.
type DelaySampler interface {
	// Sample returns one independent non-negative draw.
	Sample(rng *rand.Rand) float64
}

// LogNormalSampler produces log-normally distributed delays.
// Parameterized on the log scale: X = exp(mu + sigma*Z).
type LogNormalSampler struct {
	mu    float64 // mean of ln(X)
	sigma float64 // std dev of ln(X)
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) float64 {
	val := math.Exp(s.mu + s.sigma*rng.NormFloat64())
	// Guard against +Inf from extreme sigma values
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return math.Exp(s.mu)
	}
	return val
}

// WeibullSampler produces Weibull-distributed delays via inverse CDF.
type WeibullSampler struct {
	shape float64 // Weibull k parameter
	scale float64 // Weibull λ parameter (days)
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}

// GammaSampler produces Gamma-distributed delays.
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64 // alpha parameter
	scale float64 // beta parameter (days)
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, s.scale)
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		// Ahrens-Dieter: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		if u == 0 {
			u = math.SmallestNonzeroFloat64
		}
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	// Marsaglia-Tsang for shape >= 1
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// ExponentialSampler produces exponentially-distributed delays.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

// ConstantSampler always returns the same fixed delay.
// Used for degenerate test parameterizations (zero variance).
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return s.value
}

// poissonRand samples from Poisson(lambda) by counting unit-rate
// exponential inter-arrivals until they exceed lambda. Exact for any
// non-negative lambda; cost grows linearly in lambda, which stays small
// for epidemiologically plausible reproduction numbers.
func poissonRand(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	count := 0
	t := rng.ExpFloat64()
	for t < lambda {
		count++
		t += rng.ExpFloat64()
	}
	return count
}

// NegBinomRand samples an offspring count from the overdispersed
// negative binomial with the given mean and dispersion, via the
// Gamma-Poisson mixture: lambda ~ Gamma(dispersion, mean/dispersion),
// count ~ Poisson(lambda). Low dispersion produces superspreading
// (most cases infect few, rare cases infect many).
func NegBinomRand(rng *rand.Rand, mean, dispersion float64) int {
	if mean <= 0 {
		return 0
	}
	lambda := gammaRand(rng, dispersion, mean/dispersion)
	return poissonRand(rng, lambda)
}

// BernoulliRand returns true with probability p.
func BernoulliRand(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// DelaySpec parameterizes a delay distribution.
type DelaySpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDelaySampler creates a DelaySampler from a DelaySpec.
func NewDelaySampler(spec DelaySpec) (DelaySampler, error) {
	switch spec.Type {
	case "lognormal":
		if err := requireParam(spec.Params, "mu", "sigma"); err != nil {
			return nil, err
		}
		if spec.Params["sigma"] < 0 {
			return nil, fmt.Errorf("lognormal sigma must be non-negative, got %f", spec.Params["sigma"])
		}
		return &LogNormalSampler{
			mu:    spec.Params["mu"],
			sigma: spec.Params["sigma"],
		}, nil

	case "weibull":
		if err := requireParam(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		if spec.Params["shape"] <= 0 || spec.Params["scale"] <= 0 {
			return nil, fmt.Errorf("weibull shape and scale must be positive, got shape=%f scale=%f",
				spec.Params["shape"], spec.Params["scale"])
		}
		return &WeibullSampler{
			shape: spec.Params["shape"],
			scale: spec.Params["scale"],
		}, nil

	case "gamma":
		if err := requireParam(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		if spec.Params["shape"] <= 0 || spec.Params["scale"] <= 0 {
			return nil, fmt.Errorf("gamma shape and scale must be positive, got shape=%f scale=%f",
				spec.Params["shape"], spec.Params["scale"])
		}
		return &GammaSampler{
			shape: spec.Params["shape"],
			scale: spec.Params["scale"],
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", spec.Params["mean"])
		}
		return &ExponentialSampler{
			mean: spec.Params["mean"],
		}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		if spec.Params["value"] < 0 {
			return nil, fmt.Errorf("constant value must be non-negative, got %f", spec.Params["value"])
		}
		return &ConstantSampler{value: spec.Params["value"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
