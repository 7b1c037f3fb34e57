package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/outbreak-sim/outbreak-sim/sim"
)

func TestBuildParameters_FlagDefaultsAreValid(t *testing.T) {
	// GIVEN no scenario file, only registered flag defaults
	scenarioPath = ""

	// WHEN the scenario is assembled
	p := buildParameters()

	// THEN it must pass the same validation the engine applies
	require.NoError(t, p.Validate())
	assert.Equal(t, 2.5, p.R)
	assert.Equal(t, 0.5, p.Dispersion)
	assert.Equal(t, sim.RefExposure, p.GenerationTimeRef)
	assert.Equal(t, 5000, p.CaseCap)
}

func TestBuildParameters_ScenarioFileOverridesFlags(t *testing.T) {
	content := `
r: 1.2
dispersion: 0.1
incubation:
  type: lognormal
  params: {mu: 1.62, sigma: 0.42}
generation_time:
  type: weibull
  params: {shape: 2.83, scale: 5.67}
generation_time_reference: onset
asymptomatic_prob: 0.3
report_delay:
  type: constant
  params: {value: 2.0}
test_sensitivity: 0.95
trace_success_prob: 0.7
trace_delay:
  type: constant
  params: {value: 0.5}
case_cap: 800
horizon: 90
seed_cases: 2
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	scenarioPath = path
	defer func() { scenarioPath = "" }()

	p := buildParameters()
	require.NoError(t, p.Validate())
	assert.Equal(t, 1.2, p.R)
	assert.Equal(t, sim.RefOnset, p.GenerationTimeRef)
	assert.Equal(t, 800, p.CaseCap)
	assert.Equal(t, 2, p.SeedCases)
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["ensemble"])
	assert.True(t, names["sweep"])
}
