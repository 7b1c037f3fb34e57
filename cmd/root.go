package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/outbreak-sim/outbreak-sim/sim"
)

var (
	// CLI flags shared across subcommands
	seed         int64  // Base seed; replicates derive their own streams from it
	logLevel     string // Log verbosity level
	scenarioPath string // Optional YAML scenario file (overrides parameter flags)

	// Scenario parameter flags (ignored when --scenario is set)
	reproductionNumber float64 // Effective reproduction number R
	dispersion         float64 // Negative binomial dispersion k
	asymptomaticProb   float64 // Probability a case never shows symptoms
	testSensitivity    float64 // Probability a symptomatic case's test detects it
	traceSuccessProb   float64 // Probability a contact of a detected case is traced
	traceDelayDays     float64 // Fixed tracing delay in days
	generationRef      string  // Generation-time reference: exposure or onset
	caseCap            int     // Case-count cap
	horizon            float64 // Simulation horizon in days
	seedCases          int     // Initial cases at time 0

	// Ensemble / sweep flags
	numRuns  int    // Replicates per ensemble
	gridPath string // YAML sweep grid file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "outbreak-sim",
	Short: "Stochastic branching-process simulator for outbreak control by contact tracing",
}

// setupLogging configures logrus from the --log flag.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildParameters assembles the scenario from the YAML file when given,
// otherwise from defaults adjusted by parameter flags.
func buildParameters() sim.Parameters {
	if scenarioPath != "" {
		p, err := sim.LoadParameters(scenarioPath)
		if err != nil {
			logrus.Fatalf("unable to read scenario: %v", err)
		}
		return *p
	}
	p := sim.DefaultParameters()
	p.R = reproductionNumber
	p.Dispersion = dispersion
	p.AsymptomaticProb = asymptomaticProb
	p.TestSensitivity = testSensitivity
	p.TraceSuccessProb = traceSuccessProb
	p.TraceDelay = sim.DelaySpec{Type: "constant", Params: map[string]float64{"value": traceDelayDays}}
	p.GenerationTimeRef = generationRef
	p.CaseCap = caseCap
	p.Horizon = horizon
	p.SeedCases = seedCases
	return p
}

// runCmd simulates a single outbreak realization.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one stochastic outbreak realization",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		params := buildParameters()
		if err := params.Validate(); err != nil {
			logrus.Fatalf("invalid scenario: %v", err)
		}

		run, err := sim.Simulate(params, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		fmt.Printf("verdict:    %s\n", run.Verdict)
		fmt.Printf("final size: %d cases\n", run.FinalSize)
		if run.Verdict == sim.VerdictControlled {
			fmt.Printf("extinct at: %.1f days\n", run.ExtinctionTime)
		} else if run.CapExceeded {
			fmt.Printf("truncated:  case cap reached\n")
		} else {
			fmt.Printf("truncated:  %d contacts past the horizon\n", run.Truncated)
		}
	},
}

// ensembleCmd runs N replicates and reports aggregate statistics.
var ensembleCmd = &cobra.Command{
	Use:   "ensemble",
	Short: "Run many replicates and estimate the probability of control",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		params := buildParameters()

		startTime := time.Now()
		res, err := sim.RunEnsemble(params, numRuns, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("ensemble failed: %v", err)
		}

		fmt.Printf("runs:                %d (%.2fs)\n", numRuns, time.Since(startTime).Seconds())
		fmt.Printf("control probability: %.3f [%.3f, %.3f]\n", res.ControlProbability, res.CILower, res.CIUpper)
		fmt.Printf("final size:          mean %.1f, median %.0f, p90 %.0f, max %.0f\n",
			res.FinalSize.Mean, res.FinalSize.Median, res.FinalSize.P90, res.FinalSize.Max)
		if res.TimeToExtinction.N > 0 {
			fmt.Printf("time to extinction:  mean %.1f, median %.1f, p90 %.1f days (controlled runs)\n",
				res.TimeToExtinction.Mean, res.TimeToExtinction.Median, res.TimeToExtinction.P90)
		}
	},
}

// sweepCmd repeats the full ensemble per parameter-grid combination.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep a parameter grid, one full ensemble per combination",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if gridPath == "" {
			logrus.Fatalf("sweep requires --grid")
		}
		grid, err := sim.LoadGrid(gridPath)
		if err != nil {
			logrus.Fatalf("unable to read sweep grid: %v", err)
		}

		points, err := sim.RunSweep(grid, numRuns, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("sweep failed: %v", err)
		}
		for _, pt := range points {
			fmt.Printf("%-52s control %.3f [%.3f, %.3f]  mean size %.1f\n",
				pt.Label(), pt.Result.ControlProbability,
				pt.Result.CILower, pt.Result.CIUpper, pt.Result.FinalSize.Mean)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addScenarioFlags registers the shared scenario parameter flags.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Base seed for random streams")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides parameter flags)")

	cmd.Flags().Float64Var(&reproductionNumber, "r", 2.5, "Effective reproduction number")
	cmd.Flags().Float64Var(&dispersion, "dispersion", 0.5, "Offspring dispersion (low = superspreading)")
	cmd.Flags().Float64Var(&asymptomaticProb, "asymptomatic-prob", 0.1, "Probability a case is asymptomatic")
	cmd.Flags().Float64Var(&testSensitivity, "test-sensitivity", 1.0, "Probability a symptomatic case's test detects it")
	cmd.Flags().Float64Var(&traceSuccessProb, "trace-success", 0.8, "Probability a contact is successfully traced")
	cmd.Flags().Float64Var(&traceDelayDays, "trace-delay", 1.0, "Tracing delay in days (fixed)")
	cmd.Flags().StringVar(&generationRef, "generation-ref", "exposure", "Generation-time reference (exposure, onset)")
	cmd.Flags().IntVar(&caseCap, "case-cap", 5000, "Case-count cap before truncating as uncontrolled")
	cmd.Flags().Float64Var(&horizon, "horizon", 365, "Simulation horizon in days")
	cmd.Flags().IntVar(&seedCases, "seed-cases", 1, "Initial cases at time 0")
}

// init sets up CLI flags and subcommands
func init() {
	addScenarioFlags(runCmd)

	addScenarioFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 1000, "Number of replicates")

	sweepCmd.Flags().Int64Var(&seed, "seed", 42, "Base seed for random streams")
	sweepCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	sweepCmd.Flags().StringVar(&gridPath, "grid", "", "YAML sweep grid file")
	sweepCmd.Flags().IntVar(&numRuns, "runs", 1000, "Number of replicates per combination")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ensembleCmd)
	rootCmd.AddCommand(sweepCmd)
}
