package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"electsim"
	"electsim/analyzer"
)

// Globals
var (
	algorithm    string
	topoKind     string
	nodes        int
	meshSide     int
	probability  float64
	runs         int
	seed         uint64
	startDelay   time.Duration
	roundDelay   time.Duration
	linkDelay    time.Duration
	startJitter  time.Duration
	eventLimit   int
	scenarioFile string
	reportFile   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "electsim",
	Short: "electsim - A discrete event simulator for leader election protocols",
	Long: "electsim runs virtual time simulations of distributed leader election protocols " +
		"on configurable topologies and reports which node won, how many rounds the " +
		"election took and how many messages the winner sent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulateAction(cmd)
	},
}

// Execute runs the root command
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "arbitrary", "election algorithm (arbitrary or anonymous)")
	rootCmd.Flags().StringVarP(&topoKind, "topology", "t", "ring", "topology kind (ring, mesh, star, complete or random)")
	rootCmd.Flags().IntVarP(&nodes, "nodes", "n", 5, "number of nodes")
	rootCmd.Flags().IntVar(&meshSide, "mesh-side", 3, "side length of the mesh grid")
	rootCmd.Flags().Float64VarP(&probability, "probability", "p", 0.5, "edge probability of the random topology")
	rootCmd.Flags().IntVarP(&runs, "runs", "r", 1, "number of simulation runs")
	rootCmd.Flags().Uint64Var(&seed, "seed", 1, "base seed for the random bit draws")
	rootCmd.Flags().DurationVar(&startDelay, "start-delay", 10*time.Millisecond, "delay before the first round")
	rootCmd.Flags().DurationVar(&roundDelay, "round-delay", 100*time.Millisecond, "delay between consecutive rounds")
	rootCmd.Flags().DurationVar(&linkDelay, "link-delay", time.Millisecond, "message delivery delay")
	rootCmd.Flags().DurationVar(&startJitter, "jitter", 5*time.Millisecond, "maximum random offset added to the start delay")
	rootCmd.Flags().IntVar(&eventLimit, "event-limit", 100000, "maximum number of events per run")
	rootCmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "", "JSON scenario file overriding the flags it sets")
	rootCmd.Flags().StringVarP(&reportFile, "report", "o", "", "also write the report to this file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every protocol step")
}

func simulateAction(cmd *cobra.Command) error {
	if scenarioFile != "" {
		if err := applyScenario(scenarioFile); err != nil {
			return err
		}
	}

	alg, err := electsim.ParseAlgorithm(algorithm)
	if err != nil {
		return err
	}
	topo, err := buildTopology()
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("at least one run is required. Got: %v", runs)
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}

	rec := analyzer.NewRecorder()
	for i := 0; i < runs; i++ {
		sim, err := electsim.Prepare(
			topo,
			alg,
			electsim.WithStartDelay(startDelay),
			electsim.WithRoundDelay(roundDelay),
			electsim.WithLinkDelay(linkDelay),
			electsim.WithStartJitter(startJitter),
			electsim.WithSeed(seed),
			electsim.WithRunIndex(i),
			electsim.WithEventLimit(eventLimit),
			electsim.WithAnalyzer(rec),
			electsim.WithLogger(log),
		)
		if err != nil {
			return err
		}
		if err := sim.Run(); err != nil {
			return fmt.Errorf("run %v: %w", i, err)
		}
	}

	if err := rec.WriteReport(os.Stdout); err != nil {
		return err
	}
	if reportFile != "" {
		f, err := os.Create(reportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rec.WriteReport(f); err != nil {
			return err
		}
	}
	return nil
}
