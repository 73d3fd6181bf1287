package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasops/atlasalerts/internal/simulate"
)

var (
	simConnString  string
	simScenario    string
	simDuration    time.Duration
	simMaxConns    int
	simCleanup     bool
	simCleanupOnly bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate workloads that trigger the configured alerts",
	Long: `simulate runs load scenarios (` + strings.Join(simulate.Scenarios(), ", ") + `)
against a cluster to demonstrate that the configured alerts fire. For
demo and testing only; never point this at a production cluster.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simConnString, "connection-string", "", "cluster connection string (mongodb+srv://...)")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", simulate.ScenarioCPU, "scenario to run")
	simulateCmd.Flags().DurationVar(&simDuration, "duration", time.Minute, "how long each scenario sustains its load")
	simulateCmd.Flags().IntVar(&simMaxConns, "max-connections", 50, "connection count for the connections scenario")
	simulateCmd.Flags().BoolVar(&simCleanup, "cleanup", false, "drop simulation data after the run")
	simulateCmd.Flags().BoolVar(&simCleanupOnly, "cleanup-only", false, "only drop simulation data, run nothing")
	_ = simulateCmd.MarkFlagRequired("connection-string")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sim, err := simulate.Connect(ctx, simConnString, log)
	if err != nil {
		return err
	}
	defer sim.Close(ctx) //nolint:errcheck // disconnect on the way out

	if simCleanupOnly {
		return sim.Cleanup(ctx)
	}

	if err := sim.Run(ctx, simScenario, simulate.Options{
		Duration:       simDuration,
		MaxConnections: simMaxConns,
	}); err != nil {
		return err
	}

	if simCleanup {
		return sim.Cleanup(ctx)
	}
	return nil
}
