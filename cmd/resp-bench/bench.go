package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resp-bench/internal/bench"
	"resp-bench/internal/client"
	"resp-bench/internal/harness"
	"resp-bench/internal/report"
)

var (
	benchSingleOps    int
	benchClients      int
	benchOpsPerClient int
	benchValueSize    int
	benchRateLimit    float64
	benchTimeout      time.Duration
	benchCSV          string
	benchNoProgress   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run benchmarks only, skipping the correctness checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		config := harness.Config{
			Name:           "bench",
			Addr:           targetAddr(),
			ConnectRetry:   client.DefaultRetryPolicy(),
			CommandTimeout: benchTimeout,
			SkipChecks:     true,
			Bench: bench.Config{
				SingleOps:    benchSingleOps,
				Clients:      benchClients,
				OpsPerClient: benchOpsPerClient,
				ValueSize:    benchValueSize,
				RateLimit:    benchRateLimit,
				ShowProgress: !benchNoProgress,
			},
		}

		engine := harness.New(config)
		runReport, err := engine.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Print(report.SummaryTable(runReport.Benchmarks))

		if benchCSV != "" {
			if err := report.AppendCSV(benchCSV, runReport.Benchmarks); err != nil {
				return err
			}
			fmt.Printf("\nresults appended to %s\n", benchCSV)
		}
		return nil
	},
}

func init() {
	defaults := bench.DefaultConfig()
	benchCmd.Flags().IntVar(&benchSingleOps, "single-ops", defaults.SingleOps, "operations for the single-connection benchmark")
	benchCmd.Flags().IntVar(&benchClients, "clients", defaults.Clients, "concurrent connections")
	benchCmd.Flags().IntVar(&benchOpsPerClient, "ops-per-client", defaults.OpsPerClient, "operations per connection")
	benchCmd.Flags().IntVar(&benchValueSize, "value-size", defaults.ValueSize, "value size in bytes")
	benchCmd.Flags().Float64Var(&benchRateLimit, "rate-limit", 0, "per-connection ops/sec limit (0 = unlimited)")
	benchCmd.Flags().DurationVar(&benchTimeout, "timeout", 5*time.Second, "per-command timeout")
	benchCmd.Flags().StringVar(&benchCSV, "csv", "", "append results to this CSV file")
	benchCmd.Flags().BoolVar(&benchNoProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(benchCmd)
}
