package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resp-bench/internal/config"
	"resp-bench/internal/harness"
	"resp-bench/internal/report"
)

var (
	runConfigFile string
	runPreset     string
	runCSV        string
	runSkipChecks bool
	runProgress   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full harness: correctness checks followed by benchmarks",
	Long: `Run the full harness against the target server.

The configuration is resolved in order: --config file, --preset name,
built-in defaults. The --host and --port flags override the target
address from either source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		harnessConfig, csvPath, err := buildRunConfig(cmd)
		if err != nil {
			return err
		}

		engine := harness.New(harnessConfig)
		runReport, err := engine.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Println(runReport.Report())

		if csvPath != "" && len(runReport.Benchmarks) > 0 {
			if err := report.AppendCSV(csvPath, runReport.Benchmarks); err != nil {
				return err
			}
			fmt.Printf("results appended to %s\n", csvPath)
		}

		if !runReport.ChecksPassed {
			return fmt.Errorf("correctness checks failed")
		}
		return nil
	},
}

// buildRunConfig は設定ファイル、プリセット、フラグからラン設定を構築する
func buildRunConfig(cmd *cobra.Command) (harness.Config, string, error) {
	var harnessConfig harness.Config
	csvPath := runCSV

	switch {
	case runConfigFile != "":
		fileConfig, err := config.LoadFile(runConfigFile)
		if err != nil {
			return harnessConfig, "", err
		}
		if err := fileConfig.Validate(); err != nil {
			return harnessConfig, "", fmt.Errorf("invalid config: %w", err)
		}
		harnessConfig, err = fileConfig.ToHarnessConfig()
		if err != nil {
			return harnessConfig, "", err
		}
		if csvPath == "" {
			csvPath = fileConfig.Output.CSV
		}
	case runPreset != "":
		preset, ok := harness.GetPreset(runPreset)
		if !ok {
			return harnessConfig, "", fmt.Errorf("unknown preset: %s (available: %v)", runPreset, harness.ListPresets())
		}
		harnessConfig = preset
		harnessConfig.Addr = targetAddr()
	default:
		harnessConfig = harness.StandardPreset()
		harnessConfig.Addr = targetAddr()
	}

	// 明示的に指定されたフラグでオーバーライド
	if runConfigFile != "" && (cmd.Flags().Changed("host") || cmd.Flags().Changed("port")) {
		harnessConfig.Addr = targetAddr()
	}
	if runSkipChecks {
		harnessConfig.SkipChecks = true
	}
	harnessConfig.Bench.ShowProgress = runProgress

	return harnessConfig, csvPath, nil
}

func init() {
	runCmd.Flags().StringVar(&runConfigFile, "config", "", "config file path (YAML/JSON)")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "preset name (quick, standard, stress)")
	runCmd.Flags().StringVar(&runCSV, "csv", "", "append results to this CSV file")
	runCmd.Flags().BoolVar(&runSkipChecks, "skip-checks", false, "skip the correctness check suite")
	runCmd.Flags().BoolVar(&runProgress, "progress", true, "show a progress bar")
	rootCmd.AddCommand(runCmd)
}
