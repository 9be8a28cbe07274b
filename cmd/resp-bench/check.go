package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resp-bench/internal/checks"
	"resp-bench/internal/client"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the correctness check suite against the target server",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := client.Dial(targetAddr(), client.DefaultRetryPolicy(),
			client.WithCommandTimeout(checkTimeout))
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", targetAddr(), err)
		}
		defer conn.Close()

		results := checks.Run(conn)
		for _, r := range results {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Printf("  %-20s %s\n", r.Name+":", status)
		}

		if !checks.Passed(results) {
			return fmt.Errorf("correctness checks failed")
		}
		fmt.Println("\nall checks passed")
		return nil
	},
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Second, "per-command timeout")
	rootCmd.AddCommand(checkCmd)
}
