package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resp-bench/internal/api"
	"resp-bench/internal/harness"
)

var monitorAddr string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Start the web monitor for interactive runs",
	Long: `Start the web monitor.

The monitor serves a status page and a JSON API for starting runs
against the target server, and streams run events to connected
browsers over WebSocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		base := harness.StandardPreset()
		base.Addr = targetAddr()

		fmt.Printf("monitor starting on http://%s (target %s)\n", monitorAddr, base.Addr)
		fmt.Println("Press Ctrl+C to stop")

		return api.NewServer(monitorAddr, base).Start(ctx)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorAddr, "addr", ":8080", "monitor listen address")
	rootCmd.AddCommand(monitorCmd)
}
