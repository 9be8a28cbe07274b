package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resp-bench/internal/harness"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available run presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("available presets:")
		fmt.Println()
		for _, name := range harness.ListPresets() {
			config, _ := harness.GetPreset(name)
			fmt.Printf("  %-12s %s\n", name, config.Description)
		}
		fmt.Println()
		fmt.Println("usage: resp-bench run --preset quick")
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
