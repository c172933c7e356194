/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"stakeengine/interface/exporter"

	"github.com/spf13/cobra"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Sweeps stale pending operations",
	Long:  `Runs the Operation Registry's staleness reaper once and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		runCleanup()
	},
}

func runCleanup() {
	removed := registry.CleanStaleOperations(time.Now())
	exporter.IncReaperRemoved(removed)
	fmt.Printf("✅ cleanup removed %d stale operation(s)\n", removed)
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
