/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pauses deposit, unstake and tick handling",
	Long:  `Flips the contract-owner pause switch so every validated handler rejects new work until 'resume' is run.`,
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		if err := pauseState.Pause(); err != nil {
			log.Fatalf("Unable to persist pause state - %v\n", err.Error())
		}
		fmt.Println("⏸️  paused")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resumes deposit, unstake and tick handling",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		if err := pauseState.Resume(); err != nil {
			log.Fatalf("Unable to persist pause state - %v\n", err.Error())
		}
		fmt.Println("▶️  resumed")
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}
