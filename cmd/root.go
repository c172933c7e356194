/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"stakeengine/domain"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stakeengine",
	Short: "Single-sided staking and rewards engine driver",
	Long: `stakeengine drives the off-chain side of the single-sided staking
protocol: it watches the treasury account for deposits and confirmations,
advances the stake/unstake state machines, and runs the periodic reward
emission and staleness-reaper ticks.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

func initConfig() {
	domain.ReadConfig(cfgFile)
}
