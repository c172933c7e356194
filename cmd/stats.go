/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"stakeengine/domain"
	"stakeengine/domain/util"

	"github.com/spf13/cobra"
	"github.com/tonkeeper/tongo"
)

// statsCmd groups the engine's read-only views; none of them
// mutate the Ledger, so each one loads dependencies and exits rather than
// joining the dispatch loop.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Read-only views over rewards and stake ownership",
}

var rewardStatsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Prints Get-Reward-Stats: cumulative, remaining and projected daily emission",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		stats := emissionEngine.GetRewardStats()
		fmt.Printf("reward token:        %s\n", domain.ActiveMintToken().ToRaw())
		fmt.Printf("current rewards:     %s\n", humanAmount(stats.CurrentRewards))
		fmt.Printf("total supply:        %s\n", humanAmount(stats.TotalSupply))
		fmt.Printf("remaining:           %s\n", humanAmount(stats.Remaining))
		fmt.Printf("projected daily:     %s\n", humanAmount(stats.ProjectedDailyEmission))
		fmt.Printf("last reward tick:    %d\n", stats.LastRewardTimestamp)
	},
}

var stakeOwnershipCmd = &cobra.Command{
	Use:   "ownership <staker-address>",
	Short: "Prints Get-Stake-Ownership: one staker's weight share across all tokens",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		staker, err := tongo.AccountIDFromBase64Url(args[0])
		if err != nil {
			log.Fatalf("⛔️ invalid staker address %q - %v\n", args[0], err.Error())
		}
		defaultDependencyInject()
		fmt.Println(emissionEngine.GetStakeOwnership(domain.StakerId(staker)))
	},
}

var uniqueStakersCmd = &cobra.Command{
	Use:   "stakers",
	Short: "Prints Get-Unique-Stakers: count of distinct stakers with a positive position",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		fmt.Println(emissionEngine.GetUniqueStakers())
	},
}

var tokenStakesCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Prints Get-Token-Stakes: aggregate staked amount per allowed token",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		for token, amount := range emissionEngine.GetTokenStakes() {
			fmt.Printf("%s  %s\n", token.ToRaw(), util.AmountString(amount))
		}
	},
}

// humanAmount rescales a decimal-string amount by the configured token
// decimals for console output; a malformed value falls back to the raw
// string rather than hiding it.
func humanAmount(s string) string {
	v, err := domain.ParseAmount(s)
	if err != nil {
		return s
	}
	return util.AmountWithDecimals(v, domain.GetTokenDecimals())
}

func init() {
	statsCmd.AddCommand(rewardStatsCmd)
	statsCmd.AddCommand(stakeOwnershipCmd)
	statsCmd.AddCommand(uniqueStakersCmd)
	statsCmd.AddCommand(tokenStakesCmd)
	rootCmd.AddCommand(statsCmd)
}
