package domain

import "time"

// The functions below set the package-level configuration values
// ReadConfig normally populates from viper. Production code always goes
// through ReadConfig; these exist only so usecase-level tests can exercise
// settlement/emission math against known fee ratios, weights and supply
// caps without spinning up a full config file.

// SetFeeParamsForTesting sets the protocol fee percentage/divisor applied
// to every profit share.
func SetFeeParamsForTesting(percentage, divisor int64) {
	protocolFeePercentage = percentage
	feeDivisor = divisor
}

// SetExcessRatioForTesting sets the EXCESS_MULTIPLIER/EXCESS_DIVISOR
// safety buffer applied to the counterpart MINT amount.
func SetExcessRatioForTesting(multiplier, divisor int64) {
	excessMultiplier = multiplier
	excessDivisor = divisor
}

// SetEmissionParamsForTesting sets the supply cap and special-token
// weighting rule the emission engine reads from configuration.
func SetEmissionParamsForTesting(supply *Amount, special TokenId, weights map[TokenId]int64) {
	totalSupply = supply
	specialToken = special
	allowedWeights = weights
}

// SetMinDistributionIntervalForTesting sets MIN_DISTRIBUTION_INTERVAL
func SetMinDistributionIntervalForTesting(d time.Duration) {
	minDistInterval = d
}

// SetAllowedTokensForTesting sets the allow-list the orchestrators
// validate deposits and unstake requests against.
func SetAllowedTokensForTesting(tokens map[TokenId]bool) {
	allowedTokens = tokens
}
