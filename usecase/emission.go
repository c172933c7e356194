package usecase

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"stakeengine/domain"
)

// Emission constants, precomputed as integer ratios so no floating-point
// literal is ever evaluated at runtime.
const (
	monthlyRateScaled  = int64(2_850_000)              // 0.0285 * 10^8
	periodsPerMonth    = int64(8640)
	allocationScale    = int64(10_000_000_000_000_000) // PRECISION = 10^16
	burnRateNumerator  = int64(25)                     // 0.0025 = 25/10000
	burnRateDivisor    = int64(10_000)
	weeklyCapNumerator = int64(45) // 0.45 = 45/100
	weeklyCapDivisor   = int64(100)
	periodsPerWeek     = int64(2016) // 5-minute periods in one week
	dailyTicks         = int64(288)  // 5-minute periods in one day
)

// periodRate is floor((MONTHLY_RATE / PERIODS_PER_MONTH) * 10^8), computed
// once at package init: floor(0.0285/8640 * 10^8) = 329.
var periodRate = new(big.Int).Quo(big.NewInt(monthlyRateScaled), big.NewInt(periodsPerMonth))

// RewardStats is the reply payload for Get-Reward-Stats.
type RewardStats struct {
	CurrentRewards         string `json:"current_rewards"`
	TotalSupply            string `json:"total_supply"`
	Remaining              string `json:"remaining"`
	ProjectedDailyEmission string `json:"projected_daily_emission"`
	LastRewardTimestamp    int64  `json:"last_reward_timestamp"`
}

// EmissionEngine computes and dispatches per-tick reward distributions.
// Its only Ledger writes are the CurrentRewards/LastRewardTimestamp
// counters it advances on a successful tick and the MintTokenSupply
// overwritten by UpdateMintSupply.
type EmissionEngine struct {
	ledger     *Ledger
	distribute func(allocations map[domain.StakerId]*domain.Amount, now time.Time) error
}

func NewEmissionEngine(ledger *Ledger, distribute func(map[domain.StakerId]*domain.Amount, time.Time) error) *EmissionEngine {
	return &EmissionEngine{ledger: ledger, distribute: distribute}
}

// RequestRewards is the tick entry point: authorized-caller and
// rate-limit checks, then emission computation, allocation and dispatch.
func (e *EmissionEngine) RequestRewards(req domain.RequestRewards, callerIsAuthorized bool) (*domain.Amount, error) {
	if !callerIsAuthorized {
		return nil, domain.ErrUnauthorizedCaller
	}
	if req.Now.Sub(e.ledger.LastRewardTimestamp()) < domain.GetMinDistributionInterval() {
		return nil, domain.ErrDistributionTooSoon
	}

	emission := e.computeEmission()
	if !domain.IsPositive(emission) {
		return domain.ZeroAmount(), nil
	}

	allocations, totalAllocated := e.allocate(emission)
	if len(allocations) > 0 {
		if err := e.distribute(allocations, req.Now); err != nil {
			return nil, err
		}
	}

	if err := e.ledger.AddCurrentRewards(totalAllocated, req.Now); err != nil {
		return nil, err
	}
	return totalAllocated, nil
}

// computeEmission applies the supply cap, the fixed monthly rate, and the
// MINT burn-rate cap, in that order.
func (e *EmissionEngine) computeEmission() *domain.Amount {
	remaining := domain.SubClampZero(domain.GetTotalSupply(), e.ledger.CurrentRewards())
	if !domain.IsPositive(remaining) {
		return domain.ZeroAmount()
	}

	emission := domain.MulDivFloor(remaining, periodRate, big.NewInt(100_000_000))
	if emission.Cmp(remaining) > 0 {
		emission = new(big.Int).Set(remaining)
	}

	mintSupply := e.ledger.MintTokenSupply()
	if domain.IsPositive(mintSupply) {
		weeklyBurn := domain.MulDivFloor(mintSupply, big.NewInt(burnRateNumerator), big.NewInt(burnRateDivisor))
		weeklyCap := domain.MulDivFloor(weeklyBurn, big.NewInt(weeklyCapNumerator), big.NewInt(weeklyCapDivisor))
		periodCap := new(big.Int).Quo(weeklyCap, big.NewInt(periodsPerWeek))
		if emission.Cmp(periodCap) > 0 {
			emission = periodCap
		}
	}

	return emission
}

// allocate splits emission across every staking position with positive
// amount, pro rata by weight.
// Traversal is sorted by (token, staker) so the resulting map is built
// deterministically even though Go map iteration order is not
// reproducible.
func (e *EmissionEngine) allocate(emission *domain.Amount) (map[domain.StakerId]*domain.Amount, *domain.Amount) {
	positions := e.ledger.GetStakingPositions()
	special := domain.GetSpecialToken()

	type weighted struct {
		key    positionKey
		weight *domain.Amount
	}
	weights := make([]weighted, 0, len(positions))
	totalWeight := domain.ZeroAmount()

	for key, pos := range positions {
		if !pos.Exists() {
			continue
		}
		w := domain.StakerWeight(key.token, special, domain.TokenWeight(key.token), pos.Amount)
		if !domain.IsPositive(w) {
			continue
		}
		weights = append(weights, weighted{key: key, weight: w})
		totalWeight.Add(totalWeight, w)
	}

	allocations := make(map[domain.StakerId]*domain.Amount)
	totalAllocated := domain.ZeroAmount()
	if !domain.IsPositive(totalWeight) {
		return allocations, totalAllocated
	}

	sort.Slice(weights, func(i, j int) bool {
		if weights[i].key.token != weights[j].key.token {
			return weights[i].key.token.ToRaw() < weights[j].key.token.ToRaw()
		}
		return weights[i].key.staker.ToRaw() < weights[j].key.staker.ToRaw()
	})

	scale := big.NewInt(allocationScale)
	for _, wt := range weights {
		numerator := new(big.Int).Mul(emission, wt.weight)
		numerator.Mul(numerator, scale)
		numerator.Quo(numerator, totalWeight)
		numerator.Quo(numerator, scale)
		if !domain.IsPositive(numerator) {
			continue
		}
		if existing, ok := allocations[wt.key.staker]; ok {
			existing.Add(existing, numerator)
		} else {
			allocations[wt.key.staker] = numerator
		}
		totalAllocated.Add(totalAllocated, numerator)
	}

	return allocations, totalAllocated
}

// UpdateMintSupply overwrites the burn-rate cap input.
func (e *EmissionEngine) UpdateMintSupply(msg domain.UpdateMintSupply) error {
	return e.ledger.SetMintTokenSupply(msg.Supply)
}

// GetRewardStats returns the read-only totals view.
func (e *EmissionEngine) GetRewardStats() RewardStats {
	remaining := domain.SubClampZero(domain.GetTotalSupply(), e.ledger.CurrentRewards())
	projectedDaily := new(big.Int).Mul(remaining, periodRate)
	projectedDaily.Mul(projectedDaily, big.NewInt(dailyTicks))
	projectedDaily.Quo(projectedDaily, big.NewInt(100_000_000))
	return RewardStats{
		CurrentRewards:         domain.FormatAmount(e.ledger.CurrentRewards()),
		TotalSupply:            domain.FormatAmount(domain.GetTotalSupply()),
		Remaining:              domain.FormatAmount(remaining),
		ProjectedDailyEmission: domain.FormatAmount(projectedDaily),
		LastRewardTimestamp:    e.ledger.LastRewardTimestamp().Unix(),
	}
}

// GetStakeOwnership returns stakerWeight/totalWeight for one staker across
// all tokens, formatted to 6 decimals.
func (e *EmissionEngine) GetStakeOwnership(staker domain.StakerId) string {
	positions := e.ledger.GetStakingPositions()
	special := domain.GetSpecialToken()

	stakerWeight := domain.ZeroAmount()
	totalWeight := domain.ZeroAmount()
	for key, pos := range positions {
		if !pos.Exists() {
			continue
		}
		w := domain.StakerWeight(key.token, special, domain.TokenWeight(key.token), pos.Amount)
		totalWeight.Add(totalWeight, w)
		if key.staker == staker {
			stakerWeight.Add(stakerWeight, w)
		}
	}
	if !domain.IsPositive(totalWeight) {
		return "0.000000"
	}

	scaled := domain.MulDivFloor(stakerWeight, big.NewInt(1_000_000), totalWeight)
	return fmt.Sprintf("%d.%06d", new(big.Int).Quo(scaled, big.NewInt(1_000_000)).Int64(), new(big.Int).Mod(scaled, big.NewInt(1_000_000)).Int64())
}

// GetUniqueStakers returns the count of distinct stakers holding any
// positive position across all tokens.
func (e *EmissionEngine) GetUniqueStakers() int {
	seen := make(map[domain.StakerId]bool)
	for key, pos := range e.ledger.GetStakingPositions() {
		if pos.Exists() {
			seen[key.staker] = true
		}
	}
	return len(seen)
}

// GetTokenStakes returns the aggregate staked amount per token.
func (e *EmissionEngine) GetTokenStakes() map[domain.TokenId]*domain.Amount {
	totals := make(map[domain.TokenId]*domain.Amount)
	for key, pos := range e.ledger.GetStakingPositions() {
		if !pos.Exists() {
			continue
		}
		if existing, ok := totals[key.token]; ok {
			existing.Add(existing, pos.Amount)
		} else {
			totals[key.token] = new(big.Int).Set(pos.Amount)
		}
	}
	return totals
}
