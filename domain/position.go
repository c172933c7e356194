package domain

import "time"

// StakingPosition is the cost basis of one staker's holding in one token,
// finalized the moment a stake operation completes. Every
// field after finalization is immutable; the position is replaced wholesale
// by StakeOrchestrator.HandleLiquidityAdded and cleared wholesale by
// UnstakeOrchestrator.HandleUnstakeRequest — it is never partially mutated.
type StakingPosition struct {
	Amount     *Amount   `json:"amount"`
	LpTokens   *Amount   `json:"lp_tokens"`
	MintAmount *Amount   `json:"mint_amount"`
	StakedAt   time.Time `json:"staked_at"`
}

// Exists reports the invariant "amount > 0 ⇔ position exists": a nil
// position, or one with a non-positive Amount, is treated as absent.
func (p *StakingPosition) Exists() bool {
	return p != nil && IsPositive(p.Amount)
}

// WeeksSinceStaked returns floor((now - StakedAt) / 1 week), the unit the
// MINT rebase computation operates on. Negative elapsed
// time (clock skew) floors to zero weeks.
func (p *StakingPosition) WeeksSinceStaked(now time.Time) int64 {
	elapsed := now.Unix() - p.StakedAt.Unix()
	if elapsed <= 0 {
		return 0
	}
	return elapsed / (7 * 24 * 60 * 60)
}
