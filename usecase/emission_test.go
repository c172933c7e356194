package usecase

import (
	"testing"
	"time"

	"stakeengine/domain"

	"github.com/stretchr/testify/assert"
)

// TestEmissionSingleStaker: with no MINT burn-rate cap in effect, a lone
// staker receives the entire period emission and CurrentRewards advances
// by exactly that amount.
func TestEmissionSingleStaker(t *testing.T) {
	domain.SetEmissionParamsForTesting(domain.NewAmount(500_000_000_000), domain.TokenId{}, nil)

	ledger := newTestLedger()
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000011")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000012")
	assert.NoError(t, ledger.SetStakingPosition(token, staker, &domain.StakingPosition{
		Amount:     domain.NewAmount(1_000),
		LpTokens:   domain.NewAmount(1),
		MintAmount: domain.NewAmount(1),
		StakedAt:   time.Unix(1_600_000_000, 0),
	}))

	var distributed map[domain.StakerId]*domain.Amount
	engine := NewEmissionEngine(ledger, func(allocations map[domain.StakerId]*domain.Amount, now time.Time) error {
		distributed = allocations
		return nil
	})

	total, err := engine.RequestRewards(domain.RequestRewards{Now: time.Unix(1_700_000_000, 0)}, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.NewAmount(1_645_000), total)
	assert.Equal(t, domain.NewAmount(1_645_000), distributed[staker])
	assert.Equal(t, domain.NewAmount(1_645_000), ledger.CurrentRewards())
}

// TestEmissionRequiresAuthorizedCaller covers the authorized-caller-only
// gate on reward ticks.
func TestEmissionRequiresAuthorizedCaller(t *testing.T) {
	domain.SetEmissionParamsForTesting(domain.NewAmount(500_000_000_000), domain.TokenId{}, nil)
	ledger := newTestLedger()
	engine := NewEmissionEngine(ledger, func(map[domain.StakerId]*domain.Amount, time.Time) error { return nil })

	_, err := engine.RequestRewards(domain.RequestRewards{Now: time.Unix(1_700_000_000, 0)}, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedCaller)
}

// TestEmissionDistributionTooSoon: a second tick inside
// MIN_DISTRIBUTION_INTERVAL of the first is rejected without mutating
// CurrentRewards.
func TestEmissionDistributionTooSoon(t *testing.T) {
	domain.SetEmissionParamsForTesting(domain.NewAmount(500_000_000_000), domain.TokenId{}, nil)
	domain.SetMinDistributionIntervalForTesting(300_000 * time.Millisecond)
	defer domain.SetMinDistributionIntervalForTesting(0)
	ledger := newTestLedger()
	assert.NoError(t, ledger.AddCurrentRewards(domain.ZeroAmount(), time.Unix(1_700_000_000, 0)))

	engine := NewEmissionEngine(ledger, func(map[domain.StakerId]*domain.Amount, time.Time) error { return nil })
	_, err := engine.RequestRewards(domain.RequestRewards{Now: time.Unix(1_700_000_001, 0)}, true)
	assert.ErrorIs(t, err, domain.ErrDistributionTooSoon)
}

// TestEmissionZeroTotalWeightYieldsNoAllocations: an empty Ledger
// (totalWeight=0) must not panic on division by zero, and yields no
// allocations at all.
func TestEmissionZeroTotalWeightYieldsNoAllocations(t *testing.T) {
	domain.SetEmissionParamsForTesting(domain.NewAmount(500_000_000_000), domain.TokenId{}, nil)
	ledger := newTestLedger()

	called := false
	engine := NewEmissionEngine(ledger, func(map[domain.StakerId]*domain.Amount, time.Time) error {
		called = true
		return nil
	})

	total, err := engine.RequestRewards(domain.RequestRewards{Now: time.Unix(1_700_000_000, 0)}, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.ZeroAmount(), total)
	assert.False(t, called)
}

// TestEmissionSupplyExhausted covers the "remaining <= 0" early return.
func TestEmissionSupplyExhausted(t *testing.T) {
	domain.SetEmissionParamsForTesting(domain.NewAmount(1_000), domain.TokenId{}, nil)
	ledger := newTestLedger()
	assert.NoError(t, ledger.AddCurrentRewards(domain.NewAmount(1_000), time.Unix(1_600_000_000, 0)))

	engine := NewEmissionEngine(ledger, func(map[domain.StakerId]*domain.Amount, time.Time) error { return nil })
	total, err := engine.RequestRewards(domain.RequestRewards{Now: time.Unix(1_700_000_000, 0)}, true)
	assert.NoError(t, err)
	assert.Equal(t, domain.ZeroAmount(), total)
}
