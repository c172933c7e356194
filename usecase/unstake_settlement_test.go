package usecase

import (
	"testing"

	"stakeengine/domain"

	"github.com/stretchr/testify/assert"
)

// TestUserTokenSettlement: no profit passes the withdrawal through
// untouched, and a small profit can round the protocol fee down to zero
// under floor division.
func TestUserTokenSettlement(t *testing.T) {
	domain.SetFeeParamsForTesting(1, 100)

	// No profit: the withdrawal passes through whole.
	assert.Equal(t, domain.NewAmount(100), userTokenSettlement(domain.NewAmount(100), domain.NewAmount(100)))
	assert.Equal(t, domain.NewAmount(90), userTokenSettlement(domain.NewAmount(90), domain.NewAmount(100)))

	// profit=10, fee=floor(10*1/100)=0, so the whole withdrawal still
	// reaches the staker.
	assert.Equal(t, domain.NewAmount(110), userTokenSettlement(domain.NewAmount(110), domain.NewAmount(100)))
}

// TestUserTokenSettlementFeeRounding exercises a profit large enough that
// the floor-divided protocol fee is non-zero.
func TestUserTokenSettlementFeeRounding(t *testing.T) {
	domain.SetFeeParamsForTesting(1, 100)

	// profit=1000, fee=floor(1000*1/100)=10, amountToSendUser = withdrawn-fee.
	got := userTokenSettlement(domain.NewAmount(2_000), domain.NewAmount(1_000))
	assert.Equal(t, domain.NewAmount(1_990), got)
}

// TestMintRebaseSettlementNoShareUnderOneWeek: elapsed < 1 week means
// weeks=0, rebaseFactor=1, so withdrawing exactly the initial MINT amount
// earns no profit share.
func TestMintRebaseSettlementNoShareUnderOneWeek(t *testing.T) {
	domain.SetFeeParamsForTesting(1, 100)
	got := mintRebaseSettlement(domain.NewAmount(200), domain.NewAmount(200), 0)
	assert.Equal(t, domain.ZeroAmount(), got)
}

// TestMintRebaseSettlementTwoWeeks: mintAmount=10_000_000, two weeks
// elapsed, withdrawn=10_000_000.
func TestMintRebaseSettlementTwoWeeks(t *testing.T) {
	domain.SetFeeParamsForTesting(1, 100)

	rebaseFactor := domain.RebaseFactor(2)
	assert.Equal(t, domain.NewAmount(99_500_625), rebaseFactor)

	rebased := domain.MulDivFloor(domain.NewAmount(10_000_000), rebaseFactor, domain.RebasePrecision())
	assert.Equal(t, domain.NewAmount(9_950_062), rebased)

	got := mintRebaseSettlement(domain.NewAmount(10_000_000), domain.NewAmount(10_000_000), 2)
	// profit = 10_000_000 - 9_950_062 = 49_938; fee = floor(49_938*1/100) = 499;
	// userShare = 49_938 - 499 = 49_439.
	assert.Equal(t, domain.NewAmount(49_439), got)
}

// TestMintRebaseSettlementBelowRebasedBasis covers the "withdrawn <
// rebased" branch: no share at all, not even a clamp to zero profit.
func TestMintRebaseSettlementBelowRebasedBasis(t *testing.T) {
	domain.SetFeeParamsForTesting(1, 100)
	got := mintRebaseSettlement(domain.NewAmount(9_000_000), domain.NewAmount(10_000_000), 2)
	assert.Equal(t, domain.ZeroAmount(), got)
}

// TestMintRebaseSettlementZeroInitialOrWithdrawn covers the "initial==0
// or withdrawn<=0" short-circuit.
func TestMintRebaseSettlementZeroInitialOrWithdrawn(t *testing.T) {
	assert.Equal(t, domain.ZeroAmount(), mintRebaseSettlement(domain.NewAmount(100), domain.ZeroAmount(), 1))
	assert.Equal(t, domain.ZeroAmount(), mintRebaseSettlement(domain.ZeroAmount(), domain.NewAmount(100), 1))
}

// TestCounterpartMintAmount covers the counterpart computation, including
// the floor-of-1 guard.
func TestCounterpartMintAmount(t *testing.T) {
	domain.SetExcessRatioForTesting(110, 100)

	// deposit=1000 at price 2/1, buffered by 110/100: 1000*2*110/100 = 2200.
	got := counterpartMintAmount(domain.NewAmount(1_000), domain.NewAmount(2), domain.NewAmount(1))
	assert.Equal(t, domain.NewAmount(2_200), got)

	// A deposit small enough that the buffered amount would floor to zero
	// is instead floored at 1, not zero, so the subsequent mint request is
	// never for a non-positive amount.
	got = counterpartMintAmount(domain.NewAmount(1), domain.NewAmount(1), domain.NewAmount(1_000_000))
	assert.Equal(t, domain.NewAmount(1), got)
}
