package usecase

import (
	"testing"
	"time"

	"stakeengine/domain"

	"github.com/stretchr/testify/assert"
)

const week = int64(7 * 24 * 60 * 60)

func ilTestOperation(t *testing.T) *domain.PendingOperation {
	t.Helper()
	return &domain.PendingOperation{
		Id:    domain.OperationId("op"),
		Kind:  domain.OperationUnstake,
		Token: mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000021"),
	}
}

func TestCompensateNoShortfallNoCompensation(t *testing.T) {
	c := NewILCompensator(50, nil)
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	// Withdrawn at or above the cost basis: nothing to compensate.
	got := c.Compensate(op, domain.NewAmount(10_000), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, domain.ZeroAmount(), got)
	got = c.Compensate(op, domain.NewAmount(11_000), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, domain.ZeroAmount(), got)
}

func TestCompensateShortfallBelowCap(t *testing.T) {
	c := NewILCompensator(50, nil) // cap = 0.50% of the deposit
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	// Shortfall 30 is under the cap floor(10_000*50/10_000)=50, so the
	// whole loss is made good.
	got := c.Compensate(op, domain.NewAmount(9_970), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, domain.NewAmount(30), got)
}

func TestCompensateShortfallClampedToCap(t *testing.T) {
	c := NewILCompensator(50, nil)
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	// Shortfall 2_000 far exceeds the 50-unit cap.
	got := c.Compensate(op, domain.NewAmount(8_000), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, domain.NewAmount(50), got)
}

func TestCompensateVestsLinearlyInFirstWeek(t *testing.T) {
	c := NewILCompensator(50, nil)
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	// Held half a week: half the capped compensation.
	got := c.Compensate(op, domain.NewAmount(8_000), domain.NewAmount(10_000), t0, t0+week/2)
	assert.Equal(t, domain.NewAmount(25), got)

	// An instant round-trip earns nothing.
	got = c.Compensate(op, domain.NewAmount(8_000), domain.NewAmount(10_000), t0, t0)
	assert.Equal(t, domain.ZeroAmount(), got)
}

func TestCompensateNeverExceedsReserve(t *testing.T) {
	reserve := domain.NewAmount(10)
	c := NewILCompensator(50, func(domain.TokenId) *domain.Amount { return reserve })
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	got := c.Compensate(op, domain.NewAmount(8_000), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, reserve, got)
}

func TestCompensateDisabledByZeroCap(t *testing.T) {
	c := NewILCompensator(0, nil)
	op := ilTestOperation(t)
	t0 := time.Unix(1_600_000_000, 0).Unix()

	got := c.Compensate(op, domain.NewAmount(8_000), domain.NewAmount(10_000), t0, t0+2*week)
	assert.Equal(t, domain.ZeroAmount(), got)
}
