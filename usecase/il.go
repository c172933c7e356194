package usecase

import (
	"stakeengine/domain"
)

// ILCompensator computes impermanent-loss compensation for an unstake
// settlement. The exact formula belongs to an external IL policy module;
// its contract here is fixed: deterministic, always a valid non-negative
// Amount, and drawn from a protocol-controlled reserve rather than the
// user's own withdrawn tokens. Until that oracle is integrated, this
// implements a bounded, deterministic stand-in: the user-token shortfall
// against the cost basis, capped at a configured fraction of the initial
// deposit, linearly phased in over the position's first week, never
// exceeding the reserve balance.
type ILCompensator struct {
	// capBps is the maximum compensation as basis points of the initial
	// user-token deposit (e.g. 50 = 0.50%).
	capBps int64
	// reserveBalance returns the protocol reserve available to fund IL
	// compensation in the user token; compensation never exceeds it.
	reserveBalance func(token domain.TokenId) *domain.Amount
}

func NewILCompensator(capBps int64, reserveBalance func(domain.TokenId) *domain.Amount) *ILCompensator {
	return &ILCompensator{capBps: capBps, reserveBalance: reserveBalance}
}

const bpsDivisor = int64(10_000)
const ilVestingSeconds = int64(7 * 24 * 60 * 60)

// Compensate returns the IL compensation amount for one unstake
// settlement: the shortfall of withdrawnUser against initialUserAmount,
// capped at capBps of the initial deposit. A withdrawal at or above the
// cost basis has no loss to compensate. op.Token identifies the reserve
// to draw from.
func (c *ILCompensator) Compensate(op *domain.PendingOperation, withdrawnUser, initialUserAmount *domain.Amount, stakedAtUnix, nowUnix int64) *domain.Amount {
	if c == nil || c.capBps <= 0 || !domain.IsPositive(initialUserAmount) {
		return domain.ZeroAmount()
	}

	shortfall := domain.SubClampZero(initialUserAmount, withdrawnUser)
	if !domain.IsPositive(shortfall) {
		return domain.ZeroAmount()
	}

	capped := domain.MulDivFloor(initialUserAmount, domain.NewAmount(c.capBps), domain.NewAmount(bpsDivisor))
	if shortfall.Cmp(capped) < 0 {
		capped = shortfall
	}

	held := nowUnix - stakedAtUnix
	if held < ilVestingSeconds {
		if held <= 0 {
			return domain.ZeroAmount()
		}
		capped = domain.MulDivFloor(capped, domain.NewAmount(held), domain.NewAmount(ilVestingSeconds))
	}

	if c.reserveBalance != nil {
		reserve := c.reserveBalance(op.Token)
		if reserve != nil && capped.Cmp(reserve) > 0 {
			capped = reserve
		}
	}

	return capped
}
