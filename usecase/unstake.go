package usecase

import (
	"log"
	"math/big"

	"stakeengine/domain"
)

// UnstakeOrchestrator drives the two-phase unstake protocol: burn the LP
// position, then settle the withdrawn amounts against IL compensation,
// user-token profit share and MINT rebased profit share.
type UnstakeOrchestrator struct {
	ledger   *Ledger
	registry *OperationRegistry
	il       *ILCompensator
	paused   func() bool
	outbound chan<- domain.OutboundPack
	notify   func(staker domain.StakerId, action string, data map[string]interface{})
}

func NewUnstakeOrchestrator(ledger *Ledger, registry *OperationRegistry, il *ILCompensator, paused func() bool, outbound chan<- domain.OutboundPack, notify func(domain.StakerId, string, map[string]interface{})) *UnstakeOrchestrator {
	return &UnstakeOrchestrator{ledger: ledger, registry: registry, il: il, paused: paused, outbound: outbound, notify: notify}
}

// HandleUnstakeRequest is phase 1. The staking position is cleared
// before any outbound message is sent (checks-effects-interactions).
func (u *UnstakeOrchestrator) HandleUnstakeRequest(req domain.UnstakeRequest, amm domain.AmmId) error {
	if u.paused() {
		return domain.ErrPaused
	}
	if !domain.IsTokenAllowed(req.Token) {
		return domain.ErrTokenNotAllowed
	}

	position := u.ledger.GetStakingPosition(req.Token, req.Sender)
	if !position.Exists() {
		return domain.ErrNoPosition
	}
	if u.ledger.HasPendingOperation(req.Token, req.Sender, domain.OperationUnstake) {
		return domain.ErrDuplicatePending
	}

	amount, lpTokens := position.Amount, position.LpTokens

	if err := u.ledger.ClearStakingPosition(req.Token, req.Sender); err != nil {
		return err
	}

	op, err := u.registry.CreateFromPosition(req.Token, req.Sender, amm, req.Now, position)
	if err != nil {
		return err
	}

	u.outbound <- domain.OutboundPack{
		Reference: op.Id,
		Kind:      domain.OperationUnstake,
		Message: domain.BurnMessage{
			To:          amm,
			OperationId: op.Id,
			Quantity:    lpTokens,
		},
	}
	u.notify(req.Sender, "Unstake-Started", map[string]interface{}{
		"operation_id": string(op.Id),
		"token":        req.Token.ToRaw(),
		"amount":       domain.FormatAmount(amount),
	})
	return nil
}

// HandleBurnConfirmation is phase 2: settle the
// withdrawn amounts against IL compensation and profit shares, then
// complete the operation and transfer out.
func (u *UnstakeOrchestrator) HandleBurnConfirmation(msg domain.BurnConfirmation) error {
	if u.paused() {
		return domain.ErrPaused
	}
	op, err := u.registry.VerifyOperation(msg.OperationId, domain.OperationUnstake, domain.StatusPending, &msg.From)
	if err != nil {
		return err
	}

	if !msg.Ok {
		return u.failUnstake(op)
	}

	withdrawnUser, withdrawnMint := msg.WithdrawnUser, msg.WithdrawnMint

	initialUserAmount := op.Amount
	initialMintAmount := op.MintAmount
	weeks := op.WeeksSinceStaked(msg.Now)

	// (a) impermanent-loss compensation, drawn from the protocol reserve.
	ilComp := u.il.Compensate(op, withdrawnUser, initialUserAmount, op.StakedAt.Unix(), msg.Now.Unix())

	// (b) user-token profit share.
	amountToSendUser := userTokenSettlement(withdrawnUser, initialUserAmount)

	// (c) MINT-token profit share with rebase adjustment.
	mintShare := mintRebaseSettlement(withdrawnMint, initialMintAmount, weeks)

	// (d) mark the operation completed before any outbound transfer.
	if err := u.registry.Complete(op.Id); err != nil {
		return err
	}

	// (e) transfer the user-token settlement (base + IL compensation) and,
	// if positive, the MINT profit share, then notify.
	totalUser := new(big.Int).Add(amountToSendUser, ilComp)
	u.outbound <- domain.OutboundPack{
		Reference: op.Id,
		Kind:      domain.OperationUnstake,
		Message: domain.TransferMessage{
			To:     op.Sender,
			Amount: totalUser,
			Tag:    "settlement",
		},
	}
	if domain.IsPositive(mintShare) {
		u.outbound <- domain.OutboundPack{
			Reference: op.Id,
			Kind:      domain.OperationUnstake,
			Message: domain.TransferMessage{
				To:     op.Sender,
				Amount: mintShare,
				Tag:    "profit-share",
			},
		}
	}

	u.notify(op.Sender, "Unstake-Complete", map[string]interface{}{
		"operation_id":     string(op.Id),
		"token":            op.Token.ToRaw(),
		"withdrawn_user":   domain.FormatAmount(withdrawnUser),
		"withdrawn_mint":   domain.FormatAmount(withdrawnMint),
		"il_compensation":  domain.FormatAmount(ilComp),
		"amount_sent_user": domain.FormatAmount(totalUser),
		"mint_profit":      domain.FormatAmount(mintShare),
	})
	return nil
}

func (u *UnstakeOrchestrator) failUnstake(op *domain.PendingOperation) error {
	if err := u.registry.Fail(op.Id); err != nil {
		return err
	}
	u.notify(op.Sender, "Unstake-Failed", map[string]interface{}{
		"operation_id": string(op.Id),
		"token":        op.Token.ToRaw(),
	})
	log.Printf("🟠 unstake operation %s failed (burn confirmation reported failure)\n", op.Id)
	return nil
}

// userTokenSettlement passes the withdrawal through untouched at or
// below cost, else deducts the protocol's fee share of the profit.
func userTokenSettlement(withdrawn, initial *domain.Amount) *domain.Amount {
	if withdrawn.Cmp(initial) <= 0 {
		return new(big.Int).Set(withdrawn)
	}
	profit := domain.SubClampZero(withdrawn, initial)
	protocolFee := domain.MulDivFloor(profit, domain.NewAmount(domain.GetProtocolFeePercentage()), domain.NewAmount(domain.GetFeeDivisor()))
	return domain.SubClampZero(withdrawn, protocolFee)
}

// mintRebaseSettlement: the rebased cost basis decays by 0.9975 per
// elapsed week, and only withdrawals above
// that rebased basis earn a profit share.
func mintRebaseSettlement(withdrawn, initial *domain.Amount, weeks int64) *domain.Amount {
	if !domain.IsPositive(initial) || !domain.IsPositive(withdrawn) {
		return domain.ZeroAmount()
	}

	rebaseFactor := domain.RebaseFactor(weeks)
	rebased := domain.MulDivFloor(initial, rebaseFactor, domain.RebasePrecision())

	if withdrawn.Cmp(rebased) < 0 {
		return domain.ZeroAmount()
	}

	profit := domain.SubClampZero(withdrawn, rebased)
	protocolFee := domain.MulDivFloor(profit, domain.NewAmount(domain.GetProtocolFeePercentage()), domain.NewAmount(domain.GetFeeDivisor()))
	return domain.SubClampZero(profit, protocolFee)
}
