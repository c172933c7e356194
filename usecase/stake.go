package usecase

import (
	"log"

	"stakeengine/domain"
)

// StakeOrchestrator drives the four-phase stake protocol:
// deposit -> mint request -> add-liquidity request -> finalized position.
// It is keyed entirely by OperationId; the registry's duplicate-pending
// check is what guarantees phases 2-3 for one (staker,token) arrive after
// phase 1 and in order.
type StakeOrchestrator struct {
	ledger   *Ledger
	registry *OperationRegistry
	paused   func() bool
	outbound chan<- domain.OutboundPack
	notify   func(staker domain.StakerId, action string, data map[string]interface{})
}

func NewStakeOrchestrator(ledger *Ledger, registry *OperationRegistry, paused func() bool, outbound chan<- domain.OutboundPack, notify func(domain.StakerId, string, map[string]interface{})) *StakeOrchestrator {
	return &StakeOrchestrator{ledger: ledger, registry: registry, paused: paused, outbound: outbound, notify: notify}
}

// HandleCreditNotice is phase 1: a deposit arrives from an allowed
// token's jetton wallet. amm is the pool this token trades against;
// priceNumerator/priceDenominator express the latest AMM price as a
// rational multiplier applied to the deposit to get the raw counterpart
// MINT amount, before the EXCESS_MULTIPLIER/EXCESS_DIVISOR safety buffer.
func (s *StakeOrchestrator) HandleCreditNotice(notice domain.CreditNotice, amm domain.AmmId, priceNumerator, priceDenominator *domain.Amount) error {
	if s.paused() {
		return domain.ErrPaused
	}
	if !domain.IsTokenAllowed(notice.Token) {
		return domain.ErrTokenNotAllowed
	}
	if !domain.IsPositive(notice.Quantity) {
		return domain.ErrNonPositiveAmount
	}
	if s.ledger.HasPendingOperation(notice.Token, notice.Sender, domain.OperationStake) {
		return domain.ErrDuplicatePending
	}

	counterpart := counterpartMintAmount(notice.Quantity, priceNumerator, priceDenominator)

	op, err := s.registry.Create(domain.OperationStake, notice.Token, notice.Sender, notice.Quantity, amm, notice.Now)
	if err != nil {
		return err
	}

	s.outbound <- domain.OutboundPack{
		Reference: op.Id,
		Kind:      domain.OperationStake,
		Message: domain.MintRequestMessage{
			To:          domain.GetMintPolicy(),
			OperationId: op.Id,
			Amount:      counterpart,
		},
	}
	s.notify(notice.Sender, "Stake-Started", map[string]interface{}{
		"operation_id": string(op.Id),
		"token":        notice.Token.ToRaw(),
		"amount":       domain.FormatAmount(notice.Quantity),
	})
	return nil
}

// counterpartMintAmount computes the MINT counterpart for a deposit:
// deposit * price, buffered by EXCESS_MULTIPLIER/EXCESS_DIVISOR
// so the subsequent add-liquidity step cannot be starved by price drift
// between quote and execution, floored at 1.
func counterpartMintAmount(deposit, priceNumerator, priceDenominator *domain.Amount) *domain.Amount {
	raw := domain.MulDivFloor(deposit, priceNumerator, priceDenominator)
	buffered := domain.MulDivFloor(raw, domain.NewAmount(domain.GetExcessMultiplier()), domain.NewAmount(domain.GetExcessDivisor()))
	if !domain.IsPositive(buffered) {
		return domain.NewAmount(1)
	}
	return buffered
}

// HandleMintConfirmation is phase 2: the mint-policy actor replies to the
// Mint-Request. On success, persist the minted amount and request
// liquidity provision from the AMM; on failure, fail the operation and
// refund the staker's deposit.
func (s *StakeOrchestrator) HandleMintConfirmation(msg domain.MintConfirmation) error {
	op, err := s.registry.VerifyOperation(msg.OperationId, domain.OperationStake, domain.StatusPending, nil)
	if err != nil {
		return err
	}

	if !msg.Ok {
		return s.failAndRefund(op)
	}

	if err := s.registry.UpdateMintAmount(op.Id, msg.Amount); err != nil {
		return err
	}

	s.outbound <- domain.OutboundPack{
		Reference: op.Id,
		Kind:      domain.OperationStake,
		Message: domain.AddLiquidityMessage{
			To:          op.Amm,
			OperationId: op.Id,
			UserAmount:  op.Amount,
			MintAmount:  msg.Amount,
		},
	}
	return nil
}

// HandleLiquidityAdded is phase 3: the AMM replies with the LP tokens
// minted for this deposit. On success, finalize the StakingPosition,
// complete the operation, and notify the staker; on failure, fail and
// refund.
func (s *StakeOrchestrator) HandleLiquidityAdded(msg domain.LiquidityAdded) error {
	op, err := s.registry.VerifyOperation(msg.OperationId, domain.OperationStake, domain.StatusPending, &msg.From)
	if err != nil {
		return err
	}

	if !msg.Ok {
		return s.failAndRefund(op)
	}

	position := &domain.StakingPosition{
		Amount:     op.Amount,
		LpTokens:   msg.PoolTokens,
		MintAmount: op.MintAmount,
		StakedAt:   msg.Now,
	}
	if err := s.ledger.SetStakingPosition(op.Token, op.Sender, position); err != nil {
		return err
	}
	if err := s.registry.Complete(op.Id); err != nil {
		return err
	}

	s.notify(op.Sender, "Stake-Complete", map[string]interface{}{
		"operation_id": string(op.Id),
		"token":        op.Token.ToRaw(),
		"amount":       domain.FormatAmount(op.Amount),
		"lp_tokens":    domain.FormatAmount(msg.PoolTokens),
		"mint_amount":  domain.FormatAmount(op.MintAmount),
	})
	return nil
}

// failAndRefund is the phase 2/3 failure path: mark
// the operation failed and return whatever has already moved to the
// staker. The failed record is left in place for the reaper to clean up
// later; there is no automatic retry.
func (s *StakeOrchestrator) failAndRefund(op *domain.PendingOperation) error {
	if err := s.registry.Fail(op.Id); err != nil {
		return err
	}
	s.outbound <- domain.OutboundPack{
		Reference: op.Id,
		Kind:      domain.OperationStake,
		Message: domain.TransferMessage{
			To:     op.Sender,
			Amount: op.Amount,
			Tag:    "refund",
		},
	}
	s.notify(op.Sender, "Stake-Failed", map[string]interface{}{
		"operation_id": string(op.Id),
		"token":        op.Token.ToRaw(),
		"refund":       domain.FormatAmount(op.Amount),
	})
	log.Printf("🟠 stake operation %s failed, refunded %s to %s\n", op.Id, domain.FormatAmount(op.Amount), op.Sender.ToRaw())
	return nil
}
