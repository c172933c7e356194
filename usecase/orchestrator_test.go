package usecase

import (
	"testing"
	"time"

	"stakeengine/domain"

	"github.com/stretchr/testify/assert"
)

// orchestratorHarness bundles the ledger, registry and both orchestrators
// with a buffered outbound channel and a captured notification log, so a
// test can drive the full stake/unstake message sequence the way the
// dispatch loop would.
type orchestratorHarness struct {
	ledger   *Ledger
	registry *OperationRegistry
	stake    *StakeOrchestrator
	unstake  *UnstakeOrchestrator
	outbound chan domain.OutboundPack
	notices  []string
}

func newOrchestratorHarness(t *testing.T, allowed ...domain.TokenId) *orchestratorHarness {
	t.Helper()
	domain.SetFeeParamsForTesting(1, 100)
	domain.SetExcessRatioForTesting(110, 100)

	allowedMap := make(map[domain.TokenId]bool)
	for _, token := range allowed {
		allowedMap[token] = true
	}
	domain.SetAllowedTokensForTesting(allowedMap)

	h := &orchestratorHarness{
		ledger:   newTestLedger(),
		outbound: make(chan domain.OutboundPack, 16),
	}
	h.registry = NewOperationRegistry(h.ledger)
	notify := func(_ domain.StakerId, action string, _ map[string]interface{}) {
		h.notices = append(h.notices, action)
	}
	paused := func() bool { return false }
	h.stake = NewStakeOrchestrator(h.ledger, h.registry, paused, h.outbound, notify)
	h.unstake = NewUnstakeOrchestrator(h.ledger, h.registry, NewILCompensator(0, nil), paused, h.outbound, notify)
	return h
}

func (h *orchestratorHarness) pendingOperationId(t *testing.T) domain.OperationId {
	t.Helper()
	for id, op := range h.ledger.GetPendingOperations() {
		if op.Status == domain.StatusPending {
			return id
		}
	}
	t.Fatal("no pending operation in the registry")
	return ""
}

// TestStakeHappyPath drives the full four-phase stake protocol: deposit,
// mint confirmation, liquidity confirmation, finalized position with the
// returned LP tokens as its cost basis.
func TestStakeHappyPath(t *testing.T) {
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000031")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000032")
	amm := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000033")
	h := newOrchestratorHarness(t, token)

	deposit := domain.NewAmount(100_000_000_000)
	now := time.Unix(1_700_000_000, 0)

	err := h.stake.HandleCreditNotice(domain.CreditNotice{
		Token: token, Sender: staker, Quantity: deposit, Now: now,
	}, amm, domain.NewAmount(2), domain.NewAmount(1))
	assert.NoError(t, err)

	// Phase 1 queued a mint request tagged with the new operation's id.
	pack := <-h.outbound
	mintReq, ok := pack.Message.(domain.MintRequestMessage)
	assert.True(t, ok)
	// 100_000_000_000 * 2 * 110/100, the excess-buffered counterpart.
	assert.Equal(t, domain.NewAmount(220_000_000_000), mintReq.Amount)

	opId := h.pendingOperationId(t)
	minted := domain.NewAmount(220_000_000_000)
	err = h.stake.HandleMintConfirmation(domain.MintConfirmation{
		OperationId: opId, Amount: minted, Ok: true, Now: now.Add(time.Second),
	})
	assert.NoError(t, err)

	pack = <-h.outbound
	addLiq, ok := pack.Message.(domain.AddLiquidityMessage)
	assert.True(t, ok)
	assert.Equal(t, deposit, addLiq.UserAmount)
	assert.Equal(t, minted, addLiq.MintAmount)

	finalizedAt := now.Add(2 * time.Second)
	err = h.stake.HandleLiquidityAdded(domain.LiquidityAdded{
		OperationId: opId, PoolTokens: domain.NewAmount(12_345_678), From: amm, Ok: true, Now: finalizedAt,
	})
	assert.NoError(t, err)

	position := h.ledger.GetStakingPosition(token, staker)
	assert.True(t, position.Exists())
	assert.Equal(t, deposit, position.Amount)
	assert.Equal(t, domain.NewAmount(12_345_678), position.LpTokens)
	assert.Equal(t, minted, position.MintAmount)
	assert.Equal(t, finalizedAt, position.StakedAt)
	assert.Equal(t, []string{"Stake-Started", "Stake-Complete"}, h.notices)
}

// TestStakeFailedMintRefundsAndLeavesNoPosition covers the mint failure
// path: after a failed stake the Ledger holds no position row for the
// staker, and the deposit is refunded.
func TestStakeFailedMintRefundsAndLeavesNoPosition(t *testing.T) {
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000031")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000032")
	amm := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000033")
	h := newOrchestratorHarness(t, token)

	deposit := domain.NewAmount(5_000)
	now := time.Unix(1_700_000_000, 0)
	assert.NoError(t, h.stake.HandleCreditNotice(domain.CreditNotice{
		Token: token, Sender: staker, Quantity: deposit, Now: now,
	}, amm, domain.NewAmount(1), domain.NewAmount(1)))
	<-h.outbound // mint request

	opId := h.pendingOperationId(t)
	assert.NoError(t, h.stake.HandleMintConfirmation(domain.MintConfirmation{
		OperationId: opId, Ok: false, Now: now.Add(time.Second),
	}))

	pack := <-h.outbound
	refund, ok := pack.Message.(domain.TransferMessage)
	assert.True(t, ok)
	assert.Equal(t, deposit, refund.Amount)
	assert.Equal(t, staker, refund.To)

	assert.False(t, h.ledger.GetStakingPosition(token, staker).Exists())
	assert.Equal(t, domain.StatusFailed, h.ledger.GetPendingOperation(opId).Status)
}

// TestStakeRejectsDisallowedTokenAndZeroQuantity covers the policy
// rejections on the deposit path.
func TestStakeRejectsDisallowedTokenAndZeroQuantity(t *testing.T) {
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000031")
	other := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000034")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000032")
	amm := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000033")
	h := newOrchestratorHarness(t, token)
	now := time.Unix(1_700_000_000, 0)

	err := h.stake.HandleCreditNotice(domain.CreditNotice{
		Token: other, Sender: staker, Quantity: domain.NewAmount(1), Now: now,
	}, amm, domain.NewAmount(1), domain.NewAmount(1))
	assert.ErrorIs(t, err, domain.ErrTokenNotAllowed)

	err = h.stake.HandleCreditNotice(domain.CreditNotice{
		Token: token, Sender: staker, Quantity: domain.ZeroAmount(), Now: now,
	}, amm, domain.NewAmount(1), domain.NewAmount(1))
	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)
}

// TestUnstakeRoundTripAndRedelivery covers the round-trip property (zero
// price movement, zero IL: the full deposit comes back with no fees) and
// idempotence: re-delivering the same burn confirmation is rejected
// without double settlement.
func TestUnstakeRoundTripAndRedelivery(t *testing.T) {
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000031")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000032")
	amm := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000033")
	h := newOrchestratorHarness(t, token)

	stakedAt := time.Unix(1_700_000_000, 0)
	assert.NoError(t, h.ledger.SetStakingPosition(token, staker, &domain.StakingPosition{
		Amount:     domain.NewAmount(100),
		LpTokens:   domain.NewAmount(50),
		MintAmount: domain.NewAmount(200),
		StakedAt:   stakedAt,
	}))

	now := stakedAt.Add(time.Hour)
	assert.NoError(t, h.unstake.HandleUnstakeRequest(domain.UnstakeRequest{
		Token: token, Sender: staker, Now: now,
	}, amm))

	// Checks-effects-interactions: the position is gone before the burn
	// message leaves.
	assert.False(t, h.ledger.GetStakingPosition(token, staker).Exists())
	pack := <-h.outbound
	burn, ok := pack.Message.(domain.BurnMessage)
	assert.True(t, ok)
	assert.Equal(t, domain.NewAmount(50), burn.Quantity)

	opId := h.pendingOperationId(t)
	confirmation := domain.BurnConfirmation{
		OperationId:    opId,
		From:           amm,
		WithdrawnUser:  domain.NewAmount(100),
		WithdrawnMint:  domain.NewAmount(200),
		BurnedLpTokens: domain.NewAmount(50),
		Ok:             true,
		Now:            now.Add(time.Minute),
	}
	assert.NoError(t, h.unstake.HandleBurnConfirmation(confirmation))

	pack = <-h.outbound
	settlement, ok := pack.Message.(domain.TransferMessage)
	assert.True(t, ok)
	assert.Equal(t, domain.NewAmount(100), settlement.Amount)
	assert.Equal(t, staker, settlement.To)
	// No MINT profit share under one week with no gain: exactly one
	// outbound transfer.
	assert.Empty(t, h.outbound)

	// Idempotence: the operation is already completed, so the same
	// confirmation settles nothing the second time.
	assert.ErrorIs(t, h.unstake.HandleBurnConfirmation(confirmation), domain.ErrWrongOperationState)
	assert.Empty(t, h.outbound)
}

// TestUnstakeRequiresPosition covers the missing-position
// PolicyViolation on the unstake path.
func TestUnstakeRequiresPosition(t *testing.T) {
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000031")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000032")
	amm := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000033")
	h := newOrchestratorHarness(t, token)

	err := h.unstake.HandleUnstakeRequest(domain.UnstakeRequest{
		Token: token, Sender: staker, Now: time.Unix(1_700_000_000, 0),
	}, amm)
	assert.ErrorIs(t, err, domain.ErrNoPosition)
}
