package usecase

import (
	"time"

	"stakeengine/domain"
)

// OperationRegistry owns the pending/completed/failed lifecycle of
// PendingOperations. It is a thin policy layer over the
// Ledger: the Ledger holds the records, the registry enforces the
// transition guards and the duplicate-submit check.
type OperationRegistry struct {
	ledger *Ledger
}

func NewOperationRegistry(ledger *Ledger) *OperationRegistry {
	return &OperationRegistry{ledger: ledger}
}

// Create constructs a new pending stake operation. mintAmount starts at
// zero and is filled in once the mint confirmation arrives.
func (r *OperationRegistry) Create(kind domain.OperationKind, token domain.TokenId, staker domain.StakerId, amount *domain.Amount, amm domain.AmmId, now time.Time) (*domain.PendingOperation, error) {
	return r.create(kind, token, staker, amount, amm, now, domain.ZeroAmount(), nil, time.Time{})
}

// CreateFromPosition constructs a new pending unstake operation, copying
// the cost-basis fields (lpTokens, mintAmount, stakedAt) from the
// position snapshot the caller captured before clearing it.
func (r *OperationRegistry) CreateFromPosition(token domain.TokenId, staker domain.StakerId, amm domain.AmmId, now time.Time, position *domain.StakingPosition) (*domain.PendingOperation, error) {
	return r.create(domain.OperationUnstake, token, staker, position.Amount, amm, now, position.MintAmount, position.LpTokens, position.StakedAt)
}

func (r *OperationRegistry) create(kind domain.OperationKind, token domain.TokenId, staker domain.StakerId, amount *domain.Amount, amm domain.AmmId, now time.Time, mintAmount *domain.Amount, lpTokens *domain.Amount, stakedAt time.Time) (*domain.PendingOperation, error) {
	if r.ledger.HasPendingOperation(token, staker, kind) {
		return nil, domain.ErrDuplicatePending
	}

	id := domain.NewOperationId(token, kind, staker, now.Unix())
	op := &domain.PendingOperation{
		Id:         id,
		Kind:       kind,
		Token:      token,
		Sender:     staker,
		Amount:     amount,
		Amm:        amm,
		Status:     domain.StatusPending,
		Timestamp:  now,
		MintAmount: mintAmount,
		LpTokens:   lpTokens,
		StakedAt:   stakedAt,
	}
	if err := r.ledger.SetPendingOperation(op); err != nil {
		return nil, err
	}
	return op, nil
}

// VerifyOperation is the single gate used by every confirmation handler:
// it checks existence, kind, status, and (if amm is non-nil) that the
// confirming sender matches the operation's recorded AMM.
func (r *OperationRegistry) VerifyOperation(id domain.OperationId, kind domain.OperationKind, expectedStatus domain.OperationStatus, amm *domain.AmmId) (*domain.PendingOperation, error) {
	op := r.ledger.GetPendingOperation(id)
	if op == nil {
		return nil, domain.ErrUnknownOperation
	}
	if op.Kind != kind {
		return nil, domain.ErrWrongOperationKind
	}
	if op.Status != expectedStatus {
		return nil, domain.ErrWrongOperationState
	}
	if amm != nil && op.Amm != *amm {
		return nil, domain.ErrWrongAmm
	}
	return op, nil
}

func (r *OperationRegistry) UpdateMintAmount(id domain.OperationId, amount *domain.Amount) error {
	return r.ledger.UpdatePendingOperationMintAmount(id, amount)
}

func (r *OperationRegistry) UpdateLpTokens(id domain.OperationId, lpTokens *domain.Amount) error {
	return r.ledger.UpdatePendingOperationLpTokens(id, lpTokens)
}

func (r *OperationRegistry) Complete(id domain.OperationId) error {
	return r.ledger.CompletePendingOperation(id)
}

func (r *OperationRegistry) Fail(id domain.OperationId) error {
	return r.ledger.FailPendingOperation(id)
}

// CleanStaleOperations sweeps every record whose age exceeds the
// configured OPERATION_TIMEOUT and removes it, terminal records included:
// completed and failed operations stay in the registry (so a re-delivered
// confirmation is still rejected as already-settled) until this sweep
// reaps them. Removal only frees registry slots; it never triggers a
// refund.
func (r *OperationRegistry) CleanStaleOperations(now time.Time) int {
	timeout := domain.GetOperationTimeout()
	removed := 0
	for id, op := range r.ledger.GetPendingOperations() {
		if op.IsStale(now, timeout) {
			if err := r.ledger.RemovePendingOperation(id); err == nil {
				removed++
			}
		}
	}
	return removed
}
