package usecase

import (
	"fmt"
	"log"
	"time"

	"stakeengine/domain"
	"stakeengine/interface/repository"

	"github.com/tonkeeper/tongo"
)

// positionKey is the (token, staker) composite key used by the in-memory
// mirror; tongo.AccountID is comparable so it can be a map key directly.
type positionKey struct {
	token  domain.TokenId
	staker domain.StakerId
}

// Ledger is the sole mutator of persistent staking state.
// It keeps an in-memory mirror of both tables for the single-threaded
// dispatch loop to read and write without touching Postgres on every
// lookup, and writes through to the repositories on every mutation so a
// restart can rebuild the mirror from durable storage. There is no
// locking: handlers run to completion one at a time, so the mirror is
// never read or written concurrently.
type Ledger struct {
	positionRepo  *repository.PositionRepository
	operationRepo *repository.OperationRepository
	counterRepo   *repository.CounterRepository

	positions  map[positionKey]*domain.StakingPosition
	operations map[domain.OperationId]*domain.PendingOperation

	currentRewards      *domain.Amount
	lastRewardTimestamp time.Time
	mintTokenSupply     *domain.Amount
	paused              bool
}

func NewLedger(positionRepo *repository.PositionRepository, operationRepo *repository.OperationRepository, counterRepo *repository.CounterRepository) *Ledger {
	return &Ledger{
		positionRepo:        positionRepo,
		operationRepo:       operationRepo,
		counterRepo:         counterRepo,
		positions:           make(map[positionKey]*domain.StakingPosition),
		operations:          make(map[domain.OperationId]*domain.PendingOperation),
		currentRewards:      domain.ZeroAmount(),
		mintTokenSupply:     domain.ZeroAmount(),
		lastRewardTimestamp: time.Unix(0, 0),
	}
}

// Load rebuilds the in-memory mirror from Postgres at process startup;
// the repositories are the durable source of truth behind the driver's
// working state.
func (l *Ledger) Load() error {
	positions, err := l.positionRepo.FindAll()
	if err != nil {
		return fmt.Errorf("loading staking positions: %w", err)
	}
	for _, rec := range positions {
		key, pos, err := decodePosition(rec)
		if err != nil {
			log.Printf("🔴 skipping malformed position [token=%v staker=%v] - %v\n", rec.Token, rec.Staker, err)
			continue
		}
		l.positions[key] = pos
	}

	ops, err := l.operationRepo.FindAll()
	if err != nil {
		return fmt.Errorf("loading pending operations: %w", err)
	}
	for _, rec := range ops {
		op, err := decodeOperation(rec)
		if err != nil {
			log.Printf("🔴 skipping malformed operation [id=%v] - %v\n", rec.Id, err)
			continue
		}
		l.operations[op.Id] = op
	}

	counters, err := l.counterRepo.Find()
	if err == nil && counters != nil {
		if v, perr := domain.ParseAmount(counters.CurrentRewards); perr == nil {
			l.currentRewards = v
		}
		if v, perr := domain.ParseAmount(counters.MintTokenSupply); perr == nil {
			l.mintTokenSupply = v
		}
		l.lastRewardTimestamp = time.Unix(counters.LastRewardTimestamp, 0)
		l.paused = counters.Paused
	}

	return nil
}

//-------------------------------------------------------------------
// StakingPosition accessors

func (l *Ledger) GetStakingPosition(token domain.TokenId, staker domain.StakerId) *domain.StakingPosition {
	return l.positions[positionKey{token, staker}]
}

// SetStakingPosition replaces the position atomically and persists it.
func (l *Ledger) SetStakingPosition(token domain.TokenId, staker domain.StakerId, pos *domain.StakingPosition) error {
	key := positionKey{token, staker}
	l.positions[key] = pos
	return l.positionRepo.Upsert(
		token.ToRaw(), staker.ToRaw(),
		domain.FormatAmount(pos.Amount), domain.FormatAmount(pos.LpTokens), domain.FormatAmount(pos.MintAmount),
		pos.StakedAt,
	)
}

// ClearStakingPosition removes the key entirely, the checks-effects step
// the unstake protocol performs before any outbound message.
func (l *Ledger) ClearStakingPosition(token domain.TokenId, staker domain.StakerId) error {
	key := positionKey{token, staker}
	delete(l.positions, key)
	return l.positionRepo.Clear(token.ToRaw(), staker.ToRaw())
}

// GetStakingPositions returns a point-in-time snapshot; callers must not
// retain it across a suspension point.
func (l *Ledger) GetStakingPositions() map[positionKey]*domain.StakingPosition {
	snapshot := make(map[positionKey]*domain.StakingPosition, len(l.positions))
	for k, v := range l.positions {
		snapshot[k] = v
	}
	return snapshot
}

//-------------------------------------------------------------------
// PendingOperation accessors

func (l *Ledger) GetPendingOperation(id domain.OperationId) *domain.PendingOperation {
	return l.operations[id]
}

// HasPendingOperation reports whether a pending op already exists for
// (staker, token, kind), the gate that enforces "exactly one pending
// operation per triple".
func (l *Ledger) HasPendingOperation(token domain.TokenId, staker domain.StakerId, kind domain.OperationKind) bool {
	for _, op := range l.operations {
		if op.Status == domain.StatusPending && op.Token == token && op.Sender == staker && op.Kind == kind {
			return true
		}
	}
	return false
}

func (l *Ledger) SetPendingOperation(op *domain.PendingOperation) error {
	l.operations[op.Id] = op
	var lp *string
	if op.LpTokens != nil {
		s := domain.FormatAmount(op.LpTokens)
		lp = &s
	}
	return l.operationRepo.Insert(repository.OperationRecord{
		Id:         string(op.Id),
		Kind:       string(op.Kind),
		Token:      op.Token.ToRaw(),
		Sender:     op.Sender.ToRaw(),
		Amount:     domain.FormatAmount(op.Amount),
		Amm:        op.Amm.ToRaw(),
		Status:     string(op.Status),
		Timestamp:  op.Timestamp,
		MintAmount: domain.FormatAmount(op.MintAmount),
		LpTokens:   lp,
		StakedAt:   op.StakedAt,
	})
}

func (l *Ledger) UpdatePendingOperationMintAmount(id domain.OperationId, amount *domain.Amount) error {
	op, ok := l.operations[id]
	if !ok {
		return domain.ErrUnknownOperation
	}
	op.MintAmount = amount
	return l.operationRepo.SetMintAmount(string(id), domain.FormatAmount(amount))
}

func (l *Ledger) UpdatePendingOperationLpTokens(id domain.OperationId, lpTokens *domain.Amount) error {
	op, ok := l.operations[id]
	if !ok {
		return domain.ErrUnknownOperation
	}
	op.LpTokens = lpTokens
	return l.operationRepo.SetLpTokens(string(id), domain.FormatAmount(lpTokens))
}

func (l *Ledger) CompletePendingOperation(id domain.OperationId) error {
	return l.setOperationStatus(id, domain.StatusCompleted)
}

func (l *Ledger) FailPendingOperation(id domain.OperationId) error {
	return l.setOperationStatus(id, domain.StatusFailed)
}

func (l *Ledger) setOperationStatus(id domain.OperationId, status domain.OperationStatus) error {
	op, ok := l.operations[id]
	if !ok {
		return domain.ErrUnknownOperation
	}
	if op.Status != domain.StatusPending {
		return domain.ErrWrongOperationState
	}
	op.Status = status
	return l.operationRepo.SetStatus(string(id), string(status))
}

func (l *Ledger) RemovePendingOperation(id domain.OperationId) error {
	delete(l.operations, id)
	return l.operationRepo.Remove(string(id))
}

func (l *Ledger) GetPendingOperations() map[domain.OperationId]*domain.PendingOperation {
	snapshot := make(map[domain.OperationId]*domain.PendingOperation, len(l.operations))
	for k, v := range l.operations {
		snapshot[k] = v
	}
	return snapshot
}

func (l *Ledger) CountPendingOperations() int {
	count := 0
	for _, op := range l.operations {
		if op.Status == domain.StatusPending {
			count++
		}
	}
	return count
}

//-------------------------------------------------------------------
// Global counters

func (l *Ledger) CurrentRewards() *domain.Amount      { return l.currentRewards }
func (l *Ledger) MintTokenSupply() *domain.Amount     { return l.mintTokenSupply }
func (l *Ledger) LastRewardTimestamp() time.Time      { return l.lastRewardTimestamp }

func (l *Ledger) AddCurrentRewards(emission *domain.Amount, now time.Time) error {
	l.currentRewards.Add(l.currentRewards, emission)
	l.lastRewardTimestamp = now
	return l.persistCounters()
}

func (l *Ledger) SetMintTokenSupply(supply *domain.Amount) error {
	l.mintTokenSupply = supply
	return l.persistCounters()
}

// Paused reports the contract-owner's pause switch. It is persisted rather than held only in
// memory because the "pause"/"resume" CLI commands run in their own
// short-lived process, separate from "start"'s long-running one.
func (l *Ledger) Paused() bool { return l.paused }

func (l *Ledger) SetPaused(paused bool) error {
	l.paused = paused
	return l.persistCounters()
}

func (l *Ledger) persistCounters() error {
	return l.counterRepo.Upsert(repository.CounterRecord{
		CurrentRewards:      domain.FormatAmount(l.currentRewards),
		LastRewardTimestamp: l.lastRewardTimestamp.Unix(),
		MintTokenSupply:     domain.FormatAmount(l.mintTokenSupply),
		Paused:              l.paused,
	})
}

//-------------------------------------------------------------------
// decode helpers

func decodePosition(rec repository.PositionRecord) (positionKey, *domain.StakingPosition, error) {
	token, err := tongo.AccountIDFromRaw(rec.Token)
	if err != nil {
		return positionKey{}, nil, err
	}
	staker, err := tongo.AccountIDFromRaw(rec.Staker)
	if err != nil {
		return positionKey{}, nil, err
	}
	amount, err := domain.ParseAmount(rec.Amount)
	if err != nil {
		return positionKey{}, nil, err
	}
	lpTokens, err := domain.ParseAmount(rec.LpTokens)
	if err != nil {
		return positionKey{}, nil, err
	}
	mintAmount, err := domain.ParseAmount(rec.MintAmount)
	if err != nil {
		return positionKey{}, nil, err
	}
	return positionKey{token, staker}, &domain.StakingPosition{
		Amount:     amount,
		LpTokens:   lpTokens,
		MintAmount: mintAmount,
		StakedAt:   rec.StakedAt,
	}, nil
}

func decodeOperation(rec repository.OperationRecord) (*domain.PendingOperation, error) {
	token, err := tongo.AccountIDFromRaw(rec.Token)
	if err != nil {
		return nil, err
	}
	sender, err := tongo.AccountIDFromRaw(rec.Sender)
	if err != nil {
		return nil, err
	}
	amm, err := tongo.AccountIDFromRaw(rec.Amm)
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseAmount(rec.Amount)
	if err != nil {
		return nil, err
	}
	mintAmount, err := domain.ParseAmount(rec.MintAmount)
	if err != nil {
		return nil, err
	}
	var lpTokens *domain.Amount
	if rec.LpTokens != nil {
		lpTokens, err = domain.ParseAmount(*rec.LpTokens)
		if err != nil {
			return nil, err
		}
	}
	return &domain.PendingOperation{
		Id:         domain.OperationId(rec.Id),
		Kind:       domain.OperationKind(rec.Kind),
		Token:      token,
		Sender:     sender,
		Amount:     amount,
		Amm:        amm,
		Status:     domain.OperationStatus(rec.Status),
		Timestamp:  rec.Timestamp,
		MintAmount: mintAmount,
		LpTokens:   lpTokens,
		StakedAt:   rec.StakedAt,
	}, nil
}
