package domain

import (
	"fmt"
	"sync/atomic"

	"github.com/tonkeeper/tongo"
)

// TokenId, StakerId and AmmId are opaque addresses on the message-passing
// runtime. Every actor (treasury, jetton wallet, driver wallet) is
// addressed as a tongo.AccountID, so these are plain aliases rather than
// wrapped byte strings: the runtime's sender identity and the staking
// domain's identifiers are the same kind of value.
type TokenId = tongo.AccountID
type StakerId = tongo.AccountID
type AmmId = tongo.AccountID

// OperationKind distinguishes the two multi-step workflows the Operation
// Registry tracks.
type OperationKind string

const (
	OperationStake   OperationKind = "stake"
	OperationUnstake OperationKind = "unstake"
)

// OperationId is the deterministic identifier derived in
// NewOperationId. It collides only across two operations created in the
// same second for the same (staker, token, kind) triple with the same
// nonce value, which cannot happen because the nonce is monotonic within
// one process.
type OperationId string

var operationNonce uint64

// NewOperationId derives an id as
// "token-kind-staker-nowSeconds-nonce". A bare
// "token-kind-staker-nowSeconds" form can collide for two operations
// created in the same wall-clock second; the trailing process-local
// monotonic counter removes that collision without changing any other
// semantics.
func NewOperationId(token TokenId, kind OperationKind, staker StakerId, nowSeconds int64) OperationId {
	nonce := atomic.AddUint64(&operationNonce, 1)
	return OperationId(fmt.Sprintf("%s-%s-%s-%d-%d", token.ToRaw(), kind, staker.ToRaw(), nowSeconds, nonce))
}
