package domain

import "fmt"

// Error kinds map to handler behaviors, not to a type
// hierarchy: every orchestrator method returns one of these sentinels (or
// wraps one with fmt.Errorf("%w", ...)) so callers can distinguish a
// policy rejection from a confirmation mismatch without inspecting
// strings.
var (
	ErrPaused              = fmt.Errorf("contract is paused")
	ErrUnauthorizedCaller  = fmt.Errorf("caller is not authorized for this action")
	ErrTokenNotAllowed     = fmt.Errorf("token is not an allowed staking token")
	ErrNonPositiveAmount   = fmt.Errorf("amount must be strictly positive")
	ErrNoPosition          = fmt.Errorf("no staking position for this staker and token")
	ErrDuplicatePending    = fmt.Errorf("a pending operation already exists for this staker, token and kind")
	ErrUnknownOperation    = fmt.Errorf("no pending operation with this id")
	ErrWrongOperationKind  = fmt.Errorf("operation kind does not match")
	ErrWrongOperationState = fmt.Errorf("operation is not pending")
	ErrWrongAmm            = fmt.Errorf("confirmation sender does not match the operation's amm")
	ErrDistributionTooSoon = fmt.Errorf("distribution requested before MIN_DISTRIBUTION_INTERVAL has elapsed")
)
