package domain

import "time"

// Opcodes identify the TL-B tagged messages crossing the boundary with
// the AMM, the mint-policy actor and the treasury: a uint32 opcode rides
// as the first 32 bits of every message cell.
const (
	OpcodeMintRequest    = uint32(0x6d696e74) // "mint"
	OpcodeMintConfirm    = uint32(0x6d696e63) // "minc"
	OpcodeMintError      = uint32(0x6d696e65) // "mine"
	OpcodeAddLiquidity   = uint32(0x6c697164) // "liqd"
	OpcodeLiquidityAdded = uint32(0x6c697161) // "liqa"
	OpcodeLiquidityError = uint32(0x6c697165) // "liqe"
	OpcodeBurn           = uint32(0x6275726e) // "burn"
	OpcodeBurnConfirm    = uint32(0x6275726b) // "burk"
	OpcodeBurnError      = uint32(0x62757265) // "bure"
	OpcodeTransfer       = uint32(0x7472616e) // "tran"
	OpcodeDistribute     = uint32(0x64697374) // "dist", Distribute-Rewards to the treasury
	OpcodeCreditNotice   = uint32(0x63726564) // "cred", deposit notification from an allowed token's jetton wallet
	OpcodeUnstakeRequest = uint32(0x756e7374) // "unst"
	OpcodeUpdateSupply   = uint32(0x75737570) // "usup", Update-MINT-Supply from the mint-policy actor
)

// CreditNotice is the inbound deposit message: the allowed token's
// jetton wallet notifies the contract that Sender transferred Quantity.
// It carries no OperationId — receiving it originates a new stake
// operation.
type CreditNotice struct {
	Token    TokenId
	Sender   StakerId
	Quantity *Amount
	Now      time.Time
}

// MintConfirmation is the mint-policy actor's reply to a Mint-Request.
type MintConfirmation struct {
	OperationId OperationId
	Amount      *Amount
	From        AmmId // the mint-policy actor's address, validated by the caller
	Ok          bool
	Now         time.Time
}

// LiquidityAdded is the AMM's reply to an Add-Liquidity request.
type LiquidityAdded struct {
	OperationId OperationId
	PoolTokens  *Amount
	From        AmmId
	Ok          bool
	Now         time.Time
}

// UnstakeRequest is the inbound message from a staker asking to unwind
// their position in Token.
type UnstakeRequest struct {
	Token  TokenId
	Sender StakerId
	Now    time.Time
}

// BurnConfirmation is the AMM's reply after burning the LP tokens
// belonging to a pending unstake operation. The pool behind one
// OperationId always trades one user token against MINT, so the AMM
// itself identifies which of its Token-A/Token-B legs is the user token
// and reports the two withdrawn legs pre-sorted, rather than making the
// driver carry the pair's addresses back through the wire.
type BurnConfirmation struct {
	OperationId    OperationId
	From           AmmId
	WithdrawnUser  *Amount
	WithdrawnMint  *Amount
	BurnedLpTokens *Amount
	Ok             bool
	Now            time.Time
}

// RequestRewards is the emission tick trigger, authorized-caller only
// and rate-limited to once per MIN_DISTRIBUTION_INTERVAL.
type RequestRewards struct {
	From StakerId
	Now  time.Time
}

// UpdateMintSupply is the mint-policy actor's periodic report of the
// outstanding MINT token supply, used for the emission engine's
// burn-rate cap.
type UpdateMintSupply struct {
	From   StakerId
	Supply *Amount
}

// CleanupRequest triggers the Operation Registry's staleness reaper.
type CleanupRequest struct {
	From StakerId
	Now  time.Time
}
