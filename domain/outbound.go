package domain

import (
	"time"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	tgwallet "github.com/tonkeeper/tongo/wallet"
)

// writeVarUInt encodes v the way TL-B's VarUInteger 16 (tlb.Grams) is
// packed on the wire: a 4-bit byte-length prefix followed by that many
// big-endian bytes. Used instead of a fixed-width WriteUint so amounts
// wider than 64 bits are never truncated.
func writeVarUInt(cell *boc.Cell, v *Amount) {
	b := v.Bytes()
	cell.WriteUint(uint64(len(b)), 4)
	for _, by := range b {
		cell.WriteUint(uint64(by), 8)
	}
}

// writeOperationId packs an OperationId as an 8-bit length prefix
// followed by its raw bytes; it rides alongside every outbound request so
// the matching confirmation can be routed back to the right pending
// operation.
func writeOperationId(cell *boc.Cell, id OperationId) {
	b := []byte(id)
	cell.WriteUint(uint64(len(b)), 8)
	for _, by := range b {
		cell.WriteUint(uint64(by), 8)
	}
}

// writeAddressString packs an account address as its human-readable
// base64url form (the same format config.go parses allow-lists from)
// behind an 8-bit length prefix, used wherever a message body must name
// an address that isn't already implied by its envelope sender: the
// unstake request's token, the credit notice's depositing staker.
func writeAddressString(cell *boc.Cell, id AmmId) {
	s := id.ToHuman(IsTestNet(), true)
	b := []byte(s)
	cell.WriteUint(uint64(len(b)), 8)
	for _, by := range b {
		cell.WriteUint(uint64(by), 8)
	}
}

// Messagable is implemented by every outbound message this driver sends:
// it knows how to render itself into a wallet.Message ready for
// tgwallet.Wallet.Send.
type Messagable interface {
	MakeMessage() tgwallet.Message
	Target() AmmId
}

// OutboundPack is one item queued on the dispatch channel: the message to
// send plus enough of the originating operation to route the
// confirmation-or-failure response back to the right orchestrator.
type OutboundPack struct {
	Reference OperationId
	Message   Messagable
	Kind      OperationKind
	GasBudget int64 // not read when sending: every MakeMessage attaches defaultGasBudget
}

const defaultGasBudget = int64(100_000_000) // 0.1 Ton attached to each outbound message

// MintRequestMessage is sent to the mint-policy actor to mint the
// counterpart MINT amount computed in phase 1 of the stake protocol.
type MintRequestMessage struct {
	To          AmmId
	OperationId OperationId
	Amount      *Amount
}

func (m MintRequestMessage) Target() AmmId { return m.To }

func (m MintRequestMessage) MakeMessage() tgwallet.Message {
	cell := boc.NewCell()
	cell.WriteUint(uint64(OpcodeMintRequest), 32)
	cell.WriteUint(uint64(time.Now().Unix()), 64)
	writeOperationId(cell, m.OperationId)
	writeVarUInt(cell, m.Amount)
	return tgwallet.Message{
		Amount:  tlb.Grams(defaultGasBudget),
		Address: m.To,
		Body:    cell,
		Bounce:  true,
		Mode:    1,
	}
}

// AddLiquidityMessage is sent to the AMM once mint confirms, carrying
// both token quantities to supply to the pool.
type AddLiquidityMessage struct {
	To          AmmId
	OperationId OperationId
	UserAmount  *Amount
	MintAmount  *Amount
}

func (m AddLiquidityMessage) Target() AmmId { return m.To }

func (m AddLiquidityMessage) MakeMessage() tgwallet.Message {
	cell := boc.NewCell()
	cell.WriteUint(uint64(OpcodeAddLiquidity), 32)
	cell.WriteUint(uint64(time.Now().Unix()), 64)
	writeOperationId(cell, m.OperationId)
	writeVarUInt(cell, m.UserAmount)
	writeVarUInt(cell, m.MintAmount)
	return tgwallet.Message{
		Amount:  tlb.Grams(defaultGasBudget),
		Address: m.To,
		Body:    cell,
		Bounce:  true,
		Mode:    1,
	}
}

// BurnMessage is sent to the AMM to unwind the LP position held for an
// unstake operation.
type BurnMessage struct {
	To          AmmId
	OperationId OperationId
	Quantity    *Amount
}

func (m BurnMessage) Target() AmmId { return m.To }

func (m BurnMessage) MakeMessage() tgwallet.Message {
	cell := boc.NewCell()
	cell.WriteUint(uint64(OpcodeBurn), 32)
	cell.WriteUint(uint64(time.Now().Unix()), 64)
	writeOperationId(cell, m.OperationId)
	writeVarUInt(cell, m.Quantity)
	return tgwallet.Message{
		Amount:  tlb.Grams(defaultGasBudget),
		Address: m.To,
		Body:    cell,
		Bounce:  true,
		Mode:    1,
	}
}

// writeSnakeBytes packs an arbitrary byte payload as a snake cell chain:
// up to 127 bytes per cell, continued in a single ref. Used for the
// Distribute-Rewards JSON map, which is the one payload that can outgrow
// a single 1023-bit cell.
func writeSnakeBytes(cell *boc.Cell, data []byte) {
	chunk := len(data)
	if chunk > 127 {
		chunk = 127
	}
	for _, by := range data[:chunk] {
		cell.WriteUint(uint64(by), 8)
	}
	if chunk < len(data) {
		child := boc.NewCell()
		writeSnakeBytes(child, data[chunk:])
		cell.AddRef(child)
	}
}

// DistributeRewardsMessage carries one emission tick's full allocation
// map to the treasury, which executes the actual reward transfers. Data
// is the JSON-encoded staker -> amount map;
// json.Marshal's sorted map keys give the deterministic emit order the
// engine is required to provide.
type DistributeRewardsMessage struct {
	To   AmmId
	Data []byte
}

func (m DistributeRewardsMessage) Target() AmmId { return m.To }

func (m DistributeRewardsMessage) MakeMessage() tgwallet.Message {
	cell := boc.NewCell()
	cell.WriteUint(uint64(OpcodeDistribute), 32)
	cell.WriteUint(uint64(time.Now().Unix()), 64)
	payload := boc.NewCell()
	writeSnakeBytes(payload, m.Data)
	cell.AddRef(payload)
	return tgwallet.Message{
		Amount:  tlb.Grams(defaultGasBudget),
		Address: m.To,
		Body:    cell,
		Bounce:  true,
		Mode:    1,
	}
}

// TransferMessage sends Amount of a token to To, used for refunds,
// profit-share payouts, and final unstake settlement transfers.
type TransferMessage struct {
	To          AmmId
	OperationId OperationId
	Amount      *Amount
	Tag         string // audit tag: "refund", "profit-share", "settlement", ...
}

func (m TransferMessage) Target() AmmId { return m.To }

func (m TransferMessage) MakeMessage() tgwallet.Message {
	cell := boc.NewCell()
	cell.WriteUint(uint64(OpcodeTransfer), 32)
	cell.WriteUint(uint64(time.Now().Unix()), 64)
	writeOperationId(cell, m.OperationId)
	writeVarUInt(cell, m.Amount)
	return tgwallet.Message{
		Amount:  tlb.Grams(defaultGasBudget),
		Address: m.To,
		Body:    cell,
		Bounce:  true,
		Mode:    1,
	}
}
