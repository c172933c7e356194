package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
)

// Envelope is the decoded header common to every inbound message crossing
// the boundary: the sender, the arrival time, the opcode, and the
// remainder of the body for the per-kind decoders below.
type Envelope struct {
	From   AmmId
	Now    time.Time
	Opcode uint32
	body   *boc.Cell
}

// DecodeEnvelope reads the 32-bit opcode off an inbound internal
// message's body and resolves its sender, before any domain-specific
// unmarshaling happens.
func DecodeEnvelope(msg *tlb.Message, now time.Time) (*Envelope, error) {
	if msg.Info.IntMsgInfo == nil {
		return nil, fmt.Errorf("inbound message is not an internal message")
	}
	src, err := tongo.AccountIDFromTlb(msg.Info.IntMsgInfo.Src)
	if err != nil || src == nil {
		return nil, fmt.Errorf("inbound message has no resolvable sender: %w", err)
	}

	body, err := msg.Body.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("reading message body: %w", err)
	}
	cell := boc.NewCell()
	if err := cell.UnmarshalJSON(body); err != nil {
		return nil, fmt.Errorf("unmarshaling message body: %w", err)
	}
	opcode, err := cell.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("reading opcode: %w", err)
	}

	return &Envelope{From: *src, Now: now, Opcode: uint32(opcode), body: cell}, nil
}

// readOperationId is the inverse of outbound.go's writeOperationId: an
// 8-bit length prefix followed by that many raw bytes.
func (e *Envelope) readOperationId() (OperationId, error) {
	length, err := e.body.ReadUint(8)
	if err != nil {
		return "", err
	}
	bytes, err := e.body.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	return OperationId(bytes), nil
}

// readVarUInt is the inverse of outbound.go's writeVarUInt: a 4-bit
// byte-length prefix followed by that many big-endian bytes, TL-B's
// VarUInteger 16 encoding for every Amount carried on the wire.
func (e *Envelope) readVarUInt() (*Amount, error) {
	length, err := e.body.ReadUint(4)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return ZeroAmount(), nil
	}
	bytes, err := e.body.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(bytes), nil
}

func (e *Envelope) readUint64() (uint64, error) {
	return e.body.ReadUint(64)
}

// readAddressString is the inverse of outbound.go's writeAddressString.
func (e *Envelope) readAddressString() (tongo.AccountID, error) {
	length, err := e.body.ReadUint(8)
	if err != nil {
		return tongo.AccountID{}, err
	}
	raw, err := e.body.ReadBytes(int(length))
	if err != nil {
		return tongo.AccountID{}, err
	}
	return tongo.AccountIDFromBase64Url(string(raw))
}

// DecodeMintConfirmation reads the wire timestamp, the X-Operation-Id and
// the minted Amount off a Mint-Confirmation body, in the order
// MintRequestMessage.MakeMessage wrote them.
func (e *Envelope) DecodeMintConfirmation(ok bool) (MintConfirmation, error) {
	operationId, err := e.readTimestampAndOperationId()
	if err != nil {
		return MintConfirmation{}, err
	}
	amount, err := e.readVarUInt()
	if err != nil {
		return MintConfirmation{}, err
	}
	return MintConfirmation{OperationId: operationId, Amount: amount, From: e.From, Ok: ok, Now: e.Now}, nil
}

// DecodeLiquidityAdded reads the Pool-Tokens amount off a
// Liquidity-Added body.
func (e *Envelope) DecodeLiquidityAdded(ok bool) (LiquidityAdded, error) {
	operationId, err := e.readTimestampAndOperationId()
	if err != nil {
		return LiquidityAdded{}, err
	}
	poolTokens, err := e.readVarUInt()
	if err != nil {
		return LiquidityAdded{}, err
	}
	return LiquidityAdded{OperationId: operationId, PoolTokens: poolTokens, From: e.From, Ok: ok, Now: e.Now}, nil
}

// DecodeBurnConfirmation reads the withdrawn user-token and MINT amounts
// plus Burned-Pool-Tokens off a Burn-Confirmation body. The AMM already
// knows which leg of its pool is the user token and which is MINT, so it
// reports them pre-sorted rather than by wire position.
func (e *Envelope) DecodeBurnConfirmation(ok bool) (BurnConfirmation, error) {
	operationId, err := e.readTimestampAndOperationId()
	if err != nil {
		return BurnConfirmation{}, err
	}
	withdrawnUser, err := e.readVarUInt()
	if err != nil {
		return BurnConfirmation{}, err
	}
	withdrawnMint, err := e.readVarUInt()
	if err != nil {
		return BurnConfirmation{}, err
	}
	burned, err := e.readVarUInt()
	if err != nil {
		return BurnConfirmation{}, err
	}
	return BurnConfirmation{
		OperationId:    operationId,
		From:           e.From,
		WithdrawnUser:  withdrawnUser,
		WithdrawnMint:  withdrawnMint,
		BurnedLpTokens: burned,
		Ok:             ok,
		Now:            e.Now,
	}, nil
}

// DecodeUnstakeRequest reads the Token address off an inbound unstake
// request; Sender is the requesting staker, already resolved onto the
// Envelope as its message source.
func (e *Envelope) DecodeUnstakeRequest() (UnstakeRequest, error) {
	if _, err := e.readUint64(); err != nil { // query id, not needed downstream
		return UnstakeRequest{}, err
	}
	token, err := e.readAddressString()
	if err != nil {
		return UnstakeRequest{}, err
	}
	return UnstakeRequest{Token: token, Sender: e.From, Now: e.Now}, nil
}

// DecodeUpdateMintSupply reads the new outstanding MINT supply reported
// by the mint-policy actor.
func (e *Envelope) DecodeUpdateMintSupply() (UpdateMintSupply, error) {
	supply, err := e.readVarUInt()
	if err != nil {
		return UpdateMintSupply{}, err
	}
	return UpdateMintSupply{From: e.From, Supply: supply}, nil
}

// readTimestampAndOperationId reads the two fields every confirmation
// from the AMM/mint-policy carries right after the opcode: the
// sender-side wire timestamp (unused on receipt; the dispatcher stamps
// its own arrival time) and the X-Operation-Id.
func (e *Envelope) readTimestampAndOperationId() (OperationId, error) {
	if _, err := e.body.ReadUint(64); err != nil {
		return "", fmt.Errorf("reading wire timestamp: %w", err)
	}
	return e.readOperationId()
}

// DecodeCreditNotice reads the Quantity and the depositing staker's
// address off a jetton transfer-notification body sent by an allowed
// token's jetton wallet. The envelope's own source is the notifying
// wallet — the token — so the staker must come from the body, the way
// DecodeUnstakeRequest reads its token.
func (e *Envelope) DecodeCreditNotice(token TokenId) (CreditNotice, error) {
	if _, err := e.readUint64(); err != nil { // query id, not needed downstream
		return CreditNotice{}, err
	}
	quantity, err := e.readVarUInt()
	if err != nil {
		return CreditNotice{}, err
	}
	sender, err := e.readAddressString()
	if err != nil {
		return CreditNotice{}, err
	}
	return CreditNotice{Token: token, Sender: sender, Quantity: quantity, Now: e.Now}, nil
}
