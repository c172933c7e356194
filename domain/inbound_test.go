package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tonkeeper/tongo/boc"
)

// bodyEnvelope wraps a hand-built body cell the way DecodeEnvelope leaves
// one after consuming the opcode, so the per-kind decoders can be driven
// directly.
func bodyEnvelope(from AmmId, opcode uint32, body *boc.Cell) *Envelope {
	return &Envelope{From: from, Now: time.Unix(1_700_000_000, 0), Opcode: opcode, body: body}
}

// TestDecodeCreditNoticeReadsStakerFromBody pins down that the depositing
// staker comes out of the notification body, not the envelope: the
// envelope's source is the notifying jetton wallet, i.e. the token
// itself.
func TestDecodeCreditNoticeReadsStakerFromBody(t *testing.T) {
	wallet := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000041")
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000042")

	body := boc.NewCell()
	body.WriteUint(7, 64) // query id
	writeVarUInt(body, NewAmount(5_000))
	writeAddressString(body, staker)

	notice, err := bodyEnvelope(wallet, OpcodeCreditNotice, body).DecodeCreditNotice(wallet)
	assert.NoError(t, err)
	assert.Equal(t, wallet, notice.Token)
	assert.Equal(t, staker, notice.Sender)
	assert.Equal(t, NewAmount(5_000), notice.Quantity)
}

// TestDecodeUnstakeRequestReadsTokenFromBody covers the mirror case: the
// envelope's source is the requesting staker, and the token rides in the
// body.
func TestDecodeUnstakeRequestReadsTokenFromBody(t *testing.T) {
	staker := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000042")
	token := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000043")

	body := boc.NewCell()
	body.WriteUint(9, 64) // query id
	writeAddressString(body, token)

	req, err := bodyEnvelope(staker, OpcodeUnstakeRequest, body).DecodeUnstakeRequest()
	assert.NoError(t, err)
	assert.Equal(t, token, req.Token)
	assert.Equal(t, staker, req.Sender)
}
