package usecase

import (
	"context"
	"log"
	"time"

	"stakeengine/domain"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/liteapi"
)

// Ingest polls the treasury account's inbound transactions and feeds each
// one's message body through the Dispatcher, decoding every recognized
// opcode. It keeps
// its processed-watermark in memory only: a restart simply re-scans the
// last page, and the Operation Registry's duplicate-pending guard makes
// re-delivery of an already-handled message a harmless rejection rather
// than a double mutation.
type Ingest struct {
	client          *liteapi.Client
	treasuryAccount tongo.AccountID
	dispatcher      *Dispatcher

	haveWatermark bool
	lastLt        uint64
	lastHashHex   string
}

func NewIngest(client *liteapi.Client, treasuryAccount tongo.AccountID, dispatcher *Dispatcher) *Ingest {
	return &Ingest{client: client, treasuryAccount: treasuryAccount, dispatcher: dispatcher}
}

// Poll fetches transactions newer than the last processed one and
// dispatches every inbound message found, oldest first. It is meant to
// be called on a ticker; an empty or already-seen page is a no-op.
func (i *Ingest) Poll() {
	const pageSize = 50

	trans, err := i.client.GetLastTransactions(context.Background(), i.treasuryAccount, pageSize)
	if err != nil {
		log.Printf("🔴 ingest: getting last transactions - %v\n", err.Error())
		return
	}
	if len(trans) == 0 {
		return
	}

	newestLt := trans[0].Lt
	newestHashHex := trans[0].Hash().Hex()

	cutoff := len(trans)
	if i.haveWatermark {
		for idx, t := range trans {
			if t.Lt == i.lastLt && t.Hash().Hex() == i.lastHashHex {
				cutoff = idx
				break
			}
		}
	}

	for idx := cutoff - 1; idx >= 0; idx-- {
		msg := &trans[idx].Transaction.Msgs.InMsg.Value.Value
		env, err := domain.DecodeEnvelope(msg, time.Unix(int64(trans[idx].Transaction.Now), 0))
		if err != nil {
			// Not every inbound transaction is one of this driver's typed
			// messages (e.g. a plain value transfer); silently skip those.
			continue
		}
		if err := i.dispatcher.Dispatch(env); err != nil {
			log.Printf("🟠 ingest: dispatching opcode %#x from %v - %v\n", env.Opcode, env.From.ToRaw(), err.Error())
		}
	}

	i.lastLt = newestLt
	i.lastHashHex = newestHashHex
	i.haveWatermark = true
}
