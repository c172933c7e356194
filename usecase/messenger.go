package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"stakeengine/domain"

	"github.com/tonkeeper/tongo/liteapi"
	tgwallet "github.com/tonkeeper/tongo/wallet"
)

var ErrorTimeOut = fmt.Errorf("timeout waiting for the driver wallet's next seqno")

// SendResult reports the outcome of one dispatched OutboundPack as a
// single typed result carrying its own Kind.
type SendResult struct {
	Reference domain.OperationId
	Kind      domain.OperationKind
	Ok        bool
	Err       error
}

// Messenger drains the outbound dispatch channel and sends each message
// through the driver wallet, waiting for the wallet's seqno to advance
// before reporting success, so a send is never reported delivered while
// it is still sitting unconfirmed in the mempool.
type Messenger struct {
	client       *liteapi.Client
	driverWallet *tgwallet.Wallet
	outbound     <-chan domain.OutboundPack
	results      chan<- SendResult
}

func NewMessenger(client *liteapi.Client, driverWallet *tgwallet.Wallet, outbound <-chan domain.OutboundPack, results chan<- SendResult) *Messenger {
	return &Messenger{client: client, driverWallet: driverWallet, outbound: outbound, results: results}
}

// Run drains the outbound channel until it is closed.
func (m *Messenger) Run() {
	var seqno uint32
	for pack := range m.outbound {
		if current, err := m.client.GetSeqno(context.Background(), m.driverWallet.GetAddress()); err == nil {
			seqno = current
		}
		err := m.driverWallet.Send(context.Background(), pack.Message.MakeMessage())
		if err != nil {
			log.Printf("🔴 sending message [reference: %v] - %v\n", pack.Reference, err.Error())
		} else {
			seqno, err = m.waitForNextSeqno(seqno)
		}

		m.results <- SendResult{
			Reference: pack.Reference,
			Kind:      pack.Kind,
			Ok:        err == nil,
			Err:       err,
		}
	}
}

func (m *Messenger) waitForNextSeqno(seqno uint32) (uint32, error) {
	driverAccountId := m.driverWallet.GetAddress()

	err := ErrorTimeOut
	currSeqno := seqno

	start := time.Now()
	for time.Now().Before(start.Add(30 * time.Second)) {
		currSeqno, err = m.client.GetSeqno(context.Background(), driverAccountId)
		if err != nil {
			log.Printf("🔴 getting current driver's seqno - %v\n", err.Error())
		}

		if currSeqno > seqno {
			err = nil
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	return currSeqno, err
}
