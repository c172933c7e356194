package usecase

import (
	"log"

	"stakeengine/domain"
	"stakeengine/interface/exporter"
)

// Dispatcher is the single-threaded inbound message router: every inbound
// Envelope is decoded and handed to exactly one orchestrator method to
// completion before the next is processed, so the Ledger is never read or
// written concurrently and needs no lock.
type Dispatcher struct {
	stake    *StakeOrchestrator
	unstake  *UnstakeOrchestrator
	emission *EmissionEngine
	contract *ContractInteractor
}

func NewDispatcher(stake *StakeOrchestrator, unstake *UnstakeOrchestrator, emission *EmissionEngine, contract *ContractInteractor) *Dispatcher {
	return &Dispatcher{stake: stake, unstake: unstake, emission: emission, contract: contract}
}

// opcodeLabel names an opcode for the dispatch_messages_total metric
// without leaking raw hex values into Prometheus's label cardinality.
func opcodeLabel(opcode uint32) string {
	switch opcode {
	case domain.OpcodeCreditNotice:
		return "credit-notice"
	case domain.OpcodeMintConfirm, domain.OpcodeMintError:
		return "mint-confirm"
	case domain.OpcodeLiquidityAdded, domain.OpcodeLiquidityError:
		return "liquidity-added"
	case domain.OpcodeUnstakeRequest:
		return "unstake-request"
	case domain.OpcodeBurnConfirm, domain.OpcodeBurnError:
		return "burn-confirm"
	case domain.OpcodeUpdateSupply:
		return "update-supply"
	default:
		return "unknown"
	}
}

// Dispatch routes one decoded inbound Envelope to its handler. A nil
// error does not necessarily mean the underlying operation succeeded in
// business terms (a policy rejection is itself returned as an error); it
// only means routing itself did not fail.
func (d *Dispatcher) Dispatch(env *domain.Envelope) error {
	err := d.dispatch(env)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		exporter.IncErrorCount()
	}
	exporter.ObserveDispatch(opcodeLabel(env.Opcode), outcome)
	return err
}

func (d *Dispatcher) dispatch(env *domain.Envelope) error {
	switch env.Opcode {
	case domain.OpcodeCreditNotice:
		return d.handleCreditNotice(env)
	case domain.OpcodeMintConfirm, domain.OpcodeMintError:
		// Only the mint-policy actor may confirm a mint; the AMM cross-check
		// in VerifyOperation does not cover this message because mint
		// requests never go to the AMM.
		if env.From != domain.GetMintPolicy() {
			return domain.ErrUnauthorizedCaller
		}
		msg, err := env.DecodeMintConfirmation(env.Opcode == domain.OpcodeMintConfirm)
		if err != nil {
			return err
		}
		return d.stake.HandleMintConfirmation(msg)
	case domain.OpcodeLiquidityAdded, domain.OpcodeLiquidityError:
		msg, err := env.DecodeLiquidityAdded(env.Opcode == domain.OpcodeLiquidityAdded)
		if err != nil {
			return err
		}
		return d.stake.HandleLiquidityAdded(msg)
	case domain.OpcodeUnstakeRequest:
		return d.handleUnstakeRequest(env)
	case domain.OpcodeBurnConfirm, domain.OpcodeBurnError:
		msg, err := env.DecodeBurnConfirmation(env.Opcode == domain.OpcodeBurnConfirm)
		if err != nil {
			return err
		}
		return d.unstake.HandleBurnConfirmation(msg)
	case domain.OpcodeUpdateSupply:
		return d.handleUpdateSupply(env)
	default:
		log.Printf("🟡 dispatcher: unrecognized opcode %#x from %v\n", env.Opcode, env.From.ToRaw())
		return domain.ErrUnknownOperation
	}
}

// handleCreditNotice resolves the notifying sender directly as the
// TokenId (an allowed token's jetton wallet is its own deposit channel)
// and the AMM it trades against from configuration before
// querying the AMM's current price and handing off to the stake
// orchestrator.
func (d *Dispatcher) handleCreditNotice(env *domain.Envelope) error {
	token := domain.TokenId(env.From)
	if !domain.IsTokenAllowed(token) {
		return domain.ErrTokenNotAllowed
	}
	notice, err := env.DecodeCreditNotice(token)
	if err != nil {
		return err
	}
	amm, ok := domain.GetAmmForToken(token)
	if !ok {
		return domain.ErrTokenNotAllowed
	}
	numerator, denominator, err := d.contract.GetAmmPrice(amm)
	if err != nil {
		return err
	}
	return d.stake.HandleCreditNotice(notice, amm, numerator, denominator)
}

func (d *Dispatcher) handleUnstakeRequest(env *domain.Envelope) error {
	req, err := env.DecodeUnstakeRequest()
	if err != nil {
		return err
	}
	if !domain.IsTokenAllowed(req.Token) {
		return domain.ErrTokenNotAllowed
	}
	amm, ok := domain.GetAmmForToken(req.Token)
	if !ok {
		return domain.ErrTokenNotAllowed
	}
	return d.unstake.HandleUnstakeRequest(req, amm)
}

// handleUpdateSupply accepts supply reports from the mint-policy actor
// only, before the engine's burn-rate cap input is overwritten.
func (d *Dispatcher) handleUpdateSupply(env *domain.Envelope) error {
	if env.From != domain.GetMintPolicy() {
		return domain.ErrUnauthorizedCaller
	}
	msg, err := env.DecodeUpdateMintSupply()
	if err != nil {
		return err
	}
	return d.emission.UpdateMintSupply(msg)
}
