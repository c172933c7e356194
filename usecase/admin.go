package usecase

// PauseState is the single-threaded dispatch loop's emergency-stop
// switch. It is read by every orchestrator's paused() callback before a
// handler mutates state, and flipped only by the contract owner through
// the "pause"/"resume" admin CLI commands - there is no wire message for
// it because it is an operator control, not a protocol message. The
// flag itself lives on the Ledger, persisted alongside the other global
// counters: "pause"/"resume" run as their own short-lived process, so an
// in-memory-only flag there would never reach the separate long-running
// "start" process.
type PauseState struct {
	ledger *Ledger
}

func NewPauseState(ledger *Ledger) *PauseState {
	return &PauseState{ledger: ledger}
}

func (p *PauseState) IsPaused() bool {
	return p.ledger.Paused()
}

func (p *PauseState) Pause() error {
	return p.ledger.SetPaused(true)
}

func (p *PauseState) Resume() error {
	return p.ledger.SetPaused(false)
}
