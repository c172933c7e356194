package usecase

import (
	"database/sql"

	"stakeengine/interface/repository"

	"github.com/behrang/sqlbatch"
)

// noopBatchHandler satisfies repository.BatchHandler without touching
// Postgres: every command succeeds with zero rows. The Ledger's own
// in-memory mirror is what these tests exercise, so the persistence leg
// only needs to not error.
type noopBatchHandler struct{}

func (noopBatchHandler) Batch(_ *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	return make([]interface{}, len(commands)), nil
}

func newTestLedger() *Ledger {
	h := noopBatchHandler{}
	return NewLedger(
		repository.NewPositionRepository(h),
		repository.NewOperationRepository(h),
		repository.NewCounterRepository(h),
	)
}
