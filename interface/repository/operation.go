package repository

import (
	"time"

	"github.com/behrang/sqlbatch"
)

const (
	sqlOperationInsert = `
	insert into pending_operations as c (
			id, kind, token, sender, amount, amm, status, timestamp, mint_amount, lp_tokens, staked_at
		)
		values (
			$1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, $10
		)
`

	sqlOperationFind = `
	select
		id, kind, token, sender, amount, amm, status, timestamp, mint_amount, lp_tokens, staked_at
	from pending_operations
	where id = $1
`

	sqlOperationFindAll = `
	select
		id, kind, token, sender, amount, amm, status, timestamp, mint_amount, lp_tokens, staked_at
	from pending_operations
`

	sqlOperationSetMintAmount = `
	update pending_operations set mint_amount = $2 where id = $1
`

	sqlOperationSetLpTokens = `
	update pending_operations set lp_tokens = $2 where id = $1
`

	sqlOperationSetStatus = `
	update pending_operations set status = $2 where id = $1 and status = 'pending'
`

	sqlOperationRemove = `
	delete from pending_operations where id = $1
`

	sqlOperationCount = `
	select count(*) from pending_operations where status = 'pending'
`
)

// OperationRecord is the persisted row shape of a multi-step operation.
// LpTokens is nullable on the wire (absent until the
// AddLiquidity confirmation arrives).
type OperationRecord struct {
	Id         string
	Kind       string
	Token      string
	Sender     string
	Amount     string
	Amm        string
	Status     string
	Timestamp  time.Time
	MintAmount string
	LpTokens   *string
	StakedAt   time.Time
}

// OperationRepository persists PendingOperations, the second of the
// Ledger's two tables.
type OperationRepository struct {
	batchHandler BatchHandler
}

func NewOperationRepository(db BatchHandler) *OperationRepository {
	return &OperationRepository{batchHandler: db}
}

func readOperation(scan func(...interface{}) error) (interface{}, error) {
	r := OperationRecord{}
	err := scan(&r.Id, &r.Kind, &r.Token, &r.Sender, &r.Amount, &r.Amm, &r.Status, &r.Timestamp, &r.MintAmount, &r.LpTokens, &r.StakedAt)
	return &r, err
}

func readAllOperations(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := OperationRecord{}
	err := scan(&r.Id, &r.Kind, &r.Token, &r.Sender, &r.Amount, &r.Amm, &r.Status, &r.Timestamp, &r.MintAmount, &r.LpTokens, &r.StakedAt)
	list := memo.([]OperationRecord)
	if err == nil {
		list = append(list, r)
	}
	return list, err
}

func (repo *OperationRepository) Insert(rec OperationRecord) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlOperationInsert,
			Args:   []interface{}{rec.Id, rec.Kind, rec.Token, rec.Sender, rec.Amount, rec.Amm, rec.Timestamp, rec.MintAmount, rec.LpTokens, rec.StakedAt},
			Affect: 1,
		},
	})
	return err
}

func (repo *OperationRepository) Find(id string) (*OperationRecord, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlOperationFind,
			Args:    []interface{}{id},
			ReadOne: readOperation,
		},
	})
	result, _ := results[0].(*OperationRecord)
	return result, err
}

// FindAll returns every registry record, terminal statuses included:
// completed and failed rows persist until the staleness reaper removes
// them, and a restart must reload them so re-delivered confirmations are
// still recognized as already settled.
func (repo *OperationRepository) FindAll() ([]OperationRecord, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlOperationFindAll,
			Init:    make([]OperationRecord, 0),
			ReadAll: readAllOperations,
		},
	})
	result, _ := results[0].([]OperationRecord)
	return result, err
}

func (repo *OperationRepository) SetMintAmount(id, mintAmount string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlOperationSetMintAmount, Args: []interface{}{id, mintAmount}, Affect: 1},
	})
	return err
}

func (repo *OperationRepository) SetLpTokens(id, lpTokens string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlOperationSetLpTokens, Args: []interface{}{id, lpTokens}, Affect: 1},
	})
	return err
}

// SetStatus transitions pending -> status; the update only matches a row
// that is still pending, and the affected-row count is not checked here.
// Ledger.setOperationStatus rejects unknown or non-pending operations
// before calling it.
func (repo *OperationRepository) SetStatus(id, status string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlOperationSetStatus, Args: []interface{}{id, status}},
	})
	return err
}

func (repo *OperationRepository) Remove(id string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlOperationRemove, Args: []interface{}{id}},
	})
	return err
}

func (repo *OperationRepository) Count() (int, error) {
	var count int
	_, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query: sqlOperationCount,
			ReadOne: func(scan func(...interface{}) error) (interface{}, error) {
				err := scan(&count)
				return nil, err
			},
		},
	})
	return count, err
}
