package repository

import (
	"time"

	"github.com/behrang/sqlbatch"
)

const (
	sqlPositionUpsert = `
	insert into staking_positions as c (
			token, staker, amount, lp_tokens, mint_amount, staked_at
		)
		values (
			$1, $2, $3, $4, $5, $6
		)
	on conflict (token, staker) do
		update set
			amount = $3, lp_tokens = $4, mint_amount = $5, staked_at = $6
`

	sqlPositionClear = `
	delete from staking_positions
	where token = $1 and staker = $2
`

	sqlPositionFind = `
	select
		token, staker, amount, lp_tokens, mint_amount, staked_at
	from staking_positions
	where token = $1 and staker = $2
`

	sqlPositionFindAll = `
	select
		token, staker, amount, lp_tokens, mint_amount, staked_at
	from staking_positions
`
)

// PositionRecord is the persisted row shape: TokenId/StakerId are stored
// as their raw string addressing form since tongo.AccountID is not a
// database/sql scanner.
type PositionRecord struct {
	Token      string
	Staker     string
	Amount     string
	LpTokens   string
	MintAmount string
	StakedAt   time.Time
}

// PositionRepository persists StakingPositions, the first of the
// Ledger's two tables.
type PositionRepository struct {
	batchHandler BatchHandler
}

func NewPositionRepository(db BatchHandler) *PositionRepository {
	return &PositionRepository{batchHandler: db}
}

func readPosition(scan func(...interface{}) error) (interface{}, error) {
	r := PositionRecord{}
	err := scan(&r.Token, &r.Staker, &r.Amount, &r.LpTokens, &r.MintAmount, &r.StakedAt)
	return &r, err
}

func readAllPositions(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	r := PositionRecord{}
	err := scan(&r.Token, &r.Staker, &r.Amount, &r.LpTokens, &r.MintAmount, &r.StakedAt)
	list := memo.([]PositionRecord)
	if err == nil {
		list = append(list, r)
	}
	return list, err
}

// Upsert replaces the position atomically.
func (repo *PositionRepository) Upsert(token, staker string, amount, lpTokens, mintAmount string, stakedAt time.Time) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlPositionUpsert,
			Args:   []interface{}{token, staker, amount, lpTokens, mintAmount, stakedAt},
			Affect: 1,
		},
	})
	return err
}

// Clear removes the position key entirely.
func (repo *PositionRepository) Clear(token, staker string) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: sqlPositionClear,
			Args:  []interface{}{token, staker},
		},
	})
	return err
}

func (repo *PositionRepository) Find(token, staker string) (*PositionRecord, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlPositionFind,
			Args:    []interface{}{token, staker},
			ReadOne: readPosition,
		},
	})
	result, _ := results[0].(*PositionRecord)
	return result, err
}

func (repo *PositionRepository) FindAll() ([]PositionRecord, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlPositionFindAll,
			Init:    make([]PositionRecord, 0),
			ReadAll: readAllPositions,
		},
	})
	result, _ := results[0].([]PositionRecord)
	return result, err
}
