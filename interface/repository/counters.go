package repository

import "github.com/behrang/sqlbatch"

const (
	sqlCountersFind = `
	select current_rewards, last_reward_timestamp, mint_token_supply, paused
	from reward_counters
	where id = 1
`

	sqlCountersUpsert = `
	insert into reward_counters as c (id, current_rewards, last_reward_timestamp, mint_token_supply, paused)
		values (1, $1, $2, $3, $4)
	on conflict (id) do
		update set current_rewards = $1, last_reward_timestamp = $2, mint_token_supply = $3, paused = $4
`
)

// CounterRecord is the persisted row shape of the Ledger's global
// scalars: CurrentRewards, LastRewardTimestamp, MintTokenSupply. Paused
// is the contract-owner's pause switch; it lives here rather than in
// memory because the "pause"/"resume" CLI commands run as their own
// short-lived process, separate from "start"'s long-running one, so the
// flag has to outlive the process that flips it. TokenWeights is
// configuration, not mutable Ledger state, so it is not part of this
// table (see domain/config.go).
type CounterRecord struct {
	CurrentRewards      string
	LastRewardTimestamp int64
	MintTokenSupply     string
	Paused              bool
}

// CounterRepository persists the single-row global counters.
type CounterRepository struct {
	batchHandler BatchHandler
}

func NewCounterRepository(db BatchHandler) *CounterRepository {
	return &CounterRepository{batchHandler: db}
}

func (repo *CounterRepository) Find() (*CounterRecord, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query: sqlCountersFind,
			ReadOne: func(scan func(...interface{}) error) (interface{}, error) {
				r := CounterRecord{}
				err := scan(&r.CurrentRewards, &r.LastRewardTimestamp, &r.MintTokenSupply, &r.Paused)
				return &r, err
			},
		},
	})
	result, _ := results[0].(*CounterRecord)
	return result, err
}

func (repo *CounterRepository) Upsert(rec CounterRecord) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlCountersUpsert,
			Args:   []interface{}{rec.CurrentRewards, rec.LastRewardTimestamp, rec.MintTokenSupply, rec.Paused},
			Affect: 1,
		},
	})
	return err
}
