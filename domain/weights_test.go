package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonkeeper/tongo"
)

func mustAccountID(t *testing.T, raw string) tongo.AccountID {
	t.Helper()
	id, err := tongo.AccountIDFromRaw(raw)
	assert.NoError(t, err)
	return id
}

func TestStakerWeightSpecialTokenDivides(t *testing.T) {
	special := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000001")
	got := StakerWeight(special, special, DefaultTokenWeight, NewAmount(3_000))
	assert.Equal(t, NewAmount(3), got) // 3000/1000
}

func TestStakerWeightOrdinaryTokenMultiplies(t *testing.T) {
	ordinary := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000002")
	special := mustAccountID(t, "0:0000000000000000000000000000000000000000000000000000000000000001")
	got := StakerWeight(ordinary, special, 250, NewAmount(10))
	assert.Equal(t, NewAmount(2_500), got) // 10*250
}
