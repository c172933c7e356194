package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStakingPositionExists(t *testing.T) {
	assert.False(t, (*StakingPosition)(nil).Exists())
	assert.False(t, (&StakingPosition{Amount: ZeroAmount()}).Exists())
	assert.False(t, (&StakingPosition{Amount: NewAmount(-1)}).Exists())
	assert.True(t, (&StakingPosition{Amount: NewAmount(1)}).Exists())
}

func TestWeeksSinceStaked(t *testing.T) {
	now := time.Unix(1_000_000_000, 0)

	for name, tt := range map[string]struct {
		stakedAt time.Time
		want     int64
	}{
		"just staked":         {stakedAt: now, want: 0},
		"future clock skew":   {stakedAt: now.Add(time.Hour), want: 0},
		"exactly one week":    {stakedAt: now.Add(-7 * 24 * time.Hour), want: 1},
		"just under one week": {stakedAt: now.Add(-7*24*time.Hour + time.Second), want: 0},
		"three weeks":         {stakedAt: now.Add(-21 * 24 * time.Hour), want: 3},
	} {
		t.Run(name, func(t *testing.T) {
			p := &StakingPosition{StakedAt: tt.stakedAt}
			assert.Equal(t, tt.want, p.WeeksSinceStaked(now))
		})
	}
}
