package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	for name, tt := range map[string]struct {
		in      string
		want    int64
		wantErr bool
	}{
		"zero":           {in: "0", want: 0},
		"positive":       {in: "1000000000", want: 1_000_000_000},
		"negative":       {in: "-1", wantErr: true},
		"malformed":      {in: "not-a-number", wantErr: true},
		"decimal-string": {in: "3.14", wantErr: true},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, NewAmount(tt.want), got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(nil))
	assert.Equal(t, "0", FormatAmount(ZeroAmount()))
	assert.Equal(t, "42", FormatAmount(NewAmount(42)))
}

func TestIsPositive(t *testing.T) {
	assert.False(t, IsPositive(nil))
	assert.False(t, IsPositive(ZeroAmount()))
	assert.False(t, IsPositive(NewAmount(-1)))
	assert.True(t, IsPositive(NewAmount(1)))
}

func TestMulDivFloor(t *testing.T) {
	got := MulDivFloor(NewAmount(10), NewAmount(3), NewAmount(4))
	assert.Equal(t, NewAmount(7), got) // floor(10*3/4) = floor(7.5) = 7
}

func TestSubClampZero(t *testing.T) {
	assert.Equal(t, NewAmount(5), SubClampZero(NewAmount(10), NewAmount(5)))
	assert.Equal(t, ZeroAmount(), SubClampZero(NewAmount(5), NewAmount(10)))
	assert.Equal(t, ZeroAmount(), SubClampZero(NewAmount(5), NewAmount(5)))
}

func TestRebaseFactorMonotoneNonIncreasing(t *testing.T) {
	assert.Equal(t, RebasePrecision(), RebaseFactor(0))

	prev := RebaseFactor(0)
	for weeks := int64(1); weeks <= 10; weeks++ {
		cur := RebaseFactor(weeks)
		assert.True(t, cur.Cmp(prev) <= 0, "RebaseFactor(%d) should not exceed RebaseFactor(%d)", weeks, weeks-1)
		prev = cur
	}
}

func TestRebaseFactorExactValues(t *testing.T) {
	for weeks, want := range map[int64]int64{
		1: 99_750_000, // exactly 0.9975 scaled
		2: 99_500_625, // floor(0.99500625 * 10^8)
		// A compounding per-week floor would give 98_756_233 and
		// 92_998_122 here; the single floor over the exact rational
		// must not drift.
		5:  98_756_234,
		29: 92_998_132,
	} {
		assert.Equal(t, NewAmount(want), RebaseFactor(weeks), "weeks=%d", weeks)
	}
}
