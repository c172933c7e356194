package domain

import (
	"fmt"
	"math/big"
)

// Amount is the wire representation of a non-negative, arbitrary-precision
// token quantity: a decimal string. In memory every amount is carried as
// *big.Int; no floating point value is ever admitted into state.
type Amount = big.Int

// ZeroAmount returns a fresh zero-valued Amount.
func ZeroAmount() *Amount {
	return new(big.Int)
}

// NewAmount builds an Amount from a native int64. Only used for constants
// and test fixtures; values arriving from the wire always go through
// ParseAmount.
func NewAmount(v int64) *Amount {
	return big.NewInt(v)
}

// ParseAmount decodes a decimal-string wire value into an Amount. Negative
// or malformed strings are rejected; amounts are non-negative by
// definition.
func ParseAmount(s string) (*Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

// FormatAmount renders an Amount as its decimal-string wire form.
func FormatAmount(a *Amount) string {
	if a == nil {
		return "0"
	}
	return a.String()
}

// IsPositive reports whether a is non-nil and strictly greater than zero.
func IsPositive(a *Amount) bool {
	return a != nil && a.Sign() > 0
}

// MulDivFloor computes floor(a*num/den) using the widest available
// intermediate precision; the burn-rate caps, the emission rate, the
// protocol fee and the rebased MINT cost basis go through it as
// multiply-by-numerator, divide-by-denominator. den must be
// non-zero; callers guard the zero-totalWeight case explicitly.
func MulDivFloor(a, num, den *Amount) *Amount {
	r := new(big.Int).Mul(a, num)
	r.Quo(r, den)
	return r
}

// SubClampZero returns max(a-b, 0); used wherever a withdrawal/profit
// comparison must never produce a negative Amount.
func SubClampZero(a, b *Amount) *Amount {
	r := new(big.Int).Sub(a, b)
	if r.Sign() <= 0 {
		return ZeroAmount()
	}
	return r
}

// rebasePrecision is 10^8, the fixed-point scale of the weekly MINT
// rebase factor.
var rebasePrecision = big.NewInt(100_000_000)

// RebasePrecision returns the 10^8 scale RebaseFactor's result is
// expressed in, for callers applying it via MulDivFloor.
func RebasePrecision() *Amount {
	return new(big.Int).Set(rebasePrecision)
}

// RebaseFactor computes floor(0.9975^weeks * 10^8) using only integer
// arithmetic, as a single floor over the exact rational
// 9975^weeks * 10^8 / 10000^weeks. Flooring once keeps the result exact
// for every week count; compounding a per-week floor instead drifts low
// from week 5 on and would understate the rebased cost basis. weeks=0
// returns exactly 10^8 (factor of 1), and the factor is monotone
// non-increasing in weeks.
func RebaseFactor(weeks int64) *Amount {
	if weeks <= 0 {
		return new(big.Int).Set(rebasePrecision)
	}
	w := big.NewInt(weeks)
	numerator := new(big.Int).Exp(big.NewInt(9975), w, nil)
	numerator.Mul(numerator, rebasePrecision)
	denominator := new(big.Int).Exp(big.NewInt(10_000), w, nil)
	return numerator.Quo(numerator, denominator)
}
