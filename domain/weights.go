package domain

import "math/big"

// DefaultTokenWeight is applied to any allowed token absent from the
// configured weight table.
const DefaultTokenWeight = int64(100)

// SpecialWeightDivisor is the integer-division denominator applied to the
// configured SPECIAL_TOKEN instead of a multiplicative weight.
var SpecialWeightDivisor = big.NewInt(1000)

// StakerWeight computes the pro-rata weight of one position for the
// emission allocation: position.Amount/1000 for the
// configured special token, position.Amount*weight for every other
// allowed token.
func StakerWeight(token TokenId, special TokenId, weight int64, positionAmount *Amount) *Amount {
	if token == special {
		return new(big.Int).Quo(positionAmount, SpecialWeightDivisor)
	}
	return new(big.Int).Mul(positionAmount, big.NewInt(weight))
}
