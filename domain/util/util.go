package util

import (
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
)

// AmountString renders an arbitrary-precision Amount with thousands
// separators for log lines and stats output, for humans rather than
// machines.
func AmountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return humanize.BigComma(amount)
}

// AmountWithDecimals renders amount scaled down by 10^decimals with a
// fixed number of fractional digits, e.g. an 8-decimal token quantity of
// 123456789 with decimals=8 becomes "1.23456789".
func AmountWithDecimals(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), scale)
	return fmt.Sprintf("%s", value.Text('f', decimals))
}
