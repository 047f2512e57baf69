// Package fixedpoint defines the scaled-integer arithmetic shared by the
// continuous book and the batch auction. Every price and quantity inside
// the matching core is an int64 scaled by Scale; decimals exist only at
// the API boundary. Settlement relies on exact integer comparisons, so no
// floating point may leak into matching decisions.
package fixedpoint

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the fixed-point scaling factor: one quoted unit equals
// Scale scaled units.
const Scale = 1_000_000

var (
	ErrPrecision  = errors.New("value has more precision than the fixed-point scale")
	ErrOutOfRange = errors.New("value does not fit in a scaled int64")
)

var scaleDec = decimal.NewFromInt(Scale)

// FromDecimal converts a boundary decimal into a scaled integer. Values
// with sub-scale precision or outside the int64 range are rejected rather
// than rounded.
func FromDecimal(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(scaleDec)
	if !scaled.IsInteger() {
		return 0, ErrPrecision
	}
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return 0, ErrOutOfRange
	}
	return bi.Int64(), nil
}

// ToDecimal converts a scaled integer back to its boundary decimal form.
func ToDecimal(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Div(scaleDec)
}
