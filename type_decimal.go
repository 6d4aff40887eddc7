package rowbinary

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxDecimalPrecision is the largest number of digits of a Decimal.
	MaxDecimalPrecision = 76

	maxDecimal32Precision  = 9
	maxDecimal64Precision  = 18
	maxDecimal128Precision = 38
)

// DecimalWidth returns the width in bits of the integer that stores decimals
// of the given precision.
func DecimalWidth(precision int) int {
	switch {
	case precision <= maxDecimal32Precision:
		return 32
	case precision <= maxDecimal64Precision:
		return 64
	case precision <= maxDecimal128Precision:
		return 128
	default:
		return 256
	}
}

// DecimalType is Decimal(Precision, Scale).
//
// https://clickhouse.com/docs/en/sql-reference/data-types/decimal
type DecimalType struct {
	Precision int
	Scale     int
	// Width is the size in bits of the stored integer, derived from the
	// precision by DecimalWidth.
	Width  int
	source string
}

func newDecimalType(precision, scale int, source string) *DecimalType {
	return &DecimalType{
		Precision: precision,
		Scale:     scale,
		Width:     DecimalWidth(precision),
		source:    source,
	}
}

func (t *DecimalType) Kind() Kind { return Decimal }
func (t *DecimalType) Source() string { return t.source }
func (t *DecimalType) String() string {
	return "Decimal(" + strconv.Itoa(t.Precision) + ", " + strconv.Itoa(t.Scale) + ")"
}
func (t *DecimalType) columnType() {}

// DecimalValue is the value of a Decimal column: Value * 10^-Scale.
type DecimalValue struct {
	Value *big.Int
	Scale int
}

// String renders the decimal with exactly Scale fractional digits. The sign
// is written before the integer part, and the fraction is padded with leading
// zeros when the magnitude has fewer digits than the scale, so 5 with scale 3
// renders as 0.005 and -5 with scale 2 as -0.05.
func (d DecimalValue) String() string {
	digits := new(big.Int).Abs(d.Value).String()
	if d.Scale > 0 && len(digits) <= d.Scale {
		digits = strings.Repeat("0", d.Scale-len(digits)+1) + digits
	}

	var b strings.Builder
	b.Grow(len(digits) + 2)
	if d.Value.Sign() < 0 {
		b.WriteByte('-')
	}
	if d.Scale <= 0 {
		b.WriteString(digits)
		return b.String()
	}
	split := len(digits) - d.Scale
	b.WriteString(digits[:split])
	b.WriteByte('.')
	b.WriteString(digits[split:])
	return b.String()
}

// Decimal converts the value to an arbitrary precision decimal.
func (d DecimalValue) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(d.Value, -int32(d.Scale))
}
