package mathutil

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// BigOne represents a single unit of a token with precision 9.
	BigOne = uint64(math.Pow10(9))
	// BigOneDecimal represents a single unit of a token with precision 9 as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))

	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a valid positive decimal number")
)

const (
	// TokenPrecision is the number of decimals of a token unit.
	TokenPrecision = 9
	// DisplayPrecision is the number of decimals used for displayed amounts.
	DisplayPrecision = 6
)

func init() {
	decimal.DivisionPrecision = TokenPrecision
}

// ParseAmount parses a user-entered decimal string into a decimal.Decimal.
// The amount must be strictly positive.
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders a decimal with the fixed display precision.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(DisplayPrecision).String()
}

// MulRate computes amount * rate rounded to the display precision.
func MulRate(amount string, rate decimal.Decimal) (string, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	return FormatAmount(d.Mul(rate)), nil
}

// DivRate computes amount / rate rounded to the display precision. The rate
// must be strictly positive.
func DivRate(amount string, rate decimal.Decimal) (string, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return "", ErrInvalidAmount
	}
	d, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	return FormatAmount(d.Div(rate)), nil
}

// ToBaseUnits converts a decimal amount string to token base units.
func ToBaseUnits(amount string) (uint64, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	units := d.Mul(BigOneDecimal).Floor()
	if !units.BigInt().IsUint64() {
		return 0, ErrInvalidAmount
	}
	return units.BigInt().Uint64(), nil
}

// FromBaseUnits converts token base units to a decimal amount.
func FromBaseUnits(units uint64) decimal.Decimal {
	u := decimal.NewFromBigInt(new(big.Int).SetUint64(units), 0)
	return u.Div(BigOneDecimal)
}

// Div takes two uint64 numbers and divides them x / y and returns the result as decimal.Decimal
func Div(x, y uint64) decimal.Decimal {
	X := decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
	Y := decimal.NewFromBigInt(new(big.Int).SetUint64(y), 0)
	return X.Div(Y)
}
