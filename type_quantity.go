package stockbook

import (
	"strings"

	"github.com/shopspring/decimal"
)

// D is a convenient factory for decimal.Decimal share counts and prices.
func D[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// ParseAmount parses a share amount typed by a user.
//
// Non numeric text fails with ErrInvalidArgument. The sign is not checked
// here, Buy and Sell reject non-positive amounts.
func ParseAmount(text string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, invalidf("amount %q is not a number", text)
	}
	return v, nil
}
