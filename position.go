package stockbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Buy adds amount to the stock's shares.
//
// amount must be strictly positive, otherwise it fails with ErrInvalidArgument.
func (s *Stock) Buy(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalidf("cannot buy %v shares of %s: amount must be positive", amount, s.symbol)
	}
	s.shares = s.shares.Add(amount)
	return nil
}

// Sell removes amount from the stock's shares.
//
// amount must be strictly positive, otherwise it fails with
// ErrInvalidArgument. Selling more than the current shares fails with
// ErrInsufficientShares and leaves the stock unchanged.
func (s *Stock) Sell(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalidf("cannot sell %v shares of %s: amount must be positive", amount, s.symbol)
	}
	if amount.GreaterThan(s.shares) {
		return fmt.Errorf("cannot sell %v shares of %s, only %v held: %w", amount, s.symbol, s.shares, ErrInsufficientShares)
	}
	s.shares = s.shares.Sub(amount)
	return nil
}
