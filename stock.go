package stockbook

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Stock is a tracked position: a symbol, a display name, a share count and
// the daily observations of its price.
//
// Observations are unique by date. Shares only change through Buy and Sell.
type Stock struct {
	symbol       string
	name         string
	shares       decimal.Decimal
	observations []Observation
}

// Observation is one day's closing price and traded volume.
type Observation struct {
	date   Date
	close  decimal.Decimal
	volume int64
}

// invalidf returns an error wrapping ErrInvalidArgument.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NormalizeSymbol returns the canonical form of a symbol: trimmed and upper case.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NewStock returns a new Stock with no observations.
//
// The symbol is normalized to upper case. It fails with ErrInvalidArgument if
// the symbol or the name is empty, or if shares is negative.
func NewStock(symbol, name string, shares decimal.Decimal) (*Stock, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, invalidf("empty symbol")
	}
	if strings.IndexFunc(symbol, unicode.IsSpace) >= 0 {
		return nil, invalidf("symbol %q contains white space", symbol)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("empty name for %q", symbol)
	}
	if shares.IsNegative() {
		return nil, invalidf("negative shares %v for %q", shares, symbol)
	}
	return &Stock{symbol: symbol, name: name, shares: shares}, nil
}

// Symbol returns the upper case symbol.
func (s *Stock) Symbol() string { return s.symbol }

// Name returns the display name.
func (s *Stock) Name() string { return s.name }

// Shares returns the current share count.
func (s *Stock) Shares() decimal.Decimal { return s.shares }

// Len returns the number of observations.
func (s *Stock) Len() int { return len(s.observations) }

// Observations returns a copy of the observations in their current order.
func (s *Stock) Observations() []Observation { return slices.Clone(s.observations) }

// Latest returns the most recent observation, or false if there are none.
func (s *Stock) Latest() (Observation, bool) {
	if len(s.observations) == 0 {
		return Observation{}, false
	}
	latest := s.observations[0]
	for _, o := range s.observations[1:] {
		if o.date.After(latest.date) {
			latest = o
		}
	}
	return latest, true
}

// Get returns the observation for a given day.
func (s *Stock) Get(day Date) (Observation, bool) {
	if i := s.index(day); i >= 0 {
		return s.observations[i], true
	}
	return Observation{}, false
}

func (s *Stock) index(day Date) int {
	return slices.IndexFunc(s.observations, func(o Observation) bool { return o.date == day })
}

// Put adds an observation to the stock.
//
// An existing observation at that date is overwritten, giving priority to the
// last data. Put does not sort, see SortObservations.
func (s *Stock) Put(o Observation) (replaced bool) {
	if i := s.index(o.date); i >= 0 {
		s.observations[i] = o
		return true
	}
	s.observations = append(s.observations, o)
	return false
}

// NewObservation returns a validated observation.
//
// It fails with ErrInvalidArgument if the date is zero, the close is not
// strictly positive or the volume is negative.
func NewObservation(day Date, close decimal.Decimal, volume int64) (Observation, error) {
	if day.IsZero() {
		return Observation{}, invalidf("missing date")
	}
	if !close.IsPositive() {
		return Observation{}, invalidf("close %v on %s must be positive", close, day)
	}
	if volume < 0 {
		return Observation{}, invalidf("volume %d on %s must not be negative", volume, day)
	}
	return Observation{date: day, close: close, volume: volume}, nil
}

// Date returns the observation day.
func (o Observation) Date() Date { return o.date }

// Close returns the closing price.
func (o Observation) Close() decimal.Decimal { return o.close }

// Volume returns the traded volume.
func (o Observation) Volume() int64 { return o.volume }

func (o Observation) String() string { return fmt.Sprintf("%s %s %d", o.date, o.close, o.volume) }
