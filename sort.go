package stockbook

import (
	"slices"
	"strings"
)

// SortStocks sorts stocks in alphabetical order of their symbol.
//
// The sort is stable: stocks with the same symbol keep their relative order.
func SortStocks(stocks []*Stock) {
	slices.SortStableFunc(stocks, func(a, b *Stock) int {
		return strings.Compare(a.symbol, b.symbol)
	})
}

// SortObservations sorts the stock observations from oldest to newest.
func SortObservations(s *Stock) {
	slices.SortStableFunc(s.observations, func(a, b Observation) int {
		return a.date.Compare(b.date)
	})
}
