package stockbook

import (
	"testing"
)

// mustStock is a helper for test to create a valid stock.
func mustStock(t *testing.T, symbol, name string, shares float64) *Stock {
	t.Helper()
	s, err := NewStock(symbol, name, D(shares))
	if err != nil {
		t.Fatalf("NewStock(%q, %q, %v) unexpected error: %v", symbol, name, shares, err)
	}
	return s
}

// row is a helper for test to create a raw row.
func row(date, close, volume string) RawRow {
	return RawRow{Source: "test", Date: date, Close: close, Volume: volume}
}

// history lists a stock observations as text, in their current order.
func history(s *Stock) []string {
	var list []string
	for _, o := range s.Observations() {
		list = append(list, o.String())
	}
	return list
}

// symbols lists the symbols of stocks in order.
func symbols(stocks []*Stock) []string {
	var list []string
	for _, s := range stocks {
		list = append(list, s.Symbol())
	}
	return list
}
