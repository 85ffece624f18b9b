package stockbook

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPortfolio_Valuation(t *testing.T) {
	p := NewPortfolio()
	if _, err := p.AddStock("AAPL", "Apple", D(10)); err != nil {
		t.Fatalf("AddStock() unexpected error: %v", err)
	}
	report, err := p.Ingest("aapl", []RawRow{
		row("2024-01-02", "185", "1000"),
		row("2024-01-03", "186.5", "1200"),
	})
	if err != nil {
		t.Fatalf("Ingest() unexpected error: %v", err)
	}
	if report.Merged != 2 {
		t.Errorf("Ingest().Merged = %d, want 2", report.Merged)
	}

	price, err := p.LatestPrice("AAPL")
	if err != nil {
		t.Fatalf("LatestPrice() unexpected error: %v", err)
	}
	if !price.Equal(D(186.5)) {
		t.Errorf("LatestPrice() = %v, want 186.5", price)
	}
	value, err := p.TotalValue("AAPL")
	if err != nil {
		t.Fatalf("TotalValue() unexpected error: %v", err)
	}
	if !value.Equal(D(1865)) {
		t.Errorf("TotalValue() = %v, want 1865", value)
	}

	// sell more than held
	if err := p.Sell("AAPL", D(15)); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("Sell(15) error = %v, want ErrInsufficientShares", err)
	}
	s, _ := p.Stock("AAPL")
	if !s.Shares().Equal(D(10)) {
		t.Errorf("Shares() = %v after failed sell, want 10", s.Shares())
	}

	// re-merge a known date
	if _, err := p.Ingest("AAPL", []RawRow{row("2024-01-03", "190", "1300")}); err != nil {
		t.Fatalf("Ingest() unexpected error: %v", err)
	}
	list, err := p.ObservationsFor("AAPL")
	if err != nil {
		t.Fatalf("ObservationsFor() unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("ObservationsFor() returned %d observations, want 2", len(list))
	}
	if price, _ := p.LatestPrice("AAPL"); !price.Equal(D(190)) {
		t.Errorf("LatestPrice() = %v after re-merge, want 190", price)
	}
}

func TestPortfolio_Errors(t *testing.T) {
	p := NewPortfolio()
	if _, err := p.AddStock("MSFT", "Microsoft", D(3)); err != nil {
		t.Fatalf("AddStock() unexpected error: %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"duplicate add", func() error { _, err := p.AddStock("msft", "Other", D(1)); return err }, ErrInvalidArgument},
		{"delete unknown", func() error { return p.DeleteStock("AAPL") }, ErrUnknownStock},
		{"buy unknown", func() error { return p.Buy("AAPL", D(1)) }, ErrUnknownStock},
		{"sell unknown", func() error { return p.Sell("AAPL", D(1)) }, ErrUnknownStock},
		{"history unknown", func() error { _, err := p.ObservationsFor("AAPL"); return err }, ErrUnknownStock},
		{"ingest unknown", func() error { _, err := p.Ingest("AAPL", nil); return err }, ErrUnknownStock},
		{"price without data", func() error { _, err := p.LatestPrice("MSFT"); return err }, ErrNoObservations},
		{"value without data", func() error { _, err := p.TotalValue("MSFT"); return err }, ErrNoObservations},
		{"buy negative", func() error { return p.Buy("MSFT", D(-1)) }, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPortfolio_AddDelete(t *testing.T) {
	p := NewPortfolio()
	for _, sym := range []string{"MSFT", "AAPL", "GOOG"} {
		if _, err := p.AddStock(sym, sym+" Inc.", D(1)); err != nil {
			t.Fatalf("AddStock(%q) unexpected error: %v", sym, err)
		}
	}
	if diff := cmp.Diff([]string{"MSFT", "AAPL", "GOOG"}, symbols(p.Stocks())); diff != "" {
		t.Errorf("Stocks() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"AAPL", "GOOG", "MSFT"}, symbols(p.ListStocks())); diff != "" {
		t.Errorf("ListStocks() mismatch (-want +got):\n%s", diff)
	}
	// listing does not reorder the portfolio.
	if got := symbols(p.Stocks()); got[0] != "MSFT" {
		t.Errorf("ListStocks() reordered the portfolio: %v", got)
	}

	if err := p.DeleteStock("aapl"); err != nil {
		t.Fatalf("DeleteStock() unexpected error: %v", err)
	}
	if p.Has("AAPL") || p.Len() != 2 {
		t.Errorf("DeleteStock() left %v", symbols(p.Stocks()))
	}
	// symbol can be tracked again, from scratch.
	s, err := p.AddStock("AAPL", "Apple", D(5))
	if err != nil {
		t.Fatalf("AddStock() after delete unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("re-added stock has %d observations, want 0", s.Len())
	}
}

func TestPortfolio_Sort(t *testing.T) {
	p := NewPortfolio()
	for _, sym := range []string{"MSFT", "AAPL"} {
		s, _ := p.AddStock(sym, sym, D(1))
		s.Put(Observation{date: NewDate(2024, 1, 3), close: D(2)})
		s.Put(Observation{date: NewDate(2024, 1, 2), close: D(1)})
	}
	p.Sort()
	if diff := cmp.Diff([]string{"AAPL", "MSFT"}, symbols(p.Stocks())); diff != "" {
		t.Errorf("Sort() stocks mismatch (-want +got):\n%s", diff)
	}
	for _, s := range p.Stocks() {
		if diff := cmp.Diff([]string{"2024-01-02 1 0", "2024-01-03 2 0"}, history(s)); diff != "" {
			t.Errorf("Sort() %s history mismatch (-want +got):\n%s", s.Symbol(), diff)
		}
	}

	// sorting again changes nothing
	before := symbols(p.Stocks())
	p.Sort()
	if diff := cmp.Diff(before, symbols(p.Stocks())); diff != "" {
		t.Errorf("Sort() is not idempotent (-before +after):\n%s", diff)
	}
}

func TestSortStocks_Stable(t *testing.T) {
	a1 := mustStock(t, "AAA", "first", 1)
	b := mustStock(t, "BBB", "b", 1)
	a2 := mustStock(t, "AAA", "second", 1)
	list := []*Stock{b, a1, a2}
	SortStocks(list)
	if list[0] != a1 || list[1] != a2 || list[2] != b {
		t.Errorf("SortStocks() is not stable: got %s %s %s", list[0].Name(), list[1].Name(), list[2].Name())
	}
}

func TestPortfolio_Replace(t *testing.T) {
	p := NewPortfolio()
	p.AddStock("OLD", "Old", D(1))

	dup := []*Stock{mustStock(t, "AAPL", "Apple", 1), mustStock(t, "AAPL", "Apple", 2)}
	if err := p.Replace(dup...); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Replace(duplicates) error = %v, want ErrInvalidArgument", err)
	}
	if !p.Has("OLD") {
		t.Errorf("failed Replace() modified the portfolio")
	}

	if err := p.Replace(mustStock(t, "AAPL", "Apple", 1)); err != nil {
		t.Fatalf("Replace() unexpected error: %v", err)
	}
	if p.Has("OLD") || !p.Has("AAPL") || p.Len() != 1 {
		t.Errorf("Replace() content = %v, want [AAPL]", symbols(p.Stocks()))
	}
}
