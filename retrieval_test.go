package stockbook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeFetcher serves canned rows per symbol and records calls.
type fakeFetcher struct {
	rows  map[string][]RawRow
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) FetchHistory(ctx context.Context, symbol string, r Range) ([]RawRow, error) {
	f.calls = append(f.calls, symbol)
	if f.fail[symbol] {
		return nil, fmt.Errorf("%s: %w", symbol, ErrRetrievalUnavailable)
	}
	return f.rows[symbol], nil
}

func TestRetrieve(t *testing.T) {
	p := NewPortfolio()
	p.AddStock("MSFT", "Microsoft", D(1))
	p.AddStock("AAPL", "Apple", D(1))
	p.AddStock("GOOG", "Alphabet", D(1))

	f := &fakeFetcher{
		rows: map[string][]RawRow{
			"AAPL": {row("2024-01-02", "185", "1000"), row("2024-01-03", "", "1")},
			"MSFT": {row("2024-01-02", "370", "10")},
		},
	}
	r := NewRange(NewDate(2024, 1, 1), NewDate(2024, 1, 31))
	reports, err := Retrieve(context.Background(), p, f, r)
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"AAPL", "GOOG", "MSFT"}, f.calls); diff != "" {
		t.Errorf("Retrieve() call order mismatch (-want +got):\n%s", diff)
	}
	if got := reports["AAPL"]; got.Merged != 1 || len(got.Skipped) != 1 {
		t.Errorf("Retrieve() AAPL report = %+v, want 1 merged 1 skipped", got)
	}
	if got := reports["GOOG"]; got.Merged != 0 || len(got.Skipped) != 0 {
		t.Errorf("Retrieve() GOOG report = %+v, want empty", got)
	}
	if price, _ := p.LatestPrice("MSFT"); !price.Equal(D(370)) {
		t.Errorf("LatestPrice(MSFT) = %v, want 370", price)
	}
}

func TestRetrieve_StopsOnFailure(t *testing.T) {
	p := NewPortfolio()
	p.AddStock("AAPL", "Apple", D(1))
	p.AddStock("GOOG", "Alphabet", D(1))
	p.AddStock("MSFT", "Microsoft", D(1))

	f := &fakeFetcher{
		rows: map[string][]RawRow{"AAPL": {row("2024-01-02", "185", "1000")}},
		fail: map[string]bool{"GOOG": true},
	}
	reports, err := Retrieve(context.Background(), p, f, NewRange(NewDate(2024, 1, 1), NewDate(2024, 1, 31)))
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrRetrievalUnavailable", err)
	}
	if _, ok := reports["AAPL"]; !ok || len(reports) != 1 {
		t.Errorf("Retrieve() reports = %v, want only AAPL", reports)
	}
	if diff := cmp.Diff([]string{"AAPL", "GOOG"}, f.calls); diff != "" {
		t.Errorf("Retrieve() calls mismatch (-want +got):\n%s", diff)
	}
}

func TestWithTimeout(t *testing.T) {
	slow := HistoryFetcherFunc(func(ctx context.Context, symbol string, r Range) ([]RawRow, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).FetchHistory(context.Background(), "AAPL", Range{})
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Errorf("FetchHistory() error = %v, want ErrRetrievalUnavailable", err)
	}

	fast := HistoryFetcherFunc(func(ctx context.Context, symbol string, r Range) ([]RawRow, error) {
		return []RawRow{row("2024-01-02", "1", "1")}, nil
	})
	rows, err := WithTimeout(fast, time.Second).FetchHistory(context.Background(), "AAPL", Range{})
	if err != nil || len(rows) != 1 {
		t.Errorf("FetchHistory() = %v, %v, want 1 row", rows, err)
	}

	rows, err = WithTimeout(fast, 0).FetchHistory(context.Background(), "AAPL", Range{})
	if err != nil || len(rows) != 1 {
		t.Errorf("FetchHistory() without bound = %v, %v, want 1 row", rows, err)
	}
}

func TestRetrieveStock_Unknown(t *testing.T) {
	p := NewPortfolio()
	_, err := RetrieveStock(context.Background(), p, &fakeFetcher{}, "AAPL", Range{})
	if !errors.Is(err, ErrUnknownStock) {
		t.Errorf("RetrieveStock() error = %v, want ErrUnknownStock", err)
	}
}
