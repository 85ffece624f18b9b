package stockbook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HistoryFetcher retrieves the daily history of a symbol over a date range.
//
// Failures wrap ErrRetrievalUnavailable. An empty result is not an error.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, r Range) ([]RawRow, error)
}

// HistoryFetcherFunc adapts a function to a HistoryFetcher.
type HistoryFetcherFunc func(ctx context.Context, symbol string, r Range) ([]RawRow, error)

func (f HistoryFetcherFunc) FetchHistory(ctx context.Context, symbol string, r Range) ([]RawRow, error) {
	return f(ctx, symbol, r)
}

// WithTimeout bounds every FetchHistory call of f to d, f is returned as is
// when d is not positive.
//
// A call running out of time fails with ErrRetrievalUnavailable.
func WithTimeout(f HistoryFetcher, d time.Duration) HistoryFetcher {
	if d <= 0 {
		return f
	}
	return HistoryFetcherFunc(func(ctx context.Context, symbol string, r Range) ([]RawRow, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		rows, err := f.FetchHistory(ctx, symbol, r)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrRetrievalUnavailable) {
			return nil, fmt.Errorf("%s: fetch timed out after %v: %w: %w", symbol, d, ErrRetrievalUnavailable, err)
		}
		return rows, err
	})
}

// RetrieveStock fetches symbol's history over r and merges it.
func RetrieveStock(ctx context.Context, p *Portfolio, f HistoryFetcher, symbol string, r Range) (MergeReport, error) {
	s, err := p.Stock(symbol)
	if err != nil {
		return MergeReport{}, err
	}
	rows, err := f.FetchHistory(ctx, s.symbol, r)
	if err != nil {
		return MergeReport{}, err
	}
	return Merge(s, rows), nil
}

// Retrieve fetches and merges the history over r of every tracked stock, in
// symbol order.
//
// The first failure stops the run, it is returned along with the reports of
// the stocks already merged.
func Retrieve(ctx context.Context, p *Portfolio, f HistoryFetcher, r Range) (map[string]MergeReport, error) {
	reports := make(map[string]MergeReport, p.Len())
	for _, s := range p.ListStocks() {
		report, err := RetrieveStock(ctx, p, f, s.symbol, r)
		if err != nil {
			return reports, err
		}
		reports[s.symbol] = report
	}
	return reports, nil
}
