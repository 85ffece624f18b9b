package stockbook

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Portfolio is the set of stocks tracked in one session.
//
// A Portfolio is owned by the session that created it, it is not safe for
// concurrent use. Symbols are unique.
type Portfolio struct {
	stocks []*Stock
	index  map[string]*Stock
}

// NewPortfolio returns an empty Portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{index: make(map[string]*Stock)}
}

// Len returns the number of tracked stocks.
func (p *Portfolio) Len() int { return len(p.stocks) }

// Has returns true if symbol is tracked.
func (p *Portfolio) Has(symbol string) bool {
	_, ok := p.index[NormalizeSymbol(symbol)]
	return ok
}

// Stock returns the tracked stock for symbol, or ErrUnknownStock.
func (p *Portfolio) Stock(symbol string) (*Stock, error) {
	s, ok := p.index[NormalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", NormalizeSymbol(symbol), ErrUnknownStock)
	}
	return s, nil
}

// Stocks returns the tracked stocks in their current order.
func (p *Portfolio) Stocks() []*Stock { return slices.Clone(p.stocks) }

// ListStocks returns the tracked stocks sorted by symbol.
//
// The portfolio order itself is not changed.
func (p *Portfolio) ListStocks() []*Stock {
	list := p.Stocks()
	SortStocks(list)
	return list
}

// AddStock creates and tracks a new stock.
//
// Adding a symbol that is already tracked fails with ErrInvalidArgument.
func (p *Portfolio) AddStock(symbol, name string, shares decimal.Decimal) (*Stock, error) {
	s, err := NewStock(symbol, name, shares)
	if err != nil {
		return nil, err
	}
	if p.Has(s.symbol) {
		return nil, invalidf("stock %q is already tracked", s.symbol)
	}
	p.add(s)
	return s, nil
}

func (p *Portfolio) add(s *Stock) {
	p.stocks = append(p.stocks, s)
	p.index[s.symbol] = s
}

// DeleteStock stops tracking symbol and discards its observations.
func (p *Portfolio) DeleteStock(symbol string) error {
	s, err := p.Stock(symbol)
	if err != nil {
		return err
	}
	p.stocks = slices.DeleteFunc(p.stocks, func(x *Stock) bool { return x == s })
	delete(p.index, s.symbol)
	return nil
}

// Buy adds amount shares to symbol.
func (p *Portfolio) Buy(symbol string, amount decimal.Decimal) error {
	s, err := p.Stock(symbol)
	if err != nil {
		return err
	}
	return s.Buy(amount)
}

// Sell removes amount shares from symbol.
func (p *Portfolio) Sell(symbol string, amount decimal.Decimal) error {
	s, err := p.Stock(symbol)
	if err != nil {
		return err
	}
	return s.Sell(amount)
}

// ObservationsFor returns the observations of symbol sorted by date.
func (p *Portfolio) ObservationsFor(symbol string) ([]Observation, error) {
	s, err := p.Stock(symbol)
	if err != nil {
		return nil, err
	}
	SortObservations(s)
	return s.Observations(), nil
}

// LatestPrice returns the close of the most recent observation of symbol.
//
// It fails with ErrNoObservations if there is none.
func (p *Portfolio) LatestPrice(symbol string) (decimal.Decimal, error) {
	s, err := p.Stock(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	latest, ok := s.Latest()
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", s.symbol, ErrNoObservations)
	}
	return latest.close, nil
}

// TotalValue returns shares times the latest price of symbol.
func (p *Portfolio) TotalValue(symbol string) (decimal.Decimal, error) {
	price, err := p.LatestPrice(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	s, _ := p.Stock(symbol)
	return s.shares.Mul(price), nil
}

// Ingest merges raw rows into symbol's observations, see Merge.
func (p *Portfolio) Ingest(symbol string, rows []RawRow) (MergeReport, error) {
	s, err := p.Stock(symbol)
	if err != nil {
		return MergeReport{}, err
	}
	return Merge(s, rows), nil
}

// Replace replaces the whole content of the portfolio.
//
// It fails with ErrInvalidArgument on duplicate symbols, leaving p unchanged.
// Stores use it to install a fully decoded snapshot.
func (p *Portfolio) Replace(stocks ...*Stock) error {
	index := make(map[string]*Stock, len(stocks))
	for _, s := range stocks {
		if _, exists := index[s.symbol]; exists {
			return invalidf("duplicate stock %q", s.symbol)
		}
		index[s.symbol] = s
	}
	p.stocks = slices.Clone(stocks)
	p.index = index
	return nil
}

// Sort sorts the stocks by symbol and each stock's observations by date.
func (p *Portfolio) Sort() {
	SortStocks(p.stocks)
	for _, s := range p.stocks {
		SortObservations(s)
	}
}
