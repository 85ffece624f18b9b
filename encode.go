package stockbook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// This file contains the snapshot format of a portfolio: a JSONL stream, one
// stock per line, that is still human-readable and git-friendly.
//
//   {"symbol":"AAPL","name":"Apple","shares":"10","history":{"2024-01-02":{"close":"185","volume":1000}}}
//
// Stocks are written in symbol order, history keys are dates, so that two
// snapshots of the same portfolio are byte identical.

// maxLineSize bounds a single stock line, a long history makes a long line.
const maxLineSize = 64 << 20

// jstock is the object read from and written to a snapshot line.
type jstock struct {
	Symbol  *string                  `json:"symbol"`
	Name    *string                  `json:"name"`
	Shares  *decimal.Decimal         `json:"shares"`
	History map[string]*jobservation `json:"history"`
}

type jobservation struct {
	Close  *decimal.Decimal `json:"close"`
	Volume *int64           `json:"volume"`
}

// EncodeSnapshot writes all the stocks of p to w.
func EncodeSnapshot(w io.Writer, p *Portfolio) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, s := range p.ListStocks() {
		js := jstock{
			Symbol:  &s.symbol,
			Name:    &s.name,
			Shares:  &s.shares,
			History: make(map[string]*jobservation, len(s.observations)),
		}
		for _, o := range s.observations {
			js.History[o.date.String()] = &jobservation{Close: &o.close, Volume: &o.volume}
		}
		if err := enc.Encode(js); err != nil {
			return fmt.Errorf("cannot encode stock %q: %w", s.symbol, err)
		}
	}
	return nil
}

// DecodeSnapshot reads a snapshot from r.
//
// filename is for error message only. Any defect wraps ErrStoreCorrupt and
// reports the offending line. Stocks are returned in file order.
func DecodeSnapshot(filename string, r io.Reader) ([]*Stock, error) {
	var stocks []*Stock
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		s, err := decodeStock(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: %w", filename, i, ErrStoreCorrupt, err)
		}
		if prev, exists := seen[s.symbol]; exists {
			return nil, fmt.Errorf("%s:%d: %w: stock %q already defined on line %d", filename, i, ErrStoreCorrupt, s.symbol, prev)
		}
		seen[s.symbol] = i
		stocks = append(stocks, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s:%d: %w: %w", filename, i+1, ErrStoreCorrupt, err)
	}
	return stocks, nil
}

// decodeStock decodes and validates a single snapshot line.
func decodeStock(line []byte) (*Stock, error) {
	var js jstock
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&js); err != nil {
		return nil, err
	}
	switch {
	case js.Symbol == nil:
		return nil, fmt.Errorf("missing field %q", "symbol")
	case js.Name == nil:
		return nil, fmt.Errorf("missing field %q", "name")
	case js.Shares == nil:
		return nil, fmt.Errorf("missing field %q", "shares")
	case js.History == nil:
		return nil, fmt.Errorf("missing field %q", "history")
	}
	s, err := NewStock(*js.Symbol, *js.Name, *js.Shares)
	if err != nil {
		return nil, err
	}
	for day, jo := range js.History {
		d, err := ParseISODate(day)
		if err != nil {
			return nil, err
		}
		switch {
		case jo == nil || jo.Close == nil:
			return nil, fmt.Errorf("missing close on %s", d)
		case jo.Volume == nil:
			return nil, fmt.Errorf("missing volume on %s", d)
		}
		o, err := NewObservation(d, *jo.Close, *jo.Volume)
		if err != nil {
			return nil, err
		}
		if s.Put(o) {
			return nil, fmt.Errorf("duplicate observation on %s", d)
		}
	}
	SortObservations(s)
	return s, nil
}
