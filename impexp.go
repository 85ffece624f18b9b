package stockbook

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// this file contains functions to handle the CSV import/export format of a
// stock's daily history.
//
// The header line is optional. With a header, columns are found by name
// ("Date", "Close" and "Volume", any other column is ignored), so that
// spreadsheet or web exports like "Date,Open,High,Low,Close,Adj Close,Volume"
// can be imported as is. Without header, columns are "date,close,volume".

// ParseCSV reads raw rows from a CSV file.
//
// A missing file fails with ErrFileNotFound, a file whose structure cannot be
// read fails with ErrParseError. Defects of individual rows are left to Merge.
func ParseCSV(filename string) ([]RawRow, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot import %q: %w", filename, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot import %q: %w", filename, err)
	}
	defer f.Close()
	return ReadCSV(f, filename)
}

// columns locates the date, close and volume fields in a record. volume is -1
// when absent.
type columns struct{ date, close, volume int }

var positional = columns{date: 0, close: 1, volume: 2}

// headerColumns returns the columns of a header record, or false if record is
// not a header.
func headerColumns(record []string) (columns, bool, error) {
	c := columns{date: -1, close: -1, volume: -1}
	isHeader := false
	for i, field := range record {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "date":
			c.date, isHeader = i, true
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		}
	}
	if !isHeader {
		return positional, false, nil
	}
	if c.close < 0 {
		return c, true, fmt.Errorf("header %q has no %q column", strings.Join(record, ","), "Close")
	}
	return c, true, nil
}

// ReadCSV reads raw rows from r in the CSV import format.
//
// source is used in messages and row locations.
func ReadCSV(r io.Reader, source string) ([]RawRow, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []RawRow
	cols, first := positional, true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read %q: %w: %w", source, ErrParseError, err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			c, isHeader, err := headerColumns(record)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w: %w", source, line, ErrParseError, err)
			}
			cols = c
			if isHeader {
				continue
			}
		}

		rows = append(rows, RawRow{
			Source: source,
			Line:   line,
			Date:   field(record, cols.date),
			Close:  field(record, cols.close),
			Volume: field(record, cols.volume),
		})
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ImportCSV parses filename and merges its rows into symbol.
func ImportCSV(p *Portfolio, symbol, filename string) (MergeReport, error) {
	if !p.Has(symbol) {
		return MergeReport{}, fmt.Errorf("%q: %w", NormalizeSymbol(symbol), ErrUnknownStock)
	}
	rows, err := ParseCSV(filename)
	if err != nil {
		return MergeReport{}, err
	}
	return p.Ingest(symbol, rows)
}

// ExportCSV writes the stock's history to w, with a header, in date order.
func ExportCSV(w io.Writer, s *Stock) error {
	SortObservations(s)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Close", "Volume"}); err != nil {
		return err
	}
	for _, o := range s.observations {
		if err := cw.Write([]string{o.date.String(), o.close.String(), strconv.FormatInt(o.volume, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// utf8BOM is the byte order mark some spreadsheets write first.
var utf8BOM = []byte("\ufeff")

// skipBOM returns r without its leading UTF-8 byte order mark, if any.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}
