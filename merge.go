package stockbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow is a daily observation as read from an ingestion channel, before any
// validation.
//
// Date and Close are required, Volume is optional and defaults to 0. Source and
// Line only locate the row in error messages (e.g. a file name and line
// number, or a provider name and row index).
type RawRow struct {
	Source string
	Line   int
	Date   string
	Close  string
	Volume string
}

func (r RawRow) location() string {
	switch {
	case r.Source != "" && r.Line > 0:
		return fmt.Sprintf("%s:%d", r.Source, r.Line)
	case r.Source != "":
		return r.Source
	case r.Line > 0:
		return fmt.Sprintf("row %d", r.Line)
	default:
		return "row"
	}
}

// RowError reports a raw row rejected by Merge. It wraps ErrMalformedRow.
type RowError struct {
	Row RawRow
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Row.location(), ErrMalformedRow, e.Err)
}

func (e *RowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }

// MergeReport is the outcome of a Merge.
type MergeReport struct {
	Merged  int        // number of rows merged into the stock.
	Skipped []RowError // rows rejected, in input order.
}

// Parse validates the raw row and converts it to an Observation.
func (r RawRow) Parse() (Observation, error) {
	if strings.TrimSpace(r.Date) == "" {
		return Observation{}, fmt.Errorf("missing date")
	}
	day, err := ParseRowDate(r.Date)
	if err != nil {
		return Observation{}, err
	}

	closeText := strings.TrimSpace(r.Close)
	if closeText == "" {
		return Observation{}, fmt.Errorf("missing close on %s", day)
	}
	closePrice, err := decimal.NewFromString(closeText)
	if err != nil {
		return Observation{}, fmt.Errorf("close %q on %s is not a number", r.Close, day)
	}

	var volume int64
	if volumeText := strings.TrimSpace(r.Volume); volumeText != "" {
		volume, err = strconv.ParseInt(volumeText, 10, 64)
		if err != nil {
			return Observation{}, fmt.Errorf("volume %q on %s is not an integer", r.Volume, day)
		}
	}
	return NewObservation(day, closePrice, volume)
}

// Merge merges raw rows into the stock's observations.
//
// Invalid rows are skipped and reported. A valid row replaces any existing
// observation at the same date (last write wins, also within rows), otherwise
// it is added. Observations are sorted by date afterwards. Merging the same
// rows twice leaves the stock as merging them once.
func Merge(s *Stock, rows []RawRow) MergeReport {
	var report MergeReport
	for _, row := range rows {
		o, err := row.Parse()
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Row: row, Err: err})
			continue
		}
		s.Put(o)
		report.Merged++
	}
	SortObservations(s)
	return report
}
