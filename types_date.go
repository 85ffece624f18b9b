package stockbook

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// ShortDateFormat is the m/d/yy format used for manual entry and display.
const ShortDateFormat = "01/02/06"

// extra layouts accepted on read, in order of preference.
var readDateLayouts = []string{
	"1/2/06",        // manual entry
	"1/2/2006",      // spreadsheet exports
	"Jan 2, 2006",   // web history tables
	"January 2, 2006",
}

// Date represents a date with day-level granularity.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf truncates t to its calendar day, in t's own location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool {
	return d.y == 0 && d.m == 0 && d.d == 0
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of that day.
func (d Date) Time() time.Time { return d.time() }

// Format returns a textual representation of the date value formatted according to the layout defined by the argument.
//
//	See the documentation for the [time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

var relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)

// ParseDate parses a Date from a string.
//
// It is lenient and accepts ISO dates ("2025-7-1"), the m/d/yy form
// ("7/1/25"), m/d/yyyy, "Jul 1, 2025", and dates relative to today ("-1d",
// "+2w", "-3m", "-1y", and "0d" for today).
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Date{}, fmt.Errorf("invalid date: empty")
	}

	if str == "0d" {
		return Today(), nil
	}

	// Relative Duration Format (e.g., -1d, +2w) - sign is mandatory for non-zero
	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			// This should not happen given the regex
			return Date{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}

		today := Today()
		switch match[3] {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return NewDate(today.Year(), today.Month()+time.Month(num), today.Day()), nil
		case "y":
			return NewDate(today.Year()+num, today.Month(), today.Day()), nil
		}
	}

	return ParseRowDate(str)
}

// ParseRowDate parses a calendar date as found in data rows: ISO, m/d/yy,
// m/d/yyyy or "Jul 1, 2025". Relative forms are rejected.
func ParseRowDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	on, err := time.Parse(readDateFormat, str)
	if err == nil {
		return DateOf(on), nil
	}
	for _, layout := range readDateLayouts {
		if on, lerr := time.Parse(layout, str); lerr == nil {
			return DateOf(on), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q or %q: %w", str, DateFormat, "m/d/yy", err)
}

// ParseISODate parses only the ISO form ("2025-07-01", "2025-7-1").
//
// It is used for data files and columns, where relative dates make no sense.
func ParseISODate(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, strings.TrimSpace(str))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", str, DateFormat, err)
	}
	return DateOf(on), nil
}

// Value implements driver.Valuer, dates are stored as ISO text.
func (j Date) Value() (driver.Value, error) { return j.String(), nil }

// Scan implements sql.Scanner for ISO text columns. A text that is not a date
// is reported as ErrStoreCorrupt.
func (j *Date) Scan(src any) error {
	var str string
	switch v := src.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	case time.Time:
		*j = NewDate(v.UTC().Date())
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into a date", ErrStoreCorrupt, src)
	}
	d, err := ParseISODate(str)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreCorrupt, err)
	}
	*j = d
	return nil
}
