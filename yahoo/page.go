package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/etnz/stockbook"
)

// fetchPage scrapes the history table of the quote page.
func (c *Client) fetchPage(ctx context.Context, symbol string, r stockbook.Range) ([]stockbook.RawRow, error) {
	body, err := c.get(ctx, c.page, "/quote/{symbol}/history", symbol, r)
	if err != nil {
		return nil, err
	}
	rows, err := parsePage(symbol, body)
	if err != nil {
		return nil, err
	}
	kept := rows[:0]
	for _, row := range rows {
		if keep(row, r) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// parsePage extracts raw rows from the history table.
//
// Columns are located with the table header ("Date", "Close", "Volume"),
// dividend and split rows are ignored.
func parsePage(symbol string, body []byte) ([]stockbook.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing history page of %s: %w", symbol, err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("error parsing history page of %s: no history table", symbol)
	}

	date, closeCol, volume := -1, -1, -1
	table.Find("thead th").Each(func(i int, s *goquery.Selection) {
		h := strings.ToLower(strings.TrimSpace(s.Text()))
		switch {
		case strings.HasPrefix(h, "date"):
			date = i
		case strings.HasPrefix(h, "close"):
			closeCol = i
		case strings.HasPrefix(h, "volume"):
			volume = i
		}
	})
	if date < 0 || closeCol < 0 {
		return nil, fmt.Errorf("error parsing history page of %s: unexpected table header", symbol)
	}

	var rows []stockbook.RawRow
	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() <= closeCol {
			return // dividend or split event
		}
		rows = append(rows, stockbook.RawRow{
			Source: "yahoo page " + symbol,
			Line:   i + 1,
			Date:   cell(cells, date),
			Close:  number(cells, closeCol),
			Volume: number(cells, volume),
		})
	})
	return rows, nil
}

// cell returns the trimmed text of the i-th cell, "-" is empty.
func cell(cells *goquery.Selection, i int) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	text := strings.TrimSpace(cells.Eq(i).Text())
	if text == "-" {
		return ""
	}
	return text
}

// number is a cell without thousands separators.
func number(cells *goquery.Selection, i int) string {
	return strings.ReplaceAll(cell(cells, i), ",", "")
}
