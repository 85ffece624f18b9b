package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/stockbook"
	md "github.com/nao1215/markdown"
)

// StocksMarkdown renders the list of tracked stocks, in the given order.
func StocksMarkdown(stocks []*stockbook.Stock) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Stocks")
	if len(stocks) == 0 {
		doc.PlainText("No stocks tracked.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Symbol", "Name", "Shares", "Observations", "Last Date"},
		Rows:   [][]string{},
	}
	for _, s := range stocks {
		last := "n/a"
		if latest, ok := s.Latest(); ok {
			last = latest.Date().String()
		}
		table.Rows = append(table.Rows, []string{
			s.Symbol(),
			s.Name(),
			s.Shares().String(),
			strconv.Itoa(s.Len()),
			last,
		})
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d stock(s).", len(stocks)))

	return doc.String()
}

// MergeMarkdown renders the outcome of merging rows into symbol.
//
// Skipped rows are listed with their location and reason.
func MergeMarkdown(symbol string, r stockbook.MergeReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2(fmt.Sprintf("Merge into %s", symbol))
	doc.PlainText(fmt.Sprintf("%d row(s) merged, %d skipped.", r.Merged, len(r.Skipped)))
	if len(r.Skipped) == 0 {
		return doc.String()
	}

	table := md.TableSet{
		Header: []string{"Row", "Reason"},
		Rows:   [][]string{},
	}
	for _, e := range r.Skipped {
		table.Rows = append(table.Rows, []string{
			location(e.Row),
			e.Err.Error(),
		})
	}
	doc.Table(table)

	return doc.String()
}

func location(r stockbook.RawRow) string {
	switch {
	case r.Source != "" && r.Line > 0:
		return fmt.Sprintf("%s:%d", r.Source, r.Line)
	case r.Line > 0:
		return strconv.Itoa(r.Line)
	default:
		return r.Source
	}
}
