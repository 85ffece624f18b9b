package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/stockbook"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the daily observations of a stock, oldest first.
func HistoryMarkdown(s *stockbook.Stock) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History for %s", s.Symbol()))
	doc.PlainText(fmt.Sprintf("%s - %s Shares", s.Name(), s.Shares()))

	stockbook.SortObservations(s)
	observations := s.Observations()
	if len(observations) == 0 {
		doc.PlainText("No observations.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Close", "Volume"},
		Rows:   [][]string{},
	}
	for _, o := range observations {
		table.Rows = append(table.Rows, []string{
			o.Date().String(),
			USD(o.Close()),
			strconv.FormatInt(o.Volume(), 10),
		})
	}
	doc.Table(table)

	return doc.String()
}
