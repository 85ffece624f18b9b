package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/stockbook"
	"github.com/shopspring/decimal"
)

/*
The chart API answers with a single object:

	{
	    "chart": {
	        "result": [{
	            "meta": {"symbol": "AAPL", "currency": "USD", "gmtoffset": -18000, ...},
	            "timestamp": [1704205800, 1704292200],
	            "indicators": {"quote": [{"close": [185.64, 184.25], "volume": [82488700, 58414500], ...}]}
	        }],
	        "error": null
	    }
	}

"timestamp" is missing when there is no data in the period, and values can be
null on days without trading.
*/

func (c *Client) fetchChart(ctx context.Context, symbol string, r stockbook.Range) ([]stockbook.RawRow, error) {
	body, err := c.get(ctx, c.chart, "/v8/finance/chart/{symbol}", symbol, r)
	if err != nil {
		return nil, err
	}
	rows, err := parseChart(symbol, body)
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

// parseChart converts a chart API response to raw rows.
func parseChart(symbol string, body []byte) ([]stockbook.RawRow, error) {
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, fmt.Errorf("error parsing chart of %s: %w", symbol, err)
	}

	if jerr, _ := jsonpath.Get("$.chart.error", jobj); jerr != nil {
		desc, _ := jsonpath.Get("$.chart.error.description", jobj)
		return nil, fmt.Errorf("chart of %s: %v", symbol, desc)
	}
	result, err := jsonpath.Get("$.chart.result[0]", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing chart of %s: %w", symbol, err)
	}
	if m, ok := result.(map[string]any); !ok || m["timestamp"] == nil {
		return nil, nil // no data in the period
	}

	timestamps, err := list(result, "$.timestamp")
	if err != nil {
		return nil, fmt.Errorf("error parsing chart of %s: %w", symbol, err)
	}
	closes, err := list(result, "$.indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("error parsing chart of %s: %w", symbol, err)
	}
	volumes, _ := list(result, "$.indicators.quote[0].volume")
	var offset float64
	if v, err := jsonpath.Get("$.meta.gmtoffset", result); err == nil {
		offset, _ = v.(float64)
	}

	rows := make([]stockbook.RawRow, 0, len(timestamps))
	for i, jts := range timestamps {
		ts, ok := jts.(float64)
		if !ok {
			return nil, fmt.Errorf("error parsing chart of %s: timestamp %v is not a number", symbol, jts)
		}
		day := stockbook.DateOf(time.Unix(int64(ts+offset), 0).UTC())
		rows = append(rows, stockbook.RawRow{
			Source: "yahoo chart " + symbol,
			Line:   i + 1,
			Date:   day.String(),
			Close:  closeText(at(closes, i)),
			Volume: volumeText(at(volumes, i)),
		})
	}
	return rows, nil
}

// list returns the JSON array at path.
func list(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%q: not a list: %v", path, jval)
	}
	return jlist, nil
}

func at(jlist []any, i int) any {
	if i < len(jlist) {
		return jlist[i]
	}
	return nil
}

// closeText formats a close price, null is left empty.
func closeText(jval any) string {
	v, ok := jval.(float64)
	if !ok {
		return ""
	}
	// the API serves float32 noise like 185.63999938964844
	return decimal.NewFromFloat(v).Round(4).String()
}

func volumeText(jval any) string {
	v, ok := jval.(float64)
	if !ok {
		return ""
	}
	return strconv.FormatInt(int64(v), 10)
}
