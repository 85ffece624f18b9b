// Package chart draws the closing price history of a stock.
package chart

import (
	"fmt"

	"github.com/etnz/stockbook"
	"github.com/vicanso/go-charts/v2"
)

// Closes renders the closing prices of s, oldest first, as a PNG line chart.
//
// It needs at least two observations.
func Closes(s *stockbook.Stock) ([]byte, error) {
	stockbook.SortObservations(s)
	observations := s.Observations()
	if len(observations) < 2 {
		return nil, fmt.Errorf("cannot chart %s: %d observation(s), need 2: %w", s.Symbol(), len(observations), stockbook.ErrNoObservations)
	}

	x := make([]string, 0, len(observations))
	closes := make([]float64, 0, len(observations))
	yMin, yMax := observations[0].Close().InexactFloat64(), observations[0].Close().InexactFloat64()
	for _, o := range observations {
		v := o.Close().InexactFloat64()
		x = append(x, o.Date().Format(stockbook.ShortDateFormat))
		closes = append(closes, v)
		yMin, yMax = min(yMin, v), max(yMax, v)
	}
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin = max(yMin-pad, 0)
	yMax += pad

	split := min(len(x)-1, 10)
	painter, err := charts.LineRender([][]float64{closes},
		charts.TitleTextOptionFunc(s.Symbol()+" • "+s.Name()),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: x, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot chart %s: %w", s.Symbol(), err)
	}
	return painter.Bytes()
}
