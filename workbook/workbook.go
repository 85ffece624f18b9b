// Package workbook exports a portfolio to an XLSX spreadsheet.
//
// The first sheet is the valuation of every stock, then each stock gets a
// sheet with its daily history.
package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/stockbook"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SummarySheet is the name of the valuation sheet.
const SummarySheet = "Portfolio"

// Write writes the workbook of p to w.
func Write(w io.Writer, p *stockbook.Portfolio) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("close-workbook", zap.Error(err))
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := fillSummary(f, p, header); err != nil {
		return fmt.Errorf("cannot write sheet %q: %w", SummarySheet, err)
	}
	for _, s := range p.ListStocks() {
		if err := fillHistory(f, s, header); err != nil {
			return fmt.Errorf("cannot write sheet for %s: %w", s.Symbol(), err)
		}
	}
	// the default sheet is replaced by ours.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	return nil
}

func fillSummary(f *excelize.File, p *stockbook.Portfolio, header int) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &[]any{"Symbol", "Name", "Shares", "Last Date", "Last Price", "Value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "F1", header); err != nil {
		return err
	}
	for i, s := range p.ListStocks() {
		row := []any{s.Symbol(), s.Name(), s.Shares().InexactFloat64()}
		if latest, ok := s.Latest(); ok {
			row = append(row,
				latest.Date().String(),
				latest.Close().InexactFloat64(),
				s.Shares().Mul(latest.Close()).InexactFloat64(),
			)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func fillHistory(f *excelize.File, s *stockbook.Stock, header int) error {
	sheet := SheetName(s.Symbol())
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "Close", "Volume"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", header); err != nil {
		return err
	}
	stockbook.SortObservations(s)
	for i, o := range s.Observations() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{o.Date().String(), o.Close().InexactFloat64(), o.Volume()}); err != nil {
			return err
		}
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")

// SheetName returns the history sheet name of a symbol.
func SheetName(symbol string) string {
	name := sheetNameReplacer.Replace(symbol)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
