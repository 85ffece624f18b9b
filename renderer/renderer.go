// Package renderer formats portfolio views as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/stockbook"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// USD formats an amount as US dollars, rounded to the cent.
func USD(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}

// Report is the valuation view of a portfolio: one line per stock.
type Report struct {
	AsOf  string // date of the most recent observation, if any.
	Lines []ReportLine
	Total string
}

// ReportLine is a stock in the Report. LastPrice and Value are "n/a" when the
// stock has no observation.
type ReportLine struct {
	Symbol    string
	Name      string
	Shares    string
	LastPrice string
	Value     string
}

// NewReport computes the Report of p, stocks in symbol order.
func NewReport(p *stockbook.Portfolio) *Report {
	r := &Report{}
	var asOf stockbook.Date
	total := decimal.Zero
	for _, s := range p.ListStocks() {
		line := ReportLine{
			Symbol:    s.Symbol(),
			Name:      s.Name(),
			Shares:    s.Shares().String(),
			LastPrice: "n/a",
			Value:     "n/a",
		}
		if latest, ok := s.Latest(); ok {
			value := s.Shares().Mul(latest.Close())
			line.LastPrice = USD(latest.Close())
			line.Value = USD(value)
			total = total.Add(value)
			if latest.Date().After(asOf) {
				asOf = latest.Date()
			}
		}
		r.Lines = append(r.Lines, line)
	}
	if !asOf.IsZero() {
		r.AsOf = asOf.String()
	}
	r.Total = USD(total)
	return r
}

// RenderReport renders the Report to a markdown string.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":  "report_title.md",
		"report_stocks": "report_stocks.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
