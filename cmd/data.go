package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/stockbook"
	"github.com/etnz/stockbook/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type recordCmd struct {
	app    *App
	symbol string
	date   string
	price  string
	volume string
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record a daily closing price by hand" }
func (*recordCmd) Usage() string {
	return `record -s <symbol> -p <price> [-d <date>] [-v <volume>]

  Records the close of a stock on a day, replacing any observation already
  recorded on that day. The date accepts ISO ("2024-01-02"), m/d/yy
  ("1/2/24") and relative ("-1d") forms, today by default.
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.StringVar(&c.date, "d", "0d", "observation day")
	f.StringVar(&c.price, "p", "", "closing price (required)")
	f.StringVar(&c.volume, "v", "", "traded volume")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s", "p"); err != nil {
		return c.app.exit(err)
	}
	on, err := stockbook.ParseDate(c.date)
	if err != nil {
		return c.app.exit(invalid(err))
	}
	row := stockbook.RawRow{Source: "record", Date: on.String(), Close: c.price, Volume: c.volume}
	o, err := row.Parse()
	if err != nil {
		return c.app.exit(invalid(err))
	}

	err = c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		if _, err := p.Ingest(c.symbol, []stockbook.RawRow{row}); err != nil {
			return false, err
		}
		c.app.printf("Recorded %s %s\n", stockbook.NormalizeSymbol(c.symbol), o)
		return true, nil
	})
	return c.app.exit(err)
}

type retrieveCmd struct {
	app    *App
	from   string
	to     string
	symbol string
}

func (*retrieveCmd) Name() string     { return "retrieve" }
func (*retrieveCmd) Synopsis() string { return "retrieve daily history from the web" }
func (*retrieveCmd) Usage() string {
	return `retrieve [-from <date>] [-to <date>] [-s <symbol>]

  Retrieves the daily history of every tracked stock, or only -s, over the
  date range and merges it. Stocks retrieved before a failure are kept.
`
}

func (c *retrieveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "-1m", "first day of the range")
	f.StringVar(&c.to, "to", "0d", "last day of the range")
	f.StringVar(&c.symbol, "s", "", "only retrieve this stock")
}

func (c *retrieveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := stockbook.ParseDate(c.from)
	if err != nil {
		return c.app.exit(invalid(err))
	}
	to, err := stockbook.ParseDate(c.to)
	if err != nil {
		return c.app.exit(invalid(err))
	}
	r := stockbook.NewRange(from, to)
	fetcher := c.app.historyFetcher()

	err = c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		if c.symbol != "" {
			report, err := stockbook.RetrieveStock(ctx, p, fetcher, c.symbol, r)
			if err != nil {
				return false, err
			}
			c.app.printMarkdown(renderer.MergeMarkdown(stockbook.NormalizeSymbol(c.symbol), report))
			return report.Merged > 0, nil
		}

		reports, err := stockbook.Retrieve(ctx, p, fetcher, r)
		changed := false
		for _, s := range p.ListStocks() {
			report, ok := reports[s.Symbol()]
			if !ok {
				continue
			}
			zap.L().Info("retrieve-stock", zap.String("symbol", s.Symbol()), zap.Int("merged", report.Merged), zap.Int("skipped", len(report.Skipped)))
			c.app.printMarkdown(renderer.MergeMarkdown(s.Symbol(), report))
			changed = changed || report.Merged > 0
		}
		if errors.Is(err, stockbook.ErrRetrievalUnavailable) {
			err = fmt.Errorf("retrieval stopped, %d of %d stocks done: %w", len(reports), p.Len(), err)
		}
		return changed, err
	})
	return c.app.exit(err)
}

type importCmd struct {
	app    *App
	symbol string
	file   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import daily history from a csv file" }
func (*importCmd) Usage() string {
	return `import -s <symbol> -f <file.csv>

  Merges a CSV file of daily observations into a stock. The columns are
  date, close and volume, either in that order or named in a header row.
  Malformed rows are skipped and reported.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.StringVar(&c.file, "f", "", "csv file (required)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s", "f"); err != nil {
		return c.app.exit(err)
	}
	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		report, err := stockbook.ImportCSV(p, c.symbol, c.file)
		if err != nil {
			return false, err
		}
		c.app.printMarkdown(renderer.MergeMarkdown(stockbook.NormalizeSymbol(c.symbol), report))
		return report.Merged > 0, nil
	})
	return c.app.exit(err)
}
