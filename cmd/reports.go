package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/etnz/stockbook"
	"github.com/etnz/stockbook/chart"
	"github.com/etnz/stockbook/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	app *App
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the value of every stock" }
func (*reportCmd) Usage() string {
	return `report

  Displays, for every stock, its shares, last close and total value.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		c.app.printMarkdown(renderer.RenderReport(renderer.NewReport(p)))
		return false, nil
	})
	return c.app.exit(err)
}

type historyCmd struct {
	app    *App
	symbol string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily history of a stock" }
func (*historyCmd) Usage() string {
	return `history -s <symbol>

  Displays the daily closes and volumes of a stock, oldest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s"); err != nil {
		return c.app.exit(err)
	}
	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		s, err := p.Stock(c.symbol)
		if err != nil {
			return false, err
		}
		c.app.printMarkdown(renderer.HistoryMarkdown(s))
		return false, nil
	})
	return c.app.exit(err)
}

type chartCmd struct {
	app    *App
	symbol string
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the closing prices of a stock" }
func (*chartCmd) Usage() string {
	return `chart -s <symbol> [-o <file.png>]

  Draws the closing prices of a stock as a PNG line chart, written to
  <SYMBOL>.png by default.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.StringVar(&c.output, "o", "", "output png file")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s"); err != nil {
		return c.app.exit(err)
	}
	output := c.output
	if output == "" {
		output = stockbook.NormalizeSymbol(c.symbol) + ".png"
	}
	if !hasExt(output, ".png") {
		return c.app.exit(fmt.Errorf("%w: %q is not a .png file", stockbook.ErrInvalidArgument, output))
	}

	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		s, err := p.Stock(c.symbol)
		if err != nil {
			return false, err
		}
		png, err := chart.Closes(s)
		if err != nil {
			return false, err
		}
		if err := writeFile(output, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(png))
			return err
		}); err != nil {
			return false, err
		}
		c.app.printf("Chart of %s written to %s\n", s.Symbol(), output)
		return false, nil
	})
	return c.app.exit(err)
}
