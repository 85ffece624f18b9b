package cmd

import (
	"context"
	"flag"

	"github.com/etnz/stockbook"
	"github.com/etnz/stockbook/renderer"
	"github.com/google/subcommands"
)

type addCmd struct {
	app    *App
	symbol string
	name   string
	shares string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "track a new stock" }
func (*addCmd) Usage() string {
	return `add -s <symbol> -n <name> [-q <shares>]

  Adds a stock to the portfolio:
  - symbol: The ticker symbol (e.g., "AAPL"). Must be unique.
  - name: A display name (e.g., "Apple").
  - shares: The initial number of shares, 0 by default.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.StringVar(&c.name, "n", "", "stock name (required)")
	f.StringVar(&c.shares, "q", "0", "initial shares")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s", "n"); err != nil {
		return c.app.exit(err)
	}
	shares, err := stockbook.ParseAmount(c.shares)
	if err != nil {
		return c.app.exit(err)
	}
	err = c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		s, err := p.AddStock(c.symbol, c.name, shares)
		if err != nil {
			return false, err
		}
		c.app.printf("Successfully added %s (%s) with %s shares.\n", s.Symbol(), s.Name(), s.Shares())
		return true, nil
	})
	return c.app.exit(err)
}

type deleteCmd struct {
	app    *App
	symbol string
	yes    bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "stop tracking a stock and drop its history" }
func (*deleteCmd) Usage() string {
	return `delete -s <symbol> -y

  Deletes a stock and all its observations. -y confirms the deletion.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.BoolVar(&c.yes, "y", false, "confirm the deletion")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s"); err != nil {
		return c.app.exit(err)
	}
	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		s, err := p.Stock(c.symbol)
		if err != nil {
			return false, err
		}
		if !c.yes {
			c.app.printf("%s has %d observations, run again with -y to delete it.\n", s.Symbol(), s.Len())
			return false, nil
		}
		if err := p.DeleteStock(c.symbol); err != nil {
			return false, err
		}
		c.app.printf("Successfully deleted %s.\n", s.Symbol())
		return true, nil
	})
	return c.app.exit(err)
}

// positionCmd is buy or sell.
type positionCmd struct {
	app    *App
	sell   bool
	symbol string
	amount string
}

func (c *positionCmd) Name() string {
	if c.sell {
		return "sell"
	}
	return "buy"
}

func (c *positionCmd) Synopsis() string {
	if c.sell {
		return "remove shares from a position"
	}
	return "add shares to a position"
}

func (c *positionCmd) Usage() string {
	return c.Name() + ` -s <symbol> -q <shares>

  Changes the number of shares held. Selling more shares than held fails and
  leaves the position unchanged.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "stock symbol (required)")
	f.StringVar(&c.amount, "q", "", "number of shares (required)")
}

func (c *positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "s", "q"); err != nil {
		return c.app.exit(err)
	}
	amount, err := stockbook.ParseAmount(c.amount)
	if err != nil {
		return c.app.exit(err)
	}
	err = c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		apply := p.Buy
		if c.sell {
			apply = p.Sell
		}
		if err := apply(c.symbol, amount); err != nil {
			return false, err
		}
		s, err := p.Stock(c.symbol)
		if err != nil {
			return false, err
		}
		c.app.printf("%s now holds %s shares.\n", s.Symbol(), s.Shares())
		return true, nil
	})
	return c.app.exit(err)
}

type listCmd struct {
	app *App
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list tracked stocks" }
func (*listCmd) Usage() string {
	return `list

  Lists the tracked stocks sorted by symbol.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		c.app.printMarkdown(renderer.StocksMarkdown(p.ListStocks()))
		return false, nil
	})
	return c.app.exit(err)
}
