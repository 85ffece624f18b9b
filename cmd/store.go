package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/stockbook"
	"github.com/etnz/stockbook/workbook"
	"github.com/google/renameio/v2"
	"github.com/google/subcommands"
)

type initCmd struct {
	app *App
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create an empty portfolio store" }
func (*initCmd) Usage() string {
	return `init

  Creates the configured store (SBK_STORE), it fails if the store already
  exists.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.run(ctx))
}

func (c *initCmd) run(ctx context.Context) (err error) {
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := store.Create(ctx); err != nil {
		return err
	}
	c.app.printf("Successfully created the %s store.\n", c.app.cfg.Store)
	return nil
}

type exportCmd struct {
	app    *App
	output string
	csv    bool
	symbol string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio to a spreadsheet or a csv file" }
func (*exportCmd) Usage() string {
	return `export -o <file.xlsx> | -csv -s <symbol> [-o <file.csv>]

  Exports the whole portfolio to an XLSX workbook, or the history of a single
  stock as CSV (to stdout when -o is not set).
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
	f.BoolVar(&c.csv, "csv", false, "export a stock history as CSV")
	f.StringVar(&c.symbol, "s", "", "stock symbol, with -csv")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.run(ctx, f))
}

func (c *exportCmd) run(ctx context.Context, f *flag.FlagSet) error {
	if c.csv {
		if err := required(f, "s"); err != nil {
			return err
		}
	} else if err := required(f, "o"); err != nil {
		return err
	} else if !hasExt(c.output, ".xlsx") {
		return fmt.Errorf("%w: %q is not an .xlsx file, use -csv for a stock history", stockbook.ErrInvalidArgument, c.output)
	}

	return c.app.session(ctx, func(p *stockbook.Portfolio) (bool, error) {
		write := func(w io.Writer) error { return workbook.Write(w, p) }
		if c.csv {
			s, err := p.Stock(c.symbol)
			if err != nil {
				return false, err
			}
			write = func(w io.Writer) error { return stockbook.ExportCSV(w, s) }
		}

		if c.output == "" {
			return false, write(c.app.stdout)
		}
		if err := writeFile(c.output, write); err != nil {
			return false, err
		}
		c.app.printf("Successfully exported to %s\n", c.output)
		return false, nil
	})
}

// writeFile atomically replaces name with what write produces.
func writeFile(name string, write func(io.Writer) error) error {
	t, err := renameio.NewPendingFile(name, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if err := write(t); err != nil {
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	return t.CloseAtomicallyReplace()
}

// hasExt reports whether name ends with ext, ignoring case.
func hasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), ext)
}
