// Package cmd implements the sbk console commands.
//
// Every command is one session: it loads the portfolio from the configured
// store, runs, and saves the portfolio back when it changed it.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/stockbook"
	"github.com/etnz/stockbook/config"
	"github.com/etnz/stockbook/filestore"
	"github.com/etnz/stockbook/sqlstore"
	"github.com/etnz/stockbook/yahoo"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// App holds what the commands share for one run.
type App struct {
	cfg     *config.Config
	stdout  io.Writer
	stderr  io.Writer
	fetcher stockbook.HistoryFetcher
	plain   bool

	commands []registered
}

type registered struct {
	group string
	cmd   subcommands.Command
}

// Option configures an App.
type Option func(*App)

// WithOutput sets the writers for results and for error messages.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) { a.stdout, a.stderr = stdout, stderr }
}

// WithFetcher replaces the yahoo client built from the configuration.
func WithFetcher(f stockbook.HistoryFetcher) Option { return func(a *App) { a.fetcher = f } }

// WithPlainMarkdown prints markdown as is, without terminal styling.
func WithPlainMarkdown() Option { return func(a *App) { a.plain = true } }

func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	a.commands = []registered{
		{"store", &initCmd{app: a}},
		{"store", &exportCmd{app: a}},

		{"stocks", &addCmd{app: a}},
		{"stocks", &deleteCmd{app: a}},
		{"stocks", &positionCmd{app: a}},
		{"stocks", &positionCmd{app: a, sell: true}},
		{"stocks", &listCmd{app: a}},

		{"data", &recordCmd{app: a}},
		{"data", &retrieveCmd{app: a}},
		{"data", &importCmd{app: a}},

		{"reports", &reportCmd{app: a}},
		{"reports", &historyCmd{app: a}},
		{"reports", &chartCmd{app: a}},

		{"", &topicCmd{app: a}},
	}
	return a
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func (a *App) Register(c *subcommands.Commander) {
	for _, r := range a.commands {
		c.Register(r.cmd, r.group)
	}
}

// openStore opens the configured store, closeFn must be called when done.
func (a *App) openStore(ctx context.Context) (store stockbook.Store, closeFn func() error, err error) {
	switch a.cfg.Store {
	case config.StoreFile:
		return filestore.New(a.cfg.FilePath), func() error { return nil }, nil
	default:
		s, err := sqlstore.Open(ctx, a.cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

// session loads the portfolio, runs fn on it, and saves it if fn reports a
// change. A change is saved even when fn also fails, so that partial work,
// like a retrieval interrupted halfway, is kept.
func (a *App) session(ctx context.Context, fn func(p *stockbook.Portfolio) (changed bool, err error)) (err error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p := stockbook.NewPortfolio()
	if err := store.Load(ctx, p); err != nil {
		return err
	}
	changed, err := fn(p)
	if !changed {
		return err
	}
	if serr := store.Save(ctx, p); serr != nil {
		return errors.Join(err, serr)
	}
	return err
}

func (a *App) historyFetcher() stockbook.HistoryFetcher {
	if a.fetcher != nil {
		return a.fetcher
	}
	y := a.cfg.Yahoo
	client := yahoo.New(
		yahoo.WithChartURL(y.ChartURL),
		yahoo.WithPageURL(y.PageURL),
		yahoo.WithTimeout(y.Timeout),
		yahoo.WithRate(y.Rate),
		yahoo.WithCacheDir(y.CacheDir),
		yahoo.WithDebug(y.Debug),
	)
	return stockbook.WithTimeout(client, y.FetchTimeout)
}

// exit reports err and maps it to an exit status.
func (a *App) exit(err error) subcommands.ExitStatus {
	switch {
	case err == nil:
		return subcommands.ExitSuccess
	case errors.Is(err, stockbook.ErrInvalidArgument):
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	default:
		zap.L().Debug("command-failed", zap.Error(err))
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
}

func (a *App) printf(format string, args ...any) { fmt.Fprintf(a.stdout, format, args...) }

func (a *App) printMarkdown(md string) {
	if a.plain {
		fmt.Fprint(a.stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprint(a.stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(a.stdout, md)
		return
	}
	fmt.Fprint(a.stdout, out)
}

// required fails with ErrInvalidArgument if any of the named flags is empty.
func required(f *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if fl := f.Lookup(name); fl != nil && fl.Value.String() == "" {
			return fmt.Errorf("%w: flag -%s is required", stockbook.ErrInvalidArgument, name)
		}
	}
	return nil
}

func invalid(err error) error {
	if err == nil || errors.Is(err, stockbook.ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %w", stockbook.ErrInvalidArgument, err)
}
