// Package sqlstore persists a portfolio in a SQLite database.
//
// The schema is managed by embedded migrations. A database without any
// applied migration is considered absent, a dirty migration is corrupt.
package sqlstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/stockbook"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a stockbook.Store backed by SQLite.
type Store struct {
	db   *sqlx.DB
	path string
}

var _ stockbook.Store = (*Store)(nil)

// Open opens the database file at path. The file is created on demand but
// the schema is only installed by Create.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	// a single connection serializes the session's writes.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	zap.L().Debug("open-database", zap.String("path", path))
	return &Store{db: db, path: path}, nil
}

// uriPath escapes the characters that end or encode a sqlite URI path.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// dsn returns the sqlite URI of the database file at path.
func dsn(path string) string {
	u := url.URL{
		Scheme:   "file",
		Opaque:   uriPath.Replace(path),
		RawQuery: url.Values{"_foreign_keys": {"on"}}.Encode(),
	}
	return u.String()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// migrator returns the schema migrator. It must not be closed, that would
// close the database.
func (s *Store) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	drv, err := sqlite3.WithInstance(s.db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "sqlite3", drv)
}

// created reports whether the schema has been installed.
func (s *Store) created() (bool, error) {
	m, err := s.migrator()
	if err != nil {
		return false, fmt.Errorf("cannot read schema of %q: %w", s.path, err)
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot read schema of %q: %w", s.path, err)
	}
	if dirty {
		return false, fmt.Errorf("%q: schema version %d is dirty: %w", s.path, version, stockbook.ErrStoreCorrupt)
	}
	return true, nil
}

// Create installs the schema if the database has none.
func (s *Store) Create(ctx context.Context) error {
	ok, err := s.created()
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%q: %w", s.path, stockbook.ErrStoreAlreadyExists)
	}
	m, err := s.migrator()
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", s.path, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("cannot create %q: %w", s.path, err)
	}
	zap.L().Info("create-database", zap.String("path", s.path))
	return nil
}

// stockRow and observationRow are the table rows.
type stockRow struct {
	Symbol string `db:"symbol"`
	Name   string `db:"name"`
	Shares string `db:"shares"`
}

type observationRow struct {
	Symbol string         `db:"symbol"`
	Day    stockbook.Date `db:"day"`
	Close  string         `db:"close"`
	Volume int64          `db:"volume"`
}

// Load reads the whole database into p.
func (s *Store) Load(ctx context.Context, p *stockbook.Portfolio) error {
	ok, err := s.created()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", s.path, stockbook.ErrStoreNotInitialized)
	}

	var srows []stockRow
	if err := s.db.SelectContext(ctx, &srows, `SELECT symbol, name, shares FROM stocks`); err != nil {
		return fmt.Errorf("cannot load stocks from %q: %w", s.path, err)
	}
	var orows []observationRow
	if err := s.db.SelectContext(ctx, &orows, `SELECT symbol, day, close, volume FROM observations`); err != nil {
		return fmt.Errorf("cannot load observations from %q: %w", s.path, err)
	}

	stocks, err := decode(srows, orows)
	if err != nil {
		return fmt.Errorf("%q: %w: %w", s.path, stockbook.ErrStoreCorrupt, err)
	}
	if err := p.Replace(stocks...); err != nil {
		return fmt.Errorf("%q: %w: %w", s.path, stockbook.ErrStoreCorrupt, err)
	}
	zap.L().Debug("load-database", zap.String("path", s.path), zap.Int("stocks", len(stocks)), zap.Int("observations", len(orows)))
	return nil
}

// decode validates table rows and builds the stocks. Symbols are normalized
// the same way a snapshot file's are.
func decode(srows []stockRow, orows []observationRow) ([]*stockbook.Stock, error) {
	stocks := make([]*stockbook.Stock, 0, len(srows))
	index := make(map[string]*stockbook.Stock, len(srows))
	for _, r := range srows {
		shares, err := decimal.NewFromString(r.Shares)
		if err != nil {
			return nil, fmt.Errorf("stock %q: invalid shares %q", r.Symbol, r.Shares)
		}
		st, err := stockbook.NewStock(r.Symbol, r.Name, shares)
		if err != nil {
			return nil, err
		}
		if _, exists := index[st.Symbol()]; exists {
			return nil, fmt.Errorf("stock %q defined twice", st.Symbol())
		}
		stocks = append(stocks, st)
		index[st.Symbol()] = st
	}
	for _, r := range orows {
		st, ok := index[stockbook.NormalizeSymbol(r.Symbol)]
		if !ok {
			return nil, fmt.Errorf("observation for unknown stock %q", r.Symbol)
		}
		closePrice, err := decimal.NewFromString(r.Close)
		if err != nil {
			return nil, fmt.Errorf("stock %q: invalid close %q on %s", r.Symbol, r.Close, r.Day)
		}
		o, err := stockbook.NewObservation(r.Day, closePrice, r.Volume)
		if err != nil {
			return nil, fmt.Errorf("stock %q: %w", r.Symbol, err)
		}
		if st.Put(o) {
			return nil, fmt.Errorf("stock %q: duplicate observation on %s", r.Symbol, r.Day)
		}
	}
	for _, st := range stocks {
		stockbook.SortObservations(st)
	}
	return stocks, nil
}

// Save replaces the whole database content with p, in a single transaction.
func (s *Store) Save(ctx context.Context, p *stockbook.Portfolio) error {
	ok, err := s.created()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", s.path, stockbook.ErrStoreNotInitialized)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot save %q: %w", s.path, err)
	}
	defer tx.Rollback()

	if err := save(ctx, tx, p); err != nil {
		return fmt.Errorf("cannot save %q: %w", s.path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot save %q: %w", s.path, err)
	}
	zap.L().Info("save-database", zap.String("path", s.path), zap.Int("stocks", p.Len()))
	return nil
}

func save(ctx context.Context, tx *sqlx.Tx, p *stockbook.Portfolio) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stocks`); err != nil {
		return err
	}

	insertStock, err := tx.PrepareNamedContext(ctx, `INSERT INTO stocks (symbol, name, shares) VALUES (:symbol, :name, :shares)`)
	if err != nil {
		return err
	}
	defer insertStock.Close()
	insertObservation, err := tx.PrepareNamedContext(ctx, `INSERT INTO observations (symbol, day, close, volume) VALUES (:symbol, :day, :close, :volume)`)
	if err != nil {
		return err
	}
	defer insertObservation.Close()

	for _, st := range p.ListStocks() {
		row := stockRow{Symbol: st.Symbol(), Name: st.Name(), Shares: st.Shares().String()}
		if _, err := insertStock.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("stock %q: %w", st.Symbol(), err)
		}
		for _, o := range st.Observations() {
			row := observationRow{Symbol: st.Symbol(), Day: o.Date(), Close: o.Close().String(), Volume: o.Volume()}
			if _, err := insertObservation.ExecContext(ctx, row); err != nil {
				return fmt.Errorf("stock %q on %s: %w", st.Symbol(), o.Date(), err)
			}
		}
	}
	return nil
}
