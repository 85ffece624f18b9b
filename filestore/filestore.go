// Package filestore persists a portfolio as a single JSONL snapshot file.
//
// The file is human-readable and git-friendly, one stock per line. Saving
// replaces the file atomically.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/stockbook"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

// Store is a stockbook.Store backed by a JSONL file.
type Store struct {
	name string
}

// New returns a Store for the file name. Nothing is read or written until
// Create, Load or Save is called.
func New(name string) *Store { return &Store{name: name} }

// Name returns the snapshot file name.
func (s *Store) Name() string { return s.name }

var _ stockbook.Store = (*Store)(nil)

func (s *Store) exists() (bool, error) {
	_, err := os.Stat(s.name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create writes an empty snapshot file if none exists.
func (s *Store) Create(ctx context.Context) error {
	ok, err := s.exists()
	if err != nil {
		return fmt.Errorf("cannot check %q: %w", s.name, err)
	}
	if ok {
		return fmt.Errorf("%q: %w", s.name, stockbook.ErrStoreAlreadyExists)
	}
	if err := renameio.WriteFile(s.name, nil, 0o644); err != nil {
		return fmt.Errorf("cannot create %q: %w", s.name, err)
	}
	zap.L().Info("create-store-file", zap.String("name", s.name))
	return nil
}

// Load reads the snapshot file into p.
func (s *Store) Load(ctx context.Context, p *stockbook.Portfolio) error {
	data, err := os.ReadFile(s.name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%q: %w", s.name, stockbook.ErrStoreNotInitialized)
	}
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", s.name, err)
	}
	stocks, err := stockbook.DecodeSnapshot(s.name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := p.Replace(stocks...); err != nil {
		return fmt.Errorf("%q: %w: %w", s.name, stockbook.ErrStoreCorrupt, err)
	}
	zap.L().Debug("load-store-file", zap.String("name", s.name), zap.Int("stocks", len(stocks)))
	return nil
}

// Save replaces the snapshot file with p's content.
//
// The new content is written to a temporary file that is renamed over the
// snapshot, so a crash leaves either the old or the new snapshot.
func (s *Store) Save(ctx context.Context, p *stockbook.Portfolio) error {
	ok, err := s.exists()
	if err != nil {
		return fmt.Errorf("cannot check %q: %w", s.name, err)
	}
	if !ok {
		return fmt.Errorf("%q: %w", s.name, stockbook.ErrStoreNotInitialized)
	}

	f, err := renameio.NewPendingFile(s.name, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("cannot save %q: %w", s.name, err)
	}
	defer f.Cleanup()

	if err := stockbook.EncodeSnapshot(f, p); err != nil {
		return fmt.Errorf("cannot save %q: %w", s.name, err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("cannot save %q: %w", s.name, err)
	}
	zap.L().Info("save-store-file", zap.String("name", s.name), zap.Int("stocks", p.Len()))
	return nil
}
