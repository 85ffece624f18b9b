package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/stockbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "stocks.jsonl"))
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p := stockbook.NewPortfolio()
	assert.ErrorIs(t, s.Load(ctx, p), stockbook.ErrStoreNotInitialized)
	assert.ErrorIs(t, s.Save(ctx, p), stockbook.ErrStoreNotInitialized)

	require.NoError(t, s.Create(ctx))
	assert.ErrorIs(t, s.Create(ctx), stockbook.ErrStoreAlreadyExists)

	require.NoError(t, s.Load(ctx, p))
	assert.Equal(t, 0, p.Len())

	aapl, err := p.AddStock("AAPL", "Apple", stockbook.D(10))
	require.NoError(t, err)
	_, err = p.AddStock("MSFT", "Microsoft", stockbook.D(2.5))
	require.NoError(t, err)
	stockbook.Merge(aapl, []stockbook.RawRow{
		{Date: "2024-01-02", Close: "185", Volume: "1000"},
		{Date: "2024-01-03", Close: "186.5", Volume: "1200"},
	})
	require.NoError(t, s.Save(ctx, p))

	// a redundant create leaves the data untouched.
	assert.ErrorIs(t, s.Create(ctx), stockbook.ErrStoreAlreadyExists)

	loaded := stockbook.NewPortfolio()
	require.NoError(t, s.Load(ctx, loaded))
	assert.Equal(t, 2, loaded.Len())

	price, err := loaded.LatestPrice("AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(stockbook.D(186.5)), "latest price %v", price)

	msft, err := loaded.Stock("MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft", msft.Name())
	assert.True(t, msft.Shares().Equal(stockbook.D(2.5)))
	assert.Equal(t, 0, msft.Len())
}

func TestStore_SaveIsStable(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx))

	p := stockbook.NewPortfolio()
	_, err := p.AddStock("MSFT", "Microsoft", stockbook.D(1))
	require.NoError(t, err)
	_, err = p.AddStock("AAPL", "Apple", stockbook.D(1))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, p))
	first, err := os.ReadFile(s.Name())
	require.NoError(t, err)

	loaded := stockbook.NewPortfolio()
	require.NoError(t, s.Load(ctx, loaded))
	require.NoError(t, s.Save(ctx, loaded))
	second, err := os.ReadFile(s.Name())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Name(), []byte(`{"symbol":"AAPL","name":"Apple","shares":"ten"}`+"\n"), 0o644))

	p := stockbook.NewPortfolio()
	_, err := p.AddStock("KEEP", "Kept", stockbook.D(1))
	require.NoError(t, err)

	err = s.Load(ctx, p)
	assert.ErrorIs(t, err, stockbook.ErrStoreCorrupt)
	assert.True(t, p.Has("KEEP"), "failed load modified the portfolio")
	assert.Equal(t, 1, p.Len())
}

func TestStore_LoadNormalizesSymbols(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	line := `{"symbol":"aapl","name":"Apple","shares":"10","history":{"2024-01-02":{"close":"185","volume":1000}}}`
	require.NoError(t, os.WriteFile(s.Name(), []byte(line+"\n"), 0o644))

	p := stockbook.NewPortfolio()
	require.NoError(t, s.Load(ctx, p))
	st, err := p.Stock("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", st.Symbol())
	assert.Equal(t, 1, st.Len())

	dup := line + "\n" + `{"symbol":"AAPL","name":"Apple again","shares":"1","history":{}}` + "\n"
	require.NoError(t, os.WriteFile(s.Name(), []byte(dup), 0o644))
	assert.ErrorIs(t, s.Load(ctx, stockbook.NewPortfolio()), stockbook.ErrStoreCorrupt)
}
