// Package sqlitetest opens migrated throwaway stores for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/ports"
	"github.com/jsamuelsen/quotebox/internal/storage/sqlite"
)

// New returns a migrated store backed by a file in t.TempDir.
func New(t testing.TB) *sqlite.Store {
	t.Helper()

	ctx := context.Background()

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:         filepath.Join(t.TempDir(), "quotebox.db"),
		MaxOpenConns: 4,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Migrate(ctx)
	require.NoError(t, err)

	return store
}

// SeedQuote inserts a quote directly, bypassing submission rules other than
// the ones the schema enforces. Weight defaults to 1.
func SeedQuote(t testing.TB, store ports.QuoteStore, text, source string, typ domain.SourceType, weight int) *domain.Quote {
	t.Helper()

	if weight == 0 {
		weight = domain.DefaultWeight
	}

	q := &domain.Quote{Text: text, Weight: weight}

	err := store.InTx(context.Background(), func(tx ports.StoreTx) error {
		src, err := tx.UpsertSource(context.Background(), source, typ)
		if err != nil {
			return err
		}

		q.SourceID = src.ID
		q.Source = src

		return tx.InsertQuote(context.Background(), q)
	})
	require.NoError(t, err)

	return q
}
