// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrValidation, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

// QuoteStore is the durable store for sources, quotes and the vote ledger.
//
// Example usage in application layer:
//
//	err := store.InTx(ctx, func(tx ports.StoreTx) error {
//	    state, err := tx.VoteState(ctx, sessionID, quoteID)
//	    ...
//	})
type QuoteStore interface {
	// ListQuotes returns every quote in ascending id order, with Source set.
	ListQuotes(ctx context.Context) ([]domain.Quote, error)

	// GetQuote returns a quote by id.
	// Returns domain.ErrNotFound if the quote does not exist.
	GetQuote(ctx context.Context, id int64) (*domain.Quote, error)

	// IncrementViews atomically adds one view and returns the updated quote.
	// Returns domain.ErrNotFound if the quote does not exist.
	IncrementViews(ctx context.Context, id int64) (*domain.Quote, error)

	// TopQuotes returns at most n quotes ordered by likes descending, then id.
	TopQuotes(ctx context.Context, n int) ([]domain.Quote, error)

	// SearchQuotes pages through quotes whose text or source name contains
	// query, newest first. A zero cursor starts at the newest quote; the
	// returned cursor is zero when there are no more pages.
	SearchQuotes(ctx context.Context, query string, cursor int64, limit int) ([]domain.Quote, int64, error)

	// ListSources returns sources with their quote counts, ordered by name.
	// An empty filter returns every type.
	ListSources(ctx context.Context, filter domain.SourceType) ([]domain.SourceSummary, error)

	// VotesForSession returns every ledger entry of a session. Quotes the
	// session has no reaction to are absent.
	VotesForSession(ctx context.Context, sessionID string) (map[int64]domain.VoteState, error)

	// DeleteSource removes a source together with its quotes and their votes.
	// Returns domain.ErrNotFound if the source does not exist.
	DeleteSource(ctx context.Context, id int64) error

	// InTx runs fn inside a single write transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx StoreTx) error) error
}

// StoreTx is the set of operations available inside QuoteStore.InTx.
type StoreTx interface {
	// UpsertSource returns the source named name, creating it with typ when
	// it does not exist. The stored type of an existing source is kept.
	UpsertSource(ctx context.Context, name string, typ domain.SourceType) (*domain.Source, error)

	// CountQuotesForSource counts the quotes of a source, ignoring
	// excludeQuoteID when it is non-zero.
	CountQuotesForSource(ctx context.Context, sourceID, excludeQuoteID int64) (int, error)

	// QuoteTextExists reports whether a quote with exactly this text exists.
	QuoteTextExists(ctx context.Context, text string) (bool, error)

	// InsertQuote persists q and sets its ID.
	InsertQuote(ctx context.Context, q *domain.Quote) error

	// GetQuote returns a quote by id.
	// Returns domain.ErrNotFound if the quote does not exist.
	GetQuote(ctx context.Context, id int64) (*domain.Quote, error)

	// VoteState returns the ledger entry for a session and quote.
	VoteState(ctx context.Context, sessionID string, quoteID int64) (domain.VoteState, error)

	// SetVoteState writes the ledger entry. VoteNone removes it.
	SetVoteState(ctx context.Context, sessionID string, quoteID int64, state domain.VoteState) error

	// AdjustCounters applies relative changes to likes and dislikes and
	// returns the updated totals.
	AdjustCounters(ctx context.Context, quoteID int64, likesDelta, dislikesDelta int) (likes, dislikes int, err error)
}
