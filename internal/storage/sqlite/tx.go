package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

// storeTx implements ports.StoreTx on an open transaction.
type storeTx struct {
	q querier
}

// UpsertSource creates or fetches a source in one statement. The no-op
// DO UPDATE makes RETURNING yield the existing row on conflict.
func (t *storeTx) UpsertSource(ctx context.Context, name string, typ domain.SourceType) (*domain.Source, error) {
	var (
		src    domain.Source
		stored string
	)

	err := t.q.QueryRowContext(ctx, `
		INSERT INTO sources (name, type) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET name = sources.name
		RETURNING id, name, type`, name, string(typ)).Scan(&src.ID, &src.Name, &stored)
	if err != nil {
		return nil, mapError(fmt.Errorf("upserting source %q: %w", name, err))
	}

	src.Type = domain.SourceType(stored)

	return &src, nil
}

func (t *storeTx) CountQuotesForSource(ctx context.Context, sourceID, excludeQuoteID int64) (int, error) {
	var n int

	err := t.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotes WHERE source_id = ? AND id <> ?`,
		sourceID, excludeQuoteID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting quotes of source %d: %w", sourceID, err)
	}

	return n, nil
}

func (t *storeTx) QuoteTextExists(ctx context.Context, text string) (bool, error) {
	var exists bool

	err := t.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM quotes WHERE text = ?)`, text).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking quote text: %w", err)
	}

	return exists, nil
}

func (t *storeTx) InsertQuote(ctx context.Context, q *domain.Quote) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	q.CreatedAt = q.CreatedAt.UTC()

	err := t.q.QueryRowContext(ctx, `
		INSERT INTO quotes (text, source_id, weight, views, likes, dislikes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		q.Text, q.SourceID, q.Weight, q.Views, q.Likes, q.Dislikes,
		q.CreatedAt.Format(timeLayout),
	).Scan(&q.ID)
	if err != nil {
		return mapError(fmt.Errorf("inserting quote: %w", err))
	}

	return nil
}

func (t *storeTx) GetQuote(ctx context.Context, id int64) (*domain.Quote, error) {
	return getQuote(ctx, t.q, id)
}

func (t *storeTx) VoteState(ctx context.Context, sessionID string, quoteID int64) (domain.VoteState, error) {
	var direction string

	err := t.q.QueryRowContext(ctx,
		`SELECT direction FROM session_votes WHERE session_id = ? AND quote_id = ?`,
		sessionID, quoteID).Scan(&direction)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VoteNone, nil
	}

	if err != nil {
		return domain.VoteNone, fmt.Errorf("reading vote state: %w", err)
	}

	return domain.ParseVoteState(direction), nil
}

func (t *storeTx) SetVoteState(ctx context.Context, sessionID string, quoteID int64, state domain.VoteState) error {
	if state == domain.VoteNone {
		_, err := t.q.ExecContext(ctx,
			`DELETE FROM session_votes WHERE session_id = ? AND quote_id = ?`, sessionID, quoteID)
		if err != nil {
			return mapError(fmt.Errorf("clearing vote state: %w", err))
		}

		return nil
	}

	_, err := t.q.ExecContext(ctx, `
		INSERT INTO session_votes (session_id, quote_id, direction, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, quote_id)
		DO UPDATE SET direction = excluded.direction, updated_at = excluded.updated_at`,
		sessionID, quoteID, string(state), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return mapError(fmt.Errorf("writing vote state: %w", err))
	}

	return nil
}

// votesForSession reads a session's whole ledger.
func votesForSession(ctx context.Context, q querier, sessionID string) (map[int64]domain.VoteState, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT quote_id, direction FROM session_votes WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[int64]domain.VoteState)

	for rows.Next() {
		var (
			quoteID   int64
			direction string
		)

		if err := rows.Scan(&quoteID, &direction); err != nil {
			return nil, fmt.Errorf("scanning session vote: %w", err)
		}

		votes[quoteID] = domain.ParseVoteState(direction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session votes: %w", err)
	}

	return votes, nil
}

func (t *storeTx) AdjustCounters(ctx context.Context, quoteID int64, likesDelta, dislikesDelta int) (int, int, error) {
	var likes, dislikes int

	err := t.q.QueryRowContext(ctx, `
		UPDATE quotes SET likes = likes + ?, dislikes = dislikes + ?
		WHERE id = ?
		RETURNING likes, dislikes`, likesDelta, dislikesDelta, quoteID).Scan(&likes, &dislikes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, domain.NewNotFoundError("quote", strconv.FormatInt(quoteID, 10))
	}

	if err != nil {
		return 0, 0, mapError(fmt.Errorf("adjusting counters of quote %d: %w", quoteID, err))
	}

	return likes, dislikes, nil
}
