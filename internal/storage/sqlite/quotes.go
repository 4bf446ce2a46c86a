package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

const quoteColumns = `
	q.id, q.text, q.source_id, q.weight, q.views, q.likes, q.dislikes, q.created_at,
	s.name, s.type`

const quoteFrom = `
	FROM quotes q
	JOIN sources s ON s.id = q.source_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*domain.Quote, error) {
	var (
		q          domain.Quote
		src        domain.Source
		srcType    string
		createdRaw string
	)

	err := row.Scan(
		&q.ID, &q.Text, &q.SourceID, &q.Weight, &q.Views, &q.Likes, &q.Dislikes, &createdRaw,
		&src.Name, &srcType,
	)
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(timeLayout, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of quote %d: %w", q.ID, err)
	}

	q.CreatedAt = createdAt
	src.ID = q.SourceID
	src.Type = domain.SourceType(srcType)
	q.Source = &src

	return &q, nil
}

func collectQuotes(rows *sql.Rows) ([]domain.Quote, error) {
	defer rows.Close()

	var quotes []domain.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}

		quotes = append(quotes, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}

	return quotes, nil
}

func getQuote(ctx context.Context, db querier, id int64) (*domain.Quote, error) {
	row := db.QueryRowContext(ctx, `SELECT `+quoteColumns+quoteFrom+` WHERE q.id = ?`, id)

	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("quote", strconv.FormatInt(id, 10))
	}

	if err != nil {
		return nil, fmt.Errorf("getting quote %d: %w", id, err)
	}

	return q, nil
}

// ListQuotes implements ports.QuoteStore.
func (s *Store) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quoteColumns+quoteFrom+` ORDER BY q.id`)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	return collectQuotes(rows)
}

// GetQuote implements ports.QuoteStore.
func (s *Store) GetQuote(ctx context.Context, id int64) (*domain.Quote, error) {
	return getQuote(ctx, s.db, id)
}

// IncrementViews implements ports.QuoteStore.
func (s *Store) IncrementViews(ctx context.Context, id int64) (*domain.Quote, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE quotes SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, mapError(fmt.Errorf("incrementing views of quote %d: %w", id, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("incrementing views of quote %d: %w", id, err)
	}

	if n == 0 {
		return nil, domain.NewNotFoundError("quote", strconv.FormatInt(id, 10))
	}

	return getQuote(ctx, s.db, id)
}

// TopQuotes implements ports.QuoteStore.
func (s *Store) TopQuotes(ctx context.Context, n int) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteColumns+quoteFrom+` ORDER BY q.likes DESC, q.id ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing top quotes: %w", err)
	}

	return collectQuotes(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchQuotes implements ports.QuoteStore.
func (s *Store) SearchQuotes(ctx context.Context, query string, cursor int64, limit int) ([]domain.Quote, int64, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"

	// one extra row tells us whether another page exists
	rows, err := s.db.QueryContext(ctx, `SELECT `+quoteColumns+quoteFrom+`
		WHERE (q.text LIKE ?1 ESCAPE '\' OR s.name LIKE ?1 ESCAPE '\')
		  AND (?2 = 0 OR q.id < ?2)
		ORDER BY q.id DESC
		LIMIT ?3`, pattern, cursor, limit+1)
	if err != nil {
		return nil, 0, fmt.Errorf("searching quotes: %w", err)
	}

	quotes, err := collectQuotes(rows)
	if err != nil {
		return nil, 0, err
	}

	var next int64
	if len(quotes) > limit {
		quotes = quotes[:limit]
		next = quotes[limit-1].ID
	}

	return quotes, next, nil
}

// ListSources implements ports.QuoteStore.
func (s *Store) ListSources(ctx context.Context, filter domain.SourceType) ([]domain.SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.type, COUNT(q.id)
		FROM sources s
		LEFT JOIN quotes q ON q.source_id = s.id
		WHERE ?1 = '' OR s.type = ?1
		GROUP BY s.id
		ORDER BY s.name`, string(filter))
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceSummary

	for rows.Next() {
		var (
			sum domain.SourceSummary
			typ string
		)

		if err := rows.Scan(&sum.ID, &sum.Name, &typ, &sum.QuoteCount); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		sum.Type = domain.SourceType(typ)
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return out, nil
}

// DeleteSource implements ports.QuoteStore.
func (s *Store) DeleteSource(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return mapError(fmt.Errorf("deleting source %d: %w", id, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source %d: %w", id, err)
	}

	if n == 0 {
		return domain.NewNotFoundError("source", strconv.FormatInt(id, 10))
	}

	return nil
}

// VotesForSession implements ports.QuoteStore.
func (s *Store) VotesForSession(ctx context.Context, sessionID string) (map[int64]domain.VoteState, error) {
	return votesForSession(ctx, s.db, sessionID)
}
