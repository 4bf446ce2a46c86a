// Package app contains application services that orchestrate use cases.
// Services coordinate domain rules and the quote store through ports; they
// know nothing about HTTP or SQL.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/ports"
)

// Listing defaults.
const (
	DefaultPopularLimit = 10
	DefaultSearchLimit  = 20
	MaxSearchLimit      = 100
)

// QuoteService implements the quote use cases: random selection, submission,
// popularity and the admin listings.
type QuoteService struct {
	store        ports.QuoteStore
	rng          domain.IntNSource
	now          func() time.Time
	recorder     Recorder
	logger       *slog.Logger
	popularLimit int
	searchLimit  int
}

// QuoteServiceConfig contains the dependencies of the quote service.
// Store is required; everything else has a default.
type QuoteServiceConfig struct {
	Store ports.QuoteStore

	// Rand drives weighted selection. Defaults to domain.DefaultRand.
	Rand domain.IntNSource

	// Clock stamps new quotes. Defaults to time.Now.
	Clock func() time.Time

	Recorder Recorder
	Logger   *slog.Logger

	PopularLimit int
	SearchLimit  int
}

// NewQuoteService creates a quote service. It panics if Store is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: QuoteServiceConfig.Store is required")
	}

	svc := &QuoteService{
		store:        cfg.Store,
		rng:          cfg.Rand,
		now:          cfg.Clock,
		recorder:     cfg.Recorder,
		logger:       cfg.Logger,
		popularLimit: cfg.PopularLimit,
		searchLimit:  cfg.SearchLimit,
	}

	if svc.rng == nil {
		svc.rng = domain.DefaultRand
	}

	if svc.now == nil {
		svc.now = time.Now
	}

	if svc.recorder == nil {
		svc.recorder = nopRecorder{}
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.popularLimit <= 0 {
		svc.popularLimit = DefaultPopularLimit
	}

	if svc.searchLimit <= 0 {
		svc.searchLimit = DefaultSearchLimit
	}

	return svc
}

// RandomQuote picks a quote by weight, skipping excludeID when another quote
// is available, and records a view on it. It returns domain.ErrEmptyCorpus
// when there are no quotes at all.
func (s *QuoteService) RandomQuote(ctx context.Context, excludeID int64) (*domain.Quote, error) {
	quotes, err := s.store.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}

	pick := domain.SelectWeighted(quotes, excludeID, s.rng)
	if pick == nil && excludeID != 0 {
		pick = domain.SelectWeighted(quotes, 0, s.rng)
	}

	if pick == nil {
		return nil, domain.ErrEmptyCorpus
	}

	viewed, err := s.store.IncrementViews(ctx, pick.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record view",
			slog.Int64("quote_id", pick.ID),
			slog.Any("error", err),
		)

		return nil, err
	}

	s.recorder.QuoteViewed()

	s.logger.DebugContext(ctx, "selected quote",
		slog.Int64("quote_id", viewed.ID),
		slog.Int64("excluded_id", excludeID),
		slog.Int("candidates", len(quotes)),
	)

	return viewed, nil
}

// GetQuote returns a single quote without touching its counters.
func (s *QuoteService) GetQuote(ctx context.Context, id int64) (*domain.Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// Submit validates and stores a new quote, creating its source on first use.
// Every rejection is a *domain.ValidationErrors.
func (s *QuoteService) Submit(ctx context.Context, sub domain.Submission) (*domain.Quote, error) {
	ctx, span := tracer.Start(ctx, "QuoteService.Submit")
	defer span.End()

	sub.Normalize()

	span.SetAttributes(
		attribute.String("source.name", sub.SourceName),
		attribute.String("source.type", string(sub.SourceType)),
	)

	quote, err := s.submit(ctx, sub)
	if err != nil {
		var errs domain.ValidationErrors
		if errs.Merge(err) {
			s.recorder.SubmissionRecorded(OutcomeRejected)
			span.SetStatus(codes.Error, "rejected")

			s.logger.InfoContext(ctx, "submission rejected",
				slog.String("source_name", sub.SourceName),
				slog.Any("errors", errs.Error()),
			)

			return nil, &errs
		}

		s.recorder.SubmissionRecorded(OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		s.logger.ErrorContext(ctx, "submission failed", slog.Any("error", err))

		return nil, err
	}

	s.recorder.SubmissionRecorded(OutcomeAccepted)
	span.SetAttributes(attribute.Int64("quote.id", quote.ID))

	s.logger.InfoContext(ctx, "quote added",
		slog.Int64("quote_id", quote.ID),
		slog.Int64("source_id", quote.SourceID),
	)

	return quote, nil
}

func (s *QuoteService) submit(ctx context.Context, sub domain.Submission) (*domain.Quote, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		Text:      sub.Text,
		Weight:    sub.Weight,
		CreatedAt: s.now().UTC(),
	}

	err := s.store.InTx(ctx, func(tx ports.StoreTx) error {
		src, err := tx.UpsertSource(ctx, sub.SourceName, sub.SourceType)
		if err != nil {
			return err
		}

		existing, err := tx.CountQuotesForSource(ctx, src.ID, 0)
		if err != nil {
			return err
		}

		var errs domain.ValidationErrors

		errs.Merge(domain.CheckSourceCapacity(existing))

		dup, err := tx.QuoteTextExists(ctx, sub.Text)
		if err != nil {
			return err
		}

		if dup {
			errs.Add(domain.FieldText, domain.MsgDuplicateText)
		}

		if err := errs.OrNil(); err != nil {
			return err
		}

		quote.SourceID = src.ID
		quote.Source = src

		return tx.InsertQuote(ctx, quote)
	})
	if err != nil {
		return nil, err
	}

	return quote, nil
}

// Popular returns the n most liked quotes. A non-positive n uses the
// configured default.
func (s *QuoteService) Popular(ctx context.Context, n int) ([]domain.Quote, error) {
	if n <= 0 {
		n = s.popularLimit
	}

	return s.store.TopQuotes(ctx, n)
}

// PopularPage is the data behind the popular quotes page and the API
// overview.
type PopularPage struct {
	Quotes  []domain.Quote
	Sources []domain.SourceSummary
}

// PopularPage loads the top quotes and the source list concurrently.
func (s *QuoteService) PopularPage(ctx context.Context) (*PopularPage, error) {
	top, sources, err := Parallel2(ctx,
		func(ctx context.Context) ([]domain.Quote, error) { return s.Popular(ctx, 0) },
		func(ctx context.Context) ([]domain.SourceSummary, error) { return s.store.ListSources(ctx, "") },
	)
	if err != nil {
		return nil, err
	}

	return &PopularPage{Quotes: top, Sources: sources}, nil
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Quotes     []domain.Quote
	NextCursor int64
}

// Search pages through quotes matching query by text or source name.
func (s *QuoteService) Search(ctx context.Context, query string, cursor int64, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}

	limit = min(limit, MaxSearchLimit)

	quotes, next, err := s.store.SearchQuotes(ctx, strings.TrimSpace(query), cursor, limit)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Quotes: quotes, NextCursor: next}, nil
}

// Sources lists sources with their quote counts, optionally by type.
func (s *QuoteService) Sources(ctx context.Context, filter domain.SourceType) ([]domain.SourceSummary, error) {
	if filter != "" && !filter.Valid() {
		return nil, domain.NewValidationErrorWithValue(domain.FieldSourceType, domain.MsgInvalidSourceType, filter)
	}

	return s.store.ListSources(ctx, filter)
}

// DeleteSource removes a source with its quotes and their votes.
func (s *QuoteService) DeleteSource(ctx context.Context, id int64) error {
	err := s.store.DeleteSource(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to delete source",
			slog.Int64("source_id", id),
			slog.Any("error", err),
		)
	}

	return err
}
