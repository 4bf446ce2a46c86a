package app

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/ports"
)

// VoteService applies the like/dislike toggle protocol.
type VoteService struct {
	store    ports.QuoteStore
	recorder Recorder
	logger   *slog.Logger
}

// VoteServiceConfig contains the dependencies of the vote service.
type VoteServiceConfig struct {
	Store    ports.QuoteStore
	Recorder Recorder
	Logger   *slog.Logger
}

// NewVoteService creates a vote service. It panics if Store is nil.
func NewVoteService(cfg VoteServiceConfig) *VoteService {
	if cfg.Store == nil {
		panic("app: VoteServiceConfig.Store is required")
	}

	svc := &VoteService{store: cfg.Store, recorder: cfg.Recorder, logger: cfg.Logger}

	if svc.recorder == nil {
		svc.recorder = nopRecorder{}
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// ApplyVote toggles the session's reaction to a quote. The ledger entry and
// the quote's counters change in the same transaction, so they never
// disagree and concurrent voters on one quote never lose an update.
// The resulting state is mirrored into sess.
func (s *VoteService) ApplyVote(
	ctx context.Context,
	sess *domain.Session,
	quoteID int64,
	dir domain.Direction,
) (*domain.VoteResult, error) {
	ctx, span := tracer.Start(ctx, "VoteService.ApplyVote")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("quote.id", quoteID),
		attribute.String("vote.direction", string(dir)),
	)

	if _, err := domain.ParseDirection(string(dir)); err != nil {
		return nil, domain.NewValidationErrorWithValue("direction", err.Error(), dir)
	}

	result := &domain.VoteResult{QuoteID: quoteID}

	err := s.store.InTx(ctx, func(tx ports.StoreTx) error {
		if _, err := tx.GetQuote(ctx, quoteID); err != nil {
			return err
		}

		from, err := tx.VoteState(ctx, sess.ID, quoteID)
		if err != nil {
			return err
		}

		t := domain.Transition(from, dir)

		result.Likes, result.Dislikes, err = tx.AdjustCounters(ctx, quoteID, t.LikesDelta, t.DislikesDelta)
		if err != nil {
			return err
		}

		result.State = t.To

		return tx.SetVoteState(ctx, sess.ID, quoteID, t.To)
	})
	if err != nil {
		if !domain.IsNotFound(err) {
			span.RecordError(err)
			s.logger.ErrorContext(ctx, "vote failed",
				slog.Int64("quote_id", quoteID),
				slog.String("direction", string(dir)),
				slog.Any("error", err),
			)
		}

		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	sess.RecordVote(quoteID, result.State)
	s.recorder.VoteApplied(dir, result.State)

	s.logger.DebugContext(ctx, "vote applied",
		slog.Int64("quote_id", quoteID),
		slog.String("direction", string(dir)),
		slog.String("state", result.State.String()),
	)

	return result, nil
}

// LoadLedger replaces sess.Votes with the session's ledger entries from the
// store.
func (s *VoteService) LoadLedger(ctx context.Context, sess *domain.Session) error {
	votes, err := s.store.VotesForSession(ctx, sess.ID)
	if err != nil {
		return err
	}

	sess.Votes = votes

	return nil
}
