package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/recall/internal/domain"
	"github.com/conorfennell/recall/internal/scheduler"
)

// Service coordinates review submission and the read-side study queries.
// It owns no storage of its own; cards, decks and logs live behind the
// repository interfaces.
type Service struct {
	cards    CardRepository
	logs     LogRepository
	decks    DeckRepository
	engine   *scheduler.Engine
	preview  *scheduler.Engine // fuzz disabled, previews stay deterministic
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires a Service. The clock defaults to time.Now when nil.
func NewService(cards CardRepository, logs LogRepository, decks DeckRepository, engine *scheduler.Engine, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		cards:    cards,
		logs:     logs,
		decks:    decks,
		engine:   engine,
		preview:  engine.WithoutFuzz(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
}

// SubmitItem is one card/rating pair in a submission batch.
type SubmitItem struct {
	CardID int64         `validate:"required,gt=0"`
	Rating domain.Rating `validate:"required"`
}

// Result is the per-item outcome of a submission batch. Entry is set on
// success; Err on failure. One card failing never rolls back the others.
type Result struct {
	CardID int64
	Entry  *domain.ReviewLog
	Err    error
}

// SubmitReviews records a batch of study actions. Each item runs in its
// own per-card transaction: fetch the schedule, compute the next state,
// persist it and append a log entry capturing the transition. The batch
// is not globally atomic; callers inspect each Result.
func (s *Service) SubmitReviews(ctx context.Context, items []SubmitItem, reviewedAt time.Time) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		entry, err := s.submitOne(ctx, item, reviewedAt)
		if err != nil {
			slog.Warn("review submission failed", "card_id", item.CardID, "error", err)
		}
		results = append(results, Result{CardID: item.CardID, Entry: entry, Err: err})
	}
	return results
}

func (s *Service) submitOne(ctx context.Context, item SubmitItem, reviewedAt time.Time) (*domain.ReviewLog, error) {
	if err := s.checkItem(item); err != nil {
		return nil, err
	}

	card, err := s.cards.FindCardByID(ctx, item.CardID)
	if err != nil {
		return nil, err
	}

	next := s.engine.CalculateNext(card.Schedule, item.Rating, reviewedAt)

	entry := domain.ReviewLog{
		CardID:         card.ID,
		Rating:         item.Rating,
		Interval:       next.Interval,
		Ease:           next.Ease,
		NextReview:     next.NextReview,
		ReviewedAt:     reviewedAt,
		PreviousStatus: card.Schedule.Status,
		NewStatus:      next.Status,
	}

	stored, err := s.cards.ApplyReview(ctx, card.ID, next, entry)
	if err != nil {
		return nil, fmt.Errorf("applying review for card %d: %w", card.ID, err)
	}
	return stored, nil
}

// SubmitCramReviews records study actions outside the normal schedule.
// Each entry captures the card's current interval, ease and status as
// both sides of the transition; the scheduling engine is never consulted
// and the card's schedule is never touched.
func (s *Service) SubmitCramReviews(ctx context.Context, items []SubmitItem, reviewedAt time.Time) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		entry, err := s.cramOne(ctx, item, reviewedAt)
		if err != nil {
			slog.Warn("cram submission failed", "card_id", item.CardID, "error", err)
		}
		results = append(results, Result{CardID: item.CardID, Entry: entry, Err: err})
	}
	return results
}

func (s *Service) cramOne(ctx context.Context, item SubmitItem, reviewedAt time.Time) (*domain.ReviewLog, error) {
	if err := s.checkItem(item); err != nil {
		return nil, err
	}

	card, err := s.cards.FindCardByID(ctx, item.CardID)
	if err != nil {
		return nil, err
	}

	entry := domain.ReviewLog{
		CardID:         card.ID,
		Rating:         item.Rating,
		Interval:       card.Schedule.Interval,
		Ease:           card.Schedule.Ease,
		NextReview:     card.Schedule.NextReview,
		ReviewedAt:     reviewedAt,
		PreviousStatus: card.Schedule.Status,
		NewStatus:      card.Schedule.Status,
	}

	stored, err := s.logs.AppendReviewLog(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("appending cram log for card %d: %w", card.ID, err)
	}
	return stored, nil
}

// checkItem rejects malformed submissions before they reach the engine.
func (s *Service) checkItem(item SubmitItem) error {
	if err := s.validate.Struct(item); err != nil {
		if !item.Rating.IsValid() {
			return fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(item.Rating))
		}
		return fmt.Errorf("invalid submission for card %d: %w", item.CardID, err)
	}
	if !item.Rating.IsValid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(item.Rating))
	}
	return nil
}

// ReviewPreview returns, for each of the four ratings, the interval the
// card would be scheduled to if reviewed now, formatted for display.
// Nothing is persisted; each branch runs against its own copy of the
// state, and fuzz is disabled so repeated calls agree.
func (s *Service) ReviewPreview(ctx context.Context, cardID int64) (map[domain.Rating]string, error) {
	card, err := s.cards.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make(map[domain.Rating]string, len(domain.Ratings))
	for _, rating := range domain.Ratings {
		next := s.preview.CalculateNext(card.Schedule.Clone(), rating, now)
		out[rating] = next.Interval.String()
	}
	return out, nil
}

// DueReviews returns the cards in a deck eligible for study at the given
// cutoff. The cutoff is the caller's choice of "now" or "end of today";
// the query takes no position on which.
func (s *Service) DueReviews(ctx context.Context, deckID int64, cutoff time.Time, limit int) ([]domain.Card, error) {
	if _, err := s.decks.FindDeckByID(ctx, deckID); err != nil {
		return nil, err
	}
	return s.cards.DueCards(ctx, deckID, cutoff, limit)
}
