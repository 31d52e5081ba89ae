package review

import (
	"context"
	"time"

	"github.com/conorfennell/recall/internal/domain"
)

// CardRepository is the card persistence the review service depends on.
// Implementations return domain.ErrCardNotFound / domain.ErrDeckNotFound
// for missing rows.
type CardRepository interface {
	FindCardByID(ctx context.Context, id int64) (*domain.Card, error)

	// ApplyReview persists the card's new schedule and appends the log
	// entry in a single transaction. The returned entry carries the
	// assigned log ID.
	ApplyReview(ctx context.Context, cardID int64, state domain.ScheduleState, entry domain.ReviewLog) (*domain.ReviewLog, error)

	// DueCards returns the cards in a deck eligible for study at the
	// given cutoff, ordered most-due first; never-scheduled cards sort
	// before everything else. limit <= 0 means no limit.
	DueCards(ctx context.Context, deckID int64, cutoff time.Time, limit int) ([]domain.Card, error)
}

// LogRepository is the append-only review log store.
type LogRepository interface {
	AppendReviewLog(ctx context.Context, entry domain.ReviewLog) (*domain.ReviewLog, error)

	// ReviewTimesByDeck returns the reviewedAt timestamps of every log
	// entry belonging to the deck's cards.
	ReviewTimesByDeck(ctx context.Context, deckID int64) ([]time.Time, error)
}

// DeckRepository resolves deck existence for the read-side queries.
type DeckRepository interface {
	FindDeckByID(ctx context.Context, id int64) (*domain.Deck, error)
}
