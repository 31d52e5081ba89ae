package domain

import "time"

// ReviewLog records a single review event for a card. Entries are
// append-only and never mutated after creation.
//
// Interval, Ease and NextReview capture the schedule the review produced;
// PreviousStatus and NewStatus capture the transition that produced it.
// A cram review records the card's current schedule on both sides.
type ReviewLog struct {
	ID             int64
	CardID         int64
	Rating         Rating
	Interval       Interval
	Ease           float64
	NextReview     *time.Time
	ReviewedAt     time.Time
	PreviousStatus Status
	NewStatus      Status
}
