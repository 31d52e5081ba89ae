package domain

import "time"

// Card is a single question-answer-context entry together with its
// scheduling state. Content fields identify the card (see Hash); the
// schedule is mutated only through the review submission path.
type Card struct {
	ID       int64
	DeckID   int64
	Question string
	Answer   string
	Context  string
	Hash     string

	Schedule ScheduleState
}

// Deck groups cards and ties them to the source they were imported from.
type Deck struct {
	ID         int64
	Name       string
	SourcePath string
	SourceType string // "local" or "git"
	LastSynced *time.Time
}

// ScheduleState is the scheduling state owned by a card.
//
// Step is set only while the card is in Learning or Relearning; it is the
// position within that phase's step queue. Ease drives review-phase
// interval growth and never drops below the configured minimum.
type ScheduleState struct {
	Status     Status
	Step       *int
	Ease       float64
	Interval   Interval
	NextReview *time.Time // nil only for brand-new cards
}

// Clone returns a deep copy of the state. Pointer fields are copied by
// value so callers can branch schedules without cross-contamination.
func (s ScheduleState) Clone() ScheduleState {
	out := s
	if s.Step != nil {
		v := *s.Step
		out.Step = &v
	}
	if s.NextReview != nil {
		v := *s.NextReview
		out.NextReview = &v
	}
	return out
}

// StepIndex returns the current step position, or 0 when no step is set.
func (s ScheduleState) StepIndex() int {
	if s.Step == nil {
		return 0
	}
	return *s.Step
}

// SetStep places the card on the given step of the active step queue.
func (s *ScheduleState) SetStep(step int) {
	s.Step = &step
}

// ClearStep removes the step position; used when a card graduates to
// Review, where no step queue applies.
func (s *ScheduleState) ClearStep() {
	s.Step = nil
}
