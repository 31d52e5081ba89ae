package scheduler

import (
	"math"
	"math/rand"
	"time"

	"github.com/conorfennell/recall/internal/domain"
)

// Engine computes a card's next scheduling state from a rating. It is a
// pure state-transition function: no I/O, no mutation of its input, and
// deterministic apart from interval fuzz.
type Engine struct {
	settings Settings
	rng      *rand.Rand
}

// New creates an Engine with the given settings. The random source feeds
// interval fuzz only; pass a seeded rand.Rand for reproducible output, or
// nil for a time-seeded one.
func New(settings Settings, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{settings: settings, rng: rng}
}

// Settings returns the engine's scheduling configuration.
func (e *Engine) Settings() Settings {
	return e.settings
}

// WithoutFuzz returns an engine sharing the same settings but with fuzz
// disabled, for deterministic previews.
func (e *Engine) WithoutFuzz() *Engine {
	s := e.settings
	s.UseFuzz = false
	return &Engine{settings: s, rng: e.rng}
}

// CalculateNext returns the state a card moves to when reviewed with the
// given rating at the given time. The input state is not modified.
//
// New cards are first normalized onto the learning queue and then handled
// by the learning rules for the same rating. Learning and relearning
// intervals are minutes; review intervals are days.
func (e *Engine) CalculateNext(state domain.ScheduleState, rating domain.Rating, now time.Time) domain.ScheduleState {
	next := state.Clone()

	if next.Status == domain.StatusNew {
		next.Status = domain.StatusLearning
		next.SetStep(0)
		next.Interval = domain.Interval{}
		if next.Ease == 0 {
			next.Ease = e.settings.StartingEase
		}
	}

	switch next.Status {
	case domain.StatusLearning, domain.StatusRelearning:
		e.nextInLearning(&next, rating)
	case domain.StatusReview:
		e.nextInReview(&next, rating)
	}

	due := now.Add(next.Interval.Duration())
	next.NextReview = &due
	return next
}

// nextInLearning advances a card through its learning or relearning step
// queue.
func (e *Engine) nextInLearning(next *domain.ScheduleState, rating domain.Rating) {
	steps := e.settings.stepsFor(next.Status == domain.StatusRelearning)
	step := next.StepIndex()

	switch rating {
	case domain.Again:
		next.SetStep(0)
		next.Interval = domain.Minutes(steps[0])

	case domain.Hard:
		// Repeat the current step.
		if step >= len(steps) {
			step = 0
		}
		next.Interval = domain.Minutes(steps[step])

	case domain.Good:
		if step+1 < len(steps) {
			next.SetStep(step + 1)
			next.Interval = domain.Minutes(steps[step+1])
		} else {
			e.graduate(next, e.settings.GraduatingInterval)
		}

	case domain.Easy:
		// Skip any remaining steps.
		e.graduate(next, e.settings.EasyInterval)
	}
}

// nextInReview applies the review-phase growth laws, including a lapse
// back into relearning on Again.
func (e *Engine) nextInReview(next *domain.ScheduleState, rating domain.Rating) {
	switch rating {
	case domain.Again:
		next.Status = domain.StatusRelearning
		next.SetStep(0)
		next.Ease = math.Max(e.settings.MinEase, next.Ease-0.2)
		next.Interval = domain.Minutes(e.settings.RelearningSteps[0])

	case domain.Hard:
		next.Ease = math.Max(e.settings.MinEase, next.Ease-0.15)
		next.Interval = domain.Days(e.grow(next.Interval.Amount, e.settings.HardIntervalFactor))

	case domain.Good:
		next.Interval = domain.Days(e.grow(next.Interval.Amount, next.Ease))

	case domain.Easy:
		next.Interval = domain.Days(e.grow(next.Interval.Amount, next.Ease*e.settings.EasyBonus))
		next.Ease += 0.15
	}
}

// graduate moves a card out of its step queue into the review phase.
func (e *Engine) graduate(next *domain.ScheduleState, days int) {
	next.Status = domain.StatusReview
	next.ClearStep()
	next.Interval = domain.Days(days)
}

// grow scales a review interval by the given factor, applies the interval
// modifier and fuzz, and floors the result at 1 day.
func (e *Engine) grow(days int, factor float64) int {
	grown := int(math.Floor(float64(days) * factor * e.settings.IntervalModifier))
	if grown < 1 {
		grown = 1
	}
	return e.applyFuzz(grown)
}

// applyFuzz adds symmetric random jitter to a review interval so cards
// reviewed together do not stay clumped on the same due date. Intervals
// under 3 days are left alone. The jitter tier narrows as intervals grow:
// ±15% under 7 days, ±10% under 30 days, ±5% beyond.
func (e *Engine) applyFuzz(days int) int {
	if days < 3 || !e.settings.UseFuzz {
		return days
	}

	var spread float64
	switch {
	case days < 7:
		spread = 0.15
	case days < 30:
		spread = 0.10
	default:
		spread = 0.05
	}

	jitter := float64(days) * spread * (e.rng.Float64() - 0.5)
	fuzzed := int(math.Round(float64(days) + jitter))
	if fuzzed < 1 {
		fuzzed = 1
	}
	return fuzzed
}
