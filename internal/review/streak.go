package review

import (
	"context"
	"sort"
	"time"
)

// Streak describes a run of consecutive study days for a deck.
// StreakStart and LastStudy are UTC calendar days (midnight timestamps);
// both are nil when the deck has never been studied. A broken streak
// still reports LastStudy.
type Streak struct {
	ConsecutiveDays int
	StreakStart     *time.Time
	LastStudy       *time.Time
}

// ConsecutiveStudyDays computes the deck's current study streak from its
// review log. Every review timestamp is collapsed to a UTC calendar day;
// several reviews on one day count once. The streak is alive if the most
// recent study day is today or yesterday relative to the given reference
// time, and extends backward while successive study days differ by
// exactly one.
func (s *Service) ConsecutiveStudyDays(ctx context.Context, deckID int64, today time.Time) (Streak, error) {
	if _, err := s.decks.FindDeckByID(ctx, deckID); err != nil {
		return Streak{}, err
	}

	times, err := s.logs.ReviewTimesByDeck(ctx, deckID)
	if err != nil {
		return Streak{}, err
	}
	if len(times) == 0 {
		return Streak{}, nil
	}

	days := distinctDaysDesc(times)
	last := days[0]

	todayDay := utcDay(today)
	if todayDay.Sub(last) > 24*time.Hour {
		// Last study was before yesterday: streak broken.
		return Streak{LastStudy: &last}, nil
	}

	count := 1
	start := last
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		count++
		start = days[i]
	}

	return Streak{ConsecutiveDays: count, StreakStart: &start, LastStudy: &last}, nil
}

// utcDay truncates a timestamp to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// distinctDaysDesc collapses timestamps to distinct UTC days, most recent
// first.
func distinctDaysDesc(times []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(times))
	var days []time.Time
	for _, t := range times {
		day := utcDay(t)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}
