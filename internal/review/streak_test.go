package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/recall/internal/domain"
)

func logReview(store *fakeStore, cardID int64, at time.Time) {
	store.logs = append(store.logs, domain.ReviewLog{
		CardID:     cardID,
		Rating:     domain.Good,
		ReviewedAt: at,
	})
}

func TestConsecutiveStudyDays(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	t.Run("no reviews means no streak", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 0 || streak.StreakStart != nil || streak.LastStudy != nil {
			t.Errorf("Expected empty streak, got %+v", streak)
		}
	})

	t.Run("three days ending today", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		logReview(store, 1, today)
		logReview(store, 1, today.AddDate(0, 0, -1))
		logReview(store, 1, today.AddDate(0, 0, -2))
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 3 {
			t.Errorf("Expected 3 consecutive days, got %d", streak.ConsecutiveDays)
		}
		wantStart := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
		wantLast := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
		if streak.StreakStart == nil || !streak.StreakStart.Equal(wantStart) {
			t.Errorf("Expected streak start %v, got %v", wantStart, streak.StreakStart)
		}
		if streak.LastStudy == nil || !streak.LastStudy.Equal(wantLast) {
			t.Errorf("Expected last study %v, got %v", wantLast, streak.LastStudy)
		}
	})

	t.Run("a streak studied yesterday is still alive", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		logReview(store, 1, today.AddDate(0, 0, -1))
		logReview(store, 1, today.AddDate(0, 0, -2))
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 2 {
			t.Errorf("Expected 2 consecutive days, got %d", streak.ConsecutiveDays)
		}
	})

	t.Run("a gap before today breaks the streak but keeps last study", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		logReview(store, 1, today.AddDate(0, 0, -3))
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 0 || streak.StreakStart != nil {
			t.Errorf("Expected broken streak, got %+v", streak)
		}
		wantLast := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
		if streak.LastStudy == nil || !streak.LastStudy.Equal(wantLast) {
			t.Errorf("Expected last study %v, got %v", wantLast, streak.LastStudy)
		}
	})

	t.Run("a gap further back stops the count", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		logReview(store, 1, today)
		logReview(store, 1, today.AddDate(0, 0, -1))
		// Gap: no study two days ago.
		logReview(store, 1, today.AddDate(0, 0, -3))
		logReview(store, 1, today.AddDate(0, 0, -4))
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 2 {
			t.Errorf("Expected count to stop at the gap, got %d", streak.ConsecutiveDays)
		}
	})

	t.Run("several reviews on one day count once", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		logReview(store, 1, today)
		logReview(store, 1, today.Add(-2*time.Hour))
		logReview(store, 1, today.Add(-5*time.Hour))
		logReview(store, 1, today.AddDate(0, 0, -1))
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 2 {
			t.Errorf("Expected 2 consecutive days, got %d", streak.ConsecutiveDays)
		}
	})

	t.Run("timestamps normalize to UTC days", func(t *testing.T) {
		store := newFakeStore()
		addCard(store, 1, domain.ScheduleState{Status: domain.StatusNew})
		// 2025-06-10 01:00 +05:00 is 2025-06-09 20:00 UTC.
		offset := time.FixedZone("UTC+5", 5*60*60)
		logReview(store, 1, time.Date(2025, 6, 10, 1, 0, 0, 0, offset))
		logReview(store, 1, today)
		svc := newTestService(store, nil)

		streak, err := svc.ConsecutiveStudyDays(ctx, 1, today)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if streak.ConsecutiveDays != 2 {
			t.Errorf("Expected the offset timestamp to land on June 9 UTC, got %+v", streak)
		}
	})

	t.Run("unknown deck surfaces not found", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, nil)

		if _, err := svc.ConsecutiveStudyDays(ctx, 99, today); !errors.Is(err, domain.ErrDeckNotFound) {
			t.Errorf("Expected ErrDeckNotFound, got %v", err)
		}
	})
}
