package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/recall/internal/domain"
	"github.com/conorfennell/recall/internal/storage"
)

func writeDeckFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write deck file: %v", err)
	}
}

func setupDeck(t *testing.T) (*storage.DB, domain.Deck, string) {
	t.Helper()
	sourceDir := t.TempDir()
	db, err := storage.Open(filepath.Join(t.TempDir(), "recall.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deck := domain.Deck{Name: "go", SourcePath: sourceDir, SourceType: "local"}
	id, err := db.InsertDeck(context.Background(), deck)
	if err != nil {
		t.Fatalf("Failed to insert deck: %v", err)
	}
	deck.ID = id
	return db, deck, sourceDir
}

func TestSyncDeck(t *testing.T) {
	ctx := context.Background()

	t.Run("imports new cards as unreviewed", func(t *testing.T) {
		db, deck, dir := setupDeck(t)
		writeDeckFile(t, dir, "basics.md", "Q: What is a goroutine?\nA: A lightweight thread\n---\nQ: What does defer do?\nA: Delays a call until return\n")

		if err := SyncDeck(ctx, db, deck, 2.5); err != nil {
			t.Fatalf("SyncDeck failed: %v", err)
		}

		cards, err := db.CardsByDeck(ctx, deck.ID)
		if err != nil {
			t.Fatalf("Failed to list cards: %v", err)
		}
		if len(cards) != 2 {
			t.Fatalf("Expected 2 imported cards, got %d", len(cards))
		}
		for _, card := range cards {
			if card.Schedule.Status != domain.StatusNew {
				t.Errorf("Expected status new, got %v", card.Schedule.Status)
			}
			if card.Schedule.Ease != 2.5 {
				t.Errorf("Expected starting ease 2.5, got %v", card.Schedule.Ease)
			}
		}

		updated, _ := db.FindDeckByID(ctx, deck.ID)
		if updated.LastSynced == nil {
			t.Error("Expected last_synced stamped after sync")
		}
	})

	t.Run("re-sync preserves the schedule of known cards", func(t *testing.T) {
		db, deck, dir := setupDeck(t)
		writeDeckFile(t, dir, "basics.md", "Q: What is a goroutine?\nA: A lightweight thread\n")

		if err := SyncDeck(ctx, db, deck, 2.5); err != nil {
			t.Fatalf("First sync failed: %v", err)
		}
		cards, _ := db.CardsByDeck(ctx, deck.ID)
		if len(cards) != 1 {
			t.Fatalf("Expected 1 card, got %d", len(cards))
		}

		// Simulate a review having happened.
		due := time.Now().UTC().AddDate(0, 0, 1)
		state := domain.ScheduleState{Status: domain.StatusReview, Ease: 2.65, Interval: domain.Days(4), NextReview: &due}
		entry := domain.ReviewLog{
			CardID: cards[0].ID, Rating: domain.Easy, Interval: state.Interval, Ease: state.Ease,
			NextReview: &due, ReviewedAt: time.Now().UTC(),
			PreviousStatus: domain.StatusNew, NewStatus: domain.StatusReview,
		}
		if _, err := db.ApplyReview(ctx, cards[0].ID, state, entry); err != nil {
			t.Fatalf("Failed to apply review: %v", err)
		}

		if err := SyncDeck(ctx, db, deck, 2.5); err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}

		card, err := db.FindCardByID(ctx, cards[0].ID)
		if err != nil {
			t.Fatalf("Card vanished on re-sync: %v", err)
		}
		if card.Schedule.Status != domain.StatusReview || card.Schedule.Ease != 2.65 {
			t.Errorf("Re-sync clobbered the schedule: %+v", card.Schedule)
		}
	})

	t.Run("removes cards gone from the source", func(t *testing.T) {
		db, deck, dir := setupDeck(t)
		writeDeckFile(t, dir, "basics.md", "Q: Keep me\nA: Yes\n---\nQ: Drop me\nA: Soon\n")

		if err := SyncDeck(ctx, db, deck, 2.5); err != nil {
			t.Fatalf("First sync failed: %v", err)
		}

		writeDeckFile(t, dir, "basics.md", "Q: Keep me\nA: Yes\n")
		if err := SyncDeck(ctx, db, deck, 2.5); err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}

		cards, _ := db.CardsByDeck(ctx, deck.ID)
		if len(cards) != 1 {
			t.Fatalf("Expected the orphan removed, got %d cards", len(cards))
		}
		if cards[0].Question != "Keep me" {
			t.Errorf("Wrong card survived: %q", cards[0].Question)
		}
	})
}

func TestGitURLToLocalPath(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{"https URL", "https://github.com/owner/cards.git", filepath.Join("repos", "github.com", "owner", "cards")},
		{"scp-style URL", "git@github.com:owner/cards.git", filepath.Join("repos", "github.com", "owner", "cards")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gitURLToLocalPath("repos", tc.url)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}

	if _, err := gitURLToLocalPath("repos", "not a url"); err == nil {
		t.Error("Expected an error for an unparseable URL")
	}
}
