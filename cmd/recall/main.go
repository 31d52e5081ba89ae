package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/recall/internal/config"
	"github.com/conorfennell/recall/internal/domain"
	"github.com/conorfennell/recall/internal/review"
	"github.com/conorfennell/recall/internal/scheduler"
	"github.com/conorfennell/recall/internal/storage"
	syncpkg "github.com/conorfennell/recall/internal/sync"
)

func main() {
	flags := pflag.NewFlagSet("recall", pflag.ExitOnError)
	configPath := flags.String("config", "recall.yaml", "Path to the YAML config file")
	flags.String("db_path", "recall.db", "Path to the SQLite database file")
	flags.String("deck", "", "Deck to operate on")

	addDeck := flags.String("add-deck", "", "Add a deck: name=path or name=git-url")
	runSync := flags.Bool("sync", false, "Reconcile all decks with their sources")
	due := flags.Bool("due", false, "List cards due for study in the deck")
	endOfDay := flags.Bool("end-of-day", false, "With --due: include everything due by end of today (UTC)")
	limit := flags.Int("limit", 0, "With --due: cap the number of cards")
	previewID := flags.Int64("preview", 0, "Show the four rating outcomes for a card ID")
	reviews := flags.StringSlice("review", nil, "Submit reviews as cardID=Rating pairs")
	crams := flags.StringSlice("cram", nil, "Record cram reviews as cardID=Rating pairs")
	streak := flags.Bool("streak", false, "Show the deck's consecutive study days")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	engine := scheduler.New(cfg.Settings(), nil)
	svc := review.NewService(db, db, db, engine, nil)

	switch {
	case *addDeck != "":
		name, source, ok := strings.Cut(*addDeck, "=")
		if !ok {
			log.Fatalf("Invalid --add-deck value %q, want name=path", *addDeck)
		}
		sourceType := "local"
		if strings.HasSuffix(source, ".git") || strings.HasPrefix(source, "git@") || strings.HasPrefix(source, "https://") {
			sourceType = "git"
		}
		id, err := db.InsertDeck(ctx, domain.Deck{Name: name, SourcePath: source, SourceType: sourceType})
		if err != nil {
			log.Fatalf("Failed to add deck: %v", err)
		}
		fmt.Printf("Added deck %q (id %d, %s source)\n", name, id, sourceType)

	case *runSync:
		if err := syncpkg.Run(ctx, db, cfg.Settings().StartingEase); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

	case *due:
		deck := mustDeck(ctx, db, cfg.Deck)
		cutoff := time.Now().UTC()
		if *endOfDay {
			y, m, d := cutoff.Date()
			cutoff = time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
		}
		cards, err := svc.DueReviews(ctx, deck.ID, cutoff, *limit)
		if err != nil {
			log.Fatalf("Failed to get due cards: %v", err)
		}
		fmt.Printf("%d cards due in %q:\n", len(cards), deck.Name)
		for _, card := range cards {
			fmt.Printf("  [%d] %s (%s)\n", card.ID, firstLine(card.Question), card.Schedule.Status)
		}

	case *previewID != 0:
		preview, err := svc.ReviewPreview(ctx, *previewID)
		if err != nil {
			log.Fatalf("Failed to preview card %d: %v", *previewID, err)
		}
		for _, rating := range domain.Ratings {
			fmt.Printf("%-5s -> %s\n", rating, preview[rating])
		}

	case len(*reviews) > 0:
		submit(ctx, svc.SubmitReviews, *reviews)

	case len(*crams) > 0:
		submit(ctx, svc.SubmitCramReviews, *crams)

	case *streak:
		deck := mustDeck(ctx, db, cfg.Deck)
		s, err := svc.ConsecutiveStudyDays(ctx, deck.ID, time.Now())
		if err != nil {
			log.Fatalf("Failed to compute streak: %v", err)
		}
		if s.LastStudy == nil {
			fmt.Printf("Deck %q has never been studied.\n", deck.Name)
			return
		}
		fmt.Printf("Streak: %d days (last studied %s)\n", s.ConsecutiveDays, s.LastStudy.Format("2006-01-02"))
		if s.StreakStart != nil {
			fmt.Printf("Started: %s\n", s.StreakStart.Format("2006-01-02"))
		}

	default:
		flags.Usage()
	}
}

// submit parses cardID=Rating pairs and runs them through the given
// batch submission.
func submit(ctx context.Context, fn func(context.Context, []review.SubmitItem, time.Time) []review.Result, pairs []string) {
	items := make([]review.SubmitItem, 0, len(pairs))
	for _, pair := range pairs {
		idStr, ratingStr, ok := strings.Cut(pair, "=")
		if !ok {
			log.Fatalf("Invalid review %q, want cardID=Rating", pair)
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Fatalf("Invalid card ID in %q: %v", pair, err)
		}
		rating, err := domain.ParseRating(ratingStr)
		if err != nil {
			log.Fatalf("Invalid rating in %q: %v", pair, err)
		}
		items = append(items, review.SubmitItem{CardID: id, Rating: rating})
	}

	results := fn(ctx, items, time.Now())
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("  [%d] FAILED: %v\n", res.CardID, res.Err)
			continue
		}
		fmt.Printf("  [%d] %s -> %s, next in %s\n",
			res.CardID, res.Entry.PreviousStatus, res.Entry.NewStatus, res.Entry.Interval)
	}
	fmt.Printf("Submitted %d reviews, %d failed.\n", len(results)-failed, failed)
}

func mustDeck(ctx context.Context, db *storage.DB, name string) *domain.Deck {
	if name == "" {
		log.Fatal("No deck selected; set --deck or the deck config key")
	}
	deck, err := db.FindDeckByName(ctx, name)
	if err != nil {
		log.Fatalf("Failed to find deck %q: %v", name, err)
	}
	return deck
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
