// Package sync reconciles deck sources with the card store. New cards
// found in a source are inserted as unreviewed; cards that disappeared
// from their source are removed along with their logs.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/recall/internal/domain"
	"github.com/conorfennell/recall/internal/gitsource"
	"github.com/conorfennell/recall/internal/parser"
	"github.com/conorfennell/recall/internal/storage"
)

// reposDir is where git-backed sources are checked out.
const reposDir = "repos"

// Run reconciles every deck against its source. startingEase seeds the
// schedule of newly imported cards.
func Run(ctx context.Context, db *storage.DB, startingEase float64) error {
	decks, err := db.ListDecks(ctx)
	if err != nil {
		return fmt.Errorf("listing decks: %w", err)
	}
	if len(decks) == 0 {
		slog.Info("no decks configured, nothing to sync")
		return nil
	}

	for _, deck := range decks {
		if err := SyncDeck(ctx, db, deck, startingEase); err != nil {
			slog.Error("deck sync failed", "deck", deck.Name, "error", err)
		}
	}
	return nil
}

// SyncDeck reconciles a single deck with its source.
func SyncDeck(ctx context.Context, db *storage.DB, deck domain.Deck, startingEase float64) error {
	slog.Info("syncing deck", "deck", deck.Name, "type", deck.SourceType, "path", deck.SourcePath)

	localPath := deck.SourcePath
	if deck.SourceType == "git" {
		var err error
		localPath, err = gitURLToLocalPath(reposDir, deck.SourcePath)
		if err != nil {
			return err
		}
		if err := gitsource.Sync(ctx, deck.SourcePath, localPath); err != nil {
			return err
		}
	}

	found, imported, errs := importCards(ctx, db, deck, localPath, startingEase)
	orphans, err := removeOrphans(ctx, db, deck, found)
	if err != nil {
		return err
	}

	if err := db.UpdateDeckLastSynced(ctx, deck.ID, time.Now()); err != nil {
		slog.Warn("failed to stamp last synced", "deck", deck.Name, "error", err)
	}

	slog.Info("deck reconciled",
		"deck", deck.Name,
		"cards", len(found),
		"imported", imported,
		"orphans_removed", orphans,
		"errors", len(errs),
	)
	for _, e := range errs {
		slog.Warn("sync issue", "deck", deck.Name, "error", e)
	}
	return nil
}

// importCards walks the source directory, parses every markdown file and
// inserts cards not yet in the store. Returns the set of content hashes
// seen in the source.
func importCards(ctx context.Context, db *storage.DB, deck domain.Deck, root string, startingEase float64) (map[string]bool, int, []error) {
	found := make(map[string]bool)
	var errs []error
	imported := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		cards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, parseErr))
		}
		for _, card := range cards {
			card.DeckID = deck.ID
			card.Hash = domain.ContentHash(card)
			found[card.Hash] = true

			_, findErr := db.FindCardByHash(ctx, card.Hash)
			if findErr == nil {
				continue // already known, schedule preserved
			}
			if !errors.Is(findErr, domain.ErrCardNotFound) {
				errs = append(errs, fmt.Errorf("checking card %s: %w", card.Hash, findErr))
				continue
			}

			card.Schedule = domain.ScheduleState{Status: domain.StatusNew, Ease: startingEase}
			if _, insertErr := db.InsertCard(ctx, card); insertErr != nil {
				errs = append(errs, fmt.Errorf("inserting card %s: %w", card.Hash, insertErr))
				continue
			}
			imported++
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Errorf("walking %s: %w", root, walkErr))
	}
	return found, imported, errs
}

// removeOrphans deletes cards no longer present in the deck's source.
func removeOrphans(ctx context.Context, db *storage.DB, deck domain.Deck, found map[string]bool) (int, error) {
	stored, err := db.CardsByDeck(ctx, deck.ID)
	if err != nil {
		return 0, fmt.Errorf("listing cards for deck %s: %w", deck.Name, err)
	}

	removed := 0
	for _, card := range stored {
		if found[card.Hash] {
			continue
		}
		slog.Info("removing orphaned card", "deck", deck.Name, "hash", card.Hash)
		if err := db.DeleteCardByHash(ctx, card.Hash); err != nil {
			slog.Warn("failed to remove orphaned card", "hash", card.Hash, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// gitURLToLocalPath maps a git URL onto a checkout path under baseDir.
func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-style address: git@host:owner/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitized := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitized), nil
}
