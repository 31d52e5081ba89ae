package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/recall/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB wraps the SQL database connection and implements the repository
// interfaces the review service depends on.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to
// date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertDeck inserts a new deck and returns its ID.
func (db *DB) InsertDeck(ctx context.Context, deck domain.Deck) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO decks (name, source_path, source_type)
		VALUES (?, ?, ?)
	`, deck.Name, deck.SourcePath, deck.SourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert deck %s: %w", deck.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for deck %s: %w", deck.Name, err)
	}
	return id, nil
}

// FindDeckByID retrieves a deck, or domain.ErrDeckNotFound.
func (db *DB) FindDeckByID(ctx context.Context, id int64) (*domain.Deck, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, source_path, source_type, last_synced
		FROM decks WHERE id = ?
	`, id)
	return scanDeck(row)
}

// FindDeckByName retrieves a deck by name, or domain.ErrDeckNotFound.
func (db *DB) FindDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, source_path, source_type, last_synced
		FROM decks WHERE name = ?
	`, name)
	return scanDeck(row)
}

// ListDecks retrieves all decks.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, source_path, source_type, last_synced
		FROM decks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

// UpdateDeckLastSynced stamps the deck's last successful sync.
func (db *DB) UpdateDeckLastSynced(ctx context.Context, deckID int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE decks SET last_synced = ? WHERE id = ?
	`, at.UTC(), deckID)
	if err != nil {
		return fmt.Errorf("failed to update last synced for deck %d: %w", deckID, err)
	}
	return nil
}

// InsertCard inserts a new card with its initial schedule. Imported cards
// arrive with status new, no step and no next review date.
func (db *DB) InsertCard(ctx context.Context, card domain.Card) (int64, error) {
	status, err := card.Schedule.Status.MarshalText()
	if err != nil {
		return 0, err
	}
	unit := unitText(card.Schedule.Interval)

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (deck_id, hash, question, answer, context, status, step, ease, interval_amount, interval_unit, next_review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.DeckID,
		card.Hash,
		card.Question,
		card.Answer,
		card.Context,
		string(status),
		nullStep(card.Schedule.Step),
		card.Schedule.Ease,
		card.Schedule.Interval.Amount,
		unit,
		nullTime(card.Schedule.NextReview),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card %s: %w", card.Hash, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for card %s: %w", card.Hash, err)
	}
	return id, nil
}

const cardColumns = `id, deck_id, hash, question, answer, context, status, step, ease, interval_amount, interval_unit, next_review`

// FindCardByID retrieves a card, or domain.ErrCardNotFound.
func (db *DB) FindCardByID(ctx context.Context, id int64) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE id = ?
	`, id)
	return scanCard(row)
}

// FindCardByHash retrieves a card by content hash, or domain.ErrCardNotFound.
func (db *DB) FindCardByHash(ctx context.Context, hash string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE hash = ?
	`, hash)
	return scanCard(row)
}

// CardsByDeck retrieves all cards belonging to a deck.
func (db *DB) CardsByDeck(ctx context.Context, deckID int64) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE deck_id = ?
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %d: %w", deckID, err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// DeleteCardByHash removes a card and its review logs.
func (db *DB) DeleteCardByHash(ctx context.Context, hash string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete for card %s: %w", hash, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM review_logs WHERE card_id IN (SELECT id FROM cards WHERE hash = ?)
	`, hash); err != nil {
		return fmt.Errorf("failed to delete review logs for card %s: %w", hash, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", hash, err)
	}
	return tx.Commit()
}

// ApplyReview persists a card's new schedule and appends the review log
// entry in one transaction, so the log never records a transition that
// was not committed.
func (db *DB) ApplyReview(ctx context.Context, cardID int64, state domain.ScheduleState, entry domain.ReviewLog) (*domain.ReviewLog, error) {
	status, err := state.Status.MarshalText()
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review transaction for card %d: %w", cardID, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE cards
		SET status = ?, step = ?, ease = ?, interval_amount = ?, interval_unit = ?, next_review = ?
		WHERE id = ?
	`,
		string(status),
		nullStep(state.Step),
		state.Ease,
		state.Interval.Amount,
		unitText(state.Interval),
		nullTime(state.NextReview),
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule for card %d: %w", cardID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrCardNotFound
	}

	stored, err := insertReviewLog(ctx, tx, entry)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review for card %d: %w", cardID, err)
	}
	return stored, nil
}

// AppendReviewLog appends a log entry without touching any card schedule.
// Used by cram reviews.
func (db *DB) AppendReviewLog(ctx context.Context, entry domain.ReviewLog) (*domain.ReviewLog, error) {
	return insertReviewLog(ctx, db.conn, entry)
}

// DueCards returns the deck's cards eligible for study at the cutoff:
// never-scheduled cards plus anything whose next review is not after the
// cutoff. Ordered ascending by next review; cards without one come first.
func (db *DB) DueCards(ctx context.Context, deckID int64, cutoff time.Time, limit int) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE deck_id = ? AND (next_review IS NULL OR next_review <= ?)
		ORDER BY next_review ASC
	`
	args := []any{deckID, cutoff.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards for deck %d: %w", deckID, err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// ReviewTimesByDeck returns the reviewedAt timestamp of every log entry
// for the deck's cards.
func (db *DB) ReviewTimesByDeck(ctx context.Context, deckID int64) ([]time.Time, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.reviewed_at
		FROM review_logs r
		JOIN cards c ON c.id = r.card_id
		WHERE c.deck_id = ?
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review times for deck %d: %w", deckID, err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan review time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// execer covers *sql.DB and *sql.Tx for insertReviewLog.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertReviewLog(ctx context.Context, ex execer, entry domain.ReviewLog) (*domain.ReviewLog, error) {
	rating, err := entry.Rating.MarshalText()
	if err != nil {
		return nil, err
	}
	prev, err := entry.PreviousStatus.MarshalText()
	if err != nil {
		return nil, err
	}
	next, err := entry.NewStatus.MarshalText()
	if err != nil {
		return nil, err
	}

	res, err := ex.ExecContext(ctx, `
		INSERT INTO review_logs (card_id, rating, interval_amount, interval_unit, ease, next_review, reviewed_at, previous_status, new_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.CardID,
		string(rating),
		entry.Interval.Amount,
		unitText(entry.Interval),
		entry.Ease,
		nullTime(entry.NextReview),
		entry.ReviewedAt.UTC(),
		string(prev),
		string(next),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review log for card %d: %w", entry.CardID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for review log: %w", err)
	}
	entry.ID = id
	return &entry, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(row scanner) (*domain.Deck, error) {
	var d domain.Deck
	var lastSynced sql.NullTime
	err := row.Scan(&d.ID, &d.Name, &d.SourcePath, &d.SourceType, &lastSynced)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to scan deck: %w", err)
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		d.LastSynced = &t
	}
	return &d, nil
}

func scanCard(row scanner) (*domain.Card, error) {
	var c domain.Card
	var status, unit string
	var step sql.NullInt64
	var nextReview sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.DeckID,
		&c.Hash,
		&c.Question,
		&c.Answer,
		&c.Context,
		&status,
		&step,
		&c.Schedule.Ease,
		&c.Schedule.Interval.Amount,
		&unit,
		&nextReview,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	if err := c.Schedule.Status.UnmarshalText([]byte(status)); err != nil {
		return nil, err
	}
	if err := c.Schedule.Interval.Unit.UnmarshalText([]byte(unit)); err != nil {
		return nil, err
	}
	if step.Valid {
		c.Schedule.SetStep(int(step.Int64))
	}
	if nextReview.Valid {
		t := nextReview.Time
		c.Schedule.NextReview = &t
	}
	return &c, nil
}

func collectCards(rows *sql.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func nullStep(step *int) sql.NullInt64 {
	if step == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*step), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// unitText renders the interval unit column; a zero interval on a fresh
// card defaults to minutes.
func unitText(iv domain.Interval) string {
	if iv.Unit == domain.UnitDays {
		return "day"
	}
	return "min"
}
