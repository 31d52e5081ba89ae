package storage

const schema = `
-- Decks group cards and remember the source they were imported from.
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    source_path TEXT NOT NULL,
    source_type TEXT NOT NULL DEFAULT 'local',
    last_synced DATETIME
);

-- Cards carry their content alongside the scheduling state. step is NULL
-- outside learning/relearning; next_review is NULL for brand-new cards.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    deck_id INTEGER NOT NULL,
    hash TEXT NOT NULL UNIQUE,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    context TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'new',
    step INTEGER,
    ease REAL NOT NULL DEFAULT 2.5,
    interval_amount INTEGER NOT NULL DEFAULT 0,
    interval_unit TEXT NOT NULL DEFAULT 'min',
    next_review DATETIME,

    FOREIGN KEY(deck_id) REFERENCES decks(id)
);

-- Append-only review audit log.
CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id INTEGER NOT NULL,
    rating TEXT NOT NULL,
    interval_amount INTEGER NOT NULL,
    interval_unit TEXT NOT NULL,
    ease REAL NOT NULL,
    next_review DATETIME,
    reviewed_at DATETIME NOT NULL,
    previous_status TEXT NOT NULL,
    new_status TEXT NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_due ON cards(deck_id, next_review);
CREATE INDEX IF NOT EXISTS idx_review_logs_card ON review_logs(card_id);
`
