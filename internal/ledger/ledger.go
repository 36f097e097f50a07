// Package ledger records which notification emails have been handled so a
// message is never resolved or announced twice.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry is one processed notification.
type Entry struct {
	EmailID        string    `db:"email_id" json:"email_id"`
	RunID          string    `db:"run_id" json:"run_id"`
	Subject        string    `db:"subject" json:"subject"`
	ReferenceURL   string    `db:"reference_url" json:"reference_url,omitempty"`
	PostID         string    `db:"post_id" json:"post_id,omitempty"`
	CommentID      string    `db:"comment_id" json:"comment_id,omitempty"`
	Excerpt        string    `db:"excerpt" json:"excerpt,omitempty"`
	ReferenceFound bool      `db:"reference_found" json:"reference_found"`
	Relevant       bool      `db:"relevant" json:"relevant"`
	ResponsePosted bool      `db:"response_posted" json:"response_posted"`
	ResponseURL    string    `db:"response_url" json:"response_url,omitempty"`
	ProcessedAt    time.Time `db:"processed_at" json:"processed_at"`
}

// Stats aggregates the ledger.
type Stats struct {
	Total           int `db:"total" json:"total"`
	ReferencesFound int `db:"references_found" json:"references_found"`
	Relevant        int `db:"relevant" json:"relevant"`
	Posted          int `db:"posted" json:"posted"`
}

// Store is a SQLite backed ledger.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (or creates) the ledger at path, enables WAL mode and applies
// pending migrations. ":memory:" yields a private in-process database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path is required")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID mints the identifier shared by every entry of one scan.
func NewRunID() string {
	return uuid.NewString()
}

func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// IsProcessed reports whether emailID already has an entry.
func (s *Store) IsProcessed(ctx context.Context, emailID string) (bool, error) {
	var exists int
	err := s.db.GetContext(ctx, &exists,
		"SELECT 1 FROM processed_emails WHERE email_id = ? LIMIT 1", emailID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking email %s: %w", emailID, err)
	}
	return true, nil
}

// Record inserts entry, replacing any earlier entry for the same email.
// A zero ProcessedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.EmailID) == "" {
		return errors.New("email id is required")
	}
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = s.now().UTC()
	}

	const query = `
		INSERT INTO processed_emails (
			email_id, run_id, subject,
			reference_url, post_id, comment_id, excerpt,
			reference_found, relevant, response_posted, response_url,
			processed_at
		) VALUES (
			:email_id, :run_id, :subject,
			:reference_url, :post_id, :comment_id, :excerpt,
			:reference_found, :relevant, :response_posted, :response_url,
			:processed_at
		)
		ON CONFLICT(email_id) DO UPDATE SET
			run_id = excluded.run_id,
			subject = excluded.subject,
			reference_url = excluded.reference_url,
			post_id = excluded.post_id,
			comment_id = excluded.comment_id,
			excerpt = excluded.excerpt,
			reference_found = excluded.reference_found,
			relevant = excluded.relevant,
			response_posted = excluded.response_posted,
			response_url = excluded.response_url,
			processed_at = excluded.processed_at`

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("recording email %s: %w", entry.EmailID, err)
	}
	return nil
}

// Stats counts entries by outcome.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(reference_found), 0) AS references_found,
			COALESCE(SUM(relevant), 0) AS relevant,
			COALESCE(SUM(response_posted), 0) AS posted
		FROM processed_emails`)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries := []Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT
			email_id, run_id, subject,
			reference_url, post_id, comment_id, excerpt,
			reference_found, relevant, response_posted, response_url,
			processed_at
		FROM processed_emails
		ORDER BY processed_at DESC, email_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	return entries, nil
}
