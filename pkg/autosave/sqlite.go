package autosave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const createDraftsTable = `CREATE TABLE IF NOT EXISTS drafts (
	doc_id     TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps drafts in the drafts table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and makes sure the
// drafts table exists. Use ":memory:" for a throwaway store.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open draft database: %w", err)
	}

	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createDraftsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create drafts table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close draft database: %w", err)
	}
	return nil
}

// Load implements DraftStore.
func (s *SQLiteStore) Load(ctx context.Context, docID string) (*Draft, error) {
	if docID == "" {
		return nil, ErrEmptyID
	}

	var (
		content string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM drafts WHERE doc_id = ?`, docID,
	).Scan(&content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no draft stored
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	return &Draft{Content: content, UpdatedAt: time.Unix(0, updated)}, nil
}

// Save implements DraftStore.
func (s *SQLiteStore) Save(ctx context.Context, docID string, draft Draft) error {
	if docID == "" {
		return ErrEmptyID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (doc_id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		docID, draft.Content, draft.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Delete implements DraftStore.
func (s *SQLiteStore) Delete(ctx context.Context, docID string) error {
	if docID == "" {
		return ErrEmptyID
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
