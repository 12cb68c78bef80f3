package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github/itish2003/notechat/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteNoteStore persists notes in a single SQLite file.
type SQLiteNoteStore struct {
	db *sql.DB
}

// NewSQLiteNoteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteNoteStore(path string) (*SQLiteNoteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("notes: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("notes: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("notes: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteNoteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("notes: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteNoteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteNoteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL DEFAULT '',
			source     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
		CREATE INDEX IF NOT EXISTS idx_notes_user_source ON notes(user_id, source);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteNoteStore) FindByKeyword(ctx context.Context, userID, keyword string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, nil
	}

	// SQLite's lower() only folds ASCII, so other keywords are matched in Go.
	if !isASCII(keyword) {
		all, err := s.ListNotes(ctx, userID)
		if err != nil {
			return nil, err
		}
		var out []models.Note
		for _, n := range all {
			if matchesKeyword(n, keyword) {
				out = append(out, n)
			}
		}
		return out, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, content, source FROM notes
		WHERE user_id = ?
		  AND (lower(title) LIKE ? ESCAPE '\' OR lower(content) LIKE ? ESCAPE '\')
		ORDER BY created_at, rowid`,
		userID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("notes: search %q: %w", keyword, err)
	}
	return scanNotes(rows)
}

func (s *SQLiteNoteStore) AddNote(ctx context.Context, note models.Note) (models.Note, error) {
	if err := requireUser(note.UserID); err != nil {
		return models.Note{}, err
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, source) VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.Source)
	if err != nil {
		return models.Note{}, fmt.Errorf("notes: insert: %w", err)
	}
	return note, nil
}

func (s *SQLiteNoteStore) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, content, source FROM notes
		WHERE user_id = ?
		ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("notes: list: %w", err)
	}
	return scanNotes(rows)
}

func (s *SQLiteNoteStore) DeleteBySource(ctx context.Context, userID, source string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = ? AND source = ?`, userID, source); err != nil {
		return fmt.Errorf("notes: delete source %q: %w", source, err)
	}
	return nil
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	notes := make([]models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Source); err != nil {
			return nil, fmt.Errorf("notes: scan: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// escapeLike escapes LIKE wildcards so the keyword is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
