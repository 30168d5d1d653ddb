// Package storage provides SQLite-based persistence for generated levels
// and the log of generation attempts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/AppIemon/umm-sub002/internal/level"
	"github.com/AppIemon/umm-sub002/internal/levelgen"
)

// Store manages the SQLite database connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// LevelRecord is a stored level. Levels are regenerated from their seed,
// so only the inputs and a fingerprint of the output are kept.
type LevelRecord struct {
	ID          string
	SongKey     string
	Title       string
	Seed        int64
	Offset      int
	Difficulty  int
	Duration    float64
	Length      float64
	Obstacles   int
	Portals     int
	Attempts    int
	Fingerprint string
	SongYAML    []byte
	ConfigYAML  []byte
	CreatedAt   time.Time
}

// NewLevelRecord builds a record for a validated level.
func NewLevelRecord(l *level.Level, title, songKey string, songYAML, configYAML []byte) LevelRecord {
	return LevelRecord{
		SongKey:     songKey,
		Title:       title,
		Seed:        l.Seed,
		Offset:      l.Offset,
		Difficulty:  l.Difficulty,
		Duration:    l.Duration,
		Length:      l.Length,
		Obstacles:   len(l.Obstacles),
		Portals:     len(l.Portals),
		Attempts:    l.Attempts,
		Fingerprint: l.Fingerprint(),
		SongYAML:    songYAML,
		ConfigYAML:  configYAML,
	}
}

// AttemptEntry is a stored generation attempt.
type AttemptEntry struct {
	ID string
	levelgen.Attempt
	CreatedAt time.Time
}

// Stats contains aggregated statistics over the attempt log.
type Stats struct {
	Levels      int
	Attempts    int
	Successes   int
	AvgProgress float64
	LastRun     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS levels (
			id TEXT PRIMARY KEY,
			song_key TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL,
			offset_attempt INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			duration REAL NOT NULL,
			length REAL NOT NULL,
			obstacles INTEGER NOT NULL DEFAULT 0,
			portals INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 1,
			fingerprint TEXT NOT NULL,
			song_yaml BLOB,
			config_yaml BLOB,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_levels_song_key ON levels(song_key);
		CREATE INDEX IF NOT EXISTS idx_levels_created ON levels(created_at DESC);

		CREATE TABLE IF NOT EXISTS generation_attempts (
			id TEXT PRIMARY KEY,
			song_key TEXT NOT NULL,
			seed INTEGER NOT NULL,
			offset_attempt INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			success INTEGER NOT NULL,
			failure_x REAL NOT NULL DEFAULT 0,
			failure_y REAL NOT NULL DEFAULT 0,
			iterations INTEGER NOT NULL DEFAULT 0,
			progress REAL NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_song_key ON generation_attempts(song_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveLevel stores a level record under a new ID and returns the ID.
func (s *Store) SaveLevel(ctx context.Context, r LevelRecord) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO levels
		 (id, song_key, title, seed, offset_attempt, difficulty, duration, length,
		  obstacles, portals, attempts, fingerprint, song_yaml, config_yaml, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.SongKey, r.Title, r.Seed, r.Offset, r.Difficulty, r.Duration, r.Length,
		r.Obstacles, r.Portals, r.Attempts, r.Fingerprint, r.SongYAML, r.ConfigYAML,
		formatTime(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save level: %w", err)
	}
	return id, nil
}

const levelColumns = `id, song_key, title, seed, offset_attempt, difficulty, duration, length,
	obstacles, portals, attempts, fingerprint, song_yaml, config_yaml, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLevel(row scanner) (LevelRecord, error) {
	var r LevelRecord
	var createdAt any
	err := row.Scan(&r.ID, &r.SongKey, &r.Title, &r.Seed, &r.Offset, &r.Difficulty,
		&r.Duration, &r.Length, &r.Obstacles, &r.Portals, &r.Attempts, &r.Fingerprint,
		&r.SongYAML, &r.ConfigYAML, &createdAt)
	r.CreatedAt = parseTime(createdAt)
	return r, err
}

// LevelByID retrieves a level by its ID or by a unique ID prefix.
// Returns nil if no level matches.
func (s *Store) LevelByID(ctx context.Context, id string) (*LevelRecord, error) {
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+levelColumns+` FROM levels WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		utf8.RuneCountInString(id), id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level: %w", err)
	}
	defer rows.Close()

	var found []LevelRecord
	for rows.Next() {
		r, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if r.ID == id {
			return &r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("storage: id prefix %q is ambiguous", id)
	}
}

// RecentLevels retrieves the most recently saved levels.
func (s *Store) RecentLevels(ctx context.Context, limit int) ([]LevelRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+levelColumns+` FROM levels ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query levels: %w", err)
	}
	defer rows.Close()

	var records []LevelRecord
	for rows.Next() {
		r, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// RecordAttempt implements levelgen.AttemptRecorder.
func (s *Store) RecordAttempt(ctx context.Context, a levelgen.Attempt) error {
	success := 0
	if a.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_attempts
		 (id, song_key, seed, offset_attempt, difficulty, success, failure_x, failure_y,
		  iterations, progress, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), a.SongKey, a.Seed, a.Offset, a.Difficulty, success,
		a.FailureX, a.FailureY, a.Iterations, a.Progress, a.Elapsed.Milliseconds(),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record attempt: %w", err)
	}
	return nil
}

// Ensure Store implements AttemptRecorder
var _ levelgen.AttemptRecorder = (*Store)(nil)

// AttemptsForSong retrieves the attempt log of a song, newest first.
func (s *Store) AttemptsForSong(ctx context.Context, songKey string, limit int) ([]AttemptEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, song_key, seed, offset_attempt, difficulty, success, failure_x, failure_y,
		        iterations, progress, elapsed_ms, created_at
		 FROM generation_attempts
		 WHERE song_key = ?
		 ORDER BY created_at DESC, seed, offset_attempt
		 LIMIT ?`,
		songKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var entries []AttemptEntry
	for rows.Next() {
		var e AttemptEntry
		var success int
		var elapsed int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SongKey, &e.Seed, &e.Offset, &e.Difficulty, &success,
			&e.FailureX, &e.FailureY, &e.Iterations, &e.Progress, &elapsed, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Success = success != 0
		e.Elapsed = time.Duration(elapsed) * time.Millisecond
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// GetStats retrieves aggregated statistics over all levels and attempts.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM levels`).Scan(&stats.Levels)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count levels: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(AVG(progress), 0)
		 FROM generation_attempts`,
	).Scan(&stats.Attempts, &stats.Successes, &stats.AvgProgress)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get attempt stats: %w", err)
	}

	var lastRun any
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM generation_attempts ORDER BY created_at DESC LIMIT 1`,
	).Scan(&lastRun)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last run: %w", err)
	}
	if err == nil {
		stats.LastRun = parseTime(lastRun)
	}

	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string values from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
