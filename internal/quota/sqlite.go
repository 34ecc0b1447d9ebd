package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS quota_records (
	access_code TEXT PRIMARY KEY,
	remaining   TEXT NOT NULL,
	updated_at  INTEGER NOT NULL
)`

// SQLiteStore persists quota records in a local SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the quota database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("quota database path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("creating quota database directory: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create quota schema: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, accessCode string) (string, bool, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT remaining FROM quota_records WHERE access_code = ?`,
		accessCode,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get quota record: %w", err)
	}
	return value, true, nil
}

// Set implements [Store].
func (s *SQLiteStore) Set(ctx context.Context, accessCode string, remaining int) error {
	return s.setRaw(ctx, accessCode, strconv.Itoa(remaining))
}

func (s *SQLiteStore) setRaw(ctx context.Context, accessCode, value string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO quota_records (access_code, remaining, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(access_code) DO UPDATE SET
		   remaining = excluded.remaining,
		   updated_at = excluded.updated_at`,
		accessCode,
		value,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set quota record: %w", err)
	}
	return nil
}
