// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/suplementia/evidence-engine/pkg/types"
)

// Store is the persistent tier of the evidence cache.
type Store interface {
	// Get returns the entry for key, or nil when absent. Expiry is the
	// caller's concern: expired entries are still returned so the cache
	// can decide to regenerate.
	Get(ctx context.Context, key string) (*types.CacheEntry, error)

	// Put writes or replaces the entry for key with a fresh TTL.
	Put(ctx context.Context, key string, result types.RankingResult, ttl time.Duration) error

	// Touch increments the access counter.
	Touch(ctx context.Context, key string) error

	// Invalidate moves the entry's expiry into the past so the next read
	// regenerates.
	Invalidate(ctx context.Context, key string) error

	Close() error
}

// SQLiteStore keeps cache entries in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB

	// now is injectable for TTL tests.
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS evidence_cache (
		key TEXT PRIMARY KEY,
		result_json TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		quality TEXT NOT NULL,
		access_count INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*types.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result_json, generated_at, expires_at, quality, access_count
		 FROM evidence_cache WHERE key = ?`, key)

	var resultJSON, generatedAt, expiresAt, quality string
	var accessCount int64
	if err := row.Scan(&resultJSON, &generatedAt, &expiresAt, &quality, &accessCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &types.CacheError{Op: "get", Err: err}
	}

	entry := &types.CacheEntry{
		Key:         key,
		Quality:     quality,
		AccessCount: accessCount,
	}
	if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
		return nil, &types.CacheError{Op: "get", Err: fmt.Errorf("decoding entry: %w", err)}
	}

	var err error
	if entry.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return nil, &types.CacheError{Op: "get", Err: err}
	}
	if entry.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, &types.CacheError{Op: "get", Err: err}
	}
	return entry, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, result types.RankingResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return &types.CacheError{Op: "put", Err: err}
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evidence_cache (key, result_json, generated_at, expires_at, quality, access_count)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT(key) DO UPDATE SET
			result_json = excluded.result_json,
			generated_at = excluded.generated_at,
			expires_at = excluded.expires_at,
			quality = excluded.quality`,
		key, string(resultJSON),
		now.Format(time.RFC3339), now.Add(ttl).Format(time.RFC3339),
		result.EvidenceGrade)
	if err != nil {
		return &types.CacheError{Op: "put", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE evidence_cache SET access_count = access_count + 1 WHERE key = ?`, key)
	if err != nil {
		return &types.CacheError{Op: "touch", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Invalidate(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE evidence_cache SET expires_at = ? WHERE key = ?`,
		s.now().Add(-time.Second).Format(time.RFC3339), key)
	if err != nil {
		return &types.CacheError{Op: "invalidate", Err: err}
	}
	return nil
}

// StoreStats summarizes the persistent tier for the cache CLI.
type StoreStats struct {
	Entries   int   `json:"entries"`
	Expired   int   `json:"expired"`
	TotalHits int64 `json:"total_hits"`
}

// Stats reports entry counts and accumulated hits.
func (s *SQLiteStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(access_count), 0)
		 FROM evidence_cache`,
		s.now().Format(time.RFC3339))
	if err := row.Scan(&stats.Entries, &stats.Expired, &stats.TotalHits); err != nil {
		return StoreStats{}, &types.CacheError{Op: "stats", Err: err}
	}
	return stats, nil
}
