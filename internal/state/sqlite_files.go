package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

// GetFile returns the cached entry for path, or nil when none exists.
func (s *SQLiteStore) GetFile(ctx context.Context, path string) (*FileEntry, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	entry := &FileEntry{Path: path}
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash, records, updated_at FROM files WHERE path = ?`, path,
	).Scan(&entry.ContentHash, &raw, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}

	if err := json.Unmarshal([]byte(raw), &entry.Records); err != nil {
		return nil, fmt.Errorf("failed to decode records for %s: %w", path, err)
	}
	return entry, nil
}

// SaveFile inserts or replaces the cached entry for a file.
func (s *SQLiteStore) SaveFile(ctx context.Context, entry *FileEntry) error {
	if s.db == nil {
		return errNotOpened
	}

	records := entry.Records
	if records == nil {
		records = []modgraph.DependencyRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records for %s: %w", entry.Path, err)
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO files (path, content_hash, records, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   records = excluded.records,
		   updated_at = excluded.updated_at`,
		entry.Path, entry.ContentHash, string(raw), entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save file %s: %w", entry.Path, err)
	}
	return nil
}

// DeleteFile removes the cached entry for path. Missing entries are not an error.
func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	if s.db == nil {
		return errNotOpened
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// DeleteFiles removes several entries in one transaction.
func (s *SQLiteStore) DeleteFiles(ctx context.Context, paths []string) error {
	if s.db == nil {
		return errNotOpened
	}
	if len(paths) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range paths {
			if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, p); err != nil {
				return fmt.Errorf("failed to delete file %s: %w", p, err)
			}
		}
		return nil
	})
}

// ListFilePaths returns every cached path, sorted.
func (s *SQLiteStore) ListFilePaths(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
