package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Blob is an opaque byte buffer plus the tag recorded when it was written. The audio
// cache stores the hash of the source text in Tag.
type Blob struct {
	Data []byte
	Tag  string
}

// Blobs stores binary objects by string key.
type Blobs struct {
	conn *sql.DB
}

// Get returns the blob stored under key. It reports false when the key is absent.
func (s *Blobs) Get(ctx context.Context, key string) (Blob, bool, error) {
	var b Blob
	err := s.conn.QueryRowContext(ctx, `SELECT data, tag FROM blobs WHERE key = ?`, key).Scan(&b.Data, &b.Tag)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, false, nil
	}
	if err != nil {
		return Blob{}, false, fmt.Errorf("failed to read blob %q: %w", key, err)
	}
	return b, true, nil
}

// Put stores data under key, replacing any previous blob.
func (s *Blobs) Put(ctx context.Context, key string, data []byte, tag string) error {
	_, err := s.conn.ExecContext(ctx, `
        INSERT INTO blobs (key, data, tag, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET data = excluded.data, tag = excluded.tag, updated_at = excluded.updated_at`,
		key, data, tag)
	if err != nil {
		return fmt.Errorf("failed to write blob %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Blobs) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}

// Clear removes every blob.
func (s *Blobs) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM blobs`); err != nil {
		return fmt.Errorf("failed to clear blobs: %w", err)
	}
	return nil
}
