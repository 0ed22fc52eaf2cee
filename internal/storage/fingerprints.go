package storage

import (
	"context"
	"fmt"

	"github.com/pursewatch-dev/pursewatch/internal/service"
)

// MaxFingerprints bounds the persisted dedup list. Inserts trim the oldest
// entries first; the access pattern is write-once-check-once, so a simple
// FIFO bound suffices.
const MaxFingerprints = 100

// IsDuplicate reports whether the fingerprint is already recorded.
func (s *SQLiteStorage) IsDuplicate(ctx context.Context, fingerprint string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fingerprints WHERE fingerprint = ?", fingerprint).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return count > 0, nil
}

// MarkSaved records a fingerprint and trims the list to the most recent
// MaxFingerprints entries in the same statement batch.
func (s *SQLiteStorage) MarkSaved(ctx context.Context, fingerprint string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO fingerprints (fingerprint) VALUES (?)", fingerprint); err != nil {
		return fmt.Errorf("failed to insert fingerprint: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM fingerprints WHERE id NOT IN (
			SELECT id FROM fingerprints ORDER BY id DESC LIMIT ?
		)`, MaxFingerprints); err != nil {
		return fmt.Errorf("failed to trim fingerprints: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fingerprint: %w", err)
	}
	return nil
}

// ListFingerprints returns all recorded fingerprints, newest first.
func (s *SQLiteStorage) ListFingerprints(ctx context.Context) ([]service.FingerprintEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT fingerprint, created_at FROM fingerprints ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []service.FingerprintEntry
	for rows.Next() {
		var entry service.FingerprintEntry
		if err := rows.Scan(&entry.Fingerprint, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fingerprints: %w", err)
	}
	return entries, nil
}

// ClearFingerprints removes every recorded fingerprint.
func (s *SQLiteStorage) ClearFingerprints(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fingerprints"); err != nil {
		return fmt.Errorf("failed to clear fingerprints: %w", err)
	}
	return nil
}
