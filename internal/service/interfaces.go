// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"
)

// FingerprintEntry is one persisted dedup-cache entry.
type FingerprintEntry struct {
	CreatedAt   time.Time
	Fingerprint string
}

// Storage defines the contract for the persistence layer: the bounded
// fingerprint dedup list and the user-maintained blacklist. Writes are
// append/trim-only with last-write-wins semantics; collisions with companion
// surfaces cost at most one duplicate report, never corruption.
type Storage interface {
	// Fingerprint dedup operations
	IsDuplicate(ctx context.Context, fingerprint string) (bool, error)
	MarkSaved(ctx context.Context, fingerprint string) error
	ListFingerprints(ctx context.Context) ([]FingerprintEntry, error)
	ClearFingerprints(ctx context.Context) error

	// Blacklist operations
	GetBlacklist(ctx context.Context) ([]string, error)
	AddBlacklistDomain(ctx context.Context, domain string) error
	RemoveBlacklistDomain(ctx context.Context, domain string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
