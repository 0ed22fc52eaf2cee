package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pursewatch-dev/pursewatch/internal/service"
)

// Store holds the user-maintained domain deny-list and the owner-domain
// exclusions. Both are loaded once at startup and consulted synchronously
// afterward; mutations happen through a separate settings surface and take
// effect on the next session.
type Store struct {
	blacklist    []string
	ownerDomains []string
}

// NewStore loads the blacklist from storage. A storage failure degrades to an
// empty list so tracking is never lost to a broken cache.
func NewStore(ctx context.Context, storage service.Storage, ownerDomains []string) *Store {
	blacklist, err := storage.GetBlacklist(ctx)
	if err != nil {
		slog.Warn("failed to load blacklist, continuing with empty list", "error", err)
		blacklist = nil
	}

	normalizedOwners := make([]string, 0, len(ownerDomains))
	for _, domain := range ownerDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalizedOwners = append(normalizedOwners, domain)
		}
	}

	return &Store{blacklist: blacklist, ownerDomains: normalizedOwners}
}

// NewStaticStore builds a store from fixed lists, for offline analysis and
// tests.
func NewStaticStore(blacklist, ownerDomains []string) *Store {
	return &Store{blacklist: blacklist, ownerDomains: ownerDomains}
}

// IsBlacklisted reports whether the hostname matches any deny-list entry by
// substring containment.
func (s *Store) IsBlacklisted(hostname string) bool {
	return containsSubstring(s.blacklist, hostname)
}

// IsOwnerDomain reports whether the hostname belongs to the product's own
// surfaces, which are never instrumented.
func (s *Store) IsOwnerDomain(hostname string) bool {
	return containsSubstring(s.ownerDomains, hostname)
}

// ShouldIgnore is the combined gate checked before any other work.
func (s *Store) ShouldIgnore(hostname string) bool {
	return s.IsBlacklisted(hostname) || s.IsOwnerDomain(hostname)
}

func containsSubstring(entries []string, hostname string) bool {
	host := strings.ToLower(hostname)
	if host == "" {
		return false
	}
	for _, entry := range entries {
		if entry != "" && strings.Contains(host, entry) {
			return true
		}
	}
	return false
}
