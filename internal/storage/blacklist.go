package storage

import (
	"context"
	"fmt"
	"strings"
)

// GetBlacklist returns all blacklisted domain substrings.
func (s *SQLiteStorage) GetBlacklist(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT domain FROM blacklist ORDER BY domain")
	if err != nil {
		return nil, fmt.Errorf("failed to load blacklist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		domains = append(domains, domain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blacklist: %w", err)
	}
	return domains, nil
}

// AddBlacklistDomain records a domain substring to ignore. Domains are stored
// lowercased.
func (s *SQLiteStorage) AddBlacklistDomain(ctx context.Context, domain string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(domain, "domain"); err != nil {
		return err
	}

	normalized := strings.ToLower(strings.TrimSpace(domain))
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO blacklist (domain) VALUES (?)", normalized); err != nil {
		return fmt.Errorf("failed to add blacklist domain: %w", err)
	}
	return nil
}

// RemoveBlacklistDomain deletes a domain substring from the blacklist.
func (s *SQLiteStorage) RemoveBlacklistDomain(ctx context.Context, domain string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(domain, "domain"); err != nil {
		return err
	}

	normalized := strings.ToLower(strings.TrimSpace(domain))
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM blacklist WHERE domain = ?", normalized); err != nil {
		return fmt.Errorf("failed to remove blacklist domain: %w", err)
	}
	return nil
}
