package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pursewatch-dev/pursewatch/internal/common"
	"github.com/pursewatch-dev/pursewatch/internal/config"
	"github.com/pursewatch-dev/pursewatch/internal/page"
	"github.com/pursewatch-dev/pursewatch/internal/service"
	"github.com/pursewatch-dev/pursewatch/internal/storage"
)

// initStorage opens the SQLite store at the configured path and applies
// migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	settings := config.LoadSettings()

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadSnapshot reads a page snapshot from a local HTML file or fetches it
// over HTTP when the argument looks like a URL.
func loadSnapshot(ctx context.Context, target string) (*page.Snapshot, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return fetchSnapshot(ctx, target)
	}

	data, err := os.ReadFile(config.ExpandPath(target))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not read snapshot file %s", target), err)
	}
	return page.NewSnapshot("file://"+target, "", string(data))
}

func fetchSnapshot(ctx context.Context, rawURL string) (*page.Snapshot, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "pursewatch/"+version)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}

	return page.NewSnapshot(rawURL, "", string(body))
}
