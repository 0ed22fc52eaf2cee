package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pursewatch-dev/pursewatch/internal/service"
)

type stubStorage struct {
	service.Storage
	blacklist []string
	err       error
}

func (s *stubStorage) GetBlacklist(context.Context) ([]string, error) {
	return s.blacklist, s.err
}

func TestStoreMatching(t *testing.T) {
	store := NewStaticStore(
		[]string{"tracker.example", "ads."},
		[]string{"pursewatch.dev"},
	)

	tests := []struct {
		name     string
		hostname string
		want     bool
	}{
		{name: "exact blacklist entry", hostname: "tracker.example", want: true},
		{name: "subdomain contains entry", hostname: "cdn.tracker.example", want: true},
		{name: "substring entry matches", hostname: "ads.somewhere.net", want: true},
		{name: "owner domain ignored", hostname: "app.pursewatch.dev", want: true},
		{name: "case insensitive", hostname: "TRACKER.EXAMPLE", want: true},
		{name: "unrelated host passes", hostname: "shop.example.com", want: false},
		{name: "empty host passes", hostname: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.ShouldIgnore(tt.hostname))
		})
	}
}

func TestNewStoreLoadsBlacklist(t *testing.T) {
	storage := &stubStorage{blacklist: []string{"spam.example"}}
	store := NewStore(context.Background(), storage, []string{" PurseWatch.dev ", ""})

	assert.True(t, store.IsBlacklisted("spam.example"))
	assert.True(t, store.IsOwnerDomain("api.pursewatch.dev"), "owner domains normalized")
	assert.False(t, store.IsOwnerDomain("other.example"))
}

func TestNewStoreDegradesOnStorageError(t *testing.T) {
	storage := &stubStorage{err: errors.New("disk on fire")}
	store := NewStore(context.Background(), storage, nil)

	// A broken blacklist never blocks tracking.
	assert.False(t, store.ShouldIgnore("anything.example"))
}
