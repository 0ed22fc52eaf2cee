package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the tunables of the detection engine, resolved from viper
// (config file, environment, flags) with design defaults.
type Settings struct {
	DatabasePath        string
	ListenAddr          string
	OwnerDomains        []string
	ScoreThreshold      int
	DebounceInterval    time.Duration
	WatcherTimeout      time.Duration
	WatcherPollInterval time.Duration
	AnalysisCacheTTL    time.Duration
}

// SetDefaults registers the default values on viper. Call once at startup
// before reading settings.
func SetDefaults() {
	viper.SetDefault("database.path", "~/.local/share/pursewatch/pursewatch.db")
	viper.SetDefault("server.listen", "127.0.0.1:8321")
	viper.SetDefault("engine.score_threshold", 15)
	viper.SetDefault("engine.debounce_interval", "300ms")
	viper.SetDefault("engine.watcher_timeout", "60s")
	viper.SetDefault("engine.watcher_poll_interval", "2s")
	viper.SetDefault("engine.analysis_cache_ttl", "5m")
	viper.SetDefault("engine.owner_domains", []string{})
}

// LoadSettings resolves the engine settings from viper.
func LoadSettings() Settings {
	return Settings{
		DatabasePath:        ExpandPath(viper.GetString("database.path")),
		ListenAddr:          viper.GetString("server.listen"),
		OwnerDomains:        viper.GetStringSlice("engine.owner_domains"),
		ScoreThreshold:      viper.GetInt("engine.score_threshold"),
		DebounceInterval:    viper.GetDuration("engine.debounce_interval"),
		WatcherTimeout:      viper.GetDuration("engine.watcher_timeout"),
		WatcherPollInterval: viper.GetDuration("engine.watcher_poll_interval"),
		AnalysisCacheTTL:    viper.GetDuration("engine.analysis_cache_ttl"),
	}
}

// DefaultDatabasePath returns the resolved default database location.
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "pursewatch", "pursewatch.db"), nil
}
