package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Auth     AuthConfig     `toml:"auth"`
	Playlist PlaylistConfig `toml:"playlist"`
	Settings SettingsConfig `toml:"settings"`
	Pacing   PacingConfig   `toml:"pacing"`
	Retry    RetryConfig    `toml:"retry"`
	Logging  LoggingConfig  `toml:"logging"`
	API      APIConfig      `toml:"api"`
}

// AuthConfig controls how a session is obtained and cached.
type AuthConfig struct {
	LoginMethod string `toml:"login_method"`
	Phone       string `toml:"phone"`
	CacheFile   string `toml:"cache_file"`
	OpenBrowser bool   `toml:"open_browser"`
}

// PlaylistConfig identifies the target VIP playlist.
type PlaylistConfig struct {
	VIPPlaylistID   int64  `toml:"vip_playlist_id"`
	VIPPlaylistName string `toml:"vip_playlist_name"`
}

// SettingsConfig contains run-level switches and mutation pacing baselines.
type SettingsConfig struct {
	DryRun       bool    `toml:"dry_run"`
	RequestDelay float64 `toml:"request_delay"`
	BatchSize    int     `toml:"batch_size"`
}

// PacingConfig carries the adaptive rate-limit controller's tunables.
//
// The defaults were tuned empirically against one provider's throttling
// behavior; they are configuration, not fixed law.
type PacingConfig struct {
	MaxDelay          float64 `toml:"max_delay"`
	BackoffStep       float64 `toml:"backoff_step"`
	AddBackoffCap     int     `toml:"add_backoff_cap"`
	UnlikeBackoffCap  int     `toml:"unlike_backoff_cap"`
	FinalBackoffCap   int     `toml:"final_backoff_cap"`
	RecoveryThreshold int     `toml:"recovery_threshold"`
	RecoveryFactor    float64 `toml:"recovery_factor"`
	MaxAttempts       int     `toml:"max_attempts"`
}

// RetryConfig parameterizes the generic retry wrapper for remote reads.
type RetryConfig struct {
	MaxAttempts   int     `toml:"max_attempts"`
	Delay         float64 `toml:"delay"`
	BackoffFactor float64 `toml:"backoff_factor"`
}

// LoggingConfig contains log level and file output settings.
type LoggingConfig struct {
	Level      string `toml:"level"`
	SaveToFile bool   `toml:"save_to_file"`
}

// APIConfig contains remote service client settings.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	Timeout   int     `toml:"timeout"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with the built-in defaults from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
