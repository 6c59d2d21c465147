package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	YouTube   YouTubeConfig             `toml:"youtube"`
	OAuth     OAuthConfig               `toml:"oauth"`
	Cache     CacheConfig               `toml:"cache"`
	Discovery DiscoveryConfig           `toml:"discovery"`
	Database  DatabaseConfig            `toml:"database"`
	Rules     RulesConfig               `toml:"rules"`
	Overrides map[string]ArtistOverride `toml:"overrides"`
}

// YouTubeConfig contains read-API credentials and request pacing settings.
type YouTubeConfig struct {
	APIKeys        []string `toml:"api_keys"`
	Region         string   `toml:"region"`
	SleepMS        int      `toml:"sleep_ms"`
	TimeoutSec     int      `toml:"timeout_sec"`
	MaxRetries     int      `toml:"max_retries"`
	BackoffBaseMS  int      `toml:"backoff_base_ms"`
	MutationSlowMS int      `toml:"mutation_sleep_ms"`
}

// OAuthConfig contains paths for the authorized (mutating) credential.
type OAuthConfig struct {
	ClientSecretsPath string `toml:"client_secrets_path"`
	TokenPath         string `toml:"token_path"`
}

// CacheConfig contains playlist snapshot cache settings.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	TTLHours int    `toml:"ttl_hours"`
}

// DiscoveryConfig contains discovery output and channel resolution settings.
type DiscoveryConfig struct {
	OutDir            string `toml:"out_dir"`
	MinChannelUploads int    `toml:"min_channel_uploads"`
	MaxAdditions      int    `toml:"max_additions"` // sync plan cap, 0 = unlimited
}

// DatabaseConfig contains run ledger database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RulesConfig contains classification thresholds and keyword lists.
// Empty keyword lists fall back to the built-in defaults in classify.
type RulesConfig struct {
	AcceptThreshold int      `toml:"accept_threshold"`
	RejectThreshold int      `toml:"reject_threshold"`
	MinDurationSec  int      `toml:"min_duration_sec"`
	MaxDurationSec  int      `toml:"max_duration_sec"`
	PositiveStrong  []string `toml:"positive_strong"`
	PositiveWeak    []string `toml:"positive_weak"`
	NegativeHard    []string `toml:"negative_hard"`
	NegativeSoft    []string `toml:"negative_soft"`
	BlockedChannels []string `toml:"blocked_channels"`
	AlwaysAllowed   []string `toml:"always_allowed"`
}

// ArtistOverride contains per-artist filter overrides from the roster config.
type ArtistOverride struct {
	ChannelID      string   `toml:"channel_id"`
	MaxYear        int      `toml:"max_year"`
	IgnoreKeywords []string `toml:"ignore_keywords"`
	AllowKeywords  []string `toml:"allow_keywords"`
}

// SleepInterval returns the configured delay enforced between read API calls.
func (c YouTubeConfig) SleepInterval() time.Duration {
	return time.Duration(c.SleepMS) * time.Millisecond
}

// MutationInterval returns the configured delay enforced between playlist mutations.
func (c YouTubeConfig) MutationInterval() time.Duration {
	return time.Duration(c.MutationSlowMS) * time.Millisecond
}

// BackoffBase returns the base delay for exponential retry backoff.
func (c YouTubeConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// CacheTTL returns the playlist snapshot time-to-live.
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
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

// ValidateConfig checks invariants that would corrupt a run if violated.
func ValidateConfig(c *Config) error {
	if len(c.YouTube.APIKeys) == 0 {
		return fmt.Errorf("%w: youtube.api_keys is empty", ErrMissingCredentials)
	}
	// Zero values fall back to built-in defaults, so only explicit
	// settings are checked against each other.
	if c.Rules.MaxDurationSec != 0 && c.Rules.MinDurationSec >= c.Rules.MaxDurationSec {
		return fmt.Errorf("%w: rules.min_duration_sec must be below rules.max_duration_sec", ErrInvalidConfig)
	}
	if c.Rules.AcceptThreshold != 0 && c.Rules.AcceptThreshold <= c.Rules.RejectThreshold {
		return fmt.Errorf("%w: rules.accept_threshold must exceed rules.reject_threshold", ErrInvalidConfig)
	}
	return nil
}
