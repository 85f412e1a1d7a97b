package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// CacheDirName is the directory created under [os.TempDir] when no cache dir is configured.
const CacheDirName = "phono"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Player   PlayerConfig   `toml:"player"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CacheConfig controls the remote media cache and the fetcher feeding it.
type CacheConfig struct {
	Dir                 string  `toml:"dir"`
	FetchTimeoutSeconds int     `toml:"fetch_timeout_seconds"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
	Workers             int     `toml:"workers"`
	HeadersFile         string  `toml:"headers_file"` // saved cURL command whose headers go with every request
}

// PlayerConfig contains audio output settings.
type PlayerConfig struct {
	SampleRate         int  `toml:"sample_rate"`
	BufferMS           int  `toml:"buffer_ms"`
	ProgressIntervalMS int  `toml:"progress_interval_ms"`
	Volume             int  `toml:"volume"` // percent, 0 mutes
	Shuffle            bool `toml:"shuffle"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// CacheDir returns the configured cache directory or <temp-dir>/phono.
func (c CacheConfig) CacheDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(os.TempDir(), CacheDirName)
}

// FetchTimeout returns the per-request timeout for remote media.
func (c CacheConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// BufferSize returns the output buffer length as a duration.
func (p PlayerConfig) BufferSize() time.Duration {
	return time.Duration(p.BufferMS) * time.Millisecond
}

// ProgressInterval returns how often progress is reported while playing.
func (p PlayerConfig) ProgressInterval() time.Duration {
	return time.Duration(p.ProgressIntervalMS) * time.Millisecond
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	case c.Cache.FetchTimeoutSeconds < 0:
		return fmt.Errorf("%w: cache.fetch_timeout_seconds must not be negative", ErrInvalidConfig)
	case c.Cache.RequestsPerSecond < 0:
		return fmt.Errorf("%w: cache.requests_per_second must not be negative", ErrInvalidConfig)
	case c.Cache.Workers < 1:
		return fmt.Errorf("%w: cache.workers must be at least 1", ErrInvalidConfig)
	case c.Player.SampleRate <= 0:
		return fmt.Errorf("%w: player.sample_rate must be positive", ErrInvalidConfig)
	case c.Player.BufferMS <= 0:
		return fmt.Errorf("%w: player.buffer_ms must be positive", ErrInvalidConfig)
	case c.Player.ProgressIntervalMS <= 0:
		return fmt.Errorf("%w: player.progress_interval_ms must be positive", ErrInvalidConfig)
	case c.Player.Volume < 0 || c.Player.Volume > 100:
		return fmt.Errorf("%w: player.volume must be between 0 and 100", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a TOML configuration file from path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path, refusing to overwrite.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
