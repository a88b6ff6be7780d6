package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// YouTube contains configuration for the upload source.
type YouTube struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	FeedURL         string `toml:"feed_url"`
	Source          string `toml:"source"`              // "api" or "feed"
	PageSize        int    `toml:"page_size"`           // playlistItems maxResults
	RequestTimeout  int    `toml:"request_timeout"`     // seconds
	ShortMaxSeconds int    `toml:"short_max_seconds"`   // uploads at or below this length are shorts
	ProbeDurations  bool   `toml:"probe_durations"`     // feed source: read lengths from watch pages
	MaxProbes       int    `toml:"max_duration_probes"` // per run; 0 means no limit
}

// Channel names one upload channel. Label is what the catalogue stores;
// Handle is either an @handle or a UC... channel id.
type Channel struct {
	Label  string `toml:"label"`
	Handle string `toml:"handle"`
}

// Ranking contains configuration for the roster/ranking source.
type Ranking struct {
	TeamsURL       string `toml:"teams_url"`
	SearchURL      string `toml:"search_url"`
	Format         string `toml:"format"` // "json" or "html"
	TopTeams       int    `toml:"top_teams"`
	RequestTimeout int    `toml:"request_timeout"` // seconds
	UserAgent      string `toml:"user_agent"`
}

// Whitelist contains configuration for the whitelist snapshot cache.
type Whitelist struct {
	Backend       string `toml:"backend"` // "file" or "redis"
	Path          string `toml:"path"`
	TTLHours      int    `toml:"ttl_hours"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisKey      string `toml:"redis_key"`
}

// Resolver contains configuration for title-to-player resolution.
type Resolver struct {
	Mode           string   `toml:"mode"` // "whitelist" or "lookup"
	ExtraStopwords []string `toml:"extra_stopwords"`
	LookupTimeout  int      `toml:"lookup_timeout"` // seconds per confirmation call
}

// Gate contains the popularity window and promotion policy.
type Gate struct {
	HorizonDays int    `toml:"horizon_days"`
	Threshold   int    `toml:"threshold"`
	Policy      string `toml:"policy"` // "hard" or "soft"
}

// Catalogue contains configuration for the output catalogue.
type Catalogue struct {
	Mode     string `toml:"mode"`    // "incremental" or "rebuild"
	Backend  string `toml:"backend"` // "file" or "s3"
	Path     string `toml:"path"`
	S3Bucket string `toml:"s3_bucket"`
	S3Key    string `toml:"s3_key"`
	S3Region string `toml:"s3_region"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains the ntfy run notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`      // full topic URL; empty disables
	RequestTimeout int    `toml:"request_timeout"` // seconds
	NotifySuccess  bool   `toml:"notify_success"`  // also notify healthy runs
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for povcat.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - YouTube: upload source, credentials, and short-form cutoff
//   - Channels: the upload channels to scan
//   - Ranking: roster/ranking source used to build the whitelist
//   - Whitelist: snapshot cache backend and freshness
//   - Resolver: title resolution mode and stopwords
//   - Gate: trailing window, promotion threshold, suppression policy
//   - Catalogue: output mode and backend
//   - History: sqlite run ledger
//   - Notifications: ntfy run notifications
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Channels      []Channel     `toml:"channels"`
	Ranking       Ranking       `toml:"ranking"`
	Whitelist     Whitelist     `toml:"whitelist"`
	Resolver      Resolver      `toml:"resolver"`
	Gate          Gate          `toml:"gate"`
	Catalogue     Catalogue     `toml:"catalogue"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied. A missing file is not an
// error; defaults are used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Array tables append to a populated slice; normalize restores the
		// defaults when the file lists no channels.
		cfg.Channels = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("povcat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the file used to keep pipeline runs exclusive.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "povcat.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
