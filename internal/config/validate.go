package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when the API upload source is selected without a credential.
var ErrMissingAPIKey = errors.New("youtube.api_key is required when youtube.source is \"api\"; set YT_API_KEY or switch to source = \"feed\"")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateWhitelist(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	if err := c.validateCatalogue(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireCredentials reports whether the configured upload source has what it needs to
// run. Only commands that enumerate uploads call it.
func (c *Config) RequireCredentials() error {
	if c.YouTube.Source == SourceAPI && strings.TrimSpace(c.YouTube.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	switch c.YouTube.Source {
	case SourceAPI, SourceFeed:
	default:
		return fmt.Errorf("youtube.source: unsupported value %q (want %q or %q)", c.YouTube.Source, SourceAPI, SourceFeed)
	}
	return nil
}

func (c *Config) validateChannels() error {
	seen := make(map[string]struct{}, len(c.Channels))
	for i, channel := range c.Channels {
		if channel.Label == "" {
			return fmt.Errorf("channels[%d].label must be set", i)
		}
		if channel.Handle == "" {
			return fmt.Errorf("channels[%d].handle must be set", i)
		}
		if _, dup := seen[channel.Label]; dup {
			return fmt.Errorf("channels[%d].label %q is duplicated", i, channel.Label)
		}
		seen[channel.Label] = struct{}{}
	}
	return nil
}

func (c *Config) validateRanking() error {
	switch c.Ranking.Format {
	case RankingFormatJSON, RankingFormatHTML:
	default:
		return fmt.Errorf("ranking.format: unsupported value %q (want %q or %q)", c.Ranking.Format, RankingFormatJSON, RankingFormatHTML)
	}
	return nil
}

func (c *Config) validateWhitelist() error {
	switch c.Whitelist.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Whitelist.Path) == "" {
			return errors.New("whitelist.path must be set for the file backend")
		}
	case BackendRedis:
		if c.Whitelist.RedisAddr == "" {
			return errors.New("whitelist.redis_addr must be set for the redis backend (or POVCAT_REDIS_ADDR)")
		}
	default:
		return fmt.Errorf("whitelist.backend: unsupported value %q (want %q or %q)", c.Whitelist.Backend, BackendFile, BackendRedis)
	}
	return nil
}

func (c *Config) validateResolver() error {
	switch c.Resolver.Mode {
	case ResolverWhitelist:
	case ResolverLookup:
		if c.Ranking.SearchURL == "" {
			return errors.New("ranking.search_url must be set when resolver.mode is \"lookup\"")
		}
	default:
		return fmt.Errorf("resolver.mode: unsupported value %q (want %q or %q)", c.Resolver.Mode, ResolverWhitelist, ResolverLookup)
	}
	return nil
}

func (c *Config) validateGate() error {
	if c.Gate.Threshold <= 0 {
		return fmt.Errorf("gate.threshold must be positive (got %d)", c.Gate.Threshold)
	}
	if c.Gate.HorizonDays <= 0 {
		return fmt.Errorf("gate.horizon_days must be positive (got %d)", c.Gate.HorizonDays)
	}
	switch c.Gate.Policy {
	case PolicyHard, PolicySoft:
	default:
		return fmt.Errorf("gate.policy: unsupported value %q (want %q or %q)", c.Gate.Policy, PolicyHard, PolicySoft)
	}
	return nil
}

func (c *Config) validateCatalogue() error {
	switch c.Catalogue.Mode {
	case ModeIncremental, ModeRebuild:
	default:
		return fmt.Errorf("catalogue.mode: unsupported value %q (want %q or %q)", c.Catalogue.Mode, ModeIncremental, ModeRebuild)
	}
	switch c.Catalogue.Backend {
	case BackendFile:
	case BackendS3:
		if c.Catalogue.S3Bucket == "" {
			return errors.New("catalogue.s3_bucket must be set for the s3 backend (or POVCAT_S3_BUCKET)")
		}
	default:
		return fmt.Errorf("catalogue.backend: unsupported value %q (want %q or %q)", c.Catalogue.Backend, BackendFile, BackendS3)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
