package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeChannels()
	c.normalizeRanking()
	if err := c.normalizeWhitelist(); err != nil {
		return err
	}
	c.normalizeResolver()
	if err := c.normalizeGate(); err != nil {
		return err
	}
	if err := c.normalizeCatalogue(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	if value, ok := lookupEnv(defaultYouTubeCredentialEV); ok {
		c.YouTube.APIKey = value
	}
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	c.YouTube.Source = strings.ToLower(strings.TrimSpace(c.YouTube.Source))
	if c.YouTube.Source == "" {
		c.YouTube.Source = defaultYouTubeSource
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	c.YouTube.FeedURL = strings.TrimSpace(c.YouTube.FeedURL)
	if c.YouTube.FeedURL == "" {
		c.YouTube.FeedURL = defaultYouTubeFeedURL
	}
	if c.YouTube.PageSize <= 0 || c.YouTube.PageSize > 50 {
		c.YouTube.PageSize = defaultYouTubePageSize
	}
	if c.YouTube.RequestTimeout <= 0 {
		c.YouTube.RequestTimeout = defaultYouTubeTimeout
	}
	if c.YouTube.ShortMaxSeconds < 0 {
		c.YouTube.ShortMaxSeconds = defaultShortMaxSeconds
	}
	if c.YouTube.MaxProbes < 0 {
		c.YouTube.MaxProbes = 0
	}
}

func (c *Config) normalizeChannels() {
	if len(c.Channels) == 0 {
		c.Channels = DefaultChannels()
		return
	}
	for i := range c.Channels {
		c.Channels[i].Label = strings.TrimSpace(c.Channels[i].Label)
		c.Channels[i].Handle = strings.TrimSpace(c.Channels[i].Handle)
	}
}

func (c *Config) normalizeRanking() {
	c.Ranking.Format = strings.ToLower(strings.TrimSpace(c.Ranking.Format))
	if c.Ranking.Format == "" {
		c.Ranking.Format = defaultRankingFormat
	}
	c.Ranking.TeamsURL = strings.TrimSpace(c.Ranking.TeamsURL)
	if c.Ranking.TeamsURL == "" {
		c.Ranking.TeamsURL = defaultRankingTeamsURL
	}
	c.Ranking.SearchURL = strings.TrimSpace(c.Ranking.SearchURL)
	if c.Ranking.TopTeams <= 0 {
		c.Ranking.TopTeams = defaultRankingTopTeams
	}
	if c.Ranking.RequestTimeout <= 0 {
		c.Ranking.RequestTimeout = defaultRankingTimeout
	}
	c.Ranking.UserAgent = strings.TrimSpace(c.Ranking.UserAgent)
	if c.Ranking.UserAgent == "" {
		c.Ranking.UserAgent = defaultRankingUserAgent
	}
}

func (c *Config) normalizeWhitelist() error {
	c.Whitelist.Backend = strings.ToLower(strings.TrimSpace(c.Whitelist.Backend))
	if c.Whitelist.Backend == "" {
		c.Whitelist.Backend = defaultWhitelistBackend
	}
	if value, ok := lookupEnv("POVCAT_REDIS_ADDR"); ok {
		c.Whitelist.RedisAddr = value
	}
	c.Whitelist.RedisAddr = strings.TrimSpace(c.Whitelist.RedisAddr)
	if strings.TrimSpace(c.Whitelist.RedisKey) == "" {
		c.Whitelist.RedisKey = defaultWhitelistRedisKey
	}
	if c.Whitelist.TTLHours < 0 {
		c.Whitelist.TTLHours = 0
	}
	if strings.TrimSpace(c.Whitelist.Path) == "" {
		c.Whitelist.Path = filepath.Join(c.Paths.StateDir, defaultWhitelistFile)
		return nil
	}
	var err error
	if c.Whitelist.Path, err = expandPath(c.Whitelist.Path); err != nil {
		return fmt.Errorf("whitelist.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeResolver() {
	c.Resolver.Mode = strings.ToLower(strings.TrimSpace(c.Resolver.Mode))
	if c.Resolver.Mode == "" {
		c.Resolver.Mode = defaultResolverMode
	}
	cleaned := c.Resolver.ExtraStopwords[:0]
	for _, word := range c.Resolver.ExtraStopwords {
		if word = strings.TrimSpace(word); word != "" {
			cleaned = append(cleaned, word)
		}
	}
	c.Resolver.ExtraStopwords = cleaned
	if c.Resolver.LookupTimeout <= 0 {
		c.Resolver.LookupTimeout = defaultLookupTimeout
	}
}

func (c *Config) normalizeGate() error {
	if value, ok := lookupEnv("POVCAT_THRESHOLD"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("POVCAT_THRESHOLD: %q is not an integer", value)
		}
		c.Gate.Threshold = parsed
	}
	if value, ok := lookupEnv("POVCAT_HORIZON_DAYS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("POVCAT_HORIZON_DAYS: %q is not an integer", value)
		}
		c.Gate.HorizonDays = parsed
	}
	c.Gate.Policy = strings.ToLower(strings.TrimSpace(c.Gate.Policy))
	if c.Gate.Policy == "" {
		c.Gate.Policy = defaultGatePolicy
	}
	return nil
}

func (c *Config) normalizeCatalogue() error {
	c.Catalogue.Mode = strings.ToLower(strings.TrimSpace(c.Catalogue.Mode))
	if c.Catalogue.Mode == "" {
		c.Catalogue.Mode = defaultCatalogueMode
	}
	c.Catalogue.Backend = strings.ToLower(strings.TrimSpace(c.Catalogue.Backend))
	if c.Catalogue.Backend == "" {
		c.Catalogue.Backend = defaultCatalogueBackend
	}
	if value, ok := lookupEnv("POVCAT_CATALOGUE_PATH"); ok {
		c.Catalogue.Path = value
	}
	if value, ok := lookupEnv("POVCAT_S3_BUCKET"); ok {
		c.Catalogue.S3Bucket = value
	}
	c.Catalogue.S3Bucket = strings.TrimSpace(c.Catalogue.S3Bucket)
	c.Catalogue.S3Key = strings.TrimLeft(strings.TrimSpace(c.Catalogue.S3Key), "/")
	if c.Catalogue.S3Key == "" {
		c.Catalogue.S3Key = defaultCatalogueS3Key
	}
	c.Catalogue.S3Region = strings.TrimSpace(c.Catalogue.S3Region)
	if strings.TrimSpace(c.Catalogue.Path) == "" {
		c.Catalogue.Path = defaultCataloguePath
	}
	var err error
	if c.Catalogue.Path, err = expandPath(c.Catalogue.Path); err != nil {
		return fmt.Errorf("catalogue.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	if topic, ok := lookupEnv("POVCAT_NTFY_TOPIC"); ok {
		c.Notifications.NtfyTopic = topic
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// lookupEnv returns a trimmed, non-empty environment value.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
