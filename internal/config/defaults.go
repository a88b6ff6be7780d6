package config

import "time"

const (
	defaultConfigPath          = "~/.config/povcat/config.toml"
	defaultStateDir            = "~/.local/share/povcat"
	defaultLogDir              = "~/.local/share/povcat/logs"
	defaultYouTubeBaseURL      = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeFeedURL      = "https://www.youtube.com/feeds/videos.xml"
	defaultYouTubeSource       = SourceAPI
	defaultYouTubePageSize     = 50
	defaultYouTubeTimeout      = 15
	defaultShortMaxSeconds     = 60
	defaultMaxDurationProbes   = 200
	defaultRankingTeamsURL     = "https://www.hltv.org/ranking/teams"
	defaultRankingFormat       = RankingFormatHTML
	defaultRankingTopTeams     = 30
	defaultRankingTimeout      = 10
	defaultRankingUserAgent    = "povcat/dev"
	defaultWhitelistBackend    = BackendFile
	defaultWhitelistFile       = "whitelist.json"
	defaultWhitelistTTLHours   = 24
	defaultWhitelistRedisKey   = "povcat:whitelist"
	defaultResolverMode        = ResolverWhitelist
	defaultLookupTimeout       = 2
	defaultHorizonDays         = 18 * 30
	defaultThreshold           = 5
	defaultGatePolicy          = PolicyHard
	defaultCatalogueMode       = ModeIncremental
	defaultCatalogueBackend    = BackendFile
	defaultCataloguePath       = "data/videos.json"
	defaultCatalogueS3Key      = "videos.json"
	defaultHistoryFile         = "history.db"
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultYouTubeCredentialEV = "YT_API_KEY"
)

// Enumerated option values accepted by the configuration.
const (
	SourceAPI  = "api"
	SourceFeed = "feed"

	RankingFormatJSON = "json"
	RankingFormatHTML = "html"

	BackendFile  = "file"
	BackendRedis = "redis"
	BackendS3    = "s3"

	ResolverWhitelist = "whitelist"
	ResolverLookup    = "lookup"

	PolicyHard = "hard"
	PolicySoft = "soft"

	ModeIncremental = "incremental"
	ModeRebuild     = "rebuild"
)

// DefaultChannels are the POV channels scanned when none are configured.
func DefaultChannels() []Channel {
	return []Channel{
		{Label: "lim", Handle: "@lim-csgopov"},
		{Label: "pov_highlights", Handle: "@CSGOPOVDemosHighlights"},
		{Label: "nebula", Handle: "@NebulaCS2"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:         defaultYouTubeBaseURL,
			FeedURL:         defaultYouTubeFeedURL,
			Source:          defaultYouTubeSource,
			PageSize:        defaultYouTubePageSize,
			RequestTimeout:  defaultYouTubeTimeout,
			ShortMaxSeconds: defaultShortMaxSeconds,
			MaxProbes:       defaultMaxDurationProbes,
		},
		Channels: DefaultChannels(),
		Ranking: Ranking{
			TeamsURL:       defaultRankingTeamsURL,
			Format:         defaultRankingFormat,
			TopTeams:       defaultRankingTopTeams,
			RequestTimeout: defaultRankingTimeout,
			UserAgent:      defaultRankingUserAgent,
		},
		Whitelist: Whitelist{
			Backend:  defaultWhitelistBackend,
			TTLHours: defaultWhitelistTTLHours,
			RedisKey: defaultWhitelistRedisKey,
		},
		Resolver: Resolver{
			Mode:          defaultResolverMode,
			LookupTimeout: defaultLookupTimeout,
		},
		Gate: Gate{
			HorizonDays: defaultHorizonDays,
			Threshold:   defaultThreshold,
			Policy:      defaultGatePolicy,
		},
		Catalogue: Catalogue{
			Mode:    defaultCatalogueMode,
			Backend: defaultCatalogueBackend,
			Path:    defaultCataloguePath,
			S3Key:   defaultCatalogueS3Key,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// Horizon returns the trailing window length.
func (g Gate) Horizon() time.Duration {
	return time.Duration(g.HorizonDays) * 24 * time.Hour
}

// TTL returns the whitelist freshness window.
func (w Whitelist) TTL() time.Duration {
	return time.Duration(w.TTLHours) * time.Hour
}

// Timeout returns the per-request timeout for upload source calls.
func (y YouTube) Timeout() time.Duration {
	return time.Duration(y.RequestTimeout) * time.Second
}

// Timeout returns the per-request timeout for ranking calls.
func (r Ranking) Timeout() time.Duration {
	return time.Duration(r.RequestTimeout) * time.Second
}
