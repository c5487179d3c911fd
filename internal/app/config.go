package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Search
	SearxURL       string
	SearxKey       string
	SearxUA        string
	GoogleAPIKey   string
	GoogleCX       string
	HTMLSearchURL  string
	FileSearchPath string

	// LLM, used for query suggestions only
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Notion export
	NotionToken      string
	NotionDatabaseID string
	NotionBaseURL    string

	// Selection. MaxResults applies per search page.
	MaxResults      int
	PerDomainCap    int
	MinSnippetChars int
	PerSourceChars  int
	DomainAllowlist []string
	DomainDenylist  []string

	// Summaries
	Depth         int
	Complexity    int
	CitationStyle string

	// Fetching
	EnablePDF        bool
	IgnoreRobots     bool
	FetchConcurrency int
	FetchTimeout     time.Duration

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxCount    int

	// Storage and server
	DBPath         string
	Addr           string
	RateAnon       float64 // requests per minute
	RateUser       float64 // requests per minute
	AnonDailyQuota int

	Verbose bool
}

// Defaults applied by DefaultConfig and recognized by ApplyFileConfig as
// "not set by a flag".
const (
	defaultSearxUA          = "gosummarize/1.0 (+https://github.com/hyperifyio/gosummarize)"
	defaultMaxResults       = 10
	defaultPerDomainCap     = 3
	defaultPerSourceChars   = 20000
	defaultFetchConcurrency = 6
	defaultFetchTimeout     = 15 * time.Second
	defaultCacheDir         = ".gosummarize-cache"
	defaultDBPath           = "gosummarize.db"
	defaultAddr             = ":8080"
	defaultRateAnon         = 10
	defaultRateUser         = 60
	defaultAnonDailyQuota   = 50
	defaultCitationStyle    = "APA"
)

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		SearxUA:          defaultSearxUA,
		MaxResults:       defaultMaxResults,
		PerDomainCap:     defaultPerDomainCap,
		PerSourceChars:   defaultPerSourceChars,
		Depth:            3,
		Complexity:       3,
		CitationStyle:    defaultCitationStyle,
		FetchConcurrency: defaultFetchConcurrency,
		FetchTimeout:     defaultFetchTimeout,
		CacheDir:         defaultCacheDir,
		DBPath:           defaultDBPath,
		Addr:             defaultAddr,
		RateAnon:         defaultRateAnon,
		RateUser:         defaultRateUser,
		AnonDailyQuota:   defaultAnonDailyQuota,
	}
}
