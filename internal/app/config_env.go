package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envStrings names each string setting's environment variable.
func envStrings(cfg *Config) map[string]*string {
	return map[string]*string{
		"SEARX_URL":          &cfg.SearxURL,
		"SEARX_KEY":          &cfg.SearxKey,
		"SEARX_UA":           &cfg.SearxUA,
		"GOOGLE_API_KEY":     &cfg.GoogleAPIKey,
		"GOOGLE_CX":          &cfg.GoogleCX,
		"HTML_SEARCH_URL":    &cfg.HTMLSearchURL,
		"SEARCH_FILE":        &cfg.FileSearchPath,
		"LLM_BASE_URL":       &cfg.LLMBaseURL,
		"LLM_MODEL":          &cfg.LLMModel,
		"LLM_API_KEY":        &cfg.LLMAPIKey,
		"NOTION_TOKEN":       &cfg.NotionToken,
		"NOTION_DATABASE_ID": &cfg.NotionDatabaseID,
		"NOTION_API_URL":     &cfg.NotionBaseURL,
		"CITATION_STYLE":     &cfg.CitationStyle,
		"CACHE_DIR":          &cfg.CacheDir,
		"DB_PATH":            &cfg.DBPath,
		"ADDR":               &cfg.Addr,
	}
}

func envInts(cfg *Config) map[string]*int {
	return map[string]*int{
		"MAX_RESULTS":        &cfg.MaxResults,
		"PER_DOMAIN_CAP":     &cfg.PerDomainCap,
		"SUMMARY_DEPTH":      &cfg.Depth,
		"SUMMARY_COMPLEXITY": &cfg.Complexity,
		"FETCH_CONCURRENCY":  &cfg.FetchConcurrency,
		"ANON_DAILY_QUOTA":   &cfg.AnonDailyQuota,
		"CACHE_MAX_COUNT":    &cfg.CacheMaxCount,
	}
}

func envFloats(cfg *Config) map[string]*float64 {
	return map[string]*float64{
		"RATE_ANON": &cfg.RateAnon,
		"RATE_USER": &cfg.RateUser,
	}
}

func envBools(cfg *Config) map[string]*bool {
	return map[string]*bool{
		"VERBOSE":            &cfg.Verbose,
		"ENABLE_PDF":         &cfg.EnablePDF,
		"IGNORE_ROBOTS":      &cfg.IgnoreRobots,
		"CACHE_CLEAR":        &cfg.CacheClear,
		"CACHE_STRICT_PERMS": &cfg.CacheStrictPerms,
	}
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	applyEnv(cfg, false)
}

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. This lets env take precedence over a config file while flags, applied
// afterwards, stay highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	applyEnv(cfg, true)
}

func applyEnv(cfg *Config, force bool) {
	for key, dst := range envStrings(cfg) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" && (force || *dst == "") {
			*dst = v
		}
	}
	// SEARXNG_URL is accepted as an alias.
	if v := os.Getenv("SEARXNG_URL"); v != "" && (force || cfg.SearxURL == "") && os.Getenv("SEARX_URL") == "" {
		cfg.SearxURL = v
	}
	for key, dst := range envInts(cfg) {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && (force || *dst == 0) {
			*dst = n
		}
	}
	for key, dst := range envFloats(cfg) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil && (force || *dst == 0) {
			*dst = f
		}
	}
	for key, dst := range envBools(cfg) {
		if b, ok := parseBool(os.Getenv(key)); ok && (force || !*dst) {
			*dst = b
		}
	}
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("CACHE_MAX_AGE"))); err == nil && (force || cfg.CacheMaxAge == 0) {
		cfg.CacheMaxAge = d
	}
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("FETCH_TIMEOUT"))); err == nil && (force || cfg.FetchTimeout == 0) {
		cfg.FetchTimeout = d
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("CACHE_MAX_BYTES")), 10, 64); err == nil && (force || cfg.CacheMaxBytes == 0) {
		cfg.CacheMaxBytes = n
	}
	if v := strings.TrimSpace(os.Getenv("DOMAINS_ALLOW")); v != "" && (force || len(cfg.DomainAllowlist) == 0) {
		cfg.DomainAllowlist = SplitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("DOMAINS_DENY")); v != "" && (force || len(cfg.DomainDenylist) == 0) {
		cfg.DomainDenylist = SplitList(v)
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
