package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/gosummarize/internal/citation"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Google struct {
		APIKey string `yaml:"apiKey" json:"apiKey"`
		CX     string `yaml:"cx" json:"cx"`
	} `yaml:"google" json:"google"`

	Search struct {
		File    string `yaml:"file" json:"file"`
		HTMLURL string `yaml:"htmlURL" json:"htmlURL"`
	} `yaml:"search" json:"search"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Notion struct {
		Token      string `yaml:"token" json:"token"`
		DatabaseID string `yaml:"databaseID" json:"databaseID"`
		BaseURL    string `yaml:"baseURL" json:"baseURL"`
	} `yaml:"notion" json:"notion"`

	Max struct {
		Results        int `yaml:"results" json:"results"`
		PerDomain      int `yaml:"perDomain" json:"perDomain"`
		PerSourceChars int `yaml:"perSourceChars" json:"perSourceChars"`
	} `yaml:"max" json:"max"`

	Min struct {
		SnippetChars int `yaml:"snippetChars" json:"snippetChars"`
	} `yaml:"min" json:"min"`

	Summary struct {
		Depth         int    `yaml:"depth" json:"depth"`
		Complexity    int    `yaml:"complexity" json:"complexity"`
		CitationStyle string `yaml:"citationStyle" json:"citationStyle"`
	} `yaml:"summary" json:"summary"`

	Fetch struct {
		Concurrency  int           `yaml:"concurrency" json:"concurrency"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		EnablePDF    bool          `yaml:"enablePDF" json:"enablePDF"`
		IgnoreRobots bool          `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		MaxBytes    int64         `yaml:"maxBytes" json:"maxBytes"`
		MaxCount    int           `yaml:"maxCount" json:"maxCount"`
	} `yaml:"cache" json:"cache"`

	Domains struct {
		Allow []string `yaml:"allow" json:"allow"`
		Deny  []string `yaml:"deny" json:"deny"`
	} `yaml:"domains" json:"domains"`

	Server struct {
		Addr           string  `yaml:"addr" json:"addr"`
		DBPath         string  `yaml:"db" json:"db"`
		RateAnon       float64 `yaml:"rateAnon" json:"rateAnon"`
		RateUser       float64 `yaml:"rateUser" json:"rateUser"`
		AnonDailyQuota int     `yaml:"anonDailyQuota" json:"anonDailyQuota"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig copies every value the file sets into cfg. Callers apply
// env overrides and explicit flags afterwards so those win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	str := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	num := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}

	str(&cfg.SearxURL, fc.Searx.URL)
	str(&cfg.SearxKey, fc.Searx.Key)
	str(&cfg.SearxUA, fc.Searx.UA)
	str(&cfg.GoogleAPIKey, fc.Google.APIKey)
	str(&cfg.GoogleCX, fc.Google.CX)
	str(&cfg.FileSearchPath, fc.Search.File)
	str(&cfg.HTMLSearchURL, fc.Search.HTMLURL)
	str(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	str(&cfg.LLMModel, fc.LLM.Model)
	str(&cfg.LLMAPIKey, fc.LLM.APIKey)
	str(&cfg.NotionToken, fc.Notion.Token)
	str(&cfg.NotionDatabaseID, fc.Notion.DatabaseID)
	str(&cfg.NotionBaseURL, fc.Notion.BaseURL)

	num(&cfg.MaxResults, fc.Max.Results)
	num(&cfg.PerDomainCap, fc.Max.PerDomain)
	num(&cfg.PerSourceChars, fc.Max.PerSourceChars)
	num(&cfg.MinSnippetChars, fc.Min.SnippetChars)
	num(&cfg.Depth, fc.Summary.Depth)
	num(&cfg.Complexity, fc.Summary.Complexity)
	str(&cfg.CitationStyle, fc.Summary.CitationStyle)

	num(&cfg.FetchConcurrency, fc.Fetch.Concurrency)
	if fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	flag(&cfg.EnablePDF, fc.Fetch.EnablePDF)
	flag(&cfg.IgnoreRobots, fc.Fetch.IgnoreRobots)

	str(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	flag(&cfg.CacheClear, fc.Cache.Clear)
	flag(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
	if fc.Cache.MaxBytes > 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	num(&cfg.CacheMaxCount, fc.Cache.MaxCount)

	if len(fc.Domains.Allow) > 0 {
		cfg.DomainAllowlist = append([]string{}, fc.Domains.Allow...)
	}
	if len(fc.Domains.Deny) > 0 {
		cfg.DomainDenylist = append([]string{}, fc.Domains.Deny...)
	}

	str(&cfg.Addr, fc.Server.Addr)
	str(&cfg.DBPath, fc.Server.DBPath)
	if fc.Server.RateAnon > 0 {
		cfg.RateAnon = fc.Server.RateAnon
	}
	if fc.Server.RateUser > 0 {
		cfg.RateUser = fc.Server.RateUser
	}
	num(&cfg.AnonDailyQuota, fc.Server.AnonDailyQuota)
	flag(&cfg.Verbose, fc.Verbose)
}

// ValidateConfig rejects negative limits, summary levels outside 1..5 and
// unknown citation styles. Zero levels select the default.
func ValidateConfig(cfg Config) error {
	if cfg.MaxResults < 0 || cfg.PerDomainCap < 0 || cfg.PerSourceChars < 0 || cfg.MinSnippetChars < 0 ||
		cfg.FetchConcurrency < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxCount < 0 || cfg.AnonDailyQuota < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.RateAnon < 0 || cfg.RateUser < 0 {
		return errors.New("config: negative rate limits are not allowed")
	}
	for name, v := range map[string]int{"depth": cfg.Depth, "complexity": cfg.Complexity} {
		if v != 0 && (v < summarize.MinLevel || v > summarize.MaxLevel) {
			return fmt.Errorf("config: summary %s %d not in 1..5", name, v)
		}
	}
	if strings.TrimSpace(cfg.CitationStyle) != "" {
		if _, err := citation.ParseStyle(cfg.CitationStyle); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if (cfg.GoogleAPIKey == "") != (cfg.GoogleCX == "") {
		return errors.New("config: google search needs both an API key and a search engine id")
	}
	return nil
}
