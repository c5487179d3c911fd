package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
)

// exitNoResults is returned when a search found nothing usable.
const exitNoResults = 2

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoResults):
		return exitNoResults
	}
	return 1
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	envFiles   []string
	verbose    bool

	searxURL   string
	searchFile string
	llmBase    string
	llmModel   string
	llmKey     string
	notionKey  string
	notionDB   string
	dbPath     string
	cacheDir   string
	depth      int
	complexity int
	style      string
	enablePDF  bool
	noRobots   bool
	allow      string
	deny       string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "gosummarize",
		Short: "Web search with extractive summaries of every result",
		Long: `gosummarize searches the web through SearxNG, Google Custom Search or an
HTML endpoint, fetches each result page and writes a short extractive summary
tuned by depth and complexity. It runs as a one-shot CLI or as an HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if g.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringSliceVar(&g.envFiles, "env", []string{".env"}, "Dotenv files to load; later files win")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&g.searxURL, "searx.url", "", "SearxNG base URL")
	pf.StringVar(&g.searchFile, "search.file", "", "Path to JSON file for offline file-based search")
	pf.StringVar(&g.llmBase, "llm.base", "", "OpenAI-compatible base URL for query suggestions")
	pf.StringVar(&g.llmModel, "llm.model", "", "Model name for query suggestions")
	pf.StringVar(&g.llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	pf.StringVar(&g.notionKey, "notion.token", "", "Notion integration token for --format notion")
	pf.StringVar(&g.notionDB, "notion.database", "", "Notion database that receives exported results")
	pf.StringVar(&g.dbPath, "db", "", "SQLite database path; empty string disables history")
	pf.StringVar(&g.cacheDir, "cache.dir", "", "HTTP cache directory; empty string disables caching")
	pf.IntVar(&g.depth, "depth", 0, "Summary depth, 1 (brief) to 5 (thorough)")
	pf.IntVar(&g.complexity, "complexity", 0, "Summary complexity, 1 (simple) to 5 (technical)")
	pf.StringVar(&g.style, "citation.style", "", "Citation style: APA, MLA or Chicago")
	pf.BoolVar(&g.enablePDF, "enable.pdf", false, "Summarize application/pdf results")
	pf.BoolVar(&g.noRobots, "robots.ignore", false, "Fetch result pages even when robots.txt disallows them")
	pf.StringVar(&g.allow, "domains.allow", "", "Comma-separated allowlist of hosts/domains")
	pf.StringVar(&g.deny, "domains.deny", "", "Comma-separated denylist of hosts/domains")

	root.AddCommand(
		newSearchCmd(g),
		newSummarizeCmd(g),
		newServeCmd(g),
		newHistoryCmd(g),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves configuration in order: defaults, dotenv files,
// config file, environment, then flags the user set explicitly.
func loadConfig(cmd *cobra.Command, g *globalFlags) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnvFiles(g.envFiles...); err != nil {
		return cfg, fmt.Errorf("load env files: %w", err)
	}
	if g.configPath != "" {
		fc, err := app.LoadConfigFile(g.configPath)
		if err != nil {
			return cfg, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("searx.url", func() { cfg.SearxURL = g.searxURL })
	set("search.file", func() { cfg.FileSearchPath = g.searchFile })
	set("llm.base", func() { cfg.LLMBaseURL = g.llmBase })
	set("llm.model", func() { cfg.LLMModel = g.llmModel })
	set("llm.key", func() { cfg.LLMAPIKey = g.llmKey })
	set("notion.token", func() { cfg.NotionToken = g.notionKey })
	set("notion.database", func() { cfg.NotionDatabaseID = g.notionDB })
	set("db", func() { cfg.DBPath = g.dbPath })
	set("cache.dir", func() { cfg.CacheDir = g.cacheDir })
	set("depth", func() { cfg.Depth = g.depth })
	set("complexity", func() { cfg.Complexity = g.complexity })
	set("citation.style", func() { cfg.CitationStyle = g.style })
	set("enable.pdf", func() { cfg.EnablePDF = g.enablePDF })
	set("robots.ignore", func() { cfg.IgnoreRobots = g.noRobots })
	set("domains.allow", func() { cfg.DomainAllowlist = app.SplitList(g.allow) })
	set("domains.deny", func() { cfg.DomainDenylist = app.SplitList(g.deny) })
	cfg.Verbose = g.verbose
	return cfg, app.ValidateConfig(cfg)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gosummarize %s\n", app.Version())
		},
	}
}

// readInput reads path, or standard input when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
