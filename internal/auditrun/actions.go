// Package auditrun wires CLI flags into audit pipeline runs.
package auditrun

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/aggregate"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/geoscore"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/orchestrator"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/pageaudit"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/providers"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/searchcache"
)

func newLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// buildConfig layers CLI flags over an optional YAML config file.
func buildConfig(c *cli.Context) (models.AuditConfig, error) {
	cfg := models.AuditConfig{}
	if c.IsSet("config") {
		loaded, err := models.LoadAuditConfig(c.String("config"))
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if c.IsSet("target") || cfg.TargetURL == "" {
		cfg.TargetURL = c.String("target")
	}
	if c.IsSet("pages") {
		cfg.PageURLs = strings.Split(c.String("pages"), ",")
	}
	if c.IsSet("market") {
		cfg.Market = c.String("market")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("max-tokens") {
		cfg.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("max-competitors") {
		cfg.MaxCompetitors = c.Int("max-competitors")
	}

	if cfg.TargetURL == "" {
		return cfg, fmt.Errorf("a target URL is required (--target or config file)")
	}
	return cfg, nil
}

// AuditAction runs the full pipeline: signal collection, both agent stages,
// competitor audits, and fix-plan enrichment.
func AuditAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))
	startTime := time.Now()

	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if c.String("llm-api-key") == "" {
		logger.Error("an LLM API key is required (--llm-api-key or OPENAI_API_KEY)")
		os.Exit(2)
	}
	if c.String("search-api-key") == "" {
		logger.Error("a search API key is required (--search-api-key or SERPER_API_KEY)")
		os.Exit(2)
	}

	llm := providers.NewLLMClient(c.String("llm-base-url"), c.String("llm-api-key"), c.String("model"))
	search := providers.NewSerperClient("", c.String("search-api-key"))
	auditor := pageaudit.New(pageaudit.WithLogger(logger))

	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if !c.Bool("no-cache") {
		cache, err := searchcache.Open(c.String("cache-db"), searchcache.DefaultTTL)
		if err != nil {
			logger.Error("failed to open search cache", "error", err)
			os.Exit(2)
		}
		defer cache.Close()
		opts = append(opts, orchestrator.WithSearchCache(cache))
	}

	// Failures past this point return instead of exiting so the deferred
	// cache close still runs.
	bundle, err := orchestrator.New(cfg, auditor, search, llm, opts...).Run(c.Context)
	if err != nil {
		logger.Error("audit run failed", "error", err, "duration", time.Since(startTime).String())
		return fmt.Errorf("audit run: %w", err)
	}

	logger.Info("audit run complete",
		"geo_score", bundle.GEOScore,
		"fix_items", len(bundle.FixPlan),
		"competitors", len(bundle.CompetitorAudits),
		"duration", time.Since(startTime).String())

	if err := writeBundle(bundle, c.String("output"), c.String("format")); err != nil {
		logger.Error("failed to write report bundle", "error", err)
		return fmt.Errorf("write report bundle: %w", err)
	}
	return nil
}

// PageAction audits one page and prints its summary.
func PageAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	pageURL := c.String("url")
	if pageURL == "" {
		logger.Error("a page URL is required (--url)")
		os.Exit(2)
	}

	summary, err := pageaudit.New(pageaudit.WithLogger(logger)).Audit(c.Context, pageURL)
	if err != nil {
		logger.Error("page audit failed", "url", pageURL, "error", err)
		os.Exit(1)
	}
	return writeAny(summary, c.String("output"), c.String("format"))
}

// ScoreAction runs the deterministic half of the pipeline: page audits,
// aggregation, and the composite score. No agent calls, no API keys needed.
func ScoreAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	cfg.Normalize()

	auditor := pageaudit.New(pageaudit.WithLogger(logger))
	summaries := orchestrator.CollectPageAudits(c.Context, auditor, cfg, logger)

	agg, err := aggregate.Aggregate(hostOf(cfg.TargetURL), summaries)
	if err != nil {
		logger.Error("aggregation failed", "error", err)
		os.Exit(1)
	}
	score := geoscore.Score(geoscore.FromAggregate(agg))
	logger.Info("score computed", "geo_score", score, "pages_analyzed", agg.PagesAnalyzed)

	out := struct {
		GEOScore  float64               `json:"geo_score" yaml:"geo_score"`
		Aggregate *models.SiteAggregate `json:"aggregate" yaml:"aggregate"`
	}{score, agg}
	return writeAny(out, c.String("output"), c.String("format"))
}

func hostOf(rawURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	trimmed = strings.TrimPrefix(trimmed, "www.")
	if i := strings.IndexAny(trimmed, "/?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.ToLower(trimmed)
}

// encodeJSON is shared by the output writers.
func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
