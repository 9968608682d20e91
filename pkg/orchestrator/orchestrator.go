// Package orchestrator drives the two-stage agent flow of an audit run:
// signal collection, intelligence gathering, competitor search and audit,
// report generation, and fix-plan enrichment.
//
// Stage ordering is strict within a run. Every stage catches its own
// failures and passes best-available partial data downstream; the only fatal
// conditions are the primary target audit being unavailable and context
// cancellation.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/aggregate"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/budget"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/classify"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/fixplan"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/geoscore"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/jsonrepair"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/pruner"
)

// Stage identifies one step of the audit state machine.
type Stage string

const (
	StageCollectSignals      Stage = "COLLECT_SIGNALS"
	StageIntelligence        Stage = "AGENT1_INTELLIGENCE"
	StageSearch              Stage = "SEARCH"
	StageCompetitorDiscovery Stage = "COMPETITOR_DISCOVERY"
	StageCompetitorAudit     Stage = "COMPETITOR_AUDIT"
	StageReport              Stage = "AGENT2_REPORT"
	StageFixPlanEnrich       Stage = "FIX_PLAN_ENRICH"
	StageDone                Stage = "DONE"
	StageFailed              Stage = "FAILED"
)

// maxFanOut bounds concurrent page and competitor fetches per run.
const maxFanOut = 5

// searchPageSize is the item count requested per search call.
const searchPageSize = 10

// nonCompetitorHosts never count as competitor candidates.
var nonCompetitorHosts = map[string]bool{
	"google.com": true, "youtube.com": true, "facebook.com": true,
	"instagram.com": true, "twitter.com": true, "x.com": true,
	"wikipedia.org": true, "reddit.com": true, "linkedin.com": true,
	"pinterest.com": true, "tiktok.com": true,
}

// Orchestrator owns one audit run over injected capabilities. It keeps no
// global state; separate runs never share mutable data.
type Orchestrator struct {
	cfg     models.AuditConfig
	auditor PageAuditor
	search  SearchProvider
	llm     LLMCaller
	cache   SearchCache
	logger  *slog.Logger

	callTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger for stage events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSearchCache injects the get/set search-result cache capability.
func WithSearchCache(cache SearchCache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// WithCallTimeout overrides the per-external-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// New builds an orchestrator over the three injected capabilities.
func New(cfg models.AuditConfig, auditor PageAuditor, search SearchProvider, llm LLMCaller, opts ...Option) *Orchestrator {
	cfg.Normalize()
	o := &Orchestrator{
		cfg:         cfg,
		auditor:     auditor,
		search:      search,
		llm:         llm,
		logger:      slog.Default(),
		callTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full audit state machine and returns the report bundle.
// A non-nil error means the run failed fatally; recoverable degradation is
// reported through the bundle's InsufficientData list instead.
func (o *Orchestrator) Run(ctx context.Context) (*models.ReportBundle, error) {
	var insufficient []string

	// COLLECT_SIGNALS
	o.logStage(StageCollectSignals)
	summaries := o.auditPages(ctx, o.pageURLs())
	domain := hostOf(o.cfg.TargetURL)
	agg, err := aggregate.Aggregate(domain, summaries)
	if err != nil {
		o.logStage(StageFailed, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAggregationInput, err)
	}
	if target := findSummary(summaries, o.cfg.TargetURL); !target.Valid() {
		o.logStage(StageFailed, "error", ErrTargetUnavailable, "url", o.cfg.TargetURL)
		return nil, fmt.Errorf("%w: %s", ErrTargetUnavailable, o.cfg.TargetURL)
	}
	score := geoscore.Score(geoscore.FromAggregate(agg))
	o.logger.Info("target audit aggregated",
		"pages_analyzed", agg.PagesAnalyzed, "invalid_pages", len(agg.InvalidPages), "geo_score", score)

	// AGENT1_INTELLIGENCE (with single retry and graceful degrade)
	o.logStage(StageIntelligence)
	intel, queries := o.runIntelligence(ctx, agg)
	if !intel.CategoryKnown() {
		insufficient = append(insufficient, "external_intelligence")
	}

	// SEARCH
	o.logStage(StageSearch)
	searchResults := o.runSearches(ctx, queries)
	if len(searchResults) == 0 {
		insufficient = append(insufficient, "search_results")
	}

	// COMPETITOR_DISCOVERY
	o.logStage(StageCompetitorDiscovery)
	candidates := discoverCompetitors(searchResults, domain, o.cfg.MaxCompetitors)

	// COMPETITOR_AUDIT
	o.logStage(StageCompetitorAudit)
	competitors := o.auditCompetitors(ctx, candidates)
	if !anyCompetitorOK(competitors) {
		insufficient = append(insufficient, "competitor_audits")
	}

	// AGENT2_REPORT
	o.logStage(StageReport)
	report, llmFixItems, reportErr := o.runReport(ctx, agg, intel, searchResults, competitors)
	if reportErr != nil {
		o.logger.Warn("report agent unavailable, continuing with fix-plan enrichment only", "error", reportErr)
		insufficient = append(insufficient, "report_markdown")
	}

	// FIX_PLAN_ENRICH
	o.logStage(StageFixPlanEnrich)
	plan := fixplan.Enrich(llmFixItems, agg, summaries)

	o.logStage(StageDone, "fix_items", len(plan), "competitors", len(competitors))
	return &models.ReportBundle{
		TargetAudit:          agg,
		ExternalIntelligence: intel,
		SearchResults:        searchResults,
		CompetitorAudits:     competitors,
		ReportMarkdown:       report,
		FixPlan:              plan,
		GEOScore:             score,
		InsufficientData:     insufficient,
	}, nil
}

// CollectPageAudits runs only the signal-collection stage: the target and
// configured pages audited over the bounded worker pool. No agent calls.
func CollectPageAudits(ctx context.Context, auditor PageAuditor, cfg models.AuditConfig, logger *slog.Logger) []models.PageAuditSummary {
	o := New(cfg, auditor, nil, nil, WithLogger(logger))
	return o.auditPages(ctx, o.pageURLs())
}

func (o *Orchestrator) pageURLs() []string {
	urls := make([]string, 0, len(o.cfg.PageURLs)+1)
	seen := make(map[string]bool)
	for _, u := range append([]string{o.cfg.TargetURL}, o.cfg.PageURLs...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// auditPages fans out page audits over a bounded worker pool. Failed fetches
// become error summaries so they stay visible in the aggregate's invalid
// list; completion order never affects the result.
func (o *Orchestrator) auditPages(ctx context.Context, urls []string) []models.PageAuditSummary {
	workers := o.cfg.WorkerCount
	if workers > maxFanOut {
		workers = maxFanOut
	}
	if workers > len(urls) {
		workers = len(urls)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string, len(urls))
	results := make(chan models.PageAuditSummary, len(urls))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				results <- o.auditOne(ctx, pageURL)
			}
		}()
	}
	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(results)

	summaries := make([]models.PageAuditSummary, 0, len(urls))
	for s := range results {
		summaries = append(summaries, s)
	}
	return summaries
}

func (o *Orchestrator) auditOne(ctx context.Context, pageURL string) models.PageAuditSummary {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	summary, err := o.auditor.Audit(callCtx, pageURL)
	if err != nil {
		o.logger.Warn("page audit failed", "url", pageURL, "error", err)
		return models.PageAuditSummary{
			URL:   pageURL,
			Path:  pathOf(pageURL),
			Error: fmt.Sprintf("%v: %v", ErrExternalCall, err),
		}
	}
	if summary.Path == "" {
		summary.Path = pathOf(pageURL)
	}
	return *summary
}

// runIntelligence executes the first agent stage. Output is invalid when the
// category is unknown AND zero queries survive pruning; that triggers one
// retry with a stricter prompt, after which the run degrades gracefully
// instead of failing.
func (o *Orchestrator) runIntelligence(ctx context.Context, agg *models.SiteAggregate) (*models.ExternalIntelligence, []models.SearchQuery) {
	payload := map[string]any{budget.KeyTargetAudit: toMap(agg)}
	fitted, steps := budget.Fit(payload, o.budgetChars())
	if len(steps) > 0 {
		o.logger.Info("intelligence payload degraded", "detail", budget.Describe(steps))
	}
	payloadJSON := budget.Serialize(fitted)
	signals := o.pruneSignals(agg)

	intel, queries, err := o.intelligenceAttempt(ctx, intelligenceSystemPrompt, payloadJSON, signals)
	if err == nil {
		return intel, queries
	}

	o.logger.Warn("intelligence attempt rejected, retrying with stricter prompt", "error", err)
	intel, queries, err = o.intelligenceAttempt(ctx, intelligenceRetryPrompt, payloadJSON, signals)
	if err == nil {
		return intel, queries
	}

	// Graceful degradation: never a hard failure at this stage.
	if intel == nil {
		intel = &models.ExternalIntelligence{}
	}
	if intel.Category == "" {
		intel.Category = "Unknown Category"
	}
	intel.Queries = queries
	o.logger.Warn("intelligence degraded", "error", err, "category", intel.Category, "queries", len(queries))
	return intel, queries
}

// intelligenceAttempt runs one LLM call. The error wraps ErrExternalCall when
// the call itself failed, or ErrInvalidAgentOutput when the result fails the
// validity contract (unknown category and zero surviving queries).
func (o *Orchestrator) intelligenceAttempt(ctx context.Context, systemPrompt, payloadJSON string, signals pruner.PageSignals) (*models.ExternalIntelligence, []models.SearchQuery, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	raw, err := o.llm.Call(callCtx, systemPrompt, intelligenceUserPrompt(payloadJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: intelligence agent: %v", ErrExternalCall, err)
	}

	intel := parseIntelligence(raw)
	signals.Category = intel.Category
	signals.Subcategory = intel.Subcategory
	pruned := pruner.Prune(intel.Queries, signals, marketOr(intel.Market, o.cfg.Market))
	intel.Queries = pruned

	if !intel.CategoryKnown() && len(pruned) == 0 {
		return intel, pruned, fmt.Errorf("%w: no category and no usable queries", ErrInvalidAgentOutput)
	}
	return intel, pruned, nil
}

// parseIntelligence recovers an ExternalIntelligence from raw agent text.
func parseIntelligence(raw string) *models.ExternalIntelligence {
	obj := jsonrepair.Extract(raw)
	intel := &models.ExternalIntelligence{}
	if encoded, err := json.Marshal(obj); err == nil {
		_ = json.Unmarshal(encoded, intel)
	}
	if intel.Category == "Unknown Category" {
		intel.Category = ""
	}
	for i := range intel.Queries {
		if intel.Queries[i].ID == "" {
			intel.Queries[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return intel
}

// findSummary locates the audit summary for one URL; nil when absent.
func findSummary(summaries []models.PageAuditSummary, url string) *models.PageAuditSummary {
	url = strings.TrimSpace(url)
	for i := range summaries {
		if summaries[i].URL == url {
			return &summaries[i]
		}
	}
	return nil
}

func (o *Orchestrator) pruneSignals(agg *models.SiteAggregate) pruner.PageSignals {
	sig := pruner.PageSignals{Brand: classify.BrandToken(o.cfg.TargetURL)}
	if agg.Homepage != nil {
		sig.H1 = agg.Homepage.H1
		sig.Title = agg.Homepage.Title
		sig.MetaDescription = agg.Homepage.MetaDescription
		sig.TextSample = agg.Homepage.TextSample
	}
	return sig
}

// runSearches resolves each surviving query, preferring the injected cache.
// A failed search is recorded as an error result, never silently dropped.
func (o *Orchestrator) runSearches(ctx context.Context, queries []models.SearchQuery) map[string]models.SearchResult {
	results := make(map[string]models.SearchResult, len(queries))
	for _, q := range queries {
		if o.cache != nil {
			if cached, ok := o.cache.Get(ctx, q.Query); ok {
				results[q.Query] = *cached
				continue
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		res, err := o.search.Search(callCtx, q.Query, searchPageSize, 0)
		cancel()
		if err != nil {
			o.logger.Warn("search failed", "query", q.Query, "error", err)
			results[q.Query] = models.SearchResult{Error: err.Error()}
			continue
		}
		results[q.Query] = *res
		if o.cache != nil {
			if err := o.cache.Set(ctx, q.Query, res); err != nil {
				o.logger.Warn("search cache write failed", "query", q.Query, "error", err)
			}
		}
	}
	return results
}

// discoverCompetitors extracts candidate competitor URLs from search items.
// Queries are visited in sorted order so discovery is deterministic.
func discoverCompetitors(results map[string]models.SearchResult, targetHost string, max int) []string {
	queries := make([]string, 0, len(results))
	for q := range results {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	var candidates []string
	seen := map[string]bool{targetHost: true}
	for _, q := range queries {
		for _, item := range results[q].Items {
			host := hostOf(item.Link)
			if host == "" || seen[host] || nonCompetitorHosts[registrable(host)] {
				continue
			}
			seen[host] = true
			candidates = append(candidates, "https://"+host)
			if len(candidates) == max {
				return candidates
			}
		}
	}
	return candidates
}

// auditCompetitors fans out competitor audits. Non-2xx and failed fetches
// yield error records that stay visible in the output list with a zero
// score; they are excluded from structural comparison by their OK() state.
func (o *Orchestrator) auditCompetitors(ctx context.Context, urls []string) []models.CompetitorAudit {
	if len(urls) == 0 {
		return nil
	}
	audits := make([]models.CompetitorAudit, len(urls))
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxFanOut)

	for i, competitorURL := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			audits[idx] = o.auditCompetitor(ctx, u)
		}(i, competitorURL)
	}
	wg.Wait()
	return audits
}

func (o *Orchestrator) auditCompetitor(ctx context.Context, competitorURL string) models.CompetitorAudit {
	audit := models.CompetitorAudit{
		Domain: hostOf(competitorURL),
		URL:    competitorURL,
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	summary, err := o.auditor.Audit(callCtx, competitorURL)
	if err != nil {
		o.logger.Warn("competitor audit failed", "url", competitorURL, "error", err)
		audit.Error = err.Error()
		return audit
	}

	audit.HTTPStatus = summary.HTTPStatus
	if summary.HTTPStatus < 200 || summary.HTTPStatus >= 300 || !summary.Valid() {
		audit.Error = fmt.Sprintf("http status %d", summary.HTTPStatus)
		return audit
	}

	agg, err := aggregate.Aggregate(audit.Domain, []models.PageAuditSummary{*summary})
	if err != nil {
		audit.Error = err.Error()
		return audit
	}
	audit.Aggregate = agg
	audit.GEOScore = geoscore.Score(geoscore.FromAggregate(agg))
	return audit
}

// runReport executes the second agent stage. A response without the fix-plan
// delimiter becomes a whole-text report with an empty fix plan; only a
// transport failure returns an error.
func (o *Orchestrator) runReport(ctx context.Context, agg *models.SiteAggregate, intel *models.ExternalIntelligence, searchResults map[string]models.SearchResult, competitors []models.CompetitorAudit) (string, []models.FixPlanItem, error) {
	payload := map[string]any{
		budget.KeyTargetAudit:          toMap(agg),
		budget.KeyExternalIntelligence: toMap(intel),
		budget.KeySearchResults:        toMap(searchResults),
		budget.KeyCompetitorAudits:     toList(competitors),
	}
	fitted, steps := budget.Fit(payload, o.budgetChars())
	if len(steps) > 0 {
		o.logger.Info("report payload degraded", "detail", budget.Describe(steps))
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	raw, err := o.llm.Call(callCtx, reportSystemPrompt, reportUserPrompt(budget.Serialize(fitted)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrExternalCall, err)
	}

	report, fixItems := splitReport(raw)
	return report, fixItems, nil
}

// splitReport divides agent output on the fix-plan delimiter and parses the
// trailing JSON. Missing or unparseable fix-plan sections are not failures.
func splitReport(raw string) (string, []models.FixPlanItem) {
	idx := strings.Index(raw, FixPlanDelimiter)
	if idx == -1 {
		return strings.TrimSpace(raw), nil
	}
	report := strings.TrimSpace(raw[:idx])
	items := jsonrepair.ExtractList(raw[idx+len(FixPlanDelimiter):])

	var fixItems []models.FixPlanItem
	for _, entry := range items {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := models.FixPlanItem{
			PagePath:    stringField(m, "page_path"),
			IssueCode:   stringField(m, "issue_code"),
			Priority:    models.ParseFixPriority(stringField(m, "priority")),
			Description: stringField(m, "description"),
			Suggestion:  stringField(m, "suggestion"),
			Source:      "llm",
		}
		if item.PagePath == "" {
			item.PagePath = models.AllPages
		}
		if item.IssueCode == "" {
			continue
		}
		fixItems = append(fixItems, item)
	}
	return report, fixItems
}

func (o *Orchestrator) budgetChars() int {
	return budget.BudgetChars(o.cfg.MaxTokens, o.cfg.SafetyRatio, o.cfg.SystemPromptTokens)
}

func (o *Orchestrator) logStage(stage Stage, args ...any) {
	o.logger.Info("stage", append([]any{"stage", string(stage)}, args...)...)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func anyCompetitorOK(audits []models.CompetitorAudit) bool {
	for i := range audits {
		if audits[i].OK() {
			return true
		}
	}
	return false
}

func marketOr(primary, fallback string) string {
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return fallback
}

// toMap converts any JSON-serializable value into the generic payload shape
// the budgeter operates on.
func toMap(v any) map[string]any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func toList(v any) []any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil
	}
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Host, "www."))
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// registrable collapses a host to its registrable domain for the
// non-competitor check ("shop.google.com" -> "google.com").
func registrable(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
