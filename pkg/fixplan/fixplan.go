// Package fixplan synthesizes deterministic remediation items from audit
// findings and merges them with LLM-proposed ones.
//
// Merging is keyed on (page_path, issue_code): enrichment never duplicates
// and never overrides an LLM-sourced item. The final plan is stably sorted by
// priority, so ties keep insertion order (LLM items first, then rule-table
// order).
package fixplan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/classify"
)

// Issue codes emitted by the deterministic rule table.
const (
	CodeH1Missing        = "H1_MISSING"
	CodeSchemaMissing    = "SCHEMA_MISSING"
	CodeAuthorMissing    = "AUTHOR_MISSING"
	CodeHeaderSkip       = "HEADER_HIERARCHY_SKIP"
	CodeLongParagraphs   = "LONG_PARAGRAPHS"
	CodeFAQMissing       = "FAQ_MISSING"
	CodeStaleContent     = "STALE_CONTENT"
	CodeCitationsMissing = "CITATIONS_MISSING"
	CodeTransparency     = "TRANSPARENCY_MISSING"
	CodeMetaNoindex      = "META_ROBOTS_NOINDEX"
	CodeLCPSlow          = "LCP_SLOW"
	CodeCLSHigh          = "CLS_HIGH"
	CodeTTFBSlow         = "TTFB_SLOW"
	CodeProductSchemaGap = "PRODUCT_SCHEMA_GAP"
)

// Performance thresholds above which a fix item is raised.
const (
	lcpThresholdMillis  = 2500.0
	clsThreshold        = 0.1
	ttfbThresholdMillis = 800.0
)

const sourceRule = "rule"

// Enrich merges LLM-proposed fix items with deterministic rule findings from
// the aggregate and the per-page summaries, then sorts by priority.
func Enrich(llmItems []models.FixPlanItem, agg *models.SiteAggregate, pages []models.PageAuditSummary) []models.FixPlanItem {
	seen := make(map[string]bool)
	plan := make([]models.FixPlanItem, 0, len(llmItems))
	for _, item := range llmItems {
		key := dedupKey(item.PagePath, item.IssueCode)
		if seen[key] {
			continue
		}
		seen[key] = true
		if item.Source == "" {
			item.Source = "llm"
		}
		plan = append(plan, item)
	}

	add := func(path, code string, priority models.FixPriority, description, suggestion string) {
		key := dedupKey(path, code)
		if seen[key] {
			return
		}
		seen[key] = true
		plan = append(plan, models.FixPlanItem{
			PagePath:    path,
			IssueCode:   code,
			Priority:    priority,
			Description: description,
			Suggestion:  suggestion,
			Source:      sourceRule,
		})
	}

	if agg != nil {
		for _, path := range agg.H1Check.FailedPages {
			add(path, CodeH1Missing, models.PriorityCritical,
				"Page has no H1 heading.",
				"Add a single descriptive H1 naming the page topic.")
		}
		for _, path := range agg.SchemaPresence.FailedPages {
			add(path, CodeSchemaMissing, models.PriorityCritical,
				"Page carries no JSON-LD structured data.",
				"Add schema.org JSON-LD matching the page type (Product, Article, FAQPage).")
		}
		for _, path := range agg.AuthorPresence.FailedPages {
			add(path, CodeAuthorMissing, models.PriorityHigh,
				"No author attribution found.",
				"Attribute content to a named author with credentials.")
		}
		for _, path := range agg.HeaderHierarchy.FailedPages {
			add(path, CodeHeaderSkip, models.PriorityMedium,
				"Header levels skip (e.g. H1 directly to H3).",
				"Restructure headings into a strict H1>H2>H3 hierarchy.")
		}
		if agg.FAQDetection.PassCount == 0 {
			add(models.AllPages, CodeFAQMissing, models.PriorityMedium,
				"No FAQ-style question/answer content detected on any page.",
				"Add an FAQ section with conversational questions your buyers ask.")
		}
		for _, path := range agg.Freshness.FailedPages {
			add(path, CodeStaleContent, models.PriorityMedium,
				"Content has no recent publication or update date.",
				"Refresh the content and expose a visible last-updated date.")
		}
		if agg.AuthoritativeLinks.PassCount == 0 {
			add(models.AllPages, CodeCitationsMissing, models.PriorityMedium,
				"No citations to authoritative sources found.",
				"Cite recognizable primary sources to support key claims.")
		}
		if agg.Transparency.PassCount == 0 {
			add(models.AllPages, CodeTransparency, models.PriorityHigh,
				"No transparency pages (about, contact, returns) detected.",
				"Publish and link about/contact/policy pages from every page footer.")
		}
		for _, path := range agg.NoindexPages {
			add(path, CodeMetaNoindex, models.PriorityCritical,
				"Page is excluded from indexing via meta robots noindex.",
				"Remove the noindex directive unless exclusion is intentional.")
		}
	}

	for i := range pages {
		p := &pages[i]
		if !p.Valid() {
			continue
		}
		if p.Content.LongParagraphs > 0 {
			add(p.Path, CodeLongParagraphs, models.PriorityMedium,
				fmt.Sprintf("%d paragraphs exceed a comfortable reading length.", p.Content.LongParagraphs),
				"Split long paragraphs and surface key points as lists.")
		}
		if perf := p.Performance; perf != nil {
			if perf.LCPMillis > lcpThresholdMillis {
				add(p.Path, CodeLCPSlow, models.PriorityHigh,
					fmt.Sprintf("Largest Contentful Paint is %.0fms (threshold %.0fms).", perf.LCPMillis, lcpThresholdMillis),
					"Optimize the largest above-the-fold element (image compression, preloading).")
			}
			if perf.CLS > clsThreshold {
				add(p.Path, CodeCLSHigh, models.PriorityHigh,
					fmt.Sprintf("Cumulative Layout Shift is %.2f (threshold %.1f).", perf.CLS, clsThreshold),
					"Reserve dimensions for images, ads, and embeds.")
			}
			if perf.TTFBMillis > ttfbThresholdMillis {
				add(p.Path, CodeTTFBSlow, models.PriorityHigh,
					fmt.Sprintf("Time To First Byte is %.0fms (threshold %.0fms).", perf.TTFBMillis, ttfbThresholdMillis),
					"Cache rendered pages or move serving closer to the market.")
			}
		}
		if classify.IsProductPath(p.Path) {
			var types []string
			if p.Schema != nil {
				types = p.Schema.Types
			}
			if !classify.HasProductSchema(types) {
				add(p.Path, CodeProductSchemaGap, models.PriorityHigh,
					"Product page lacks Product/Offer structured data.",
					"Add Product JSON-LD with name, price, availability, and reviews.")
			}
		}
	}

	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Priority < plan[j].Priority
	})
	return plan
}

func dedupKey(path, code string) string {
	return strings.ToLower(path) + "\x00" + strings.ToUpper(code)
}
