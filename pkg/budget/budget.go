// Package budget packs an oversized analysis payload into a hard LLM context
// budget via ordered degradation.
//
// The reducer chain is applied in a fixed order until the serialized payload
// fits. Each reducer is idempotent and monotonically shrinking, and never
// reorders surviving content, so every intermediate state stays valid for
// prompt substitution.
package budget

import (
	"fmt"
	"reflect"
	"unicode/utf8"
)

// Payload key names recognized by the reducer chain.
const (
	KeyTargetAudit          = "target_audit"
	KeyExternalIntelligence = "external_intelligence"
	KeySearchResults        = "search_results"
	KeyCompetitorAudits     = "competitor_audits"
)

// lowPriorityKeys are dropped wholesale when the budget is tight.
var lowPriorityKeys = []string{
	"llm_visibility",
	"ai_content_suggestions",
	"rank_tracking",
	"keywords",
	"backlinks",
}

// compactAuditKeys is the minimal target-audit projection kept once the
// payload must shrink: summary fields only, no raw JSON-LD or text samples.
var compactAuditKeys = map[string]bool{
	"domain":             true,
	"pages_analyzed":     true,
	"h1_check":           true,
	"header_hierarchy":   true,
	"schema_presence":    true,
	"author_presence":    true,
	"faq_detection":      true,
	"freshness":          true,
	"transparency":       true,
	"avg_semantic_score": true,
	"avg_tone_score":     true,
	"schema_types":       true,
	"homepage":           true,
	"site_metrics":       true,
}

// BudgetChars derives the character budget from token limits, assuming about
// four characters per token and never going below a workable floor.
func BudgetChars(maxTokens int, safetyRatio float64, systemPromptTokens int) int {
	chars := int((float64(maxTokens)*safetyRatio - float64(systemPromptTokens)) * 4)
	if chars < 4000 {
		return 4000
	}
	return chars
}

// Fit degrades payload until its serialized size is at most budgetChars.
// It returns the degraded payload and the names of the reducer steps applied.
// The input map is not mutated.
func Fit(payload map[string]any, budgetChars int) (map[string]any, []string) {
	work := deepCopy(payload)
	var applied []string

	type step struct {
		name  string
		apply func(map[string]any) map[string]any
	}
	steps := []step{
		{"search_items_5", func(p map[string]any) map[string]any { capSearchItems(p, 5); return p }},
		{"search_items_3", func(p map[string]any) map[string]any { capSearchItems(p, 3); return p }},
		{"search_items_1", func(p map[string]any) map[string]any { capSearchItems(p, 1); return p }},
		{"search_results_dropped", func(p map[string]any) map[string]any { delete(p, KeySearchResults); return p }},
		{"competitors_3", func(p map[string]any) map[string]any { capCompetitors(p, 3); return p }},
		{"competitors_1", func(p map[string]any) map[string]any { capCompetitors(p, 1); return p }},
		{"competitors_0", func(p map[string]any) map[string]any { capCompetitors(p, 0); return p }},
		{"low_priority_dropped", dropLowPriority},
		{"target_audit_compacted", compactTargetAudit},
		{"strings_truncated_800", func(p map[string]any) map[string]any { truncateStrings(p, 800); return p }},
		{"strings_truncated_400", func(p map[string]any) map[string]any { truncateStrings(p, 400); return p }},
		{"minimal_fallback", minimalFallback},
	}

	if Size(work) <= budgetChars {
		return work, applied
	}
	for _, s := range steps {
		work = s.apply(work)
		applied = append(applied, s.name)
		if Size(work) <= budgetChars {
			return work, applied
		}
	}
	// The minimal fallback can still exceed a pathologically small budget;
	// string truncation on the fallback is the terminal state.
	truncateStrings(work, 400)
	return work, applied
}

func capSearchItems(payload map[string]any, n int) {
	results, ok := payload[KeySearchResults].(map[string]any)
	if !ok {
		return
	}
	for query, raw := range results {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		items, ok := entry["items"].([]any)
		if ok && len(items) > n {
			entry["items"] = items[:n]
			results[query] = entry
		}
	}
}

func capCompetitors(payload map[string]any, n int) {
	audits, ok := payload[KeyCompetitorAudits].([]any)
	if !ok {
		return
	}
	if len(audits) > n {
		payload[KeyCompetitorAudits] = audits[:n]
	}
}

func dropLowPriority(payload map[string]any) map[string]any {
	for _, key := range lowPriorityKeys {
		delete(payload, key)
	}
	return payload
}

func compactTargetAudit(payload map[string]any) map[string]any {
	audit, ok := payload[KeyTargetAudit].(map[string]any)
	if !ok {
		return payload
	}
	compact := make(map[string]any, len(compactAuditKeys))
	for key, val := range audit {
		if compactAuditKeys[key] {
			compact[key] = val
		}
	}
	payload[KeyTargetAudit] = compact
	return payload
}

// truncateStrings caps every string leaf in place.
func truncateStrings(node any, limit int) {
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if s, ok := val.(string); ok {
				v[key] = truncateString(s, limit)
				continue
			}
			truncateStrings(val, limit)
		}
	case []any:
		for i, item := range v {
			if s, ok := item.(string); ok {
				v[i] = truncateString(s, limit)
				continue
			}
			truncateStrings(item, limit)
		}
	}
}

// truncateString cuts at a rune boundary so multibyte text stays valid UTF-8.
func truncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func minimalFallback(payload map[string]any) map[string]any {
	minimal := make(map[string]any, 2)
	if audit, ok := payload[KeyTargetAudit]; ok {
		minimal[KeyTargetAudit] = audit
	}
	if intel, ok := payload[KeyExternalIntelligence]; ok {
		minimal[KeyExternalIntelligence] = intel
	}
	return minimal
}

// deepCopy clones maps and slices so degradation never mutates the caller's
// payload. Scalar leaves are shared. Repeated identities on the copy path are
// replaced with the same sentinel the serializer uses, so a cyclic payload
// cannot recurse forever.
func deepCopy(node map[string]any) map[string]any {
	out, _ := copyValue(node, map[uintptr]bool{}).(map[string]any)
	return out
}

func copyValue(v any, onPath map[uintptr]bool) any {
	switch val := v.(type) {
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if onPath[ptr] {
			return "[circular]"
		}
		onPath[ptr] = true
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item, onPath)
		}
		delete(onPath, ptr)
		return out
	case []any:
		ptr := reflect.ValueOf(val).Pointer()
		if ptr != 0 && onPath[ptr] {
			return "[circular]"
		}
		if ptr != 0 {
			onPath[ptr] = true
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item, onPath)
		}
		if ptr != 0 {
			delete(onPath, ptr)
		}
		return out
	default:
		return val
	}
}

// Describe renders the applied reducer steps for logging.
func Describe(applied []string) string {
	if len(applied) == 0 {
		return "payload within budget"
	}
	return fmt.Sprintf("applied %d reducer steps, final: %s", len(applied), applied[len(applied)-1])
}
