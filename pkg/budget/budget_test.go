package budget

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func bigPayload(textSize int) map[string]any {
	longText := strings.Repeat("lorem ipsum dolor sit amet ", textSize/27+1)[:textSize]
	searchResults := map[string]any{}
	for _, q := range []string{"q1", "q2", "q3"} {
		items := make([]any, 8)
		for i := range items {
			items[i] = map[string]any{
				"title":   "Result title for " + q,
				"link":    "https://example.com/" + q,
				"snippet": longText[:400],
			}
		}
		searchResults[q] = map[string]any{"items": items}
	}
	competitors := make([]any, 5)
	for i := range competitors {
		competitors[i] = map[string]any{
			"domain":    "competitor.example",
			"geo_score": 55.5,
			"notes":     longText[:800],
		}
	}
	return map[string]any{
		KeyTargetAudit: map[string]any{
			"domain":          "example.com",
			"pages_analyzed":  3,
			"h1_check":        map[string]any{"status": "pass"},
			"schema_presence": map[string]any{"status": "warn"},
			"raw_jsonld":      map[string]any{"/": longText},
			"text_sample":     longText,
			"site_metrics":    map[string]any{"structure_score_percent": 71.2},
		},
		KeyExternalIntelligence: map[string]any{
			"category": "running shoes",
			"market":   "Argentina",
		},
		KeySearchResults:    searchResults,
		KeyCompetitorAudits: competitors,
		"llm_visibility":    map[string]any{"blob": longText},
		"keywords":          []any{"a", "b", "c"},
	}
}

func TestBudgetChars(t *testing.T) {
	cases := []struct {
		maxTokens int
		safety    float64
		sysTokens int
		want      int
	}{
		{128000, 0.8, 2000, (102400 - 2000) * 4},
		{1000, 0.5, 900, 4000}, // floor
		{0, 0.8, 0, 4000},
	}
	for _, tc := range cases {
		if got := BudgetChars(tc.maxTokens, tc.safety, tc.sysTokens); got != tc.want {
			t.Errorf("BudgetChars(%d, %v, %d) = %d, want %d",
				tc.maxTokens, tc.safety, tc.sysTokens, got, tc.want)
		}
	}
}

// A 50,000-char payload against an 8,000-char budget must shrink in reducer
// order and still carry the target audit and external intelligence.
func TestFit_OversizedPayload(t *testing.T) {
	payload := bigPayload(20000)
	if Size(payload) < 50000 {
		t.Fatalf("test payload too small: %d chars", Size(payload))
	}

	fitted, applied := Fit(payload, 8000)
	if got := Size(fitted); got > 8000 {
		t.Errorf("fitted size = %d, want <= 8000", got)
	}
	if len(applied) == 0 {
		t.Error("expected reducer steps to be applied")
	}
	if _, ok := fitted[KeyTargetAudit]; !ok {
		t.Error("target_audit must survive degradation")
	}
	if _, ok := fitted[KeyExternalIntelligence]; !ok {
		t.Error("external_intelligence must survive degradation")
	}
}

func TestFit_ReducerOrder(t *testing.T) {
	payload := bigPayload(20000)
	_, applied := Fit(payload, 8000)

	order := map[string]int{
		"search_items_5": 0, "search_items_3": 1, "search_items_1": 2,
		"search_results_dropped": 3, "competitors_3": 4, "competitors_1": 5,
		"competitors_0": 6, "low_priority_dropped": 7, "target_audit_compacted": 8,
		"strings_truncated_800": 9, "strings_truncated_400": 10, "minimal_fallback": 11,
	}
	last := -1
	for _, step := range applied {
		rank, known := order[step]
		if !known {
			t.Fatalf("unknown reducer step %q", step)
		}
		if rank <= last {
			t.Errorf("reducer %q applied out of order", step)
		}
		last = rank
	}
}

func TestFit_WithinBudgetUntouched(t *testing.T) {
	payload := map[string]any{
		KeyTargetAudit: map[string]any{"domain": "example.com"},
	}
	fitted, applied := Fit(payload, 8000)
	if len(applied) != 0 {
		t.Errorf("no reducers expected, got %v", applied)
	}
	if Serialize(fitted) != Serialize(payload) {
		t.Error("payload within budget must pass through unchanged")
	}
}

func TestFit_DoesNotMutateInput(t *testing.T) {
	payload := bigPayload(20000)
	before := Serialize(payload)
	Fit(payload, 8000)
	if Serialize(payload) != before {
		t.Error("Fit mutated the caller's payload")
	}
}

func TestFit_Terminates(t *testing.T) {
	payload := bigPayload(100000)
	fitted, applied := Fit(payload, 10) // impossible budget
	if fitted == nil {
		t.Fatal("fitted payload is nil")
	}
	if len(applied) > 12 {
		t.Errorf("reducer chain ran %d steps, want bounded by 12", len(applied))
	}
}

func TestTruncateStrings_RuneBoundary(t *testing.T) {
	// Limit 68 lands inside a multibyte rune in both strings, so the cut
	// must back up to the previous boundary.
	payload := map[string]any{
		"text":  strings.Repeat("zapatería", 20),
		"items": []any{strings.Repeat("señalización", 10)},
	}
	truncateStrings(payload, 68)

	for _, s := range []string{payload["text"].(string), payload["items"].([]any)[0].(string)} {
		if len(s) >= 68 {
			t.Errorf("len = %d, want < 68 after boundary backoff", len(s))
		}
		if !utf8.ValidString(s) {
			t.Errorf("truncated string is not valid UTF-8: %q", s[len(s)-4:])
		}
	}
}

func TestSerialize_CycleBroken(t *testing.T) {
	payload := map[string]any{"a": 1}
	payload["self"] = payload

	s := Serialize(payload)
	if !strings.Contains(s, "[circular]") {
		t.Errorf("cycle sentinel missing from %q", s)
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	payload := map[string]any{"b": 2, "a": 1, "c": map[string]any{"z": 1, "y": 2}}
	first := Serialize(payload)
	for i := 0; i < 5; i++ {
		if got := Serialize(payload); got != first {
			t.Fatalf("serialization not deterministic")
		}
	}
	if first != `{"a":1,"b":2,"c":{"y":2,"z":1}}` {
		t.Errorf("unexpected serialization: %s", first)
	}
}

func TestCompactTargetAudit_DropsRawJSONLD(t *testing.T) {
	payload := bigPayload(20000)
	compacted := compactTargetAudit(deepCopy(payload))
	audit := compacted[KeyTargetAudit].(map[string]any)
	if _, ok := audit["raw_jsonld"]; ok {
		t.Error("raw_jsonld must be dropped by compaction")
	}
	if _, ok := audit["text_sample"]; ok {
		t.Error("text samples must be dropped by compaction")
	}
	if _, ok := audit["site_metrics"]; !ok {
		t.Error("site_metrics must survive compaction")
	}
}
