package fixplan

import (
	"testing"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

func failingAggregate() *models.SiteAggregate {
	return &models.SiteAggregate{
		PagesAnalyzed: 2,
		H1Check: models.PageCheck{
			Status: models.CheckWarn, FailedPages: []string{"/about"}, FailCount: 1, PassCount: 1,
		},
		SchemaPresence: models.PageCheck{
			Status: models.CheckFail, FailedPages: []string{"/", "/about"}, FailCount: 2,
		},
		AuthorPresence: models.PageCheck{
			Status: models.CheckWarn, FailedPages: []string{"/"}, FailCount: 1, PassCount: 1,
		},
		FAQDetection: models.PageCheck{Status: models.CheckFail, FailCount: 2},
		Transparency: models.PageCheck{Status: models.CheckPass, PassCount: 2},
		Freshness:    models.PageCheck{Status: models.CheckPass, PassCount: 2},
		AuthoritativeLinks: models.PageCheck{
			Status: models.CheckPass, PassCount: 1, FailCount: 1,
		},
	}
}

func TestEnrich_NoDuplicateKeys(t *testing.T) {
	plan := Enrich(nil, failingAggregate(), nil)
	seen := make(map[string]bool)
	for _, item := range plan {
		key := item.PagePath + "|" + item.IssueCode
		if seen[key] {
			t.Errorf("duplicate (page_path, issue_code): %s", key)
		}
		seen[key] = true
	}
}

func TestEnrich_LLMItemNeverShadowed(t *testing.T) {
	llm := []models.FixPlanItem{{
		PagePath:    "/about",
		IssueCode:   CodeH1Missing,
		Priority:    models.PriorityLow, // deliberately different from the rule's CRITICAL
		Description: "llm-written description",
		Source:      "llm",
	}}
	plan := Enrich(llm, failingAggregate(), nil)

	var found *models.FixPlanItem
	for i := range plan {
		if plan[i].PagePath == "/about" && plan[i].IssueCode == CodeH1Missing {
			if found != nil {
				t.Fatal("same key present twice")
			}
			found = &plan[i]
		}
	}
	if found == nil {
		t.Fatal("LLM item dropped")
	}
	if found.Source != "llm" || found.Description != "llm-written description" {
		t.Errorf("LLM item was overridden by enrichment: %+v", found)
	}
}

func TestEnrich_PrioritySortStable(t *testing.T) {
	llm := []models.FixPlanItem{
		{PagePath: "/x", IssueCode: "LLM_A", Priority: models.PriorityMedium},
		{PagePath: "/y", IssueCode: "LLM_B", Priority: models.PriorityMedium},
	}
	plan := Enrich(llm, failingAggregate(), nil)

	for i := 1; i < len(plan); i++ {
		if plan[i].Priority < plan[i-1].Priority {
			t.Fatalf("plan not sorted by priority at %d: %v then %v",
				i, plan[i-1].Priority, plan[i].Priority)
		}
	}
	// Within MEDIUM, the two LLM items keep their insertion order and precede
	// rule-sourced MEDIUM items.
	var mediums []models.FixPlanItem
	for _, item := range plan {
		if item.Priority == models.PriorityMedium {
			mediums = append(mediums, item)
		}
	}
	if len(mediums) < 3 {
		t.Fatalf("expected LLM and rule MEDIUM items, got %v", mediums)
	}
	if mediums[0].IssueCode != "LLM_A" || mediums[1].IssueCode != "LLM_B" {
		t.Errorf("LLM items must precede rule items on ties: %v", mediums)
	}
}

func TestEnrich_PerformanceThresholds(t *testing.T) {
	pages := []models.PageAuditSummary{{
		Path:       "/",
		HTTPStatus: 200,
		Structure:  &models.StructureSignals{HasH1: true},
		Content:    &models.ContentSignals{},
		Performance: &models.PerformanceSignals{
			LCPMillis:  3000, // above 2500
			CLS:        0.05, // below 0.1
			TTFBMillis: 900,  // above 800
		},
	}}
	plan := Enrich(nil, nil, pages)

	codes := make(map[string]models.FixPriority)
	for _, item := range plan {
		codes[item.IssueCode] = item.Priority
	}
	if p, ok := codes[CodeLCPSlow]; !ok || p != models.PriorityHigh {
		t.Errorf("LCP item = %v, want HIGH", codes)
	}
	if _, ok := codes[CodeCLSHigh]; ok {
		t.Error("CLS below threshold must not raise an item")
	}
	if p, ok := codes[CodeTTFBSlow]; !ok || p != models.PriorityHigh {
		t.Errorf("TTFB item = %v, want HIGH", codes)
	}
}

func TestEnrich_ProductSchemaGap(t *testing.T) {
	pages := []models.PageAuditSummary{{
		Path:       "/product/blue-shoe",
		HTTPStatus: 200,
		Structure:  &models.StructureSignals{},
		Content:    &models.ContentSignals{},
		Schema:     &models.SchemaSignals{Present: true, Types: []string{"WebPage"}},
	}}
	plan := Enrich(nil, nil, pages)

	found := false
	for _, item := range plan {
		if item.IssueCode == CodeProductSchemaGap && item.PagePath == "/product/blue-shoe" {
			found = true
			if item.Priority != models.PriorityHigh {
				t.Errorf("priority = %v, want HIGH", item.Priority)
			}
		}
	}
	if !found {
		t.Error("product page without Product schema must raise PRODUCT_SCHEMA_GAP")
	}
}

func TestEnrich_SiteWideItemsUseAllPages(t *testing.T) {
	plan := Enrich(nil, failingAggregate(), nil)
	foundFAQ := false
	for _, item := range plan {
		if item.IssueCode == CodeFAQMissing {
			foundFAQ = true
			if item.PagePath != models.AllPages {
				t.Errorf("FAQ item page_path = %q, want %q", item.PagePath, models.AllPages)
			}
		}
		if item.IssueCode == CodeCitationsMissing {
			t.Error("citations item must not be raised when some pages pass")
		}
	}
	if !foundFAQ {
		t.Error("FAQ_MISSING expected when no page has FAQ content")
	}
}
