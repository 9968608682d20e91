package pruner

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

func runningShoesSignals() PageSignals {
	return PageSignals{
		Title:           "Running Shoes Online Store",
		MetaDescription: "Buy running shoes with free guidance",
		H1:              "Running Shoes",
		Category:        "running shoes",
		Brand:           "zapatillas-run",
	}
}

// Scenario from the audit flow: a blocklisted "alternatives" query is dropped,
// a commerce query matching the category survives and gets the market suffix
// only when missing.
func TestPrune_BlocklistAndAccept(t *testing.T) {
	queries := []models.SearchQuery{
		{ID: "q1", Query: "shoe alternatives"},
		{ID: "q2", Query: "best running shoes store Argentina"},
	}
	got := Prune(queries, runningShoesSignals(), "Argentina")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (got %v)", len(got), got)
	}
	if got[0].ID != "q2" {
		t.Errorf("surviving query = %s, want q2", got[0].ID)
	}
	if got[0].Query != "best running shoes store Argentina" {
		t.Errorf("market suffix must not be duplicated: %q", got[0].Query)
	}
}

func TestPrune_MarketSuffixAugmentation(t *testing.T) {
	queries := []models.SearchQuery{{ID: "q1", Query: "buy running shoes online"}}
	got := Prune(queries, runningShoesSignals(), "Argentina")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Query != "buy running shoes online Argentina" {
		t.Errorf("query = %q, want market suffix appended", got[0].Query)
	}
}

func TestPrune_CapsAtFive(t *testing.T) {
	var queries []models.SearchQuery
	for i := 0; i < 10; i++ {
		queries = append(queries, models.SearchQuery{
			ID:    fmt.Sprintf("q%d", i),
			Query: fmt.Sprintf("buy running shoes model %d", i),
		})
	}
	got := Prune(queries, runningShoesSignals(), "")
	if len(got) != MaxQueries {
		t.Errorf("len = %d, want %d", len(got), MaxQueries)
	}
	// Input order preserved.
	for i, q := range got {
		if q.ID != fmt.Sprintf("q%d", i) {
			t.Errorf("position %d = %s, want q%d", i, q.ID, i)
		}
	}
}

func TestPrune_Deterministic(t *testing.T) {
	queries := []models.SearchQuery{
		{ID: "a", Query: "running shoes vs trail shoes"},
		{ID: "b", Query: "zapatillas-run store"},
		{ID: "c", Query: "weather in buenos aires"},
	}
	first := Prune(queries, runningShoesSignals(), "Argentina")
	second := Prune(queries, runningShoesSignals(), "Argentina")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pruning not deterministic: %v vs %v", first, second)
	}
}

func TestAccept_Rules(t *testing.T) {
	sig := runningShoesSignals()
	cases := []struct {
		name  string
		query string
		want  bool
	}{
		{"category+commerce", "running shoes online store", true},
		{"brand+commerce", "zapatillas-run best prices", true},
		{"category+competitor", "running shoes vs trail runners", true},
		{"two features without commerce", "zapatillas-run similar brands running", true},
		{"generic informational", "how does weather affect marathons", false},
		{"blocklisted shipping", "running shoes shipping times", false},
		{"blocklisted careers", "running shoes careers", false},
		{"empty", "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Accept(tc.query, sig); got != tc.want {
				t.Errorf("Accept(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestPrune_ZeroAccepted(t *testing.T) {
	queries := []models.SearchQuery{
		{ID: "q1", Query: "company privacy policy"},
		{ID: "q2", Query: "weekend weather forecast"},
	}
	got := Prune(queries, runningShoesSignals(), "Argentina")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 so the orchestrator can flag incomplete output", len(got))
	}
}
