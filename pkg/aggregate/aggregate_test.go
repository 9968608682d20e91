package aggregate

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

func page(path string, status int, hasH1, hasSchema bool) models.PageAuditSummary {
	schema := &models.SchemaSignals{}
	if hasSchema {
		schema.Present = true
		schema.Types = []string{"WebPage"}
	}
	return models.PageAuditSummary{
		URL:        "https://example.com" + path,
		Path:       path,
		HTTPStatus: status,
		Structure: &models.StructureSignals{
			H1:                   "Heading",
			HasH1:                hasH1,
			HeaderHierarchyValid: true,
			SemanticHTMLScore:    7.0,
		},
		Content: &models.ContentSignals{
			Title:     "Title " + path,
			ToneScore: 6.0,
		},
		EEAT:   &models.EEATSignals{HasAuthor: true},
		Schema: schema,
	}
}

// Three pages, 3/3 H1 pass, 2/3 schema present: schema check warns with two
// passing pages while the H1 check passes outright.
func TestAggregate_SchemaWarnH1Pass(t *testing.T) {
	pages := []models.PageAuditSummary{
		page("/", 200, true, true),
		page("/about", 200, true, true),
		page("/blog", 200, true, false),
	}
	agg, err := Aggregate("example.com", pages)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if agg.SchemaPresence.Status != models.CheckWarn {
		t.Errorf("schema_presence.status = %s, want warn", agg.SchemaPresence.Status)
	}
	if agg.SchemaPresence.PassCount != 2 {
		t.Errorf("pages_with_schema = %d, want 2", agg.SchemaPresence.PassCount)
	}
	if agg.H1Check.Status != models.CheckPass {
		t.Errorf("h1_check.status = %s, want pass", agg.H1Check.Status)
	}
	if agg.PagesAnalyzed != 3 {
		t.Errorf("pages_analyzed = %d, want 3", agg.PagesAnalyzed)
	}
}

func TestAggregate_SingleElementPassThrough(t *testing.T) {
	p := page("/landing", 200, true, true)
	agg, err := Aggregate("example.com", []models.PageAuditSummary{p})
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if agg.PagesAnalyzed != 1 {
		t.Errorf("pages_analyzed = %d, want 1", agg.PagesAnalyzed)
	}
	if len(agg.PagePaths) != 1 || agg.PagePaths[0] != "/landing" {
		t.Errorf("page_paths = %v, want the page's own path", agg.PagePaths)
	}
	if agg.AvgSemanticScore != p.Structure.SemanticHTMLScore {
		t.Errorf("avg_semantic = %v, want the single page's score %v",
			agg.AvgSemanticScore, p.Structure.SemanticHTMLScore)
	}
	if agg.AvgToneScore != p.Content.ToneScore {
		t.Errorf("avg_tone = %v, want %v", agg.AvgToneScore, p.Content.ToneScore)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	pages := []models.PageAuditSummary{
		page("/", 200, true, true),
		page("/a", 200, false, true),
		page("/b", 200, true, false),
		page("/c", 404, true, true),
		page("/d", 200, false, false),
	}
	want, err := Aggregate("example.com", pages)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]models.PageAuditSummary, len(pages))
		copy(shuffled, pages)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := Aggregate("example.com", shuffled)
		if err != nil {
			t.Fatalf("Aggregate() failed on shuffle %d: %v", trial, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("aggregation depends on input order (shuffle %d)", trial)
		}
	}
}

func TestAggregate_InvalidPagesExcludedButReported(t *testing.T) {
	pages := []models.PageAuditSummary{
		page("/", 200, true, true),
		page("/broken", 503, true, true),
		{URL: "https://example.com/empty", Path: "/empty", HTTPStatus: 200}, // missing sub-objects
	}
	agg, err := Aggregate("example.com", pages)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if agg.PagesAnalyzed != 1 {
		t.Errorf("pages_analyzed = %d, want 1", agg.PagesAnalyzed)
	}
	if len(agg.InvalidPages) != 2 {
		t.Fatalf("invalid_pages = %v, want 2 entries", agg.InvalidPages)
	}
	if agg.InvalidPages[0].Path != "/broken" || agg.InvalidPages[0].HTTPStatus != 503 {
		t.Errorf("invalid page entry = %+v", agg.InvalidPages[0])
	}
}

func TestAggregate_NoValidPages(t *testing.T) {
	pages := []models.PageAuditSummary{
		page("/x", 500, true, true),
	}
	_, err := Aggregate("example.com", pages)
	if !errors.Is(err, ErrNoValidPages) {
		t.Errorf("err = %v, want ErrNoValidPages", err)
	}
}

func TestAggregate_HomepageCapturedSeparately(t *testing.T) {
	home := page("/", 200, true, true)
	home.Structure.H1 = "Welcome Home"
	home.Content.MetaDescription = "Everything for the home, shipped fast"
	home.Content.TextSample = "We sell furniture and decor for every room."
	pages := []models.PageAuditSummary{home, page("/about", 200, false, true)}
	agg, err := Aggregate("example.com", pages)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if agg.Homepage == nil || !agg.Homepage.HasH1 || agg.Homepage.H1 != "Welcome Home" {
		t.Errorf("homepage = %+v, want captured H1 status", agg.Homepage)
	}
	if agg.Homepage.MetaDescription != "Everything for the home, shipped fast" {
		t.Errorf("MetaDescription = %q, want homepage meta description", agg.Homepage.MetaDescription)
	}
	if agg.Homepage.TextSample != "We sell furniture and decor for every room." {
		t.Errorf("TextSample = %q, want homepage text sample", agg.Homepage.TextSample)
	}
}

func TestAggregate_PercentagesClamped(t *testing.T) {
	pages := []models.PageAuditSummary{page("/", 200, true, true)}
	pages[0].Structure.SemanticHTMLScore = 42 // out-of-range input
	agg, err := Aggregate("example.com", pages)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	metrics := agg.SiteMetrics
	for name, v := range map[string]float64{
		"schema_coverage":    metrics.SchemaCoveragePercent,
		"h1_coverage":        metrics.H1CoveragePercent,
		"header_coverage":    metrics.HeaderHierarchyCoveragePercent,
		"structure_score":    metrics.StructureScorePercent,
		"image_alt_coverage": metrics.ImageAltCoveragePercent,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %v, want within [0,100]", name, v)
		}
	}
}

func TestAggregate_SchemaTypeUnion(t *testing.T) {
	a := page("/a", 200, true, true)
	a.Schema.Types = []string{"Product", "WebPage"}
	b := page("/b", 200, true, true)
	b.Schema.Types = []string{"WebPage", "FAQPage"}
	agg, err := Aggregate("example.com", []models.PageAuditSummary{a, b})
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	want := []string{"FAQPage", "Product", "WebPage"}
	if !reflect.DeepEqual(agg.SchemaTypes, want) {
		t.Errorf("schema_types = %v, want %v", agg.SchemaTypes, want)
	}
}

func TestExtractPrices_TolerantParsing(t *testing.T) {
	raw := `{
		"@type": "Product",
		"offers": [
			{"price": "1299.90"},
			{"price": 899},
			{"lowPrice": "$1,100", "highPrice": "2,000"},
			{"price": "not-a-price"}
		]
	}`
	prices := extractPrices(raw)
	if len(prices) != 4 {
		t.Fatalf("prices = %v, want 4 parsed values", prices)
	}
}

func TestComputeSiteMetrics_ProductAndCategoryCounts(t *testing.T) {
	prod := page("/product/shoe-1", 200, true, true)
	prodBySchema := page("/item-detail", 200, true, true)
	prodBySchema.Schema.Types = []string{"Product"}
	cat := page("/category/shoes", 200, true, true)
	plain := page("/about", 200, true, true)

	agg, err := Aggregate("example.com", []models.PageAuditSummary{prod, prodBySchema, cat, plain})
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}
	if agg.SiteMetrics.ProductPages != 2 {
		t.Errorf("product_pages = %d, want 2", agg.SiteMetrics.ProductPages)
	}
	if agg.SiteMetrics.CategoryPages != 1 {
		t.Errorf("category_pages = %d, want 1", agg.SiteMetrics.CategoryPages)
	}
}
