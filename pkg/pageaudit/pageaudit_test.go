package pageaudit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const productFixture = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Trail Running Shoes | PeakStride</title>
<meta name="description" content="Shop trail running shoes built for mountain terrain.">
<meta name="author" content="Maria Lopez">
<meta name="robots" content="index, follow">
<meta property="article:published_time" content="2020-03-15T10:00:00Z">
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "Product", "name": "Trail Shoe", "offers": {"@type": "Offer", "price": "129.99"}},
  {"@type": "BreadcrumbList"}
]}
</script>
</head>
<body>
<header><nav>
<a href="/about">About us</a>
<a href="/contacto">Contacto</a>
<a href="/privacy">Privacy policy</a>
</nav></header>
<main>
<h1>Trail Running Shoes</h1>
<h2>Why choose our shoes?</h2>
<p>You deserve shoes that match your stride. We build every pair so you can
run farther on rough mountain terrain without thinking about your feet. Our
designers test each model on real trails before it reaches your door, and we
stand behind every order you place with us.</p>
<h2>Do you ship internationally?</h2>
<p>Yes, we ship worldwide. Your order leaves our warehouse within two days
and we cover the duties for you on most routes.</p>
<ul><li>Waterproof upper</li><li>Carbon plate</li></ul>
<img src="a.jpg" alt="Trail shoe side view">
<img src="b.jpg">
<p>Independent research from <a href="https://www.nih.gov/fitness">the NIH</a>
backs the cushioning design.</p>
</main>
<footer>PeakStride</footer>
</body>
</html>`

func fixtureServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuditProductPage(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK, productFixture)
	summary, err := New().Audit(context.Background(), srv.URL+"/products/trail-shoes")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if summary.HTTPStatus != 200 || !summary.Valid() {
		t.Fatalf("summary status %d valid=%v, want valid 200", summary.HTTPStatus, summary.Valid())
	}
	if summary.Path != "/products/trail-shoes" {
		t.Errorf("Path = %q", summary.Path)
	}
	if summary.MetaRobots != "index, follow" {
		t.Errorf("MetaRobots = %q", summary.MetaRobots)
	}

	st := summary.Structure
	if st.H1 != "Trail Running Shoes" || !st.HasH1 {
		t.Errorf("H1 = %q", st.H1)
	}
	if !st.HeaderHierarchyValid {
		t.Error("h1->h2->h2 should be a valid hierarchy")
	}
	if st.ListCount == 0 {
		t.Error("list not counted")
	}
	if st.ImageCount != 2 || st.ImagesWithAlt != 1 {
		t.Errorf("images = %d with alt %d, want 2/1", st.ImageCount, st.ImagesWithAlt)
	}
	if st.SemanticHTMLScore <= 0 || st.SemanticHTMLScore > 10 {
		t.Errorf("SemanticHTMLScore = %v", st.SemanticHTMLScore)
	}

	c := summary.Content
	if !strings.Contains(c.Title, "Trail Running Shoes") {
		t.Errorf("Title = %q", c.Title)
	}
	if c.MetaDescription == "" {
		t.Error("meta description missing")
	}
	if c.WordCount == 0 || c.TextSample == "" {
		t.Errorf("text not extracted, words=%d", c.WordCount)
	}
	if c.ToneScore <= 0 {
		t.Error("direct-address copy should score a conversational tone")
	}
	if len(c.FAQExamples) < 2 {
		t.Errorf("FAQExamples = %v, want the two question headings", c.FAQExamples)
	}
	if c.Language != "en" {
		t.Errorf("Language = %q, want en", c.Language)
	}
	if len(c.TopKeywords) == 0 {
		t.Error("no keywords extracted")
	}

	e := summary.EEAT
	if e.Author != "Maria Lopez" || !e.HasAuthor {
		t.Errorf("Author = %q", e.Author)
	}
	if e.PublishedTime != "2020-03-15" {
		t.Errorf("PublishedTime = %q", e.PublishedTime)
	}
	if !e.IsStale {
		t.Error("a 2020 page should be stale")
	}
	if e.AuthoritativeLinks != 1 {
		t.Errorf("AuthoritativeLinks = %d, want 1 (nih.gov)", e.AuthoritativeLinks)
	}
	for _, want := range []string{"about", "contact", "privacy"} {
		if !containsString(e.TransparencyPages, want) {
			t.Errorf("TransparencyPages = %v, missing %q", e.TransparencyPages, want)
		}
	}

	sc := summary.Schema
	if !sc.Present || sc.RawJSONLD == "" {
		t.Fatal("JSON-LD not detected")
	}
	for _, want := range []string{"BreadcrumbList", "Offer", "Product"} {
		if !containsString(sc.Types, want) {
			t.Errorf("Types = %v, missing %q", sc.Types, want)
		}
	}
}

func TestAuditErrorStatusKeepsStatus(t *testing.T) {
	srv := fixtureServer(t, http.StatusNotFound, "<html><body>gone</body></html>")
	summary, err := New().Audit(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if summary.HTTPStatus != 404 {
		t.Errorf("HTTPStatus = %d, want 404", summary.HTTPStatus)
	}
	if summary.Valid() {
		t.Error("error page must not be valid for aggregation")
	}
	if summary.Structure != nil {
		t.Error("error pages should not be parsed")
	}
}

func TestAuditTransportFailure(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK, productFixture)
	url := srv.URL
	srv.Close()

	if _, err := New().Audit(context.Background(), url); err == nil {
		t.Fatal("want transport error for closed server")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
