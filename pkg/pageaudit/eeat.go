package pageaudit

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/classify"
)

// staleAfter is the content age beyond which a dated page counts as stale.
const staleAfter = 548 * 24 * time.Hour // ~18 months

var bracketCitation = regexp.MustCompile(`\[\d{1,3}\]`)

// transparencyPaths maps URL path fragments to the transparency page they
// indicate, in English and Spanish.
var transparencyPaths = map[string]string{
	"about": "about", "about-us": "about", "quienes-somos": "about", "nosotros": "about",
	"contact": "contact", "contacto": "contact",
	"privacy": "privacy", "privacidad": "privacy",
	"terms": "terms", "terminos": "terms",
	"faq": "faq", "preguntas-frecuentes": "faq",
}

func extractEEAT(doc *goquery.Document, article readability.Article, pageURL *url.URL) *models.EEATSignals {
	e := &models.EEATSignals{}

	e.Author = findAuthor(doc, article)
	e.HasAuthor = e.Author != ""

	bodyText := doc.Find("body").Text()
	e.CitationCount = doc.Find("cite, sup a").Length() + len(bracketCitation.FindAllString(bodyText, 50))

	e.PublishedTime = findPublishedTime(doc, article)
	if published, err := time.Parse("2006-01-02", e.PublishedTime); err == nil {
		e.IsStale = time.Since(published) > staleAfter
	}

	ownHost := strings.TrimPrefix(strings.ToLower(pageURL.Host), "www.")
	transparency := make(map[string]bool)
	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		target, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		host := strings.TrimPrefix(strings.ToLower(target.Host), "www.")
		if host != "" && host != ownHost && classify.IsAuthoritativeHost(host) {
			e.AuthoritativeLinks++
		}
		if host == "" || host == ownHost {
			for fragment, label := range transparencyPaths {
				if pathHasSegment(target.Path, fragment) {
					transparency[label] = true
				}
			}
		}
	})

	for label := range transparency {
		e.TransparencyPages = append(e.TransparencyPages, label)
	}
	sort.Strings(e.TransparencyPages)
	return e
}

func findAuthor(doc *goquery.Document, article readability.Article) string {
	candidates := []string{
		doc.Find(`meta[name="author"]`).AttrOr("content", ""),
		article.Byline,
		doc.Find(`[rel="author"]`).First().Text(),
		doc.Find(`[itemprop="author"]`).First().Text(),
	}
	for _, c := range candidates {
		if c = normalizeText(c); c != "" {
			return c
		}
	}
	return ""
}

// findPublishedTime returns an ISO date or empty when the page is undated.
func findPublishedTime(doc *goquery.Document, article readability.Article) string {
	if article.PublishedTime != nil {
		return article.PublishedTime.Format("2006-01-02")
	}
	for _, selector := range []string{
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
	} {
		if raw := strings.TrimSpace(doc.Find(selector).AttrOr("content", "")); raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				return t.Format("2006-01-02")
			}
			if t, err := time.Parse("2006-01-02", raw); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	if raw := strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", "")); raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}

func pathHasSegment(path, fragment string) bool {
	for _, segment := range strings.Split(strings.ToLower(strings.Trim(path, "/")), "/") {
		segment = strings.TrimSuffix(segment, ".html")
		if segment == fragment {
			return true
		}
	}
	return false
}
