// Package classify contains pure heuristic classifiers for URLs, link
// targets, and query tokens. The functions here carry no pipeline state so
// the rules can evolve without touching orchestration control flow.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// productPathPatterns match URL paths that usually belong to product detail
// pages on commerce sites.
var productPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/(product|products|item|items|p)/`),
	regexp.MustCompile(`(?i)/(dp|sku)/[A-Za-z0-9]+`),
	regexp.MustCompile(`(?i)-p-?\d+(\.html)?$`),
}

// categoryPathPatterns match listing/collection pages.
var categoryPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/(category|categories|collection|collections|shop|catalog|c)/`),
	regexp.MustCompile(`(?i)/(tienda|categoria|categorias)/`),
}

// IsProductPath reports whether a URL path looks like a product detail page.
func IsProductPath(path string) bool {
	for _, pat := range productPathPatterns {
		if pat.MatchString(path) {
			return true
		}
	}
	return false
}

// IsCategoryPath reports whether a URL path looks like a category or
// collection listing page.
func IsCategoryPath(path string) bool {
	for _, pat := range categoryPathPatterns {
		if pat.MatchString(path) {
			return true
		}
	}
	return false
}

// productSchemaTypes are JSON-LD @type values that mark commerce pages.
var productSchemaTypes = map[string]bool{
	"product":        true,
	"offer":          true,
	"aggregateoffer": true,
	"productgroup":   true,
}

// HasProductSchema reports whether any schema type marks a product page.
func HasProductSchema(types []string) bool {
	for _, t := range types {
		if productSchemaTypes[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

// commerceTerms signal purchase intent in a search query.
var commerceTerms = []string{
	"buy", "shop", "store", "price", "prices", "cheap", "deal", "deals",
	"online", "order", "sale", "discount", "best", "top",
	"comprar", "tienda", "precio", "precios", "oferta", "ofertas", "mejor", "mejores",
}

// HasCommerceTerm reports whether the query contains a purchase-intent term.
func HasCommerceTerm(query string) bool {
	lower := strings.ToLower(query)
	for _, term := range commerceTerms {
		if containsToken(lower, term) {
			return true
		}
	}
	return false
}

// competitorMarkers signal an explicitly comparative query.
var competitorMarkers = []string{"vs", "versus", "competitor", "competitors", "similar", "like"}

// HasCompetitorMarker reports whether the query compares against rivals.
func HasCompetitorMarker(query string) bool {
	lower := strings.ToLower(query)
	for _, term := range competitorMarkers {
		if containsToken(lower, term) {
			return true
		}
	}
	return false
}

// authoritativeSuffixes and authoritativeDomains identify citation targets
// that count toward E-E-A-T authority.
var authoritativeSuffixes = []string{".gov", ".edu", ".mil", ".ac.uk", ".gob.ar", ".gob.mx"}

var authoritativeDomains = []string{
	"arxiv.org", "doi.org", "pubmed.ncbi.nlm.nih.gov", "scholar.google.com",
	"who.int", "nih.gov", "nature.com", "sciencedirect.com", "wikipedia.org",
}

// IsAuthoritativeHost reports whether a link host counts as an authoritative
// citation target.
func IsAuthoritativeHost(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range authoritativeSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	for _, domain := range authoritativeDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// ymylCategories are category stems where content quality has direct
// wellbeing or financial impact.
var ymylCategories = []string{
	"health", "medical", "medicine", "pharma", "finance", "financial",
	"insurance", "legal", "law", "loans", "investment", "tax", "safety",
}

// IsYMYLCategory reports whether a category string falls in a
// Your-Money-Your-Life vertical.
func IsYMYLCategory(category string) bool {
	lower := strings.ToLower(category)
	for _, stem := range ymylCategories {
		if strings.Contains(lower, stem) {
			return true
		}
	}
	return false
}

// BrandToken extracts the brand token from a site URL: the registrable label
// left of the public suffix, lowercased ("www.zapatillas-run.com.ar" ->
// "zapatillas-run").
func BrandToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		host = rawURL
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// TokenOverlap reports whether the two phrases share at least one token of
// three or more characters.
func TokenOverlap(a, b string) bool {
	tokensA := tokenSet(a)
	for _, tok := range strings.Fields(strings.ToLower(b)) {
		if len(tok) >= 3 && tokensA[tok] {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if len(tok) >= 3 {
			set[tok] = true
		}
	}
	return set
}

// containsToken matches term as a whole word inside lower-cased text.
func containsToken(lower, term string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], term)
		if i == -1 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isWordByte(lower[start-1])
		afterOK := end == len(lower) || !isWordByte(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
