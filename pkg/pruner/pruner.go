// Package pruner filters machine-proposed competitor-discovery search
// queries against relevance heuristics.
//
// The search API quota is fixed and external, so generic, purely-branded, or
// non-competitive queries are dropped before any call is spent. Queries are
// only dropped, never rewritten, except for market suffix augmentation on
// accepted queries.
package pruner

import (
	"strings"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/classify"
)

// MaxQueries caps the pruned output.
const MaxQueries = 5

// blockedTerms reject a query unconditionally: "alternatives" queries surface
// review listicles instead of competitors, and shipping/policy/HR queries
// surface the audited site's own service pages.
var blockedTerms = []string{
	"alternative", "alternatives", "alternativa", "alternativas",
	"shipping", "delivery", "envio", "envios",
	"return policy", "returns", "refund", "devoluciones",
	"privacy", "terms of service", "terms and conditions",
	"careers", "jobs", "hiring", "vacancies", "empleo",
	"login", "sign in", "my account", "customer service", "contact us",
}

// PageSignals carries the audited-page context the heuristics match against.
type PageSignals struct {
	Title           string
	MetaDescription string
	H1              string
	TextSample      string
	Category        string
	Subcategory     string
	Brand           string
}

// features is the boolean profile of one query against the page signals.
type features struct {
	hasBrand            bool
	hasCategory         bool
	hasCommerceTerm     bool
	hasCompetitorMarker bool
}

func (f features) score() int {
	n := 0
	if f.hasBrand {
		n++
	}
	if f.hasCategory {
		n++
	}
	if f.hasCommerceTerm {
		n++
	}
	if f.hasCompetitorMarker {
		n++
	}
	return n
}

// Prune returns at most MaxQueries accepted queries in input order, with the
// market suffix appended to accepted queries that lack it. The result is
// deterministic for a given input.
func Prune(queries []models.SearchQuery, sig PageSignals, market string) []models.SearchQuery {
	accepted := make([]models.SearchQuery, 0, MaxQueries)
	for _, q := range queries {
		if len(accepted) == MaxQueries {
			break
		}
		if !Accept(q.Query, sig) {
			continue
		}
		q.Query = augmentMarket(q.Query, market)
		accepted = append(accepted, q)
	}
	return accepted
}

// Accept applies the blocklist and the four acceptance rules to one query.
func Accept(query string, sig PageSignals) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return false
	}
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}

	f := profile(lower, sig)
	switch {
	case f.hasCategory && f.hasCommerceTerm:
		return true
	case f.hasBrand && f.hasCommerceTerm:
		return true
	case f.hasCategory && f.hasCompetitorMarker:
		return true
	case f.score() >= 2:
		return true
	}
	return false
}

func profile(lowerQuery string, sig PageSignals) features {
	return features{
		hasBrand:            matchesBrand(lowerQuery, sig.Brand),
		hasCategory:         matchesCategory(lowerQuery, sig),
		hasCommerceTerm:     classify.HasCommerceTerm(lowerQuery),
		hasCompetitorMarker: classify.HasCompetitorMarker(lowerQuery),
	}
}

func matchesBrand(lowerQuery, brand string) bool {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return false
	}
	return strings.Contains(lowerQuery, brand)
}

// matchesCategory checks the category and subcategory exactly, then falls
// back to token overlap against the strongest page signals.
func matchesCategory(lowerQuery string, sig PageSignals) bool {
	for _, candidate := range []string{sig.Category, sig.Subcategory} {
		c := strings.ToLower(strings.TrimSpace(candidate))
		if c == "" {
			continue
		}
		if strings.Contains(lowerQuery, c) {
			return true
		}
		if classify.TokenOverlap(lowerQuery, c) {
			return true
		}
	}
	for _, signal := range []string{sig.H1, sig.Title, sig.MetaDescription} {
		if signal != "" && classify.TokenOverlap(lowerQuery, signal) {
			return true
		}
	}
	return false
}

// augmentMarket appends the market name unless the query already names it.
func augmentMarket(query, market string) string {
	market = strings.TrimSpace(market)
	if market == "" {
		return query
	}
	if strings.Contains(strings.ToLower(query), strings.ToLower(market)) {
		return query
	}
	return query + " " + market
}
