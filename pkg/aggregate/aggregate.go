// Package aggregate merges per-page audit summaries into one site-level
// model. Aggregation is order-independent: pages are grouped by path, never
// by arrival order, so concurrent page audits can complete in any order.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// ErrNoValidPages marks aggregation input with zero usable page summaries.
// No report is possible in that case.
var ErrNoValidPages = errors.New("no valid page summaries to aggregate")

// Aggregate builds a SiteAggregate from 1..N page summaries. Invalid pages
// (status >= 400 or missing required sub-objects) are excluded from the math
// but retained in InvalidPages for error reporting.
func Aggregate(domain string, pages []models.PageAuditSummary) (*models.SiteAggregate, error) {
	valid := make([]models.PageAuditSummary, 0, len(pages))
	var invalid []models.PageError
	for i := range pages {
		p := &pages[i]
		if p.Valid() {
			valid = append(valid, *p)
			continue
		}
		reason := p.Error
		if reason == "" {
			if p.HTTPStatus >= 400 {
				reason = fmt.Sprintf("http status %d", p.HTTPStatus)
			} else {
				reason = "missing required audit sections"
			}
		}
		invalid = append(invalid, models.PageError{
			Path:       p.Path,
			HTTPStatus: p.HTTPStatus,
			Reason:     reason,
		})
	}
	if len(valid) == 0 {
		return nil, ErrNoValidPages
	}

	// Group by path for deterministic output regardless of completion order.
	sort.Slice(valid, func(i, j int) bool { return valid[i].Path < valid[j].Path })
	sort.Slice(invalid, func(i, j int) bool { return invalid[i].Path < invalid[j].Path })

	agg := &models.SiteAggregate{
		Domain:        domain,
		PagesAnalyzed: len(valid),
		RawJSONLD:     make(map[string]string),
		InvalidPages:  invalid,
	}

	var (
		semanticSum, toneSum float64
		listSum, tableSum    int
		schemaTypes          = make(map[string]bool)
		keywordCounts        = make(map[string]int)
	)

	for i := range valid {
		p := &valid[i]
		agg.PagePaths = append(agg.PagePaths, p.Path)

		record(&agg.H1Check, p.Path, p.Structure.HasH1)
		record(&agg.HeaderHierarchy, p.Path, p.Structure.HeaderHierarchyValid)
		record(&agg.SchemaPresence, p.Path, p.Schema != nil && p.Schema.Present)
		record(&agg.AuthorPresence, p.Path, p.EEAT != nil && p.EEAT.HasAuthor)
		record(&agg.FAQDetection, p.Path, len(p.Content.FAQExamples) > 0)
		record(&agg.Freshness, p.Path, p.EEAT != nil && p.EEAT.PublishedTime != "" && !p.EEAT.IsStale)
		record(&agg.AuthoritativeLinks, p.Path, p.EEAT != nil && p.EEAT.AuthoritativeLinks > 0)
		record(&agg.Transparency, p.Path, p.EEAT != nil && len(p.EEAT.TransparencyPages) > 0)

		semanticSum += p.Structure.SemanticHTMLScore
		toneSum += p.Content.ToneScore
		listSum += p.Structure.ListCount
		tableSum += p.Structure.TableCount

		if p.Schema != nil {
			for _, t := range p.Schema.Types {
				schemaTypes[t] = true
			}
			if p.Schema.RawJSONLD != "" {
				if _, seen := agg.RawJSONLD[p.Path]; !seen {
					agg.RawJSONLD[p.Path] = p.Schema.RawJSONLD
				}
			}
		}
		for _, kw := range p.Content.TopKeywords {
			keywordCounts[kw]++
		}

		if strings.Contains(strings.ToLower(p.MetaRobots), "noindex") {
			agg.NoindexPages = append(agg.NoindexPages, p.Path)
		}

		// Homepage fields are captured apart from site averages.
		if p.Path == "/" {
			agg.Homepage = &models.HomepageStatus{
				HasH1:           p.Structure.HasH1,
				H1:              p.Structure.H1,
				Title:           p.Content.Title,
				MetaDescription: p.Content.MetaDescription,
				TextSample:      p.Content.TextSample,
			}
		}
	}

	n := float64(len(valid))
	agg.AvgSemanticScore = round1(semanticSum / n)
	agg.AvgToneScore = round1(toneSum / n)
	agg.AvgListCount = round1(float64(listSum) / n)
	agg.AvgTableCount = round1(float64(tableSum) / n)

	for t := range schemaTypes {
		agg.SchemaTypes = append(agg.SchemaTypes, t)
	}
	sort.Strings(agg.SchemaTypes)
	agg.TopKeywords = topKeywords(keywordCounts, 15)

	finalize(&agg.H1Check)
	finalize(&agg.HeaderHierarchy)
	finalize(&agg.SchemaPresence)
	finalize(&agg.AuthorPresence)
	finalize(&agg.FAQDetection)
	finalize(&agg.Freshness)
	finalize(&agg.AuthoritativeLinks)
	finalize(&agg.Transparency)

	agg.SiteMetrics = computeSiteMetrics(agg, valid)
	return agg, nil
}

func record(check *models.PageCheck, path string, passed bool) {
	if passed {
		check.PassedPages = append(check.PassedPages, path)
		check.PassCount++
	} else {
		check.FailedPages = append(check.FailedPages, path)
		check.FailCount++
	}
}

func finalize(check *models.PageCheck) {
	switch {
	case check.FailCount == 0:
		check.Status = models.CheckPass
	case check.PassCount == 0:
		check.Status = models.CheckFail
	default:
		check.Status = models.CheckWarn
	}
}

// topKeywords orders by count descending, then alphabetically for stability.
func topKeywords(counts map[string]int, n int) []string {
	type kv struct {
		word  string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for w, c := range counts {
		sorted = append(sorted, kv{w, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].word < sorted[j].word
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	words := make([]string, len(sorted))
	for i, item := range sorted {
		words[i] = item.word
	}
	return words
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
