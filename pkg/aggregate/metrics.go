package aggregate

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/classify"
)

// computeSiteMetrics is the second aggregation pass: coverage percentages,
// commerce page counts, price stats, and image alt-text coverage.
func computeSiteMetrics(agg *models.SiteAggregate, valid []models.PageAuditSummary) models.SiteMetrics {
	n := float64(len(valid))
	m := models.SiteMetrics{
		SchemaCoveragePercent:          coverage(float64(agg.SchemaPresence.PassCount), n),
		H1CoveragePercent:              coverage(float64(agg.H1Check.PassCount), n),
		HeaderHierarchyCoveragePercent: coverage(float64(agg.HeaderHierarchy.PassCount), n),
	}

	// Semantic score is 0-10; bring it to percent scale before averaging with
	// the two coverage figures.
	semanticPercent := clampPercent(agg.AvgSemanticScore * 10)
	m.StructureScorePercent = round1(clampPercent(
		(semanticPercent + m.H1CoveragePercent + m.HeaderHierarchyCoveragePercent) / 3))

	var images, imagesWithAlt int
	for i := range valid {
		p := &valid[i]
		images += p.Structure.ImageCount
		imagesWithAlt += p.Structure.ImagesWithAlt

		var types []string
		if p.Schema != nil {
			types = p.Schema.Types
		}
		if classify.IsProductPath(p.Path) || classify.HasProductSchema(types) {
			m.ProductPages++
		} else if classify.IsCategoryPath(p.Path) {
			m.CategoryPages++
		}

		if p.Schema != nil && p.Schema.RawJSONLD != "" {
			m.PriceSamples = append(m.PriceSamples, extractPrices(p.Schema.RawJSONLD)...)
		}
	}

	if images > 0 {
		m.ImageAltCoveragePercent = coverage(float64(imagesWithAlt), float64(images))
	}
	if len(m.PriceSamples) > 0 {
		m.PriceMin, m.PriceMax = m.PriceSamples[0], m.PriceSamples[0]
		for _, price := range m.PriceSamples[1:] {
			if price < m.PriceMin {
				m.PriceMin = price
			}
			if price > m.PriceMax {
				m.PriceMax = price
			}
		}
	}
	return m
}

func coverage(passed, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(clampPercent(passed / total * 100))
}

// priceKeys are JSON-LD fields carrying offer prices.
var priceKeys = map[string]bool{"price": true, "lowprice": true, "highprice": true}

// extractPrices walks a raw JSON-LD block and collects price values. JSON-LD
// in the wild carries prices as numbers or as strings ("1299.90", "$1,299"),
// so both forms are parsed.
func extractPrices(rawJSONLD string) []float64 {
	var doc any
	if err := json.Unmarshal([]byte(rawJSONLD), &doc); err != nil {
		return nil
	}
	var prices []float64
	walkPrices(doc, &prices)
	return prices
}

func walkPrices(node any, prices *[]float64) {
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if priceKeys[strings.ToLower(key)] {
				if price, ok := parsePrice(val); ok {
					*prices = append(*prices, price)
					continue
				}
			}
			walkPrices(val, prices)
		}
	case []any:
		for _, item := range v {
			walkPrices(item, prices)
		}
	}
}

func parsePrice(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		if v > 0 {
			return v, true
		}
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.TrimLeft(cleaned, "$€£")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f > 0 {
			return f, true
		}
	}
	return 0, false
}
