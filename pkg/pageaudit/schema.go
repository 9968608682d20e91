package pageaudit

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// extractSchema parses JSON-LD blocks into schema signals. Only the first
// block's raw text is retained per page; types are unioned across blocks.
func extractSchema(doc *goquery.Document) *models.SchemaSignals {
	s := &models.SchemaSignals{}
	types := make(map[string]bool)

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, script *goquery.Selection) {
		raw := strings.TrimSpace(script.Text())
		if raw == "" {
			return
		}

		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}
		s.Present = true
		if s.RawJSONLD == "" {
			s.RawJSONLD = raw
		}
		collectTypes(payload, types)
	})

	for t := range types {
		s.Types = append(s.Types, t)
	}
	sort.Strings(s.Types)
	return s
}

// collectTypes walks a JSON-LD value gathering every @type, including nested
// entities and @graph members.
func collectTypes(node any, types map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			if t != "" {
				types[t] = true
			}
		case []any:
			for _, entry := range t {
				if name, ok := entry.(string); ok && name != "" {
					types[name] = true
				}
			}
		}
		for _, child := range v {
			collectTypes(child, types)
		}
	case []any:
		for _, entry := range v {
			collectTypes(entry, types)
		}
	}
}
