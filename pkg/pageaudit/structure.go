package pageaudit

import (
	"bufio"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

func extractStructure(doc *goquery.Document) *models.StructureSignals {
	s := &models.StructureSignals{}

	s.H1 = normalizeText(doc.Find("h1").First().Text())
	s.HasH1 = s.H1 != ""
	s.HeaderHierarchyValid = headerHierarchyValid(doc)
	s.ListCount = doc.Find("ul,ol,dl").Length()
	s.TableCount = doc.Find("table").Length()

	doc.Find("img").Each(func(i int, img *goquery.Selection) {
		s.ImageCount++
		if alt, ok := img.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			s.ImagesWithAlt++
		}
	})

	s.SemanticHTMLScore = semanticScore(doc, s)
	return s
}

// headerHierarchyValid walks headings in document order and rejects any
// forward jump of more than one level, including starting deeper than h1.
func headerHierarchyValid(doc *goquery.Document) bool {
	valid := true
	prev := 0
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(i int, h *goquery.Selection) {
		level := int(goquery.NodeName(h)[1] - '0')
		if level > prev+1 {
			valid = false
		}
		prev = level
	})
	return valid
}

// semanticScore rates markup quality 0-10 from landmark usage, heading
// discipline, and image alt coverage.
func semanticScore(doc *goquery.Document, s *models.StructureSignals) float64 {
	score := 0.0
	for tag, points := range map[string]float64{
		"main": 2, "article": 1.5, "nav": 1, "header": 0.5, "footer": 0.5, "aside": 0.5, "section": 1,
	} {
		if doc.Find(tag).Length() > 0 {
			score += points
		}
	}
	if s.HasH1 {
		score += 1
	}
	if s.HeaderHierarchyValid {
		score += 1
	}
	if s.ImageCount > 0 {
		score += float64(s.ImagesWithAlt) / float64(s.ImageCount)
	}
	if score > 10 {
		score = 10
	}
	return score
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
