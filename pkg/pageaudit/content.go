package pageaudit

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// conversationalMarkers are second-person and inclusive pronouns in the
// languages the audited storefronts ship in.
var conversationalMarkers = map[string]bool{
	"you": true, "your": true, "you're": true, "yours": true,
	"we": true, "our": true, "ours": true, "let's": true,
	"tu": true, "tus": true, "usted": true, "ustedes": true,
	"nuestro": true, "nuestra": true, "nuestros": true, "nuestras": true,
}

func (a *Auditor) extractContent(doc *goquery.Document, article readability.Article) *models.ContentSignals {
	c := &models.ContentSignals{}

	c.Title = normalizeText(article.Title)
	if c.Title == "" {
		c.Title = normalizeText(doc.Find("title").First().Text())
	}
	c.MetaDescription = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	text := normalizeText(article.TextContent)
	if text == "" {
		text = normalizeText(doc.Find("body").Text())
	}
	c.TextSample = truncate(text, textSampleLen)
	c.WordCount = len(strings.Fields(text))
	c.ToneScore = toneScore(text)
	c.FAQExamples = extractFAQs(doc)
	c.TopKeywords = a.words.TopNWords(text, topKeywordCount)
	c.Language = a.detectLanguage(c.TextSample)

	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		if len(strings.Fields(p.Text())) > longParagraphWords {
			c.LongParagraphs++
		}
	})
	return c
}

// toneScore rates conversational tone 0-10. Direct address, questions, and
// contractions raise it; flat catalog copy scores low.
func toneScore(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	markers := 0
	contractions := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?¿¡\"'()")
		if conversationalMarkers[w] {
			markers++
		}
		if strings.Contains(w, "'") {
			contractions++
		}
	}
	questions := strings.Count(text, "?") + strings.Count(text, "¿")

	per100 := float64(markers) / float64(len(words)) * 100
	score := per100 * 2
	if score > 6 {
		score = 6
	}
	if questions > 0 {
		score += 2
	}
	if contractions > 0 {
		score += 2
	}
	if score > 10 {
		score = 10
	}
	return round1(score)
}

// extractFAQs collects question-shaped headings and disclosure summaries.
func extractFAQs(doc *goquery.Document) []string {
	var faqs []string
	seen := make(map[string]bool)
	add := func(text string) {
		text = normalizeText(text)
		if text == "" || seen[strings.ToLower(text)] || len(faqs) >= 5 {
			return
		}
		seen[strings.ToLower(text)] = true
		faqs = append(faqs, text)
	}

	doc.Find("h2,h3,h4,summary,dt").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if strings.HasSuffix(text, "?") {
			add(text)
		}
	})
	return faqs
}

func (a *Auditor) detectLanguage(sample string) string {
	if len(sample) < 20 {
		return ""
	}
	lang, ok := a.langs.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// truncate cuts at a rune boundary so multibyte text stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
