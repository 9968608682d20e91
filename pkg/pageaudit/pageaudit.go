// Package pageaudit produces the per-page signal summary the aggregation and
// scoring stages consume. It fetches a page once and extracts structure,
// content, E-E-A-T, and structured-data signals from the same document.
package pageaudit

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/analytics"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/fetcher"
)

// textSampleLen caps the text sample carried in the summary. Downstream
// context budgeting truncates further when needed.
const textSampleLen = 1000

// topKeywordCount is how many content keywords each page contributes.
const topKeywordCount = 10

// longParagraphWords marks a paragraph as hard to skim.
const longParagraphWords = 120

type Auditor struct {
	fetcher *fetcher.Fetcher
	words   *analytics.Analytics
	langs   lingua.LanguageDetector
	logger  *slog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f *fetcher.Fetcher) Option {
	return func(a *Auditor) { a.fetcher = f }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) { a.logger = logger }
}

// New builds a page auditor. The language detector is built once here; it is
// expensive to construct and safe for concurrent use.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		fetcher: fetcher.NewFetcher(),
		words:   &analytics.Analytics{},
		langs: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Spanish, lingua.Portuguese, lingua.French, lingua.German).
			Build(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit fetches one page and extracts its audit signals. Transport failures
// return an error; HTTP error statuses return a summary carrying the status
// so the page stays visible in aggregation's invalid list.
func (a *Auditor) Audit(ctx context.Context, pageURL string) (*models.PageAuditSummary, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	summary := &models.PageAuditSummary{
		URL:        pageURL,
		Path:       pathOf(parsedURL),
		HTTPStatus: page.StatusCode,
	}
	if page.StatusCode >= 400 {
		return summary, nil
	}

	doc, err := page.Document()
	if err != nil {
		summary.Error = err.Error()
		return summary, nil
	}

	// Readability distills the main content; failures degrade to raw body
	// text rather than dropping the page.
	var article readability.Article
	readabilityParser := readability.NewParser()
	if parsed, err := readabilityParser.Parse(strings.NewReader(string(page.Body)), parsedURL); err == nil {
		article = parsed
	} else {
		a.logger.Debug("readability parse failed, using raw body text", "url", pageURL, "error", err)
	}

	summary.Structure = extractStructure(doc)
	summary.Content = a.extractContent(doc, article)
	summary.EEAT = extractEEAT(doc, article, parsedURL)
	summary.Schema = extractSchema(doc)
	summary.MetaRobots = strings.ToLower(doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
	if page.TTFB > 0 {
		summary.Performance = &models.PerformanceSignals{
			TTFBMillis: float64(page.TTFB.Milliseconds()),
		}
	}
	return summary, nil
}

func pathOf(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
