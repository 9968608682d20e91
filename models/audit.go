// Package models defines data structures shared across the audit pipeline.
package models

// StructureSignals captures structural markup signals for a single page.
type StructureSignals struct {
	H1                   string  `json:"h1" yaml:"h1"`
	HasH1                bool    `json:"has_h1" yaml:"has_h1"`
	HeaderHierarchyValid bool    `json:"header_hierarchy_valid" yaml:"header_hierarchy_valid"`
	SemanticHTMLScore    float64 `json:"semantic_html_score" yaml:"semantic_html_score"` // 0-10
	ListCount            int     `json:"list_count" yaml:"list_count"`
	TableCount           int     `json:"table_count" yaml:"table_count"`
	ImageCount           int     `json:"image_count" yaml:"image_count"`
	ImagesWithAlt        int     `json:"images_with_alt" yaml:"images_with_alt"`
}

// ContentSignals captures textual content signals for a single page.
type ContentSignals struct {
	Title           string   `json:"title" yaml:"title"`
	MetaDescription string   `json:"meta_description" yaml:"meta_description"`
	TextSample      string   `json:"text_sample" yaml:"text_sample"`
	ToneScore       float64  `json:"tone_score" yaml:"tone_score"` // 0-10, conversational tone
	FAQExamples     []string `json:"faq_examples,omitempty" yaml:"faq_examples,omitempty"`
	TopKeywords     []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"` // ISO-639-1 guess
	WordCount       int      `json:"word_count" yaml:"word_count"`
	LongParagraphs  int      `json:"long_paragraphs" yaml:"long_paragraphs"`
}

// EEATSignals captures experience/expertise/authority/trust signals.
type EEATSignals struct {
	Author             string   `json:"author,omitempty" yaml:"author,omitempty"`
	HasAuthor          bool     `json:"has_author" yaml:"has_author"`
	CitationCount      int      `json:"citation_count" yaml:"citation_count"`
	AuthoritativeLinks int      `json:"authoritative_links" yaml:"authoritative_links"`
	PublishedTime      string   `json:"published_time,omitempty" yaml:"published_time,omitempty"` // ISO-8601 date
	IsStale            bool     `json:"is_stale" yaml:"is_stale"`
	TransparencyPages  []string `json:"transparency_pages,omitempty" yaml:"transparency_pages,omitempty"`
}

// SchemaSignals captures structured-data signals extracted from JSON-LD.
type SchemaSignals struct {
	Present   bool     `json:"present" yaml:"present"`
	Types     []string `json:"types,omitempty" yaml:"types,omitempty"`
	RawJSONLD string   `json:"raw_jsonld,omitempty" yaml:"raw_jsonld,omitempty"` // first block kept per page
}

// PerformanceSignals holds field metrics when a caller can provide them.
// All values are optional; zero means unmeasured.
type PerformanceSignals struct {
	LCPMillis  float64 `json:"lcp_ms,omitempty" yaml:"lcp_ms,omitempty"`
	CLS        float64 `json:"cls,omitempty" yaml:"cls,omitempty"`
	TTFBMillis float64 `json:"ttfb_ms,omitempty" yaml:"ttfb_ms,omitempty"`
}

// PageAuditSummary is the per-page output of a PageAuditor. It is read-only
// as far as aggregation is concerned.
type PageAuditSummary struct {
	URL         string              `json:"url" yaml:"url"`
	Path        string              `json:"path" yaml:"path"`
	HTTPStatus  int                 `json:"http_status" yaml:"http_status"`
	Structure   *StructureSignals   `json:"structure,omitempty" yaml:"structure,omitempty"`
	Content     *ContentSignals     `json:"content,omitempty" yaml:"content,omitempty"`
	EEAT        *EEATSignals        `json:"eeat,omitempty" yaml:"eeat,omitempty"`
	Schema      *SchemaSignals      `json:"schema,omitempty" yaml:"schema,omitempty"`
	Performance *PerformanceSignals `json:"performance,omitempty" yaml:"performance,omitempty"`
	MetaRobots  string              `json:"meta_robots,omitempty" yaml:"meta_robots,omitempty"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Valid reports whether the summary can participate in aggregation math.
// Pages with error statuses or missing required sub-objects are retained for
// error reporting but excluded from averages and coverage counts.
func (p *PageAuditSummary) Valid() bool {
	if p == nil {
		return false
	}
	if p.HTTPStatus >= 400 {
		return false
	}
	return p.Structure != nil && p.Content != nil
}
