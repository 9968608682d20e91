package models

// CheckStatus classifies a site-level check outcome.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// PageCheck records which pages passed and failed a single site-level check.
type PageCheck struct {
	Status      CheckStatus `json:"status" yaml:"status"`
	PassedPages []string    `json:"passed_pages,omitempty" yaml:"passed_pages,omitempty"`
	FailedPages []string    `json:"failed_pages,omitempty" yaml:"failed_pages,omitempty"`
	PassCount   int         `json:"pass_count" yaml:"pass_count"`
	FailCount   int         `json:"fail_count" yaml:"fail_count"`
}

// HomepageStatus captures homepage-specific fields kept apart from averages.
type HomepageStatus struct {
	HasH1           bool   `json:"has_h1" yaml:"has_h1"`
	H1              string `json:"h1,omitempty" yaml:"h1,omitempty"`
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty" yaml:"meta_description,omitempty"`
	TextSample      string `json:"text_sample,omitempty" yaml:"text_sample,omitempty"`
}

// SiteMetrics is the second-pass derived metric block of a SiteAggregate.
// All percentages are clamped to [0,100].
type SiteMetrics struct {
	SchemaCoveragePercent          float64   `json:"schema_coverage_percent" yaml:"schema_coverage_percent"`
	H1CoveragePercent              float64   `json:"h1_coverage_percent" yaml:"h1_coverage_percent"`
	HeaderHierarchyCoveragePercent float64   `json:"header_hierarchy_coverage_percent" yaml:"header_hierarchy_coverage_percent"`
	StructureScorePercent          float64   `json:"structure_score_percent" yaml:"structure_score_percent"`
	ImageAltCoveragePercent        float64   `json:"image_alt_coverage_percent" yaml:"image_alt_coverage_percent"`
	ProductPages                   int       `json:"product_pages" yaml:"product_pages"`
	CategoryPages                  int       `json:"category_pages" yaml:"category_pages"`
	PriceSamples                   []float64 `json:"price_samples,omitempty" yaml:"price_samples,omitempty"`
	PriceMin                       float64   `json:"price_min,omitempty" yaml:"price_min,omitempty"`
	PriceMax                       float64   `json:"price_max,omitempty" yaml:"price_max,omitempty"`
}

// PageError describes a page excluded from aggregation math.
type PageError struct {
	Path       string `json:"path" yaml:"path"`
	HTTPStatus int    `json:"http_status" yaml:"http_status"`
	Reason     string `json:"reason" yaml:"reason"`
}

// SiteAggregate merges N per-page audit summaries into one site-level model.
type SiteAggregate struct {
	Domain        string   `json:"domain" yaml:"domain"`
	PagesAnalyzed int      `json:"pages_analyzed" yaml:"pages_analyzed"`
	PagePaths     []string `json:"page_paths" yaml:"page_paths"`

	H1Check            PageCheck `json:"h1_check" yaml:"h1_check"`
	HeaderHierarchy    PageCheck `json:"header_hierarchy" yaml:"header_hierarchy"`
	SchemaPresence     PageCheck `json:"schema_presence" yaml:"schema_presence"`
	AuthorPresence     PageCheck `json:"author_presence" yaml:"author_presence"`
	FAQDetection       PageCheck `json:"faq_detection" yaml:"faq_detection"`
	Freshness          PageCheck `json:"freshness" yaml:"freshness"`
	AuthoritativeLinks PageCheck `json:"authoritative_links" yaml:"authoritative_links"`
	Transparency       PageCheck `json:"transparency" yaml:"transparency"`

	AvgSemanticScore float64 `json:"avg_semantic_score" yaml:"avg_semantic_score"` // 1-decimal
	AvgToneScore     float64 `json:"avg_tone_score" yaml:"avg_tone_score"`         // 1-decimal
	AvgListCount     float64 `json:"avg_list_count" yaml:"avg_list_count"`
	AvgTableCount    float64 `json:"avg_table_count" yaml:"avg_table_count"`

	SchemaTypes []string          `json:"schema_types,omitempty" yaml:"schema_types,omitempty"`
	RawJSONLD   map[string]string `json:"raw_jsonld,omitempty" yaml:"raw_jsonld,omitempty"` // path -> first block

	Homepage    *HomepageStatus `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	SiteMetrics SiteMetrics     `json:"site_metrics" yaml:"site_metrics"`
	TopKeywords []string        `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`

	NoindexPages []string    `json:"noindex_pages,omitempty" yaml:"noindex_pages,omitempty"`
	InvalidPages []PageError `json:"invalid_pages,omitempty" yaml:"invalid_pages,omitempty"`
}

// CompetitorAudit tags a SiteAggregate-like result with its source domain.
// A non-2xx fetch yields the error variant: GEOScore 0, Aggregate nil.
type CompetitorAudit struct {
	Domain     string         `json:"domain" yaml:"domain"`
	URL        string         `json:"url" yaml:"url"`
	HTTPStatus int            `json:"http_status" yaml:"http_status"`
	GEOScore   float64        `json:"geo_score" yaml:"geo_score"`
	Aggregate  *SiteAggregate `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the competitor fetch succeeded and the audit carries
// structural data usable for comparison.
func (c *CompetitorAudit) OK() bool {
	return c != nil && c.HTTPStatus >= 200 && c.HTTPStatus < 300 && c.Aggregate != nil
}
