package models

// SearchQuery is a machine-proposed competitor-discovery query. Queries are
// only ever dropped by pruning, never rewritten in place, except for market
// suffix augmentation.
type SearchQuery struct {
	ID      string `json:"id" yaml:"id"`
	Query   string `json:"query" yaml:"query"`
	Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// ExternalIntelligence is produced once by the intelligence agent stage and
// immutable afterward. An empty Category is the distinguished "unknown" state
// that drives the retry logic.
type ExternalIntelligence struct {
	IsYMYL       bool          `json:"is_ymyl" yaml:"is_ymyl"`
	Category     string        `json:"category" yaml:"category"`
	Subcategory  string        `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	BusinessType string        `json:"business_type,omitempty" yaml:"business_type,omitempty"`
	Market       string        `json:"market,omitempty" yaml:"market,omitempty"`
	Queries      []SearchQuery `json:"queries,omitempty" yaml:"queries,omitempty"`
}

// CategoryKnown reports whether the intelligence agent identified a category.
func (e *ExternalIntelligence) CategoryKnown() bool {
	return e != nil && e.Category != "" && e.Category != "Unknown Category"
}

// SearchItem is one organic result from a SearchProvider.
type SearchItem struct {
	Title   string `json:"title" yaml:"title"`
	Link    string `json:"link" yaml:"link"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// SearchResult holds the items returned for a single query.
type SearchResult struct {
	Items []SearchItem `json:"items" yaml:"items"`
	Error string       `json:"error,omitempty" yaml:"error,omitempty"`
}
