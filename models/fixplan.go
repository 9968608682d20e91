package models

// FixPriority orders fix-plan items from most to least urgent.
type FixPriority int

const (
	PriorityCritical FixPriority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityNames = map[FixPriority]string{
	PriorityCritical: "CRITICAL",
	PriorityHigh:     "HIGH",
	PriorityMedium:   "MEDIUM",
	PriorityLow:      "LOW",
}

func (p FixPriority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "LOW"
}

// ParseFixPriority maps an LLM-emitted priority label to a FixPriority.
// Unknown labels default to MEDIUM rather than failing the item.
func ParseFixPriority(s string) FixPriority {
	switch s {
	case "CRITICAL", "critical":
		return PriorityCritical
	case "HIGH", "high":
		return PriorityHigh
	case "LOW", "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// MarshalJSON emits the symbolic name instead of the ordinal.
func (p FixPriority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// MarshalYAML emits the symbolic name instead of the ordinal.
func (p FixPriority) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// AllPages is the page_path used when an issue cannot be attributed to a
// single page.
const AllPages = "ALL_PAGES"

// FixPlanItem is one actionable remediation item. Uniqueness key is
// (PagePath, IssueCode). Deterministic enrichment must never shadow an
// LLM-sourced item under the same key.
type FixPlanItem struct {
	PagePath    string      `json:"page_path" yaml:"page_path"`
	IssueCode   string      `json:"issue_code" yaml:"issue_code"`
	Priority    FixPriority `json:"priority" yaml:"priority"`
	Description string      `json:"description" yaml:"description"`
	Suggestion  string      `json:"suggestion" yaml:"suggestion"`
	Source      string      `json:"source,omitempty" yaml:"source,omitempty"` // "llm" or "rule"
}

// ReportBundle is the final output of one audit run.
type ReportBundle struct {
	TargetAudit          *SiteAggregate          `json:"target_audit" yaml:"target_audit"`
	ExternalIntelligence *ExternalIntelligence   `json:"external_intelligence,omitempty" yaml:"external_intelligence,omitempty"`
	SearchResults        map[string]SearchResult `json:"search_results,omitempty" yaml:"search_results,omitempty"`
	CompetitorAudits     []CompetitorAudit       `json:"competitor_audits,omitempty" yaml:"competitor_audits,omitempty"`
	ReportMarkdown       string                  `json:"report_markdown" yaml:"report_markdown"`
	FixPlan              []FixPlanItem           `json:"fix_plan" yaml:"fix_plan"`
	GEOScore             float64                 `json:"geo_score" yaml:"geo_score"`

	// InsufficientData names signal categories that were unavailable during
	// the run, so degradation is explicit rather than a silent omission.
	InsufficientData []string `json:"insufficient_data,omitempty" yaml:"insufficient_data,omitempty"`
}
