package orchestrator

import (
	"context"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

// PageAuditor produces a per-page audit summary. The returned summary may
// carry a non-200 status; only a transport-level failure returns an error.
type PageAuditor interface {
	Audit(ctx context.Context, url string) (*models.PageAuditSummary, error)
}

// SearchProvider runs one web search query against an external API.
type SearchProvider interface {
	Search(ctx context.Context, query string, pageSize, offset int) (*models.SearchResult, error)
}

// LLMCaller sends one prompt pair to a language model and returns raw text.
// Transport failures surface as errors; the orchestrator applies its own
// retry and fallback contracts on top.
type LLMCaller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SearchCache is the injected get/set capability for search results. The
// orchestrator never owns the cache; a nil cache disables caching.
type SearchCache interface {
	Get(ctx context.Context, query string) (*models.SearchResult, bool)
	Set(ctx context.Context, query string, result *models.SearchResult) error
}
