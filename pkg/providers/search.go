package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nicolasleiva/LatentGEO-sub000/models"
)

const defaultSerperBaseURL = "https://google.serper.dev"

// SerperClient queries the Serper web search API. It satisfies
// orchestrator.SearchProvider.
type SerperClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSerperClient builds a search client. An empty baseURL targets the
// production Serper endpoint.
func NewSerperClient(baseURL, apiKey string) *SerperClient {
	if baseURL == "" {
		baseURL = defaultSerperBaseURL
	}
	return &SerperClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Search runs one query. Offset is expressed to the API as a 1-based page
// number derived from pageSize.
func (s *SerperClient) Search(ctx context.Context, query string, pageSize, offset int) (*models.SearchResult, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	payload := map[string]any{
		"q":    query,
		"num":  pageSize,
		"page": offset/pageSize + 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode, string(respBody))
	}

	var out struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	result := &models.SearchResult{Items: make([]models.SearchItem, 0, len(out.Organic))}
	for _, item := range out.Organic {
		result.Items = append(result.Items, models.SearchItem{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return result, nil
}
