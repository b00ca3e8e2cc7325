package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"researchagent/internal/models"
)

// checkResp reads the response body and returns an error if the status is not 2xx.
// On error it includes the upstream body for debugging.
func checkResp(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("ai-service %s returned %d: %s", path, resp.StatusCode, string(body))
}

// AIClient calls the external AI service over HTTP. It handles query
// generation, web search, and content analysis.
type AIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAIClient(baseURL string) *AIClient {
	return &AIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// GenerateQueries calls POST /api/generate-queries.
func (c *AIClient) GenerateQueries(ctx context.Context, topic string) ([]string, error) {
	body, _ := json.Marshal(map[string]string{"topic": topic})
	resp, err := c.post(ctx, "/api/generate-queries", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/generate-queries"); err != nil {
		return nil, err
	}

	var result struct {
		Queries []string `json:"queries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ai-service /api/generate-queries: decode: %w", err)
	}
	return result.Queries, nil
}

// Search calls POST /api/search.
func (c *AIClient) Search(ctx context.Context, queries []string, resultsPerQuery int) ([]models.Source, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"queries": queries, "results_per_query": resultsPerQuery,
	})
	resp, err := c.post(ctx, "/api/search", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/search"); err != nil {
		return nil, err
	}

	var result struct {
		Results []models.Source `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ai-service /api/search: decode: %w", err)
	}
	return result.Results, nil
}

// Analyze calls POST /api/analyze and returns the structured research data.
func (c *AIClient) Analyze(ctx context.Context, topic string, sources []models.Source) (*models.ResearchData, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"topic": topic, "sources": sources,
	})
	resp, err := c.post(ctx, "/api/analyze", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/analyze"); err != nil {
		return nil, err
	}

	var result models.ResearchData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ai-service /api/analyze: decode: %w", err)
	}
	return &result, nil
}

func (c *AIClient) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai-service %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai-service %s: %w", path, err)
	}
	return resp, nil
}
