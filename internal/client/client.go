package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"researchagent/internal/models"
)

// Client talks to the research service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// serverError extracts the error field from a non-2xx response body, falling
// back to a generic message.
func serverError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("research service returned %d", resp.StatusCode)
}

// StartResearch validates the topic and submits it with POST /research,
// returning the job id. Validation failures are returned as *ValidationError
// without contacting the server.
func (c *Client) StartResearch(ctx context.Context, topic string) (string, error) {
	trimmed, err := ValidateTopic(topic)
	if err != nil {
		return "", err
	}

	payload, _ := json.Marshal(models.CreateRequest{Topic: trimmed})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/research", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("start research: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start research: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serverError(resp)
	}

	var result models.CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("start research: decode: %w", err)
	}
	if result.ResultID == "" {
		return "", fmt.Errorf("start research: no result_id in response")
	}
	return result.ResultID, nil
}

// Status fetches the current state of a job with GET /research/{id}.
func (c *Client) Status(ctx context.Context, id string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/research/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("poll status: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp)
	}

	var st StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("poll status: decode: %w", err)
	}
	return &st, nil
}

// DownloadURL returns the hyperlink target for the job's presentation file.
func (c *Client) DownloadURL(id string) string {
	return c.baseURL + "/download/" + id
}
