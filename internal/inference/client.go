// Package inference adapts an external natural-language inference service
// into a classification strategy. It is the only component in the engine
// that performs blocking network I/O.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client defines the minimal contract with the inference service: send a
// prompt, get free text back.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	CheckAvailable(ctx context.Context) error
}

// ollamaClient talks to an Ollama-compatible HTTP API.
type ollamaClient struct {
	httpClient *http.Client
	host       string
	model      string
}

// newOllamaClient creates a client with a pooled keep-alive transport. The
// request timeout is enforced per call through the context, not here.
func newOllamaClient(host, model string) *ollamaClient {
	return &ollamaClient{
		host:  strings.TrimRight(host, "/"),
		model: model,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// generateRequest is the Ollama /api/generate payload. Sampling is pinned
// deterministic so identical prompts produce identical, cacheable answers.
type generateRequest struct {
	Options map[string]any `json:"options"`
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a single prompt and returns the raw completion text.
func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": 0.0,
			"top_p":       0.9,
			"top_k":       10,
			"num_predict": 50,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return strings.TrimSpace(parsed.Response), nil
}

// CheckAvailable probes the service's model listing endpoint.
func (c *ollamaClient) CheckAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy (status %d)", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to parse model list: %w", err)
	}

	for _, m := range tags.Models {
		if strings.Contains(m.Name, c.model) {
			return nil
		}
	}
	return fmt.Errorf("model %q not available on inference service", c.model)
}
