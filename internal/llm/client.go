// Package llm talks to an Ollama-compatible text generation endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = time.Second
)

// Client defines the interface for interacting with the generative backend.
// A nil Client disables the model path everywhere; every consumer carries a
// deterministic fallback.
type Client interface {
	// Generate sends a prompt and returns the raw completion text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures an OllamaClient.
type Config struct {
	Endpoint    string
	Model       string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
	MaxRetries  int
}

// OllamaClient calls an Ollama /api/generate style endpoint.
type OllamaClient struct {
	endpoint    string
	model       string
	temperature float64
	topP        float64
	httpClient  *http.Client
	maxRetries  int
	retryDelay  time.Duration
}

// NewOllamaClient creates a client with bounded per-attempt timeout and a
// bounded retry budget.
func NewOllamaClient(cfg Config) *OllamaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return &OllamaClient{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: retries,
		retryDelay: defaultRetryDelay,
	}
}

// generateRequest is the Ollama generate payload. Streaming is always off:
// consumers parse one complete completion.
type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// Generate sends the prompt, retrying transient failures with exponential
// backoff. The retry budget is fixed: the model path is best-effort and must
// never block a scan indefinitely.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("LLM endpoint is empty")
	}

	reqBody := generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Stream:      false,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	delay := &backoff.Backoff{
		Min:    c.retryDelay,
		Max:    30 * time.Second,
		Factor: 2,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay.Duration()):
			}
		}

		response, err := c.sendRequest(ctx, reqBody)
		if err != nil {
			lastErr = err
			continue
		}

		return response, nil
	}

	return "", errors.Wrapf(lastErr, "failed after %d attempts", c.maxRetries)
}

func (c *OllamaClient) sendRequest(ctx context.Context, reqBody generateRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	return extractCompletion(body)
}

// generateResponse covers the payload shapes the backend is known to emit:
// {"response": "..."}, {"message": {"content": "..."}} or a bare JSON string.
type generateResponse struct {
	Response string `json:"response"`
	Message  struct {
		Content string `json:"content"`
	} `json:"message"`
}

func extractCompletion(body []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if strings.TrimSpace(parsed.Response) != "" {
			return parsed.Response, nil
		}
		if strings.TrimSpace(parsed.Message.Content) != "" {
			return parsed.Message.Content, nil
		}
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && strings.TrimSpace(bare) != "" {
		return bare, nil
	}

	return "", errors.Errorf("unexpected LLM response format: %s", truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
