// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/preprint-classifier/internal/httputil"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

const (
	defaultRemoteBaseURL = "https://api.openai.com/v1"
	defaultRemoteModel   = "text-embedding-3-small"
	defaultRemoteTimeout = 30 * time.Second
)

// remotePolicy retries throttled and failed embedding calls.
var remotePolicy = types.RatePolicy{
	MaxRetries:         5,
	BaseBackoff:        200 * time.Millisecond,
	RetryOnServerError: true,
}

// RemoteClient is an OpenAI-compatible embeddings client. It also accepts
// the Ollama response shape {"embedding": [...]}.
type RemoteClient struct {
	client    *http.Client
	baseURL   string
	model     string
	apiKey    string
	userAgent string
	dim       int
}

// NewRemoteClient returns a client for cfg. A nil httpClient gets one with
// cfg.Timeout (default 30s). The API key may be empty for local servers.
func NewRemoteClient(httpClient *http.Client, cfg types.EmbedConfig) (*RemoteClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRemoteBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultRemoteModel
	}
	if httpClient == nil {
		t := cfg.Timeout
		if t == 0 {
			t = defaultRemoteTimeout
		}
		httpClient = &http.Client{Timeout: t}
	}
	return &RemoteClient{
		client:    httpClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
	}, nil
}

// Name returns the backend and model name.
func (c *RemoteClient) Name() string { return "remote:" + c.model }

// Dimension returns the vector length, known after the first Embed call.
func (c *RemoteClient) Dimension() int { return c.dim }

// Close is a no-op; the HTTP client holds no per-run state.
func (c *RemoteClient) Close() error { return nil }

type remoteRequest struct {
	Input  string `json:"input"`
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type remoteResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (c *RemoteClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(remoteRequest{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, remotePolicy)
	if err != nil {
		return nil, fmt.Errorf("embeddings API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embeddings API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}

	vec := out.Embedding
	if len(out.Data) > 0 && len(out.Data[0].Embedding) > 0 {
		vec = out.Data[0].Embedding
	}
	if len(vec) == 0 {
		return nil, errors.New("no embedding returned")
	}
	if c.dim == 0 {
		c.dim = len(vec)
	}
	return vec, nil
}
