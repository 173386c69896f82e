// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/logging"
)

// Request is one extraction call.
type Request struct {
	Model string
	// Content is the text of the input file.
	Content string
	// Prompt is an optional instruction sent as a second user message.
	Prompt string
	// Tool is the function schema the model must call.
	Tool json.RawMessage
}

// Responder returns the raw response document for a request.
type Responder interface {
	Respond(ctx context.Context, req Request) ([]byte, error)
}

// ClientConfig configures Client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerMinute throttles calls when positive.
	RequestsPerMinute int
}

// Client calls the OpenAI Responses API. It does not retry.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg ClientConfig, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperr.New(apperr.Config, "no API key: set OPENAI_API_KEY or run 'dawgtools login'")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model      string            `json:"model"`
	Input      []message         `json:"input"`
	Tools      []json.RawMessage `json:"tools"`
	ToolChoice string            `json:"tool_choice"`
}

// Respond implements Responder.
func (c *Client) Respond(ctx context.Context, req Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Wrap(apperr.External, "waiting for rate limit", err)
		}
	}

	input := []message{{Role: "user", Content: req.Content}}
	if req.Prompt != "" {
		input = append(input, message{Role: "user", Content: req.Prompt})
	}
	body, err := json.Marshal(responsesRequest{
		Model:      req.Model,
		Input:      input,
		Tools:      []json.RawMessage{req.Tool},
		ToolChoice: "required",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.log.Debug("calling model", zap.String("model", req.Model), zap.Int("content_len", len(req.Content)))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "model request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.External, "reading model response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Wrap(apperr.External, "model API request failed",
			&StatusError{Code: resp.StatusCode, Body: logging.Mask(snippet(raw))})
	}
	if !json.Valid(raw) {
		return nil, apperr.Newf(apperr.External, "model API returned invalid JSON: %s", snippet(raw))
	}

	c.log.Info("model responded", zap.String("model", req.Model), zap.Duration("elapsed", time.Since(start)))
	return raw, nil
}

// StatusError is a non-2xx reply from the model API. Body is masked.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model API returned %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

func snippet(b []byte) string {
	const max = 500
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
