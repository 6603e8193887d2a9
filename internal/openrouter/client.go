// Package openrouter is a minimal chat-completion client for the OpenRouter
// API, used by the Wall-E companion.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL   = "https://openrouter.ai/api/v1"
	defaultModelName = "anthropic/claude-2"
	defaultMaxTokens = 500

	temperature = 0.7
)

type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     zerolog.Logger
	maxRetries int
	retryDelay time.Duration
}

type Config struct {
	APIKey     string
	BaseURL    string
	ModelName  string
	MaxRetries int
	RetryDelay time.Duration
}

// Message is one chat turn. Role is "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModelName
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Complete runs the conversation through the model and returns the assistant
// reply. Transient failures are retried with a fixed delay.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		reply, err := c.completeOnce(ctx, messages, attempt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		c.logger.Warn().
			Int("attempt", attempt).
			Int("max_retries", c.maxRetries).
			Err(err).
			Msg("openrouter completion attempt failed")

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) completeOnce(ctx context.Context, messages []Message, attempt int) (string, error) {
	reqBody := completionRequest{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Msg("openrouter returned non-200")
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp completionResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openrouter API error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openrouter response")
	}
	return apiResp.Choices[0].Message.Content, nil
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
