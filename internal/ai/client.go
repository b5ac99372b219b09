// Package ai is a small client for OpenAI-compatible chat completion APIs.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("ai api key not configured")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Completer generates text from a system and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	httpClient *resty.Client
	model      string
	configured bool
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	client := resty.New().
		SetLogger(logger.Sugar()).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(60*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
		configured: apiKey != "",
		logger:     logger,
	}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	var result chatResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		c.logger.Error("AI completion call failed", zap.Error(err))
		return "", fmt.Errorf("failed to call completion api: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("AI completion API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("type", failure.Error.Type),
			zap.String("msg", failure.Error.Message),
		)
		return "", fmt.Errorf("completion api error: %s (status: %d)", failure.Error.Message, resp.StatusCode())
	}

	if len(result.Choices) == 0 {
		return "", errors.New("completion api returned no choices")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
