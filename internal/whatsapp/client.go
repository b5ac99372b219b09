// Package whatsapp talks to an Evolution-style WhatsApp HTTP gateway.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Credentials identifies one tenant's gateway instance.
type Credentials struct {
	URL      string
	APIKey   string
	Instance string
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// ProviderError is returned when the gateway answers with a non-2xx status.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("whatsapp provider returned status %d: %s", e.StatusCode, e.Body)
}

// Sender is implemented by Client.
type Sender interface {
	SendText(ctx context.Context, creds Credentials, number, text string) error
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client. A send is only retried when the
// connection could not be established; timeouts and error answers are never
// resent because the gateway may already have delivered the message.
func NewClient(timeout time.Duration, retries int, logger *zap.Logger) *Client {
	client := resty.New().
		SetLogger(logger.Sugar()).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(retryBeforeSend).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// retryBeforeSend reports whether err happened while dialing, before any
// byte of the request reached the gateway.
func retryBeforeSend(_ *resty.Response, err error) bool {
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) || opErr.Op != "dial" {
		return false
	}
	return !opErr.Timeout()
}

// SendText posts text to number through the tenant's instance.
func (c *Client) SendText(ctx context.Context, creds Credentials, number, text string) error {
	endpoint := fmt.Sprintf("%s/message/sendText/%s", strings.TrimRight(creds.URL, "/"), creds.Instance)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("apikey", creds.APIKey).
		SetBody(sendTextRequest{Number: number, Text: text}).
		Post(endpoint)
	if err != nil {
		c.logger.Error("WhatsApp gateway call failed",
			zap.String("instance", creds.Instance),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call whatsapp gateway: %w", err)
	}

	if resp.IsError() {
		c.logger.Warn("WhatsApp gateway rejected message",
			zap.String("instance", creds.Instance),
			zap.Int("status_code", resp.StatusCode()),
		)
		return &ProviderError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	return nil
}

// NormalizePhone keeps only the digits of phone.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
