package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetries    = 3
	defaultRetryWait  = time.Second
	defaultMaxBackoff = 8 * time.Second
)

// ErrNoWebhook is returned when a post is attempted without a webhook URL
var ErrNoWebhook = errors.New("webhook url not set")

// Poster delivers a text message to a chat channel
type Poster interface {
	Post(ctx context.Context, text string) error
}

type Option func(*SlackPoster)

// WithRetries sets how many times a 5xx or transport failure is retried. Default: 3.
func WithRetries(n int) Option {
	return func(p *SlackPoster) { p.client.RetryMax = n }
}

// WithRetryWait sets the backoff bounds between retries
func WithRetryWait(min, max time.Duration) Option {
	return func(p *SlackPoster) {
		p.client.RetryWaitMin = min
		p.client.RetryWaitMax = max
	}
}

// WithTimeout sets the per-attempt HTTP timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(p *SlackPoster) { p.client.HTTPClient.Timeout = d }
}

// SlackPoster posts {"text": ...} to an incoming webhook, retrying 5xx with exponential backoff
type SlackPoster struct {
	client *retryablehttp.Client
	url    string
}

func NewSlackPoster(url string, opts ...Option) *SlackPoster {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = defaultTimeout
	client.RetryMax = defaultRetries
	client.RetryWaitMin = defaultRetryWait
	client.RetryWaitMax = defaultMaxBackoff
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	p := &SlackPoster{client: client, url: url}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type message struct {
	Text string `json:"text"`
}

func (p *SlackPoster) Post(ctx context.Context, text string) error {
	if p.url == "" {
		return ErrNoWebhook
	}

	body, err := json.Marshal(message{Text: text})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}

	zerolog.Ctx(ctx).Debug().Int("status", resp.StatusCode).Msg("posted summary to chat webhook")
	return nil
}
