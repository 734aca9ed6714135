package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
)

// DefaultAPIBase is the Telegram Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	chatID  string
	client  *resty.Client
	logger  arbor.ILogger
	backoff func(attempt int) time.Duration
	idle    time.Duration
}

// Option configures a TelegramNotifier.
type Option func(*TelegramNotifier)

// WithAPIBase points the notifier at another Bot API host.
func WithAPIBase(base, botToken string) Option {
	return func(t *TelegramNotifier) {
		t.client.SetBaseURL(fmt.Sprintf("%s/bot%s", base, botToken))
	}
}

// WithLogger sets the notifier logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(t *TelegramNotifier) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithBackoff replaces the retry delay schedule.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(t *TelegramNotifier) {
		if fn != nil {
			t.backoff = fn
		}
	}
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, opts ...Option) *TelegramNotifier {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", DefaultAPIBase, botToken)).
		SetTimeout(35 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	t := &TelegramNotifier{
		chatID:  chatID,
		client:  client,
		logger:  arbor.NewLogger(),
		backoff: func(attempt int) time.Duration { return time.Duration(1<<uint(attempt)) * time.Second },
		idle:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	var out apiResponse
	resp, err := t.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(map[string]string{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&out).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := t.backoff(i)
		t.logger.Warn().Err(err).Int("attempt", i+1).Int("attempts", maxRetries+1).
			Str("retry_in", backoff.String()).Msg("telegram send failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
