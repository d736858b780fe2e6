package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"MarketPulse/internal/logger"
)

// DefaultAPIBase is the Telegram Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// Notifier delivers a text message to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NoopNotifier discards messages; used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string) error { return nil }

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string

	client     *resty.Client
	log        *zap.Logger
	maxRetries int
	backoff    time.Duration
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithAPIBase overrides the Bot API root.
func WithAPIBase(u string) TelegramOption {
	return func(t *TelegramNotifier) { t.client.SetBaseURL(strings.TrimRight(u, "/")) }
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxyURL string) TelegramOption {
	return func(t *TelegramNotifier) {
		if proxyURL != "" {
			t.client.SetProxy(proxyURL)
		}
	}
}

// WithRetry sets how many times Notify retries and the initial backoff.
func WithRetry(maxRetries int, backoff time.Duration) TelegramOption {
	return func(t *TelegramNotifier) {
		t.maxRetries = maxRetries
		t.backoff = backoff
	}
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) TelegramOption {
	return func(t *TelegramNotifier) { t.log = logger.OrNop(l) }
}

// NewTelegramNotifier creates a notifier for one chat.
func NewTelegramNotifier(botToken, chatID string, opts ...TelegramOption) *TelegramNotifier {
	t := &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		client: resty.New().
			SetBaseURL(DefaultAPIBase).
			SetTimeout((pollTimeout + 10) * time.Second),
		log:        zap.NewNop(),
		maxRetries: 2,
		backoff:    time.Second,
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

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	var out apiResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    t.ChatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.BotToken))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
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
		backoff := t.backoff << uint(i)
		t.log.Warn("telegram send failed",
			zap.Int("attempt", i+1), zap.Int("of", maxRetries+1),
			zap.Duration("retry_in", backoff), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Notify implements Notifier.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, t.maxRetries)
}
