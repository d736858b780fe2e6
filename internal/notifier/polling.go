package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

// pollTimeout is the long-poll window requested from Telegram.
const pollTimeout = 30

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
// Only messages from the configured chat are handled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		if ctx.Err() != nil {
			t.log.Info("telegram polling stopped")
			return
		}

		next, err := t.poll(ctx, offset, handler)
		if err != nil {
			if ctx.Err() != nil {
				t.log.Info("telegram polling stopped")
				return
			}
			t.log.Warn("polling request failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}
		offset = next
	}
}

// poll performs one getUpdates round trip and dispatches commands. It returns
// the next offset to acknowledge.
func (t *TelegramNotifier) poll(ctx context.Context, offset int, handler CommandHandler) (int, error) {
	var result updatesResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.Itoa(offset),
			"timeout": strconv.Itoa(pollTimeout),
		}).
		SetResult(&result).
		Get(fmt.Sprintf("/bot%s/getUpdates", t.BotToken))
	if err != nil {
		return offset, err
	}
	if resp.IsError() {
		return offset, fmt.Errorf("getUpdates: status %d", resp.StatusCode())
	}

	for _, update := range result.Result {
		offset = update.UpdateID + 1
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		if strconv.FormatInt(update.Message.Chat.ID, 10) != t.ChatID {
			t.log.Warn("ignoring command from unknown chat", zap.Int64("chat_id", update.Message.Chat.ID))
			continue
		}
		text := strings.TrimSpace(update.Message.Text)
		t.log.Info("received command", zap.String("command", text))
		if reply := handler(ctx, text); reply != "" {
			if err := t.Send(ctx, reply); err != nil {
				t.log.Error("send reply", zap.Error(err))
			}
		}
	}
	return offset, nil
}
