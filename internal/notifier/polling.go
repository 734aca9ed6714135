package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("telegram polling stopped")
			return
		default:
		}

		next, err := t.poll(ctx, offset, handler)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Warn().Err(err).Msg("polling request failed")
			select {
			case <-ctx.Done():
			case <-time.After(t.idle):
			}
			continue
		}
		offset = next
	}
}

// poll fetches one batch of updates, dispatches them and returns the next offset.
func (t *TelegramNotifier) poll(ctx context.Context, offset int, handler CommandHandler) (int, error) {
	var result updatesResponse
	resp, err := t.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetQueryParams(map[string]string{
			"offset":  strconv.Itoa(offset),
			"timeout": "30",
		}).
		SetResult(&result).
		Get("/getUpdates")
	if err != nil {
		return offset, err
	}
	if resp.IsError() {
		return offset, fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	for _, update := range result.Result {
		offset = update.UpdateID + 1
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		text := strings.TrimSpace(update.Message.Text)
		t.logger.Info().Str("command", text).Msg("received command")
		if reply := handler(ctx, text); reply != "" {
			if err := t.Send(ctx, reply); err != nil {
				t.logger.Error().Err(err).Msg("send reply")
			}
		}
	}
	return offset, nil
}
