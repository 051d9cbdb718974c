// Package notify delivers workflow notifications to chat recipients through
// the Telegram Bot API. Delivery is best-effort: failures are logged and
// surfaced, never retried synchronously, and never block a ledger transition.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"expense-approval-service/internal/engine"

	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.telegram.org"

type TelegramSink struct {
	client  *http.Client
	baseURL string
	log     *zap.Logger
}

func NewTelegramSink(token string, log *zap.Logger) *TelegramSink {
	return &TelegramSink{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultAPIBase + "/bot" + token,
		log:     log,
	}
}

// NewTelegramSinkWithBase points the sink at a custom API host (tests).
func NewTelegramSinkWithBase(baseURL string, log *zap.Logger) *TelegramSink {
	return &TelegramSink{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		log:     log,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageReq struct {
	ChatID      string       `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

// Notify sends the message to every recipient. It keeps going on partial
// failure and returns the first error so the caller can log it.
func (s *TelegramSink) Notify(ctx context.Context, recipients []string, text string, buttons []engine.Button) error {
	var markup *replyMarkup
	if len(buttons) > 0 {
		rows := make([][]inlineButton, 0, len(buttons))
		for _, b := range buttons {
			rows = append(rows, []inlineButton{{Text: b.Label, CallbackData: b.Token}})
		}
		markup = &replyMarkup{InlineKeyboard: rows}
	}

	var firstErr error
	for _, chatID := range recipients {
		if err := s.send(ctx, sendMessageReq{ChatID: chatID, Text: text, ReplyMarkup: markup}); err != nil {
			s.log.Warn("telegram send failed", zap.String("chat_id", chatID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *TelegramSink) send(ctx context.Context, msg sendMessageReq) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendMessage: unexpected status %d", resp.StatusCode)
	}
	return nil
}
