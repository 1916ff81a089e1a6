package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filmwatch/internal/config"
	"filmwatch/internal/language"
)

const userAgent = "Filmwatch/0.1.0"

// Service defines the notification surface exposed to the release sweep and
// the CLI. Delivery failures are per-recipient; callers log and move on.
type Service interface {
	NotifyReleased(ctx context.Context, chatID int64, title string, year int, lang string) error
	Test(ctx context.Context, chatID int64) error
}

// NewService builds a dispatcher backed by the Telegram Bot API when a token
// is configured. Without a token a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	token := strings.TrimSpace(cfg.Telegram.Token)
	if token == "" {
		return noopService{}
	}

	timeout := 10 * time.Second
	return &telegramService{
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", cfg.Telegram.BaseURL, token),
		client:   &http.Client{Timeout: timeout},
	}
}

type telegramService struct {
	endpoint string
	client   *http.Client
}

type message struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (t *telegramService) NotifyReleased(ctx context.Context, chatID int64, title string, year int, lang string) error {
	title = strings.TrimSpace(title)
	text := fmt.Sprintf("🎉 <b>%s</b> (%d) has been released!\nRelease confirmed for %s.",
		title, year, language.DisplayName(lang))
	return t.send(ctx, message{ChatID: chatID, Text: text, ParseMode: "HTML"})
}

func (t *telegramService) Test(ctx context.Context, chatID int64) error {
	return t.send(ctx, message{ChatID: chatID, Text: "🧪 Notification system test"})
}

func (t *telegramService) send(ctx context.Context, msg message) error {
	if t == nil || t.client == nil {
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyReleased(context.Context, int64, string, int, string) error { return nil }

func (noopService) Test(context.Context, int64) error { return nil }
