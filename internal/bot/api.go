package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"filmwatch/internal/config"
)

// Chat identifies a Telegram conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Sender identifies the user behind a message or callback.
type Sender struct {
	ID           int64  `json:"id"`
	LanguageCode string `json:"language_code"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      Sender `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    Sender   `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// InlineButton is a single inline keyboard button carrying callback data.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Keyboard is an inline keyboard: rows of buttons.
type Keyboard [][]InlineButton

// API is the chat transport surface the conversation handler depends on.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Client talks to the Telegram Bot API over HTTP.
type Client struct {
	baseURL     string
	token       string
	pollTimeout int
	httpClient  *http.Client
}

var _ API = (*Client)(nil)

// NewClient builds a Telegram client from configuration. The HTTP timeout
// leaves headroom above the long-poll timeout so getUpdates can idle.
func NewClient(cfg *config.Config) *Client {
	pollTimeout := cfg.Telegram.PollTimeout
	if pollTimeout < 0 {
		pollTimeout = 0
	}
	return &Client{
		baseURL:     cfg.Telegram.BaseURL,
		token:       strings.TrimSpace(cfg.Telegram.Token),
		pollTimeout: pollTimeout,
		httpClient:  &http.Client{Timeout: time.Duration(pollTimeout+15) * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}
	raw, err := c.call(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// SendMessage delivers text to a chat, with an optional inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if len(keyboard) > 0 {
		payload["reply_markup"] = map[string]any{"inline_keyboard": keyboard}
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID})
	return err
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("telegram %s returned %s: %s", method, strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(snippet)))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram %s rejected: %s", method, parsed.Description)
	}
	return parsed.Result, nil
}
