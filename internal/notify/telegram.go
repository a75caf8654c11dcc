package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"
)

const (
	sendTimeout        = 10 * time.Second
	telegramAPIBaseURL = "https://api.telegram.org"
)

// Telegram sends alert texts to a single chat via the Bot API. Delivery is
// fire-and-forget: any failure is logged and reported as false.
type Telegram struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	chatID     string
	log        *logger.Logger
}

// NewTelegram builds the notifier. An empty token or chat id is tolerated;
// Send then degrades to a logged no-op returning false.
func NewTelegram(cfg config.Telegram, log *logger.Logger) *Telegram {
	return &Telegram{
		httpClient: &http.Client{Timeout: sendTimeout},
		baseURL:    telegramAPIBaseURL,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		log:        log,
	}
}

// Send posts one HTML-formatted message to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) bool {
	if t.botToken == "" || t.chatID == "" {
		t.log.Warnw("telegram not configured, skip sending")
		return false
	}

	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		t.log.Errorw("telegram payload encode failed", "err", err)
		return false
	}

	url := t.baseURL + "/bot" + t.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.log.Errorw("telegram request build failed", "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.Errorw("telegram send failed", "err", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.log.Errorw("telegram send rejected",
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(body)),
		)
		return false
	}
	return true
}
