package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockScreener/internal/config"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	telegramMaxText        = 4096
)

// TelegramChannel sends messages via the Telegram Bot API.
type TelegramChannel struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
}

// NewTelegramChannel creates a channel with optional proxy support.
func NewTelegramChannel(cfg config.TelegramConfig, proxyURL string) *TelegramChannel {
	base := cfg.BaseURL
	if base == "" {
		base = defaultTelegramBaseURL
	}
	return &TelegramChannel{
		BotToken: cfg.BotToken,
		ChatID:   cfg.ChatID,
		BaseURL:  strings.TrimRight(base, "/"),
		Client:   newHTTPClient(proxyURL),
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

func (t *TelegramChannel) Render(c Content) (*Message, error) {
	return &Message{
		Subject: subject(c),
		Body:    truncateRunes(FormatTelegram(c), telegramMaxText),
		Urgent:  c.Urgent,
	}, nil
}

// Send posts the message body to the configured chat.
func (t *TelegramChannel) Send(ctx context.Context, msg *Message) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       msg.Body,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// newHTTPClient builds a client that honours an optional proxy URL.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
