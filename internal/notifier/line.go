package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"StockScreener/internal/config"
)

const (
	defaultLineBaseURL = "https://api.line.me"
	lineMaxText        = 2000
)

// LineChannel pushes text messages through the LINE Messaging API.
type LineChannel struct {
	Enabled     bool
	AccessToken string
	To          string
	BaseURL     string
	Client      *http.Client
}

// NewLineChannel targets the user ID when set, otherwise the group ID.
func NewLineChannel(cfg config.LineConfig, proxyURL string) *LineChannel {
	base := cfg.BaseURL
	if base == "" {
		base = defaultLineBaseURL
	}
	to := cfg.UserID
	if to == "" {
		to = cfg.GroupID
	}
	return &LineChannel{
		Enabled:     cfg.Enabled,
		AccessToken: cfg.AccessToken,
		To:          to,
		BaseURL:     strings.TrimRight(base, "/"),
		Client:      newHTTPClient(proxyURL),
	}
}

func (l *LineChannel) Name() string { return "line" }

func (l *LineChannel) Configured() bool {
	return l.Enabled && l.AccessToken != "" && l.To != ""
}

func (l *LineChannel) Render(c Content) (*Message, error) {
	return &Message{
		Subject: subject(c),
		Body:    truncateRunes(FormatText(c), lineMaxText),
		Urgent:  c.Urgent,
	}, nil
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send pushes the message body as a single text message.
func (l *LineChannel) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(linePushRequest{
		To:       l.To,
		Messages: []lineMessage{{Type: "text", Text: msg.Body}},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.BaseURL+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.AccessToken)

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
