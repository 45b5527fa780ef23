package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

func TestLineChannel_Send(t *testing.T) {
	var got linePushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewLineChannel(config.LineConfig{Enabled: true, AccessToken: "tok", UserID: "U1", GroupID: "G1", BaseURL: srv.URL}, "")
	require.True(t, ch.Configured())

	msg, err := ch.Render(Content{Title: "Morning scan", Set: sampleSet()})
	require.NoError(t, err)
	require.NoError(t, ch.Send(context.Background(), msg))

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "U1", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "text", got.Messages[0].Type)
	assert.Contains(t, got.Messages[0].Text, "2330")
}

func TestLineChannel_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ch := NewLineChannel(config.LineConfig{Enabled: true, AccessToken: "tok", GroupID: "G1", BaseURL: srv.URL}, "")
	err := ch.Send(context.Background(), &Message{Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestLineChannel_Truncates(t *testing.T) {
	ch := NewLineChannel(config.LineConfig{}, "")
	msg, err := ch.Render(Content{Title: "t", Text: strings.Repeat("x", 5000)})
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(msg.Body)), lineMaxText)
	assert.False(t, ch.Configured())
}

func TestTelegramChannel_Send(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewTelegramChannel(config.TelegramConfig{BotToken: "TOKEN", ChatID: "42", BaseURL: srv.URL}, "")
	msg, err := ch.Render(Content{Title: "A<B", Text: "x & y"})
	require.NoError(t, err)
	require.NoError(t, ch.Send(context.Background(), msg))

	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "HTML", payload["parse_mode"])
	assert.Contains(t, payload["text"], "A&lt;B")
	assert.Contains(t, payload["text"], "x &amp; y")
}

type fakeSender struct {
	err  error
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestEmailChannel(t *testing.T) {
	cfg := config.EmailConfig{Enabled: true, Sender: "bot@example.com", Password: "pw", Receiver: "me@example.com", SMTPServer: "smtp.example.com", SMTPPort: 587}
	fs := &fakeSender{}
	ch := NewEmailChannel(cfg)
	ch.sender = fs
	require.True(t, ch.Configured())

	msg, err := ch.Render(Content{Title: "Emergency scan", Set: sampleSet(), Urgent: true, At: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "[URGENT] Emergency scan", msg.Subject)
	assert.Contains(t, msg.HTML, "<td>2330</td>")
	assert.Contains(t, msg.HTML, "watch risk")
	assert.Contains(t, msg.Body, "Weak stock alerts")

	require.NoError(t, ch.Send(context.Background(), msg))
	require.Len(t, fs.sent, 1)
	assert.Equal(t, []string{"[URGENT] Emergency scan"}, fs.sent[0].GetHeader("Subject"))

	fs.err = errors.New("auth failed")
	err = ch.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.example.com:587")
}

func TestEmailChannel_NotConfiguredWithoutPassword(t *testing.T) {
	ch := NewEmailChannel(config.EmailConfig{Enabled: true, Sender: "a", Receiver: "b"})
	assert.False(t, ch.Configured())
}

func TestFormatText_EmptySet(t *testing.T) {
	out := FormatText(Content{Title: "Afternoon scan", Set: model.NewRecommendationSet()})
	assert.Contains(t, out, emptySetText)

	out = FormatText(Content{Title: "Afternoon scan", Set: sampleSet()})
	assert.Contains(t, out, "Short-term picks (1)")
	assert.Contains(t, out, "target 105.0 / stop 97.0")
	assert.NotContains(t, out, "Long-term picks")
}
