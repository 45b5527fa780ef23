package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/mail.v2"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel delivers an HTML email with a plain text alternative.
type EmailChannel struct {
	cfg    config.EmailConfig
	sender mailSender
}

// NewEmailChannel creates a channel dialing the configured SMTP server.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Sender, cfg.Password)
	dialer.Timeout = 10 * time.Second
	if cfg.UseTLS {
		dialer.StartTLSPolicy = gomail.MandatoryStartTLS
	} else {
		dialer.StartTLSPolicy = gomail.NoStartTLS
	}
	return &EmailChannel{cfg: cfg, sender: dialer}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Configured() bool {
	return e.cfg.Enabled && e.cfg.Sender != "" && e.cfg.Password != "" && e.cfg.Receiver != ""
}

func (e *EmailChannel) Render(c Content) (*Message, error) {
	htmlBody, err := renderEmailHTML(c)
	if err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}
	return &Message{
		Subject: subject(c),
		Body:    FormatText(c),
		HTML:    htmlBody,
		Urgent:  c.Urgent,
	}, nil
}

func (e *EmailChannel) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.Sender)
	m.SetHeader("To", e.cfg.Receiver)
	m.SetHeader("Subject", msg.Subject)
	if msg.Urgent {
		m.SetHeader("X-Priority", "1")
	}
	if msg.HTML != "" {
		m.SetBody("text/plain", msg.Body)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Body)
	}
	if err := e.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp %s:%d: %w", e.cfg.SMTPServer, e.cfg.SMTPPort, err)
	}
	return nil
}

type emailSection struct {
	Heading string
	Weak    bool
	Items   []model.Recommendation
}

type emailView struct {
	Title    string
	Time     string
	Urgent   bool
	Text     string
	Empty    bool
	Sections []emailSection
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
{{if .Urgent}}<p style="color: #c0392b; font-weight: bold;">URGENT</p>{{end}}
<h2>{{.Title}}</h2>
{{if .Time}}<p style="color: #777;">{{.Time}}</p>{{end}}
{{if .Text}}<pre style="font-family: inherit; white-space: pre-wrap;">{{.Text}}</pre>{{end}}
{{if .Empty}}<p>No stocks met the screening criteria in this run.</p>{{end}}
{{range .Sections}}
<h3>{{.Heading}}</h3>
<table cellpadding="6" style="border-collapse: collapse;">
<tr style="background: #f2f2f2;"><th align="left">Code</th><th align="left">Name</th><th align="right">Price</th>{{if .Weak}}<th align="left">Alert</th>{{else}}<th align="right">Target</th><th align="right">Stop</th><th align="left">Reason</th>{{end}}</tr>
{{range .Items}}<tr>
<td>{{.Code}}</td><td>{{.Name}}</td><td align="right">{{printf "%.2f" .CurrentPrice}}</td>
{{if eq .Kind "weak_alert"}}<td>{{.AlertReason}}</td>{{else}}<td align="right">{{printf "%.1f" .TargetPrice}}</td><td align="right">{{printf "%.1f" .StopLoss}}</td><td>{{.Reason}}</td>{{end}}
</tr>{{end}}
</table>
{{end}}
</body>
</html>
`))

func renderEmailHTML(c Content) (string, error) {
	view := emailView{Title: c.Title, Urgent: c.Urgent}
	if !c.At.IsZero() {
		view.Time = c.At.Format(timeLayout)
	}
	if c.Set == nil {
		view.Text = c.Text
	} else {
		for _, s := range []emailSection{
			{Heading: "Short-term picks", Items: c.Set.ShortTerm},
			{Heading: "Long-term picks", Items: c.Set.LongTerm},
			{Heading: "Weak stock alerts", Weak: true, Items: c.Set.WeakStocks},
		} {
			if len(s.Items) > 0 {
				view.Sections = append(view.Sections, s)
			}
		}
		view.Empty = len(view.Sections) == 0
	}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
