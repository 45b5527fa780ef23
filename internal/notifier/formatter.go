package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockScreener/internal/model"
)

const timeLayout = "2006-01-02 15:04"

const emptySetText = "No stocks met the screening criteria in this run."

// FormatText renders content as plain text. It is the body for LINE, the
// text part of email and the local backup.
func FormatText(c Content) string {
	var b strings.Builder
	if c.Urgent {
		b.WriteString("[URGENT] ")
	}
	b.WriteString(c.Title)
	b.WriteString("\n")
	if !c.At.IsZero() {
		b.WriteString(c.At.Format(timeLayout))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if c.Set == nil {
		b.WriteString(c.Text)
		return b.String()
	}
	if c.Set.Total() == 0 {
		b.WriteString(emptySetText)
		return b.String()
	}

	writeSection := func(heading string, recs []model.Recommendation) {
		if len(recs) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s (%d)\n", heading, len(recs))
		for i, r := range recs {
			fmt.Fprintf(&b, "%d. %s %s  %.2f\n", i+1, r.Code, r.Name, r.CurrentPrice)
			if r.Kind == model.KindWeakAlert {
				fmt.Fprintf(&b, "   %s\n", r.AlertReason)
				continue
			}
			fmt.Fprintf(&b, "   target %.1f / stop %.1f\n", r.TargetPrice, r.StopLoss)
			fmt.Fprintf(&b, "   %s\n", r.Reason)
		}
		b.WriteString("\n")
	}
	writeSection("Short-term picks", c.Set.ShortTerm)
	writeSection("Long-term picks", c.Set.LongTerm)
	writeSection("Weak stock alerts", c.Set.WeakStocks)
	return strings.TrimRight(b.String(), "\n")
}

// FormatTelegram renders content for the Telegram HTML parse mode.
func FormatTelegram(c Content) string {
	var b strings.Builder
	if c.Urgent {
		b.WriteString("🚨 ")
	}
	fmt.Fprintf(&b, "📊 <b>%s</b>", html.EscapeString(c.Title))
	if !c.At.IsZero() {
		fmt.Fprintf(&b, " | %s", c.At.Format(timeLayout))
	}
	b.WriteString("\n\n")

	if c.Set == nil {
		b.WriteString(html.EscapeString(c.Text))
		return b.String()
	}
	if c.Set.Total() == 0 {
		b.WriteString(emptySetText)
		return b.String()
	}

	writeSection := func(heading string, recs []model.Recommendation) {
		if len(recs) == 0 {
			return
		}
		fmt.Fprintf(&b, "<b>%s</b>\n", heading)
		for _, r := range recs {
			fmt.Fprintf(&b, "  %s %s: %.2f\n", r.Code, html.EscapeString(r.Name), r.CurrentPrice)
			if r.Kind == model.KindWeakAlert {
				fmt.Fprintf(&b, "    %s\n", html.EscapeString(r.AlertReason))
				continue
			}
			fmt.Fprintf(&b, "    🎯 %.1f | 🛑 %.1f\n", r.TargetPrice, r.StopLoss)
		}
		b.WriteString("\n")
	}
	writeSection("📈 Short-term", c.Set.ShortTerm)
	writeSection("💰 Long-term", c.Set.LongTerm)
	writeSection("⚠️ Weak alerts", c.Set.WeakStocks)
	return strings.TrimRight(b.String(), "\n")
}

// subject prefixes urgent titles.
func subject(c Content) string {
	if c.Urgent {
		return "[URGENT] " + c.Title
	}
	return c.Title
}

// truncateRunes cuts s to at most max runes, marking the cut.
func truncateRunes(s string, max int) string {
	const marker = "\n...(truncated)"
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	keep := max - len([]rune(marker))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + marker
}
