package notifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const maxTitleInName = 30

// BackupStore writes undelivered messages to local files so nothing is lost.
type BackupStore struct {
	Dir string
	now func() time.Time
}

func NewBackupStore(dir string) *BackupStore {
	return &BackupStore{Dir: dir, now: time.Now}
}

// Write stores msg for channel and returns the file path. Existing files are
// never overwritten; a numeric suffix is added on collision.
func (b *BackupStore) Write(channel string, msg *Message) (string, error) {
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	now := b.now()
	base := fmt.Sprintf("%s_%s_%s", now.Format("20060102_150405.000000"), channel, safeTitle(msg.Subject))
	if msg.Urgent {
		base = "URGENT_" + base
	}

	for i := 0; i < 100; i++ {
		name := base + ".txt"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.txt", base, i)
		}
		path := filepath.Join(b.Dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create backup: %w", err)
		}
		_, werr := f.WriteString(backupContents(channel, msg, now))
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("write backup: %w", werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("close backup: %w", cerr)
		}
		return path, nil
	}
	return "", fmt.Errorf("create backup: too many files named %s", base)
}

func backupContents(channel string, msg *Message, at time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&sb, "Time: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Channel: %s\n", channel)
	fmt.Fprintf(&sb, "Urgent: %t\n", msg.Urgent)
	sb.WriteString("----------------------------------------\n\n")
	sb.WriteString(msg.Body)
	sb.WriteString("\n")
	if msg.HTML != "" {
		sb.WriteString("\n---------------- HTML ----------------\n")
		sb.WriteString(msg.HTML)
	}
	return sb.String()
}

// safeTitle keeps letters and digits, replaces everything else with '_' and
// truncates to a short filename-friendly prefix.
func safeTitle(title string) string {
	out := make([]rune, 0, maxTitleInName)
	for _, r := range title {
		if len(out) == maxTitleInName {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "untitled"
	}
	return string(out)
}
