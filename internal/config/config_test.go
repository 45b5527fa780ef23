package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5*time.Minute, cfg.Run.Timeout)
	assert.Equal(t, "smtp.gmail.com", cfg.Notify.Email.SMTPServer)
	assert.Equal(t, 587, cfg.Notify.Email.SMTPPort)
	assert.True(t, cfg.Notify.Email.UseTLS)
	assert.Equal(t, "logs/notifications", cfg.Notify.BackupDir)
	assert.Equal(t, "data/results", cfg.Storage.ResultsDir)
	assert.Equal(t, DefaultTiers(), cfg.Tiers)
	assert.Equal(t, DefaultCrons(), cfg.Schedule.Crons)
	assert.Equal(t, 2, cfg.Notify.MaxAttempts)
	assert.True(t, cfg.Sources.IncludeOTC)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
run:
  timeout: 2m
tiers:
  - name: primary
    source: mock
    timeout: 30s
slots:
  morning_scan:
    fetch: 50
    candidates: 10
notify:
  email:
    sender: file@example.com
    smtp_port: 2525
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LINE_CHANNEL_ACCESS_TOKEN=from-dotenv\n"), 0o644))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("EMAIL_SENDER", "env@example.com")
	t.Setenv("EMAIL_USE_TLS", "false")
	t.Setenv("LINE_ENABLED", "1")
	// registered for restore, then unset so the .env value applies
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	require.NoError(t, os.Unsetenv("LINE_CHANNEL_ACCESS_TOKEN"))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Minute, cfg.Run.Timeout)
	require.Len(t, cfg.Tiers, 1)
	assert.Equal(t, "primary", cfg.Tiers[0].Name)
	assert.Equal(t, 30*time.Second, cfg.Tiers[0].Timeout)
	assert.Equal(t, SlotConfig{Fetch: 50, Candidates: 10}, cfg.Slots["morning_scan"])
	assert.Equal(t, "env@example.com", cfg.Notify.Email.Sender)
	assert.Equal(t, 2525, cfg.Notify.Email.SMTPPort)
	assert.False(t, cfg.Notify.Email.UseTLS)
	assert.True(t, cfg.Notify.Line.Enabled)
	assert.Equal(t, "from-dotenv", cfg.Notify.Line.AccessToken)
}

func TestValidate_TierTimeoutMustBeShorterThanRun(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Tiers = []TierConfig{{Name: "slow", Source: "mock", Timeout: cfg.Run.Timeout}}
	assert.ErrorContains(t, cfg.Validate(), "shorter than run.timeout")
}

func TestValidate_TierBudgetMustFitRun(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Run.Timeout = 5 * time.Minute
	cfg.Tiers = []TierConfig{
		{Name: "a", Source: "mock", Timeout: 4 * time.Minute},
		{Name: "b", Source: "mock", Timeout: 4 * time.Minute},
	}
	assert.ErrorContains(t, cfg.Validate(), "minimal fallback")

	// 2m + 2m + 30s leaves headroom
	cfg.Tiers[0].Timeout = 2 * time.Minute
	cfg.Tiers[1].Timeout = 2 * time.Minute
	assert.NoError(t, cfg.Validate())

	// exactly the run timeout is rejected
	cfg.Tiers[1].Timeout = 2*time.Minute + 30*time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"duplicate tier", func(c *Config) {
			c.Tiers = []TierConfig{
				{Name: "a", Source: "mock", Timeout: time.Second},
				{Name: "a", Source: "mock", Timeout: time.Second},
			}
		}},
		{"unknown source", func(c *Config) {
			c.Tiers = []TierConfig{{Name: "a", Source: "yahoo", Timeout: time.Second}}
		}},
		{"zero tier timeout", func(c *Config) {
			c.Tiers = []TierConfig{{Name: "a", Source: "mock"}}
		}},
		{"unknown fallback", func(c *Config) { c.Sources.Fallback = "yahoo" }},
		{"unknown slot", func(c *Config) {
			c.Slots = map[string]SlotConfig{"lunch": {Fetch: 1, Candidates: 1}}
		}},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad port", func(c *Config) { c.Notify.Email.SMTPPort = 0 }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
