package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockScreener/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Env string `yaml:"env" default:"production" validate:"required"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		File   string `yaml:"file" default:"logs/screener.log"`
	} `yaml:"log"`

	Run struct {
		// Timeout bounds one whole invocation. The tier timeouts plus
		// MinimalFallbackTimeout must fit inside it.
		Timeout time.Duration `yaml:"timeout" default:"5m" validate:"gt=0"`
	} `yaml:"run"`

	Sources struct {
		OpenAPIURL string `yaml:"openapi_url"`
		ReportURL  string `yaml:"report_url"`
		TPEXURL    string `yaml:"tpex_url"`
		// IncludeOTC merges TPEX quotes into the TWSE snapshots.
		IncludeOTC bool          `yaml:"include_otc" default:"true"`
		Timeout    time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		RateLimit  float64       `yaml:"rate_limit" default:"2" validate:"gte=0"`
		// Fallback names the source used by the minimal inline fallback.
		Fallback string `yaml:"fallback" default:"twse_openapi" validate:"oneof=twse_openapi twse_report tpex mock"`
	} `yaml:"sources"`

	Tiers []TierConfig `yaml:"tiers" validate:"dive"`

	// Slots overrides the per-slot universe sizing.
	Slots map[string]SlotConfig `yaml:"slots" validate:"dive"`

	Notify struct {
		MaxAttempts int            `yaml:"max_attempts" default:"2" validate:"gte=1,lte=5"`
		BaseDelay   time.Duration  `yaml:"base_delay" default:"2s" validate:"gte=0"`
		BackupDir   string         `yaml:"backup_dir" default:"logs/notifications" validate:"required"`
		Email       EmailConfig    `yaml:"email"`
		Line        LineConfig     `yaml:"line"`
		Telegram    TelegramConfig `yaml:"telegram"`
	} `yaml:"notify"`

	Storage struct {
		ResultsDir   string `yaml:"results_dir" default:"data/results" validate:"required"`
		ExecutionLog string `yaml:"execution_log" default:"logs/execution.jsonl"`
		SQLitePath   string `yaml:"sqlite_path"`
	} `yaml:"storage"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	Schedule struct {
		Timezone string            `yaml:"timezone" default:"Asia/Taipei"`
		Crons    map[string]string `yaml:"crons"`
	} `yaml:"schedule"`

	Proxy string `yaml:"proxy"`
}

// TierConfig describes one analyzer implementation in the fallback chain.
type TierConfig struct {
	Name       string        `yaml:"name" validate:"required"`
	Source     string        `yaml:"source" validate:"oneof=twse_openapi twse_report tpex mock"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	Candidates int           `yaml:"candidates" validate:"gte=0"`
}

// SlotConfig overrides one slot's universe sizing.
type SlotConfig struct {
	Fetch      int `yaml:"fetch" validate:"gt=0"`
	Candidates int `yaml:"candidates" validate:"gt=0"`
}

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Enabled    bool   `yaml:"enabled" default:"true"`
	Sender     string `yaml:"sender"`
	Password   string `yaml:"password"`
	Receiver   string `yaml:"receiver"`
	SMTPServer string `yaml:"smtp_server" default:"smtp.gmail.com"`
	SMTPPort   int    `yaml:"smtp_port" default:"587" validate:"min=1,max=65535"`
	UseTLS     bool   `yaml:"use_tls" default:"true"`
}

// LineConfig holds LINE Messaging API settings.
type LineConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AccessToken string `yaml:"access_token"`
	UserID      string `yaml:"user_id"`
	GroupID     string `yaml:"group_id"`
	BaseURL     string `yaml:"base_url"`
}

// TelegramConfig holds Telegram Bot API settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	BaseURL  string `yaml:"base_url"`
}

// MinimalFallbackTimeout bounds the inline fallback that runs after every
// tier has failed.
const MinimalFallbackTimeout = 30 * time.Second

// DefaultTiers is the fallback chain used when the file names none.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{Name: "unified", Source: "twse_openapi", Timeout: 90 * time.Second},
		{Name: "integrated", Source: "twse_report", Timeout: 60 * time.Second},
		{Name: "optimized", Source: "twse_openapi", Timeout: 45 * time.Second, Candidates: 50},
	}
}

// DefaultCrons maps slots to cron specs (with seconds) for the daemon.
func DefaultCrons() map[string]string {
	return map[string]string{
		string(model.SlotHeartbeat):      "0 30 8 * * 1-5",
		string(model.SlotMorningScan):    "0 0 9 * * 1-5",
		string(model.SlotMidMorningScan): "0 30 10 * * 1-5",
		string(model.SlotMidDayScan):     "0 30 12 * * 1-5",
		string(model.SlotAfternoonScan):  "0 0 15 * * 1-5",
		string(model.SlotWeeklySummary):  "0 0 17 * * 5",
	}
}

// Load reads config from a YAML file, then a .env file, then applies
// environment variable overrides. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	loadEnvFile()
	applyEnv(cfg)

	if len(cfg.Tiers) == 0 {
		cfg.Tiers = DefaultTiers()
	}
	if len(cfg.Schedule.Crons) == 0 {
		cfg.Schedule.Crons = DefaultCrons()
	}
	return cfg, nil
}

// loadEnvFile loads .env when present. Variables already set in the
// environment keep their value.
func loadEnvFile() {
	path := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		path = v
	}
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Notify.Email.Sender, "EMAIL_SENDER")
	setString(&cfg.Notify.Email.Password, "EMAIL_PASSWORD")
	setString(&cfg.Notify.Email.Receiver, "EMAIL_RECEIVER")
	setString(&cfg.Notify.Email.SMTPServer, "EMAIL_SMTP_SERVER")
	setInt(&cfg.Notify.Email.SMTPPort, "EMAIL_SMTP_PORT")
	setBool(&cfg.Notify.Email.UseTLS, "EMAIL_USE_TLS")

	setBool(&cfg.Notify.Line.Enabled, "LINE_ENABLED")
	setString(&cfg.Notify.Line.AccessToken, "LINE_CHANNEL_ACCESS_TOKEN")
	setString(&cfg.Notify.Line.UserID, "LINE_USER_ID")
	setString(&cfg.Notify.Line.GroupID, "LINE_GROUP_ID")

	setString(&cfg.Notify.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Notify.Telegram.ChatID, "TELEGRAM_CHAT_ID")

	setString(&cfg.Notify.BackupDir, "BACKUP_DIR")
	setString(&cfg.Storage.ResultsDir, "RESULTS_DIR")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Metrics.Textfile, "METRICS_TEXTFILE")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Proxy, "HTTPS_PROXY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := make(map[string]bool, len(c.Tiers))
	budget := MinimalFallbackTimeout
	for _, t := range c.Tiers {
		if seen[t.Name] {
			return fmt.Errorf("tiers: duplicate name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Timeout >= c.Run.Timeout {
			return fmt.Errorf("tiers: %s timeout %s must be shorter than run.timeout %s", t.Name, t.Timeout, c.Run.Timeout)
		}
		budget += t.Timeout
	}
	if budget >= c.Run.Timeout {
		return fmt.Errorf("tiers: timeouts plus the %s minimal fallback sum to %s, must be shorter than run.timeout %s",
			MinimalFallbackTimeout, budget, c.Run.Timeout)
	}
	for name := range c.Slots {
		if _, err := model.ParseTimeSlot(name); err != nil {
			return fmt.Errorf("slots: %w", err)
		}
	}
	for name, spec := range c.Schedule.Crons {
		if _, err := model.ParseTimeSlot(name); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
		if spec == "" {
			return fmt.Errorf("schedule: empty cron for %s", name)
		}
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}
