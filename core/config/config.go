package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// AdminIDs lists chat identifiers that receive service notifications and may run admin commands.
// It decodes from a comma-separated env value such as "1001, 1002".
type AdminIDs []int64

// Decode implements envconfig.Decoder. Any non-integer entry is rejected.
func (a *AdminIDs) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		*a = nil
		return nil
	}
	parts := strings.Split(value, ",")
	ids := make(AdminIDs, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return fmt.Errorf("empty admin id in %q", value)
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid admin id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	*a = ids
	return nil
}

// Primary returns the first configured admin chat, or false when the list is empty.
func (a AdminIDs) Primary() (int64, bool) {
	if len(a) == 0 {
		return 0, false
	}
	return a[0], true
}

// Contains reports whether id belongs to an administrator.
func (a AdminIDs) Contains(id int64) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// TelegramConfig holds bot credentials and polling settings.
type TelegramConfig struct {
	Token    string   `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminIDs AdminIDs `yaml:"admin_ids" envconfig:"ADMIN_IDS"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// PaymentConfig carries YooKassa shop credentials.
type PaymentConfig struct {
	ShopID    string `yaml:"shop_id" envconfig:"YOOKASSA_SHOP_ID"`
	SecretKey string `yaml:"secret_key" envconfig:"YOOKASSA_SECRET_KEY"`
	ReturnURL string `yaml:"return_url" envconfig:"YOOKASSA_RETURN_URL"`
	APIURL    string `yaml:"api_url" envconfig:"YOOKASSA_API_URL"`
	Currency  string `yaml:"currency" envconfig:"PAYMENT_CURRENCY"`
}

// Enabled reports whether both shop credentials are present.
func (p PaymentConfig) Enabled() bool {
	return strings.TrimSpace(p.ShopID) != "" && strings.TrimSpace(p.SecretKey) != ""
}

// SessionConfig points at the external session store.
type SessionConfig struct {
	RedisURL   string `yaml:"redis_url" envconfig:"REDIS_URL"`
	KeyPrefix  string `yaml:"key_prefix" envconfig:"SESSION_KEY_PREFIX"`
	TTLSeconds int    `yaml:"ttl_seconds" envconfig:"SESSION_TTL_SECONDS"`
	// Backend selects "redis" (default) or "memory".
	Backend string `yaml:"backend" envconfig:"SESSION_BACKEND"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// DefaultRedisURL is used when REDIS_URL is not set.
	DefaultRedisURL = "redis://localhost:6379/0"
	// DefaultSessionKeyPrefix namespaces session keys in Redis.
	DefaultSessionKeyPrefix = "easyshop"
	// DefaultLongPollTimeoutSeconds is the getUpdates timeout used when none is configured.
	DefaultLongPollTimeoutSeconds = 10
	// DefaultRateLimitIntervalMS is the throttling interval applied when none is configured.
	DefaultRateLimitIntervalMS = 500
	// DefaultYooKassaAPIURL is the production YooKassa REST endpoint.
	DefaultYooKassaAPIURL = "https://api.yookassa.ru/v3"
	// DefaultCurrency is the ISO code used for prices and payments.
	DefaultCurrency = "RUB"

	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds throttling settings.
// IntervalMS of 0 selects the default, a negative value disables throttling.
// ExcludeUpdates accepts update kinds that bypass throttling: "callback", "message", "inline_query".
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Payment   PaymentConfig   `yaml:"payment"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from an optional YAML file, a local .env file and the process
// environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto fills dst from the YAML file at path (skipped when empty) and the environment.
// dst may be any struct whose fields carry yaml and envconfig tags.
func LoadInto(path string, dst any) error {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, dst); err != nil {
				return fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (BOT_TOKEN)")
	}
	if cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
	}
	if cfg.Telegram.LongPollTimeoutSeconds == 0 {
		cfg.Telegram.LongPollTimeoutSeconds = DefaultLongPollTimeoutSeconds
	}

	if strings.TrimSpace(cfg.Session.RedisURL) == "" {
		cfg.Session.RedisURL = DefaultRedisURL
	}
	if strings.TrimSpace(cfg.Session.KeyPrefix) == "" {
		cfg.Session.KeyPrefix = DefaultSessionKeyPrefix
	}
	if cfg.Session.TTLSeconds < 0 {
		return fmt.Errorf("session.ttl_seconds must be >= 0")
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	switch backend {
	case "":
		backend = SessionBackendRedis
	case SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: redis, memory", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend

	if strings.TrimSpace(cfg.Payment.APIURL) == "" {
		cfg.Payment.APIURL = DefaultYooKassaAPIURL
	}
	cfg.Payment.APIURL = strings.TrimRight(cfg.Payment.APIURL, "/")
	if strings.TrimSpace(cfg.Payment.Currency) == "" {
		cfg.Payment.Currency = DefaultCurrency
	}

	if cfg.RateLimit.IntervalMS == 0 {
		cfg.RateLimit.IntervalMS = DefaultRateLimitIntervalMS
	}

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
