package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the scheduler.
type Config struct {
	AppPort     string
	DatabaseURL string
	Location    *time.Location
	LogLevel    string
	LogJSON     bool
	StaticDir   string

	SolarAPIURL     string
	PrayerAPIURL    string
	PrayerMethod    int
	UpstreamTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TimesCacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	DailySyncTime     string
	DailySyncTemplate int

	TelegramToken  string
	TelegramChatID int64
	DigestTime     string
}

// Load reads configuration from the environment (and a .env file, if present) with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		AppPort:       env("APP_PORT"),
		DatabaseURL:   env("DATABASE_URL"),
		LogLevel:      env("LOG_LEVEL"),
		StaticDir:     env("STATIC_DIR"),
		SolarAPIURL:   strings.TrimRight(env("SOLAR_API_URL"), "/"),
		PrayerAPIURL:  strings.TrimRight(env("PRAYER_API_URL"), "/"),
		RedisAddr:     env("REDIS_ADDR"),
		RedisPassword: env("REDIS_PASSWORD"),
		DailySyncTime: env("DAILY_SYNC_TIME"),
		TelegramToken: env("TELEGRAM_TOKEN"),
		DigestTime:    env("DIGEST_TIME"),
	}

	if cfg.AppPort == "" {
		cfg.AppPort = env("PORT")
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "5001"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "data/scheduler.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SolarAPIURL == "" {
		cfg.SolarAPIURL = "https://api.sunrise-sunset.org"
	}
	if cfg.PrayerAPIURL == "" {
		cfg.PrayerAPIURL = "https://api.aladhan.com"
	}

	var err error
	if cfg.Location, err = parseLocation(env("APP_TIMEZONE")); err != nil {
		return cfg, err
	}
	if cfg.LogJSON, err = parseBool("LOG_JSON", env("LOG_JSON"), false); err != nil {
		return cfg, err
	}
	if cfg.PrayerMethod, err = parseInt("PRAYER_METHOD", env("PRAYER_METHOD"), 2); err != nil {
		return cfg, err
	}
	if cfg.UpstreamTimeout, err = parseDuration("UPSTREAM_TIMEOUT", env("UPSTREAM_TIMEOUT"), 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = parseInt("REDIS_DB", env("REDIS_DB"), 0); err != nil {
		return cfg, err
	}
	if cfg.TimesCacheTTL, err = parseDuration("TIMES_CACHE_TTL", env("TIMES_CACHE_TTL"), 6*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.RateLimitBurst, err = parseInt("RATE_LIMIT_BURST", env("RATE_LIMIT_BURST"), 40); err != nil {
		return cfg, err
	}
	if cfg.DailySyncTemplate, err = parseInt("DAILY_SYNC_TEMPLATE", env("DAILY_SYNC_TEMPLATE"), 1); err != nil {
		return cfg, err
	}

	cfg.RateLimitRPS = 20
	if raw := env("RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return cfg, fmt.Errorf("RATE_LIMIT_RPS: invalid value %q", raw)
		}
		cfg.RateLimitRPS = rps
	}

	if raw := env("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: invalid value %q", raw)
		}
		cfg.TelegramChatID = id
	}

	if cfg.DigestTime != "" && cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("DIGEST_TIME requires TELEGRAM_TOKEN")
	}
	if cfg.DigestTime != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("DIGEST_TIME requires TELEGRAM_CHAT_ID")
	}

	return cfg, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.AppPort
}

func parseLocation(raw string) (*time.Location, error) {
	if raw == "" || raw == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func parseInt(key, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return n, nil
}

func parseBool(key, raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return b, nil
}

// parseDuration accepts Go durations ("90s") and bare seconds ("90").
func parseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, raw)
	}
	return d, nil
}
