package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Job source APIs
	HHAPIBaseURL  string
	AdzunaBaseURL string
	AdzunaAppID   string
	AdzunaAppKey  string
	SourceTimeout time.Duration

	// Text generation
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Application gateway (external browser-automation service)
	ApplyGatewayURL string

	// Notifications (optional)
	TelegramToken string

	// Pipeline settings
	RunInterval        time.Duration
	RunOnce            bool
	AutoApplyThreshold int
	BrowseThreshold    int
	PerRunCap          int
	PacingMin          time.Duration
	PacingMax          time.Duration
	UserDelay          time.Duration
	UserConcurrency    int

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		HHAPIBaseURL:       "https://api.hh.ru",
		AdzunaBaseURL:      "https://api.adzuna.com/v1/api",
		SourceTimeout:      30 * time.Second,
		OpenAIBaseURL:      "https://api.openai.com/v1",
		OpenAIModel:        "gpt-3.5-turbo",
		RunInterval:        time.Hour,
		AutoApplyThreshold: 85,
		BrowseThreshold:    80,
		PerRunCap:          10,
		PacingMin:          5 * time.Second,
		PacingMax:          10 * time.Second,
		UserDelay:          2 * time.Second,
		UserConcurrency:    1,
		LogLevel:           "info",
		RedisDB:            0,
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	cfg.ApplyGatewayURL = os.Getenv("APPLY_GATEWAY_URL")
	if cfg.ApplyGatewayURL == "" {
		return nil, fmt.Errorf("APPLY_GATEWAY_URL is required")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	} else {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if baseURL := os.Getenv("HHAPI_BASE_URL"); baseURL != "" {
		cfg.HHAPIBaseURL = baseURL
	}

	if baseURL := os.Getenv("ADZUNA_BASE_URL"); baseURL != "" {
		cfg.AdzunaBaseURL = baseURL
	}

	cfg.AdzunaAppID = os.Getenv("ADZUNA_APP_ID")
	cfg.AdzunaAppKey = os.Getenv("ADZUNA_APP_KEY")

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.OpenAIBaseURL = baseURL
	}

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAIModel = model
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if timeout := os.Getenv("SOURCE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SOURCE_TIMEOUT: %w", err)
		}
		cfg.SourceTimeout = d
	}

	if interval := os.Getenv("RUN_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_INTERVAL: %w", err)
		}
		cfg.RunInterval = d
	}

	if once := os.Getenv("RUN_ONCE"); once != "" {
		b, err := strconv.ParseBool(once)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_ONCE: %w", err)
		}
		cfg.RunOnce = b
	}

	if threshold := os.Getenv("AUTO_APPLY_THRESHOLD"); threshold != "" {
		n, err := strconv.Atoi(threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_APPLY_THRESHOLD: %w", err)
		}
		cfg.AutoApplyThreshold = n
	}

	if threshold := os.Getenv("BROWSE_THRESHOLD"); threshold != "" {
		n, err := strconv.Atoi(threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid BROWSE_THRESHOLD: %w", err)
		}
		cfg.BrowseThreshold = n
	}

	if perRun := os.Getenv("PER_RUN_CAP"); perRun != "" {
		n, err := strconv.Atoi(perRun)
		if err != nil {
			return nil, fmt.Errorf("invalid PER_RUN_CAP: %w", err)
		}
		cfg.PerRunCap = n
	}

	if pacing := os.Getenv("PACING_MIN"); pacing != "" {
		d, err := time.ParseDuration(pacing)
		if err != nil {
			return nil, fmt.Errorf("invalid PACING_MIN: %w", err)
		}
		cfg.PacingMin = d
	}

	if pacing := os.Getenv("PACING_MAX"); pacing != "" {
		d, err := time.ParseDuration(pacing)
		if err != nil {
			return nil, fmt.Errorf("invalid PACING_MAX: %w", err)
		}
		cfg.PacingMax = d
	}

	if delay := os.Getenv("USER_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("invalid USER_DELAY: %w", err)
		}
		cfg.UserDelay = d
	}

	if concurrency := os.Getenv("USER_CONCURRENCY"); concurrency != "" {
		n, err := strconv.Atoi(concurrency)
		if err != nil {
			return nil, fmt.Errorf("invalid USER_CONCURRENCY: %w", err)
		}
		cfg.UserConcurrency = n
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	if c.ApplyGatewayURL == "" {
		return fmt.Errorf("apply gateway URL is empty")
	}

	if c.RunInterval < time.Minute {
		return fmt.Errorf("run interval too small: %v", c.RunInterval)
	}

	if c.AutoApplyThreshold < 0 || c.AutoApplyThreshold > 100 {
		return fmt.Errorf("auto-apply threshold must be between 0 and 100")
	}

	if c.BrowseThreshold < 0 || c.BrowseThreshold > 100 {
		return fmt.Errorf("browse threshold must be between 0 and 100")
	}

	if c.PerRunCap < 1 || c.PerRunCap > 100 {
		return fmt.Errorf("per-run cap must be between 1 and 100")
	}

	if c.PacingMin <= 0 || c.PacingMax < c.PacingMin {
		return fmt.Errorf("invalid pacing bounds: %v..%v", c.PacingMin, c.PacingMax)
	}

	if c.UserConcurrency < 1 || c.UserConcurrency > 8 {
		return fmt.Errorf("user concurrency must be between 1 and 8")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
