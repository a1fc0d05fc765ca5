package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `validate:"gt=0,lte=65535"`
	APIKey      string `validate:"required"`
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Engine scheduling
	RunInterval   time.Duration `validate:"gt=0"`
	RegionWorkers int           `validate:"gt=0"`
	RegionTimeout time.Duration `validate:"gt=0"`

	// Raster loading
	RasterDir     string `validate:"required"`
	RasterTimeout time.Duration

	// Detection thresholds
	SmoothingSigma   float64 `validate:"gt=0"`
	ProminenceThresh float64 `validate:"gte=0"`
	PigmentThresh    float64 `validate:"gte=0"`
	AnomalyThreshPct float64 `validate:"gte=0"`
	MinValidFraction float64 `validate:"gte=0,lte=1"`
	BaselineYears    int     `validate:"gte=1"`

	// Calendar validation
	CalendarGraceDays int `validate:"gte=0"`

	// Alert targeting
	DefaultRadiusKm float64 `validate:"gt=0"`

	// Notification delivery
	NotifyMaxRetries int           `validate:"gte=0"`
	NotifyRetryDelay time.Duration `validate:"gte=0"`
	NotifyTimeout    time.Duration `validate:"gt=0"`
	SMSWebhookURL    string
	DiscordToken     string
	DemoMode         bool
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv("API_KEY", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		ServiceName: getEnv("SERVICE_NAME", "bloomwatch"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "bloomwatch"),

		RasterDir:     getEnv("RASTER_DIR", "data/rasters"),
		SMSWebhookURL: getEnv("SMS_WEBHOOK_URL", ""),
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.RegionWorkers, err = getEnvInt("REGION_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.BaselineYears, err = getEnvInt("BASELINE_YEARS", 5); err != nil {
		return nil, err
	}
	if cfg.CalendarGraceDays, err = getEnvInt("CALENDAR_GRACE_DAYS", 14); err != nil {
		return nil, err
	}
	if cfg.NotifyMaxRetries, err = getEnvInt("NOTIFY_MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	if cfg.RunInterval, err = getEnvDuration("RUN_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RegionTimeout, err = getEnvDuration("REGION_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RasterTimeout, err = getEnvDuration("RASTER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyRetryDelay, err = getEnvDuration("NOTIFY_RETRY_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.SmoothingSigma, err = getEnvFloat("SMOOTHING_SIGMA", 1.0); err != nil {
		return nil, err
	}
	if cfg.ProminenceThresh, err = getEnvFloat("PROMINENCE_THRESHOLD", 0.2); err != nil {
		return nil, err
	}
	if cfg.PigmentThresh, err = getEnvFloat("PIGMENT_THRESHOLD", 0.1); err != nil {
		return nil, err
	}
	if cfg.AnomalyThreshPct, err = getEnvFloat("ANOMALY_THRESHOLD_PCT", 20.0); err != nil {
		return nil, err
	}
	if cfg.MinValidFraction, err = getEnvFloat("MIN_VALID_FRACTION", 0.10); err != nil {
		return nil, err
	}
	if cfg.DefaultRadiusKm, err = getEnvFloat("DEFAULT_RADIUS_KM", 50.0); err != nil {
		return nil, err
	}

	cfg.DemoMode = getEnv("DEMO_MODE", "false") == "true"

	// Without live transport credentials the dispatcher must run in demo mode,
	// otherwise every delivery would land in the failed state.
	if cfg.SMSWebhookURL == "" && cfg.DiscordToken == "" {
		cfg.DemoMode = true
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
