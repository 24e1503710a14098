package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RevenueBasis string

const (
	// RevenueBasisSubtotal sums booking subtotals (pre-discount).
	RevenueBasisSubtotal RevenueBasis = "subtotal"
	// RevenueBasisTotal sums booking totals (post-discount).
	RevenueBasisTotal RevenueBasis = "total"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Payment    PaymentConfig
	Accounting AccountingConfig
	Scheduler  SchedulerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	NotifyLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	OtelEndpoint       string
	ServiceName        string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
	LogSQL     bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type PaymentConfig struct {
	MidtransServerKey    string
	MidtransIsProduction bool
}

type AccountingConfig struct {
	RevenueBasis        RevenueBasis
	TrialDays           int
	RenewalWindowDays   int
	EventTimeout        time.Duration
	DistributionBatch   int
	PlanCacheTTL        time.Duration
	CancellationMinDays int
}

type SchedulerConfig struct {
	Enabled           bool
	DistributeSpec    string
	ExpireSpec        string
	ResetCountersSpec string
	LockExpiry        time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryMultiplier   float64
	JobTimeout        time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "accounting.log"),
			NotifyLogFilePath:  getEnv("NOTIFY_LOG_FILE_PATH", "notify.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "eventhub-accounting"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogSQL:     getEnvAsBool("DB_LOG_SQL", false),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "EventHub"),
		},
		Payment: PaymentConfig{
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction: getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
		},
		Accounting: AccountingConfig{
			RevenueBasis:        parseRevenueBasis(getEnv("REVENUE_BASIS", string(RevenueBasisSubtotal))),
			TrialDays:           getEnvAsInt("TRIAL_DAYS", 14),
			RenewalWindowDays:   getEnvAsInt("RENEWAL_WINDOW_DAYS", 7),
			EventTimeout:        getEnvAsDuration("DISTRIBUTION_EVENT_TIMEOUT", 30*time.Second),
			DistributionBatch:   getEnvAsInt("DISTRIBUTION_BATCH_SIZE", 500),
			PlanCacheTTL:        getEnvAsDuration("PLAN_CACHE_TTL", 10*time.Minute),
			CancellationMinDays: getEnvAsInt("CANCELLATION_MIN_DAYS", 2),
		},
		Scheduler: SchedulerConfig{
			Enabled:           getEnvAsBool("SCHEDULER_ENABLED", true),
			DistributeSpec:    getEnv("CRON_DISTRIBUTE_REVENUE", "*/2 * * * *"),
			ExpireSpec:        getEnv("CRON_EXPIRE_SUBSCRIPTIONS", "0 2 * * *"),
			ResetCountersSpec: getEnv("CRON_RESET_USAGE_COUNTERS", "0 0 1 * *"),
			LockExpiry:        getEnvAsDuration("SCHEDULER_LOCK_EXPIRY", 5*time.Minute),
			RetryAttempts:     getEnvAsInt("SCHEDULER_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:    getEnvAsDuration("SCHEDULER_RETRY_BASE_DELAY", 2*time.Second),
			RetryMultiplier:   getEnvAsFloat("SCHEDULER_RETRY_MULTIPLIER", 2.0),
			JobTimeout:        getEnvAsDuration("SCHEDULER_JOB_TIMEOUT", 4*time.Minute),
		},
	}
}

func parseRevenueBasis(value string) RevenueBasis {
	switch RevenueBasis(strings.ToLower(strings.TrimSpace(value))) {
	case RevenueBasisTotal:
		return RevenueBasisTotal
	default:
		return RevenueBasisSubtotal
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
