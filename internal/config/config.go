package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Identity provider backends.
const (
	IdentityGoTrue = "gotrue"
	IdentityLocal  = "local"
)

// Mail transports.
const (
	MailSMTP     = "smtp"
	MailSendGrid = "sendgrid"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	Logging LoggingConfig

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	IdentityProvider       string
	SupabaseURL            string
	SupabaseKey            string
	SupabaseServiceRoleKey string
	IdentityTimeout        time.Duration
	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiry              time.Duration

	MailProvider   string
	MailSubject    string
	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string

	CodeTTL            time.Duration
	CodeReaperSchedule string // cron spec; empty disables the reaper

	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	VerificationCodes string
	Posts             string
	Accounts          string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")
	smtpUser := getEnv("SMTP_USERNAME", os.Getenv("EMAIL_USER"))
	return &Config{
		AppPort: getEnv("PORT", "5000"),
		AppEnv:  appEnv,
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultLogFormat(appEnv)),
		},
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			VerificationCodes: getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
			Posts:             getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Accounts:          getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
		},
		IdentityProvider:       strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityGoTrue)),
		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:            getEnv("SUPABASE_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", os.Getenv("SUPABASE_KEY")),
		IdentityTimeout:        getEnvDuration("IDENTITY_TIMEOUT", 10*time.Second),
		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:              getEnvDuration("JWT_EXPIRY", time.Hour),
		MailProvider:           strings.ToLower(getEnv("MAIL_PROVIDER", MailSMTP)),
		MailSubject:            getEnv("MAIL_SUBJECT", "Your Web3ix Verification Code"),
		SMTPHost:               getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:               getEnv("SMTP_PORT", "587"),
		SMTPFrom:               getEnv("SMTP_FROM", smtpUser),
		SMTPUsername:           smtpUser,
		SMTPPassword:           getEnv("SMTP_PASSWORD", os.Getenv("EMAIL_PASS")),
		SendGridAPIKey:         getEnv("SENDGRID_API_KEY", ""),
		CodeTTL:                getEnvDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
		CodeReaperSchedule:     lookupEnv("CODE_REAPER_SCHEDULE", "@every 15m"),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func defaultLogFormat(appEnv string) string {
	if appEnv == "production" {
		return "json"
	}
	return "console"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lookupEnv distinguishes unset (fallback) from explicitly empty.
func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "10m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
