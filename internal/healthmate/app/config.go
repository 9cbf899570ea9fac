package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/healthmate/server/internal/healthmate/inference"
	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"

	NotifierLog  = "log"
	NotifierSMTP = "smtp"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./healthmate.db)
	DatabaseURL    string // Postgres DSN, required for the postgres driver

	Issuer         string        // JWT issuer claim (default: healthmate)
	Algorithm      string        // HS256 or EdDSA (default: HS256)
	SigningKey     string        // HS256 secret, at least 32 bytes
	SigningKeyFile string        // Ed25519 PEM file, generated when missing (default: ./signing.pem)
	TokenTTL       time.Duration // Access token lifetime (default: 1h)
	PepperFile     string        // Pepper for password hashing (default: ./pepper)

	OTPValidity      time.Duration // OTP window (default: 5m)
	OTPMaxAttempts   int           // Verification attempts per OTP (default: 5)
	CleanupInterval  time.Duration // Reaper period (default: 5m)
	PasswordMinScore int           // zxcvbn minimum score, 0 disables (default: 0)
	NotifyTimeout    time.Duration // Bound on one notifier call (default: 10s)
	StoreTimeout     time.Duration // Bound on one store call (default: 5s)

	Notifier     string // log or smtp (default: log)
	SMTPHost     string
	SMTPPort     int // default: 587
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	InferenceURL     string
	InferenceAPIKey  string
	InferenceTimeout time.Duration // default: 30s
}

func LoadConfig() Config {
	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "healthmate.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		Issuer:         getEnvOrDefault("AUTH_ISSUER", "healthmate"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", AlgorithmHS256),
		SigningKey:     os.Getenv("AUTH_SIGNING_KEY"),
		SigningKeyFile: getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing.pem"),
		TokenTTL:       getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		OTPValidity:      getEnvDurationOrDefault("OTP_VALIDITY", service.DefaultOTPValidity),
		OTPMaxAttempts:   getEnvIntOrDefault("OTP_MAX_ATTEMPTS", service.DefaultOTPAttempts),
		CleanupInterval:  getEnvDurationOrDefault("CLEANUP_INTERVAL", service.DefaultCleanupInterval),
		PasswordMinScore: getEnvIntOrDefault("PASSWORD_MIN_SCORE", 0),
		NotifyTimeout:    getEnvDurationOrDefault("NOTIFY_TIMEOUT", service.DefaultNotifyTimeout),
		StoreTimeout:     getEnvDurationOrDefault("STORE_TIMEOUT", service.DefaultStoreTimeout),

		Notifier:     strings.ToLower(getEnvOrDefault("NOTIFIER", NotifierLog)),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		InferenceURL:     os.Getenv("INFERENCE_URL"),
		InferenceAPIKey:  os.Getenv("INFERENCE_API_KEY"),
		InferenceTimeout: getEnvDurationOrDefault("INFERENCE_TIMEOUT", inference.DefaultTimeout),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownGracePeriod, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.DatabaseDriver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DatabaseFile, onlyIf(c.DatabaseDriver == DriverSQLite, validation.Required)...),
		validation.Field(&c.DatabaseURL, onlyIf(c.DatabaseDriver == DriverPostgres, validation.Required)...),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.Algorithm, validation.Required, validation.In(AlgorithmHS256, AlgorithmEdDSA)),
		validation.Field(&c.SigningKey, onlyIf(c.Algorithm == AlgorithmHS256,
			validation.Required, validation.Length(jwtx.MinHMACSecretLength, 0))...),
		validation.Field(&c.SigningKeyFile, onlyIf(c.Algorithm == AlgorithmEdDSA, validation.Required)...),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.PepperFile, validation.Required),
		validation.Field(&c.OTPValidity, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.OTPMaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.CleanupInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.PasswordMinScore, validation.Min(0), validation.Max(4)),
		validation.Field(&c.NotifyTimeout, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.StoreTimeout, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.Notifier, validation.Required, validation.In(NotifierLog, NotifierSMTP),
			validation.By(c.notifierAllowed)),
		validation.Field(&c.SMTPHost, onlyIf(c.Notifier == NotifierSMTP, validation.Required, is.Host)...),
		validation.Field(&c.SMTPPort, onlyIf(c.Notifier == NotifierSMTP, validation.Required, validation.Max(65535))...),
		validation.Field(&c.SMTPFrom, onlyIf(c.Notifier == NotifierSMTP, validation.Required, is.Email)...),
		validation.Field(&c.InferenceURL, is.URL),
		validation.Field(&c.InferenceTimeout, validation.Required, validation.Min(time.Duration(1))),
	)
}

// notifierAllowed keeps OTPs out of the logs outside dev and test.
func (c Config) notifierAllowed(value interface{}) error {
	if value == NotifierLog && !c.isDevelopment() {
		return errors.New("log notifier is only allowed when ENV is dev or test")
	}
	return nil
}

func (c Config) isDevelopment() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "test":
		return true
	}
	return false
}

// onlyIf applies rules when cond holds.
func onlyIf(cond bool, rules ...validation.Rule) []validation.Rule {
	if !cond {
		return nil
	}
	return rules
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
