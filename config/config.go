// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mailprobe/verifier"
)

var AppConfig Config

type Config struct {
	HeloDomain     string        `json:"helo_domain" validate:"required,hostname"`
	FromEmail      string        `json:"from_email" validate:"required,email"`
	SMTPPort       string        `json:"smtp_port" validate:"required,numeric"`
	ConnectTimeout time.Duration `json:"connect_timeout" validate:"required"`
	SessionTimeout time.Duration `json:"session_timeout" validate:"required"`
	DNSTimeout     time.Duration `json:"dns_timeout" validate:"required"`
	LogLevel       string        `json:"log_level" validate:"oneof=panic fatal error warn info debug trace"`
	SkipWhois      bool          `json:"skip_whois"`
}

var validate = validator.New()

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		HeloDomain:     getEnv("PROBE_HELO_DOMAIN", verifier.DefaultHeloDomain),
		FromEmail:      getEnv("PROBE_FROM_EMAIL", verifier.DefaultFromEmail),
		SMTPPort:       getEnv("PROBE_SMTP_PORT", verifier.DefaultPort),
		ConnectTimeout: getEnvAsDuration("PROBE_CONNECT_TIMEOUT", verifier.DefaultConnectTimeout),
		SessionTimeout: getEnvAsDuration("PROBE_SESSION_TIMEOUT", verifier.DefaultSessionTimeout),
		DNSTimeout:     getEnvAsDuration("PROBE_DNS_TIMEOUT", verifier.DefaultDNSTimeout),
		LogLevel:       getEnv("PROBE_LOG_LEVEL", "warn"),
		SkipWhois:      getEnvAsBool("PROBE_SKIP_WHOIS", false),
	}

	if err := validate.Struct(AppConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
