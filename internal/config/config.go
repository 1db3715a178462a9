package config

import (
	"os"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Document store
	AppNamespace        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Email transport
	EmailProvider  string // auto | ses | sendgrid | disabled
	FromEmail      string
	FromName       string
	SendGridAPIKey string

	// Deployment-fixed referring doctor. Used when the agent omits the field.
	ReferringDoctor string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		AppNamespace:        getEnv("APP_NAMESPACE", "refer_special"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		FromEmail:      getEnv("REFERRAL_FROM_EMAIL", ""),
		FromName:       getEnv("REFERRAL_FROM_NAME", "Referral Desk"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		ReferringDoctor: getEnv("REFERRING_DOCTOR", ""),
	}
}

// PatientProfilesTable returns the namespaced patient profiles table name.
func (c *Config) PatientProfilesTable() string {
	return c.AppNamespace + "_patient_profiles"
}

// AppointmentsTable returns the namespaced appointments table name.
func (c *Config) AppointmentsTable() string {
	return c.AppNamespace + "_appointments"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
