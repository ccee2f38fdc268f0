package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration parsed from environment variables and an optional
// dotenv file. Environment variables win over the file.
type Config struct {
	HTTPAddr           string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
	LogDevelopment     bool

	CommerceProjectKey   string
	CommerceClientID     string
	CommerceClientSecret string
	CommerceAuthURL      string
	CommerceAPIURL       string
	CommerceScopes       []string
	CommerceCurrency     string
	CommerceTimeout      time.Duration

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	ShadowPasswordScheme string
	ShadowPasswordSecret string

	GuestOrderConcurrency int
	SessionCookieName     string
	GraphQLMaxParallelism int
}

var defaults = map[string]any{
	"HTTP_ADDR":                ":4000",
	"SHUTDOWN_TIMEOUT_SECONDS": 10,
	"CORS_ALLOWED_ORIGINS":     "http://localhost:3000",
	"LOG_LEVEL":                "info",
	"LOG_DEVELOPMENT":          false,
	"CTP_AUTH_URL":             "https://auth.europe-west1.gcp.commercetools.com",
	"CTP_API_URL":              "https://api.europe-west1.gcp.commercetools.com",
	"CTP_CURRENCY":             "EUR",
	"CTP_HTTP_TIMEOUT_SECONDS": 15,
	"SHADOW_PASSWORD_SCHEME":   "email",
	"GUEST_ORDER_CONCURRENCY":  4,
	"SESSION_COOKIE_NAME":      "token",
	"GRAPHQL_MAX_PARALLELISM":  10,
	"ENV_FILE":                 ".env",
}

// FromEnv builds Config with defaults, overridden by the dotenv file named by ENV_FILE
// (ignored when missing) and then by environment variables.
func FromEnv() (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if envFile := v.GetString("ENV_FILE"); envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:                v.GetString("HTTP_ADDR"),
		ShutdownTimeout:         seconds(v, "SHUTDOWN_TIMEOUT_SECONDS"),
		CORSAllowedOrigins:      list(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogDevelopment:          v.GetBool("LOG_DEVELOPMENT"),
		CommerceProjectKey:      v.GetString("CTP_PROJECT_KEY"),
		CommerceClientID:        v.GetString("CTP_CLIENT_ID"),
		CommerceClientSecret:    v.GetString("CTP_CLIENT_SECRET"),
		CommerceAuthURL:         v.GetString("CTP_AUTH_URL"),
		CommerceAPIURL:          v.GetString("CTP_API_URL"),
		CommerceScopes:          strings.Fields(v.GetString("CTP_SCOPES")),
		CommerceCurrency:        v.GetString("CTP_CURRENCY"),
		CommerceTimeout:         seconds(v, "CTP_HTTP_TIMEOUT_SECONDS"),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		ShadowPasswordScheme:    strings.ToLower(v.GetString("SHADOW_PASSWORD_SCHEME")),
		ShadowPasswordSecret:    v.GetString("SHADOW_PASSWORD_SECRET"),
		GuestOrderConcurrency:   v.GetInt("GUEST_ORDER_CONCURRENCY"),
		SessionCookieName:       v.GetString("SESSION_COOKIE_NAME"),
		GraphQLMaxParallelism:   v.GetInt("GRAPHQL_MAX_PARALLELISM"),
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the gateway cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.CommerceProjectKey == "" {
		errs = append(errs, errors.New("CTP_PROJECT_KEY is required"))
	}
	if c.CommerceClientID == "" || c.CommerceClientSecret == "" {
		errs = append(errs, errors.New("CTP_CLIENT_ID and CTP_CLIENT_SECRET are required"))
	}
	switch c.ShadowPasswordScheme {
	case "email":
	case "derived":
		if c.ShadowPasswordSecret == "" {
			errs = append(errs, errors.New("SHADOW_PASSWORD_SECRET is required for the derived scheme"))
		}
	default:
		errs = append(errs, fmt.Errorf("SHADOW_PASSWORD_SCHEME must be email or derived, got %q", c.ShadowPasswordScheme))
	}
	if c.GuestOrderConcurrency <= 0 {
		errs = append(errs, errors.New("GUEST_ORDER_CONCURRENCY must be positive"))
	}
	return errors.Join(errs...)
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func list(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
