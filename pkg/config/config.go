package config

import (
	"fmt"
	"os"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/availability"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings, read from the environment
type Config struct {
	Port    string `mapstructure:"PORT" validate:"required"`
	Env     string `mapstructure:"ENV" validate:"oneof=development production test"`
	GinMode string `mapstructure:"GIN_MODE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DataPath    string `mapstructure:"DATA_PATH"`

	JWTSecret     string `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS" validate:"gt=0"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile  string `mapstructure:"LOG_FILE"`

	RateLimitPerMin int      `mapstructure:"RATE_LIMIT_PER_MIN" validate:"gte=0"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`

	WorkStartHour int `mapstructure:"WORK_START_HOUR" validate:"gte=0,lte=23"`
	WorkEndHour   int `mapstructure:"WORK_END_HOUR" validate:"gte=0,lte=23,gtfield=WorkStartHour"`

	StripeSecretKey    string `mapstructure:"STRIPE_SECRET_KEY"`
	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL" validate:"omitempty,url"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL" validate:"omitempty,url"`
	Currency           string `mapstructure:"CURRENCY" validate:"len=3"`

	PendingTTLMinutes int    `mapstructure:"PENDING_TTL_MINUTES" validate:"gt=0"`
	PendingSweepSpec  string `mapstructure:"PENDING_SWEEP_SPEC" validate:"required"`
}

var defaults = map[string]any{
	"PORT":                 "8000",
	"ENV":                  "development",
	"GIN_MODE":             "",
	"DATABASE_URL":         "",
	"DATA_PATH":            "autonomeet.db",
	"JWT_SECRET":           "",
	"TOKEN_TTL_HOURS":      2,
	"ADMIN_EMAIL":          "admin@autonomeet.local",
	"ADMIN_PASSWORD":       "",
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"RATE_LIMIT_PER_MIN":   200,
	"CORS_ORIGINS":         "http://localhost:5173",
	"WORK_START_HOUR":      availability.DefaultPolicy.StartHour,
	"WORK_END_HOUR":        availability.DefaultPolicy.EndHour,
	"STRIPE_SECRET_KEY":    "",
	"CHECKOUT_SUCCESS_URL": "http://localhost:5173/success",
	"CHECKOUT_CANCEL_URL":  "http://localhost:5173/services",
	"CURRENCY":             "usd",
	"PENDING_TTL_MINUTES":  30,
	"PENDING_SWEEP_SPEC":   "@every 5m",
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
}

// Load reads .env, the process environment and defaults, then validates the result
func Load() (*Config, error) {
	LoadDotEnv()
	return FromViper(viper.New())
}

// FromViper builds a Config from an already prepared viper instance.
// Environment variables override the instance's values.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Policy returns the working-hours window for availability
func (c *Config) Policy() availability.Policy {
	return availability.Policy{StartHour: c.WorkStartHour, EndHour: c.WorkEndHour}
}

// TokenTTL returns the lifetime of issued access tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// PendingTTL returns how long a pending booking waits for checkout
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLMinutes) * time.Minute
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
