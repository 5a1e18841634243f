package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	Port                   string `mapstructure:"PORT"`
	GinMode                string `mapstructure:"GIN_MODE"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	AllowedOrigins         string `mapstructure:"ALLOWED_ORIGINS"`
	ReconcileSchedule      string `mapstructure:"RECONCILE_SCHEDULE"`
	RecommendCategoryLimit int    `mapstructure:"RECOMMEND_CATEGORY_LIMIT"`
}

var AppConfig *Config

// defaults registers every key so AutomaticEnv values reach Unmarshal even
// when no .env file exists.
var defaults = map[string]interface{}{
	"DATABASE_URL":             "",
	"JWT_SECRET":               "",
	"PORT":                     "8080",
	"GIN_MODE":                 "release",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
	"ALLOWED_ORIGINS":          "*",
	"RECONCILE_SCHEDULE":       "@daily",
	"RECOMMEND_CATEGORY_LIMIT": 20,
}

// LoadConfig loads the configuration from a .env file and environment variables.
// The returned bool is false when no .env file was found.
func LoadConfig() (*Config, bool, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, false, err
		}
		fileFound = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fileFound, err
	}

	AppConfig = &cfg
	return &cfg, fileFound, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RecommendCategoryLimit < 0 {
		errs = append(errs, errors.New("RECOMMEND_CATEGORY_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}
