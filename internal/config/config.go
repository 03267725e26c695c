// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds configuration for the client engine and the local dev server,
// loaded from file or environment variables.
type Config struct {
	// Client side
	APIBaseURL      string `mapstructure:"API_BASE_URL"`
	CredentialStore string `mapstructure:"CREDENTIAL_STORE"` // file | redis | memory
	CredentialFile  string `mapstructure:"CREDENTIAL_FILE"`
	RedisURL        string `mapstructure:"REDIS_URL"`

	// Endpoint paths, relative to APIBaseURL
	LoginPath     string `mapstructure:"LOGIN_PATH"`
	PostsPath     string `mapstructure:"POSTS_PATH"`
	TrendingPath  string `mapstructure:"TRENDING_PATH"`
	CommentsPath  string `mapstructure:"COMMENTS_PATH"`
	VotesPath     string `mapstructure:"VOTES_PATH"`
	UsersPath     string `mapstructure:"USERS_PATH"`
	DashboardPath string `mapstructure:"DASHBOARD_PATH"`

	// Dev server
	Port       string `mapstructure:"PORT"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	SeedUsers  int    `mapstructure:"SEED_USERS"`
	SeedPosts  int    `mapstructure:"SEED_POSTS"`
	Env        string `mapstructure:"APP_ENV"`
}

// LoadConfig loads configuration from config.yml and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; defaults plus env cover development.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("API_BASE_URL", "http://localhost:5050")
	viper.SetDefault("CREDENTIAL_STORE", "file")
	viper.SetDefault("CREDENTIAL_FILE", "")
	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("LOGIN_PATH", "/api/auth/login")
	viper.SetDefault("POSTS_PATH", "/api/posts")
	viper.SetDefault("TRENDING_PATH", "/api/posts/trending")
	viper.SetDefault("COMMENTS_PATH", "/api/comments")
	viper.SetDefault("VOTES_PATH", "/api/votes")
	viper.SetDefault("USERS_PATH", "/api/users")
	viper.SetDefault("DASHBOARD_PATH", "/api/dashboard")

	viper.SetDefault("PORT", "5050")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("DB_HOST", "")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "postline")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("SEED_USERS", 8)
	viper.SetDefault("SEED_POSTS", 30)
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.CredentialStore {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be file, redis, or memory, got %q", c.CredentialStore)
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}

	return nil
}
