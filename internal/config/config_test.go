package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:      "http://localhost:5050",
			CredentialStore: "file",
			Port:            "5050",
			JWTSecret:       "secure-secret-at-least-32-chars-long",
			Env:             "development",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing base URL", func(c *Config) { c.APIBaseURL = "" }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown credential store", func(c *Config) { c.CredentialStore = "vault" }, true},
		{"memory credential store", func(c *Config) { c.CredentialStore = "memory" }, false},
		{"redis credential store", func(c *Config) { c.CredentialStore = "redis" }, false},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"production strong secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "secure-secret-at-least-32-chars-long"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
