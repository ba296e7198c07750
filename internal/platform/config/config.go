// Copyright (c) 2026 GenUI Labs. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. In development a
local .env file is loaded first via godotenv.

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, mailer, uploader) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the GenUI API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"5000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// JWTSecret signs and verifies bearer tokens (HS256).
	JWTSecret string `env:"JWT_SECRET,required"`

	// Transactional email delivery (Brevo)
	BrevoAPIKey      string `env:"BREVO_API_KEY,required"`
	BrevoBaseURL     string `env:"BREVO_BASE_URL"     envDefault:"https://api.brevo.com"`
	BrevoSenderName  string `env:"BREVO_SENDER_NAME"  envDefault:"GenUI"`
	BrevoSenderEmail string `env:"BREVO_SENDER_EMAIL,required"`

	// Object storage for profile pictures (Cloudinary)
	CloudinaryURL string `env:"CLOUDINARY_URL,required"`

	// Cross-Origin Resource Sharing: comma-separated extra allowed origins
	// on top of the deployed SPA hosts.
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// defaultOrigins are the deployed SPA hosts that are always allowed in
// production.
var defaultOrigins = []string{
	"http://localhost:5173",
	"https://genn-ui.netlify.app",
	"https://gen-ui-omega-smoky.vercel.app",
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A .env file in the working directory is applied first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {

	// Best effort: production containers configure the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the full CORS allow-list: the deployed SPA hosts
// plus any EXTRA_ORIGINS entries.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(defaultOrigins)+2)
	origins = append(origins, defaultOrigins...)

	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
