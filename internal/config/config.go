// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package config loads and validates the server configuration via Koanf
// v2 with layered sources: struct defaults, an optional YAML file, then
// MF_API_-prefixed environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/aistairc/mf-api/internal/validation"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Metadata MetadataConfig `koanf:"metadata"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP surface configuration.
type ServerConfig struct {
	// URL is the public base URL advertised in links and Location headers.
	URL         string          `koanf:"url" validate:"required,url"`
	Bind        BindConfig      `koanf:"bind"`
	Limit       int             `koanf:"limit" validate:"min=1,max=10000"`
	PrettyPrint bool            `koanf:"pretty_print"`
	Gzip        bool            `koanf:"gzip"`
	CORS        bool            `koanf:"cors"`
	Encoding    string          `koanf:"encoding"`
	Language    string          `koanf:"language"`
	Locales     []string        `koanf:"locales" validate:"min=1"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

// BindConfig is the listen address.
type BindConfig struct {
	Host string `koanf:"host" validate:"required"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
}

// Addr returns the host:port listen address.
func (b BindConfig) Addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// RateLimitConfig gates the httprate middleware.
type RateLimitConfig struct {
	Enabled           bool `koanf:"enabled"`
	RequestsPerMinute int  `koanf:"requests_per_minute" validate:"min=1"`
}

// MetadataConfig feeds the landing page.
type MetadataConfig struct {
	Identification IdentificationConfig `koanf:"identification"`
}

// IdentificationConfig names the service.
type IdentificationConfig struct {
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
}

// DatabaseConfig is the MobilityDB connection descriptor.
type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	DBName          string        `koanf:"dbname" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// EnsureSchema creates the mobilitydb extension and tables on
	// startup when they are absent.
	EnsureSchema bool `koanf:"ensure_schema"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		d.Host, d.Port, d.DBName, d.User, d.Password)
}

// LoggingConfig configures the zerolog wrapper.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, overridden by the config
// file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8085",
			Bind: BindConfig{
				Host: "0.0.0.0",
				Port: 8085,
			},
			Limit:       10,
			PrettyPrint: false,
			Gzip:        false,
			CORS:        true,
			Encoding:    "utf-8",
			Language:    "en-US",
			Locales:     []string{"en-US"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
			},
		},
		Metadata: MetadataConfig{
			Identification: IdentificationConfig{
				Title:       "OGC API - Moving Features",
				Description: "Access to data about moving features",
			},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			DBName:          "mobilitydb",
			User:            "postgres",
			Password:        "postgres",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			EnsureSchema:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
