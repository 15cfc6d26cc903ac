// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "MF_API_CONFIG_FILE"

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mf-api/config.yaml",
	"/etc/mf-api/config.yml",
}

// envKeyMap maps environment variables to koanf config paths. An
// explicit map keeps multi-word keys (pretty_print, max_open_conns)
// unambiguous, which a mechanical underscore-to-dot transform cannot.
var envKeyMap = map[string]string{
	"MF_API_SERVER_URL":          "server.url",
	"MF_API_SERVER_BIND_HOST":    "server.bind.host",
	"MF_API_SERVER_BIND_PORT":    "server.bind.port",
	"MF_API_SERVER_LIMIT":        "server.limit",
	"MF_API_SERVER_PRETTY_PRINT": "server.pretty_print",
	"MF_API_SERVER_GZIP":         "server.gzip",
	"MF_API_SERVER_CORS":         "server.cors",
	"MF_API_SERVER_ENCODING":     "server.encoding",
	"MF_API_SERVER_LANGUAGE":     "server.language",
	"MF_API_SERVER_LOCALES":      "server.locales",

	"MF_API_SERVER_RATE_LIMIT_ENABLED":             "server.rate_limit.enabled",
	"MF_API_SERVER_RATE_LIMIT_REQUESTS_PER_MINUTE": "server.rate_limit.requests_per_minute",

	"MF_API_METADATA_TITLE":       "metadata.identification.title",
	"MF_API_METADATA_DESCRIPTION": "metadata.identification.description",

	"MF_API_DATABASE_HOST":              "database.host",
	"MF_API_DATABASE_PORT":              "database.port",
	"MF_API_DATABASE_DBNAME":            "database.dbname",
	"MF_API_DATABASE_USER":              "database.user",
	"MF_API_DATABASE_PASSWORD":          "database.password",
	"MF_API_DATABASE_MAX_OPEN_CONNS":    "database.max_open_conns",
	"MF_API_DATABASE_MAX_IDLE_CONNS":    "database.max_idle_conns",
	"MF_API_DATABASE_CONN_MAX_LIFETIME": "database.conn_max_lifetime",
	"MF_API_DATABASE_ENSURE_SCHEMA":     "database.ensure_schema",

	"MF_API_LOGGING_LEVEL":  "logging.level",
	"MF_API_LOGGING_FORMAT": "logging.format",
	"MF_API_LOGGING_CALLER": "logging.caller",
}

// sliceKeys are comma-separated in env/file form and must unmarshal as
// string slices.
var sliceKeys = []string{"server.locales"}

// Load builds the configuration from defaults, the optional YAML file,
// and MF_API_ environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("MF_API_", ".", func(key string) string {
		return envKeyMap[key]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	processSliceFields(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path, honoring
// the MF_API_CONFIG_FILE override.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// processSliceFields splits comma-separated scalar values into slices
// for the keys that unmarshal into []string.
func processSliceFields(k *koanf.Koanf) {
	for _, key := range sliceKeys {
		raw := k.Get(key)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			_ = k.Set(key, parts)
		}
	}
}
