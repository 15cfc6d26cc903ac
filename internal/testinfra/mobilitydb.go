// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aistairc/mf-api/internal/config"
)

// mobilityDBImage bundles PostgreSQL, PostGIS and the MobilityDB
// extension.
const mobilityDBImage = "mobilitydb/mobilitydb:16-3.4-1.1"

// MobilityDBContainer is a running MobilityDB instance for integration
// tests.
type MobilityDBContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// NewMobilityDBContainer starts a MobilityDB container and waits until
// PostgreSQL accepts connections.
func NewMobilityDBContainer(ctx context.Context, t *testing.T) (*MobilityDBContainer, error) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        mobilityDBImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "mobilitydb",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Logger:           NewContainerLogger(t),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mobilitydb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mapped port: %w", err)
	}

	return &MobilityDBContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Int(),
	}, nil
}

// DatabaseConfig returns a connection descriptor pointing at the
// container, with schema bootstrap enabled.
func (c *MobilityDBContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:            c.Host,
		Port:            c.Port,
		DBName:          "mobilitydb",
		User:            "postgres",
		Password:        "postgres",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		EnsureSchema:    true,
	}
}
