// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package database is the data access layer over a MobilityDB-extended
// PostgreSQL store. It composes parametric SQL for the four query
// families of the API (collections, features, temporal geometries,
// temporal properties), builds MobilityDB temporal literals from
// validated MF-JSON, and owns the per-request session lifecycle.
//
// All identifiers reaching SQL composition are UUIDs validated with
// uuid.Parse; free-form values (property names, documents, literals)
// are only ever bound as parameters.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sony/gobreaker/v2"

	"github.com/aistairc/mf-api/internal/cache"
	"github.com/aistairc/mf-api/internal/config"
	"github.com/aistairc/mf-api/internal/logging"
	"github.com/aistairc/mf-api/internal/metrics"
)

// registryTTL bounds how stale the existence lists may get; every write
// invalidates the affected keys eagerly, so the TTL only covers external
// writers.
const registryTTL = time.Minute

// DB wraps the PostgreSQL/MobilityDB connection pool and provides the
// data access methods of the moving features API.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// Prepared statement caching for the hot existence-list queries.
	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex

	// breaker guards session acquisition so an unreachable store fails
	// fast instead of piling up connection attempts.
	breaker *gobreaker.CircuitBreaker[*sql.Conn]

	// registry caches existence lists (collection ids, feature ids,
	// property names) between requests.
	registry *cache.Registry

	// writeLocks serializes tProperty writes per (collection, feature,
	// name) so the overlap check and the insert act as one step.
	writeLocks *keyedMutex
}

// New opens the connection pool, verifies connectivity, and ensures the
// schema when configured to.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := &DB{
		conn:       conn,
		cfg:        cfg,
		stmtCache:  make(map[string]*sql.Stmt),
		registry:   cache.New(registryTTL),
		writeLocks: newKeyedMutex(),
	}
	db.breaker = gobreaker.NewCircuitBreaker[*sql.Conn](gobreaker.Settings{
		Name:        "mobilitydb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerOpen(to == gobreaker.StateOpen)
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("database circuit breaker state changed")
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if cfg.EnsureSchema {
		if err := db.ensureSchema(ctx); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return db, nil
}

// AcquireSession hands out a dedicated autocommit session for one
// request. Acquisition goes through the circuit breaker; release it with
// ReleaseSession on every path.
func (db *DB) AcquireSession(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.breaker.Execute(func() (*sql.Conn, error) {
		return db.conn.Conn(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session: %w", err)
	}
	metrics.DBSessionsActive.Inc()
	return conn, nil
}

// ReleaseSession returns a session to the pool.
func (db *DB) ReleaseSession(conn *sql.Conn) {
	metrics.DBSessionsActive.Dec()
	closeQuietly(conn)
}

// Ping checks connectivity through the breaker, surfacing an open
// breaker as an error.
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.breaker.Execute(func() (*sql.Conn, error) {
		conn, err := db.conn.Conn(ctx)
		if err != nil {
			return nil, err
		}
		defer closeQuietly(conn)
		return nil, conn.PingContext(ctx)
	})
	return err
}

// Close stops the registry sweeper and closes all cached statements and
// the pool.
func (db *DB) Close() error {
	db.registry.Close()

	db.stmtCacheMu.Lock()
	for _, stmt := range db.stmtCache {
		if stmt != nil {
			closeQuietly(stmt)
		}
	}
	db.stmtCache = make(map[string]*sql.Stmt)
	db.stmtCacheMu.Unlock()

	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// prepared returns a pool-level prepared statement, caching it by query
// text. Only the small fixed existence-list queries go through here.
func (db *DB) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtCacheMu.RLock()
	stmt, ok := db.stmtCache[query]
	db.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	stmt, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	db.stmtCacheMu.Lock()
	if cached, ok := db.stmtCache[query]; ok {
		db.stmtCacheMu.Unlock()
		closeQuietly(stmt)
		return cached, nil
	}
	db.stmtCache[query] = stmt
	db.stmtCacheMu.Unlock()
	return stmt, nil
}

// track records query metrics for one operation.
func track(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

func closeQuietly(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}
