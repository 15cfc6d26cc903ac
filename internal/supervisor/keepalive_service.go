// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package supervisor

import (
	"context"
	"time"

	"github.com/aistairc/mf-api/internal/logging"
)

// Pinger is the liveness probe of the storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeepaliveService pings the database on an interval. The ping runs
// through the store's circuit breaker, so a recovering backend closes
// the breaker again without waiting for client traffic.
type KeepaliveService struct {
	pinger   Pinger
	interval time.Duration
}

// NewKeepaliveService wraps a pinger as a supervised service.
func NewKeepaliveService(pinger Pinger, interval time.Duration) *KeepaliveService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &KeepaliveService{
		pinger:   pinger,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (s *KeepaliveService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := s.pinger.Ping(pingCtx)
			cancel()
			if err != nil {
				logging.Warn().Err(err).Msg("database keepalive ping failed")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *KeepaliveService) String() string { return "db-keepalive" }
