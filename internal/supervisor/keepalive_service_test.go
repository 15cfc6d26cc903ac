// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakePinger struct {
	pings atomic.Int32
	err   error
}

func (p *fakePinger) Ping(context.Context) error {
	p.pings.Add(1)
	return p.err
}

func TestKeepaliveServicePingsOnInterval(t *testing.T) {
	t.Parallel()

	pinger := &fakePinger{}
	svc := NewKeepaliveService(pinger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for pinger.pings.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("no pings observed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

func TestKeepaliveServiceSurvivesPingFailure(t *testing.T) {
	t.Parallel()

	pinger := &fakePinger{err: errors.New("connection refused")}
	svc := NewKeepaliveService(pinger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Failed pings are logged, not fatal: the loop keeps probing.
	deadline := time.After(5 * time.Second)
	for pinger.pings.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("service stopped probing after a failure")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

func TestKeepaliveServiceDefaultInterval(t *testing.T) {
	t.Parallel()

	svc := NewKeepaliveService(&fakePinger{}, 0)
	if svc.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", svc.interval)
	}
	if got := svc.String(); got != "db-keepalive" {
		t.Errorf("String() = %q, want db-keepalive", got)
	}
}
