// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown or a scripted
// failure.
type fakeHTTPServer struct {
	serveErr   error
	shutdownCh chan struct{}
	shutdowns  atomic.Int32
}

func newFakeHTTPServer(serveErr error) *fakeHTTPServer {
	return &fakeHTTPServer{
		serveErr:   serveErr,
		shutdownCh: make(chan struct{}),
	}
}

func (s *fakeHTTPServer) ListenAndServe() error {
	if s.serveErr != nil {
		return s.serveErr
	}
	<-s.shutdownCh
	return http.ErrServerClosed
}

func (s *fakeHTTPServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	close(s.shutdownCh)
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer(nil)
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if got := server.shutdowns.Load(); got != 1 {
		t.Errorf("shutdowns = %d, want 1", got)
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	t.Parallel()

	listenErr := errors.New("listen tcp :8085: address already in use")
	svc := NewHTTPService(newFakeHTTPServer(listenErr), time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

func TestHTTPServiceServerClosedIsNotFailure(t *testing.T) {
	t.Parallel()

	svc := NewHTTPService(newFakeHTTPServer(http.ErrServerClosed), time.Second)
	if err := svc.Serve(context.Background()); err != nil {
		t.Errorf("Serve returned %v, want nil", err)
	}
}

func TestHTTPServiceString(t *testing.T) {
	t.Parallel()

	svc := NewHTTPService(newFakeHTTPServer(nil), 0)
	if got := svc.String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}
