// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package cache

import (
	"testing"
	"time"
)

func TestRegistrySetGet(t *testing.T) {
	t.Parallel()

	r := New(time.Minute)
	r.Set("collections", []string{"a", "b"})

	got, ok := r.Get("collections")
	if !ok {
		t.Fatal("expected hit")
	}
	ids, ok := got.([]string)
	if !ok || len(ids) != 2 {
		t.Errorf("got %v", got)
	}
}

func TestRegistryMiss(t *testing.T) {
	t.Parallel()

	r := New(time.Minute)
	if _, ok := r.Get("absent"); ok {
		t.Error("expected miss")
	}
}

func TestRegistryExpiry(t *testing.T) {
	t.Parallel()

	r := New(10 * time.Millisecond)
	r.Set("k", "v")
	time.Sleep(30 * time.Millisecond)
	if _, ok := r.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestRegistryDeleteClear(t *testing.T) {
	t.Parallel()

	r := New(time.Minute)
	r.Set("a", 1)
	r.Set("b", 2)

	r.Delete("a")
	if _, ok := r.Get("a"); ok {
		t.Error("deleted key should miss")
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len = %d after Clear", r.Len())
	}
}

func TestRegistryClose(t *testing.T) {
	t.Parallel()

	r := New(time.Millisecond)
	r.Set("k", "v")
	r.Close()
	r.Close() // idempotent

	select {
	case <-r.stop:
	default:
		t.Fatal("stop channel should be closed after Close")
	}

	// The registry keeps serving reads and writes after Close; only
	// the sweeper is gone.
	r.Set("k2", "v2")
	if _, ok := r.Get("k2"); !ok {
		t.Error("expected hit after Close")
	}
}
