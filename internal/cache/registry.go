// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package cache provides the TTL registry cache backing the existence
// checks of the moving features endpoints: the list of collection ids,
// the feature ids per collection, and the temporal property names per
// feature. Every write path invalidates the affected keys so a created
// resource is immediately visible to the next request.
package cache

import (
	"sync"
	"time"
)

// Entry is one cached value with its expiration.
type Entry struct {
	Data      any
	ExpiresAt time.Time
}

// Registry is a thread-safe in-memory cache with a fixed TTL per entry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a registry cache. A background goroutine sweeps expired
// entries every TTL so idle keys do not accumulate.
func New(ttl time.Duration) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Get retrieves a value. An expired entry counts as a miss and is
// removed.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		r.Delete(key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value under the registry TTL.
func (r *Registry) Set(key string, data any) {
	r.mu.Lock()
	r.entries[key] = Entry{Data: data, ExpiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()
}

// Delete removes one entry.
func (r *Registry) Delete(key string) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]Entry)
	r.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close stops the background sweeper. Safe to call more than once.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) sweepLoop() {
	interval := r.ttl
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			now := time.Now()
			r.mu.Lock()
			for key, entry := range r.entries {
				if now.After(entry.ExpiresAt) {
					delete(r.entries, key)
				}
			}
			r.mu.Unlock()
		}
	}
}
