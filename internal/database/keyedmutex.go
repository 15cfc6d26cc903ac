// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"strings"
	"sync"
)

// keyedMutex provides per-key locking. Writes to one temporal property
// lock its (collection, feature, name) key so the disjointness check and
// the insert cannot interleave with a concurrent writer of the same key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for the joined key parts and returns the
// unlock function. Entries are removed once the last holder releases,
// so the map only holds in-flight keys.
func (k *keyedMutex) Lock(parts ...string) func() {
	key := strings.Join(parts, "\x00")

	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
