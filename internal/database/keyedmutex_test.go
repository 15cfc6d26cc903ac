// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	var counter int

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := km.Lock("cid", "fid", "speed")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
	if len(km.locks) != 0 {
		t.Errorf("lock map retains %d entries after release", len(km.locks))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()

	unlockA := km.Lock("cid", "fid", "speed")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("cid", "fid", "heading")
		unlockB()
		close(done)
	}()
	<-done // a different key must not block
	unlockA()
}

func TestKeyedMutexKeyJoining(t *testing.T) {
	t.Parallel()

	// Joined parts must not collide: ("ab","c") and ("a","bc") are
	// distinct keys.
	km := newKeyedMutex()
	unlock1 := km.Lock("ab", "c")
	defer unlock1()

	acquired := make(chan struct{})
	go func() {
		unlock2 := km.Lock("a", "bc")
		unlock2()
		close(acquired)
	}()
	<-acquired
}
