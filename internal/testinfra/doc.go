// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package testinfra provides container-backed test infrastructure.
//
// Integration tests use testcontainers-go to run a real MobilityDB
// instance, so the temporal SQL the store emits is exercised against
// the same extension stack as production. Tests carry the integration
// build tag and skip themselves when Docker is unavailable:
//
//	func TestStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mdb, err := testinfra.NewMobilityDBContainer(ctx, t)
//	    ...
//	    defer testinfra.CleanupContainer(t, ctx, mdb.Container)
//	}
package testinfra
