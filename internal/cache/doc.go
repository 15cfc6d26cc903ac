// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package cache provides the existence registry: a thread-safe TTL
// cache for the id lists (collections, features, property names) the
// handlers consult before touching the database. Entries expire after
// one minute and are invalidated eagerly on writes.
package cache
