// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"database/sql"
	"errors"
)

// Sentinel errors translated to HTTP responses by the controllers.
var (
	// ErrNotFound means the addressed collection, feature, geometry or
	// property does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrOverlappingSequence means a submitted temporal property
	// sequence intersects an existing sequence of the same name.
	ErrOverlappingSequence = errors.New("temporal property sequence overlaps an existing sequence")
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
