// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"database/sql"
	"time"

	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

// Query option structs for the four read families. Zero values mean
// "no restriction".

// FeaturesQuery selects moving features of one collection.
type FeaturesQuery struct {
	CollectionID  string
	Bbox          []float64
	Datetime      params.Datetime
	Limit         int
	Offset        int
	SubTrajectory bool
}

// TGeometriesQuery selects temporal geometry sequences of one feature.
type TGeometriesQuery struct {
	CollectionID  string
	MFeatureID    string
	Bbox          []float64
	Datetime      params.Datetime
	Leaf          []time.Time
	SubTrajectory bool
	Limit         int
	Offset        int
}

// TPropertiesQuery selects temporal properties of one feature.
type TPropertiesQuery struct {
	CollectionID     string
	MFeatureID       string
	Datetime         params.Datetime
	Limit            int
	Offset           int
	SubTemporalValue bool
}

// TPropertyValueQuery selects the value sequences of one property.
type TPropertyValueQuery struct {
	CollectionID     string
	MFeatureID       string
	Name             string
	Datetime         params.Datetime
	Leaf             []time.Time
	SubTemporalValue bool
}

// Result row types mapped from the store.

// CollectionRow is one collection with its aggregated extents.
type CollectionRow struct {
	ID       string
	Property []byte
	Lifespan sql.NullString // aggregated period text
	Extent   sql.NullString // aggregated stbox text
}

// FeatureRow is one moving feature with its aggregated trajectory
// extent.
type FeatureRow struct {
	ID       string
	Geometry sql.NullString // GeoJSON text of the static geometry
	Property []byte         // may be nil
	Lifespan sql.NullString // period text
	Extent   sql.NullString // stbox text over the feature's trajectories
}

// FeaturesResult is a paged feature listing. Trajectories carries the
// per-feature clipped sequences of a subTrajectory request, keyed by
// feature id.
type FeaturesResult struct {
	Features      []FeatureRow
	NumberMatched int
	Trajectories  map[string][]TrajectoryRow
}

// TrajectoryRow is one clipped trajectory in storage MF-JSON.
type TrajectoryRow struct {
	TGeometryID string
	MFJSON      string
}

// TGeometryRow is one temporal geometry sequence. Filtered holds the
// leaf- or period-restricted sub-sequence when requested; NULL when the
// restriction removed every sample.
type TGeometryRow struct {
	ID       string
	MFJSON   string
	Filtered sql.NullString
}

// TGeometriesResult is a paged temporal geometry listing.
type TGeometriesResult struct {
	Rows          []TGeometryRow
	NumberMatched int
}

// TPropertyRow is one temporal property listing row. In value mode the
// typed sequence channels are populated per datetime_group.
type TPropertyRow struct {
	Name       string
	Descriptor []byte
	Group      int
	FloatSeq   sql.NullString // storage MF-JSON of the tfloat channel
	TextSeq    sql.NullString // storage MF-JSON of the ttext channel
}

// TPropertiesResult is a paged temporal property listing.
type TPropertiesResult struct {
	Rows          []TPropertyRow
	NumberMatched int
}

// TPropertyEntry is one named value sequence ready for insertion.
type TPropertyEntry struct {
	Name          string
	Descriptor    []byte // the {datetimes, values, interpolation} document
	DatetimesJSON []byte // canonical datetimes array for group matching
	Sequence      *mfjson.TemporalValueSequence
}
