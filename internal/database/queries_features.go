// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aistairc/mf-api/internal/metrics"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

func registryKeyFeatures(collectionID string) string {
	return "features:" + collectionID
}

// featureBaseQuery lists a collection's features with the aggregated
// extent over each feature's trajectory sequences.
const featureBaseQuery = `
SELECT m.mfeature_id::text,
       ST_AsGeoJSON(m.mf_geometry),
       m.mf_property,
       m.lifespan::text,
       extent(tg.tgeometry_property)::text
FROM mfeature m
LEFT JOIN tgeometry tg
       ON tg.collection_id = m.collection_id
      AND tg.mfeature_id = m.mfeature_id`

const featureGroupBy = `
GROUP BY m.collection_id, m.mfeature_id, m.mf_geometry, m.mf_property, m.lifespan`

// MovingFeatureInsert is a decomposed moving feature ready for
// ingestion. TProperties groups entries the way the document groups
// them: one inner slice per temporalProperties element. Elements with
// identical timestamp sets end up in the same datetime group.
type MovingFeatureInsert struct {
	Geometry    []byte // GeoJSON of the static geometry, nil when absent
	Property    []byte // residual properties document, nil when absent
	Lifespan    *params.Datetime
	TGeometries []*mfjson.TemporalGeometry
	TProperties [][]TPropertyEntry
}

// GetFeaturesList returns the feature ids of a collection, served from
// the registry cache when fresh.
func (db *DB) GetFeaturesList(ctx context.Context, collectionID string) ([]string, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return nil, ErrNotFound
	}

	key := registryKeyFeatures(collectionID)
	if cached, ok := db.registry.Get(key); ok {
		metrics.RegistryCacheHits.Inc()
		return cached.([]string), nil
	}
	metrics.RegistryCacheMisses.Inc()

	stmt, err := db.prepared(ctx,
		`SELECT mfeature_id::text FROM mfeature WHERE collection_id = $1::uuid`)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := stmt.QueryContext(ctx, collectionID)
	track("list", "mfeature", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer closeQuietly(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan feature id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feature ids: %w", err)
	}

	db.registry.Set(key, ids)
	return ids, nil
}

// GetFeatures returns one page of a collection's features. The match
// count is computed before paging so numberMatched reflects the whole
// filtered set. With SubTrajectory set and a datetime restriction, the
// page's trajectories are clipped to the restriction in a second pass.
func (db *DB) GetFeatures(ctx context.Context, q FeaturesQuery) (*FeaturesResult, error) {
	if _, err := uuid.Parse(q.CollectionID); err != nil {
		return nil, ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer db.ReleaseSession(conn)

	args := []any{q.CollectionID}
	query := featureBaseQuery + `
WHERE m.collection_id = $1::uuid` + featureGroupBy

	var having []string
	if len(q.Bbox) > 0 {
		var frag string
		frag, args = bboxPredicate(q.Bbox, "extent(tg.tgeometry_property)", args)
		having = append(having, frag)
	}
	if !q.Datetime.IsZero() {
		var frag string
		frag, args = periodPredicate(q.Datetime, "extent(tg.tgeometry_property)", args)
		having = append(having, frag)
	}
	query += joinConditions("HAVING", having)

	start := time.Now()
	var matched int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ("+query+") AS matched", args...).Scan(&matched)
	track("count", "mfeature", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count features: %w", err)
	}

	query += ` ORDER BY m.mfeature_id`
	var paging string
	paging, args = pagination(q.Limit, q.Offset, args)
	query += paging

	start = time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "mfeature", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer closeQuietly(rows)

	result := &FeaturesResult{NumberMatched: matched}
	for rows.Next() {
		var row FeatureRow
		if err := rows.Scan(&row.ID, &row.Geometry, &row.Property, &row.Lifespan, &row.Extent); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		result.Features = append(result.Features, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read features: %w", err)
	}

	if q.SubTrajectory && !q.Datetime.IsZero() && len(result.Features) > 0 {
		trajectories, err := db.clippedTrajectories(ctx, conn, q.CollectionID, result.Features, q.Datetime)
		if err != nil {
			return nil, err
		}
		result.Trajectories = trajectories
	}
	return result, nil
}

// clippedTrajectories fetches the datetime-restricted trajectory
// sequences of the page's features, keyed by feature id. Sequences the
// restriction empties out are skipped.
func (db *DB) clippedTrajectories(ctx context.Context, conn queryer, collectionID string, features []FeatureRow, dt params.Datetime) (map[string][]TrajectoryRow, error) {
	args := []any{collectionID}
	placeholders := make([]string, len(features))
	for i, f := range features {
		args = append(args, f.ID)
		placeholders[i] = fmt.Sprintf("$%d::uuid", len(args))
	}

	var period string
	period, args = periodArg(dt, args)

	query := fmt.Sprintf(`
SELECT mfeature_id::text,
       tgeometry_id::text,
       asMFJSON(atperiod(tgeometry_property, %s))
FROM tgeometry
WHERE collection_id = $1::uuid
  AND mfeature_id IN (%s)
  AND atperiod(tgeometry_property, %s) IS NOT NULL
ORDER BY mfeature_id, tgeometry_id`,
		period, strings.Join(placeholders, ", "), period)

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "tgeometry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectories: %w", err)
	}
	defer closeQuietly(rows)

	trajectories := make(map[string][]TrajectoryRow)
	for rows.Next() {
		var featureID string
		var row TrajectoryRow
		if err := rows.Scan(&featureID, &row.TGeometryID, &row.MFJSON); err != nil {
			return nil, fmt.Errorf("failed to scan trajectory: %w", err)
		}
		trajectories[featureID] = append(trajectories[featureID], row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trajectories: %w", err)
	}
	return trajectories, nil
}

// queryer abstracts *sql.Conn and *sql.Tx for helpers shared between
// request sessions and ingestion transactions.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetFeature returns one moving feature or ErrNotFound.
func (db *DB) GetFeature(ctx context.Context, collectionID, mFeatureID string) (*FeatureRow, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(mFeatureID); err != nil {
		return nil, ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer db.ReleaseSession(conn)

	query := featureBaseQuery + `
WHERE m.collection_id = $1::uuid AND m.mfeature_id = $2::uuid` + featureGroupBy

	start := time.Now()
	row := conn.QueryRowContext(ctx, query, collectionID, mFeatureID)
	var out FeatureRow
	err = row.Scan(&out.ID, &out.Geometry, &out.Property, &out.Lifespan, &out.Extent)
	track("select", "mfeature", start, err)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query feature: %w", err)
	}
	return &out, nil
}

// PostMovingFeature ingests a decomposed moving feature with its nested
// temporal geometries and properties in one transaction, returning the
// generated feature id.
func (db *DB) PostMovingFeature(ctx context.Context, collectionID string, insert *MovingFeatureInsert) (string, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return "", ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return "", err
	}
	defer db.ReleaseSession(conn)

	if err := db.requireCollection(ctx, conn, collectionID); err != nil {
		return "", err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lifespan any
	if insert.Lifespan != nil {
		lifespan = fmt.Sprintf("[%s, %s]",
			literalTime(insert.Lifespan.Start), literalTime(insert.Lifespan.End))
	}
	var geometry any
	if len(insert.Geometry) > 0 {
		geometry = string(insert.Geometry)
	}

	start := time.Now()
	var featureID string
	err = tx.QueryRowContext(ctx, `
INSERT INTO mfeature (collection_id, mfeature_id, mf_geometry, mf_property, lifespan)
VALUES ($1::uuid, gen_random_uuid(), ST_GeomFromGeoJSON($2), $3::jsonb, $4::period)
RETURNING mfeature_id::text`,
		collectionID, geometry, insert.Property, lifespan).Scan(&featureID)
	track("insert", "mfeature", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to insert feature: %w", err)
	}

	for _, tg := range insert.TGeometries {
		start := time.Now()
		_, err := tx.ExecContext(ctx, `
INSERT INTO tgeometry (collection_id, mfeature_id, tgeometry_id, tgeometry_property)
VALUES ($1::uuid, $2::uuid, gen_random_uuid(), $3::tgeompoint)`,
			collectionID, featureID, TgeompointLiteral(tg))
		track("insert", "tgeometry", start, err)
		if err != nil {
			return "", fmt.Errorf("failed to insert temporal geometry: %w", err)
		}
	}

	groups := assignDatetimeGroups(insert.TProperties)
	for _, entries := range insert.TProperties {
		for _, entry := range entries {
			group := groups[string(entry.DatetimesJSON)]
			if err := insertTPropertyEntry(ctx, tx, collectionID, featureID, group, entry); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit feature: %w", err)
	}

	db.registry.Delete(registryKeyFeatures(collectionID))
	return featureID, nil
}

// assignDatetimeGroups numbers the distinct timestamp sets of a feature
// document in first-appearance order, starting at 1. Entries sharing a
// canonical datetimes array share the group.
func assignDatetimeGroups(tproperties [][]TPropertyEntry) map[string]int {
	groups := make(map[string]int)
	for _, entries := range tproperties {
		for _, entry := range entries {
			key := string(entry.DatetimesJSON)
			if _, ok := groups[key]; !ok {
				groups[key] = len(groups) + 1
			}
		}
	}
	return groups
}

// DeleteMovingFeature removes a feature and its temporal children.
func (db *DB) DeleteMovingFeature(ctx context.Context, collectionID, mFeatureID string) error {
	if _, err := uuid.Parse(collectionID); err != nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(mFeatureID); err != nil {
		return ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return err
	}
	defer db.ReleaseSession(conn)

	cascade := []string{
		`DELETE FROM tproperties WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid`,
		`DELETE FROM tgeometry WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid`,
	}
	for _, stmt := range cascade {
		start := time.Now()
		_, err := conn.ExecContext(ctx, stmt, collectionID, mFeatureID)
		track("delete", "mfeature", start, err)
		if err != nil {
			return fmt.Errorf("failed to delete feature: %w", err)
		}
	}

	start := time.Now()
	res, err := conn.ExecContext(ctx,
		`DELETE FROM mfeature WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid`,
		collectionID, mFeatureID)
	track("delete", "mfeature", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	db.registry.Delete(registryKeyFeatures(collectionID))
	return nil
}

// requireCollection fails with ErrNotFound when the collection does not
// exist.
func (db *DB) requireCollection(ctx context.Context, conn *sql.Conn, collectionID string) error {
	start := time.Now()
	var exists bool
	err := conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM collection WHERE collection_id = $1::uuid)`,
		collectionID).Scan(&exists)
	track("select", "collection", start, err)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
