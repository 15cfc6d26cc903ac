// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aistairc/mf-api/internal/mfjson"
)

// GetTemporalGeometries returns one page of a feature's temporal
// geometry sequences. The Filtered column carries the presentation
// restriction: the leaf samples when leaf is given, the clipped
// sub-sequence when subTrajectory is requested with a datetime, NULL
// otherwise.
func (db *DB) GetTemporalGeometries(ctx context.Context, q TGeometriesQuery) (*TGeometriesResult, error) {
	if _, err := uuid.Parse(q.CollectionID); err != nil {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(q.MFeatureID); err != nil {
		return nil, ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer db.ReleaseSession(conn)

	args := []any{q.CollectionID, q.MFeatureID}

	var conditions []string
	if len(q.Bbox) > 0 {
		var frag string
		frag, args = bboxPredicate(q.Bbox, "tgeometry_property::stbox", args)
		conditions = append(conditions, frag)
	}
	if !q.Datetime.IsZero() {
		var frag string
		frag, args = periodPredicate(q.Datetime, "period(tgeometry_property)", args)
		conditions = append(conditions, frag)
	}

	filtered := "NULL"
	switch {
	case len(q.Leaf) > 0:
		args = append(args, TimestampSetLiteral(q.Leaf))
		filtered = fmt.Sprintf("asMFJSON(attimestampset(tgeometry_property, $%d::timestampset))", len(args))
	case q.SubTrajectory && !q.Datetime.IsZero():
		var period string
		period, args = periodArg(q.Datetime, args)
		filtered = fmt.Sprintf("asMFJSON(atperiod(tgeometry_property, %s))", period)
	}

	where := `
WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid` +
		joinConditions("AND", conditions)

	start := time.Now()
	var matched int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tgeometry"+where, args...).Scan(&matched)
	track("count", "tgeometry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count temporal geometries: %w", err)
	}

	query := fmt.Sprintf(`
SELECT tgeometry_id::text,
       asMFJSON(tgeometry_property),
       %s
FROM tgeometry`, filtered) + where + ` ORDER BY tgeometry_id`

	var paging string
	paging, args = pagination(q.Limit, q.Offset, args)
	query += paging

	start = time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "tgeometry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query temporal geometries: %w", err)
	}
	defer closeQuietly(rows)

	result := &TGeometriesResult{NumberMatched: matched}
	for rows.Next() {
		var row TGeometryRow
		if err := rows.Scan(&row.ID, &row.MFJSON, &row.Filtered); err != nil {
			return nil, fmt.Errorf("failed to scan temporal geometry: %w", err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read temporal geometries: %w", err)
	}
	return result, nil
}

// PostTemporalGeometry stores one temporal geometry sequence under a
// feature and returns the generated id.
func (db *DB) PostTemporalGeometry(ctx context.Context, collectionID, mFeatureID string, tg *mfjson.TemporalGeometry) (string, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return "", ErrNotFound
	}
	if _, err := uuid.Parse(mFeatureID); err != nil {
		return "", ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return "", err
	}
	defer db.ReleaseSession(conn)

	if err := db.requireFeature(ctx, conn, collectionID, mFeatureID); err != nil {
		return "", err
	}

	start := time.Now()
	var id string
	err = conn.QueryRowContext(ctx, `
INSERT INTO tgeometry (collection_id, mfeature_id, tgeometry_id, tgeometry_property)
VALUES ($1::uuid, $2::uuid, gen_random_uuid(), $3::tgeompoint)
RETURNING tgeometry_id::text`,
		collectionID, mFeatureID, TgeompointLiteral(tg)).Scan(&id)
	track("insert", "tgeometry", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to insert temporal geometry: %w", err)
	}
	return id, nil
}

// DeleteTemporalGeometry removes one temporal geometry sequence.
func (db *DB) DeleteTemporalGeometry(ctx context.Context, collectionID, mFeatureID, tGeometryID string) error {
	if _, err := uuid.Parse(collectionID); err != nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(mFeatureID); err != nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(tGeometryID); err != nil {
		return ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return err
	}
	defer db.ReleaseSession(conn)

	start := time.Now()
	res, err := conn.ExecContext(ctx, `
DELETE FROM tgeometry
WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid AND tgeometry_id = $3::uuid`,
		collectionID, mFeatureID, tGeometryID)
	track("delete", "tgeometry", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete temporal geometry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// requireFeature fails with ErrNotFound when the feature does not
// exist.
func (db *DB) requireFeature(ctx context.Context, conn *sql.Conn, collectionID, mFeatureID string) error {
	start := time.Now()
	var exists bool
	err := conn.QueryRowContext(ctx, `
SELECT EXISTS (
  SELECT 1 FROM mfeature
  WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid
)`, collectionID, mFeatureID).Scan(&exists)
	track("select", "mfeature", start, err)
	if err != nil {
		return fmt.Errorf("failed to check feature: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
