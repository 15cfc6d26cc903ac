// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aistairc/mf-api/internal/metrics"
	"github.com/aistairc/mf-api/internal/params"
)

const registryKeyCollections = "collections"

// collectionBaseQuery aggregates per-collection extents: the temporal
// extent over feature lifespans and the spatiotemporal extent over
// trajectory sequences.
const collectionBaseQuery = `
SELECT c.collection_id::text,
       c.collection_property,
       extent(m.lifespan)::text,
       extent(tg.tgeometry_property)::text
FROM collection c
LEFT JOIN mfeature m
       ON m.collection_id = c.collection_id
LEFT JOIN tgeometry tg
       ON tg.collection_id = m.collection_id
      AND tg.mfeature_id = m.mfeature_id`

// GetCollectionsList returns the ids of all collections, served from
// the registry cache when fresh.
func (db *DB) GetCollectionsList(ctx context.Context) ([]string, error) {
	if cached, ok := db.registry.Get(registryKeyCollections); ok {
		metrics.RegistryCacheHits.Inc()
		return cached.([]string), nil
	}
	metrics.RegistryCacheMisses.Inc()

	stmt, err := db.prepared(ctx, `SELECT collection_id::text FROM collection`)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := stmt.QueryContext(ctx)
	track("list", "collection", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer closeQuietly(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan collection id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection ids: %w", err)
	}

	db.registry.Set(registryKeyCollections, ids)
	return ids, nil
}

// GetCollections returns all collections with their aggregated extents,
// optionally restricted by bbox and datetime.
func (db *DB) GetCollections(ctx context.Context, bbox []float64, dt params.Datetime) ([]CollectionRow, error) {
	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer db.ReleaseSession(conn)

	query := collectionBaseQuery + `
GROUP BY c.collection_id, c.collection_property`

	var args []any
	var having []string
	if len(bbox) > 0 {
		var frag string
		frag, args = bboxPredicate(bbox, "extent(tg.tgeometry_property)", args)
		having = append(having, frag)
	}
	if !dt.IsZero() {
		var frag string
		frag, args = periodPredicate(dt, "extent(m.lifespan)", args)
		having = append(having, frag)
	}
	query += joinConditions("HAVING", having)
	query += ` ORDER BY c.collection_id`

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "collection", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer closeQuietly(rows)

	var collections []CollectionRow
	for rows.Next() {
		var row CollectionRow
		if err := rows.Scan(&row.ID, &row.Property, &row.Lifespan, &row.Extent); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}
	return collections, nil
}

// GetCollection returns one collection or ErrNotFound.
func (db *DB) GetCollection(ctx context.Context, collectionID string) (*CollectionRow, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return nil, ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer db.ReleaseSession(conn)

	query := collectionBaseQuery + `
WHERE c.collection_id = $1::uuid
GROUP BY c.collection_id, c.collection_property`

	start := time.Now()
	row := conn.QueryRowContext(ctx, query, collectionID)
	var out CollectionRow
	err = row.Scan(&out.ID, &out.Property, &out.Lifespan, &out.Extent)
	track("select", "collection", start, err)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	return &out, nil
}

// PostCollection persists a collection descriptor and returns the
// generated id.
func (db *DB) PostCollection(ctx context.Context, property []byte) (string, error) {
	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return "", err
	}
	defer db.ReleaseSession(conn)

	start := time.Now()
	var id string
	err = conn.QueryRowContext(ctx,
		`INSERT INTO collection (collection_property) VALUES ($1::jsonb)
		 RETURNING collection_id::text`, property).Scan(&id)
	track("insert", "collection", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to insert collection: %w", err)
	}

	db.registry.Delete(registryKeyCollections)
	return id, nil
}

// PutCollection replaces a collection descriptor.
func (db *DB) PutCollection(ctx context.Context, collectionID string, property []byte) error {
	if _, err := uuid.Parse(collectionID); err != nil {
		return ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return err
	}
	defer db.ReleaseSession(conn)

	start := time.Now()
	res, err := conn.ExecContext(ctx,
		`UPDATE collection SET collection_property = $2::jsonb
		 WHERE collection_id = $1::uuid`, collectionID, property)
	track("update", "collection", start, err)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCollection removes a collection and everything it contains,
// children first.
func (db *DB) DeleteCollection(ctx context.Context, collectionID string) error {
	if _, err := uuid.Parse(collectionID); err != nil {
		return ErrNotFound
	}

	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return err
	}
	defer db.ReleaseSession(conn)

	cascade := []string{
		`DELETE FROM tproperties WHERE collection_id = $1::uuid`,
		`DELETE FROM tgeometry WHERE collection_id = $1::uuid`,
		`DELETE FROM mfeature WHERE collection_id = $1::uuid`,
		`DELETE FROM collection WHERE collection_id = $1::uuid`,
	}
	for _, stmt := range cascade {
		start := time.Now()
		_, err := conn.ExecContext(ctx, stmt, collectionID)
		track("delete", "collection", start, err)
		if err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}

	db.registry.Clear()
	return nil
}
