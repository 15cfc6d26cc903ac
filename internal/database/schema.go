// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"context"
	"fmt"

	"github.com/aistairc/mf-api/internal/logging"
)

// schemaStatements create the storage schema. Statements are idempotent
// so startup against an initialized database is a no-op.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS mobilitydb CASCADE`,

	`CREATE TABLE IF NOT EXISTS collection (
		collection_id        uuid  NOT NULL DEFAULT gen_random_uuid(),
		collection_property  jsonb NOT NULL,
		PRIMARY KEY (collection_id)
	)`,

	`CREATE TABLE IF NOT EXISTS mfeature (
		collection_id  uuid  NOT NULL,
		mfeature_id    uuid  NOT NULL DEFAULT gen_random_uuid(),
		mf_geometry    geometry,
		mf_property    jsonb,
		lifespan       period,
		PRIMARY KEY (collection_id, mfeature_id),
		FOREIGN KEY (collection_id) REFERENCES collection (collection_id)
	)`,

	`CREATE TABLE IF NOT EXISTS tgeometry (
		collection_id       uuid NOT NULL,
		mfeature_id         uuid NOT NULL,
		tgeometry_id        uuid NOT NULL DEFAULT gen_random_uuid(),
		tgeometry_property  tgeompoint NOT NULL,
		PRIMARY KEY (collection_id, mfeature_id, tgeometry_id),
		FOREIGN KEY (collection_id, mfeature_id)
			REFERENCES mfeature (collection_id, mfeature_id)
	)`,

	// Each row is one value sequence: the descriptor JSON, its group,
	// and exactly one of pvalue_float / pvalue_text. pvalue_id feeds the
	// Location header of value appends.
	`CREATE TABLE IF NOT EXISTS tproperties (
		collection_id     uuid NOT NULL,
		mfeature_id       uuid NOT NULL,
		tproperties_name  text NOT NULL,
		pvalue_id         uuid NOT NULL DEFAULT gen_random_uuid(),
		datetime_group    int  NOT NULL,
		tproperty         jsonb,
		pvalue_float      tfloat,
		pvalue_text       ttext,
		PRIMARY KEY (collection_id, mfeature_id, tproperties_name, pvalue_id),
		FOREIGN KEY (collection_id, mfeature_id)
			REFERENCES mfeature (collection_id, mfeature_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_mfeature_collection
		ON mfeature (collection_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tgeometry_feature
		ON tgeometry (collection_id, mfeature_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tproperties_name
		ON tproperties (collection_id, mfeature_id, tproperties_name)`,
}

// ensureSchema applies the schema statements in order.
func (db *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	logging.Info().Msg("storage schema ensured")
	return nil
}
