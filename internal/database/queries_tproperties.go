// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aistairc/mf-api/internal/metrics"
	"github.com/aistairc/mf-api/internal/params"
)

func registryKeyTProperties(collectionID, mFeatureID string) string {
	return "tproperties:" + collectionID + ":" + mFeatureID
}

// execer abstracts *sql.Conn and *sql.Tx for the shared insert helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// tpropertyOverlapCondition restricts temporal property rows to those
// whose typed value sequence intersects the given interval. A row
// stores exactly one of the two channels, so the condition checks
// whichever is present.
func tpropertyOverlapCondition(dt params.Datetime, args []any) (string, []any) {
	args = append(args, dt.Start, dt.End)
	a, b := len(args)-1, len(args)
	return fmt.Sprintf(
		"((pvalue_float IS NOT NULL AND period(pvalue_float) && period($%d::timestamptz, $%d::timestamptz, true, true))"+
			" OR (pvalue_text IS NOT NULL AND period(pvalue_text) && period($%d::timestamptz, $%d::timestamptz, true, true)))",
		a, b, a, b), args
}

// GetTemporalPropertiesNameList returns the distinct property names of
// a feature, served from the registry cache when fresh.
func (db *DB) GetTemporalPropertiesNameList(ctx context.Context, collectionID, mFeatureID string) ([]string, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(mFeatureID); err != nil {
		return nil, ErrNotFound
	}

	key := registryKeyTProperties(collectionID, mFeatureID)
	if cached, ok := db.registry.Get(key); ok {
		metrics.RegistryCacheHits.Inc()
		return cached.([]string), nil
	}
	metrics.RegistryCacheMisses.Inc()

	stmt, err := db.prepared(ctx, `
SELECT DISTINCT tproperties_name FROM tproperties
WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid`)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := stmt.QueryContext(ctx, collectionID, mFeatureID)
	track("list", "tproperties", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list temporal properties: %w", err)
	}
	defer closeQuietly(rows)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan property name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read property names: %w", err)
	}

	db.registry.Set(key, names)
	return names, nil
}

// GetTemporalProperties returns one page of a feature's temporal
// properties, one distinct name per page entry. Without
// subTemporalValue each entry is the property descriptor alone; with it
// the result additionally carries one row per datetime group holding
// the value sequences, clipped to the datetime restriction.
func (db *DB) GetTemporalProperties(ctx context.Context, q TPropertiesQuery) (*TPropertiesResult, error) {
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
	where := `
WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid`
	if !q.Datetime.IsZero() {
		var frag string
		frag, args = tpropertyOverlapCondition(q.Datetime, args)
		where += " AND " + frag
	}

	start := time.Now()
	var matched int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT tproperties_name) FROM tproperties"+where, args...).Scan(&matched)
	track("count", "tproperties", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count temporal properties: %w", err)
	}

	query := `
SELECT DISTINCT ON (tproperties_name) tproperties_name, tproperty
FROM tproperties` + where + `
ORDER BY tproperties_name, datetime_group`
	var paging string
	paging, args = pagination(q.Limit, q.Offset, args)
	query += paging

	start = time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "tproperties", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query temporal properties: %w", err)
	}
	defer closeQuietly(rows)

	result := &TPropertiesResult{NumberMatched: matched}
	var names []string
	for rows.Next() {
		var row TPropertyRow
		if err := rows.Scan(&row.Name, &row.Descriptor); err != nil {
			return nil, fmt.Errorf("failed to scan temporal property: %w", err)
		}
		result.Rows = append(result.Rows, row)
		names = append(names, row.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read temporal properties: %w", err)
	}

	if !q.SubTemporalValue || len(names) == 0 {
		return result, nil
	}

	valueRows, err := db.propertyValueRows(ctx, conn, q.CollectionID, q.MFeatureID, names, q.Datetime, nil, true)
	if err != nil {
		return nil, err
	}
	result.Rows = valueRows
	return result, nil
}

// GetTemporalPropertiesValue returns the value sequences of one named
// property, one row per datetime group, or ErrNotFound when the
// property does not exist. Leaf restricts to the listed instants;
// subTemporalValue with a datetime clips to the interval; a datetime
// alone filters groups without clipping.
func (db *DB) GetTemporalPropertiesValue(ctx context.Context, q TPropertyValueQuery) ([]TPropertyRow, error) {
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

	if err := db.requireProperty(ctx, conn, q.CollectionID, q.MFeatureID, q.Name); err != nil {
		return nil, err
	}

	return db.propertyValueRows(ctx, conn, q.CollectionID, q.MFeatureID,
		[]string{q.Name}, q.Datetime, q.Leaf, q.SubTemporalValue)
}

// propertyValueRows fetches the typed value sequences of the named
// properties, one row per (name, datetime group), applying the
// presentation restriction to both channels.
func (db *DB) propertyValueRows(ctx context.Context, conn *sql.Conn, collectionID, mFeatureID string, names []string, dt params.Datetime, leaf []time.Time, clip bool) ([]TPropertyRow, error) {
	args := []any{collectionID, mFeatureID}
	placeholders := make([]string, len(names))
	for i, name := range names {
		args = append(args, name)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	floatExpr := "asMFJSON(pvalue_float)"
	textExpr := "asMFJSON(pvalue_text)"
	var conditions []string
	switch {
	case len(leaf) > 0:
		args = append(args, TimestampSetLiteral(leaf))
		floatExpr = fmt.Sprintf("asMFJSON(attimestampset(pvalue_float, $%d::timestampset))", len(args))
		textExpr = fmt.Sprintf("asMFJSON(attimestampset(pvalue_text, $%d::timestampset))", len(args))
	case clip && !dt.IsZero():
		var period string
		period, args = periodArg(dt, args)
		floatExpr = fmt.Sprintf("asMFJSON(atperiod(pvalue_float, %s))", period)
		textExpr = fmt.Sprintf("asMFJSON(atperiod(pvalue_text, %s))", period)
	case !dt.IsZero():
		var frag string
		frag, args = tpropertyOverlapCondition(dt, args)
		conditions = append(conditions, frag)
	}

	query := fmt.Sprintf(`
SELECT tproperties_name, tproperty, datetime_group, %s, %s
FROM tproperties
WHERE collection_id = $1::uuid
  AND mfeature_id = $2::uuid
  AND tproperties_name IN (%s)`,
		floatExpr, textExpr, strings.Join(placeholders, ", ")) +
		joinConditions("AND", conditions) + `
ORDER BY tproperties_name, datetime_group`

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	track("select", "tproperties", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query property values: %w", err)
	}
	defer closeQuietly(rows)

	var out []TPropertyRow
	for rows.Next() {
		var row TPropertyRow
		if err := rows.Scan(&row.Name, &row.Descriptor, &row.Group, &row.FloatSeq, &row.TextSeq); err != nil {
			return nil, fmt.Errorf("failed to scan property value: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read property values: %w", err)
	}
	return out, nil
}

// CheckIfTemporalPropertyCanPost reports whether every submitted
// sequence is free of overlap with the stored sequences of the same
// name, returning ErrOverlappingSequence otherwise.
func (db *DB) CheckIfTemporalPropertyCanPost(ctx context.Context, collectionID, mFeatureID string, entries []TPropertyEntry) error {
	conn, err := db.AcquireSession(ctx)
	if err != nil {
		return err
	}
	defer db.ReleaseSession(conn)

	return db.checkOverlap(ctx, conn, collectionID, mFeatureID, entries)
}

func (db *DB) checkOverlap(ctx context.Context, conn *sql.Conn, collectionID, mFeatureID string, entries []TPropertyEntry) error {
	for _, entry := range entries {
		min, max := entry.Sequence.MinMax()
		start := time.Now()
		var overlaps bool
		err := conn.QueryRowContext(ctx, `
SELECT EXISTS (
  SELECT 1 FROM tproperties
  WHERE collection_id = $1::uuid
    AND mfeature_id = $2::uuid
    AND tproperties_name = $3
    AND ((pvalue_float IS NOT NULL AND period(pvalue_float) && period($4::timestamptz, $5::timestamptz, true, true))
      OR (pvalue_text IS NOT NULL AND period(pvalue_text) && period($4::timestamptz, $5::timestamptz, true, true)))
)`, collectionID, mFeatureID, entry.Name, min, max).Scan(&overlaps)
		track("select", "tproperties", start, err)
		if err != nil {
			return fmt.Errorf("failed to check sequence overlap: %w", err)
		}
		if overlaps {
			return ErrOverlappingSequence
		}
	}
	return nil
}

// insertTPropertyEntry stores one named value sequence under an
// explicit datetime group.
func insertTPropertyEntry(ctx context.Context, ex execer, collectionID, mFeatureID string, group int, entry TPropertyEntry) error {
	var floatLit, textLit any
	if entry.Sequence.Float {
		floatLit = TFloatLiteral(entry.Sequence)
	} else {
		textLit = TTextLiteral(entry.Sequence)
	}

	start := time.Now()
	_, err := ex.ExecContext(ctx, `
INSERT INTO tproperties (collection_id, mfeature_id, tproperties_name, datetime_group, tproperty, pvalue_float, pvalue_text)
VALUES ($1::uuid, $2::uuid, $3, $4, $5::jsonb, $6::tfloat, $7::ttext)`,
		collectionID, mFeatureID, entry.Name, group, entry.Descriptor, floatLit, textLit)
	track("insert", "tproperties", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert temporal property: %w", err)
	}
	return nil
}

// resolveDatetimeGroup reuses the group of an existing row carrying the
// same datetimes array, or allocates the next group number.
func resolveDatetimeGroup(ctx context.Context, ex execer, collectionID, mFeatureID string, datetimesJSON []byte) (int, error) {
	start := time.Now()
	var group int
	err := ex.QueryRowContext(ctx, `
SELECT COALESCE(
  (SELECT datetime_group FROM tproperties
   WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid
     AND tproperty -> 'datetimes' = $3::jsonb
   LIMIT 1),
  (SELECT COALESCE(MAX(datetime_group), 0) + 1 FROM tproperties
   WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid)
)`, collectionID, mFeatureID, datetimesJSON).Scan(&group)
	track("select", "tproperties", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve datetime group: %w", err)
	}
	return group, nil
}

// PostTemporalProperties stores the submitted property groups under a
// feature and returns the inserted names in order. The overlap check
// and the inserts run under per-name locks so concurrent submissions
// of the same property serialize.
func (db *DB) PostTemporalProperties(ctx context.Context, collectionID, mFeatureID string, groups [][]TPropertyEntry) ([]string, error) {
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

	if err := db.requireFeature(ctx, conn, collectionID, mFeatureID); err != nil {
		return nil, err
	}

	var flat []TPropertyEntry
	lockNames := make(map[string]struct{})
	for _, entries := range groups {
		flat = append(flat, entries...)
		for _, entry := range entries {
			lockNames[entry.Name] = struct{}{}
		}
	}
	// Locks are taken in sorted name order so concurrent submissions
	// touching the same properties cannot deadlock.
	for _, name := range sortedKeys(lockNames) {
		unlock := db.writeLocks.Lock(collectionID, mFeatureID, name)
		defer unlock()
	}

	if err := db.checkOverlap(ctx, conn, collectionID, mFeatureID, flat); err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var names []string
	for _, entries := range groups {
		if len(entries) == 0 {
			continue
		}
		group, err := resolveDatetimeGroup(ctx, tx, collectionID, mFeatureID, entries[0].DatetimesJSON)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if err := insertTPropertyEntry(ctx, tx, collectionID, mFeatureID, group, entry); err != nil {
				return nil, err
			}
			names = append(names, entry.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit temporal properties: %w", err)
	}

	db.registry.Delete(registryKeyTProperties(collectionID, mFeatureID))
	return names, nil
}

// PostTemporalValue appends one value sequence to an existing named
// property and returns the generated value id.
func (db *DB) PostTemporalValue(ctx context.Context, collectionID, mFeatureID, name string, entry TPropertyEntry) (string, error) {
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

	unlock := db.writeLocks.Lock(collectionID, mFeatureID, name)
	defer unlock()

	if err := db.requireProperty(ctx, conn, collectionID, mFeatureID, name); err != nil {
		return "", err
	}
	if err := db.checkOverlap(ctx, conn, collectionID, mFeatureID, []TPropertyEntry{entry}); err != nil {
		return "", err
	}

	group, err := resolveDatetimeGroup(ctx, conn, collectionID, mFeatureID, entry.DatetimesJSON)
	if err != nil {
		return "", err
	}

	var floatLit, textLit any
	if entry.Sequence.Float {
		floatLit = TFloatLiteral(entry.Sequence)
	} else {
		textLit = TTextLiteral(entry.Sequence)
	}

	start := time.Now()
	var id string
	err = conn.QueryRowContext(ctx, `
INSERT INTO tproperties (collection_id, mfeature_id, tproperties_name, datetime_group, tproperty, pvalue_float, pvalue_text)
VALUES ($1::uuid, $2::uuid, $3, $4, $5::jsonb, $6::tfloat, $7::ttext)
RETURNING pvalue_id::text`,
		collectionID, mFeatureID, name, group, entry.Descriptor, floatLit, textLit).Scan(&id)
	track("insert", "tproperties", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to insert temporal value: %w", err)
	}
	return id, nil
}

// DeleteTemporalProperty removes every value sequence of one named
// property.
func (db *DB) DeleteTemporalProperty(ctx context.Context, collectionID, mFeatureID, name string) error {
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

	start := time.Now()
	res, err := conn.ExecContext(ctx, `
DELETE FROM tproperties
WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid AND tproperties_name = $3`,
		collectionID, mFeatureID, name)
	track("delete", "tproperties", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete temporal property: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	db.registry.Delete(registryKeyTProperties(collectionID, mFeatureID))
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// requireProperty fails with ErrNotFound when the named property does
// not exist.
func (db *DB) requireProperty(ctx context.Context, conn *sql.Conn, collectionID, mFeatureID, name string) error {
	start := time.Now()
	var exists bool
	err := conn.QueryRowContext(ctx, `
SELECT EXISTS (
  SELECT 1 FROM tproperties
  WHERE collection_id = $1::uuid AND mfeature_id = $2::uuid AND tproperties_name = $3
)`, collectionID, mFeatureID, name).Scan(&exists)
	track("select", "tproperties", start, err)
	if err != nil {
		return fmt.Errorf("failed to check property: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
