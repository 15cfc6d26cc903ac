// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

//go:build integration

package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
	"github.com/aistairc/mf-api/internal/testinfra"
)

func newIntegrationDB(t *testing.T) *database.DB {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewMobilityDBContainer(ctx, t)
	if err != nil {
		t.Fatalf("failed to start mobilitydb: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, container.Container) })

	db, err := database.New(container.DatabaseConfig())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func parseGeometry(t *testing.T, raw string) *mfjson.TemporalGeometry {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("bad geometry document: %v", err)
	}
	tg, err := mfjson.ParseTemporalGeometry(doc)
	if err != nil {
		t.Fatalf("failed to parse temporal geometry: %v", err)
	}
	return tg
}

func propertyEntry(t *testing.T, name, raw string) database.TPropertyEntry {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("bad value document: %v", err)
	}
	seq, err := mfjson.ParseTemporalValueSequence(doc)
	if err != nil {
		t.Fatalf("failed to parse value sequence: %v", err)
	}
	dts, err := json.Marshal(doc["datetimes"])
	if err != nil {
		t.Fatalf("failed to marshal datetimes: %v", err)
	}
	return database.TPropertyEntry{
		Name:          name,
		Descriptor:    []byte(raw),
		DatetimesJSON: dts,
		Sequence:      seq,
	}
}

// TestMovingFeatureLifecycle walks a collection from creation through
// nested feature ingestion, filtered reads, value appends and cascading
// deletion against a real MobilityDB instance.
func TestMovingFeatureLifecycle(t *testing.T) {
	db := newIntegrationDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cid, err := db.PostCollection(ctx, []byte(`{"title":"vehicles","updateFrequency":1000}`))
	if err != nil {
		t.Fatalf("PostCollection: %v", err)
	}

	ids, err := db.GetCollectionsList(ctx)
	if err != nil {
		t.Fatalf("GetCollectionsList: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == cid {
			found = true
		}
	}
	if !found {
		t.Fatalf("collection %s missing from id list %v", cid, ids)
	}

	lifespan := params.Datetime{
		Start: time.Date(2011, 7, 14, 22, 1, 1, 0, time.UTC),
		End:   time.Date(2011, 7, 15, 1, 11, 22, 0, time.UTC),
	}
	insert := &database.MovingFeatureInsert{
		Property: []byte(`{"name":"car1","state":"test1"}`),
		Lifespan: &lifespan,
		TGeometries: []*mfjson.TemporalGeometry{parseGeometry(t, `{
			"type": "MovingPoint",
			"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z", "2011-07-14T22:01:03Z"],
			"coordinates": [[139.757083, 35.627701], [139.757399, 35.627701], [139.757555, 35.627688]],
			"interpolation": "Linear"
		}`)},
		TProperties: [][]database.TPropertyEntry{
			{propertyEntry(t, "speed", `{
				"type": "Measure",
				"form": "KMH",
				"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z"],
				"values": [65, 70],
				"interpolation": "Linear"
			}`)},
			{propertyEntry(t, "heading", `{
				"type": "Measure",
				"form": "DEG",
				"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z"],
				"values": [90, 92],
				"interpolation": "Linear"
			}`)},
			{propertyEntry(t, "fuel", `{
				"type": "Measure",
				"form": "LTR",
				"datetimes": ["2011-07-14T22:02:01Z", "2011-07-14T22:02:02Z"],
				"values": [40, 39.8],
				"interpolation": "Linear"
			}`)},
		},
	}
	fid, err := db.PostMovingFeature(ctx, cid, insert)
	if err != nil {
		t.Fatalf("PostMovingFeature: %v", err)
	}

	t.Run("feature listing with filters", func(t *testing.T) {
		result, err := db.GetFeatures(ctx, database.FeaturesQuery{
			CollectionID: cid,
			Bbox:         []float64{139, 35, 140, 36},
			Limit:        10,
		})
		if err != nil {
			t.Fatalf("GetFeatures: %v", err)
		}
		if result.NumberMatched != 1 || len(result.Features) != 1 {
			t.Fatalf("matched=%d returned=%d, want 1/1", result.NumberMatched, len(result.Features))
		}
		if result.Features[0].ID != fid {
			t.Errorf("feature id = %s, want %s", result.Features[0].ID, fid)
		}
		if !result.Features[0].Lifespan.Valid {
			t.Error("lifespan not stored")
		}

		// A bbox nowhere near the trajectory excludes the feature from
		// both the page and the count.
		miss, err := db.GetFeatures(ctx, database.FeaturesQuery{
			CollectionID: cid,
			Bbox:         []float64{0, 0, 1, 1},
			Limit:        10,
		})
		if err != nil {
			t.Fatalf("GetFeatures (miss): %v", err)
		}
		if miss.NumberMatched != 0 {
			t.Errorf("numberMatched = %d, want 0", miss.NumberMatched)
		}
	})

	t.Run("temporal geometry leaf filter", func(t *testing.T) {
		leaf := time.Date(2011, 7, 14, 22, 1, 2, 0, time.UTC)
		result, err := db.GetTemporalGeometries(ctx, database.TGeometriesQuery{
			CollectionID: cid,
			MFeatureID:   fid,
			Leaf:         []time.Time{leaf},
			Limit:        10,
		})
		if err != nil {
			t.Fatalf("GetTemporalGeometries: %v", err)
		}
		if len(result.Rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(result.Rows))
		}
		if !result.Rows[0].Filtered.Valid {
			t.Fatal("leaf restriction produced no filtered sequence")
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(result.Rows[0].Filtered.String), &doc); err != nil {
			t.Fatalf("filtered sequence is not JSON: %v", err)
		}
		if dts, _ := doc["datetimes"].([]any); len(dts) != 1 {
			t.Errorf("filtered datetimes = %v, want the single leaf instant", doc["datetimes"])
		}
	})

	t.Run("temporal property grouping", func(t *testing.T) {
		// The same datetime set joins the existing group; a new set gets
		// a fresh one.
		_, err := db.PostTemporalProperties(ctx, cid, fid, [][]database.TPropertyEntry{{
			propertyEntry(t, "engine_temp", `{
				"type": "Measure",
				"form": "CEL",
				"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z"],
				"values": [80.5, 81.1],
				"interpolation": "Linear"
			}`),
		}})
		if err != nil {
			t.Fatalf("PostTemporalProperties: %v", err)
		}

		result, err := db.GetTemporalProperties(ctx, database.TPropertiesQuery{
			CollectionID:     cid,
			MFeatureID:       fid,
			Limit:            10,
			SubTemporalValue: true,
		})
		if err != nil {
			t.Fatalf("GetTemporalProperties: %v", err)
		}
		groups := map[string]int{}
		for _, row := range result.Rows {
			groups[row.Name] = row.Group
		}
		if groups["speed"] != groups["heading"] {
			t.Errorf("groups = %v, want the co-posted speed and heading to share one", groups)
		}
		if groups["speed"] == groups["fuel"] {
			t.Errorf("groups = %v, want fuel on its own timestamp set in a separate group", groups)
		}
		if groups["speed"] != groups["engine_temp"] {
			t.Errorf("groups = %v, want speed and engine_temp to share one", groups)
		}
	})

	t.Run("value append and overlap rejection", func(t *testing.T) {
		_, err := db.PostTemporalValue(ctx, cid, fid, "speed", propertyEntry(t, "speed", `{
			"datetimes": ["2011-07-14T23:00:00Z", "2011-07-14T23:00:01Z"],
			"values": [55, 60],
			"interpolation": "Linear"
		}`))
		if err != nil {
			t.Fatalf("PostTemporalValue (disjoint): %v", err)
		}

		_, err = db.PostTemporalValue(ctx, cid, fid, "speed", propertyEntry(t, "speed", `{
			"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z"],
			"values": [1, 2],
			"interpolation": "Linear"
		}`))
		if !errors.Is(err, database.ErrOverlappingSequence) {
			t.Errorf("overlapping append returned %v, want ErrOverlappingSequence", err)
		}

		rows, err := db.GetTemporalPropertiesValue(ctx, database.TPropertyValueQuery{
			CollectionID: cid,
			MFeatureID:   fid,
			Name:         "speed",
		})
		if err != nil {
			t.Fatalf("GetTemporalPropertiesValue: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("value sequences = %d, want 2", len(rows))
		}
	})

	t.Run("cascading deletion", func(t *testing.T) {
		if err := db.DeleteTemporalProperty(ctx, cid, fid, "engine_temp"); err != nil {
			t.Fatalf("DeleteTemporalProperty: %v", err)
		}
		if err := db.DeleteMovingFeature(ctx, cid, fid); err != nil {
			t.Fatalf("DeleteMovingFeature: %v", err)
		}
		names, err := db.GetTemporalPropertiesNameList(ctx, cid, fid)
		if err != nil {
			t.Fatalf("GetTemporalPropertiesNameList: %v", err)
		}
		if len(names) != 0 {
			t.Errorf("property names after feature delete = %v, want none", names)
		}
		if err := db.DeleteCollection(ctx, cid); err != nil {
			t.Fatalf("DeleteCollection: %v", err)
		}
		if _, err := db.GetCollection(ctx, cid); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("GetCollection after delete returned %v, want ErrNotFound", err)
		}
	})
}
