// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/aistairc/mf-api/internal/database"
)

func TestFeaturesMissingCollectionBeatsBadParams(t *testing.T) {
	t.Parallel()

	// The existence check runs before parameter validation, so an
	// unknown collection is a 404 even with a malformed bbox.
	srv := newTestServer(t, &fakeStore{})
	resp, body := doRequest(t, srv, http.MethodGet, "/collections/ghost/items?bbox=not,a,box", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	wantException(t, body, CodeNotFound, "Collection not found")
}

func TestFeaturesList(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		collections: []string{"c1"},
		getFeatures: func(_ context.Context, q database.FeaturesQuery) (*database.FeaturesResult, error) {
			if q.CollectionID != "c1" {
				t.Errorf("collection id = %q, want c1", q.CollectionID)
			}
			return &database.FeaturesResult{
				Features: []database.FeatureRow{{
					ID:       "f1",
					Property: []byte(`{"name":"car1"}`),
					Lifespan: sql.NullString{String: "[2011-07-14 22:01:01+00, 2011-07-15 01:11:22+00]", Valid: true},
				}},
				NumberMatched: 5,
			}, nil
		},
	}
	srv := newTestServer(t, store)

	resp, body := doRequest(t, srv, http.MethodGet, "/collections/c1/items?limit=1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decodeJSON(t, body)
	if doc["type"] != "FeatureCollection" {
		t.Errorf("type = %v, want FeatureCollection", doc["type"])
	}
	if got := doc["numberMatched"].(float64); got != 5 {
		t.Errorf("numberMatched = %v, want 5", got)
	}
	if got := doc["numberReturned"].(float64); got != 1 {
		t.Errorf("numberReturned = %v, want 1", got)
	}
	if _, ok := doc["crs"].(map[string]any); !ok {
		t.Error("crs missing")
	}

	// Full page: self plus next link, carrying limit.
	links := doc["links"].([]any)
	if len(links) != 2 {
		t.Fatalf("links = %d entries, want 2", len(links))
	}
	next := links[1].(map[string]any)
	if next["rel"] != "next" {
		t.Errorf("second link rel = %v, want next", next["rel"])
	}
	wantHref := "http://localhost:8085/collections/c1/items?offset=1&limit=1"
	if next["href"] != wantHref {
		t.Errorf("next href = %v, want %v", next["href"], wantHref)
	}

	feature := doc["features"].([]any)[0].(map[string]any)
	if feature["id"] != "f1" {
		t.Errorf("feature id = %v", feature["id"])
	}
	props := feature["properties"].(map[string]any)
	if props["name"] != "car1" {
		t.Errorf("properties.name = %v, want car1", props["name"])
	}
}

func TestPostFeaturesGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidParameterValue,
			wantDesc:   "No data found",
		},
		{
			name:       "malformed body",
			body:       "]",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidParameterValue,
			wantDesc:   "invalid request data",
		},
		{
			name:       "missing temporal geometry",
			body:       `{"type":"Feature","properties":{}}`,
			wantStatus: http.StatusNotImplemented,
			wantCode:   CodeMissingParameterValue,
			wantDesc:   missingFeatureTagMsg,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, &fakeStore{collections: []string{"c1"}})
			resp, body := doRequest(t, srv, http.MethodPost, "/collections/c1/items", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			wantException(t, body, tt.wantCode, tt.wantDesc)
		})
	}
}

func TestPostFeature(t *testing.T) {
	t.Parallel()

	var got *database.MovingFeatureInsert
	store := &fakeStore{
		collections: []string{"c1"},
		postFeature: func(_ context.Context, _ string, insert *database.MovingFeatureInsert) (string, error) {
			got = insert
			return "f-new", nil
		},
	}
	srv := newTestServer(t, store)

	body := `{
		"type": "Feature",
		"properties": {"name": "car1"},
		"time": ["2011-07-14T22:01:01Z", "2011-07-15T01:11:22Z"],
		"temporalGeometry": {
			"type": "MovingPoint",
			"datetimes": ["2011-07-14T22:01:01Z", "2011-07-14T22:01:02Z"],
			"coordinates": [[139.757083, 35.627701], [139.757399, 35.627701]],
			"interpolation": "Linear"
		}
	}`
	resp, _ := doRequest(t, srv, http.MethodPost, "/collections/c1/items", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	want := "http://localhost:8085/collections/c1/items/f-new"
	if loc := resp.Header.Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}

	if got == nil {
		t.Fatal("store was not called")
	}
	if got.Lifespan == nil {
		t.Error("lifespan not captured")
	}
	if len(got.TGeometries) != 1 {
		t.Fatalf("temporal geometries = %d, want 1", len(got.TGeometries))
	}
	if got.TGeometries[0].Type != "MovingGeomPoint" {
		t.Errorf("stored type = %q, want MovingGeomPoint", got.TGeometries[0].Type)
	}
}

func TestFeatureNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{collections: []string{"c1"}})
	resp, body := doRequest(t, srv, http.MethodGet, "/collections/c1/items/ghost", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	wantException(t, body, CodeNotFound, "Feature not found")
}

func TestDeleteFeature(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		collections: []string{"c1"},
		deleteFeature: func(_ context.Context, _, fid string) error {
			if fid != "f1" {
				return database.ErrNotFound
			}
			return nil
		},
	}
	srv := newTestServer(t, store)

	resp, _ := doRequest(t, srv, http.MethodDelete, "/collections/c1/items/f1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp, body := doRequest(t, srv, http.MethodDelete, "/collections/ghost/items/f1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	wantException(t, body, CodeNotFound, "Collection not found")
}
