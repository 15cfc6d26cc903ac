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
	"github.com/aistairc/mf-api/internal/params"
)

func TestCollectionsList(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		getCollections: func(context.Context, []float64, params.Datetime) ([]database.CollectionRow, error) {
			return []database.CollectionRow{{
				ID:       "0b86b5e4-8ea2-4e64-8db3-767862983d36",
				Property: []byte(`{"title":"vehicles"}`),
				Lifespan: sql.NullString{String: "[2011-07-14 22:01:01+00, 2011-07-15 01:11:22+00]", Valid: true},
				Extent:   sql.NullString{String: "STBOX X((139.75,35.68),(139.78,35.69))", Valid: true},
			}}, nil
		},
	}
	srv := newTestServer(t, store)

	resp, body := doRequest(t, srv, http.MethodGet, "/collections", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decodeJSON(t, body)
	collections, ok := doc["collections"].([]any)
	if !ok || len(collections) != 1 {
		t.Fatalf("collections = %v, want one entry", doc["collections"])
	}
	entry := collections[0].(map[string]any)
	if entry["id"] != "0b86b5e4-8ea2-4e64-8db3-767862983d36" {
		t.Errorf("id = %v", entry["id"])
	}
	if entry["itemType"] != "movingfeature" {
		t.Errorf("itemType = %v, want movingfeature", entry["itemType"])
	}
	if entry["title"] != "vehicles" {
		t.Errorf("title = %v, want vehicles", entry["title"])
	}
	if _, ok := entry["extent"]; !ok {
		t.Error("extent missing")
	}
	if _, ok := doc["links"]; !ok {
		t.Error("links missing")
	}
}

func TestCollectionsBadBbox(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{})
	resp, body := doRequest(t, srv, http.MethodGet, "/collections?bbox=1,2,3", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	doc := decodeJSON(t, body)
	if doc["code"] != CodeInvalidParameterValue {
		t.Errorf("code = %v, want %v", doc["code"], CodeInvalidParameterValue)
	}
}

func TestCollectionNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{})
	resp, body := doRequest(t, srv, http.MethodGet, "/collections/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	wantException(t, body, CodeNotFound, "Collection not found")
}

func TestPostCollection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{
			name:       "created",
			body:       `{"title":"vehicles"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeMissingParameterValue,
			wantDesc:   "missing request data",
		},
		{
			name:       "malformed body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidParameterValue,
			wantDesc:   "invalid request data",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{
				postCollection: func(context.Context, []byte) (string, error) {
					return "new-id", nil
				},
			}
			srv := newTestServer(t, store)

			resp, body := doRequest(t, srv, http.MethodPost, "/collections", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusCreated {
				want := "http://localhost:8085/collections/new-id"
				if got := resp.Header.Get("Location"); got != want {
					t.Errorf("Location = %q, want %q", got, want)
				}
				return
			}
			wantException(t, body, tt.wantCode, tt.wantDesc)
		})
	}
}

func TestPutCollection(t *testing.T) {
	t.Parallel()

	updated := false
	store := &fakeStore{
		putCollection: func(_ context.Context, cid string, _ []byte) error {
			if cid != "c1" {
				return database.ErrNotFound
			}
			updated = true
			return nil
		},
	}
	srv := newTestServer(t, store)

	resp, _ := doRequest(t, srv, http.MethodPut, "/collections/c1", `{"title":"renamed"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if !updated {
		t.Error("store was not called")
	}

	resp, body := doRequest(t, srv, http.MethodPut, "/collections/other", `{"title":"renamed"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	wantException(t, body, CodeNotFound, "Collection not found")
}

func TestDeleteCollection(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		deleteCollection: func(_ context.Context, cid string) error {
			if cid != "c1" {
				return database.ErrNotFound
			}
			return nil
		},
	}
	srv := newTestServer(t, store)

	resp, _ := doRequest(t, srv, http.MethodDelete, "/collections/c1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}
