// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/config"
	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

// fakeStore implements Store with overridable function fields. Methods
// without an override return the not-found zero behavior.
type fakeStore struct {
	collections   []string
	features      map[string][]string
	propertyNames map[string][]string

	ping              func(ctx context.Context) error
	getCollections    func(ctx context.Context, bbox []float64, dt params.Datetime) ([]database.CollectionRow, error)
	getCollection     func(ctx context.Context, cid string) (*database.CollectionRow, error)
	postCollection    func(ctx context.Context, property []byte) (string, error)
	putCollection     func(ctx context.Context, cid string, property []byte) error
	deleteCollection  func(ctx context.Context, cid string) error
	getFeatures       func(ctx context.Context, q database.FeaturesQuery) (*database.FeaturesResult, error)
	getFeature        func(ctx context.Context, cid, fid string) (*database.FeatureRow, error)
	postFeature       func(ctx context.Context, cid string, insert *database.MovingFeatureInsert) (string, error)
	deleteFeature     func(ctx context.Context, cid, fid string) error
	getTGeometries    func(ctx context.Context, q database.TGeometriesQuery) (*database.TGeometriesResult, error)
	postTGeometry     func(ctx context.Context, cid, fid string, tg *mfjson.TemporalGeometry) (string, error)
	deleteTGeometry   func(ctx context.Context, cid, fid, tgid string) error
	getTProperties    func(ctx context.Context, q database.TPropertiesQuery) (*database.TPropertiesResult, error)
	getTPropertyValue func(ctx context.Context, q database.TPropertyValueQuery) ([]database.TPropertyRow, error)
	postTProperties   func(ctx context.Context, cid, fid string, groups [][]database.TPropertyEntry) ([]string, error)
	postTValue        func(ctx context.Context, cid, fid, name string, entry database.TPropertyEntry) (string, error)
	deleteTProperty   func(ctx context.Context, cid, fid, name string) error
}

func (s *fakeStore) Ping(ctx context.Context) error {
	if s.ping != nil {
		return s.ping(ctx)
	}
	return nil
}

func (s *fakeStore) GetCollectionsList(context.Context) ([]string, error) {
	return s.collections, nil
}

func (s *fakeStore) GetCollections(ctx context.Context, bbox []float64, dt params.Datetime) ([]database.CollectionRow, error) {
	if s.getCollections != nil {
		return s.getCollections(ctx, bbox, dt)
	}
	return nil, nil
}

func (s *fakeStore) GetCollection(ctx context.Context, cid string) (*database.CollectionRow, error) {
	if s.getCollection != nil {
		return s.getCollection(ctx, cid)
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) PostCollection(ctx context.Context, property []byte) (string, error) {
	if s.postCollection != nil {
		return s.postCollection(ctx, property)
	}
	return "", database.ErrNotFound
}

func (s *fakeStore) PutCollection(ctx context.Context, cid string, property []byte) error {
	if s.putCollection != nil {
		return s.putCollection(ctx, cid, property)
	}
	return database.ErrNotFound
}

func (s *fakeStore) DeleteCollection(ctx context.Context, cid string) error {
	if s.deleteCollection != nil {
		return s.deleteCollection(ctx, cid)
	}
	return database.ErrNotFound
}

func (s *fakeStore) GetFeaturesList(ctx context.Context, cid string) ([]string, error) {
	return s.features[cid], nil
}

func (s *fakeStore) GetFeatures(ctx context.Context, q database.FeaturesQuery) (*database.FeaturesResult, error) {
	if s.getFeatures != nil {
		return s.getFeatures(ctx, q)
	}
	return &database.FeaturesResult{}, nil
}

func (s *fakeStore) GetFeature(ctx context.Context, cid, fid string) (*database.FeatureRow, error) {
	if s.getFeature != nil {
		return s.getFeature(ctx, cid, fid)
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) PostMovingFeature(ctx context.Context, cid string, insert *database.MovingFeatureInsert) (string, error) {
	if s.postFeature != nil {
		return s.postFeature(ctx, cid, insert)
	}
	return "", database.ErrNotFound
}

func (s *fakeStore) DeleteMovingFeature(ctx context.Context, cid, fid string) error {
	if s.deleteFeature != nil {
		return s.deleteFeature(ctx, cid, fid)
	}
	return database.ErrNotFound
}

func (s *fakeStore) GetTemporalGeometries(ctx context.Context, q database.TGeometriesQuery) (*database.TGeometriesResult, error) {
	if s.getTGeometries != nil {
		return s.getTGeometries(ctx, q)
	}
	return &database.TGeometriesResult{}, nil
}

func (s *fakeStore) PostTemporalGeometry(ctx context.Context, cid, fid string, tg *mfjson.TemporalGeometry) (string, error) {
	if s.postTGeometry != nil {
		return s.postTGeometry(ctx, cid, fid, tg)
	}
	return "", database.ErrNotFound
}

func (s *fakeStore) DeleteTemporalGeometry(ctx context.Context, cid, fid, tgid string) error {
	if s.deleteTGeometry != nil {
		return s.deleteTGeometry(ctx, cid, fid, tgid)
	}
	return database.ErrNotFound
}

func (s *fakeStore) GetTemporalPropertiesNameList(ctx context.Context, cid, fid string) ([]string, error) {
	return s.propertyNames[cid+"/"+fid], nil
}

func (s *fakeStore) GetTemporalProperties(ctx context.Context, q database.TPropertiesQuery) (*database.TPropertiesResult, error) {
	if s.getTProperties != nil {
		return s.getTProperties(ctx, q)
	}
	return &database.TPropertiesResult{}, nil
}

func (s *fakeStore) GetTemporalPropertiesValue(ctx context.Context, q database.TPropertyValueQuery) ([]database.TPropertyRow, error) {
	if s.getTPropertyValue != nil {
		return s.getTPropertyValue(ctx, q)
	}
	return nil, nil
}

func (s *fakeStore) PostTemporalProperties(ctx context.Context, cid, fid string, groups [][]database.TPropertyEntry) ([]string, error) {
	if s.postTProperties != nil {
		return s.postTProperties(ctx, cid, fid, groups)
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) PostTemporalValue(ctx context.Context, cid, fid, name string, entry database.TPropertyEntry) (string, error) {
	if s.postTValue != nil {
		return s.postTValue(ctx, cid, fid, name, entry)
	}
	return "", database.ErrNotFound
}

func (s *fakeStore) DeleteTemporalProperty(ctx context.Context, cid, fid, name string) error {
	if s.deleteTProperty != nil {
		return s.deleteTProperty(ctx, cid, fid, name)
	}
	return database.ErrNotFound
}

// testConfig is the server configuration the handler tests run with.
// Rate limiting is off so parallel subtests do not throttle each other.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			URL:     "http://localhost:8085",
			Limit:   10,
			Locales: []string{"en-US", "ja-JP"},
		},
		Metadata: config.MetadataConfig{
			Identification: config.IdentificationConfig{
				Title:       "OGC API - Moving Features",
				Description: "Access to data about moving features",
			},
		},
	}
}

// newTestServer builds a full route table over the fake store.
func newTestServer(t *testing.T, store Store) *httptest.Server {
	t.Helper()

	handler := NewHandler(store, testConfig(), []byte(`{"openapi":"3.0.0"}`))
	router := NewRouter(handler, testConfig())
	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)
	return srv
}

// doRequest issues a request against the test server and returns the
// response with its body read.
func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

// decodeJSON unmarshals a response body into a generic document.
func decodeJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, data)
	}
	return doc
}

// wantException asserts the {code, description} payload.
func wantException(t *testing.T, data []byte, code, description string) {
	t.Helper()

	doc := decodeJSON(t, data)
	if doc["code"] != code {
		t.Errorf("exception code = %v, want %v", doc["code"], code)
	}
	if doc["description"] != description {
		t.Errorf("exception description = %v, want %v", doc["description"], description)
	}
}
