// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package api is the HTTP surface of the moving features server: format
// and locale negotiation, parameter validation, envelope assembly and
// the chi route table.
//
// Handler methods are split across files by resource:
//   - handlers_root.go: landing page, conformance, OpenAPI document
//   - handlers_collections.go: collection CRUD
//   - handlers_features.go: moving feature items
//   - handlers_tgeometry.go: temporal geometry sequences
//   - handlers_tproperties.go: temporal properties and value appends
package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/aistairc/mf-api/internal/config"
	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

// Store is the data access surface the handlers depend on. *database.DB
// implements it; tests substitute a fake.
type Store interface {
	Ping(ctx context.Context) error

	GetCollectionsList(ctx context.Context) ([]string, error)
	GetCollections(ctx context.Context, bbox []float64, dt params.Datetime) ([]database.CollectionRow, error)
	GetCollection(ctx context.Context, collectionID string) (*database.CollectionRow, error)
	PostCollection(ctx context.Context, property []byte) (string, error)
	PutCollection(ctx context.Context, collectionID string, property []byte) error
	DeleteCollection(ctx context.Context, collectionID string) error

	GetFeaturesList(ctx context.Context, collectionID string) ([]string, error)
	GetFeatures(ctx context.Context, q database.FeaturesQuery) (*database.FeaturesResult, error)
	GetFeature(ctx context.Context, collectionID, mFeatureID string) (*database.FeatureRow, error)
	PostMovingFeature(ctx context.Context, collectionID string, insert *database.MovingFeatureInsert) (string, error)
	DeleteMovingFeature(ctx context.Context, collectionID, mFeatureID string) error

	GetTemporalGeometries(ctx context.Context, q database.TGeometriesQuery) (*database.TGeometriesResult, error)
	PostTemporalGeometry(ctx context.Context, collectionID, mFeatureID string, tg *mfjson.TemporalGeometry) (string, error)
	DeleteTemporalGeometry(ctx context.Context, collectionID, mFeatureID, tGeometryID string) error

	GetTemporalPropertiesNameList(ctx context.Context, collectionID, mFeatureID string) ([]string, error)
	GetTemporalProperties(ctx context.Context, q database.TPropertiesQuery) (*database.TPropertiesResult, error)
	GetTemporalPropertiesValue(ctx context.Context, q database.TPropertyValueQuery) ([]database.TPropertyRow, error)
	PostTemporalProperties(ctx context.Context, collectionID, mFeatureID string, groups [][]database.TPropertyEntry) ([]string, error)
	PostTemporalValue(ctx context.Context, collectionID, mFeatureID, name string, entry database.TPropertyEntry) (string, error)
	DeleteTemporalProperty(ctx context.Context, collectionID, mFeatureID, name string) error
}

// Handler serves the moving features API.
type Handler struct {
	store     Store
	config    *config.Config
	matcher   language.Matcher
	openapi   []byte
	startTime time.Time
}

// NewHandler builds the handler, compiling the locale matcher from the
// configured locales.
func NewHandler(store Store, cfg *config.Config, openapiDoc []byte) *Handler {
	tags := make([]language.Tag, 0, len(cfg.Server.Locales))
	for _, loc := range cfg.Server.Locales {
		if tag, err := language.Parse(loc); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.AmericanEnglish}
	}

	return &Handler{
		store:     store,
		config:    cfg,
		matcher:   language.NewMatcher(tags),
		openapi:   openapiDoc,
		startTime: time.Now(),
	}
}

// newRequest negotiates format and locale for one request.
func (h *Handler) newRequest(r *http.Request) *Request {
	return NewRequest(r, h.matcher)
}

// baseURL is the public URL collections links are built from.
func (h *Handler) baseURL() string {
	return h.config.Server.URL
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
