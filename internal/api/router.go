// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/aistairc/mf-api/internal/config"
)

// Router wires the handler and middleware into the chi route table.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates the router for a handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:    handler,
		middleware: NewMiddleware(&cfg.Server),
	}
}

// SetupChi builds the full route table.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging())
	r.Use(SecurityHeaders())
	r.Use(router.middleware.CORS())
	r.Use(router.middleware.Compress())
	r.Use(router.middleware.RateLimit())

	// ========================
	// Service Metadata
	// ========================
	r.Get("/", router.handler.Landing)
	r.Get("/api", router.handler.OpenAPI)
	r.Get("/openapi", router.handler.OpenAPI)
	r.Get("/conformance", router.handler.Conformance)
	r.Get("/health", router.handler.Health)

	// ========================
	// Collection Catalog
	// ========================
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", router.handler.Collections)
		r.Post("/", router.handler.PostCollection)

		r.Route("/{collectionId}", func(r chi.Router) {
			r.Get("/", router.handler.Collection)
			r.Put("/", router.handler.PutCollection)
			r.Delete("/", router.handler.DeleteCollection)

			// ========================
			// Moving Feature Items
			// ========================
			r.Route("/items", func(r chi.Router) {
				r.Get("/", router.handler.Features)
				r.Post("/", router.handler.PostFeatures)

				r.Route("/{mFeatureId}", func(r chi.Router) {
					r.Get("/", router.handler.Feature)
					r.Delete("/", router.handler.DeleteFeature)

					// ========================
					// Temporal Geometry Sequences
					// ========================
					r.Route("/tgsequence", func(r chi.Router) {
						r.Get("/", router.handler.TemporalGeometries)
						r.Post("/", router.handler.PostTemporalGeometry)
						r.Delete("/{tGeometryId}", router.handler.DeleteTemporalGeometry)
					})

					// ========================
					// Temporal Properties
					// ========================
					r.Route("/tProperties", func(r chi.Router) {
						r.Get("/", router.handler.TemporalProperties)
						r.Post("/", router.handler.PostTemporalProperties)

						r.Route("/{tPropertyName}", func(r chi.Router) {
							r.Get("/", router.handler.TemporalPropertyValue)
							r.Post("/", router.handler.PostTemporalValue)
							r.Delete("/", router.handler.DeleteTemporalProperty)
						})
					})
				})
			})
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
	r.Get("/swagger/doc.json", router.handler.OpenAPI)

	return r
}
