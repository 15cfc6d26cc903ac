// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/aistairc/mf-api/internal/config"
	"github.com/aistairc/mf-api/internal/logging"
	"github.com/aistairc/mf-api/internal/metrics"
)

// Middleware builds the HTTP middleware chain from the server
// configuration. Optional layers (compression, CORS, rate limiting)
// collapse to no-ops when disabled.
type Middleware struct {
	config *config.ServerConfig
	cors   func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(cfg *config.ServerConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "Accept-Language"},
		MaxAge:         86400,
	})

	return &Middleware{
		config: cfg,
		cors:   corsHandler,
	}
}

func noopMiddleware(next http.Handler) http.Handler { return next }

// CORS returns the go-chi/cors handler, or a no-op when disabled.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	if !m.config.CORS {
		return noopMiddleware
	}
	return m.cors
}

// Compress returns gzip compression when enabled.
func (m *Middleware) Compress() func(http.Handler) http.Handler {
	if !m.config.Gzip {
		return noopMiddleware
	}
	return chimiddleware.Compress(5)
}

// RateLimit returns an IP-keyed httprate limiter when enabled.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if !m.config.RateLimit.Enabled {
		return noopMiddleware
	}
	return httprate.Limit(
		m.config.RateLimit.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// SecurityHeaders sets the response headers every endpoint carries.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging attaches a request-scoped logger, records Prometheus
// request metrics and logs each completed request.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)
			ctx := logging.ContextWithRequestID(r.Context(), requestID)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			metrics.APIActiveRequests.Inc()
			defer metrics.APIActiveRequests.Dec()

			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			metrics.RecordAPIRequest(r.Method, routePattern(r), ww.Status(), duration)

			event := logging.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = logging.Error()
			}
			event.
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}

// routePattern resolves the chi route template so metrics stay bounded
// under id-bearing paths. The route context is populated by the time
// the handler returns.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
