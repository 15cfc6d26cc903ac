// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package metrics declares the Prometheus collectors instrumenting the
// HTTP surface and the MobilityDB data access layer. Collectors are
// package-level promauto variables; the router serves them on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// MobilityDB query metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mobilitydb_query_duration_seconds",
			Help:    "Duration of MobilityDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobilitydb_query_errors_total",
			Help: "Total number of MobilityDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mobilitydb_sessions_active",
			Help: "Current number of request-scoped database sessions",
		},
	)

	DBBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mobilitydb_breaker_open",
			Help: "1 when the database circuit breaker is open",
		},
	)

	// Registry cache metrics (existence lists).
	RegistryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_cache_hits_total",
			Help: "Total number of registry cache hits",
		},
	)

	RegistryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_cache_misses_total",
			Help: "Total number of registry cache misses",
		},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records one query against the temporal store.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, "query").Inc()
	}
}

// SetBreakerOpen publishes the database breaker state.
func SetBreakerOpen(open bool) {
	if open {
		DBBreakerState.Set(1)
		return
	}
	DBBreakerState.Set(0)
}
