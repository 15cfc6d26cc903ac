// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"html/template"
	"net/http"
	"time"

	"github.com/aistairc/mf-api/internal/logging"
	"github.com/aistairc/mf-api/internal/models"
)

const openapiContentType = "application/vnd.oai.openapi+json;version=3.0"

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<ul>
{{range .Links}}<li><a href="{{.Href}}">{{if .Title}}{{.Title}}{{else}}{{.Href}}{{end}}</a></li>
{{end}}</ul>
</body>
</html>
`))

var conformanceTemplate = template.Must(template.New("conformance").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Conformance</title></head>
<body>
<h1>Conformance</h1>
<ul>
{{range .ConformsTo}}<li>{{.}}</li>
{{end}}</ul>
</body>
</html>
`))

// Landing serves the API root.
//
//	@Summary		Landing page
//	@Description	Links to the API definition, the conformance declaration and the collections
//	@Tags			capabilities
//	@Produce		json
//	@Success		200	{object}	models.LandingPage
//	@Router			/ [get]
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}

	base := h.baseURL()
	page := models.LandingPage{
		Title:       h.config.Metadata.Identification.Title,
		Description: h.config.Metadata.Identification.Description,
		Links: []models.Link{
			{Href: base, Rel: req.GetLinkRel(FormatJSON), Type: "application/json", Title: "This document as JSON"},
			{Href: base + "/api", Rel: "alternate", Type: "application/geo+json", Hreflang: "en",
				Title: "The API definition", Length: 0},
			{Href: base + "/conformance", Rel: "alternate", Type: "application/geo+json", Hreflang: "en",
				Title: "Conformance declaration", Length: 0},
			{Href: base + "/collections", Rel: "alternate", Type: "application/geo+json", Hreflang: "en",
				Title: "Collections of moving features", Length: 0},
		},
	}

	if req.Format() == FormatHTML {
		h.respondHTML(w, req, landingTemplate, page)
		return
	}
	h.respondJSON(w, req, http.StatusOK, page)
}

// Conformance declares the implemented conformance classes.
//
//	@Summary		Conformance declaration
//	@Tags			capabilities
//	@Produce		json
//	@Success		200	{object}	models.Conformance
//	@Router			/conformance [get]
func (h *Handler) Conformance(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}

	conf := models.Conformance{ConformsTo: models.ConformanceClasses}
	if req.Format() == FormatHTML {
		h.respondHTML(w, req, conformanceTemplate, conf)
		return
	}
	h.respondJSON(w, req, http.StatusOK, conf)
}

// OpenAPI serves the API definition document. HTML requests redirect to
// the swagger UI.
//
//	@Summary		OpenAPI document
//	@Tags			capabilities
//	@Produce		json
//	@Success		200
//	@Router			/api [get]
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}

	if req.Format() == FormatHTML {
		http.Redirect(w, r, "/swagger/index.html", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", openapiContentType)
	w.Header().Set("Content-Language", req.Locale().String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.openapi); err != nil {
		logging.Debug().Err(err).Msg("failed to write openapi document")
	}
}

// Health reports liveness, probing the store through its breaker.
//
//	@Summary	Health check
//	@Tags		monitoring
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)

	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	}
	if err := h.store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = err.Error()
	}
	h.respondJSON(w, req, status, body)
}

func (h *Handler) respondHTML(w http.ResponseWriter, req *Request, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Content-Language", req.Locale().String())
	w.WriteHeader(http.StatusOK)
	if err := tmpl.Execute(w, data); err != nil {
		logging.Debug().Err(err).Msg("failed to render page")
	}
}
