// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/models"
	"github.com/aistairc/mf-api/internal/params"
)

// parseJSONObject decodes a request body into a JSON object.
func parseJSONObject(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// respondStoreError maps a DAL error to the wire: ErrNotFound becomes a
// 404 with the resource message, anything else a ConnectingError.
func (h *Handler) respondStoreError(w http.ResponseWriter, req *Request, err error, notFoundMsg string) {
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, notFoundMsg)
		return
	}
	h.respondError(w, req, http.StatusBadRequest, CodeConnectingError, err.Error())
}

// parseListFilters validates the shared bbox and datetime parameters.
func (h *Handler) parseListFilters(w http.ResponseWriter, req *Request) ([]float64, params.Datetime, bool) {
	bbox, err := params.ParseBbox(req.Params().Get("bbox"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return nil, params.Datetime{}, false
	}
	dt, err := params.ParseDatetime(req.Params().Get("datetime"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return nil, params.Datetime{}, false
	}
	return bbox, dt, true
}

// collectionToWire merges the stored descriptor with the computed
// members of a collection entry.
func (h *Handler) collectionToWire(row *database.CollectionRow) map[string]any {
	doc, err := parseJSONObject(row.Property)
	if err != nil || doc == nil {
		doc = map[string]any{}
	}
	doc["id"] = row.ID
	doc["itemType"] = "movingfeature"

	extent := models.Extent{}
	if row.Extent.Valid {
		if box, err := database.ParseStbox(row.Extent.String); err == nil && box.Bbox != nil {
			crs := models.SpatialExtentCRS
			if box.Is3D() {
				crs = models.SpatialExtentCRS3D
			}
			extent.Spatial = &models.SpatialExtent{
				Bbox: [][]float64{box.Bbox},
				CRS:  crs,
			}
		}
	}
	if row.Lifespan.Valid {
		if lower, upper, err := database.ParsePeriod(row.Lifespan.String); err == nil {
			lo, hi := wireInstant(lower), wireInstant(upper)
			extent.Temporal = &models.TemporalExtent{
				Interval: [][]*string{{&lo, &hi}},
				TRS:      models.TemporalExtentTRS,
			}
		}
	}
	doc["extent"] = extent
	doc["links"] = selfLink(fmt.Sprintf("%s/collections/%s", h.baseURL(), row.ID))
	return doc
}

// Collections lists the catalog.
//
//	@Summary	List collections
//	@Tags		collections
//	@Produce	json
//	@Param		bbox		query	string	false	"spatial filter"
//	@Param		datetime	query	string	false	"temporal filter"
//	@Success	200
//	@Failure	400	{object}	exception
//	@Router		/collections [get]
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}
	bbox, dt, ok := h.parseListFilters(w, req)
	if !ok {
		return
	}

	rows, err := h.store.GetCollections(r.Context(), bbox, dt)
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}

	collections := make([]map[string]any, 0, len(rows))
	for i := range rows {
		collections = append(collections, h.collectionToWire(&rows[i]))
	}

	h.respondJSON(w, req, http.StatusOK, map[string]any{
		"collections": collections,
		"links":       selfLink(h.baseURL() + "/collections"),
	})
}

// PostCollection registers a new collection.
//
//	@Summary	Create a collection
//	@Tags		collections
//	@Accept		json
//	@Success	201
//	@Failure	400	{object}	exception
//	@Router		/collections [post]
func (h *Handler) PostCollection(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if len(req.Data()) == 0 {
		h.respondError(w, req, http.StatusBadRequest, CodeMissingParameterValue, "missing request data")
		return
	}
	if _, err := parseJSONObject(req.Data()); err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}

	id, err := h.store.PostCollection(r.Context(), req.Data())
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/collections/%s", h.baseURL(), id))
	respondEmpty(w, http.StatusCreated)
}

// Collection returns one collection.
//
//	@Summary	Get a collection
//	@Tags		collections
//	@Produce	json
//	@Param		collectionId	path	string	true	"collection id"
//	@Success	200
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId} [get]
func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}

	row, err := h.store.GetCollection(r.Context(), chi.URLParam(r, "collectionId"))
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	h.respondJSON(w, req, http.StatusOK, h.collectionToWire(row))
}

// PutCollection replaces a collection descriptor.
//
//	@Summary	Replace a collection
//	@Tags		collections
//	@Accept		json
//	@Param		collectionId	path	string	true	"collection id"
//	@Success	204
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId} [put]
func (h *Handler) PutCollection(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if len(req.Data()) == 0 {
		h.respondError(w, req, http.StatusBadRequest, CodeMissingParameterValue, "missing request data")
		return
	}
	if _, err := parseJSONObject(req.Data()); err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}

	if err := h.store.PutCollection(r.Context(), chi.URLParam(r, "collectionId"), req.Data()); err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	respondEmpty(w, http.StatusNoContent)
}

// DeleteCollection removes a collection and its contents.
//
//	@Summary	Delete a collection
//	@Tags		collections
//	@Param		collectionId	path	string	true	"collection id"
//	@Success	204
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId} [delete]
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)

	if err := h.store.DeleteCollection(r.Context(), chi.URLParam(r, "collectionId")); err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	respondEmpty(w, http.StatusNoContent)
}
