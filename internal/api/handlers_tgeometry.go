// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

const (
	missingPrismTagMsg    = "The required tag (e.g., type,prisms) is missing from the request data."
	leafSubTrajectoryMsg  = "Cannot use both parameter `subTrajectory` and `leaf` at the same time"
	leafSubTemporalValMsg = "Cannot use both parameter `subTemporalValue` and `leaf` at the same time"
)

// requireFeature runs the route-order existence checks and writes the
// 404 itself when they fail.
func (h *Handler) requireFeature(w http.ResponseWriter, req *Request, r *http.Request, cid, fid string) bool {
	exists, err := h.collectionExists(r.Context(), cid)
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return false
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Collection not found")
		return false
	}
	exists, err = h.featureExists(r.Context(), cid, fid)
	if err != nil {
		h.respondStoreError(w, req, err, "Feature not found")
		return false
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Feature not found")
		return false
	}
	return true
}

// prismToWire builds one wire prism from a sequence row. When a leaf or
// subTrajectory restriction was applied, the restricted sequence
// replaces datetimes and coordinates; a restriction that matched
// nothing yields empty arrays.
func prismToWire(row *database.TGeometryRow, restricted bool) map[string]any {
	doc, err := parseJSONObject([]byte(row.MFJSON))
	if err != nil {
		return map[string]any{"id": row.ID}
	}
	wire := mfjson.ToWire(doc)
	wire["id"] = row.ID

	if restricted {
		wire["datetimes"] = []any{}
		wire["coordinates"] = []any{}
		if row.Filtered.Valid {
			if filtered, err := parseJSONObject([]byte(row.Filtered.String)); err == nil {
				fw := mfjson.ToWire(filtered)
				if dts, ok := fw["datetimes"]; ok {
					wire["datetimes"] = dts
				}
				if coords, ok := fw["coordinates"]; ok {
					wire["coordinates"] = coords
				}
			}
		}
	}
	return wire
}

// TemporalGeometries lists the temporal geometry sequences of a
// feature.
//
//	@Summary	List temporal geometry sequences
//	@Tags		tgsequence
//	@Produce	json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Param		bbox			query	string	false	"spatial filter"
//	@Param		datetime		query	string	false	"temporal filter"
//	@Param		leaf			query	string	false	"instant list restriction"
//	@Param		subTrajectory	query	bool	false	"clip sequences to datetime"
//	@Param		limit			query	int		false	"page size"
//	@Param		offset			query	int		false	"page start"
//	@Success	200
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tgsequence [get]
func (h *Handler) TemporalGeometries(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}

	bbox, dt, ok := h.parseListFilters(w, req)
	if !ok {
		return
	}
	leaf, err := params.ParseLeaf(req.Params().Get("leaf"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return
	}
	subTrajectory := params.ParseSubFlag(req.Params().Get("subTrajectory"))
	if len(leaf) > 0 && subTrajectory {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, leafSubTrajectoryMsg)
		return
	}
	limit, err := params.ParseLimit(req.Params().Get("limit"), h.config.Server.Limit)
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return
	}
	offset, err := params.ParseOffset(req.Params().Get("offset"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return
	}

	result, err := h.store.GetTemporalGeometries(r.Context(), database.TGeometriesQuery{
		CollectionID:  cid,
		MFeatureID:    fid,
		Bbox:          bbox,
		Datetime:      dt,
		Leaf:          leaf,
		SubTrajectory: subTrajectory,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		h.respondStoreError(w, req, err, "Feature not found")
		return
	}

	restricted := len(leaf) > 0 || (subTrajectory && !dt.IsZero())
	prisms := make([]map[string]any, 0, len(result.Rows))
	var crsCandidates, trsCandidates []map[string]any
	for i := range result.Rows {
		wire := prismToWire(&result.Rows[i], restricted)
		crs, _ := wire["crs"].(map[string]any)
		trs, _ := wire["trs"].(map[string]any)
		crsCandidates = append(crsCandidates, crs)
		trsCandidates = append(trsCandidates, trs)
		prisms = append(prisms, wire)
	}

	base := fmt.Sprintf("%s/collections/%s/items/%s/tgsequence", h.baseURL(), cid, fid)
	h.respondJSON(w, req, http.StatusOK, map[string]any{
		"type":           "MovingGeometryCollection",
		"prisms":         prisms,
		"crs":            promoteCRS(crsCandidates),
		"trs":            promoteTRS(trsCandidates),
		"links":          pagingLinks(req, base, offset, limit, len(prisms)),
		"timeStamp":      envelopeTimestamp(),
		"numberMatched":  result.NumberMatched,
		"numberReturned": len(prisms),
	})
}

// PostTemporalGeometry stores one temporal geometry — or every prism of
// a MovingGeometryCollection — under a feature.
//
//	@Summary	Insert a temporal geometry sequence
//	@Tags		tgsequence
//	@Accept		json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Success	201
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Failure	501	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tgsequence [post]
func (h *Handler) PostTemporalGeometry(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}

	if len(req.Data()) == 0 {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "No data found")
		return
	}
	doc, err := parseJSONObject(req.Data())
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}
	if !mfjson.CheckTemporalGeometry(doc) {
		h.respondError(w, req, http.StatusNotImplemented, CodeMissingParameterValue, missingPrismTagMsg)
		return
	}

	tgs, err := temporalGeometriesFromDoc(doc)
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}

	var lastID string
	for _, tg := range tgs {
		id, err := h.store.PostTemporalGeometry(r.Context(), cid, fid, tg)
		if err != nil {
			h.respondStoreError(w, req, err, "Feature not found")
			return
		}
		lastID = id
	}

	w.Header().Set("Location",
		fmt.Sprintf("%s/collections/%s/items/%s/tgsequence/%s", h.baseURL(), cid, fid, lastID))
	respondEmpty(w, http.StatusCreated)
}

// DeleteTemporalGeometry removes one temporal geometry sequence.
//
//	@Summary	Delete a temporal geometry sequence
//	@Tags		tgsequence
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Param		tGeometryId		path	string	true	"sequence id"
//	@Success	204
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tgsequence/{tGeometryId} [delete]
func (h *Handler) DeleteTemporalGeometry(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}

	err := h.store.DeleteTemporalGeometry(r.Context(), cid, fid, chi.URLParam(r, "tGeometryId"))
	if err != nil {
		h.respondStoreError(w, req, err, "Temporal Geometry not found")
		return
	}
	respondEmpty(w, http.StatusNoContent)
}
