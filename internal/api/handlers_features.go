// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/models"
	"github.com/aistairc/mf-api/internal/params"
)

const missingFeatureTagMsg = "The required tag (e.g., type,temporalgeometry) is missing from the request data."

// collectionExists consults the cached id list.
func (h *Handler) collectionExists(ctx context.Context, collectionID string) (bool, error) {
	ids, err := h.store.GetCollectionsList(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == collectionID {
			return true, nil
		}
	}
	return false, nil
}

// featureExists consults the cached per-collection feature list.
func (h *Handler) featureExists(ctx context.Context, collectionID, mFeatureID string) (bool, error) {
	ids, err := h.store.GetFeaturesList(ctx, collectionID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == mFeatureID {
			return true, nil
		}
	}
	return false, nil
}

// featureToWire merges the stored parts of one moving feature into the
// wire shape. trajectories, when non-nil, become the temporalGeometry
// member of a subTrajectory listing.
func featureToWire(row *database.FeatureRow, trajectories []database.TrajectoryRow) map[string]any {
	feature := map[string]any{
		"id":   row.ID,
		"type": "Feature",
	}

	var geometry any
	if row.Geometry.Valid {
		if g, err := parseJSONObject([]byte(row.Geometry.String)); err == nil {
			geometry = g
		}
	}
	feature["geometry"] = geometry

	var properties any
	var crs, trs map[string]any
	if len(row.Property) > 0 {
		if doc, err := parseJSONObject(row.Property); err == nil {
			crs, _ = doc["crs"].(map[string]any)
			trs, _ = doc["trs"].(map[string]any)
			delete(doc, "crs")
			delete(doc, "trs")
			if len(doc) > 0 {
				properties = doc
			}
		}
	}
	feature["properties"] = properties
	feature["crs"] = promoteCRS([]map[string]any{crs})
	feature["trs"] = promoteTRS([]map[string]any{trs})

	if row.Extent.Valid {
		if box, err := database.ParseStbox(row.Extent.String); err == nil && box.Bbox != nil {
			feature["bbox"] = box.Bbox
		}
	}
	if row.Lifespan.Valid {
		if lower, upper, err := database.ParsePeriod(row.Lifespan.String); err == nil {
			feature["time"] = []string{wireInstant(lower), wireInstant(upper)}
		}
	}

	if trajectories != nil {
		prisms := make([]map[string]any, 0, len(trajectories))
		for _, tr := range trajectories {
			if doc, err := parseJSONObject([]byte(tr.MFJSON)); err == nil {
				wire := mfjson.ToWire(doc)
				wire["id"] = tr.TGeometryID
				prisms = append(prisms, wire)
			}
		}
		feature["temporalGeometry"] = prisms
	}
	return feature
}

// Features lists the moving features of a collection.
//
//	@Summary	List moving features
//	@Tags		items
//	@Produce	json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		bbox			query	string	false	"spatial filter"
//	@Param		datetime		query	string	false	"temporal filter"
//	@Param		limit			query	int		false	"page size"
//	@Param		offset			query	int		false	"page start"
//	@Param		subTrajectory	query	bool	false	"clip trajectories to datetime"
//	@Success	200
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items [get]
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}
	cid := chi.URLParam(r, "collectionId")

	exists, err := h.collectionExists(r.Context(), cid)
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Collection not found")
		return
	}

	bbox, dt, ok := h.parseListFilters(w, req)
	if !ok {
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
	subTrajectory := params.ParseSubFlag(req.Params().Get("subTrajectory"))

	result, err := h.store.GetFeatures(r.Context(), database.FeaturesQuery{
		CollectionID:  cid,
		Bbox:          bbox,
		Datetime:      dt,
		Limit:         limit,
		Offset:        offset,
		SubTrajectory: subTrajectory,
	})
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}

	features := make([]map[string]any, 0, len(result.Features))
	var crsCandidates, trsCandidates []map[string]any
	for i := range result.Features {
		row := &result.Features[i]
		feature := featureToWire(row, result.Trajectories[row.ID])
		crs, _ := feature["crs"].(map[string]any)
		trs, _ := feature["trs"].(map[string]any)
		crsCandidates = append(crsCandidates, crs)
		trsCandidates = append(trsCandidates, trs)
		features = append(features, feature)
	}

	h.respondJSON(w, req, http.StatusOK, map[string]any{
		"type":           "FeatureCollection",
		"features":       features,
		"crs":            promoteCRS(crsCandidates),
		"trs":            promoteTRS(trsCandidates),
		"links":          pagingLinks(req, fmt.Sprintf("%s/collections/%s/items", h.baseURL(), cid), offset, limit, len(features)),
		"timeStamp":      envelopeTimestamp(),
		"numberMatched":  result.NumberMatched,
		"numberReturned": len(features),
	})
}

// PostFeatures ingests one feature or a whole FeatureCollection.
//
//	@Summary	Insert moving features
//	@Tags		items
//	@Accept		json
//	@Param		collectionId	path	string	true	"collection id"
//	@Success	201
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Failure	501	{object}	exception
//	@Router		/collections/{collectionId}/items [post]
func (h *Handler) PostFeatures(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")

	exists, err := h.collectionExists(r.Context(), cid)
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Collection not found")
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
	if !mfjson.CheckFeature(doc) {
		h.respondError(w, req, http.StatusNotImplemented, CodeMissingParameterValue, missingFeatureTagMsg)
		return
	}

	docs := []map[string]any{doc}
	if t, _ := doc["type"].(string); t == "FeatureCollection" {
		raw, _ := doc["features"].([]any)
		docs = docs[:0]
		for _, f := range raw {
			if fd, ok := f.(map[string]any); ok {
				docs = append(docs, fd)
			}
		}
	}

	var lastID string
	for _, fd := range docs {
		insert, err := featureInsertFromDoc(fd)
		if err != nil {
			h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
			return
		}
		id, err := h.store.PostMovingFeature(r.Context(), cid, insert)
		if err != nil {
			h.respondStoreError(w, req, err, "Collection not found")
			return
		}
		lastID = id
	}

	w.Header().Set("Location", fmt.Sprintf("%s/collections/%s/items/%s", h.baseURL(), cid, lastID))
	respondEmpty(w, http.StatusCreated)
}

// featureInsertFromDoc decomposes a wire feature document into its
// stored parts: static geometry, lifespan, residual properties, nested
// temporal geometries and temporal properties.
func featureInsertFromDoc(doc map[string]any) (*database.MovingFeatureInsert, error) {
	insert := &database.MovingFeatureInsert{}

	if g, ok := doc["geometry"].(map[string]any); ok {
		data, err := json.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("failed to encode geometry: %w", err)
		}
		insert.Geometry = data
	}

	if rawTime, ok := doc["time"].([]any); ok && len(rawTime) == 2 {
		startStr, _ := rawTime[0].(string)
		endStr, _ := rawTime[1].(string)
		start, err := mfjson.ParseInstant(startStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lifespan: %w", err)
		}
		end, err := mfjson.ParseInstant(endStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lifespan: %w", err)
		}
		insert.Lifespan = &params.Datetime{Start: start, End: end}
	}

	// Residual properties keep top-level crs/trs so reads can restore
	// them.
	properties, _ := doc["properties"].(map[string]any)
	if crs, ok := doc["crs"].(map[string]any); ok {
		if properties == nil {
			properties = map[string]any{}
		}
		properties["crs"] = crs
	}
	if trs, ok := doc["trs"].(map[string]any); ok {
		if properties == nil {
			properties = map[string]any{}
		}
		properties["trs"] = trs
	}
	if properties != nil {
		data, err := json.Marshal(properties)
		if err != nil {
			return nil, fmt.Errorf("failed to encode properties: %w", err)
		}
		insert.Property = data
	}

	if tgDoc, ok := doc["temporalGeometry"].(map[string]any); ok {
		tgs, err := temporalGeometriesFromDoc(tgDoc)
		if err != nil {
			return nil, err
		}
		insert.TGeometries = tgs
	}

	if tpRaw, ok := doc["temporalProperties"]; ok {
		groups, err := temporalPropertyGroupsFromDoc(tpRaw)
		if err != nil {
			return nil, err
		}
		insert.TProperties = groups
	}
	return insert, nil
}

// temporalGeometriesFromDoc parses a wire temporal geometry — single
// prism or MovingGeometryCollection — into typed sequences.
func temporalGeometriesFromDoc(doc map[string]any) ([]*mfjson.TemporalGeometry, error) {
	var prisms []map[string]any
	if t, _ := doc["type"].(string); t == "MovingGeometryCollection" {
		raw, _ := doc["prisms"].([]any)
		for _, p := range raw {
			if pd, ok := p.(map[string]any); ok {
				prisms = append(prisms, pd)
			}
		}
	} else {
		prisms = append(prisms, doc)
	}

	tgs := make([]*mfjson.TemporalGeometry, 0, len(prisms))
	for _, p := range prisms {
		tg, err := mfjson.ParseTemporalGeometry(mfjson.ToStorage(p))
		if err != nil {
			return nil, fmt.Errorf("failed to parse temporal geometry: %w", err)
		}
		tgs = append(tgs, tg)
	}
	return tgs, nil
}

// Feature returns one moving feature.
//
//	@Summary	Get a moving feature
//	@Tags		items
//	@Produce	json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Success	200
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId} [get]
func (h *Handler) Feature(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")

	row, err := h.store.GetFeature(r.Context(), cid, fid)
	if err != nil {
		h.respondStoreError(w, req, err, "Feature not found")
		return
	}

	feature := featureToWire(row, nil)
	feature["links"] = []models.Link{{
		Href: fmt.Sprintf("%s/collections/%s/items/%s", h.baseURL(), cid, fid),
		Rel:  "self",
	}}
	h.respondJSON(w, req, http.StatusOK, feature)
}

// DeleteFeature removes a moving feature and its temporal children.
//
//	@Summary	Delete a moving feature
//	@Tags		items
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Success	204
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId} [delete]
func (h *Handler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")

	exists, err := h.collectionExists(r.Context(), cid)
	if err != nil {
		h.respondStoreError(w, req, err, "Collection not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Collection not found")
		return
	}

	if err := h.store.DeleteMovingFeature(r.Context(), cid, chi.URLParam(r, "mFeatureId")); err != nil {
		h.respondStoreError(w, req, err, "Feature not found")
		return
	}
	respondEmpty(w, http.StatusNoContent)
}
