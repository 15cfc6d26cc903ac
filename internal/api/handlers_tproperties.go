// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/mfjson"
	"github.com/aistairc/mf-api/internal/params"
)

const missingDatetimesTagMsg = "The required tag (e.g., datetimes,interpolation) is missing from the request data."

// propertyExists consults the cached name list.
func (h *Handler) propertyExists(r *http.Request, cid, fid, name string) (bool, error) {
	names, err := h.store.GetTemporalPropertiesNameList(r.Context(), cid, fid)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// descriptorMeta strips the sequence members from a stored descriptor,
// leaving the static metadata (type, form, ...).
func descriptorMeta(descriptor []byte) map[string]any {
	doc, err := parseJSONObject(descriptor)
	if err != nil || doc == nil {
		return map[string]any{}
	}
	delete(doc, "datetimes")
	delete(doc, "values")
	delete(doc, "interpolation")
	return doc
}

// valueSequenceToWire converts one asMFJSON value sequence into the
// wire {datetimes, values, interpolation} shape.
func valueSequenceToWire(text string) (map[string]any, bool) {
	doc, err := parseJSONObject([]byte(text))
	if err != nil {
		return nil, false
	}
	wire := mfjson.ToWire(doc)
	out := map[string]any{}
	for _, key := range []string{"datetimes", "values", "interpolation"} {
		if v, ok := wire[key]; ok {
			out[key] = v
		}
	}
	return out, true
}

// rowSequence picks whichever typed channel the row carries.
func rowSequence(row *database.TPropertyRow) (map[string]any, bool) {
	if row.FloatSeq.Valid {
		return valueSequenceToWire(row.FloatSeq.String)
	}
	if row.TextSeq.Valid {
		return valueSequenceToWire(row.TextSeq.String)
	}
	return nil, false
}

// TemporalProperties lists the temporal properties of a feature.
//
//	@Summary	List temporal properties
//	@Tags		tproperties
//	@Produce	json
//	@Param		collectionId		path	string	true	"collection id"
//	@Param		mFeatureId			path	string	true	"feature id"
//	@Param		datetime			query	string	false	"temporal filter"
//	@Param		limit				query	int		false	"page size"
//	@Param		offset				query	int		false	"page start"
//	@Param		subTemporalValue	query	bool	false	"include clipped value sequences"
//	@Success	200
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tProperties [get]
func (h *Handler) TemporalProperties(w http.ResponseWriter, r *http.Request) {
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

	dt, err := params.ParseDatetime(req.Params().Get("datetime"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
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
	subTemporalValue := params.ParseSubFlag(req.Params().Get("subTemporalValue"))

	result, err := h.store.GetTemporalProperties(r.Context(), database.TPropertiesQuery{
		CollectionID:     cid,
		MFeatureID:       fid,
		Datetime:         dt,
		Limit:            limit,
		Offset:           offset,
		SubTemporalValue: subTemporalValue,
	})
	if err != nil {
		h.respondStoreError(w, req, err, "Feature not found")
		return
	}

	var entries []map[string]any
	if subTemporalValue {
		entries = groupedPropertyEntries(result.Rows)
	} else {
		entries = make([]map[string]any, 0, len(result.Rows))
		for i := range result.Rows {
			entry := descriptorMeta(result.Rows[i].Descriptor)
			entry["name"] = result.Rows[i].Name
			entries = append(entries, entry)
		}
	}

	base := fmt.Sprintf("%s/collections/%s/items/%s/tProperties", h.baseURL(), cid, fid)
	h.respondJSON(w, req, http.StatusOK, map[string]any{
		"temporalProperties": entries,
		"links":              pagingLinks(req, base, offset, limit, len(entries)),
		"timeStamp":          envelopeTimestamp(),
		"numberMatched":      result.NumberMatched,
		"numberReturned":     len(entries),
	})
}

// groupedPropertyEntries merges value-mode rows into one entry per
// datetime group: the group's datetimes pulled up once, each property's
// values and interpolation under its name.
func groupedPropertyEntries(rows []database.TPropertyRow) []map[string]any {
	byGroup := make(map[int]map[string]any)
	var order []int
	for i := range rows {
		row := &rows[i]
		seq, ok := rowSequence(row)
		if !ok {
			continue
		}

		entry, exists := byGroup[row.Group]
		if !exists {
			entry = map[string]any{"datetimes": seq["datetimes"]}
			byGroup[row.Group] = entry
			order = append(order, row.Group)
		}

		member := descriptorMeta(row.Descriptor)
		member["values"] = seq["values"]
		member["interpolation"] = seq["interpolation"]
		entry[row.Name] = member
	}

	sort.Ints(order)
	entries := make([]map[string]any, 0, len(order))
	for _, g := range order {
		entries = append(entries, byGroup[g])
	}
	return entries
}

// temporalPropertyGroupsFromDoc parses a temporalProperties document —
// envelope, bare array, or single entry — into insertion groups, one
// group per entry.
func temporalPropertyGroupsFromDoc(raw any) ([][]database.TPropertyEntry, error) {
	if doc, ok := raw.(map[string]any); ok {
		if inner, ok := doc["temporalProperties"]; ok {
			raw = inner
		}
	}

	var entryDocs []map[string]any
	switch v := raw.(type) {
	case []any:
		for _, e := range v {
			if ed, ok := e.(map[string]any); ok {
				entryDocs = append(entryDocs, ed)
			}
		}
	case map[string]any:
		entryDocs = append(entryDocs, v)
	default:
		return nil, fmt.Errorf("temporal properties must be an object or array")
	}

	groups := make([][]database.TPropertyEntry, 0, len(entryDocs))
	for _, ed := range entryDocs {
		entries, err := tPropertyEntriesFromDoc(ed)
		if err != nil {
			return nil, err
		}
		groups = append(groups, entries)
	}
	return groups, nil
}

// tPropertyEntriesFromDoc splits one temporalProperties entry into its
// named value sequences, all sharing the entry's datetimes.
func tPropertyEntriesFromDoc(doc map[string]any) ([]database.TPropertyEntry, error) {
	rawDatetimes, ok := doc["datetimes"].([]any)
	if !ok || len(rawDatetimes) == 0 {
		return nil, fmt.Errorf("temporal property entry needs datetimes")
	}
	datetimesJSON, err := json.Marshal(rawDatetimes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode datetimes: %w", err)
	}

	var names []string
	for name, member := range doc {
		if name == "datetimes" {
			continue
		}
		if _, ok := member.(map[string]any); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []database.TPropertyEntry
	for _, name := range names {
		member := doc[name].(map[string]any)

		descriptor := make(map[string]any, len(member)+1)
		for k, v := range member {
			descriptor[k] = v
		}
		descriptor["datetimes"] = rawDatetimes

		seq, err := mfjson.ParseTemporalValueSequence(descriptor)
		if err != nil {
			return nil, fmt.Errorf("failed to parse value sequence %q: %w", name, err)
		}
		descriptorJSON, err := json.Marshal(descriptor)
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}

		entries = append(entries, database.TPropertyEntry{
			Name:          name,
			Descriptor:    descriptorJSON,
			DatetimesJSON: datetimesJSON,
			Sequence:      seq,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("temporal property entry needs at least one named sequence")
	}
	return entries, nil
}

// PostTemporalProperties stores the submitted temporal properties under
// a feature.
//
//	@Summary	Insert temporal properties
//	@Tags		tproperties
//	@Accept		json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Success	201
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Failure	501	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tProperties [post]
func (h *Handler) PostTemporalProperties(w http.ResponseWriter, r *http.Request) {
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
	var raw any
	if err := json.Unmarshal(req.Data(), &raw); err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}
	if !mfjson.CheckTemporalProperties(raw) {
		h.respondError(w, req, http.StatusNotImplemented, CodeMissingParameterValue, missingDatetimesTagMsg)
		return
	}

	groups, err := temporalPropertyGroupsFromDoc(raw)
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}

	names, err := h.store.PostTemporalProperties(r.Context(), cid, fid, groups)
	if err != nil {
		if errors.Is(err, database.ErrOverlappingSequence) {
			respondEmpty(w, http.StatusBadRequest)
			return
		}
		h.respondStoreError(w, req, err, "Feature not found")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/collections/%s/items/%s/tProperties/%s",
		h.baseURL(), cid, fid, names[len(names)-1]))
	respondEmpty(w, http.StatusCreated)
}

// TemporalPropertyValue returns one named property with its value
// sequences.
//
//	@Summary	Get a temporal property
//	@Tags		tproperties
//	@Produce	json
//	@Param		collectionId		path	string	true	"collection id"
//	@Param		mFeatureId			path	string	true	"feature id"
//	@Param		tPropertyName		path	string	true	"property name"
//	@Param		datetime			query	string	false	"temporal filter"
//	@Param		leaf				query	string	false	"instant list restriction"
//	@Param		subTemporalValue	query	bool	false	"clip sequences to datetime"
//	@Success	200
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tProperties/{tPropertyName} [get]
func (h *Handler) TemporalPropertyValue(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	if !req.IsValid() {
		h.respondFormatException(w, req)
		return
	}
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	name := chi.URLParam(r, "tPropertyName")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}
	exists, err := h.propertyExists(r, cid, fid, name)
	if err != nil {
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Temporal Property not found")
		return
	}

	dt, err := params.ParseDatetime(req.Params().Get("datetime"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return
	}
	leaf, err := params.ParseLeaf(req.Params().Get("leaf"))
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, err.Error())
		return
	}
	subTemporalValue := params.ParseSubFlag(req.Params().Get("subTemporalValue"))
	if len(leaf) > 0 && subTemporalValue {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, leafSubTemporalValMsg)
		return
	}

	rows, err := h.store.GetTemporalPropertiesValue(r.Context(), database.TPropertyValueQuery{
		CollectionID:     cid,
		MFeatureID:       fid,
		Name:             name,
		Datetime:         dt,
		Leaf:             leaf,
		SubTemporalValue: subTemporalValue,
	})
	if err != nil {
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}

	var response map[string]any
	sequences := make([]map[string]any, 0, len(rows))
	for i := range rows {
		if response == nil {
			response = descriptorMeta(rows[i].Descriptor)
			response["name"] = rows[i].Name
		}
		if seq, ok := rowSequence(&rows[i]); ok {
			sequences = append(sequences, seq)
		}
	}
	if response == nil {
		response = map[string]any{"name": name}
	}
	response["valueSequence"] = sequences

	h.respondJSON(w, req, http.StatusOK, response)
}

// PostTemporalValue appends one value sequence to an existing property.
//
//	@Summary	Append a value sequence
//	@Tags		tproperties
//	@Accept		json
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Param		tPropertyName	path	string	true	"property name"
//	@Success	201
//	@Failure	400	{object}	exception
//	@Failure	404	{object}	exception
//	@Failure	501	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tProperties/{tPropertyName} [post]
func (h *Handler) PostTemporalValue(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	name := chi.URLParam(r, "tPropertyName")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}
	exists, err := h.propertyExists(r, cid, fid, name)
	if err != nil {
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Temporal Property not found")
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
	if !mfjson.CheckTemporalValue(doc) {
		h.respondError(w, req, http.StatusNotImplemented, CodeMissingParameterValue, missingDatetimesTagMsg)
		return
	}

	seq, err := mfjson.ParseTemporalValueSequence(doc)
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}
	rawDatetimes, _ := doc["datetimes"].([]any)
	datetimesJSON, err := json.Marshal(rawDatetimes)
	if err != nil {
		h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue, "invalid request data")
		return
	}

	entry := database.TPropertyEntry{
		Name:          name,
		Descriptor:    req.Data(),
		DatetimesJSON: datetimesJSON,
		Sequence:      seq,
	}
	pvalueID, err := h.store.PostTemporalValue(r.Context(), cid, fid, name, entry)
	if err != nil {
		if errors.Is(err, database.ErrOverlappingSequence) {
			respondEmpty(w, http.StatusBadRequest)
			return
		}
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/collections/%s/items/%s/tProperties/%s/pvalue/%s",
		h.baseURL(), cid, fid, name, pvalueID))
	respondEmpty(w, http.StatusCreated)
}

// DeleteTemporalProperty removes one named property and all its value
// sequences.
//
//	@Summary	Delete a temporal property
//	@Tags		tproperties
//	@Param		collectionId	path	string	true	"collection id"
//	@Param		mFeatureId		path	string	true	"feature id"
//	@Param		tPropertyName	path	string	true	"property name"
//	@Success	204
//	@Failure	404	{object}	exception
//	@Router		/collections/{collectionId}/items/{mFeatureId}/tProperties/{tPropertyName} [delete]
func (h *Handler) DeleteTemporalProperty(w http.ResponseWriter, r *http.Request) {
	req := h.newRequest(r)
	cid := chi.URLParam(r, "collectionId")
	fid := chi.URLParam(r, "mFeatureId")
	name := chi.URLParam(r, "tPropertyName")
	if !h.requireFeature(w, req, r, cid, fid) {
		return
	}
	exists, err := h.propertyExists(r, cid, fid, name)
	if err != nil {
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}
	if !exists {
		h.respondError(w, req, http.StatusNotFound, CodeNotFound, "Temporal Property not found")
		return
	}

	if err := h.store.DeleteTemporalProperty(r.Context(), cid, fid, name); err != nil {
		h.respondStoreError(w, req, err, "Temporal Property not found")
		return
	}
	respondEmpty(w, http.StatusNoContent)
}
