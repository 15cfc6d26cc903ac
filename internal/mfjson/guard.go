// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package mfjson

import (
	"bytes"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/aistairc/mf-api/internal/logging"
)

// Structural guard for incoming MF-JSON bodies. Each Check* function
// reports whether the document carries the fields the operation requires;
// a false return maps to a 501 MissingParameterValue response upstream.

// geometrySchema is the GeoJSON Geometry schema applied to static
// geometry objects in addition to the required-field recursion.
const geometrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "GeoJSON Geometry",
  "oneOf": [
    {
      "type": "object",
      "required": ["type", "coordinates"],
      "properties": {
        "type": {"enum": ["Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon"]},
        "coordinates": {"type": "array"}
      }
    },
    {
      "type": "object",
      "required": ["type", "geometries"],
      "properties": {
        "type": {"const": "GeometryCollection"},
        "geometries": {"type": "array"}
      }
    }
  ]
}`

var (
	geometrySchemaOnce     sync.Once
	compiledGeometrySchema *jsonschema.Schema
)

// compileGeometrySchema compiles the embedded schema once. A compile
// failure disables schema checking rather than taking the server down.
func compileGeometrySchema() *jsonschema.Schema {
	geometrySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(geometrySchema)))
		if err != nil {
			logging.Error().Err(err).Msg("failed to parse embedded geometry schema")
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("geometry.schema.json", doc); err != nil {
			logging.Error().Err(err).Msg("failed to register embedded geometry schema")
			return
		}
		schema, err := compiler.Compile("geometry.schema.json")
		if err != nil {
			logging.Error().Err(err).Msg("failed to compile embedded geometry schema")
			return
		}
		compiledGeometrySchema = schema
	})
	return compiledGeometrySchema
}

// CheckFeature validates the required fields of a moving feature
// document. A FeatureCollection is accepted when every member feature
// passes.
func CheckFeature(doc map[string]any) bool {
	if t, _ := doc["type"].(string); t == "FeatureCollection" {
		features, ok := doc["features"].([]any)
		if !ok || len(features) == 0 {
			return false
		}
		for _, f := range features {
			fm, ok := f.(map[string]any)
			if !ok || !CheckFeature(fm) {
				return false
			}
		}
		return true
	}

	if _, ok := doc["type"]; !ok {
		return false
	}
	tg, ok := doc["temporalGeometry"].(map[string]any)
	if !ok || !CheckTemporalGeometry(tg) {
		return false
	}
	if props, ok := doc["temporalProperties"]; ok {
		if !CheckTemporalProperties(props) {
			return false
		}
	}
	if g, ok := doc["geometry"]; ok {
		gm, ok := g.(map[string]any)
		if !ok || !CheckGeometry(gm) {
			return false
		}
	}
	if crs, ok := doc["crs"]; ok && !checkReferenceSystem(crs) {
		return false
	}
	if trs, ok := doc["trs"]; ok && !checkReferenceSystem(trs) {
		return false
	}
	return true
}

// CheckTemporalGeometry validates a single prism {type, datetimes,
// coordinates} or a MovingGeometryCollection whose every prism passes.
func CheckTemporalGeometry(doc map[string]any) bool {
	if t, _ := doc["type"].(string); t == "MovingGeometryCollection" {
		prisms, ok := doc["prisms"].([]any)
		if !ok || len(prisms) == 0 {
			return false
		}
		for _, p := range prisms {
			pm, ok := p.(map[string]any)
			if !ok || !CheckTemporalGeometry(pm) {
				return false
			}
		}
		return true
	}

	if _, ok := doc["type"]; !ok {
		return false
	}
	if _, ok := doc["datetimes"]; !ok {
		return false
	}
	if _, ok := doc["coordinates"]; !ok {
		return false
	}
	return true
}

// CheckGeometry validates a static GeoJSON geometry: the required-field
// recursion, the embedded JSON Schema, and a go-geom decode for
// non-collection geometries.
func CheckGeometry(doc map[string]any) bool {
	if t, _ := doc["type"].(string); t == "GeometryCollection" {
		geometries, ok := doc["geometries"].([]any)
		if !ok {
			return false
		}
		for _, g := range geometries {
			gm, ok := g.(map[string]any)
			if !ok || !CheckGeometry(gm) {
				return false
			}
		}
		return true
	}

	if _, ok := doc["type"]; !ok {
		return false
	}
	if _, ok := doc["coordinates"]; !ok {
		return false
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return false
	}
	if schema := compileGeometrySchema(); schema != nil {
		value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return false
		}
		if err := schema.Validate(value); err != nil {
			return false
		}
	}
	var g geom.T
	return geojson.Unmarshal(raw, &g) == nil
}

// CheckTemporalProperties validates the temporalProperties payload: an
// envelope {"temporalProperties": [...]}, or the bare array both POST
// variants tolerate. Each entry needs datetimes plus, for every named
// member, nested values and interpolation.
func CheckTemporalProperties(doc any) bool {
	switch v := doc.(type) {
	case map[string]any:
		if entries, ok := v["temporalProperties"].([]any); ok {
			return checkTemporalPropertyEntries(entries)
		}
		// A single entry posted without the envelope.
		return checkTemporalPropertyEntries([]any{v})
	case []any:
		return checkTemporalPropertyEntries(v)
	default:
		return false
	}
}

func checkTemporalPropertyEntries(entries []any) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := entry["datetimes"]; !ok {
			return false
		}
		for key, member := range entry {
			if key == "datetimes" {
				continue
			}
			seq, ok := member.(map[string]any)
			if !ok {
				return false
			}
			if _, ok := seq["values"]; !ok {
				return false
			}
			if _, ok := seq["interpolation"]; !ok {
				return false
			}
		}
	}
	return true
}

// CheckTemporalValue validates a value sequence payload appended to an
// existing temporal property.
func CheckTemporalValue(doc map[string]any) bool {
	if _, ok := doc["datetimes"]; !ok {
		return false
	}
	if _, ok := doc["values"]; !ok {
		return false
	}
	if _, ok := doc["interpolation"]; !ok {
		return false
	}
	return true
}

// checkReferenceSystem validates a crs/trs object: {type, properties}.
func checkReferenceSystem(doc any) bool {
	m, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m["type"]; !ok {
		return false
	}
	if _, ok := m["properties"]; !ok {
		return false
	}
	return true
}

// CheckCrs validates an optional crs member.
func CheckCrs(doc any) bool { return checkReferenceSystem(doc) }

// CheckTrs validates an optional trs member.
func CheckTrs(doc any) bool { return checkReferenceSystem(doc) }
