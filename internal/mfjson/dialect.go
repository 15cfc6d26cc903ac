// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package mfjson implements the MF-JSON handling shared by all moving
// feature endpoints: the structural schema guard for incoming documents,
// the bidirectional mapping between the wire dialect and the MobilityDB
// storage dialect, and typed parsing of temporal sequences.
//
// The wire dialect is what clients send and receive ("MovingPoint",
// singular "interpolation", Z-suffixed datetimes). The storage dialect is
// what MobilityDB's MF-JSON functions produce and consume
// ("MovingGeomPoint", "interpolations" array, naive datetimes,
// lower_inc/upper_inc flags). This file is the only place the two
// dialects meet.
package mfjson

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Type names on each side of the dialect boundary.
const (
	WireMovingPoint    = "MovingPoint"
	StorageMovingPoint = "MovingGeomPoint"

	WireStepInterpolation    = "Step"
	StorageStepInterpolation = "Stepwise"
)

// storageTimeLayouts lists the instant spellings accepted when parsing a
// temporal sequence, wire or storage side.
var storageTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ToStorage converts a wire-dialect temporal geometry into the storage
// dialect. The input map is not modified.
func ToStorage(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}

	if t, _ := out["type"].(string); t == WireMovingPoint {
		out["type"] = StorageMovingPoint
	}

	if interp, ok := out["interpolation"]; ok {
		delete(out, "interpolation")
		s, _ := interp.(string)
		if s == WireStepInterpolation {
			s = StorageStepInterpolation
		}
		out["interpolations"] = []any{s}
	}

	if raw, ok := out["datetimes"].([]any); ok {
		dts := make([]any, len(raw))
		for i, d := range raw {
			s, _ := d.(string)
			dts[i] = strings.TrimSuffix(s, "Z")
		}
		out["datetimes"] = dts
	}

	if _, ok := out["lower_inc"]; !ok {
		out["lower_inc"] = true
	}
	if _, ok := out["upper_inc"]; !ok {
		out["upper_inc"] = true
	}
	return out
}

// ToWire converts a storage-dialect temporal geometry into the wire
// dialect. The input map is not modified.
func ToWire(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	if t, _ := out["type"].(string); t == StorageMovingPoint {
		out["type"] = WireMovingPoint
	}

	if raw, ok := out["interpolations"]; ok {
		delete(out, "interpolations")
		out["interpolation"] = firstInterpolation(raw)
	}

	if raw, ok := out["datetimes"].([]any); ok {
		dts := make([]any, len(raw))
		for i, d := range raw {
			s, _ := d.(string)
			dts[i] = WireDatetime(s)
		}
		out["datetimes"] = dts
	}

	delete(out, "lower_inc")
	delete(out, "upper_inc")
	return out
}

// firstInterpolation extracts the wire interpolation name from a storage
// "interpolations" value.
func firstInterpolation(raw any) string {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return ""
	}
	s, _ := arr[0].(string)
	if s == StorageStepInterpolation {
		return WireStepInterpolation
	}
	return s
}

// WireDatetime renders a storage-side instant string in the wire form:
// RFC 3339 with a Z suffix. Unparsable input is passed through with a Z
// appended so malformed stored data stays visible rather than vanishing.
func WireDatetime(s string) string {
	t, err := ParseInstant(s)
	if err != nil {
		if strings.HasSuffix(s, "Z") {
			return s
		}
		return s + "Z"
	}
	if t.Nanosecond() != 0 {
		return t.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseInstant parses one instant from either dialect; naive instants are
// stamped as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range storageTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable instant %q", s)
}

// TemporalGeometry is the typed form of one temporal geometry prism,
// parsed from either dialect. The data access layer uses it to build
// tgeompoint sequence literals.
type TemporalGeometry struct {
	Type           string
	Datetimes      []time.Time
	Coordinates    [][]float64
	Interpolations []string
	LowerInc       bool
	UpperInc       bool
	CRS            map[string]any
	TRS            map[string]any
}

// Is3D reports whether every coordinate carries a third component.
func (tg *TemporalGeometry) Is3D() bool {
	if len(tg.Coordinates) == 0 {
		return false
	}
	for _, c := range tg.Coordinates {
		if len(c) < 3 {
			return false
		}
	}
	return true
}

// ParseTemporalGeometry parses a storage-dialect temporal geometry map
// into its typed form, enforcing the sequence invariants: equal datetime
// and coordinate counts, at least one sample, strictly ascending
// datetimes, and a known interpolation.
func ParseTemporalGeometry(doc map[string]any) (*TemporalGeometry, error) {
	tg := &TemporalGeometry{LowerInc: true, UpperInc: true}
	tg.Type, _ = doc["type"].(string)

	rawDts, ok := doc["datetimes"].([]any)
	if !ok || len(rawDts) == 0 {
		return nil, fmt.Errorf("temporal geometry needs at least one datetime")
	}
	tg.Datetimes = make([]time.Time, len(rawDts))
	for i, d := range rawDts {
		s, _ := d.(string)
		t, err := ParseInstant(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse datetime: %w", err)
		}
		if i > 0 && !tg.Datetimes[i-1].Before(t) {
			return nil, fmt.Errorf("datetimes must be strictly ascending")
		}
		tg.Datetimes[i] = t
	}

	rawCoords, ok := doc["coordinates"].([]any)
	if !ok {
		return nil, fmt.Errorf("temporal geometry needs coordinates")
	}
	if len(rawCoords) != len(rawDts) {
		return nil, fmt.Errorf("datetimes and coordinates must have the same length")
	}
	tg.Coordinates = make([][]float64, len(rawCoords))
	for i, rc := range rawCoords {
		pos, ok := rc.([]any)
		if !ok || len(pos) < 2 || len(pos) > 3 {
			return nil, fmt.Errorf("coordinate %d must have 2 or 3 components", i)
		}
		coord := make([]float64, len(pos))
		for j, p := range pos {
			f, ok := toFloat(p)
			if !ok {
				return nil, fmt.Errorf("coordinate %d component %d is not a number", i, j)
			}
			coord[j] = f
		}
		tg.Coordinates[i] = coord
	}

	if raw, ok := doc["interpolations"].([]any); ok {
		for _, r := range raw {
			s, _ := r.(string)
			tg.Interpolations = append(tg.Interpolations, s)
		}
	}
	for _, interp := range tg.Interpolations {
		switch interp {
		case "Discrete", "Linear", StorageStepInterpolation:
		default:
			return nil, fmt.Errorf("unknown interpolation %q", interp)
		}
	}

	if v, ok := doc["lower_inc"].(bool); ok {
		tg.LowerInc = v
	}
	if v, ok := doc["upper_inc"].(bool); ok {
		tg.UpperInc = v
	}
	tg.CRS, _ = doc["crs"].(map[string]any)
	tg.TRS, _ = doc["trs"].(map[string]any)
	return tg, nil
}

// TemporalValueSequence is the typed form of one tProperty value
// sequence. Float reports whether all values are numeric; otherwise the
// sequence is a text stream.
type TemporalValueSequence struct {
	Datetimes     []time.Time
	Values        []any
	Interpolation string
	Float         bool
}

// ParseTemporalValueSequence parses a {datetimes, values, interpolation}
// document into its typed form, enforcing length equality, strictly
// ascending datetimes and homogeneous value types.
func ParseTemporalValueSequence(doc map[string]any) (*TemporalValueSequence, error) {
	seq := &TemporalValueSequence{}
	seq.Interpolation, _ = doc["interpolation"].(string)
	if seq.Interpolation == WireStepInterpolation {
		seq.Interpolation = StorageStepInterpolation
	}

	rawDts, ok := doc["datetimes"].([]any)
	if !ok || len(rawDts) == 0 {
		return nil, fmt.Errorf("temporal value needs at least one datetime")
	}
	seq.Datetimes = make([]time.Time, len(rawDts))
	for i, d := range rawDts {
		s, _ := d.(string)
		t, err := ParseInstant(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse datetime: %w", err)
		}
		if i > 0 && !seq.Datetimes[i-1].Before(t) {
			return nil, fmt.Errorf("datetimes must be strictly ascending")
		}
		seq.Datetimes[i] = t
	}

	rawValues, ok := doc["values"].([]any)
	if !ok {
		return nil, fmt.Errorf("temporal value needs values")
	}
	if len(rawValues) != len(rawDts) {
		return nil, fmt.Errorf("datetimes and values must have the same length")
	}
	seq.Values = rawValues

	// A sequence is a float stream only when every value is numeric.
	seq.Float = true
	for _, v := range rawValues {
		if _, ok := toFloat(v); !ok {
			seq.Float = false
			break
		}
	}
	return seq, nil
}

// MinMax returns the datetime extent of the sequence.
func (s *TemporalValueSequence) MinMax() (time.Time, time.Time) {
	return s.Datetimes[0], s.Datetimes[len(s.Datetimes)-1]
}

// FloatValue returns the numeric value at index i. Only meaningful on
// Float sequences.
func (s *TemporalValueSequence) FloatValue(i int) float64 {
	f, _ := toFloat(s.Values[i])
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
