// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package params parses and validates the spatiotemporal query parameters
// of the OGC API Moving Features endpoints: bbox, datetime, leaf, limit,
// offset, subTrajectory and subTemporalValue.
//
// Every parser returns the exact error message mandated by the API's
// InvalidParameterValue contract; handlers forward the message verbatim.
package params

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxLimit is the hard upper bound for the limit parameter.
const MaxLimit = 10000

// internalTimeFormat renders instants in the canonical internal form used
// when composing MobilityDB literals.
const internalTimeFormat = "2006-01-02 15:04:05.000000"

// MinInstant and MaxInstant bound open-ended datetime intervals ("..").
var (
	MinInstant = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxInstant = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// instantLayouts lists the accepted instant spellings, most specific first.
// Naive instants (no offset) are stamped as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseBbox validates a comma-separated bbox of 4 (2D) or 6 (3D) numbers.
// An absent value yields no restriction. Antimeridian-wrapping boxes
// (minx > maxx) are rejected as ambiguous.
func ParseBbox(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 && len(parts) != 6 {
		return nil, fmt.Errorf("bbox values should be list of minx,miny(,minz),maxx,maxy(,maxz)")
	}

	bbox := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox values must be numbers")
		}
		bbox[i] = v
	}

	dim := len(bbox) / 2
	if bbox[0] > bbox[dim] {
		return nil, fmt.Errorf("minx is greater than maxx (possibly antimeridian bbox)")
	}
	if bbox[1] > bbox[dim+1] {
		return nil, fmt.Errorf("miny should be less than maxy")
	}
	if dim == 3 && bbox[2] > bbox[5] {
		return nil, fmt.Errorf("minz should be less than maxz")
	}
	return bbox, nil
}

// Datetime is a validated closed time interval. An instant parameter
// yields Start == End.
type Datetime struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no datetime parameter was supplied.
func (d Datetime) IsZero() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// String renders the interval in the canonical internal form
// "YYYY-MM-DD HH:MM:SS.ffffff,YYYY-MM-DD HH:MM:SS.ffffff".
func (d Datetime) String() string {
	return d.Start.Format(internalTimeFormat) + "," + d.End.Format(internalTimeFormat)
}

// ParseDatetime validates a datetime parameter: a single instant or an
// interval "start/end". An absent value yields the zero Datetime. A
// leading or trailing empty side is treated as open ("..") and maps to
// MinInstant / MaxInstant.
func ParseDatetime(raw string) (Datetime, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Datetime{}, nil
	}
	if strings.HasPrefix(value, "/") {
		value = ".." + value
	}
	if strings.HasSuffix(value, "/") {
		value += ".."
	}

	parts := strings.Split(value, "/")
	var begin, end time.Time
	var err error

	switch len(parts) {
	case 1:
		begin, err = parseInstant(parts[0], false)
		if err != nil {
			return Datetime{}, fmt.Errorf("datetime parameter out of range")
		}
		end = begin
	case 2:
		if parts[0] == ".." {
			begin = MinInstant
		} else if begin, err = parseInstant(parts[0], false); err != nil {
			return Datetime{}, fmt.Errorf("datetime parameter out of range")
		}
		if parts[1] == ".." {
			end = MaxInstant
		} else if end, err = parseInstant(parts[1], true); err != nil {
			return Datetime{}, fmt.Errorf("datetime parameter out of range")
		}
	default:
		return Datetime{}, fmt.Errorf("datetime parameter out of range")
	}

	if begin.After(end) {
		return Datetime{}, fmt.Errorf("datetime parameter out of range")
	}
	return Datetime{Start: begin, End: end}, nil
}

// parseInstant parses one instant, normalized to UTC. For the end side of
// an interval, a date-only value extends to the last representable moment
// of that day so the interval stays closed.
func parseInstant(s string, endSide bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty instant")
	}
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		if endSide && layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Microsecond)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable instant %q", s)
}

// ParseLeaf validates a comma-separated list of instants that must be
// strictly ascending. An absent value yields no restriction. The
// returned slice is in UTC.
func ParseLeaf(raw string) ([]time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	leaf := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		t, err := parseInstant(p, false)
		if err != nil {
			return nil, fmt.Errorf("invalid leaf")
		}
		if len(leaf) > 0 && !leaf[len(leaf)-1].Before(t) {
			return nil, fmt.Errorf("invalid leaf")
		}
		leaf = append(leaf, t)
	}
	return leaf, nil
}

// FormatLeaf renders a leaf list in the canonical internal form,
// comma-joined "YYYY-MM-DD HH:MM:SS.ffffff".
func FormatLeaf(leaf []time.Time) string {
	out := make([]string, len(leaf))
	for i, t := range leaf {
		out[i] = t.Format(internalTimeFormat)
	}
	return strings.Join(out, ",")
}

// ParseLimit validates the limit parameter. An absent value yields the
// server default.
func ParseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit value should be an integer")
	}
	if limit <= 0 {
		return 0, fmt.Errorf("limit value should be strictly positive")
	}
	if limit > MaxLimit {
		return 0, fmt.Errorf("limit value should be less than or equal to %d", MaxLimit)
	}
	return limit, nil
}

// ParseOffset validates the offset parameter. An absent value yields 0.
func ParseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("offset value should be an integer")
	}
	if offset < 0 {
		return 0, fmt.Errorf("offset value should be positive or zero")
	}
	return offset, nil
}

// ParseSubFlag reports whether a subTrajectory / subTemporalValue
// parameter is set. Both boolean true and the string "true" count,
// matching the tolerance of earlier server versions.
func ParseSubFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
