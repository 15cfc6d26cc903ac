// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aistairc/mf-api/internal/mfjson"
)

// Parsers for the textual extents MobilityDB returns: stbox aggregates
// over temporal geometries and period aggregates over lifespans. The
// controllers turn them into the bbox / time members of responses.

// Stbox is a parsed spatiotemporal bounding box.
type Stbox struct {
	Bbox []float64 // 4 or 6 components, minima first
	Tmin *time.Time
	Tmax *time.Time
}

// Is3D reports whether the box carries z bounds.
func (s *Stbox) Is3D() bool { return len(s.Bbox) == 6 }

// ParseStbox parses a MobilityDB stbox text form, e.g.
//
//	STBOX ((1,2),(3,4))
//	STBOX Z((1,2,0),(3,4,10))
//	STBOX XT(((1,2),(3,4)),[2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00])
//	STBOX T([2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00])
func ParseStbox(text string) (*Stbox, error) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "STBOX"); i >= 0 {
		s = s[i+len("STBOX"):]
	} else {
		return nil, fmt.Errorf("not an stbox: %q", text)
	}

	box := &Stbox{}

	// Spatial part: the innermost double-parenthesized coordinate pair.
	if i := strings.Index(s, "(("); i >= 0 {
		j := strings.Index(s[i:], "))")
		if j < 0 {
			return nil, fmt.Errorf("unterminated stbox coordinates: %q", text)
		}
		inner := s[i+2 : i+j]
		tuples := strings.Split(inner, "),(")
		if len(tuples) != 2 {
			return nil, fmt.Errorf("stbox needs two coordinate tuples: %q", text)
		}
		min, err := parseCoordTuple(tuples[0])
		if err != nil {
			return nil, err
		}
		max, err := parseCoordTuple(tuples[1])
		if err != nil {
			return nil, err
		}
		if len(min) != len(max) || (len(min) != 2 && len(min) != 3) {
			return nil, fmt.Errorf("stbox tuples must both be 2D or 3D: %q", text)
		}
		box.Bbox = append(min, max...)
		s = s[i+j+2:]
	}

	// Temporal part: [tmin, tmax] or (tmin, tmax).
	if i := strings.IndexAny(s, "[("); i >= 0 {
		j := strings.IndexAny(s[i+1:], "])")
		if j < 0 {
			return nil, fmt.Errorf("unterminated stbox period: %q", text)
		}
		tmin, tmax, err := parsePeriodBody(s[i+1 : i+1+j])
		if err != nil {
			return nil, err
		}
		box.Tmin, box.Tmax = &tmin, &tmax
	}

	if box.Bbox == nil && box.Tmin == nil {
		return nil, fmt.Errorf("empty stbox: %q", text)
	}
	return box, nil
}

func parseCoordTuple(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	coords := make([]float64, 0, len(parts))
	for _, p := range parts {
		// The XT form nests the tuples one level deeper, leaving a
		// stray paren on the first component.
		v, err := strconv.ParseFloat(strings.Trim(p, " ()"), 64)
		if err != nil {
			return nil, fmt.Errorf("bad stbox coordinate %q: %w", p, err)
		}
		coords = append(coords, v)
	}
	return coords, nil
}

// ParsePeriod parses a MobilityDB period text form, e.g.
//
//	[2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00]
func ParsePeriod(text string) (time.Time, time.Time, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("not a period: %q", text)
	}
	return parsePeriodBody(s[1 : len(s)-1])
}

func parsePeriodBody(body string) (time.Time, time.Time, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("period needs two bounds: %q", body)
	}
	lower, err := mfjson.ParseInstant(strings.Trim(parts[0], " []()"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad period lower bound: %w", err)
	}
	upper, err := mfjson.ParseInstant(strings.Trim(parts[1], " []()"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad period upper bound: %w", err)
	}
	return lower, upper, nil
}
