// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestLinkOmitsEmptyMembers(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Link{Href: "http://example/collections", Rel: "self"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	if got != `{"href":"http://example/collections","rel":"self"}` {
		t.Errorf("link = %s", got)
	}
}

func TestExtentShape(t *testing.T) {
	t.Parallel()

	start := "2011-07-14T22:01:01Z"
	ext := Extent{
		Spatial: &SpatialExtent{
			Bbox: [][]float64{{139.75, 35.62, 139.76, 35.63}},
			CRS:  SpatialExtentCRS,
		},
		Temporal: &TemporalExtent{
			Interval: [][]*string{{&start, nil}},
			TRS:      TemporalExtentTRS,
		},
	}

	data, err := json.Marshal(ext)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"bbox":[[139.75,35.62,139.76,35.63]]`) {
		t.Errorf("bbox missing: %s", got)
	}
	// Open interval ends serialize as null, not as empty strings.
	if !strings.Contains(got, `"interval":[["2011-07-14T22:01:01Z",null]]`) {
		t.Errorf("interval shape wrong: %s", got)
	}
}

func TestDefaultReferenceSystems(t *testing.T) {
	t.Parallel()

	crs := DefaultCRS()
	if crs["type"] != "Name" || crs["properties"] != DefaultCRSURI {
		t.Errorf("DefaultCRS() = %v", crs)
	}
	trs := DefaultTRS()
	if trs["properties"] != DefaultTRSURI {
		t.Errorf("DefaultTRS() = %v", trs)
	}
}
