// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"reflect"
	"testing"
	"time"
)

func TestParseStbox(t *testing.T) {
	t.Parallel()

	tmin := time.Date(2011, 7, 14, 22, 1, 1, 0, time.UTC)
	tmax := time.Date(2011, 7, 15, 1, 1, 1, 0, time.UTC)

	tests := []struct {
		name     string
		text     string
		wantBbox []float64
		wantTmin *time.Time
		wantTmax *time.Time
		wantErr  bool
	}{
		{
			name:     "spatial only",
			text:     "STBOX ((1,2),(3,4))",
			wantBbox: []float64{1, 2, 3, 4},
		},
		{
			name:     "3d",
			text:     "STBOX Z((1,2,0),(3,4,10))",
			wantBbox: []float64{1, 2, 0, 3, 4, 10},
		},
		{
			name:     "spatiotemporal",
			text:     "STBOX XT(((1,2),(3,4)),[2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00])",
			wantBbox: []float64{1, 2, 3, 4},
			wantTmin: &tmin,
			wantTmax: &tmax,
		},
		{
			name:     "temporal only",
			text:     "STBOX T([2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00])",
			wantTmin: &tmin,
			wantTmax: &tmax,
		},
		{
			name:    "not an stbox",
			text:    "POINT(1 2)",
			wantErr: true,
		},
		{
			name:    "single tuple",
			text:    "STBOX ((1,2))",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStbox(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseStbox(%q) expected error, got %+v", tc.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStbox(%q): %v", tc.text, err)
			}
			if !reflect.DeepEqual(got.Bbox, tc.wantBbox) {
				t.Errorf("Bbox = %v, want %v", got.Bbox, tc.wantBbox)
			}
			assertTimePtr(t, "Tmin", got.Tmin, tc.wantTmin)
			assertTimePtr(t, "Tmax", got.Tmax, tc.wantTmax)
		})
	}
}

func assertTimePtr(t *testing.T, field string, got, want *time.Time) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case !got.Equal(*want):
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	lower, upper, err := ParsePeriod("[2011-07-14 22:01:01+00, 2011-07-15 01:01:01+00]")
	if err != nil {
		t.Fatalf("ParsePeriod: %v", err)
	}
	if want := time.Date(2011, 7, 14, 22, 1, 1, 0, time.UTC); !lower.Equal(want) {
		t.Errorf("lower = %v, want %v", lower, want)
	}
	if want := time.Date(2011, 7, 15, 1, 1, 1, 0, time.UTC); !upper.Equal(want) {
		t.Errorf("upper = %v, want %v", upper, want)
	}

	if _, _, err := ParsePeriod("[2011-07-14 22:01:01+00]"); err == nil {
		t.Error("ParsePeriod with one bound expected error")
	}
	if _, _, err := ParsePeriod(""); err == nil {
		t.Error("ParsePeriod of empty string expected error")
	}
}

func TestStboxIs3D(t *testing.T) {
	t.Parallel()

	if (&Stbox{Bbox: []float64{1, 2, 3, 4}}).Is3D() {
		t.Error("4-component box reported 3D")
	}
	if !(&Stbox{Bbox: []float64{1, 2, 0, 3, 4, 10}}).Is3D() {
		t.Error("6-component box not reported 3D")
	}
}
