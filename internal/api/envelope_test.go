// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aistairc/mf-api/internal/models"
)

func TestCarriedParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "empty", target: "/items", want: ""},
		{name: "drops f and offset", target: "/items?f=json&offset=20&limit=5", want: "limit=5"},
		{name: "sorted and escaped", target: "/items?datetime=2011-07-14T22:01:01Z/..&bbox=1,2,3,4", want: "bbox=1%2C2%2C3%2C4&datetime=2011-07-14T22%3A01%3A01Z%2F.."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tt.target, nil)
			if got := carriedParams(r.URL.Query()); got != tt.want {
				t.Errorf("carriedParams = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPagingLinks(t *testing.T) {
	t.Parallel()

	req := NewRequest(httptest.NewRequest("GET", "/items?limit=2", nil), testMatcher())

	t.Run("full page gets next", func(t *testing.T) {
		t.Parallel()

		links := pagingLinks(req, "http://example/items", 4, 2, 2)
		if len(links) != 2 {
			t.Fatalf("links = %d, want 2", len(links))
		}
		if links[0].Rel != "self" || links[0].Href != "http://example/items?offset=4&limit=2" {
			t.Errorf("self link = %+v", links[0])
		}
		if links[1].Rel != "next" || links[1].Href != "http://example/items?offset=6&limit=2" {
			t.Errorf("next link = %+v", links[1])
		}
	})

	t.Run("short page has no next", func(t *testing.T) {
		t.Parallel()

		links := pagingLinks(req, "http://example/items", 4, 2, 1)
		if len(links) != 1 {
			t.Fatalf("links = %d, want 1", len(links))
		}
		if links[0].Rel != "self" {
			t.Errorf("rel = %q, want self", links[0].Rel)
		}
	})
}

func TestPromoteCRS(t *testing.T) {
	t.Parallel()

	custom := map[string]any{"type": "Name", "properties": map[string]any{"name": "urn:ogc:def:crs:EPSG::4326"}}

	if got := promoteCRS([]map[string]any{nil, custom, nil}); got["type"] != "Name" {
		t.Errorf("promoteCRS skipped the first non-nil candidate: %v", got)
	}
	if got := promoteCRS(nil); got == nil {
		t.Error("promoteCRS(nil) = nil, want default")
	}
	if got := promoteTRS([]map[string]any{nil}); got == nil {
		t.Error("promoteTRS all-nil = nil, want default")
	}
}

func TestWireInstant(t *testing.T) {
	t.Parallel()

	ts := time.Date(2011, 7, 14, 22, 1, 1, 0, time.FixedZone("JST", 9*3600))
	if got := wireInstant(ts); got != "2011-07-14T13:01:01Z" {
		t.Errorf("wireInstant = %q", got)
	}
}

func TestSelfLink(t *testing.T) {
	t.Parallel()

	links := selfLink("http://example/collections/c1")
	want := []models.Link{{Href: "http://example/collections/c1", Rel: "self"}}
	if len(links) != 1 || links[0] != want[0] {
		t.Errorf("selfLink = %+v, want %+v", links, want)
	}
}
