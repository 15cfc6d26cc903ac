// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func testMatcher() language.Matcher {
	return language.NewMatcher([]language.Tag{language.AmericanEnglish, language.Japanese})
}

func TestRequestFormatNegotiation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		accept     string
		wantFormat Format
		wantValid  bool
	}{
		{
			name:       "default json",
			target:     "/collections",
			wantFormat: FormatJSON,
			wantValid:  true,
		},
		{
			name:       "f json",
			target:     "/collections?f=json",
			wantFormat: FormatJSON,
			wantValid:  true,
		},
		{
			name:       "f html",
			target:     "/collections?f=html",
			wantFormat: FormatHTML,
			wantValid:  true,
		},
		{
			name:       "f jsonld",
			target:     "/collections?f=jsonld",
			wantFormat: FormatJSONLD,
			wantValid:  true,
		},
		{
			name:       "unknown f rejected",
			target:     "/collections?f=csv",
			wantFormat: FormatJSON,
			wantValid:  false,
		},
		{
			name:       "f wins over accept",
			target:     "/collections?f=json",
			accept:     "text/html",
			wantFormat: FormatJSON,
			wantValid:  true,
		},
		{
			name:       "accept html",
			target:     "/collections",
			accept:     "text/html,application/xhtml+xml",
			wantFormat: FormatHTML,
			wantValid:  true,
		},
		{
			name:       "accept ld+json",
			target:     "/collections",
			accept:     "application/ld+json",
			wantFormat: FormatJSONLD,
			wantValid:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			req := NewRequest(r, testMatcher())
			if req.Format() != tt.wantFormat {
				t.Errorf("format = %v, want %v", req.Format(), tt.wantFormat)
			}
			if req.IsValid() != tt.wantValid {
				t.Errorf("IsValid() = %v, want %v", req.IsValid(), tt.wantValid)
			}
		})
	}
}

func TestRequestExtraFormats(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/api?f=csv", nil)
	req := NewRequest(r, testMatcher())
	if req.IsValid() {
		t.Error("csv valid without allowance")
	}
	if !req.IsValid(Format("csv")) {
		t.Error("csv invalid despite allowance")
	}
	if req.RawFormat() != "csv" {
		t.Errorf("RawFormat() = %q, want csv", req.RawFormat())
	}
}

func TestRequestLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		target         string
		acceptLanguage string
		want           string
	}{
		{name: "default", target: "/", want: "en-US"},
		{name: "lang param", target: "/?lang=ja", want: "ja"},
		{name: "accept-language", target: "/", acceptLanguage: "ja;q=0.9,en;q=0.5", want: "ja"},
		{name: "unsupported falls back", target: "/?lang=fr", want: "en-US"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.acceptLanguage != "" {
				r.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			req := NewRequest(r, testMatcher())
			if got := req.Locale().String(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("locale = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestRequestBodyCapture(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/collections", strings.NewReader(`{"a":1}`))
	req := NewRequest(r, testMatcher())
	if string(req.Data()) != `{"a":1}` {
		t.Errorf("Data() = %q", req.Data())
	}
}

func TestResponseHeaders(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/collections?f=jsonld", nil)
	req := NewRequest(r, testMatcher())
	headers := req.ResponseHeaders()
	if headers["Content-Type"] != "application/ld+json" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}
	if headers["Content-Language"] == "" {
		t.Error("Content-Language missing")
	}
}
