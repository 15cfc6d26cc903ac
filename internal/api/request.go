// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/aistairc/mf-api/internal/logging"
)

// Format is a negotiated response format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatJSONLD Format = "jsonld"
	FormatHTML   Format = "html"
)

var formatContentTypes = map[Format]string{
	FormatJSON:   "application/json",
	FormatJSONLD: "application/ld+json",
	FormatHTML:   "text/html",
}

// Request wraps one incoming HTTP request with the negotiated format
// and locale, the query parameters, and the body bytes.
type Request struct {
	format    Format
	rawFormat string // the f value as received, kept for the rejection message
	locale    language.Tag
	params    url.Values
	data      []byte
}

// NewRequest captures the request and negotiates format and locale. The
// f query parameter wins even when its value is unknown; without it the
// Accept header is scanned for html, ld+json, json in that order. The
// body is read eagerly so handlers can branch on emptiness.
func NewRequest(r *http.Request, matcher language.Matcher) *Request {
	req := &Request{
		params: r.URL.Query(),
		format: FormatJSON,
	}

	if raw := req.params.Get("f"); raw != "" {
		req.rawFormat = raw
		switch raw {
		case "json":
			req.format = FormatJSON
		case "jsonld":
			req.format = FormatJSONLD
		case "html":
			req.format = FormatHTML
		}
	} else if accept := r.Header.Get("Accept"); accept != "" {
		switch {
		case strings.Contains(accept, "text/html"):
			req.format = FormatHTML
		case strings.Contains(accept, "application/ld+json"):
			req.format = FormatJSONLD
		}
	}

	req.locale = negotiateLocale(r, req.params, matcher)

	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			logging.Debug().Err(err).Msg("failed to read request body")
		}
		req.data = data
	}
	return req
}

// negotiateLocale resolves the lang query parameter, then the
// Accept-Language header, against the configured locales. Failure falls
// back to the matcher's default, never an error.
func negotiateLocale(r *http.Request, params url.Values, matcher language.Matcher) language.Tag {
	var candidates []language.Tag
	if lang := params.Get("lang"); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			candidates = append(candidates, tag)
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			candidates = append(candidates, tags...)
		}
	}
	tag, _, _ := matcher.Match(candidates...)
	return tag
}

// Format returns the negotiated format.
func (req *Request) Format() Format { return req.format }

// Locale returns the negotiated locale.
func (req *Request) Locale() language.Tag { return req.locale }

// Params returns the query parameters.
func (req *Request) Params() url.Values { return req.params }

// Data returns the request body bytes.
func (req *Request) Data() []byte { return req.data }

// IsValid reports whether the requested format is servable. Formats
// beyond the defaults can be allowed per operation.
func (req *Request) IsValid(extraFormats ...Format) bool {
	if req.rawFormat == "" {
		return true
	}
	switch req.rawFormat {
	case "json", "jsonld", "html":
		return true
	}
	for _, f := range extraFormats {
		if string(f) == req.rawFormat {
			return true
		}
	}
	return false
}

// RawFormat returns the f parameter as received, for the rejection
// message of an unknown format.
func (req *Request) RawFormat() string { return req.rawFormat }

// GetLinkRel returns self when f is the negotiated format, alternate
// otherwise.
func (req *Request) GetLinkRel(f Format) string {
	if f == req.format {
		return "self"
	}
	return "alternate"
}

// ResponseHeaders returns the Content-Type and Content-Language headers
// for the negotiated format and locale.
func (req *Request) ResponseHeaders() map[string]string {
	ct, ok := formatContentTypes[req.format]
	if !ok {
		ct = formatContentTypes[FormatJSON]
	}
	return map[string]string{
		"Content-Type":     ct,
		"Content-Language": req.locale.String(),
	}
}
