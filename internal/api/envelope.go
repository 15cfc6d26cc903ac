// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aistairc/mf-api/internal/models"
)

// envelopeTimeFormat renders the timeStamp member.
const envelopeTimeFormat = "2006-01-02T15:04:05.000Z"

func envelopeTimestamp() string {
	return time.Now().UTC().Format(envelopeTimeFormat)
}

// wireInstant renders an instant the way responses spell time.
func wireInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// carriedParams keeps the query parameters that paging links preserve.
// f and offset are re-derived per link.
func carriedParams(params url.Values) string {
	var parts []string
	for key, values := range params {
		if key == "f" || key == "offset" {
			continue
		}
		for _, v := range values {
			parts = append(parts, key+"="+url.QueryEscape(v))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// pagingLinks builds the self link and, when the page came back full,
// the next link of a list response.
func pagingLinks(req *Request, base string, offset, limit, returned int) []models.Link {
	carried := carriedParams(req.Params())
	href := func(off int) string {
		u := fmt.Sprintf("%s?offset=%d", base, off)
		if carried != "" {
			u += "&" + carried
		}
		return u
	}

	links := []models.Link{{
		Href: href(offset),
		Rel:  "self",
	}}
	if limit > 0 && returned == limit {
		links = append(links, models.Link{
			Href: href(offset + limit),
			Rel:  "next",
			Type: "application/geo+json",
		})
	}
	return links
}

// selfLink is the single-resource link set.
func selfLink(href string) []models.Link {
	return []models.Link{{Href: href, Rel: "self"}}
}

// promoteCRS returns the first non-nil crs of the rows, else the
// default. Used at the collection level of tgsequence and items
// envelopes.
func promoteCRS(candidates []map[string]any) map[string]any {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return models.DefaultCRS()
}

func promoteTRS(candidates []map[string]any) map[string]any {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return models.DefaultTRS()
}
