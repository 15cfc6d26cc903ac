// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package models holds the wire types shared by the moving features
// endpoints: hypermedia links, the default reference systems, and the
// response envelopes that are regular enough to type. Stored documents
// (collection descriptors, feature properties, temporal property
// descriptors) stay as raw JSON maps because clients own their shape.
package models

// Default reference system URIs used whenever a resource does not carry
// its own crs/trs.
const (
	DefaultCRSURI = "urn:ogc:def:crs:OGC:1.3:CRS84"
	DefaultTRSURI = "urn:ogc:data:time:iso8601"

	SpatialExtentCRS   = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"
	SpatialExtentCRS3D = "http://www.opengis.net/def/crs/OGC/0/CRS84h"
	TemporalExtentTRS  = "http://www.opengis.net/def/uom/ISO-8601/0/Gregorian"
)

// ConformanceClasses are the conformance URIs this server implements.
var ConformanceClasses = []string{
	"http://www.opengis.net/spec/ogcapi-movingfeatures-1/1.0/conf/common",
	"http://www.opengis.net/spec/ogcapi-movingfeatures-1/1.0/conf/mf-collection",
	"http://www.opengis.net/spec/ogcapi-movingfeatures-1/1.0/conf/movingfeatures",
}

// DefaultCRS returns the default crs object for responses.
func DefaultCRS() map[string]any {
	return map[string]any{"type": "Name", "properties": DefaultCRSURI}
}

// DefaultTRS returns the default trs object for responses.
func DefaultTRS() map[string]any {
	return map[string]any{"type": "Name", "properties": DefaultTRSURI}
}

// Link is an OGC API hypermedia link.
type Link struct {
	Href     string `json:"href"`
	Rel      string `json:"rel"`
	Type     string `json:"type,omitempty"`
	Hreflang string `json:"hreflang,omitempty"`
	Title    string `json:"title,omitempty"`
	Length   int    `json:"length,omitempty"`
}

// LandingPage is the root resource.
type LandingPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// Conformance declares the implemented conformance classes.
type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// SpatialExtent is the aggregated bbox of a collection.
type SpatialExtent struct {
	Bbox [][]float64 `json:"bbox,omitempty"`
	CRS  string      `json:"crs,omitempty"`
}

// TemporalExtent is the aggregated time interval of a collection.
type TemporalExtent struct {
	Interval [][]*string `json:"interval,omitempty"`
	TRS      string      `json:"trs,omitempty"`
}

// Extent combines the spatial and temporal extents of a collection.
type Extent struct {
	Spatial  *SpatialExtent  `json:"spatial,omitempty"`
	Temporal *TemporalExtent `json:"temporal,omitempty"`
}
