// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package database

import (
	"fmt"
	"strings"

	"github.com/aistairc/mf-api/internal/params"
)

// Predicate builders for the spatiotemporal filters. Each builder takes
// the server-composed extent expression the predicate applies to and the
// running parameter list, and returns the SQL fragment plus the extended
// parameter list. Extent expressions are compile-time constants of this
// package; user input only ever enters via the parameters.

// bboxPredicate restricts on spatial intersection:
// box2d($n::stbox) &&& box2d(extent) for 2D, box3d for 3D.
func bboxPredicate(bbox []float64, extentExpr string, args []any) (string, []any) {
	args = append(args, StboxLiteral(bbox))
	boxFn := "box2d"
	if len(bbox) == 6 {
		boxFn = "box3d"
	}
	frag := fmt.Sprintf("%s($%d::stbox) &&& %s(%s)", boxFn, len(args), boxFn, extentExpr)
	return frag, args
}

// periodPredicate restricts on temporal intersection:
// periodExpr && period($a::timestamptz, $b::timestamptz, true, true).
func periodPredicate(dt params.Datetime, periodExpr string, args []any) (string, []any) {
	args = append(args, dt.Start, dt.End)
	frag := fmt.Sprintf("%s && period($%d::timestamptz, $%d::timestamptz, true, true)",
		periodExpr, len(args)-1, len(args))
	return frag, args
}

// periodArg appends the datetime bounds and returns the period
// constructor referencing them, for use inside atperiod(...).
func periodArg(dt params.Datetime, args []any) (string, []any) {
	args = append(args, dt.Start, dt.End)
	expr := fmt.Sprintf("period($%d::timestamptz, $%d::timestamptz, true, true)",
		len(args)-1, len(args))
	return expr, args
}

// pagination appends LIMIT/OFFSET. Zero limit means no paging clause.
func pagination(limit, offset int, args []any) (string, []any) {
	if limit <= 0 {
		return "", args
	}
	args = append(args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// joinConditions combines predicate fragments with AND, prefixed by the
// given keyword (WHERE / HAVING / AND) when any fragment exists.
func joinConditions(keyword string, frags []string) string {
	if len(frags) == 0 {
		return ""
	}
	return " " + keyword + " " + strings.Join(frags, " AND ")
}
