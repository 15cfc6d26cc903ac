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

// MobilityDB temporal literal builders. Literals are constructed only
// from validated MF-JSON (never raw user text) and bound as parameters
// with an explicit cast, e.g. $1::tgeompoint.

// literalTimeFormat is the instant spelling inside MobilityDB literals.
const literalTimeFormat = "2006-01-02 15:04:05.999999+00"

func literalTime(t time.Time) string {
	return t.UTC().Format(literalTimeFormat)
}

// sequenceBounds renders the inclusivity brackets of a sequence.
func sequenceBounds(lowerInc, upperInc bool) (string, string) {
	lower, upper := "[", "]"
	if !lowerInc {
		lower = "("
	}
	if !upperInc {
		upper = ")"
	}
	return lower, upper
}

// interpolationPrefix renders the Interp= prefix for non-linear
// sequences. Linear is MobilityDB's default and needs none.
func interpolationPrefix(interpolations []string) string {
	for _, interp := range interpolations {
		switch interp {
		case mfjson.StorageStepInterpolation:
			return "Interp=Stepwise;"
		case "Discrete":
			return "Interp=Discrete;"
		}
	}
	return ""
}

// TgeompointLiteral builds the tgeompoint sequence literal for a typed
// temporal geometry, e.g.
//
//	[POINT(139.757 35.627)@2011-07-14 22:01:01+00, ...]
func TgeompointLiteral(tg *mfjson.TemporalGeometry) string {
	var b strings.Builder
	b.WriteString(interpolationPrefix(tg.Interpolations))

	lower, upper := sequenceBounds(tg.LowerInc, tg.UpperInc)
	b.WriteString(lower)
	for i, t := range tg.Datetimes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pointLiteral(tg.Coordinates[i]))
		b.WriteByte('@')
		b.WriteString(literalTime(t))
	}
	b.WriteString(upper)
	return b.String()
}

func pointLiteral(coord []float64) string {
	if len(coord) >= 3 {
		return fmt.Sprintf("POINT Z (%s %s %s)",
			formatFloat(coord[0]), formatFloat(coord[1]), formatFloat(coord[2]))
	}
	return fmt.Sprintf("POINT(%s %s)", formatFloat(coord[0]), formatFloat(coord[1]))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TFloatLiteral builds the tfloat sequence literal for a numeric value
// sequence, e.g. [1@t1, 2.5@t2].
func TFloatLiteral(seq *mfjson.TemporalValueSequence) string {
	var b strings.Builder
	b.WriteString(interpolationPrefix([]string{seq.Interpolation}))
	b.WriteString("[")
	for i, t := range seq.Datetimes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatFloat(seq.FloatValue(i)))
		b.WriteByte('@')
		b.WriteString(literalTime(t))
	}
	b.WriteString("]")
	return b.String()
}

// TTextLiteral builds the ttext sequence literal for a text value
// sequence, e.g. ["walking"@t1, "running"@t2].
func TTextLiteral(seq *mfjson.TemporalValueSequence) string {
	var b strings.Builder
	b.WriteString(interpolationPrefix([]string{seq.Interpolation}))
	b.WriteString("[")
	for i, t := range seq.Datetimes {
		if i > 0 {
			b.WriteString(", ")
		}
		s := fmt.Sprint(seq.Values[i])
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(s, `"`, `\"`))
		b.WriteByte('"')
		b.WriteByte('@')
		b.WriteString(literalTime(t))
	}
	b.WriteString("]")
	return b.String()
}

// TimestampSetLiteral builds a timestampset literal, e.g. {t1, t2}.
func TimestampSetLiteral(times []time.Time) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = literalTime(t)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// StboxLiteral builds the stbox literal for a validated 4- or 6-element
// bbox.
func StboxLiteral(bbox []float64) string {
	if len(bbox) == 6 {
		return fmt.Sprintf("STBOX Z((%s,%s,%s),(%s,%s,%s))",
			formatFloat(bbox[0]), formatFloat(bbox[1]), formatFloat(bbox[2]),
			formatFloat(bbox[3]), formatFloat(bbox[4]), formatFloat(bbox[5]))
	}
	return fmt.Sprintf("STBOX ((%s,%s),(%s,%s))",
		formatFloat(bbox[0]), formatFloat(bbox[1]),
		formatFloat(bbox[2]), formatFloat(bbox[3]))
}
