// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	json "github.com/goccy/go-json"
	"github.com/swaggo/swag"
)

// LoadOpenAPIDoc reads the generated Swagger document from the swag
// registry, converts it to OpenAPI 3 and validates it before it is
// served. A document that does not parse is a build defect, caught at
// startup rather than by the first /openapi client.
func LoadOpenAPIDoc(ctx context.Context) ([]byte, error) {
	raw, err := swag.ReadDoc()
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	var v2 openapi2.T
	if err := json.Unmarshal([]byte(raw), &v2); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI document: %w", err)
	}
	if err := v3.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	out, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}
	return out, nil
}
