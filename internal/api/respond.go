// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

package api

import (
	"fmt"
	"html/template"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/aistairc/mf-api/internal/logging"
)

// OGC exception codes used on the wire.
const (
	CodeInvalidParameterValue = "InvalidParameterValue"
	CodeMissingParameterValue = "MissingParameterValue"
	CodeNotFound              = "NotFound"
	CodeConnectingError       = "ConnectingError"
)

// exception is the error payload shape.
type exception struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

var exceptionTemplate = template.Must(template.New("exception").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Code}}</title></head>
<body>
<h1>{{.Code}}</h1>
<p>{{.Description}}</p>
</body>
</html>
`))

// respondJSON writes v as JSON with the negotiated headers. Pretty
// printing follows server configuration.
func (h *Handler) respondJSON(w http.ResponseWriter, req *Request, status int, v any) {
	var data []byte
	var err error
	if h.config.Server.PrettyPrint {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	for k, v := range req.ResponseHeaders() {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("failed to write response")
	}
}

// respondError writes the {code, description} exception payload, or the
// HTML exception page when the request negotiated HTML.
func (h *Handler) respondError(w http.ResponseWriter, req *Request, status int, code, description string) {
	exc := exception{Code: code, Description: description}

	if req.Format() == FormatHTML {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Language", req.Locale().String())
		w.WriteHeader(status)
		if err := exceptionTemplate.Execute(w, exc); err != nil {
			logging.Debug().Err(err).Msg("failed to render exception page")
		}
		return
	}

	h.respondJSON(w, req, status, exc)
}

// respondFormatException rejects an unservable f parameter.
func (h *Handler) respondFormatException(w http.ResponseWriter, req *Request) {
	h.respondError(w, req, http.StatusBadRequest, CodeInvalidParameterValue,
		fmt.Sprintf("Invalid format: %s", req.RawFormat()))
}

// respondEmpty writes a bare status with no body. Used for 204s and the
// overlap rejection contract.
func respondEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
