package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody mirrors the storefront response envelope for failures raised
// before a handler runs.
type errorBody struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Redirect      string `json:"redirect,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	body.CorrelationID = GetCorrelationID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
