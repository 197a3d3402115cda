// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cloudcatalog/itemsvc/internal/apperr"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeServiceError maps a service error to a status code and structured
// body. Client-caused errors carry their message; server-side failures get a
// generic detail so internals never reach the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.InvalidPayload:
		WriteJSONError(w, http.StatusBadRequest, kind.String(), err.Error())
	case apperr.NotFound:
		WriteJSONError(w, http.StatusNotFound, kind.String(), err.Error())
	case apperr.PublishFailure:
		WriteJSONError(w, http.StatusInternalServerError, kind.String(), "failed to publish message")
	case apperr.TransactionFailure:
		WriteJSONError(w, http.StatusInternalServerError, kind.String(), "transaction failed")
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
