// Package httputil holds the small JSON request/response helpers shared by
// the deskmesh HTTP services.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deskmesh/deskmesh/core"
)

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a non-2xx JSON error body.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, core.ErrorResponse{Success: false, Error: err.Error()})
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
