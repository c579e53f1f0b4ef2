package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-admin/internal/app"
	"pos-admin/internal/backend"
	"pos-admin/internal/core"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Problems  []string `json:"problems,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp.RequestID = requestIDFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps an error returned by the application service to an
// HTTP status. Backend messages are passed through verbatim.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr *core.ValidationError
		inErr  *core.InputError
		apiErr *backend.APIError
	)
	switch {
	case errors.Is(err, core.ErrNoSession), errors.Is(err, backend.ErrUnauthorized):
		writeError(w, r, err.Error(), "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, app.ErrForbidden):
		writeError(w, r, err.Error(), "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, core.ErrHeldCartNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, app.ErrHeldCartsDisabled), errors.Is(err, app.ErrAssistantDisabled):
		writeError(w, r, err.Error(), "DISABLED", http.StatusServiceUnavailable)
	case errors.Is(err, core.ErrSuperseded):
		writeError(w, r, err.Error(), "SUPERSEDED", http.StatusConflict)
	case errors.Is(err, app.ErrNotEditable):
		writeError(w, r, err.Error(), "NOT_EDITABLE", http.StatusConflict)
	case errors.As(err, &valErr):
		writeErrorBody(w, r, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR", Problems: valErr.Problems},
			http.StatusUnprocessableEntity)
	case errors.As(err, &inErr), errors.Is(err, core.ErrEmptyDraft), errors.Is(err, core.ErrNoProduct):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrRowOutOfRange):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		writeError(w, r, apiErr.Error(), "BACKEND_REJECTED", http.StatusUnprocessableEntity)
	case errors.As(err, &apiErr):
		writeError(w, r, apiErr.Error(), "BACKEND_ERROR", http.StatusBadGateway)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
