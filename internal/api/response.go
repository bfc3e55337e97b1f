package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

// jsonResponse writes data as a JSON body with the given status. A nil data
// writes the status line only.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// jsonError writes an error message as a JSON body.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// workflowError maps domain errors onto HTTP status codes. Validation
// failures are client errors, role checks report forbidden, and lost races
// or already-terminal transitions report conflicts.
func workflowError(w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, workflow.ErrNotReviewer), errors.Is(err, workflow.ErrActionNotAllowed):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrAlreadyActioned),
		errors.Is(err, workflow.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
