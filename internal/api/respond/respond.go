// Package respond centralizes JSON envelopes and the mapping from the error
// taxonomy to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carevault/booking-platform/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Error maps the error taxonomy onto HTTP statuses: validation failures are
// 400, lifecycle conflicts 409, unknown ids 404, anything else 500.
func Error(w http.ResponseWriter, err error) {
	var (
		verr *apperr.ValidationError
		ste  *apperr.StateTransitionError
		nfe  *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
	case errors.As(err, &ste):
		JSON(w, http.StatusConflict, errorBody{Error: ste.Error()})
	case errors.As(err, &nfe):
		JSON(w, http.StatusNotFound, errorBody{Error: nfe.Error()})
	default:
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// Conflict writes a 409 with the given message.
func Conflict(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusConflict, errorBody{Error: msg})
}
