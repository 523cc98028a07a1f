package httpx

import (
	"encoding/json"
	"net/http"

	"booktracker/internal/validation"
)

// ErrorResponse is the body of every non-2xx response. Clients read Error.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Code      string                  `json:"code"`
	Details   []validation.FieldError `json:"details,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func JSONNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []validation.FieldError) {
	JSON(w, statusCode, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: RequestIDFrom(r),
	})
}
