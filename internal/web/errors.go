package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler failure goes through respondError: the technical error is
// logged with the request ID for correlation, mapped to a user-friendly
// message via core.MapError, and returned as JSON with a support code.
// Credentials never reach the response.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for API error responses, combining a
// machine-readable code with human-readable message and action fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusForError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusForError picks the HTTP status for an error from the core taxonomy.
func statusForError(err error) int {
	var parseErr *core.ParseError
	var editErr *core.EditError
	var genErr *core.GenerationError
	var adapterErr *core.AdapterError

	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNothingToUndo):
		return http.StatusConflict
	case errors.As(err, &parseErr), errors.As(err, &editErr), errors.As(err, &genErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &adapterErr):
		switch adapterErr.Kind {
		case core.AdapterAuth:
			return http.StatusUnauthorized
		case core.AdapterPermission:
			return http.StatusForbidden
		case core.AdapterNetwork:
			return http.StatusBadGateway
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v as JSON. Encoding errors are logged since headers are
// already sent by then.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeBadRequest reports a malformed request without going through MapError.
func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Message: message,
		Code:    "REQ001",
	})
}
