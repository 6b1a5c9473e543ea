package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request ID; the client gets the mapped user message and
// code from core.MapError.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
	"github.com/JonMunkholm/crashaudit/internal/session"
	"github.com/JonMunkholm/crashaudit/internal/source/postgres"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errBadRequest = errors.New("invalid request body")

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, postgres.ErrNoPool):
		return http.StatusNotImplemented
	case errors.Is(err, core.ErrMissingColumn),
		errors.Is(err, core.ErrTypeMismatch),
		errors.Is(err, core.ErrUnknownStrategy),
		errors.Is(err, core.ErrEmptyTable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"invalid csv", "empty file", "no file provided", "invalid fill value", "unknown dataset"} {
		if strings.Contains(msg, p) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes its user-facing form. A status of 0
// means derive it from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}
	http.Error(w, msg.Message+" ("+msg.Code+")", status)
}

// wantsJSON reports whether the client expects a JSON error.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
