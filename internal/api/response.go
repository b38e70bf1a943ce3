package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
)

// KindInvalidRequest marks errors raised by the API before the engine runs.
const KindInvalidRequest = "InvalidRequest"

// ErrorBody is the error envelope every failed request returns.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// StatusFor maps an engine error kind to an HTTP status.
func StatusFor(kind launchpad.Kind) int {
	switch kind {
	case launchpad.KindUnauthorized, launchpad.KindNotOwner:
		return http.StatusForbidden
	case launchpad.KindPairNotFound, launchpad.KindOrderNotFound:
		return http.StatusNotFound
	case launchpad.KindInvalidMessage, launchpad.KindInvalidConfig, launchpad.KindAmountZero:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Kind: kind, Message: message}})
}

func writeSchemaError(w http.ResponseWriter, err error) {
	detail := ErrorDetail{Kind: KindInvalidRequest, Message: err.Error()}
	var se *SchemaError
	if errors.As(err, &se) {
		detail.Violations = se.Violations
	}
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: detail})
}

// writeEngineError reports err with its kind. Anything that is not an
// engine error, such as a cancelled context, is a 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	kind, ok := launchpad.KindOf(err)
	if !ok {
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	writeError(w, StatusFor(kind), string(kind), err.Error())
}
