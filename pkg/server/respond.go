package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/observability"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// statusOf maps an error to an HTTP status by its most specific code.
func statusOf(code errors.Code) int {
	switch {
	case code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == errors.ErrCodeInternal, code == "":
		return http.StatusInternalServerError
	case strings.HasPrefix(string(code), "INVALID_"), code == errors.ErrCodeOutOfBounds:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.RootCode(err)
	status := statusOf(code)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: msg})
}

// fail reports err to the HTTP hooks and writes it as the response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if statusOf(errors.RootCode(err)) >= http.StatusInternalServerError {
		s.logger.Error("request error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}
