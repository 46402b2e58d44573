package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mrz1836/janitor/internal/service/scan"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

type errorResponse struct {
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: "GENERAL_ERROR"}

	var je *janitorerr.JanitorError
	if errors.As(err, &je) {
		resp.Code = je.Code
		resp.Details = je.Details
		resp.Suggestion = je.Suggestion
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	_ = writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scan.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, janitorerr.ErrNetworkError), errors.Is(err, janitorerr.ErrAPIError), errors.Is(err, janitorerr.ErrRateLimited):
		return http.StatusBadGateway
	}

	var je *janitorerr.JanitorError
	if !errors.As(err, &je) {
		return http.StatusInternalServerError
	}
	switch je.ExitCode {
	case janitorerr.ExitInput:
		return http.StatusBadRequest
	case janitorerr.ExitAuth:
		return http.StatusUnauthorized
	case janitorerr.ExitNotFound:
		return http.StatusNotFound
	case janitorerr.ExitPermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
