package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
)

// LoggingMiddleware returns a middleware that logs HTTP requests
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := logging.From(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
					"client_request_id", r.Header.Get("X-Request-ID"),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))
		})
	}
}

// RecordMiddleware stores every request in catalog
func RecordMiddleware(catalog *Catalog) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body []byte
			if r.Body != nil {
				data, err := io.ReadAll(r.Body)
				if err != nil {
					writeError(w, r, http.StatusBadRequest, "failed to read request body")
					return
				}
				body = data
				r.Body = io.NopCloser(bytes.NewReader(data))
			}

			catalog.record(RecordedRequest{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
				Body:   body,
				Header: map[string]string{
					"Authorization": r.Header.Get("Authorization"),
					"Content-Type":  r.Header.Get("Content-Type"),
					"X-Request-ID":  r.Header.Get("X-Request-ID"),
				},
			})

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects requests without the expected token. An empty token
// disables the check.
func AuthMiddleware(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			scheme, value, _ := strings.Cut(auth, " ")
			if (scheme != "Token" && scheme != "Bearer") || value != token {
				writeError(w, r, http.StatusUnauthorized, "Full authentication is required to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type errorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// writeError writes an error response in the SW360 format
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, &errorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/hal+json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}
