package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/todoreminder/internal/infrastructure/http/response"
)

// MaxBodyBytes limits request bodies to maxBytes.
//
// Requests that declare a larger Content-Length are rejected with 413 before
// the handler runs. Bodies without a usable Content-Length (chunked, or
// lying) are wrapped in http.MaxBytesReader; handlers detect the overflow
// with IsBodyTooLarge while decoding.
func MaxBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				slog.WarnContext(r.Context(), "Request body size limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"content_length", r.ContentLength,
					"limit", maxBytes)
				PayloadTooLarge(w)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from reading past the MaxBodyBytes limit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// PayloadTooLarge sends the 413 error body.
func PayloadTooLarge(w http.ResponseWriter) {
	response.Error(w, "PAYLOAD_TOO_LARGE", "request body exceeds size limit", http.StatusRequestEntityTooLarge)
}
