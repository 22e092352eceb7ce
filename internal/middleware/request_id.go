package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"leituras-platform/pkg/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns a request identifier to every request, honoring one
// supplied by the client, and exposes it to the structured logger and in the
// response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := logging.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
