// Package request assigns every inbound request a stable request ID.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"patrolboard/pkg/requestcontext"
)

// Header carries the inbound request ID when a proxy already assigned one.
const Header = "X-Request-ID"

// Middleware ensures a request ID is present in the context and echoes it on
// the response. Honors an inbound X-Request-ID so IDs correlate across hops.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
