package testutil

import (
	"net/http"
	"time"

	"patrolboard/pkg/requestcontext"
)

// WithRequestID stamps a request id on the request context, simulating the
// request-id middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientIP stamps a client ip on the request context, simulating the
// client-metadata middleware.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
}

// WithFrozenTime pins the request-scoped clock for deterministic timestamps.
func WithFrozenTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
