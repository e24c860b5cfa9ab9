// Package patrol is the facade over roster editing: the stateful service,
// its persistence gateways, and the HTTP handler.
package patrol

import (
	"log/slog"

	"patrolboard/internal/patrol/handler"
	"patrolboard/internal/patrol/service"
)

// Service holds the live roster and serializes every mutation.
type Service = service.RosterService

// Handler wires HTTP endpoints to the roster service.
type Handler = handler.Handler

// NewService constructs the roster service around a persistence gateway.
func NewService(gateway service.Gateway, opts ...service.Option) *Service {
	return service.New(gateway, opts...)
}

// NewHandler constructs an HTTP handler for operator-facing roster routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
