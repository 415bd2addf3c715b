// Package server provides the HTTP server: a Gin engine behind an h2c
// handler, with lifecycle management, health endpoints and middleware.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the logger context
//   - RequestLogger: request logging with duration tracking
//   - RateLimit: per-client token bucket limiting
//   - BodySizeLimit: request body size limits
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /ready: readiness probe
package server
