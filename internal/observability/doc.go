// Package observability provides structured logging and metrics for the catalog API.
//
// This package implements:
//   - zap logger construction from the configured level and format
//   - Prometheus collectors for HTTP traffic and authorization decisions
//   - Request ID propagation into log fields
package observability
