// Package rbac provides the role-based access control model for the catalog API.
//
// This package implements:
//   - The permission table: a static, immutable mapping of role to (resource, action) grants
//   - The evaluator: pure Can / IsAdminRole / GetPermissions lookups over a table
//   - Permission sets, including the "all" sentinel returned for elevated roles
//
// The table is built once at startup and injected into the evaluator, which in turn
// is injected into the HTTP enforcement middleware. Nothing in this package performs
// I/O, so a single evaluator is safe for concurrent use by any number of requests.
package rbac
