// Package shared holds cross-cutting helpers that belong to no single
// domain package. Its testutil subpackage provides a buffered slog handler
// for asserting on structured log output in tests.
package shared
