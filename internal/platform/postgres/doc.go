// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, together with
// the embedded schema migrations applied by goose.
//
// Writes that must be serialized per course (summary version allocation and
// exercise replacement) take a transaction-scoped advisory lock keyed on the
// course, so they stay correct across multiple server instances.
package postgres
