// Package services holds the application services behind the HTTP API and
// the CLI.
//
// ReconciliationService owns the request lifecycle of a comparison:
//
//	Upload   saves and validates the input files of a new session
//	Compare  loads a session's files and runs the reconciliation engine
//	Results  returns a preview of each requirement of a stored run
//	Download renders one requirement (or the ZIP bundle) of a stored run
//	Reset    drops a session, its files and its last run
//
// Runs and sessions are kept in memory with a TTL (internal/store); the
// reconcile package itself is stateless.
//
// HealthService reports liveness and readiness of the process.
package services
