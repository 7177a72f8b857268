// Package errors provides the HTTP error surface of the reconciliation
// service: APIError for explicit request failures, AppError for typed
// application failures, and an ErrorHandler that renders both (plus the
// reconcile package's schema and multiplicity errors) as RFC 7807
// problem details.
package errors
