// Package http implements the HTTP handlers of the reconciliation service.
// Handlers stay thin: they parse and validate the request, call the service
// layer and render the response. Every failure goes through the shared
// errors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// # Routes
//
//	POST /api/upload                          multipart "files", creates a session
//	POST /api/compare                         {"session_id"}, runs a comparison
//	GET  /api/results/{runID}                 preview of every requirement
//	GET  /api/download/{runID}/{requirement}  req1|req2|req3|pivot|report|all
//	POST /api/reset                           {"session_id"}, drops a session
//	GET  /api/health                          liveness, plus /ready and /live
//	GET  /metrics                             Prometheus exposition
//
// # Testing
//
// Handlers are tested with httptest against a real service over temporary
// directories; the reconciliation engine is cheap enough that no mocks are
// needed.
package http
