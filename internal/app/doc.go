// Package app wires configuration, telemetry, services and HTTP transport
// into a runnable server.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, WLRECON_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Resolve and create the upload and output directories
//  4. Create the reconciliation and health services
//  5. Build the chi router with middleware and routes
//  6. Configure the HTTP server
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live
//	GET  /api/version
//	POST /api/upload
//	POST /api/compare
//	GET  /api/results/{runID}
//	GET  /api/download/{runID}/{requirement}
//	POST /api/reset
//	GET  /metrics
//
// # Usage
//
//	application, err := app.NewApplication(configPath)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
package app
