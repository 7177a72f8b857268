// Package config provides configuration management for the reconciliation
// service and CLI.
//
// # Configuration Sources
//
// Configuration is built from the following sources, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A YAML file (explicit path, or config.yaml / configs/config.yaml)
//  3. Environment variables with the WLRECON_ prefix
//
// # Environment Variables
//
// Nested fields join their envconfig names with underscores:
//
//	WLRECON_SERVER_PORT=8080
//	WLRECON_LOGGING_LEVEL=debug
//	WLRECON_RECONCILE_MAPPING_FILE=/etc/wlrecon/mapping.yaml
//	WLRECON_RECONCILE_RESULT_TTL=2h
//	WLRECON_TELEMETRY_TRACING_EXPORTER=stdout
//
// # Validation
//
// The merged configuration is checked with go-playground/validator struct
// tags; Load fails with every violated field listed.
package config
