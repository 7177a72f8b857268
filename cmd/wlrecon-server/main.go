package main

import (
	"log/slog"
	"os"

	"wlrecon/internal/app"
	"wlrecon/internal/config"
)

func main() {
	// WLRECON_CONFIG_FILE selects a YAML file; WLRECON_* variables still override it
	application, err := app.NewApplication(os.Getenv(config.EnvPrefix + "_CONFIG_FILE"))
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
