// Package config provides centralized configuration for the voltweb server and
// the voltproc CLI.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//	1. Default() values
//	2. A YAML file (config.yaml or configs/config.yaml)
//	3. Environment variables with the VOLT_ prefix
//
// # Environment Variables
//
// Variables follow VOLT_<SECTION>_<FIELD>:
//
//	VOLT_SERVER_PORT=8080
//	VOLT_SERVER_MAX_UPLOAD_BYTES=67108864
//	VOLT_PROCESSING_DEFAULT_SCAN_RANGE=all
//	VOLT_PROCESSING_FIXED_PLOT_HEIGHT=2500
//	VOLT_EXPORT_MISSING_VALUE=NaN
//	VOLT_LOGGING_LEVEL=debug
//
// A .env file in the working directory is loaded by the binaries before
// Load runs.
//
// # Path Management
//
// Paths resolves data, export and log directories against a base directory
// (the executable directory by default):
//
//	paths, err := cfg.GetPaths()
//	out := paths.GetExportPath("processed_cv.csv")
//
// # Testing
//
// Use Default() for a configuration that needs no environment, or LoadFrom
// with a file in t.TempDir().
package config
