// Package services holds the application layer between the HTTP handlers
// and the processing packages.
//
// VoltammetryService runs uploaded batches through the pipeline and keeps the
// most recent result, so the plot survives until it is cleared or replaced.
// It also prepares wide exports, previews and rendered plot images.
// HealthService answers the health, readiness and version endpoints.
package services
