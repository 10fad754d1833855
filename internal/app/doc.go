// Package app wires the voltweb server together and manages its lifecycle.
//
// New builds every component from a *config.Config: OpenTelemetry
// providers, business metrics, the websocket hub, the voltammetry and
// health services, the chi router with its middleware stack, and the
// http.Server. NewApplication does the same after loading configuration
// and the logger from the environment.
//
// # Routes
//
//	/ws        websocket progress feed, outside the wrapping middleware
//	/metrics   Prometheus scrape endpoint
//	/api/...   REST API, see package transport/http
//
// # Lifecycle
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests, stops the hub and flushes telemetry. Initialization
// errors are returned to the caller; the package never calls os.Exit.
package app
