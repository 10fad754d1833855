package config

import "time"

// Application constants
const (
	AppName = "Voltammetry Web App"

	// Upload limits
	DefaultMaxUploadBytes = 64 << 20 // 64MB per request
	DefaultMaxFileBytes   = 16 << 20 // 16MB per file
	DefaultMaxFiles       = 50

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Workers for parallel upload parsing and export reshaping
	DefaultWorkers = 4

	// Rendered plot size in pixels
	DefaultRenderWidth  = 1600
	DefaultRenderHeight = 900

	// Export naming
	DefaultExportPrefix = "processed_"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultExportsDir = "data/exports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/voltweb.log"

	// API Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// AllowedUploadExtensions lists the accepted measurement file extensions
var AllowedUploadExtensions = []string{".csv", ".txt"}
