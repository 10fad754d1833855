package contracts

const (
	// Version is the current version of the application
	Version = "0.3.0"

	// ExportFormatVersion is the version of the wide export layout
	ExportFormatVersion = "v1"

	// APIVersion is the version of the HTTP and WebSocket payloads
	APIVersion = "v1"
)
