// Package http implements the REST handlers of the voltweb API.
//
// Handlers stay thin: they parse multipart uploads and query parameters,
// validate them, call the services layer and render the result. Every error
// is answered as an RFC 7807 problem through the shared ErrorHandler.
//
//	POST   /api/process               upload files[] and scan_range, returns the batch
//	GET    /api/plot                  cached combined plot
//	DELETE /api/plot                  clear the cached plot
//	GET    /api/plot/image            cached plot as png or svg
//	GET    /api/plot/files/{index}    per-file plot of the cached batch
//	POST   /api/export                upload files[], returns csv, zip or xlsx
//	POST   /api/preview               upload files[], returns headers and first rows
//	GET    /api/health[/ready|/live|/detailed]
//	GET    /api/version
//	GET    /api/stats
package http
