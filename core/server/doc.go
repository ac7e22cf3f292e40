// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure and its derived values.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and the request and shutdown
// timeouts.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server
