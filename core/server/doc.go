// Package server holds the HTTP server configuration.
//
// The main application entry point (cmd/start.go) handles the server startup;
// this package defines the listen port, request and shutdown timeouts and the
// API key that protects every route except /health and /swagger.
package server
