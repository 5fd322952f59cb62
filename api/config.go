// Package api provides the HTTP API for validating and provisioning skills.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// CreatePerMinute caps skill creations per user per minute.
	// Zero disables the limit.
	CreatePerMinute uint
}
