package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// RequestTimeoutSeconds bounds request reads and response writes.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"30"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"10"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// RequestTimeout returns the per-request timeout, 30s when unset.
func (c Config) RequestTimeout() time.Duration {
	return seconds(c.RequestTimeoutSeconds, 30)
}

// ShutdownTimeout returns the graceful shutdown timeout, 10s when unset.
func (c Config) ShutdownTimeout() time.Duration {
	return seconds(c.ShutdownTimeoutSeconds, 10)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
