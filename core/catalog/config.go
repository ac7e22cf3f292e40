package catalog

import "time"

// Config holds catalog settings.
type Config struct {
	// PreloadOnStart queues the preload set when the server starts.
	PreloadOnStart bool `mapstructure:"preload_on_start" default:"true"`
	// ReconcilePrefix limits reconciliation to objects under this prefix.
	ReconcilePrefix string `mapstructure:"reconcile_prefix" default:""`
	// ReconcileCacheTTL is how long single-object reconciliation reuses a built index.
	// Zero queries every source on each request.
	ReconcileCacheTTL time.Duration `mapstructure:"reconcile_cache_ttl" default:"30s"`
}
