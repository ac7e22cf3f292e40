package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics settings.
type Config struct {
	// Enabled turns on metric collection and the /metrics route.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Path is the route serving the Prometheus exposition.
	Path string `mapstructure:"path" default:"/metrics"`
}

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process registry with Go runtime and process collectors. It is
// idempotent and returns the registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// Registry returns the process registry, or nil before InitRegistry.
func Registry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// IsEnabled reports whether InitRegistry was called.
func IsEnabled() bool {
	return Registry() != nil
}

// Handler serves the process registry. It serves an empty exposition when metrics are
// disabled.
func Handler() http.Handler {
	reg := Registry()
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func reset() {
	mu.Lock()
	registry = nil
	mu.Unlock()
}
