package server_test

import (
	"testing"
	"time"

	"texture-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Timeouts(t *testing.T) {
	tests := []struct {
		name     string
		cfg      server.Config
		request  time.Duration
		shutdown time.Duration
	}{
		{"Defaults", server.Config{}, 30 * time.Second, 10 * time.Second},
		{"Configured", server.Config{RequestTimeoutSeconds: 5, ShutdownTimeoutSeconds: 2}, 5 * time.Second, 2 * time.Second},
		{"Negative", server.Config{RequestTimeoutSeconds: -1}, 30 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.request, tt.cfg.RequestTimeout())
			assert.Equal(t, tt.shutdown, tt.cfg.ShutdownTimeout())
		})
	}
}

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Address())
}
