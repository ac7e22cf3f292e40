package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"reflect"
	"strings"

	"texture-manager/core/catalog"
	"texture-manager/core/database"
	"texture-manager/core/device"
	"texture-manager/core/logger"
	"texture-manager/core/metrics"
	"texture-manager/core/server"
	"texture-manager/core/storage"
	"texture-manager/core/texture"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding source images.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the texture catalog.
	Database database.Config `mapstructure:"database"`
	// Catalog holds catalog behaviour.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Residency holds the texture manager policy.
	Residency texture.Config `mapstructure:"residency"`
	// Device holds the host execution context settings.
	Device device.Config `mapstructure:"device"`
	// Metrics holds Prometheus settings.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// LoadConfig reads dir/.env into the process environment, then resolves every key from
// the environment with the struct tag default as fallback. A missing .env is not an error.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	for key, value := range defaults(reflect.TypeOf(Config{}), "") {
		// Every key needs a default, even an empty one, or AutomaticEnv never consults it.
		v.SetDefault(key, value)
	}
	// RESIDENCY_MAX_MIP_SKIP -> residency.max_mip_skip
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// defaults maps each dotted mapstructure key under t to its default tag. Nested structs
// extend the prefix; untagged fields are skipped.
func defaults(t reflect.Type, prefix string) map[string]string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]string)
	for i := range t.NumField() {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			maps.Copy(out, defaults(field.Type, name))
			continue
		}
		out[name] = field.Tag.Get("default")
	}
	return out
}
