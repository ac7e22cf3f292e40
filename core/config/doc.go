// Package config provides configuration management for the texture manager.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, timeouts)
//   - Storage: S3/MinIO credentials and the texture bucket
//   - Database: texture catalog connection (MySQL or SQLite)
//   - Log: Logging level and format
//   - Residency: upload batching, mip skipping and demotion policy
//   - Device: host execution context budget and simulated latency
//   - Metrics: Prometheus exposition
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Residency.MaxMipSkip)
package config
