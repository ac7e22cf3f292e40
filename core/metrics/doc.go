// Package metrics exposes Prometheus metrics for the texture manager.
//
// Metrics are opt-in: InitRegistry creates the registry and NewResidencyMetrics returns a
// texture.Metrics backed by it. When metrics are disabled, NewResidencyMetrics returns nil
// and the manager falls back to a no-op implementation.
//
// # Metrics
//
//   - texman_uploads_total{mode,status}
//   - texman_upload_duration_seconds{mode}
//   - texman_upload_bytes
//   - texman_pending_uploads
//   - texman_discarded_uploads_total
//   - texman_demotions_total
//   - texman_mip_skip_level
//   - texman_vidmem_budget_bytes, texman_vidmem_used_bytes, texman_vidmem_textures
//
// # Usage
//
//	reg := metrics.InitRegistry()
//	m := metrics.NewResidencyMetrics(reg)
//	metrics.RegisterMemoryCollector(reg, host)
//	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
package metrics
