// Package logger builds the zap logger used across the texture manager.
//
// New accepts a Config with a level (debug, info, warn, error) and a format: json for
// servers, console for terminals. WithRayID returns a child logger carrying the RayID
// of a Fiber request, so handler logs and the request log line correlate.
//
//	l := logger.WithRayID(log, c)
//	l.Error("Preload failed", zap.String("object", req.Object), zap.Error(err))
package logger
