// Package middleware groups the Fiber middleware of the texture manager server.
//
//   - auth: rejects requests without the configured API key, except on skipped paths
//     such as the metrics route.
//   - rayid: tags each request with a RayID header that the request log and every
//     handler log line carry.
//
// The server registers rayid first, then the request log, then auth.
package middleware
