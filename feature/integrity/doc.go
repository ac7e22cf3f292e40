// Package integrity provides system health checks for the texture manager.
//
// # Checks Provided
//
//   - Structure: the storage bucket exists and holds the configured folders.
//   - Catalog: the texture_assets table matches the model (skipped without a database).
//   - Residency: the upload worker is started, video memory fits the budget and no
//     registered texture failed its last upload.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/catalog : Runs catalog schema check.
//   - GET /integrity/residency : Runs residency check, 503 when unhealthy.
package integrity
