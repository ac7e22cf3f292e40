// Package reconcile compares three views of the texture set and plans repairs:
//
//   - Catalog: the texture_assets table.
//   - Storage: the image objects in the bucket.
//   - Registry: the texture manager's records.
//
// Every source is keyed by storage object name. The catalog and storage indices are
// built concurrently, storage with a single recursive listing and no per-object HEAD
// calls. ReconcileOne can answer from a TTL cache shared by concurrent callers, or
// query each source directly when caching is disabled.
//
// # Plans
//
// Plan reports each object's presence and mismatches and, depending on Options, the
// actions that would repair them:
//
//   - purge: delete catalog rows and release textures whose object left storage
//   - sync: catalogue new storage objects and preload unregistered preload rows
//
// Apply runs a plan through a Mutator only when the options are confirmed and not a dry
// run.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(reconcile.Spec{CacheTTL: time.Minute}, repo, client, bucket, manager)
//	plan, err := engine.Plan(ctx, reconcile.Options{DoPurge: true})
//	executed, err := engine.Apply(ctx, plan, reconcile.Options{DoPurge: true, Confirmed: true}, mutator)
package reconcile
