// Package texture implements the asynchronous texture residency and upload manager.
//
// The Manager decouples texture content acquisition (decode of source asset bytes into
// GPU-ready mip levels) from the render/submission goroutine. Callers preload or schedule
// textures, a single background worker drains the upload queue through an ExecutionContext,
// and Synchronize/Kickoff provide deterministic synchronization points.
//
// # Components
//
//   - KeyGenerator: process-unique 64-bit texture keys (XXH64 over a monotonic counter).
//   - Registry: (asset, color space) → ManagedTexture, the authoritative residency table.
//   - Upload queue: strict FIFO of textures awaiting upload.
//   - Worker: one goroutine draining the queue.
//   - Manager: the façade (preload, schedule, unload, release, synchronize, kickoff,
//     demotion and mip-skip policy).
//
// All shared state (registry, queue, pending count, worker state) is guarded by a single
// mutex with two condition variables: one wakes the worker when work is added, kicked off or
// a stop is requested, the other wakes Synchronize callers when uploads complete.
//
// # Residency states
//
//	NotLoaded → Queued → Uploading → Resident
//	Resident → Demoted → Queued
//	any → Retired (unload/release)
//
// A failed upload returns the texture to NotLoaded and records the cause, see ManagedTexture.Err.
//
// # Usage
//
//	mgr := texture.NewManager(hostCtx, provider, texture.Options{Logger: log})
//	mgr.Start()
//	defer mgr.Close()
//
//	tex, err := mgr.PreloadTexture(ctx, desc, texture.ColorSpaceSRGB, nil, false)
//	...
//	mgr.Synchronize(false)
package texture
