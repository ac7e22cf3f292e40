// Package device provides a host-memory execution context for the texture manager.
//
// HostContext stands in for a GPU device: uploads copy the mip levels into memory it
// owns, usage is charged against a fixed budget and uploads that do not fit fail with
// ErrBudgetExceeded. Uploaded levels can be read back, which the dump command and the
// residency tests use to inspect what is resident.
//
// An optional per-upload latency emulates transfer cost so batching and drop behaviour
// can be observed from the HTTP API.
package device
