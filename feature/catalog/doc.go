// Package catalog exposes the texture catalog database over HTTP.
//
// The catalog lists known texture objects with their color space, dimensions and
// preload priority. POST /catalog/preload hands every row flagged for preload to the
// residency service in catalog order, a few at a time. The feature is disabled when no database
// is configured.
//
// With a Reconciler, /catalog/reconcile compares the catalog with the bucket and the
// texture registry. GET only reports; POST applies purge and sync actions when called
// with confirm=true.
package catalog
