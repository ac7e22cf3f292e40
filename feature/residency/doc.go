// Package residency exposes the texture manager over HTTP.
//
// Routes live under /textures. Preload registers a storage object and queues its upload
// (or uploads it before responding when forced). HTTP clients hold no texture handles: the
// service drops each preload's caller share at once unless the request pins the texture,
// in which case the share is kept until unpin, unload or release. Pinned textures are never
// demoted.
//
// Keys are 16-digit hex strings, as rendered in every JSON response.
package residency
