package texture

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// ManagedTexture is the authoritative residency record for one logical texture, identified
// by its (asset, color space) pair.
//
// Ownership is shared and reference counted: the registry holds one share and every caller
// that received a handle from PreloadTexture holds another. The record is destroyed (its
// video memory freed and its state set to Retired) when the last share is released.
//
// Mutable fields are guarded by the owning Manager's mutex; accessors take that lock.
type ManagedTexture struct {
	key         Key
	asset       AssetData
	colorSpace  ColorSpace
	preloadMips int

	lock      sync.Locker
	refs      atomic.Int32
	onRelease func(t *ManagedTexture, remaining int32)

	// guarded by lock
	state         State
	residentMip   int
	residentBytes uint64
	exec          ExecutionContext
	lastUse       uint64
	err           error
	elem          *list.Element
	registered    bool
	// inFlight is set while a goroutine is uploading the record. It outlives a retire and
	// revive, so a revived record never gets a second concurrent upload.
	inFlight bool
}

// TextureInfo is a point-in-time copy of a ManagedTexture's residency.
type TextureInfo struct {
	Key           Key    `json:"key"`
	AssetID       string `json:"asset_id"`
	ColorSpace    string `json:"color_space"`
	State         string `json:"state"`
	MipLevels     int    `json:"mip_levels"`
	PreloadMips   int    `json:"preload_mips"`
	ResidentMip   int    `json:"resident_mip"`
	ResidentBytes uint64 `json:"resident_bytes"`
	RefCount      int    `json:"ref_count"`
	Error         string `json:"error,omitempty"`
}

func (t *ManagedTexture) Key() Key               { return t.key }
func (t *ManagedTexture) Asset() AssetData       { return t.asset }
func (t *ManagedTexture) ColorSpace() ColorSpace { return t.colorSpace }
func (t *ManagedTexture) PreloadMips() int       { return t.preloadMips }

// State returns the current residency state.
func (t *ManagedTexture) State() State {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.state
}

// ResidentMip returns the finest mip index currently resident. It is only meaningful
// while the texture is Resident.
func (t *ManagedTexture) ResidentMip() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.residentMip
}

// ResidentBytes returns the video memory held by the texture.
func (t *ManagedTexture) ResidentBytes() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.residentBytes
}

// Err returns the cause of the most recent failed upload, or nil.
// A successful upload clears it.
func (t *ManagedTexture) Err() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.err
}

// RefCount returns the number of outstanding shares.
func (t *ManagedTexture) RefCount() int {
	return int(t.refs.Load())
}

// Retain adds a share and returns t.
func (t *ManagedTexture) Retain() *ManagedTexture {
	t.refs.Add(1)
	return t
}

// Release drops a share. It reports whether this was the last one, in which case the
// texture has been destroyed.
func (t *ManagedTexture) Release() bool {
	n := t.refs.Add(-1)
	if n < 0 {
		panic("texture: release of unreferenced texture")
	}
	if t.onRelease != nil {
		t.onRelease(t, n)
	}
	return n == 0
}

// Info returns a snapshot of the texture.
func (t *ManagedTexture) Info() TextureInfo {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.infoLocked()
}

func (t *ManagedTexture) infoLocked() TextureInfo {
	info := TextureInfo{
		Key:           t.key,
		AssetID:       t.asset.AssetID(),
		ColorSpace:    t.colorSpace.String(),
		State:         t.state.String(),
		MipLevels:     t.asset.MipLevels(),
		PreloadMips:   t.preloadMips,
		ResidentMip:   t.residentMip,
		ResidentBytes: t.residentBytes,
		RefCount:      int(t.refs.Load()),
	}
	if t.err != nil {
		info.Error = t.err.Error()
	}
	return info
}
