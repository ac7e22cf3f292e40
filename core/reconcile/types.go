package reconcile

import (
	"time"

	"texture-manager/core/catalog"
)

// DefaultExtensions are the source image formats the asset decoder understands.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tga"}

// Result is the reconciliation output for one storage object name.
type Result struct {
	// Object is the storage object name, the key shared by all three sources.
	Object string `json:"object"`

	// CatalogPresent indicates whether the catalog has a row for the object.
	CatalogPresent bool `json:"catalog_present"`

	// StoragePresent indicates whether the object exists in the bucket.
	StoragePresent bool `json:"storage_present"`

	// Registered indicates whether the texture manager holds a record for the object.
	Registered bool `json:"registered"`

	// Mismatch describes disagreements between sources, e.g. "color_space: catalog=linear registry=srgb".
	Mismatch []string `json:"mismatch"`

	// Metadata carries per-source details such as size, color space and texture keys.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Spec configures an Engine.
type Spec struct {
	// StoragePrefix limits the storage listing.
	StoragePrefix string

	// Extensions filters storage objects by lowercase extension. Empty means DefaultExtensions.
	Extensions []string

	// CacheTTL is how long a built index serves ReconcileOne. Zero disables caching.
	CacheTTL time.Duration
}

// ActionType is the kind of a planned mutation.
type ActionType string

const (
	// ActionDeleteCatalog removes a catalog row whose object is gone from storage.
	ActionDeleteCatalog ActionType = "delete_catalog"
	// ActionReleaseTexture releases the registered textures of an object gone from storage.
	ActionReleaseTexture ActionType = "release_texture"
	// ActionAddCatalog adds a catalog row for an uncatalogued storage object.
	ActionAddCatalog ActionType = "add_catalog"
	// ActionPreload registers a catalog preload row the manager does not hold.
	ActionPreload ActionType = "preload"
)

// Action is one planned mutation.
type Action struct {
	Type   ActionType `json:"type"`
	Object string     `json:"object"`
	Reason string     `json:"reason"`

	// Asset is the catalog row for ActionPreload.
	Asset *catalog.TextureAsset `json:"-"`
}

// Plan holds reconciliation results and the actions they call for.
type Plan struct {
	Results []Result `json:"results"`
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Summary aggregates a plan.
type Summary struct {
	// TotalObjects is the number of distinct object names across sources.
	TotalObjects int `json:"total_objects"`

	// MissingStorage counts objects catalogued or registered but absent from storage.
	MissingStorage int `json:"missing_storage"`

	// MissingCatalog counts objects in storage or registered but not catalogued.
	MissingCatalog int `json:"missing_catalog"`

	// Unregistered counts catalog preload rows the manager does not hold.
	Unregistered int `json:"unregistered"`

	// Mismatches counts objects with disagreeing sources.
	Mismatches int `json:"mismatches"`

	PurgeActions int `json:"purge_actions"`
	SyncActions  int `json:"sync_actions"`
}

// Options controls planning and applying.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans removal of catalog rows and textures whose object left storage.
	DoPurge bool

	// DoSync plans catalog rows for new storage objects and preloads for unregistered
	// preload rows.
	DoSync bool

	// Confirmed indicates the caller confirmed the mutations. Apply does nothing without it.
	Confirmed bool
}
