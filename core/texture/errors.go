package texture

import "errors"

// Residency errors.
var (
	// ErrTextureNotFound is returned when a key or handle is not in the registry.
	ErrTextureNotFound = errors.New("texture: not found in registry")

	// ErrTextureRetired is returned when scheduling a texture that was unloaded or released.
	ErrTextureRetired = errors.New("texture: texture has been retired")

	// ErrManagerStopped is returned when operating on a closed manager.
	ErrManagerStopped = errors.New("texture: manager stopped")

	// ErrKeySpaceExhausted signals a key counter rollover. It is raised as a panic because
	// the counter space is assumed inexhaustible.
	ErrKeySpaceExhausted = errors.New("texture: key counter rollover")

	// ErrNoExecutionContext is returned when no execution context is available for an upload.
	ErrNoExecutionContext = errors.New("texture: no execution context")

	// ErrEmptyMipChain is returned when a provider yields no mip levels.
	ErrEmptyMipChain = errors.New("texture: provider returned empty mip chain")

	// ErrUnknownColorSpace is returned by ParseColorSpace.
	ErrUnknownColorSpace = errors.New("texture: unknown color space")
)
