// Package asset turns encoded images in object storage into texture mip chains.
//
// A Descriptor names a storage object and implements texture.AssetData. The Provider
// implements texture.Provider: it fetches the object, decodes it (PNG, JPEG, GIF, BMP,
// WebP and TGA are registered), converts it to straight-alpha RGBA8 and builds the full
// mip chain down to 1x1 with a premultiplied bilinear filter.
//
// Concurrent decodes of the same object and color space share one fetch.
//
// # Usage
//
//	provider := asset.NewProvider(client, "textures", logger)
//	desc, err := provider.Describe(ctx, "walls/brick.png")
//	tex, err := manager.PreloadTexture(ctx, desc, texture.ColorSpaceSRGB, nil, false)
package asset
