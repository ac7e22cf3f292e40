package asset

import (
	"image"

	"texture-manager/core/texture"

	"golang.org/x/image/draw"
)

// ToNRGBA converts any image to a zero-origin straight-alpha NRGBA image.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// BuildMipChain returns img followed by successive half-size levels down to 1x1. At most
// limit levels are produced when limit is positive.
func BuildMipChain(img *image.NRGBA, limit int) []texture.MipLevel {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	n := MipCount(w, h)
	if limit > 0 {
		n = min(n, limit)
	}
	if n == 0 {
		return nil
	}

	levels := make([]texture.MipLevel, 0, n)
	levels = append(levels, texture.MipLevel{Width: w, Height: h, Pixels: img.Pix})

	// Filter in premultiplied space so transparent texels do not bleed color.
	prev := image.NewRGBA(img.Rect)
	draw.Draw(prev, prev.Bounds(), img, image.Point{}, draw.Src)

	for i := 1; i < n; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)

		out := image.NewNRGBA(next.Rect)
		draw.Draw(out, out.Bounds(), next, image.Point{}, draw.Src)
		levels = append(levels, texture.MipLevel{Width: w, Height: h, Pixels: out.Pix})
		prev = next
	}
	return levels
}

// LevelImage wraps a level's pixels as an image without copying.
func LevelImage(l texture.MipLevel) *image.NRGBA {
	return &image.NRGBA{
		Pix:    l.Pixels,
		Stride: 4 * l.Width,
		Rect:   image.Rect(0, 0, l.Width, l.Height),
	}
}
