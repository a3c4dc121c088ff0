package images

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// ScalePercent returns src resized to percent of its size (at least 1x1).
func ScalePercent(src image.Image, percent int) *image.RGBA {
	if src == nil {
		return nil
	}
	if percent <= 0 {
		percent = 100
	}
	b := src.Bounds()
	w := b.Dx() * percent / 100
	h := b.Dy() * percent / 100
	return scaleTo(src, max(w, 1), max(h, 1))
}

// ScaleToFit scales src so that it fits within maxW x maxH preserving aspect
// ratio. Sources that already fit are copied unscaled.
func ScaleToFit(src image.Image, maxW, maxH int) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	maxW, maxH = max(maxW, 1), max(maxH, 1)
	if w <= maxW && h <= maxH {
		return scaleTo(src, w, h)
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	newW := max(int(float64(w)*ratio+0.5), 1)
	newH := max(int(float64(h)*ratio+0.5), 1)
	return scaleTo(src, newW, newH)
}

func scaleTo(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
