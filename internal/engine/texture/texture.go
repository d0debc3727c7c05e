// Package texture decodes images for GPU upload and generates the
// procedural overlay.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	gomath "math"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Decode decodes image data. The extension of name picks TGA, which has no
// magic number; everything else goes through the registered decoders
// (PNG, BMP).
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// ToRGBA returns img as tightly packed RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical returns a copy of img with rows reversed, turning top-down
// image rows into the bottom-up order GL textures use.
func FlipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.PixOffset(b.Min.X, b.Max.Y-1-y)
		copy(out.Pix[y*out.Stride:y*out.Stride+row], img.Pix[src:src+row])
	}
	return out
}

// vignetteBase is the resolution the falloff is computed at before being
// resampled to the requested size.
const vignetteBase = 64

// Vignette renders a size x size grayscale falloff: white in the middle,
// darkening toward the corners. Sizes below one pixel count as one.
func Vignette(size int) *image.Gray {
	if size < 1 {
		size = 1
	}
	base := image.NewGray(image.Rect(0, 0, vignetteBase, vignetteBase))
	for y := 0; y < vignetteBase; y++ {
		for x := 0; x < vignetteBase; x++ {
			dx := (float64(x)+0.5)/vignetteBase*2 - 1
			dy := (float64(y)+0.5)/vignetteBase*2 - 1
			d := gomath.Sqrt(dx*dx+dy*dy) / gomath.Sqrt2
			v := 1 - smoothstep(0.35, 1.0, d)
			base.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}

	out := image.NewGray(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(out, out.Bounds(), base, base.Bounds(), draw.Src, nil)
	return out
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
