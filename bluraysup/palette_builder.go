package bluraysup

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/cockroachdb/errors"
)

const (
	// TransparentIndex is the palette index written for pixels with alpha 0.
	TransparentIndex = 0
	MaxPaletteSize   = 256
)

// PaletteEntry is one distinct raster color and the index it was assigned.
type PaletteEntry struct {
	Color color.NRGBA
	Index uint8
}

// BuildPalette assigns every distinct visible color of img a palette index in
// row-major order of first appearance. Colors get indices 1..255, a 256th color
// takes index 0 which is only possible when no pixel is transparent.
func BuildPalette(img image.Image) (*image.Paletted, []PaletteEntry, error) {
	source := toNRGBA(img)
	width, height := source.Rect.Dx(), source.Rect.Dy()

	indexed := image.NewPaletted(image.Rect(0, 0, width, height), nil)
	entries := []PaletteEntry{}
	lookup := make(map[color.NRGBA]uint8)
	hasTransparent := false

	for y := 0; y < height; y++ {
		sourceRow := source.Pix[y*source.Stride : y*source.Stride+width*4]
		indexedRow := indexed.Pix[y*indexed.Stride : y*indexed.Stride+width]

		for x := 0; x < width; x++ {
			pixel := color.NRGBA{R: sourceRow[x*4], G: sourceRow[x*4+1], B: sourceRow[x*4+2], A: sourceRow[x*4+3]}
			if pixel.A == 0 {
				hasTransparent = true
				indexedRow[x] = TransparentIndex
				continue
			}

			index, exists := lookup[pixel]
			if !exists {
				if len(entries) == MaxPaletteSize {
					return nil, nil, errors.Wrapf(ErrPaletteOverflow, "raster has more than %d colors", MaxPaletteSize)
				}

				index = uint8(len(entries) + 1)
				lookup[pixel] = index
				entries = append(entries, PaletteEntry{Color: pixel, Index: index})
			}

			indexedRow[x] = index
		}
	}

	if hasTransparent && len(entries) == MaxPaletteSize {
		return nil, nil, errors.Wrapf(ErrPaletteOverflow, "raster has %d colors plus transparency", MaxPaletteSize)
	}

	indexed.Palette = colorPalette(entries)

	return indexed, entries, nil
}

func colorPalette(entries []PaletteEntry) color.Palette {
	palette := make(color.Palette, min(len(entries)+1, MaxPaletteSize))
	palette[TransparentIndex] = color.NRGBA{}
	for _, entry := range entries {
		palette[entry.Index] = entry.Color
	}

	return palette
}

// toNRGBA returns img as an origin-anchored NRGBA image, converting if needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	converted := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(converted, converted.Rect, img, bounds.Min, draw.Src)

	return converted
}
