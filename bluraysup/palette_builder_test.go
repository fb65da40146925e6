package bluraysup

import (
	"image"
	"image/color"
	"testing"

	"github.com/cockroachdb/errors"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	green = color.NRGBA{G: 255, A: 128}
)

func checkerboard(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}

	return img
}

func distinctColors(count int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, count, 1))
	for x := 0; x < count; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: uint8(x), G: uint8(x >> 8), B: 7, A: 255})
	}

	return img
}

func TestBuildPaletteAssignsIndicesInScanOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 9, G: 9, B: 9, A: 0})
	img.SetNRGBA(1, 0, blue)
	img.SetNRGBA(2, 0, red)
	img.SetNRGBA(0, 1, green)
	img.SetNRGBA(1, 1, blue)
	img.SetNRGBA(2, 1, color.NRGBA{R: 255, A: 0})

	indexed, entries, err := BuildPalette(img)
	if err != nil {
		t.Fatalf("BuildPalette returned error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("unexpected palette size: got %d want 3", len(entries))
	}
	wantEntries := []PaletteEntry{{Color: blue, Index: 1}, {Color: red, Index: 2}, {Color: green, Index: 3}}
	for i, want := range wantEntries {
		if entries[i] != want {
			t.Fatalf("entry %d: got %+v want %+v", i, entries[i], want)
		}
	}

	wantPix := []uint8{0, 1, 2, 3, 1, 0}
	for i, want := range wantPix {
		if indexed.Pix[i] != want {
			t.Fatalf("pixel %d: got index %d want %d", i, indexed.Pix[i], want)
		}
	}
	if _, _, _, a := indexed.Palette[TransparentIndex].RGBA(); a != 0 {
		t.Fatalf("expected index 0 to be transparent, alpha %d", a)
	}
}

func TestBuildPaletteTransparentPixelHasNoEntry(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})

	indexed, entries, err := BuildPalette(img)
	if err != nil {
		t.Fatalf("BuildPalette returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty palette, got %d entries", len(entries))
	}
	if indexed.Pix[0] != TransparentIndex {
		t.Fatalf("expected transparent index, got %d", indexed.Pix[0])
	}
}

func TestBuildPalette256ColorsFit(t *testing.T) {
	indexed, entries, err := BuildPalette(distinctColors(256))
	if err != nil {
		t.Fatalf("BuildPalette returned error: %v", err)
	}
	if len(entries) != 256 {
		t.Fatalf("unexpected palette size: %d", len(entries))
	}
	if entries[254].Index != 255 || entries[255].Index != 0 {
		t.Fatalf("unexpected wrap around indices: %d, %d", entries[254].Index, entries[255].Index)
	}
	if len(indexed.Palette) != 256 {
		t.Fatalf("unexpected color palette length: %d", len(indexed.Palette))
	}
	if indexed.Palette[0] != entries[255].Color {
		t.Fatalf("index 0 should hold the 256th color")
	}
}

func TestBuildPalette257ColorsOverflow(t *testing.T) {
	_, _, err := BuildPalette(distinctColors(257))
	if !errors.Is(err, ErrPaletteOverflow) {
		t.Fatalf("expected palette overflow, got %v", err)
	}
}

func TestBuildPalette256ColorsWithTransparencyOverflow(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 257, 1))
	for x := 0; x < 256; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: uint8(x), B: 1, A: 255})
	}

	_, _, err := BuildPalette(img)
	if !errors.Is(err, ErrPaletteOverflow) {
		t.Fatalf("expected palette overflow, got %v", err)
	}
}

func TestBuildPaletteAcceptsOffsetBoundsAndOtherModels(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(10, 20, 12, 21))
	rgba.Set(10, 20, red)
	rgba.Set(11, 20, color.RGBA{})

	indexed, entries, err := BuildPalette(rgba)
	if err != nil {
		t.Fatalf("BuildPalette returned error: %v", err)
	}
	if indexed.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("unexpected indexed bounds: %v", indexed.Rect)
	}
	if len(entries) != 1 || entries[0].Color != red {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if indexed.Pix[0] != 1 || indexed.Pix[1] != TransparentIndex {
		t.Fatalf("unexpected pixels: %v", indexed.Pix)
	}
}

func TestRGBToYCrCbTruncates(t *testing.T) {
	cases := []struct {
		entry PaletteEntry
		want  YCrCbEntry
	}{
		{PaletteEntry{Color: red, Index: 1}, YCrCbEntry{Alpha: 255, Cb: 84, Cr: 255, Index: 1, Y: 76}},
		{PaletteEntry{Color: color.NRGBA{G: 255, A: 255}, Index: 4}, YCrCbEntry{Alpha: 255, Cb: 43, Cr: 21, Index: 4, Y: 149}},
		{PaletteEntry{Color: blue, Index: 2}, YCrCbEntry{Alpha: 255, Cb: 255, Cr: 107, Index: 2, Y: 29}},
		{PaletteEntry{Color: color.NRGBA{A: 40}, Index: 3}, YCrCbEntry{Alpha: 40, Cb: 128, Cr: 128, Index: 3, Y: 0}},
	}

	for _, tc := range cases {
		if got := RGBToYCrCb(tc.entry); got != tc.want {
			t.Fatalf("RGBToYCrCb(%+v): got %+v want %+v", tc.entry.Color, got, tc.want)
		}
	}
}
