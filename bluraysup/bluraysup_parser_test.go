package bluraysup

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/ristryder/pgssup/common"
)

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}

	return int(b - a)
}

func closeColor(got, want color.NRGBA) bool {
	return absDiff(got.R, want.R) <= 3 && absDiff(got.G, want.G) <= 3 && absDiff(got.B, want.B) <= 3 && got.A == want.A
}

func TestParseBluRaySupReadsEncodedStream(t *testing.T) {
	half := color.NRGBA{R: 40, G: 200, B: 90, A: 160}
	cues := []Cue{
		{EndMs: 2000, Forced: true, Image: solidImage(3, 2, red), Position: common.Position{X: 10, Y: 20}, StartMs: 1000},
		{EndMs: 4500, Image: checkerboard(64, 5), Position: common.Position{X: 300, Y: 950}, StartMs: 2500},
		{EndMs: 9000, Image: solidImage(70, 1, half), Position: common.Position{X: 1, Y: 2}, StartMs: 8000},
	}

	var out bytes.Buffer
	if _, err := NewSupWriter(&out, newTestEncoder(t)).WriteAll(context.Background(), cues, 1); err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}

	displaySets, err := ParseBluRaySup(out.Bytes(), ColorModelFullRange)
	if err != nil {
		t.Fatalf("ParseBluRaySup returned error: %v", err)
	}
	if len(displaySets) != len(cues) {
		t.Fatalf("expected %d display sets, got %d", len(cues), len(displaySets))
	}

	for i, displaySet := range displaySets {
		cue := cues[i]

		if displaySet.StartTimeCode().TotalMilliseconds != cue.StartMs || displaySet.EndTimeCode().TotalMilliseconds != cue.EndMs {
			t.Fatalf("display set %d: timing %v-%v", i, displaySet.StartTimeCode(), displaySet.EndTimeCode())
		}
		if displaySet.IsForced() != cue.Forced {
			t.Fatalf("display set %d: forced %v", i, displaySet.IsForced())
		}
		if displaySet.Position() != cue.Position {
			t.Fatalf("display set %d: position %v", i, displaySet.Position())
		}
		if displaySet.ScreenSize() != DefaultVideoSize {
			t.Fatalf("display set %d: screen size %v", i, displaySet.ScreenSize())
		}

		bitmap, bitmapErr := displaySet.Bitmap()
		if bitmapErr != nil {
			t.Fatalf("display set %d: Bitmap returned error: %v", i, bitmapErr)
		}
		if bitmap.Rect != cue.Image.Bounds() {
			t.Fatalf("display set %d: bitmap bounds %v", i, bitmap.Rect)
		}

		bounds := cue.Image.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				want := color.NRGBAModel.Convert(cue.Image.At(x, y)).(color.NRGBA)
				got := bitmap.Palette[bitmap.ColorIndexAt(x, y)].(color.NRGBA)
				if !closeColor(got, want) {
					t.Fatalf("display set %d pixel %d,%d: got %v want %v", i, x, y, got, want)
				}
			}
		}
	}
}

func TestParseBluRaySupKeepsTransparentPixels(t *testing.T) {
	img := solidImage(4, 1, red)
	img.SetNRGBA(0, 0, color.NRGBA{})
	img.SetNRGBA(3, 0, color.NRGBA{G: 255})

	var out bytes.Buffer
	if _, err := NewSupWriter(&out, newTestEncoder(t)).WriteCue(Cue{EndMs: 200, Image: img, StartMs: 100}); err != nil {
		t.Fatalf("WriteCue returned error: %v", err)
	}

	displaySets, err := ParseBluRaySup(out.Bytes(), ColorModelFullRange)
	if err != nil || len(displaySets) != 1 {
		t.Fatalf("unexpected parse result: %d sets, err %v", len(displaySets), err)
	}

	bitmap, err := displaySets[0].Bitmap()
	if err != nil {
		t.Fatalf("Bitmap returned error: %v", err)
	}
	for _, x := range []int{0, 3} {
		if index := bitmap.ColorIndexAt(x, 0); index != TransparentIndex {
			t.Fatalf("pixel %d: expected transparent index, got %d", x, index)
		}
	}
	if _, _, _, alpha := bitmap.At(1, 0).RGBA(); alpha == 0 {
		t.Fatalf("opaque pixel decoded as transparent")
	}
}

func TestParseBluRaySupRejectsBrokenStream(t *testing.T) {
	if _, err := ParseBluRaySup([]byte{0x50, 0x47, 0x00}, ColorModelFullRange); err == nil {
		t.Fatalf("expected error for truncated header")
	}
	if _, err := ParseBluRaySup([]byte{'X', 'X', 0, 0, 0, 0, 0, 0, 0, 0, 0x80, 0, 0}, ColorModelFullRange); err == nil {
		t.Fatalf("expected error for missing sync word")
	}

	encoded, err := newTestEncoder(t).EncodeCue(Cue{EndMs: 2000, Image: solidImage(2, 2, red), StartMs: 1000})
	if err != nil {
		t.Fatalf("EncodeCue returned error: %v", err)
	}
	if _, err := ReadSegments(encoded.Data[:len(encoded.Data)-20]); err == nil {
		t.Fatalf("expected error for truncated segment")
	}
}

func TestPtsToTimeString(t *testing.T) {
	if got := PtsToTimeString(MillisecondsToPts(3723004)); got != "01:02:03.004" {
		t.Fatalf("unexpected time string %q", got)
	}
	if got := MillisecondsToTime(3723004); got != [4]int64{1, 2, 3, 4} {
		t.Fatalf("unexpected time parts %v", got)
	}
}

func TestParseBluRaySupKeepsFullyTransparentCue(t *testing.T) {
	encoded, err := newTestEncoder(t).EncodeCue(Cue{EndMs: 700, Image: solidImage(2, 2, color.NRGBA{}), StartMs: 500})
	if err != nil {
		t.Fatalf("EncodeCue returned error: %v", err)
	}

	displaySets, err := ParseBluRaySup(encoded.Data, ColorModelFullRange)
	if err != nil || len(displaySets) != 1 {
		t.Fatalf("unexpected parse result: %d sets, err %v", len(displaySets), err)
	}

	bitmap, err := displaySets[0].Bitmap()
	if err != nil {
		t.Fatalf("Bitmap returned error: %v", err)
	}
	if _, _, _, alpha := bitmap.At(1, 1).RGBA(); alpha != 0 {
		t.Fatalf("expected transparent bitmap")
	}
}

func TestParseBluRaySupReportsColorCount(t *testing.T) {
	encoded, err := newTestEncoder(t).EncodeCue(Cue{EndMs: 700, Image: checkerboard(8, 8), StartMs: 500})
	if err != nil {
		t.Fatalf("EncodeCue returned error: %v", err)
	}

	displaySets, err := ParseBluRaySup(encoded.Data, ColorModelFullRange)
	if err != nil || len(displaySets) != 1 {
		t.Fatalf("unexpected parse result: %d sets, err %v", len(displaySets), err)
	}
	if got := displaySets[0].ColorCount(); got != 2 {
		t.Fatalf("expected 2 colors, got %d", got)
	}
}
