package bluraysup

import (
	"bytes"
	"testing"
)

func repeatIndex(index uint8, count int) []uint8 {
	return bytes.Repeat([]byte{index}, count)
}

func TestEncodeRowOpcodes(t *testing.T) {
	cases := []struct {
		name string
		row  []uint8
		want []byte
	}{
		{"two literal reds", []uint8{1, 1}, []byte{0x01, 0x01, 0x00, 0x00}},
		{"single transparent", []uint8{0}, []byte{0x00, 0x01, 0x00, 0x00}},
		{"literal at threshold", []uint8{0x39}, []byte{0x39, 0x00, 0x00}},
		{"above threshold single", []uint8{0x3A}, []byte{0x00, 0x81, 0x3A, 0x00, 0x00}},
		{"above threshold pair", []uint8{0xFF, 0xFF}, []byte{0x00, 0x82, 0xFF, 0x00, 0x00}},
		{"short color run", repeatIndex(5, 3), []byte{0x00, 0x83, 0x05, 0x00, 0x00}},
		{"longest short color run", repeatIndex(5, 63), []byte{0x00, 0xBF, 0x05, 0x00, 0x00}},
		{"shortest long color run", repeatIndex(5, 64), []byte{0x00, 0xC0, 0x40, 0x05, 0x00, 0x00}},
		{"long color run", repeatIndex(200, 300), []byte{0x00, 0xC1, 0x2C, 0xC8, 0x00, 0x00}},
		{"longest short transparent run", repeatIndex(0, 63), []byte{0x00, 0x3F, 0x00, 0x00}},
		{"shortest long transparent run", repeatIndex(0, 64), []byte{0x00, 0x40, 0x40, 0x00, 0x00}},
		{"longest transparent run", repeatIndex(0, 16383), []byte{0x00, 0x7F, 0xFF, 0x00, 0x00}},
		{"split transparent run", repeatIndex(0, 16384), []byte{0x00, 0x7F, 0xFF, 0x00, 0x01, 0x00, 0x00}},
		{"mixed", []uint8{0, 0, 7, 7, 7, 0x40, 0}, []byte{0x00, 0x02, 0x00, 0x83, 0x07, 0x00, 0x81, 0x40, 0x00, 0x01, 0x00, 0x00}},
		{"empty", nil, []byte{0x00, 0x00}},
	}

	for _, tc := range cases {
		got := EncodeRow(nil, tc.row)
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("%s: got % X want % X", tc.name, got, tc.want)
		}
	}
}

func TestEncodeRowAppends(t *testing.T) {
	got := EncodeRow([]byte{0xAA}, []uint8{1})
	if !bytes.Equal(got, []byte{0xAA, 0x01, 0x00, 0x00}) {
		t.Fatalf("unexpected output: % X", got)
	}
}

func TestEncodeRowRoundTrip(t *testing.T) {
	runLengths := []int{1, 2, 63, 64, 16383}
	colors := []uint8{0, 1, 0x39, 0x3A, 0x7F, 0xFF}

	for _, first := range runLengths {
		for _, second := range runLengths {
			for i, color := range colors {
				next := colors[(i+1)%len(colors)]
				row := append(repeatIndex(color, first), repeatIndex(next, second)...)
				row = append(row, repeatIndex(color, second)...)

				encoded := EncodeRow(nil, row)
				if !bytes.HasSuffix(encoded, []byte{0x00, 0x00}) {
					t.Fatalf("runs %d/%d color %d: missing end of line marker", first, second, color)
				}

				decoded, err := DecodeRLE(encoded, len(row), 1)
				if err != nil {
					t.Fatalf("runs %d/%d color %d: decode failed: %v", first, second, color, err)
				}
				if !bytes.Equal(decoded, row) {
					t.Fatalf("runs %d/%d color %d: decoded row differs", first, second, color)
				}
			}
		}
	}
}

func TestEncodeBitmapTerminatesEveryLine(t *testing.T) {
	img, _, err := BuildPalette(checkerboard(9, 4))
	if err != nil {
		t.Fatalf("BuildPalette returned error: %v", err)
	}

	encoded := EncodeBitmap(img)
	decoded, err := DecodeRLE(encoded, 9, 4)
	if err != nil {
		t.Fatalf("DecodeRLE returned error: %v", err)
	}
	if !bytes.Equal(decoded, img.Pix) {
		t.Fatalf("decoded bitmap differs: % X vs % X", decoded, img.Pix)
	}
}

func TestDecodeRLERejectsMalformedData(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		width  int
		height int
	}{
		{"short line", []byte{0x01, 0x00, 0x00}, 2, 1},
		{"long line", []byte{0x01, 0x01, 0x01, 0x00, 0x00}, 2, 1},
		{"missing line", []byte{0x01, 0x00, 0x00}, 1, 2},
		{"extra line", []byte{0x01, 0x00, 0x00, 0x01, 0x00, 0x00}, 1, 1},
		{"truncated opcode", []byte{0x00}, 1, 1},
		{"truncated long run", []byte{0x00, 0xC0, 0x40}, 64, 1},
		{"missing end marker", []byte{0x01}, 1, 1},
		{"zero run", []byte{0x00, 0x80, 0x05, 0x00, 0x00}, 1, 1},
		{"object larger than its data", []byte{0x00, 0xFF, 0xFF, 0x01, 0x00, 0x00}, 0xFFFF, 0xFFFF},
		{"more lines than end markers", []byte{0x00, 0x00, 0x00, 0x00}, 0, 3},
		{"negative size", []byte{0x00, 0x00}, -1, 1},
	}

	for _, tc := range cases {
		if _, err := DecodeRLE(tc.data, tc.width, tc.height); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestDecodeRLEAcceptsLongestRuns(t *testing.T) {
	data := []byte{0x00, 0xFF, 0xFF, 0x07, 0x00, 0xFF, 0xFF, 0x07, 0x00, 0xC0, 0x01, 0x07, 0x00, 0x00}

	decoded, err := DecodeRLE(data, 2*maxLongRun+1, 1)
	if err != nil {
		t.Fatalf("DecodeRLE returned error: %v", err)
	}
	if !bytes.Equal(decoded, repeatIndex(0x07, 2*maxLongRun+1)) {
		t.Fatalf("unexpected decoded row")
	}
}
