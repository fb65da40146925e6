package bluraysup

import (
	"image"

	"github.com/cockroachdb/errors"
)

const (
	//colors up to this index may be written as bare bytes for runs of one or two
	maxLiteralColor = 0x39
	maxShortRun     = 0x3F
	maxLongRun      = 0x3FFF

	rleEscape     = 0x00
	rleLongFlag   = 0x40
	rleColorFlag  = 0x80
	rleLengthMask = 0x3F
)

// EncodeRow appends the RLE opcodes of one line of palette indices to dst,
// followed by the end of line marker 0x00 0x00.
func EncodeRow(dst []byte, row []uint8) []byte {
	if len(row) > 0 {
		current := row[0]
		count := 1
		for _, index := range row[1:] {
			if index == current {
				count++
				continue
			}

			dst = appendRun(dst, current, count)
			current = index
			count = 1
		}

		dst = appendRun(dst, current, count)
	}

	return append(dst, rleEscape, rleEscape)
}

// EncodeBitmap encodes every line of img, top to bottom.
func EncodeBitmap(img *image.Paletted) []byte {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	//worst case without long runs is three bytes per pixel
	rle := make([]byte, 0, min(width*height, 0xFFFF)+height*2)
	for y := 0; y < height; y++ {
		offset := y * img.Stride
		rle = EncodeRow(rle, img.Pix[offset:offset+width])
	}

	return rle
}

func appendRun(dst []byte, index uint8, count int) []byte {
	for count > maxLongRun {
		dst = appendRunOpcode(dst, index, maxLongRun)
		count -= maxLongRun
	}

	return appendRunOpcode(dst, index, count)
}

func appendRunOpcode(dst []byte, index uint8, count int) []byte {
	switch {
	case count > maxShortRun:
		high, low := byte(count/256), byte(count%256)
		if index == TransparentIndex {
			return append(dst, rleEscape, rleLongFlag|high, low)
		}

		return append(dst, rleEscape, rleColorFlag|rleLongFlag|high, low, index)
	case index == TransparentIndex:
		return append(dst, rleEscape, byte(count))
	case index <= maxLiteralColor && count == 1:
		return append(dst, index)
	case index <= maxLiteralColor && count == 2:
		return append(dst, index, index)
	default:
		return append(dst, rleEscape, rleColorFlag|byte(count), index)
	}
}

// DecodeRLE replays the opcodes of a bitmap object into width*height palette
// indices. Every line must be exactly width pixels and end with 0x00 0x00.
func DecodeRLE(data []byte, width, height int) ([]uint8, error) {
	if width < 0 || height < 0 {
		return nil, errors.Newf("invalid object size %dx%d", width, height)
	}
	//every line ends with 00 00 and no opcode yields more than maxLongRun pixels per 3 bytes
	if 2*height > len(data) || width*height > (len(data)-2*height)*(maxLongRun/3) {
		return nil, errors.Newf("%d bytes of rle data cannot hold a %dx%d object", len(data), width, height)
	}
	pixels := make([]uint8, width*height)
	x, y := 0, 0

	for position := 0; position < len(data); {
		if y >= height {
			return nil, errors.Newf("rle data continues past line %d at offset %d", height, position)
		}

		value := data[position]
		position++

		if value != rleEscape {
			if x >= width {
				return nil, errors.Newf("line %d is wider than %d pixels", y, width)
			}
			pixels[y*width+x] = value
			x++
			continue
		}

		if position >= len(data) {
			return nil, errors.New("rle data ends inside an opcode")
		}
		flags := data[position]
		position++

		var index uint8
		count := int(flags & rleLengthMask)
		if flags&rleLongFlag != 0 {
			if position >= len(data) {
				return nil, errors.New("rle data ends inside a long run")
			}
			count = count<<8 | int(data[position])
			position++
		}
		if flags&rleColorFlag != 0 {
			if position >= len(data) {
				return nil, errors.New("rle data ends before the run color")
			}
			index = data[position]
			position++
		}

		if flags == 0 {
			if x != width {
				return nil, errors.Newf("line %d has %d pixels, expected %d", y, x, width)
			}
			x = 0
			y++
			continue
		}

		if count == 0 {
			return nil, errors.Newf("zero length run at offset %d", position)
		}
		if x+count > width {
			return nil, errors.Newf("line %d is wider than %d pixels", y, width)
		}
		for end := x + count; x < end; x++ {
			pixels[y*width+x] = index
		}
	}

	if y != height || x != 0 {
		return nil, errors.Newf("rle data has %d complete lines, expected %d", y, height)
	}

	return pixels, nil
}
