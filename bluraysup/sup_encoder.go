package bluraysup

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
)

const ticksPerMillisecond = 90

// Presentation timing headroom in 90kHz ticks expected by hardware decoders.
// The values come from a working muxer and are kept as-is.
const (
	decodeStartDelta = 5832
	windowDelta      = 90
	objectDelta      = 5643
	removalDelta     = 90
)

const (
	//hi nibble: frame_rate, lo nibble: reserved
	frameRateByte  = 0x40
	forcedOnFlag   = 0x40
	objectSeqFirst = 0x80
	objectSeqLast  = 0x40
	//object_id, version, sequence flags, 24bit data length, width, height
	odsHeaderSize = 11
	//width and height in front of the RLE data count towards the object data length
	objectSizeFieldsSize = 4
)

var DefaultVideoSize = common.Size{Height: 1080, Width: 1920}

// EncodedCue is the complete segment run of one cue plus diagnostics.
type EncodedCue struct {
	BitmapBytes int
	ColorCount  int
	Data        []byte
	Forced      bool
	Size        common.Size
}

// Encoder turns cues into PGS display sets for one video frame size.
type Encoder struct {
	videoSize common.Size
}

type cueTiming struct {
	decodeStart uint32
	end         uint32
	object      uint32
	removal     uint32
	start       uint32
	window      uint32
}

func NewEncoder(videoSize common.Size) (*Encoder, error) {
	if videoSize.Width <= 0 || videoSize.Height <= 0 || videoSize.Width > maxDimension || videoSize.Height > maxDimension {
		return nil, errors.Newf("invalid video size %v", videoSize)
	}

	return &Encoder{videoSize: videoSize}, nil
}

// MillisecondsToPts converts milliseconds to 90kHz ticks.
func MillisecondsToPts(ms int64) int64 {
	return ms * ticksPerMillisecond
}

//derived timestamps may be negative close to zero, they wrap like the 32bit fields they are written to
func newCueTiming(startMs, endMs int64) cueTiming {
	start := MillisecondsToPts(startMs)
	end := MillisecondsToPts(endMs)

	return cueTiming{
		decodeStart: uint32(start - decodeStartDelta),
		end:         uint32(end),
		object:      uint32(start - objectDelta),
		removal:     uint32(end - removalDelta),
		start:       uint32(start),
		window:      uint32(start - windowDelta),
	}
}

// EncodeCue produces the eight segments of one cue: the display set at the
// start time (PCS, WDS, PDS, ODS, END) and the removal set at the end time
// (PCS, WDS, END).
func (e *Encoder) EncodeCue(cue Cue) (*EncodedCue, error) {
	if validateErr := cue.validate(); validateErr != nil {
		return nil, validateErr
	}

	indexed, entries, paletteErr := BuildPalette(cue.Image)
	if paletteErr != nil {
		return nil, paletteErr
	}

	rle := EncodeBitmap(indexed)
	if len(rle)+odsHeaderSize > maxSegmentBodySize {
		return nil, errors.Wrapf(ErrObjectTooLarge, "bitmap object needs %d bytes, at most %d fit", len(rle)+odsHeaderSize, maxSegmentBodySize)
	}

	objectSize := common.Size{Height: indexed.Rect.Dy(), Width: indexed.Rect.Dx()}
	timing := newCueTiming(cue.StartMs, cue.EndMs)

	data := make([]byte, 0, 8*headerSize+len(rle)+len(entries)*5+128)
	data = appendSegment(data, timing.start, timing.decodeStart, SegmentTypePresentation, e.compositionBody(0, CompositionStateEpochStart, &cue))
	data = appendSegment(data, timing.window, timing.decodeStart, SegmentTypeWindow, windowBody(cue.Position, objectSize))
	data = appendSegment(data, timing.decodeStart, 0, SegmentTypePalette, paletteBody(entries))
	data = appendSegment(data, timing.object, timing.decodeStart, SegmentTypeObject, objectBody(rle, objectSize))
	data = appendSegment(data, timing.object, 0, SegmentTypeEnd, nil)

	data = appendSegment(data, timing.end, timing.removal, SegmentTypePresentation, e.compositionBody(1, CompositionStateNormal, nil))
	data = appendSegment(data, timing.removal, 0, SegmentTypeWindow, windowBody(cue.Position, objectSize))
	data = appendSegment(data, timing.removal, 0, SegmentTypeEnd, nil)

	return &EncodedCue{
		BitmapBytes: len(rle),
		ColorCount:  len(entries),
		Data:        data,
		Forced:      cue.Forced,
		Size:        objectSize,
	}, nil
}

func (e *Encoder) VideoSize() common.Size {
	return e.videoSize
}

//composition with a nil cue references no object and clears the screen
func (e *Encoder) compositionBody(number uint16, state CompositionState, cue *Cue) []byte {
	body := make([]byte, 0, 19)
	body = binary.BigEndian.AppendUint16(body, uint16(e.videoSize.Width))
	body = binary.BigEndian.AppendUint16(body, uint16(e.videoSize.Height))
	body = append(body, frameRateByte)
	body = binary.BigEndian.AppendUint16(body, number)
	//palette_update_flag off, palette_id 0
	body = append(body, state.wireValue(), 0x00, 0x00)

	if cue == nil {
		return append(body, 0x00)
	}

	flags := byte(0x00)
	if cue.Forced {
		flags |= forcedOnFlag
	}

	//one composition object: object_id 0, window_id 0
	body = append(body, 0x01, 0x00, 0x00, 0x00, flags)
	body = binary.BigEndian.AppendUint16(body, uint16(cue.Position.X))

	return binary.BigEndian.AppendUint16(body, uint16(cue.Position.Y))
}

func windowBody(position common.Position, size common.Size) []byte {
	//one window, window_id 0
	body := []byte{0x01, 0x00}
	body = binary.BigEndian.AppendUint16(body, uint16(position.X))
	body = binary.BigEndian.AppendUint16(body, uint16(position.Y))
	body = binary.BigEndian.AppendUint16(body, uint16(size.Width))

	return binary.BigEndian.AppendUint16(body, uint16(size.Height))
}

func paletteBody(entries []PaletteEntry) []byte {
	//palette_id 0, palette_version 0
	body := make([]byte, 2, 2+len(entries)*5)
	for _, entry := range entries {
		converted := RGBToYCrCb(entry)
		body = append(body, converted.Index, converted.Y, converted.Cr, converted.Cb, converted.Alpha)
	}

	return body
}

func objectBody(rle []byte, size common.Size) []byte {
	objectDataLength := uint32(len(rle) + objectSizeFieldsSize)

	//object_id 0, object_version 0
	body := make([]byte, 0, odsHeaderSize+len(rle))
	body = append(body, 0x00, 0x00, 0x00, objectSeqFirst|objectSeqLast)
	body = append(body, byte(objectDataLength>>16), byte(objectDataLength>>8), byte(objectDataLength))
	body = binary.BigEndian.AppendUint16(body, uint16(size.Width))
	body = binary.BigEndian.AppendUint16(body, uint16(size.Height))

	return append(body, rle...)
}
