package bluraysup

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
)

const (
	headerSize         = 13
	maxSegmentBodySize = 0xFFFF
	syncWord           = 0x5047 //"PG"
)

type SegmentType byte

const (
	SegmentTypePalette      SegmentType = 0x14
	SegmentTypeObject       SegmentType = 0x15
	SegmentTypePresentation SegmentType = 0x16
	SegmentTypeWindow       SegmentType = 0x17
	SegmentTypeEnd          SegmentType = 0x80
)

func (s SegmentType) String() string {
	switch s {
	case SegmentTypePalette:
		return "PDS"
	case SegmentTypeObject:
		return "ODS"
	case SegmentTypePresentation:
		return "PCS"
	case SegmentTypeWindow:
		return "WDS"
	case SegmentTypeEnd:
		return "END"
	default:
		return fmt.Sprintf("0x%02X", byte(s))
	}
}

// SupSegment describes one segment header of a .sup stream.
type SupSegment struct {
	DtsTimestamp int64
	Offset       int
	PtsTimestamp int64
	Size         int
	Type         SegmentType
}

// appendSegment writes a header carrying the final body length, then the body.
// Callers keep bodies within maxSegmentBodySize.
func appendSegment(dst []byte, pts, dts uint32, segmentType SegmentType, body []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, syncWord)
	dst = binary.BigEndian.AppendUint32(dst, pts)
	dst = binary.BigEndian.AppendUint32(dst, dts)
	dst = append(dst, byte(segmentType))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(body)))

	return append(dst, body...)
}

func bigEndianInt32(buffer []byte, index int) uint32 {
	if len(buffer) < index+4 {
		return 0
	}

	return binary.BigEndian.Uint32(buffer[index:])
}

func BigEndianInt16(buffer []byte, index int) uint16 {
	if len(buffer) < index+2 {
		return 0
	}

	return binary.BigEndian.Uint16(buffer[index:])
}

func parseSegmentHeader(buffer []byte, offset int) (SupSegment, error) {
	if len(buffer) < headerSize {
		return SupSegment{}, errors.Newf("segment header at offset %d is truncated", offset)
	}
	if BigEndianInt16(buffer, 0) != syncWord {
		return SupSegment{}, errors.Newf("unable to read segment at offset %d, PG missing", offset)
	}

	return SupSegment{
		DtsTimestamp: int64(bigEndianInt32(buffer, 6)),
		Offset:       offset,
		PtsTimestamp: int64(bigEndianInt32(buffer, 2)),
		Size:         int(BigEndianInt16(buffer, 11)),
		Type:         SegmentType(buffer[10]),
	}, nil
}

// ReadSegments lists the segment headers of a .sup stream without decoding bodies.
func ReadSegments(buffer []byte) ([]SupSegment, error) {
	segments := []SupSegment{}
	position := 0

	for position < len(buffer) {
		segment, segmentErr := parseSegmentHeader(buffer[position:], position)
		if segmentErr != nil {
			return segments, segmentErr
		}

		position += headerSize + segment.Size
		if position > len(buffer) {
			return segments, errors.Newf("segment %s at offset %d is truncated", segment.Type, segment.Offset)
		}

		segments = append(segments, segment)
	}

	return segments, nil
}
