package interfaces

import (
	"image"

	"github.com/ristryder/pgssup/common"
)

// BinaryParagraph is a subtitle carried as a bitmap instead of text.
type BinaryParagraph interface {
	GetBitmap() image.Image
	IsForced() bool
}

// BinaryParagraphWithPosition is a timed bitmap subtitle placed on a video frame
// of ScreenSize.
type BinaryParagraphWithPosition interface {
	BinaryParagraph
	EndTimeCode() common.TimeCode
	Position() common.Position
	ScreenSize() common.Size
	StartTimeCode() common.TimeCode
}
