package bluraysup

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
)

type PcsObject struct {
	IsForced bool
	ObjectId int
	Origin   image.Point
	WindowId int
}

type PcsData struct {
	BitmapObjects       [][]OdsData
	ColorModel          ColorModel
	CompNum             int
	CompositionState    CompositionState
	EndTime             int64
	FramesPerSecondType int
	PaletteId           int
	PaletteInfos        []PaletteInfo
	PaletteUpdate       bool
	PcsObjects          []PcsObject
	Size                common.Size
	StartTime           int64
}

// Bitmap decodes the first composition object with the last palette of the display set.
func (p *PcsData) Bitmap() (*image.Paletted, error) {
	if len(p.BitmapObjects) == 0 || len(p.BitmapObjects[0]) == 0 {
		return nil, errors.New("display set has no bitmap object")
	}

	return DecodeImage(p.BitmapObjects[0], DecodePalette(p.PaletteInfos, p.ColorModel))
}

// ColorCount is the number of entries of the palette the bitmap is drawn with.
func (p *PcsData) ColorCount() int {
	if len(p.PaletteInfos) == 0 {
		return 0
	}

	return p.PaletteInfos[len(p.PaletteInfos)-1].Size
}

func (p *PcsData) EndTimeCode() common.TimeCode {
	return common.TimeCode{TotalMilliseconds: PtsToMilliseconds(p.EndTime)}
}

func (p *PcsData) GetBitmap() image.Image {
	bitmap, bitmapErr := p.Bitmap()
	if bitmapErr != nil {
		return nil
	}

	return bitmap
}

func (p *PcsData) IsForced() bool {
	for _, pcsObject := range p.PcsObjects {
		if pcsObject.IsForced {
			return true
		}
	}

	return false
}

func (p *PcsData) Position() common.Position {
	if len(p.PcsObjects) == 0 {
		return common.Position{}
	}

	return common.Position{X: p.PcsObjects[0].Origin.X, Y: p.PcsObjects[0].Origin.Y}
}

func (p *PcsData) ScreenSize() common.Size {
	return p.Size
}

func (p *PcsData) StartTimeCode() common.TimeCode {
	return common.TimeCode{TotalMilliseconds: PtsToMilliseconds(p.StartTime)}
}
