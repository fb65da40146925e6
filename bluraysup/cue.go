package bluraysup

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
)

const (
	maxDimension = 0xFFFF
	//largest millisecond value whose 90kHz tick count still fits 32 bits
	maxTimestampMs = 0xFFFFFFFF / ticksPerMillisecond
)

// Cue is one timed subtitle bitmap. Image is read as non-premultiplied RGBA,
// pixels with alpha 0 are background regardless of their color.
type Cue struct {
	EndMs    int64
	Forced   bool
	Image    image.Image
	Position common.Position
	StartMs  int64
}

func (c *Cue) validate() error {
	if c.Image == nil {
		return errors.Wrap(ErrMalformedInput, "cue has no image")
	}

	bounds := c.Image.Bounds()
	if bounds.Empty() {
		return errors.Wrap(ErrMalformedInput, "cue image is empty")
	}
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		return errors.Wrapf(ErrMalformedInput, "cue image %dx%d exceeds %dx%d", bounds.Dx(), bounds.Dy(), maxDimension, maxDimension)
	}
	if c.Position.X < 0 || c.Position.Y < 0 || c.Position.X > maxDimension || c.Position.Y > maxDimension {
		return errors.Wrapf(ErrMalformedInput, "cue offset %v is outside 0..%d", c.Position, maxDimension)
	}
	if c.StartMs < 0 || c.EndMs < 0 {
		return errors.Wrapf(ErrMalformedInput, "cue timing %d-%d is negative", c.StartMs, c.EndMs)
	}
	if c.StartMs > maxTimestampMs || c.EndMs > maxTimestampMs {
		return errors.Wrapf(ErrMalformedInput, "cue timing %d-%d exceeds %d ms", c.StartMs, c.EndMs, int64(maxTimestampMs))
	}

	return nil
}
